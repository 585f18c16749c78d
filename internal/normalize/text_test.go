package normalize

import (
	"testing"
)

func TestText_Canonicalizes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Type 2 Diabetes Mellitus", "type 2 diabetes mellitus"},
		{"  Hypertension.  ", "hypertension"},
		{"T2DM", "type 2 diabetes mellitus"},
		{"known case of HTN", "known case of hypertension"},
		{"COVID-19", "covid 19"},
		{"Hb", "haemoglobin"},
		{"HbA1c", "glycated haemoglobin"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := Text(c.in); got != c.want {
			t.Errorf("Text(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestText_Deterministic(t *testing.T) {
	in := "Acute M.I. with CHF"
	first := Text(in)
	for i := 0; i < 10; i++ {
		if got := Text(in); got != first {
			t.Fatalf("Text not deterministic: %q vs %q", got, first)
		}
	}
}

func TestGender(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"M", "male"},
		{"male", "male"},
		{" Female ", "female"},
		{"f", "female"},
		{"o", "other"},
		{"banana", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Gender(c.in); got != c.want {
			t.Errorf("Gender(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseDate_Formats(t *testing.T) {
	cases := []string{
		"2024-03-15",
		"15/03/2024",
		"15-03-2024",
		"15.03.2024",
		"15 Mar 2024",
		"March 15, 2024",
	}
	for _, in := range cases {
		got := ParseDate(in)
		if got == nil {
			t.Errorf("ParseDate(%q) = nil", in)
			continue
		}
		if DateOnly(got) != "2024-03-15" {
			t.Errorf("ParseDate(%q) = %s, want 2024-03-15", in, DateOnly(got))
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "not a date", "99/99/9999"} {
		if got := ParseDate(in); got != nil {
			t.Errorf("ParseDate(%q) = %v, want nil", in, got)
		}
	}
}

func TestCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{" e11.9 ", "E11.9"},
		{"718-7", "718-7"},
		{"I 21.9", "I21.9"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Code(c.in); got != c.want {
			t.Errorf("Code(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
