package terminology

import (
	"errors"
	"testing"
)

func TestNewStore_RejectsIncompleteSet(t *testing.T) {
	_, err := NewStore(&Set{Version: "bad", Diagnosis: DefaultSet().Diagnosis})
	if !errors.Is(err, ErrMissingSystem) {
		t.Fatalf("err = %v, want ErrMissingSystem", err)
	}
}

func TestSwap_ReplacesWholeSet(t *testing.T) {
	store, err := NewStore(DefaultSet())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	next := DefaultSet()
	next.Version = "next"
	if err := store.Swap(next); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if got := store.Current().Version; got != "next" {
		t.Errorf("version = %q, want next", got)
	}
}

func TestSwap_RejectsInvalidAndKeepsCurrent(t *testing.T) {
	store, err := NewStore(DefaultSet())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.Swap(&Set{Version: "broken"}); err == nil {
		t.Fatal("expected error for invalid set")
	}
	if got := store.Current().Version; got != EmbeddedVersion {
		t.Errorf("version = %q, want %q after failed swap", got, EmbeddedVersion)
	}
}
