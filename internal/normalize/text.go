package normalize

import (
	"regexp"
	"strings"
)

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multiSpace  = regexp.MustCompile(`\s+`)
)

// abbreviations maps normalized shorthand phrases to their canonical
// clinical expansion. Applied after case-folding and punctuation stripping,
// so keys must themselves be in normalized form.
var abbreviations = map[string]string{
	"t2dm":  "type 2 diabetes mellitus",
	"t1dm":  "type 1 diabetes mellitus",
	"dm":    "diabetes mellitus",
	"htn":   "hypertension",
	"mi":    "myocardial infarction",
	"ami":   "acute myocardial infarction",
	"chf":   "congestive heart failure",
	"cad":   "coronary artery disease",
	"af":    "atrial fibrillation",
	"ckd":   "chronic kidney disease",
	"aki":   "acute kidney injury",
	"uti":   "urinary tract infection",
	"copd":  "chronic obstructive pulmonary disease",
	"tb":    "tuberculosis",
	"cva":   "cerebrovascular accident",
	"dvt":   "deep vein thrombosis",
	"ra":    "rheumatoid arthritis",
	"hb":    "haemoglobin",
	"hgb":   "haemoglobin",
	"pcv":   "packed cell volume",
	"tlc":   "total leukocyte count",
	"plt":   "platelet count",
	"fbs":   "fasting blood sugar",
	"rbs":   "random blood sugar",
	"ppbs":  "post prandial blood sugar",
	"sgpt":  "alanine aminotransferase",
	"sgot":  "aspartate aminotransferase",
	"alp":   "alkaline phosphatase",
	"bun":   "blood urea nitrogen",
	"tsh":   "thyroid stimulating hormone",
	"crp":   "c reactive protein",
	"esr":   "erythrocyte sedimentation rate",
	"cbc":   "complete blood count",
	"lft":   "liver function test",
	"kft":   "kidney function test",
	"hba1c": "glycated haemoglobin",
}

// Text case-folds, strips punctuation, collapses whitespace, and expands
// known abbreviations. The result is the canonical matching form used by
// the terminology dictionaries; identical input always yields identical
// output.
func Text(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = punctuation.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")

	if exp, ok := abbreviations[s]; ok {
		return exp
	}
	toks := strings.Split(s, " ")
	for i, t := range toks {
		if exp, ok := abbreviations[t]; ok {
			toks[i] = exp
		}
	}
	return strings.Join(toks, " ")
}

// Tokens splits an already-normalized string into its terms.
func Tokens(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, " ")
}

// Name lowercases, collapses whitespace, and trims the input, for
// demographic comparison. Returns "" for empty input.
func Name(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}
	return multiSpace.ReplaceAllString(s, " ")
}

// Gender maps free-text gender markers onto the FHIR administrative
// gender codes. Unrecognized input normalizes to "" so fusion treats it
// as absent rather than conflicting.
func Gender(s string) string {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "m", "male":
		return "male"
	case "f", "female":
		return "female"
	case "o", "other":
		return "other"
	case "u", "unknown":
		return "unknown"
	default:
		return ""
	}
}
