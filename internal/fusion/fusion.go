// Package fusion merges coded per-document extractions into one canonical
// record, detecting conflicts and resolving them by a deterministic rule
// chain: most recent encounter, then majority, then leave the field null.
package fusion

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gyeh/fhirbridge/internal/model"
	"github.com/gyeh/fhirbridge/internal/normalize"
)

// ErrNoDocuments is returned when Fuse is called with an empty set.
var ErrNoDocuments = errors.New("fusion: no documents")

// Fuse merges N coded documents into a single FusedRecord. Documents are
// sorted by id internally, so the result is independent of input order.
func Fuse(docs []model.ExtractedDocument) (*model.FusedRecord, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	sorted := make([]model.ExtractedDocument, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	rec := &model.FusedRecord{}
	for _, d := range sorted {
		rec.SourceDocumentIDs = append(rec.SourceDocumentIDs, d.ID)
	}
	rec.SourceDocumentIDs = dedupeSorted(rec.SourceDocumentIDs)

	recency := make(map[string]*time.Time, len(sorted))
	for _, d := range sorted {
		recency[d.ID] = d.Encounter.Date
	}

	fuseDemographics(rec, sorted, recency)
	rec.Encounter = fuseEncounter(sorted)
	fuseFindings(rec, sorted)
	rec.Medications = fuseMedications(sorted)

	return rec, nil
}

// fieldValue is one document's contribution to a cardinality-1 field.
// norm is the comparison key; raw is what the fused record keeps.
type fieldValue struct {
	docID string
	norm  string
	raw   string
}

func fuseDemographics(rec *model.FusedRecord, docs []model.ExtractedDocument, recency map[string]*time.Time) {
	collect := func(norm func(model.Demographics) (string, string)) []fieldValue {
		var vals []fieldValue
		for _, d := range docs {
			n, raw := norm(d.Demographics)
			if n == "" {
				continue
			}
			vals = append(vals, fieldValue{docID: d.ID, norm: n, raw: raw})
		}
		return vals
	}

	name := collect(func(dm model.Demographics) (string, string) {
		return normalize.Name(dm.Name), dm.Name
	})
	gender := collect(func(dm model.Demographics) (string, string) {
		g := normalize.Gender(dm.Gender)
		return g, g
	})
	birth := collect(func(dm model.Demographics) (string, string) {
		d := normalize.DateOnly(normalize.ParseDate(dm.BirthDate))
		return d, d
	})
	patientID := collect(func(dm model.Demographics) (string, string) {
		v := strings.TrimSpace(dm.PatientID)
		return v, v
	})

	rec.Demographics.Name = resolveField(rec, "demographics.name", name, recency)
	rec.Demographics.Gender = resolveField(rec, "demographics.gender", gender, recency)
	rec.Demographics.BirthDate = resolveField(rec, "demographics.birth_date", birth, recency)
	rec.Demographics.PatientID = resolveField(rec, "demographics.patient_id", patientID, recency)
}

// resolveField reconciles one cardinality-1 field. Agreement wins silently;
// disagreement walks the rule chain and records a Conflict either way. An
// unresolved field stays empty — never guessed.
func resolveField(rec *model.FusedRecord, path string, vals []fieldValue, recency map[string]*time.Time) string {
	if len(vals) == 0 {
		return ""
	}
	agreed := true
	for _, v := range vals[1:] {
		if v.norm != vals[0].norm {
			agreed = false
			break
		}
	}
	if agreed {
		return vals[0].raw
	}

	conflict := model.Conflict{FieldPath: path}
	for _, v := range vals {
		conflict.Values = append(conflict.Values, model.ConflictValue{
			DocumentID: v.docID,
			Value:      v.raw,
		})
	}

	if winner, ok := byRecency(vals, recency); ok {
		conflict.Resolution = &model.Resolution{Value: winner.raw, Rule: model.RuleMostRecentEncounter}
		rec.Conflicts = append(rec.Conflicts, conflict)
		return winner.raw
	}
	if winner, ok := byMajority(vals); ok {
		conflict.Resolution = &model.Resolution{Value: winner.raw, Rule: model.RuleMajority}
		rec.Conflicts = append(rec.Conflicts, conflict)
		return winner.raw
	}

	rec.Conflicts = append(rec.Conflicts, conflict)
	return ""
}

// byRecency picks the value held by the document with the strictly most
// recent encounter date. A date tie between disagreeing values, or no dates
// at all, defers to the next rule.
func byRecency(vals []fieldValue, recency map[string]*time.Time) (fieldValue, bool) {
	var best *time.Time
	for _, v := range vals {
		if t := recency[v.docID]; t != nil && (best == nil || t.After(*best)) {
			best = t
		}
	}
	if best == nil {
		return fieldValue{}, false
	}

	var atBest []fieldValue
	for _, v := range vals {
		if t := recency[v.docID]; t != nil && t.Equal(*best) {
			atBest = append(atBest, v)
		}
	}
	for _, v := range atBest[1:] {
		if v.norm != atBest[0].norm {
			return fieldValue{}, false
		}
	}
	return atBest[0], true
}

// byMajority picks the value held by a strict majority of distinct documents.
func byMajority(vals []fieldValue) (fieldValue, bool) {
	counts := make(map[string]int)
	first := make(map[string]fieldValue)
	for _, v := range vals {
		counts[v.norm]++
		if _, ok := first[v.norm]; !ok {
			first[v.norm] = v
		}
	}

	bestNorm, bestCount, tied := "", 0, false
	for norm, c := range counts {
		switch {
		case c > bestCount:
			bestNorm, bestCount, tied = norm, c, false
		case c == bestCount:
			tied = true
		}
	}
	if tied || bestCount <= len(vals)-bestCount {
		return fieldValue{}, false
	}
	return first[bestNorm], true
}

// fuseEncounter takes the most recent document's encounter as canonical and
// backfills fields it left blank from the remaining documents in id order.
func fuseEncounter(docs []model.ExtractedDocument) model.Encounter {
	ordered := make([]model.ExtractedDocument, len(docs))
	copy(ordered, docs)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := ordered[i].Encounter.Date, ordered[j].Encounter.Date
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return di.After(*dj)
	})

	enc := ordered[0].Encounter
	for _, d := range ordered[1:] {
		if enc.Date == nil {
			enc.Date = d.Encounter.Date
		}
		if enc.AdmissionDate == nil {
			enc.AdmissionDate = d.Encounter.AdmissionDate
		}
		if enc.DischargeDate == nil {
			enc.DischargeDate = d.Encounter.DischargeDate
		}
		if enc.Facility == "" {
			enc.Facility = d.Encounter.Facility
		}
		if enc.FacilityID == "" {
			enc.FacilityID = d.Encounter.FacilityID
		}
		if enc.Physician == "" {
			enc.Physician = d.Encounter.Physician
		}
		if enc.HITypeHint == "" {
			enc.HITypeHint = d.Encounter.HITypeHint
		}
	}
	return enc
}

// codeKey identifies a coded concept across documents.
type codeKey struct {
	system string
	code   string
}

// uncodedKey identifies an uncoded finding. Without a code there is no
// concept identity, so uncoded findings merge only when they are the same
// observation from the same document; across documents they stay separate.
type uncodedKey struct {
	docID string
	text  string
	at    time.Time
}

func fuseFindings(rec *model.FusedRecord, docs []model.ExtractedDocument) {
	index := make(map[codeKey]int)
	uncodedSeen := make(map[uncodedKey]bool)

	// normalized text -> code -> contributing documents, for disputed-code
	// detection across documents.
	textCodes := make(map[string]map[string][]string)
	textOrder := []string{}

	for _, d := range docs {
		for _, f := range d.Findings {
			srcID := f.SourceDocumentID
			if srcID == "" {
				srcID = d.ID
			}

			if f.Coded() {
				key := codeKey{system: f.Chosen.System, code: f.Chosen.Code}
				if i, ok := index[key]; ok {
					mergeFinding(&rec.Findings[i], f, srcID)
				} else {
					index[key] = len(rec.Findings)
					rec.Findings = append(rec.Findings, model.FusedFinding{
						ClinicalFinding:   f,
						SourceDocumentIDs: []string{srcID},
					})
				}
				if f.NormalizedText != "" {
					if textCodes[f.NormalizedText] == nil {
						textCodes[f.NormalizedText] = make(map[string][]string)
						textOrder = append(textOrder, f.NormalizedText)
					}
					ck := f.Chosen.System + "|" + f.Chosen.Code
					textCodes[f.NormalizedText][ck] = append(textCodes[f.NormalizedText][ck], srcID)
				}
				continue
			}

			// Concept identity needs a code; uncoded findings pass through,
			// collapsing only exact re-supplies of the same document.
			key := uncodedKey{docID: srcID, text: f.NormalizedText, at: f.Timestamp}
			if uncodedSeen[key] {
				continue
			}
			uncodedSeen[key] = true
			rec.Findings = append(rec.Findings, model.FusedFinding{
				ClinicalFinding:   f,
				SourceDocumentIDs: []string{srcID},
			})
		}
	}

	for i := range rec.Findings {
		rec.Findings[i].SourceDocumentIDs = dedupeSorted(rec.Findings[i].SourceDocumentIDs)
	}

	// Same text coded differently across documents: keep both entries but
	// surface the disagreement.
	for _, text := range textOrder {
		codes := textCodes[text]
		if len(codes) < 2 {
			continue
		}
		keys := make([]string, 0, len(codes))
		for ck := range codes {
			keys = append(keys, ck)
		}
		sort.Strings(keys)

		conflict := model.Conflict{
			FieldPath: fmt.Sprintf("findings[%s].chosen_code", text),
			Resolution: &model.Resolution{
				Value: strings.Join(keys, ", "),
				Rule:  model.RuleDisputedCode,
			},
		}
		for _, ck := range keys {
			for _, docID := range dedupeSorted(codes[ck]) {
				conflict.Values = append(conflict.Values, model.ConflictValue{
					DocumentID: docID,
					Value:      ck,
				})
			}
		}
		rec.Conflicts = append(rec.Conflicts, conflict)
	}
}

// mergeFinding folds a same-concept finding into an existing entry: source
// ids union, most recent observed value wins.
func mergeFinding(dst *model.FusedFinding, src model.ClinicalFinding, srcID string) {
	dst.SourceDocumentIDs = append(dst.SourceDocumentIDs, srcID)
	if src.Timestamp.After(dst.Timestamp) {
		dst.RawText = src.RawText
		dst.NormalizedText = src.NormalizedText
		dst.Value = src.Value
		dst.Unit = src.Unit
		dst.ReferenceRange = src.ReferenceRange
		dst.AbnormalFlag = src.AbnormalFlag
		dst.Timestamp = src.Timestamp
	}
}

func fuseMedications(docs []model.ExtractedDocument) []model.Medication {
	var out []model.Medication
	seen := make(map[string]int)
	for _, d := range docs {
		for _, m := range d.Medications {
			key := normalize.Text(m.Name)
			if key == "" {
				continue
			}
			if i, ok := seen[key]; ok {
				if out[i].Dose == "" {
					out[i].Dose = m.Dose
				}
				if out[i].Frequency == "" {
					out[i].Frequency = m.Frequency
				}
				continue
			}
			seen[key] = len(out)
			out = append(out, m)
		}
	}
	return out
}

func dedupeSorted(ids []string) []string {
	sort.Strings(ids)
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}
