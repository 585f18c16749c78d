package terminology

import (
	"math"
	"sort"

	"github.com/gyeh/fhirbridge/internal/model"
	"github.com/gyeh/fhirbridge/internal/normalize"
)

// Entry is one canonical dictionary term with its code.
type Entry struct {
	Term        string
	Code        string
	Display     string
	Specificity int // higher = more specific; derived from token count when 0
}

// Dictionary is an immutable offline terminology lookup: canonical terms,
// an inverted token index for partial matches, and per-token IDF weights
// that down-weight generic words. Built once, then shared read-only by any
// number of concurrent callers.
type Dictionary struct {
	System    string // short system name, e.g. "icd10"
	SystemURI string

	terms    map[string]Entry
	postings map[string][]string // token -> terms containing it, sorted
	idf      map[string]float64
	n        int
}

// NewDictionary builds a Dictionary from entries. Terms are normalized with
// the same pipeline queries go through, so exact matches line up.
func NewDictionary(system, systemURI string, entries []Entry) *Dictionary {
	d := &Dictionary{
		System:    system,
		SystemURI: systemURI,
		terms:     make(map[string]Entry, len(entries)),
		postings:  make(map[string][]string),
		idf:       make(map[string]float64),
	}

	df := make(map[string]int)
	for _, e := range entries {
		term := normalize.Text(e.Term)
		if term == "" {
			continue
		}
		if e.Specificity == 0 {
			e.Specificity = len(normalize.Tokens(term))
		}
		e.Term = term
		d.terms[term] = e

		seen := make(map[string]bool)
		for _, tok := range normalize.Tokens(term) {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			df[tok]++
			d.postings[tok] = append(d.postings[tok], term)
		}
	}
	d.n = len(d.terms)

	for tok, f := range df {
		d.idf[tok] = math.Log(1 + float64(d.n)/float64(f))
	}
	for tok := range d.postings {
		sort.Strings(d.postings[tok])
	}
	return d
}

// Len returns the number of canonical terms.
func (d *Dictionary) Len() int { return d.n }

// idfFor returns the IDF weight for a query token. Tokens absent from the
// dictionary get the maximum weight: they cannot match any term, so they
// dilute the score of partial matches instead of inflating it.
func (d *Dictionary) idfFor(tok string) float64 {
	if w, ok := d.idf[tok]; ok {
		return w
	}
	return math.Log(1 + float64(d.n))
}

// Match returns the ordered candidate list for an already-normalized query.
// An exact canonical-term match scores 1.0 and is returned alone. Otherwise
// candidates are scored by IDF-weighted token overlap, those below minScore
// are discarded, and the rest are ordered by score desc, specificity desc,
// shorter code, then code lexicographically - a total order, so the result
// is deterministic regardless of map iteration.
func (d *Dictionary) Match(query string, minScore float64, limit int) []model.CandidateCode {
	if query == "" || d.n == 0 {
		return nil
	}

	if e, ok := d.terms[query]; ok {
		return []model.CandidateCode{{
			System:      d.SystemURI,
			Code:        e.Code,
			Display:     e.Display,
			Score:       1.0,
			Specificity: e.Specificity,
		}}
	}

	qtoks := normalize.Tokens(query)
	var denom float64
	for _, t := range qtoks {
		denom += d.idfFor(t)
	}
	if denom == 0 {
		return nil
	}

	overlap := make(map[string]float64)
	for _, t := range qtoks {
		for _, term := range d.postings[t] {
			overlap[term] += d.idf[t]
		}
	}

	var out []model.CandidateCode
	for term, num := range overlap {
		score := num / denom
		if score < minScore {
			continue
		}
		e := d.terms[term]
		out = append(out, model.CandidateCode{
			System:      d.SystemURI,
			Code:        e.Code,
			Display:     e.Display,
			Score:       score,
			Specificity: e.Specificity,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Specificity != b.Specificity {
			return a.Specificity > b.Specificity
		}
		if len(a.Code) != len(b.Code) {
			return len(a.Code) < len(b.Code)
		}
		return a.Code < b.Code
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
