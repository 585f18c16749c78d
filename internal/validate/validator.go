// Package validate checks a resource graph for submission readiness and
// scores it against a weighted rubric. Validation is total: every problem
// comes back as a ValidationIssue, never as an error or panic, so it works
// on externally produced graphs as well as freshly built ones.
package validate

import (
	"fmt"

	"github.com/gyeh/fhirbridge/internal/bundle"
	"github.com/gyeh/fhirbridge/internal/model"
)

// Category weights. They sum to 100.
const (
	weightRequired    = 30
	weightCoding      = 30
	weightStructural  = 20
	weightReferential = 20
)

// Issue codes for structural violations.
const (
	CodeCompositionMissing         = "composition_missing"
	CodeCompositionNotFirst        = "composition_not_first"
	CodeCompositionDuplicate       = "composition_duplicate"
	CodeCompositionCategoryMissing = "composition_category_missing"
	CodeDuplicateLocalID           = "duplicate_local_id"
	CodeUnresolvedReference        = "unresolved_reference"
	CodePatientMissing             = "patient_missing"
	CodeNoClinicalContent          = "no_clinical_content"
	CodeUncodedFinding             = "uncoded_finding"
	CodeMissingDemographics        = "missing_demographics"
	CodeDocumentReferenceMissing   = "document_reference_missing"
	CodeProvenanceMissing          = "provenance_missing"
	CodeSectionUnlinked            = "section_unlinked"
	CodeEmptyGraph                 = "empty_graph"
)

// Validate scores a graph and reports everything wrong with it.
func Validate(g *bundle.Graph) ([]model.ValidationIssue, model.ReadinessScore) {
	score := model.ReadinessScore{Breakdown: map[string]int{
		model.CategoryRequiredResources:      0,
		model.CategoryCodingCoverage:         0,
		model.CategoryStructuralCompleteness: 0,
		model.CategoryReferentialIntegrity:   0,
	}}

	if g == nil || len(g.Nodes) == 0 {
		issues := []model.ValidationIssue{{
			Severity: model.SeverityError,
			Code:     CodeEmptyGraph,
			Message:  "graph has no entries",
		}}
		return issues, score
	}

	var issues []model.ValidationIssue
	add := func(sev model.Severity, code, msg, loc string) {
		issues = append(issues, model.ValidationIssue{Severity: sev, Code: code, Message: msg, Location: loc})
	}

	score.Breakdown[model.CategoryRequiredResources] = checkRequired(g, add)
	score.Breakdown[model.CategoryCodingCoverage] = checkCoding(g, add)
	score.Breakdown[model.CategoryStructuralCompleteness] = checkStructural(g, add)
	score.Breakdown[model.CategoryReferentialIntegrity] = checkReferential(g, add)

	for _, pts := range score.Breakdown {
		score.Total += pts
	}
	return issues, score
}

type addFunc func(sev model.Severity, code, msg, loc string)

// checkRequired awards proportional credit for the five required resource
// kinds: Composition, Patient, at least one clinical resource, a
// DocumentReference, and a Provenance.
func checkRequired(g *bundle.Graph, add addFunc) int {
	present := 0

	if len(g.NodesOfType(bundle.TypeComposition)) > 0 {
		present++
	} else {
		add(model.SeverityError, CodeCompositionMissing, "bundle has no Composition", "")
	}

	if len(g.NodesOfType(bundle.TypePatient)) > 0 {
		present++
	} else {
		add(model.SeverityError, CodePatientMissing, "bundle has no Patient", "")
	}

	if len(clinicalNodes(g)) > 0 {
		present++
	} else {
		add(model.SeverityWarning, CodeNoClinicalContent, "bundle carries no clinical resources", "")
	}

	if len(g.NodesOfType(bundle.TypeDocumentReference)) > 0 {
		present++
	} else {
		add(model.SeverityInformation, CodeDocumentReferenceMissing, "no DocumentReference links the source document", "")
	}

	if len(g.NodesOfType(bundle.TypeProvenance)) > 0 {
		present++
	} else {
		add(model.SeverityInformation, CodeProvenanceMissing, "no Provenance records how the bundle was assembled", "")
	}

	return weightRequired * present / 5
}

// checkCoding scores the fraction of clinical entries carrying a resolved
// code. A graph with no clinical entries gets full marks here; the required
// resource check already penalizes the absence.
func checkCoding(g *bundle.Graph, add addFunc) int {
	total, coded := 0, 0
	for _, n := range g.Nodes {
		switch n.Type {
		case bundle.TypeCondition:
			if n.Condition == nil {
				continue
			}
			total++
			if n.Condition.Code.Code != "" {
				coded++
			} else {
				add(model.SeverityWarning, CodeUncodedFinding,
					fmt.Sprintf("condition %q has no code", n.Condition.Text), n.LocalID)
			}
		case bundle.TypeObservation:
			if n.Observation == nil {
				continue
			}
			total++
			if n.Observation.Code.Code != "" {
				coded++
			} else {
				add(model.SeverityWarning, CodeUncodedFinding,
					fmt.Sprintf("observation %q has no code", n.Observation.Text), n.LocalID)
			}
		}
	}
	if total == 0 {
		return weightCoding
	}
	return weightCoding * coded / total
}

// checkStructural scores the Composition's completeness. A missing HI-type
// category zeroes the whole category: an unclassified document cannot be
// routed, whatever else is present.
func checkStructural(g *bundle.Graph, add addFunc) int {
	comp := g.Composition()
	if comp == nil || comp.Composition == nil {
		return 0
	}
	c := comp.Composition

	if c.Category.Code == "" {
		add(model.SeverityError, CodeCompositionCategoryMissing,
			"Composition carries no health-information type classification", comp.LocalID)
		return 0
	}

	checks := 0
	if c.Subject != "" {
		checks++
	} else {
		add(model.SeverityWarning, CodeMissingDemographics, "Composition has no subject", comp.LocalID)
	}
	if c.Date != "" {
		checks++
	}
	if c.Title != "" {
		checks++
	}

	clinical := clinicalNodes(g)
	linked := make(map[string]bool)
	for _, s := range c.Sections {
		for _, id := range s.Entries {
			linked[id] = true
		}
	}
	allLinked := true
	for _, n := range clinical {
		if !linked[n.LocalID] {
			allLinked = false
			add(model.SeverityWarning, CodeSectionUnlinked,
				fmt.Sprintf("%s %s is not linked from any Composition section", n.Type, n.LocalID), n.LocalID)
		}
	}
	if allLinked {
		checks++
	}

	return weightStructural * checks / 4
}

// checkReferential scores id uniqueness, reference resolution, and the
// Composition-first ordering contract.
func checkReferential(g *bundle.Graph, add addFunc) int {
	pts := 0

	// unique local ids: 5 points
	ids := make(map[string]bool, len(g.Nodes))
	unique := true
	for _, n := range g.Nodes {
		if ids[n.LocalID] {
			unique = false
			add(model.SeverityError, CodeDuplicateLocalID,
				fmt.Sprintf("local id %s used more than once", n.LocalID), n.LocalID)
		}
		ids[n.LocalID] = true
	}
	if unique {
		pts += 5
	}

	// resolvable references: 10 points, proportional
	totalRefs, resolved := 0, 0
	for _, n := range g.Nodes {
		for _, ref := range n.Refs {
			totalRefs++
			if ids[ref] {
				resolved++
			} else {
				add(model.SeverityError, CodeUnresolvedReference,
					fmt.Sprintf("%s %s references %s, which is not in the bundle", n.Type, n.LocalID, ref), n.LocalID)
			}
		}
	}
	if totalRefs == 0 {
		pts += 10
	} else {
		pts += 10 * resolved / totalRefs
	}

	// Composition exactly once, at entry 0: 5 points
	comps := g.NodesOfType(bundle.TypeComposition)
	switch {
	case len(comps) == 0:
		// already reported by checkRequired
	case len(comps) > 1:
		add(model.SeverityError, CodeCompositionDuplicate,
			fmt.Sprintf("bundle has %d Compositions, want exactly 1", len(comps)), "")
	case g.Nodes[0].Type != bundle.TypeComposition:
		add(model.SeverityError, CodeCompositionNotFirst, "Composition is not the first entry", comps[0].LocalID)
	default:
		pts += 5
	}

	return pts
}

func clinicalNodes(g *bundle.Graph) []*bundle.ResourceNode {
	var out []*bundle.ResourceNode
	for _, n := range g.Nodes {
		switch n.Type {
		case bundle.TypeCondition, bundle.TypeObservation, bundle.TypeDiagnosticReport, bundle.TypeMedicationRequest:
			out = append(out, n)
		}
	}
	return out
}
