// Package bundle assembles a referentially closed resource graph from a
// coded document or a fused record, and (de)serializes it to the FHIR R4
// document-bundle wire form.
package bundle

import (
	"errors"
	"fmt"
)

// ResourceType is the closed set of resource kinds a graph can hold.
type ResourceType string

const (
	TypeComposition                ResourceType = "Composition"
	TypePatient                    ResourceType = "Patient"
	TypeOrganization               ResourceType = "Organization"
	TypePractitioner               ResourceType = "Practitioner"
	TypeEncounter                  ResourceType = "Encounter"
	TypeCondition                  ResourceType = "Condition"
	TypeObservation                ResourceType = "Observation"
	TypeDiagnosticReport           ResourceType = "DiagnosticReport"
	TypeMedicationRequest          ResourceType = "MedicationRequest"
	TypeDocumentReference          ResourceType = "DocumentReference"
	TypeProvenance                 ResourceType = "Provenance"
	TypeCoverage                   ResourceType = "Coverage"
	TypeCoverageEligibilityRequest ResourceType = "CoverageEligibilityRequest"
)

// Coding is a single code from a terminology system.
type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// Section is one Composition table-of-contents section; Entries hold local
// ids of the resources it links.
type Section struct {
	Title   string   `json:"title,omitempty"`
	Code    Coding   `json:"code,omitempty"`
	Entries []string `json:"entries,omitempty"`
}

// Composition is the document's table of contents. Category carries the
// HI-type classification; an empty Category marks an unclassified document.
type Composition struct {
	Status   string    `json:"status,omitempty"`
	Title    string    `json:"title,omitempty"`
	Date     string    `json:"date,omitempty"`
	Category Coding    `json:"category,omitempty"`
	DocType  Coding    `json:"doc_type,omitempty"`
	Profile  string    `json:"profile,omitempty"`
	Subject  string    `json:"subject,omitempty"`
	Encnt    string    `json:"encounter,omitempty"`
	Author   string    `json:"author,omitempty"`
	Sections []Section `json:"sections,omitempty"`
}

type Patient struct {
	Name       string `json:"name,omitempty"`
	Gender     string `json:"gender,omitempty"`
	BirthDate  string `json:"birth_date,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

type Organization struct {
	Name       string `json:"name,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

type Practitioner struct {
	Name string `json:"name,omitempty"`
}

type Encounter struct {
	Status          string `json:"status,omitempty"`
	Class           Coding `json:"class,omitempty"`
	Start           string `json:"start,omitempty"`
	End             string `json:"end,omitempty"`
	ServiceProvider string `json:"service_provider,omitempty"`
}

type Condition struct {
	Code           Coding `json:"code,omitempty"`
	Text           string `json:"text,omitempty"`
	ClinicalStatus string `json:"clinical_status,omitempty"`
	Subject        string `json:"subject,omitempty"`
	RecordedDate   string `json:"recorded_date,omitempty"`
}

type Observation struct {
	Status         string `json:"status,omitempty"`
	Code           Coding `json:"code,omitempty"`
	Text           string `json:"text,omitempty"`
	Value          string `json:"value,omitempty"`
	Unit           string `json:"unit,omitempty"`
	ReferenceRange string `json:"reference_range,omitempty"`
	Interpretation string `json:"interpretation,omitempty"`
	Subject        string `json:"subject,omitempty"`
	Effective      string `json:"effective,omitempty"`
}

type DiagnosticReport struct {
	Status  string   `json:"status,omitempty"`
	Code    Coding   `json:"code,omitempty"`
	Subject string   `json:"subject,omitempty"`
	Results []string `json:"results,omitempty"`
}

type MedicationRequest struct {
	Status     string `json:"status,omitempty"`
	Intent     string `json:"intent,omitempty"`
	Medication string `json:"medication,omitempty"`
	Dose       string `json:"dose,omitempty"`
	Frequency  string `json:"frequency,omitempty"`
	Subject    string `json:"subject,omitempty"`
}

type DocumentReference struct {
	Status      string `json:"status,omitempty"`
	Type        Coding `json:"type,omitempty"`
	Title       string `json:"title,omitempty"`
	Date        string `json:"date,omitempty"`
	Subject     string `json:"subject,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Data        string `json:"data,omitempty"` // base64 source bytes
	DocumentID  string `json:"document_id,omitempty"`
	Hash        string `json:"hash,omitempty"`
}

type Provenance struct {
	Targets   []string `json:"targets,omitempty"`
	Recorded  string   `json:"recorded,omitempty"`
	AgentType string   `json:"agent_type,omitempty"`
	AgentName string   `json:"agent_name,omitempty"`
}

type Coverage struct {
	Status       string `json:"status,omitempty"`
	SubscriberID string `json:"subscriber_id,omitempty"`
	Beneficiary  string `json:"beneficiary,omitempty"`
	Payor        string `json:"payor,omitempty"`
}

type CoverageEligibilityRequest struct {
	Status    string   `json:"status,omitempty"`
	Purposes  []string `json:"purposes,omitempty"`
	Created   string   `json:"created,omitempty"`
	Patient   string   `json:"patient,omitempty"`
	Coverage  string   `json:"coverage,omitempty"`
	Insurer   string   `json:"insurer,omitempty"`
	Provider  string   `json:"provider,omitempty"`
	Priority  string   `json:"priority,omitempty"`
}

// ResourceNode is one graph entry: a closed tagged variant with exactly one
// payload pointer set, matching Type. Refs lists every local id this node
// points at; Ext carries unmodeled data from externally produced bundles.
type ResourceNode struct {
	Type    ResourceType `json:"resource_type"`
	LocalID string       `json:"local_id"`
	Refs    []string     `json:"refs,omitempty"`

	Composition                *Composition                `json:"composition,omitempty"`
	Patient                    *Patient                    `json:"patient,omitempty"`
	Organization               *Organization               `json:"organization,omitempty"`
	Practitioner               *Practitioner               `json:"practitioner,omitempty"`
	Encounter                  *Encounter                  `json:"encounter,omitempty"`
	Condition                  *Condition                  `json:"condition,omitempty"`
	Observation                *Observation                `json:"observation,omitempty"`
	DiagnosticReport           *DiagnosticReport           `json:"diagnostic_report,omitempty"`
	MedicationRequest          *MedicationRequest          `json:"medication_request,omitempty"`
	DocumentReference          *DocumentReference          `json:"document_reference,omitempty"`
	Provenance                 *Provenance                 `json:"provenance,omitempty"`
	Coverage                   *Coverage                   `json:"coverage,omitempty"`
	CoverageEligibilityRequest *CoverageEligibilityRequest `json:"coverage_eligibility_request,omitempty"`

	Ext map[string]string `json:"ext,omitempty"`
}

// Graph is an ordered resource graph. Entry 0 is always the Composition in
// any graph this package builds; externally decoded graphs may violate that,
// which the validator reports rather than faults on.
type Graph struct {
	HIType string          `json:"hi_type,omitempty"`
	Mode   string          `json:"mode,omitempty"`
	Nodes  []*ResourceNode `json:"nodes"`
}

// Build modes.
const (
	ModeSingle = "single"
	ModeClaim  = "claim"
)

// Node returns the node with the given local id, or nil.
func (g *Graph) Node(localID string) *ResourceNode {
	for _, n := range g.Nodes {
		if n.LocalID == localID {
			return n
		}
	}
	return nil
}

// NodesOfType returns the nodes of one resource type in graph order.
func (g *Graph) NodesOfType(t ResourceType) []*ResourceNode {
	var out []*ResourceNode
	for _, n := range g.Nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// Composition returns the graph's Composition node, or nil.
func (g *Graph) Composition() *ResourceNode {
	nodes := g.NodesOfType(TypeComposition)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// CheckInvariants verifies the structural contract: exactly one Composition
// at entry 0, unique local ids, every reference resolving in-graph.
func (g *Graph) CheckInvariants() error {
	var errs []error

	if len(g.Nodes) == 0 {
		return errors.New("empty graph")
	}
	if g.Nodes[0].Type != TypeComposition {
		errs = append(errs, fmt.Errorf("entry 0 is %s, want Composition", g.Nodes[0].Type))
	}
	if n := len(g.NodesOfType(TypeComposition)); n != 1 {
		errs = append(errs, fmt.Errorf("graph has %d Composition nodes, want 1", n))
	}

	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.LocalID == "" {
			errs = append(errs, fmt.Errorf("%s node with empty local id", n.Type))
			continue
		}
		if ids[n.LocalID] {
			errs = append(errs, fmt.Errorf("duplicate local id %s", n.LocalID))
		}
		ids[n.LocalID] = true
	}
	for _, n := range g.Nodes {
		for _, ref := range n.Refs {
			if !ids[ref] {
				errs = append(errs, fmt.Errorf("%s %s references missing node %s", n.Type, n.LocalID, ref))
			}
		}
	}
	return errors.Join(errs...)
}
