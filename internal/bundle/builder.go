package bundle

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/gyeh/fhirbridge/internal/model"
	"github.com/gyeh/fhirbridge/internal/normalize"
)

// Builder assembles a Graph from a fused record and its source documents.
// The zero value is usable; EmbedSource controls whether original document
// bytes are carried base64-encoded inside DocumentReference nodes.
type Builder struct {
	EmbedSource bool

	// Clock stamps Composition and Provenance dates. Nil means time.Now.
	Clock func() time.Time
}

func (b *Builder) now() time.Time {
	if b.Clock != nil {
		return b.Clock()
	}
	return time.Now().UTC()
}

// Build assembles a referentially closed document graph. The Composition is
// always entry 0 under local id r1; remaining ids are assigned monotonically
// in emission order. An unrecognized hiType still builds — the Composition
// just carries no category, which the validator reports.
func (b *Builder) Build(rec *model.FusedRecord, docs []model.ExtractedDocument, hiType, mode string) (*Graph, error) {
	if rec == nil {
		return nil, errors.New("build: nil record")
	}
	if mode != ModeSingle && mode != ModeClaim {
		return nil, fmt.Errorf("build: unknown mode %q", mode)
	}

	g := &Graph{HIType: hiType, Mode: mode}
	nextID := 0
	newNode := func(t ResourceType) *ResourceNode {
		nextID++
		n := &ResourceNode{Type: t, LocalID: fmt.Sprintf("r%d", nextID)}
		g.Nodes = append(g.Nodes, n)
		return n
	}

	now := b.now().Format(time.RFC3339)
	hi, hiOK := LookupHIType(hiType)
	if hiOK {
		g.HIType = hi.Code
	}

	comp := newNode(TypeComposition)
	comp.Composition = &Composition{
		Status: "final",
		Date:   now,
	}
	if hiOK {
		comp.Composition.Title = hi.Display
		comp.Composition.Profile = hi.CompositionProfile
		comp.Composition.Category = Coding{System: SystemSNOMED, Code: hi.SNOMEDCode, Display: hi.SNOMEDDisplay}
		comp.Composition.DocType = Coding{System: SystemLOINC, Code: hi.LOINCCode, Display: hi.LOINCDisplay}
	} else {
		comp.Composition.Title = "Clinical Document"
	}

	patient := newNode(TypePatient)
	patient.Patient = &Patient{
		Name:       rec.Demographics.Name,
		Gender:     rec.Demographics.Gender,
		BirthDate:  rec.Demographics.BirthDate,
		Identifier: rec.Demographics.PatientID,
	}
	comp.Composition.Subject = patient.LocalID
	comp.Refs = append(comp.Refs, patient.LocalID)

	var org *ResourceNode
	if rec.Encounter.Facility != "" {
		org = newNode(TypeOrganization)
		org.Organization = &Organization{
			Name:       rec.Encounter.Facility,
			Identifier: rec.Encounter.FacilityID,
		}
	}

	if rec.Encounter.Physician != "" {
		pract := newNode(TypePractitioner)
		pract.Practitioner = &Practitioner{Name: rec.Encounter.Physician}
		comp.Composition.Author = pract.LocalID
		comp.Refs = append(comp.Refs, pract.LocalID)
	}

	if rec.Encounter.AdmissionDate != nil || rec.Encounter.DischargeDate != nil {
		enc := newNode(TypeEncounter)
		enc.Encounter = &Encounter{
			Status: "finished",
			Class:  Coding{System: SystemEncounterClass, Code: "IMP", Display: "inpatient encounter"},
			Start:  normalize.DateOnly(rec.Encounter.AdmissionDate),
			End:    normalize.DateOnly(rec.Encounter.DischargeDate),
		}
		if org != nil {
			enc.Encounter.ServiceProvider = org.LocalID
			enc.Refs = append(enc.Refs, org.LocalID)
		}
		comp.Composition.Encnt = enc.LocalID
		comp.Refs = append(comp.Refs, enc.LocalID)
	}

	var conditionIDs, observationIDs []string
	for _, f := range rec.Findings {
		switch f.Type {
		case model.FindingLabResult:
			obs := newNode(TypeObservation)
			obs.Observation = &Observation{
				Status:         "final",
				Text:           f.RawText,
				Value:          f.Value,
				Unit:           f.Unit,
				ReferenceRange: f.ReferenceRange,
				Interpretation: f.AbnormalFlag,
				Subject:        patient.LocalID,
			}
			if !f.Timestamp.IsZero() {
				obs.Observation.Effective = f.Timestamp.Format(time.RFC3339)
			}
			if f.Coded() {
				obs.Observation.Code = findingCoding(f.ClinicalFinding)
			}
			obs.Refs = append(obs.Refs, patient.LocalID)
			observationIDs = append(observationIDs, obs.LocalID)
		default:
			cond := newNode(TypeCondition)
			cond.Condition = &Condition{
				Text:           f.RawText,
				ClinicalStatus: "active",
				Subject:        patient.LocalID,
			}
			if !f.Timestamp.IsZero() {
				cond.Condition.RecordedDate = normalize.DateOnly(&f.Timestamp)
			}
			if f.Coded() {
				cond.Condition.Code = findingCoding(f.ClinicalFinding)
			}
			cond.Refs = append(cond.Refs, patient.LocalID)
			conditionIDs = append(conditionIDs, cond.LocalID)
		}
	}

	investigationIDs := observationIDs
	if len(observationIDs) > 0 {
		dr := newNode(TypeDiagnosticReport)
		dr.DiagnosticReport = &DiagnosticReport{
			Status:  "final",
			Code:    Coding{System: SystemLOINC, Code: "11502-2", Display: "Laboratory report"},
			Subject: patient.LocalID,
			Results: observationIDs,
		}
		dr.Refs = append(dr.Refs, patient.LocalID)
		dr.Refs = append(dr.Refs, observationIDs...)
		investigationIDs = append(investigationIDs, dr.LocalID)
	}

	var medicationIDs []string
	for _, m := range rec.Medications {
		mr := newNode(TypeMedicationRequest)
		mr.MedicationRequest = &MedicationRequest{
			Status:     "active",
			Intent:     "order",
			Medication: m.Name,
			Dose:       m.Dose,
			Frequency:  m.Frequency,
			Subject:    patient.LocalID,
		}
		mr.Refs = append(mr.Refs, patient.LocalID)
		medicationIDs = append(medicationIDs, mr.LocalID)
	}

	var docRefIDs []string
	for _, d := range docs {
		ref := newNode(TypeDocumentReference)
		ref.DocumentReference = &DocumentReference{
			Status:      "current",
			Title:       d.FileName,
			Date:        now,
			Subject:     patient.LocalID,
			ContentType: d.ContentType,
			DocumentID:  d.ID,
		}
		if hiOK {
			ref.DocumentReference.Type = Coding{System: SystemSNOMED, Code: hi.SNOMEDCode, Display: hi.SNOMEDDisplay}
		}
		if len(d.Source) > 0 {
			ref.DocumentReference.Hash = normalize.DocumentHash(d.Source)
			if b.EmbedSource {
				ref.DocumentReference.Data = base64.StdEncoding.EncodeToString(d.Source)
			}
		}
		ref.Refs = append(ref.Refs, patient.LocalID)
		docRefIDs = append(docRefIDs, ref.LocalID)
	}

	if mode == ModeClaim {
		cov := newNode(TypeCoverage)
		cov.Coverage = &Coverage{
			Status:       "active",
			SubscriberID: rec.Demographics.PatientID,
			Beneficiary:  patient.LocalID,
		}
		cov.Refs = append(cov.Refs, patient.LocalID)

		cer := newNode(TypeCoverageEligibilityRequest)
		cer.CoverageEligibilityRequest = &CoverageEligibilityRequest{
			Status:   "active",
			Purposes: []string{"benefits", "validation"},
			Priority: "normal",
			Created:  now,
			Patient:  patient.LocalID,
			Coverage: cov.LocalID,
		}
		cer.Refs = append(cer.Refs, patient.LocalID, cov.LocalID)
	}

	b.fillSections(comp, hiOK, conditionIDs, investigationIDs, medicationIDs, docRefIDs)

	prov := newNode(TypeProvenance)
	prov.Provenance = &Provenance{
		Recorded:  now,
		AgentType: "assembler",
		AgentName: "fhirbridge",
	}
	for _, n := range g.Nodes {
		if n == prov {
			continue
		}
		prov.Provenance.Targets = append(prov.Provenance.Targets, n.LocalID)
		prov.Refs = append(prov.Refs, n.LocalID)
	}

	if err := g.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	return g, nil
}

func (b *Builder) fillSections(comp *ResourceNode, hiOK bool, conditions, investigations, medications, docRefs []string) {
	addSection := func(title, loincCode, loincDisplay string, entries []string) {
		if len(entries) == 0 {
			return
		}
		comp.Composition.Sections = append(comp.Composition.Sections, Section{
			Title:   title,
			Code:    Coding{System: SystemLOINC, Code: loincCode, Display: loincDisplay},
			Entries: entries,
		})
		comp.Refs = append(comp.Refs, entries...)
	}

	addSection("Medical History", "11348-0", "History of past illness", conditions)
	addSection("Investigations", "30954-2", "Relevant diagnostic tests", investigations)
	addSection("Medications", "10160-0", "History of medication use", medications)
	addSection("Source Documents", "51852-2", "Letter", docRefs)
}

func findingCoding(f model.ClinicalFinding) Coding {
	return Coding{
		System:  f.Chosen.System,
		Code:    f.Chosen.Code,
		Display: f.Chosen.Display,
	}
}
