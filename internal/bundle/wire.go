package bundle

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Wire form: a FHIR R4 document Bundle. Entry 0 is the Composition, every
// entry carries fullUrl "urn:local:<id>", and cross-references use the same
// urn:local: URIs. Entry order and local-id stability are compatibility
// contracts.

const localURNPrefix = "urn:local:"

func localURN(id string) string { return localURNPrefix + id }

func localID(urn string) string {
	return strings.TrimPrefix(urn, localURNPrefix)
}

func reference(id string) map[string]any {
	return map[string]any{"reference": localURN(id)}
}

func codingJSON(c Coding) map[string]any {
	m := map[string]any{}
	if c.System != "" {
		m["system"] = c.System
	}
	if c.Code != "" {
		m["code"] = c.Code
	}
	if c.Display != "" {
		m["display"] = c.Display
	}
	return m
}

func codeableConcept(c Coding, text string) map[string]any {
	m := map[string]any{}
	if c.Code != "" || c.System != "" {
		m["coding"] = []any{codingJSON(c)}
	}
	if text != "" {
		m["text"] = text
	}
	return m
}

// Encode serializes a graph to the wire bundle JSON.
func Encode(g *Graph) ([]byte, error) {
	if g == nil || len(g.Nodes) == 0 {
		return nil, fmt.Errorf("encode: empty graph")
	}

	bundle := map[string]any{
		"resourceType": "Bundle",
		"id":           uuid.NewString(),
		"type":         "document",
		"identifier": map[string]any{
			"system": SystemNDHMBundle,
			"value":  uuid.NewString(),
		},
	}

	meta := map[string]any{}
	if hi, ok := LookupHIType(g.HIType); ok {
		meta["profile"] = []any{hi.BundleProfile}
	}
	if g.Mode != "" {
		meta["tag"] = []any{map[string]any{"code": g.Mode}}
	}
	if len(meta) > 0 {
		bundle["meta"] = meta
	}
	if comp := g.Composition(); comp != nil && comp.Composition != nil {
		bundle["timestamp"] = comp.Composition.Date
	}

	entries := make([]any, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		res, err := encodeResource(n)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", n.Type, n.LocalID, err)
		}
		entries = append(entries, map[string]any{
			"fullUrl":  localURN(n.LocalID),
			"resource": res,
		})
	}
	bundle["entry"] = entries

	return json.Marshal(bundle)
}

func encodeResource(n *ResourceNode) (map[string]any, error) {
	res := map[string]any{
		"resourceType": string(n.Type),
		"id":           n.LocalID,
	}
	if p := ResourceProfile(n.Type); p != "" {
		res["meta"] = map[string]any{"profile": []any{p}}
	}
	for k, v := range n.Ext {
		res[k] = v
	}

	switch {
	case n.Composition != nil:
		c := n.Composition
		res["status"] = c.Status
		if c.Title != "" {
			res["title"] = c.Title
		}
		if c.Date != "" {
			res["date"] = c.Date
		}
		if c.Profile != "" {
			res["meta"] = map[string]any{"profile": []any{c.Profile}}
		}
		if c.DocType.Code != "" {
			res["type"] = codeableConcept(c.DocType, c.DocType.Display)
		}
		if c.Category.Code != "" {
			res["category"] = []any{codeableConcept(c.Category, "")}
		}
		if c.Subject != "" {
			res["subject"] = reference(c.Subject)
		}
		if c.Encnt != "" {
			res["encounter"] = reference(c.Encnt)
		}
		if c.Author != "" {
			res["author"] = []any{reference(c.Author)}
		}
		var sections []any
		for _, s := range c.Sections {
			entryRefs := make([]any, 0, len(s.Entries))
			for _, id := range s.Entries {
				entryRefs = append(entryRefs, reference(id))
			}
			sections = append(sections, map[string]any{
				"title": s.Title,
				"code":  codeableConcept(s.Code, ""),
				"entry": entryRefs,
			})
		}
		if sections != nil {
			res["section"] = sections
		}

	case n.Patient != nil:
		p := n.Patient
		if p.Name != "" {
			res["name"] = []any{map[string]any{"text": p.Name}}
		}
		if p.Gender != "" {
			res["gender"] = p.Gender
		}
		if p.BirthDate != "" {
			res["birthDate"] = p.BirthDate
		}
		if p.Identifier != "" {
			res["identifier"] = []any{map[string]any{"system": SystemNDHMPatient, "value": p.Identifier}}
		}

	case n.Organization != nil:
		o := n.Organization
		res["name"] = o.Name
		if o.Identifier != "" {
			res["identifier"] = []any{map[string]any{"system": SystemNHCXProvider, "value": o.Identifier}}
		}

	case n.Practitioner != nil:
		res["name"] = []any{map[string]any{"text": n.Practitioner.Name}}

	case n.Encounter != nil:
		e := n.Encounter
		res["status"] = e.Status
		res["class"] = codingJSON(e.Class)
		period := map[string]any{}
		if e.Start != "" {
			period["start"] = e.Start
		}
		if e.End != "" {
			period["end"] = e.End
		}
		if len(period) > 0 {
			res["period"] = period
		}
		if e.ServiceProvider != "" {
			res["serviceProvider"] = reference(e.ServiceProvider)
		}

	case n.Condition != nil:
		c := n.Condition
		if c.ClinicalStatus != "" {
			res["clinicalStatus"] = codeableConcept(Coding{System: SystemConditionClinical, Code: c.ClinicalStatus}, "")
		}
		res["code"] = codeableConcept(c.Code, c.Text)
		if c.Subject != "" {
			res["subject"] = reference(c.Subject)
		}
		if c.RecordedDate != "" {
			res["recordedDate"] = c.RecordedDate
		}

	case n.Observation != nil:
		o := n.Observation
		res["status"] = o.Status
		res["code"] = codeableConcept(o.Code, o.Text)
		if o.Subject != "" {
			res["subject"] = reference(o.Subject)
		}
		if o.Effective != "" {
			res["effectiveDateTime"] = o.Effective
		}
		if o.Value != "" {
			if o.Unit != "" {
				res["valueQuantity"] = map[string]any{"value": o.Value, "unit": o.Unit, "system": SystemUCUM}
			} else {
				res["valueString"] = o.Value
			}
		}
		if o.ReferenceRange != "" {
			res["referenceRange"] = []any{map[string]any{"text": o.ReferenceRange}}
		}
		if o.Interpretation != "" {
			res["interpretation"] = []any{map[string]any{"text": o.Interpretation}}
		}

	case n.DiagnosticReport != nil:
		d := n.DiagnosticReport
		res["status"] = d.Status
		res["code"] = codeableConcept(d.Code, "")
		if d.Subject != "" {
			res["subject"] = reference(d.Subject)
		}
		results := make([]any, 0, len(d.Results))
		for _, id := range d.Results {
			results = append(results, reference(id))
		}
		if len(results) > 0 {
			res["result"] = results
		}

	case n.MedicationRequest != nil:
		m := n.MedicationRequest
		res["status"] = m.Status
		res["intent"] = m.Intent
		res["medicationCodeableConcept"] = map[string]any{"text": m.Medication}
		if m.Dose != "" || m.Frequency != "" {
			dosage := map[string]any{}
			if m.Dose != "" {
				dosage["text"] = m.Dose
			}
			if m.Frequency != "" {
				dosage["patientInstruction"] = m.Frequency
			}
			res["dosageInstruction"] = []any{dosage}
		}
		if m.Subject != "" {
			res["subject"] = reference(m.Subject)
		}

	case n.DocumentReference != nil:
		d := n.DocumentReference
		res["status"] = d.Status
		if d.Type.Code != "" {
			res["type"] = codeableConcept(d.Type, "")
		}
		if d.Date != "" {
			res["date"] = d.Date
		}
		if d.Subject != "" {
			res["subject"] = reference(d.Subject)
		}
		if d.DocumentID != "" {
			res["identifier"] = []any{map[string]any{"value": d.DocumentID}}
		}
		attachment := map[string]any{}
		if d.ContentType != "" {
			attachment["contentType"] = d.ContentType
		}
		if d.Title != "" {
			attachment["title"] = d.Title
		}
		if d.Data != "" {
			attachment["data"] = d.Data
		}
		if d.Hash != "" {
			attachment["hash"] = d.Hash
		}
		res["content"] = []any{map[string]any{"attachment": attachment}}

	case n.Provenance != nil:
		p := n.Provenance
		targets := make([]any, 0, len(p.Targets))
		for _, id := range p.Targets {
			targets = append(targets, reference(id))
		}
		res["target"] = targets
		if p.Recorded != "" {
			res["recorded"] = p.Recorded
		}
		res["agent"] = []any{map[string]any{
			"type": codeableConcept(Coding{System: SystemProvenanceAgent, Code: p.AgentType}, ""),
			"who":  map[string]any{"display": p.AgentName},
		}}

	case n.Coverage != nil:
		c := n.Coverage
		res["status"] = c.Status
		if c.SubscriberID != "" {
			res["subscriberId"] = c.SubscriberID
		}
		if c.Beneficiary != "" {
			res["beneficiary"] = reference(c.Beneficiary)
		}
		if c.Payor != "" {
			res["payor"] = []any{map[string]any{"display": c.Payor}}
		}

	case n.CoverageEligibilityRequest != nil:
		c := n.CoverageEligibilityRequest
		res["status"] = c.Status
		purposes := make([]any, 0, len(c.Purposes))
		for _, p := range c.Purposes {
			purposes = append(purposes, p)
		}
		res["purpose"] = purposes
		if c.Priority != "" {
			res["priority"] = codeableConcept(Coding{Code: c.Priority}, "")
		}
		if c.Created != "" {
			res["created"] = c.Created
		}
		if c.Patient != "" {
			res["patient"] = reference(c.Patient)
		}
		if c.Coverage != "" {
			res["insurance"] = []any{map[string]any{"coverage": reference(c.Coverage)}}
		}
		if c.Insurer != "" {
			res["insurer"] = map[string]any{"display": c.Insurer}
		}
		if c.Provider != "" {
			res["provider"] = reference(c.Provider)
		}

	default:
		// Generic node from a tolerant decode: Ext already merged above.
	}

	return res, nil
}

// Decode parses a wire bundle, possibly produced elsewhere, into a Graph.
// It is tolerant: unknown resource types land in a generic node with their
// scalar fields in Ext, and structural violations (missing Composition,
// dangling references) are left for the validator to report.
func Decode(raw []byte) (*Graph, error) {
	var bundle struct {
		ResourceType string `json:"resourceType"`
		Meta         struct {
			Tag []struct {
				Code string `json:"code"`
			} `json:"tag"`
		} `json:"meta"`
		Entry []struct {
			FullURL  string          `json:"fullUrl"`
			Resource json.RawMessage `json:"resource"`
		} `json:"entry"`
	}
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if bundle.ResourceType != "Bundle" {
		return nil, fmt.Errorf("decode bundle: resourceType %q, want Bundle", bundle.ResourceType)
	}

	g := &Graph{}
	if len(bundle.Meta.Tag) > 0 {
		g.Mode = bundle.Meta.Tag[0].Code
	}

	for i, entry := range bundle.Entry {
		var res map[string]any
		if err := json.Unmarshal(entry.Resource, &res); err != nil {
			return nil, fmt.Errorf("decode entry %d: %w", i, err)
		}
		n := decodeResource(entry.FullURL, res)
		g.Nodes = append(g.Nodes, n)
	}

	if comp := g.Composition(); comp != nil && comp.Composition != nil {
		for _, code := range HITypeCodes() {
			if hiTypes[code].SNOMEDCode == comp.Composition.Category.Code {
				g.HIType = code
				break
			}
		}
	}
	return g, nil
}

func decodeResource(fullURL string, res map[string]any) *ResourceNode {
	n := &ResourceNode{
		Type:    ResourceType(str(res["resourceType"])),
		LocalID: localID(fullURL),
	}
	if n.LocalID == "" {
		n.LocalID = str(res["id"])
	}
	n.Refs = collectRefs(res)

	switch n.Type {
	case TypeComposition:
		c := &Composition{
			Status:  str(res["status"]),
			Title:   str(res["title"]),
			Date:    str(res["date"]),
			Subject: refID(res["subject"]),
			Encnt:   refID(res["encounter"]),
			DocType: firstCoding(res["type"]),
		}
		if cats, ok := res["category"].([]any); ok && len(cats) > 0 {
			c.Category = firstCoding(cats[0])
		}
		if authors, ok := res["author"].([]any); ok && len(authors) > 0 {
			c.Author = refID(authors[0])
		}
		if sections, ok := res["section"].([]any); ok {
			for _, sv := range sections {
				sm, ok := sv.(map[string]any)
				if !ok {
					continue
				}
				s := Section{Title: str(sm["title"]), Code: firstCoding(sm["code"])}
				if entries, ok := sm["entry"].([]any); ok {
					for _, ev := range entries {
						if id := refID(ev); id != "" {
							s.Entries = append(s.Entries, id)
						}
					}
				}
				c.Sections = append(c.Sections, s)
			}
		}
		n.Composition = c

	case TypePatient:
		p := &Patient{
			Gender:    str(res["gender"]),
			BirthDate: str(res["birthDate"]),
		}
		if names, ok := res["name"].([]any); ok && len(names) > 0 {
			if nm, ok := names[0].(map[string]any); ok {
				p.Name = str(nm["text"])
			}
		}
		p.Identifier = firstIdentifier(res["identifier"])
		n.Patient = p

	case TypeOrganization:
		n.Organization = &Organization{
			Name:       str(res["name"]),
			Identifier: firstIdentifier(res["identifier"]),
		}

	case TypePractitioner:
		p := &Practitioner{}
		if names, ok := res["name"].([]any); ok && len(names) > 0 {
			if nm, ok := names[0].(map[string]any); ok {
				p.Name = str(nm["text"])
			}
		}
		n.Practitioner = p

	case TypeEncounter:
		e := &Encounter{
			Status:          str(res["status"]),
			ServiceProvider: refID(res["serviceProvider"]),
		}
		if class, ok := res["class"].(map[string]any); ok {
			e.Class = Coding{System: str(class["system"]), Code: str(class["code"]), Display: str(class["display"])}
		}
		if period, ok := res["period"].(map[string]any); ok {
			e.Start = str(period["start"])
			e.End = str(period["end"])
		}
		n.Encounter = e

	case TypeCondition:
		c := &Condition{
			Code:         firstCoding(res["code"]),
			Text:         conceptText(res["code"]),
			Subject:      refID(res["subject"]),
			RecordedDate: str(res["recordedDate"]),
		}
		c.ClinicalStatus = firstCoding(res["clinicalStatus"]).Code
		n.Condition = c

	case TypeObservation:
		o := &Observation{
			Status:    str(res["status"]),
			Code:      firstCoding(res["code"]),
			Text:      conceptText(res["code"]),
			Subject:   refID(res["subject"]),
			Effective: str(res["effectiveDateTime"]),
			Value:     str(res["valueString"]),
		}
		if vq, ok := res["valueQuantity"].(map[string]any); ok {
			o.Value = str(vq["value"])
			o.Unit = str(vq["unit"])
		}
		if rr, ok := res["referenceRange"].([]any); ok && len(rr) > 0 {
			if m, ok := rr[0].(map[string]any); ok {
				o.ReferenceRange = str(m["text"])
			}
		}
		if in, ok := res["interpretation"].([]any); ok && len(in) > 0 {
			if m, ok := in[0].(map[string]any); ok {
				o.Interpretation = str(m["text"])
			}
		}
		n.Observation = o

	case TypeDiagnosticReport:
		d := &DiagnosticReport{
			Status:  str(res["status"]),
			Code:    firstCoding(res["code"]),
			Subject: refID(res["subject"]),
		}
		if results, ok := res["result"].([]any); ok {
			for _, rv := range results {
				if id := refID(rv); id != "" {
					d.Results = append(d.Results, id)
				}
			}
		}
		n.DiagnosticReport = d

	case TypeMedicationRequest:
		m := &MedicationRequest{
			Status:  str(res["status"]),
			Intent:  str(res["intent"]),
			Subject: refID(res["subject"]),
		}
		if med, ok := res["medicationCodeableConcept"].(map[string]any); ok {
			m.Medication = str(med["text"])
		}
		if di, ok := res["dosageInstruction"].([]any); ok && len(di) > 0 {
			if dm, ok := di[0].(map[string]any); ok {
				m.Dose = str(dm["text"])
				m.Frequency = str(dm["patientInstruction"])
			}
		}
		n.MedicationRequest = m

	case TypeDocumentReference:
		d := &DocumentReference{
			Status:     str(res["status"]),
			Type:       firstCoding(res["type"]),
			Date:       str(res["date"]),
			Subject:    refID(res["subject"]),
			DocumentID: firstIdentifier(res["identifier"]),
		}
		if content, ok := res["content"].([]any); ok && len(content) > 0 {
			if cm, ok := content[0].(map[string]any); ok {
				if att, ok := cm["attachment"].(map[string]any); ok {
					d.ContentType = str(att["contentType"])
					d.Title = str(att["title"])
					d.Data = str(att["data"])
					d.Hash = str(att["hash"])
				}
			}
		}
		n.DocumentReference = d

	case TypeProvenance:
		p := &Provenance{Recorded: str(res["recorded"])}
		if targets, ok := res["target"].([]any); ok {
			for _, tv := range targets {
				if id := refID(tv); id != "" {
					p.Targets = append(p.Targets, id)
				}
			}
		}
		if agents, ok := res["agent"].([]any); ok && len(agents) > 0 {
			if am, ok := agents[0].(map[string]any); ok {
				p.AgentType = firstCoding(am["type"]).Code
				if who, ok := am["who"].(map[string]any); ok {
					p.AgentName = str(who["display"])
				}
			}
		}
		n.Provenance = p

	case TypeCoverage:
		c := &Coverage{
			Status:       str(res["status"]),
			SubscriberID: str(res["subscriberId"]),
			Beneficiary:  refID(res["beneficiary"]),
		}
		if payors, ok := res["payor"].([]any); ok && len(payors) > 0 {
			if pm, ok := payors[0].(map[string]any); ok {
				c.Payor = str(pm["display"])
			}
		}
		n.Coverage = c

	case TypeCoverageEligibilityRequest:
		c := &CoverageEligibilityRequest{
			Status:   str(res["status"]),
			Created:  str(res["created"]),
			Patient:  refID(res["patient"]),
			Provider: refID(res["provider"]),
			Priority: firstCoding(res["priority"]).Code,
		}
		if purposes, ok := res["purpose"].([]any); ok {
			for _, pv := range purposes {
				c.Purposes = append(c.Purposes, str(pv))
			}
		}
		if ins, ok := res["insurance"].([]any); ok && len(ins) > 0 {
			if im, ok := ins[0].(map[string]any); ok {
				c.Coverage = refID(im["coverage"])
			}
		}
		if insurer, ok := res["insurer"].(map[string]any); ok {
			c.Insurer = str(insurer["display"])
		}
		n.CoverageEligibilityRequest = c

	default:
		// Unknown resource type: keep the scalar fields so a re-encode does
		// not silently drop data.
		n.Ext = make(map[string]string)
		for k, v := range res {
			if k == "resourceType" || k == "id" {
				continue
			}
			if s, ok := v.(string); ok {
				n.Ext[k] = s
			}
		}
	}

	return n
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// refID extracts a local id from a {"reference": "urn:local:rN"} value.
// References outside the urn:local scheme are kept verbatim so the validator
// can report them as unresolvable.
func refID(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	ref := str(m["reference"])
	if ref == "" {
		return ""
	}
	return localID(ref)
}

func firstCoding(v any) Coding {
	m, ok := v.(map[string]any)
	if !ok {
		return Coding{}
	}
	codings, ok := m["coding"].([]any)
	if !ok || len(codings) == 0 {
		return Coding{}
	}
	cm, ok := codings[0].(map[string]any)
	if !ok {
		return Coding{}
	}
	return Coding{System: str(cm["system"]), Code: str(cm["code"]), Display: str(cm["display"])}
}

func conceptText(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	return str(m["text"])
}

func firstIdentifier(v any) string {
	ids, ok := v.([]any)
	if !ok || len(ids) == 0 {
		return ""
	}
	m, ok := ids[0].(map[string]any)
	if !ok {
		return ""
	}
	return str(m["value"])
}

// collectRefs walks a decoded resource for urn:local references.
func collectRefs(v any) []string {
	var refs []string
	var walk func(any)
	walk = func(v any) {
		switch x := v.(type) {
		case map[string]any:
			for k, val := range x {
				if k == "reference" {
					if s, ok := val.(string); ok && strings.HasPrefix(s, localURNPrefix) {
						refs = append(refs, localID(s))
					}
					continue
				}
				walk(val)
			}
		case []any:
			for _, item := range x {
				walk(item)
			}
		}
	}
	walk(v)
	return refs
}
