package bundle

// ABDM/NHCX profile URLs, SNOMED codes, and coding system URIs. Single
// source of truth; no other file hardcodes a profile URL.

// Coding system URIs.
const (
	SystemSNOMED            = "http://snomed.info/sct"
	SystemLOINC             = "http://loinc.org"
	SystemICD10             = "http://hl7.org/fhir/sid/icd-10"
	SystemUCUM              = "http://unitsofmeasure.org"
	SystemConditionClinical = "http://terminology.hl7.org/CodeSystem/condition-clinical"
	SystemConditionCategory = "http://terminology.hl7.org/CodeSystem/condition-category"
	SystemEncounterClass    = "http://terminology.hl7.org/CodeSystem/v3-ActCode"
	SystemProvenanceAgent   = "http://terminology.hl7.org/CodeSystem/provenance-participant-type"
	SystemCoverageClass     = "http://terminology.hl7.org/CodeSystem/coverage-class"
	SystemNHCXProvider      = "https://nhcx.health.gov.in/providers"
	SystemNHCXInsurer       = "https://nhcx.health.gov.in/insurers"
	SystemNDHMPatient       = "https://ndhm.gov.in/patients"
	SystemNDHMBundle        = "https://ndhm.gov.in"
	SystemNDHMOrg           = "https://ndhm.gov.in/organizations"
)

// HIType is a health-information type from the ABDM FHIR implementation
// guide. The zero value is not valid; use LookupHIType.
type HIType struct {
	Code               string
	Display            string
	BundleProfile      string
	CompositionProfile string
	SNOMEDCode         string
	SNOMEDDisplay      string
	LOINCCode          string
	LOINCDisplay       string
}

const nrcesBase = "https://nrces.in/ndhm/fhir/r4/StructureDefinition/"

var hiTypes = map[string]HIType{
	"DischargeSummary": {
		Code:               "DischargeSummary",
		Display:            "Discharge Summary",
		BundleProfile:      nrcesBase + "DischargeSummaryRecord",
		CompositionProfile: nrcesBase + "DischargeSummary",
		SNOMEDCode:         "373942005",
		SNOMEDDisplay:      "Discharge summary",
		LOINCCode:          "18842-5",
		LOINCDisplay:       "Discharge summary",
	},
	"DiagnosticReport": {
		Code:               "DiagnosticReport",
		Display:            "Diagnostic Report",
		BundleProfile:      nrcesBase + "DiagnosticReportRecord",
		CompositionProfile: nrcesBase + "DiagnosticReportComposition",
		SNOMEDCode:         "4241000179101",
		SNOMEDDisplay:      "Diagnostic report",
		LOINCCode:          "11502-2",
		LOINCDisplay:       "Laboratory report",
	},
	"OPConsultation": {
		Code:               "OPConsultation",
		Display:            "OP Consultation",
		BundleProfile:      nrcesBase + "OPConsultRecord",
		CompositionProfile: nrcesBase + "OPConsultation",
		SNOMEDCode:         "371530004",
		SNOMEDDisplay:      "Clinical consultation report",
		LOINCCode:          "11488-4",
		LOINCDisplay:       "Consultation note",
	},
	"Prescription": {
		Code:               "Prescription",
		Display:            "Prescription",
		BundleProfile:      nrcesBase + "PrescriptionRecord",
		CompositionProfile: nrcesBase + "Prescription",
		SNOMEDCode:         "440545006",
		SNOMEDDisplay:      "Prescription record",
		LOINCCode:          "57833-6",
		LOINCDisplay:       "Prescription for medication",
	},
}

// docTypeToHIType maps detector document types onto ABDM HI types. Unknown
// types deliberately have no entry: a bundle built without a confident
// classification carries no Composition category and the validator flags it.
var docTypeToHIType = map[string]string{
	"discharge_summary": "DischargeSummary",
	"diagnostic_report": "DiagnosticReport",
	"lab_report":        "DiagnosticReport",
	"op_consultation":   "OPConsultation",
	"prescription":      "Prescription",
}

// LookupHIType resolves a detected document type or an ABDM HI type code.
// ok is false when the classification is unknown.
func LookupHIType(docType string) (HIType, bool) {
	if hi, ok := hiTypes[docType]; ok {
		return hi, true
	}
	if key, ok := docTypeToHIType[docType]; ok {
		return hiTypes[key], true
	}
	return HIType{}, false
}

// HITypeCodes lists the supported HI type codes in stable order.
func HITypeCodes() []string {
	return []string{"DischargeSummary", "DiagnosticReport", "OPConsultation", "Prescription"}
}

// ResourceProfile returns the NRCeS profile URL for a resource type, or ""
// when no profile is published for it.
func ResourceProfile(rt ResourceType) string {
	if p, ok := resourceProfiles[rt]; ok {
		return p
	}
	return ""
}

var resourceProfiles = map[ResourceType]string{
	TypeComposition:                nrcesBase + "DischargeSummary",
	TypePatient:                    nrcesBase + "Patient",
	TypeOrganization:               nrcesBase + "Organization",
	TypePractitioner:               nrcesBase + "Practitioner",
	TypeEncounter:                  nrcesBase + "Encounter",
	TypeCondition:                  nrcesBase + "Condition",
	TypeObservation:                nrcesBase + "Observation",
	TypeDiagnosticReport:           nrcesBase + "DiagnosticReportLab",
	TypeMedicationRequest:          nrcesBase + "MedicationRequest",
	TypeCoverage:                   nrcesBase + "Coverage",
	TypeCoverageEligibilityRequest: nrcesBase + "CoverageEligibilityRequest",
	TypeDocumentReference:          nrcesBase + "DocumentReference",
	TypeProvenance:                 nrcesBase + "Provenance",
}
