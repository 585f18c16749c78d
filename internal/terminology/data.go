package terminology

// Embedded default dictionaries: common clinical diagnoses (ICD-10) and lab
// tests (LOINC). These ship with the binary so coding works with no asset
// and no network; a Parquet dictionary can replace them via LoadParquet.

var icd10Entries = []Entry{
	// Cardiovascular
	{Term: "acute myocardial infarction", Code: "I21.9", Display: "Acute myocardial infarction, unspecified"},
	{Term: "myocardial infarction", Code: "I21.9", Display: "Acute myocardial infarction, unspecified"},
	{Term: "heart attack", Code: "I21.9", Display: "Acute myocardial infarction, unspecified"},
	{Term: "unstable angina", Code: "I20.0", Display: "Unstable angina"},
	{Term: "angina pectoris", Code: "I20.9", Display: "Angina pectoris, unspecified"},
	{Term: "heart failure", Code: "I50.9", Display: "Heart failure, unspecified"},
	{Term: "congestive heart failure", Code: "I50.0", Display: "Congestive heart failure"},
	{Term: "hypertension", Code: "I10", Display: "Essential (primary) hypertension"},
	{Term: "essential hypertension", Code: "I10", Display: "Essential (primary) hypertension"},
	{Term: "hypertensive heart disease", Code: "I11.9", Display: "Hypertensive heart disease without heart failure"},
	{Term: "atrial fibrillation", Code: "I48.91", Display: "Unspecified atrial fibrillation"},
	{Term: "coronary artery disease", Code: "I25.10", Display: "Atherosclerotic heart disease of native coronary artery"},
	{Term: "stroke", Code: "I63.9", Display: "Cerebral infarction, unspecified"},
	{Term: "cerebrovascular accident", Code: "I63.9", Display: "Cerebral infarction, unspecified"},
	{Term: "deep vein thrombosis", Code: "I82.409", Display: "Acute DVT of unspecified deep veins"},
	{Term: "pulmonary embolism", Code: "I26.99", Display: "Other pulmonary embolism without acute cor pulmonale"},

	// Endocrine / metabolic
	{Term: "type 2 diabetes mellitus", Code: "E11.9", Display: "Type 2 diabetes mellitus without complications"},
	{Term: "type 2 diabetes", Code: "E11.9", Display: "Type 2 diabetes mellitus without complications"},
	{Term: "diabetes mellitus", Code: "E11.9", Display: "Type 2 diabetes mellitus without complications"},
	{Term: "diabetes", Code: "E11.9", Display: "Type 2 diabetes mellitus without complications"},
	{Term: "type 1 diabetes mellitus", Code: "E10.9", Display: "Type 1 diabetes mellitus without complications"},
	{Term: "diabetic ketoacidosis", Code: "E11.10", Display: "Type 2 diabetes with ketoacidosis without coma"},
	{Term: "hypothyroidism", Code: "E03.9", Display: "Hypothyroidism, unspecified"},
	{Term: "hyperthyroidism", Code: "E05.90", Display: "Thyrotoxicosis, unspecified without thyrotoxic crisis"},
	{Term: "obesity", Code: "E66.9", Display: "Obesity, unspecified"},
	{Term: "dyslipidemia", Code: "E78.5", Display: "Hyperlipidemia, unspecified"},
	{Term: "hyperlipidemia", Code: "E78.5", Display: "Hyperlipidemia, unspecified"},
	{Term: "gout", Code: "M10.9", Display: "Gout, unspecified"},

	// Respiratory
	{Term: "pneumonia", Code: "J18.9", Display: "Pneumonia, unspecified organism"},
	{Term: "community acquired pneumonia", Code: "J18.9", Display: "Pneumonia, unspecified organism"},
	{Term: "asthma", Code: "J45.909", Display: "Unspecified asthma, uncomplicated"},
	{Term: "chronic obstructive pulmonary disease", Code: "J44.1", Display: "COPD with acute exacerbation"},
	{Term: "tuberculosis", Code: "A15.9", Display: "Respiratory tuberculosis, unspecified"},
	{Term: "pulmonary tuberculosis", Code: "A15.9", Display: "Respiratory tuberculosis, unspecified"},
	{Term: "pleural effusion", Code: "J90", Display: "Pleural effusion, not elsewhere classified"},
	{Term: "covid 19", Code: "U07.1", Display: "COVID-19, virus identified"},

	// Gastrointestinal
	{Term: "acute pancreatitis", Code: "K85.90", Display: "Acute pancreatitis without necrosis or infection, unspecified"},
	{Term: "pancreatitis", Code: "K85.90", Display: "Acute pancreatitis without necrosis or infection, unspecified"},
	{Term: "peptic ulcer disease", Code: "K27.9", Display: "Peptic ulcer, unspecified"},
	{Term: "gastroenteritis", Code: "K52.9", Display: "Noninfective gastroenteritis and colitis, unspecified"},
	{Term: "liver cirrhosis", Code: "K74.60", Display: "Unspecified cirrhosis of liver"},
	{Term: "hepatitis b", Code: "B18.1", Display: "Chronic viral hepatitis B without delta-agent"},
	{Term: "hepatitis c", Code: "B18.2", Display: "Chronic viral hepatitis C"},
	{Term: "cholecystitis", Code: "K81.9", Display: "Cholecystitis, unspecified"},
	{Term: "appendicitis", Code: "K37", Display: "Unspecified appendicitis"},
	{Term: "intestinal obstruction", Code: "K56.609", Display: "Unspecified intestinal obstruction"},

	// Renal
	{Term: "acute kidney injury", Code: "N17.9", Display: "Acute kidney failure, unspecified"},
	{Term: "chronic kidney disease", Code: "N18.9", Display: "Chronic kidney disease, unspecified"},
	{Term: "urinary tract infection", Code: "N39.0", Display: "Urinary tract infection, site not specified"},
	{Term: "nephrotic syndrome", Code: "N04.9", Display: "Nephrotic syndrome with unspecified morphological changes"},
	{Term: "kidney stone", Code: "N20.0", Display: "Calculus of kidney"},
	{Term: "renal calculus", Code: "N20.0", Display: "Calculus of kidney"},

	// Neurological
	{Term: "epilepsy", Code: "G40.909", Display: "Unspecified epilepsy, not intractable"},
	{Term: "seizure", Code: "G40.909", Display: "Unspecified epilepsy, not intractable"},
	{Term: "migraine", Code: "G43.909", Display: "Migraine, unspecified, not intractable"},
	{Term: "parkinson disease", Code: "G20", Display: "Parkinson disease"},
	{Term: "meningitis", Code: "G03.9", Display: "Meningitis, unspecified"},
	{Term: "encephalitis", Code: "G04.90", Display: "Encephalitis, myelitis and encephalomyelitis, unspecified"},

	// Oncology
	{Term: "breast cancer", Code: "C50.911", Display: "Malignant neoplasm of unspecified site of right female breast"},
	{Term: "lung cancer", Code: "C34.90", Display: "Malignant neoplasm of unspecified part of unspecified bronchus and lung"},
	{Term: "colon cancer", Code: "C18.9", Display: "Malignant neoplasm of colon, unspecified"},
	{Term: "cervical cancer", Code: "C53.9", Display: "Malignant neoplasm of cervix uteri, unspecified"},
	{Term: "lymphoma", Code: "C85.90", Display: "Non-Hodgkin lymphoma, unspecified, unspecified site"},

	// Infections
	{Term: "sepsis", Code: "A41.9", Display: "Sepsis, unspecified organism"},
	{Term: "dengue fever", Code: "A90", Display: "Dengue fever [classical dengue]"},
	{Term: "dengue", Code: "A90", Display: "Dengue fever [classical dengue]"},
	{Term: "malaria", Code: "B54", Display: "Unspecified malaria"},
	{Term: "typhoid fever", Code: "A01.00", Display: "Typhoid fever, unspecified"},
	{Term: "cellulitis", Code: "L03.90", Display: "Cellulitis, unspecified"},

	// Musculoskeletal
	{Term: "osteoarthritis", Code: "M19.90", Display: "Unspecified osteoarthritis, unspecified site"},
	{Term: "rheumatoid arthritis", Code: "M06.9", Display: "Rheumatoid arthritis, unspecified"},
	{Term: "fracture", Code: "T14.8XXA", Display: "Other injury of unspecified body region"},
	{Term: "osteoporosis", Code: "M81.0", Display: "Age-related osteoporosis without current pathological fracture"},

	// Mental health
	{Term: "depression", Code: "F32.9", Display: "Major depressive disorder, single episode, unspecified"},
	{Term: "anxiety", Code: "F41.9", Display: "Anxiety disorder, unspecified"},
	{Term: "schizophrenia", Code: "F20.9", Display: "Schizophrenia, unspecified"},

	// Anaemia
	{Term: "anaemia", Code: "D64.9", Display: "Anemia, unspecified"},
	{Term: "anemia", Code: "D64.9", Display: "Anemia, unspecified"},
	{Term: "iron deficiency anaemia", Code: "D50.9", Display: "Iron deficiency anemia, unspecified"},
	{Term: "sickle cell anaemia", Code: "D57.1", Display: "Sickle-cell disease without crisis"},
}

var loincEntries = []Entry{
	// Haematology
	{Term: "haemoglobin", Code: "718-7", Display: "Hemoglobin [Mass/volume] in Blood"},
	{Term: "hemoglobin", Code: "718-7", Display: "Hemoglobin [Mass/volume] in Blood"},
	{Term: "packed cell volume", Code: "20570-8", Display: "Hematocrit [Volume Fraction] of Blood"},
	{Term: "haematocrit", Code: "20570-8", Display: "Hematocrit [Volume Fraction] of Blood"},
	{Term: "hematocrit", Code: "20570-8", Display: "Hematocrit [Volume Fraction] of Blood"},
	{Term: "red blood cell count", Code: "789-8", Display: "Erythrocytes [#/volume] in Blood by Automated count"},
	{Term: "white blood cell count", Code: "6690-2", Display: "Leukocytes [#/volume] in Blood by Automated count"},
	{Term: "total leukocyte count", Code: "6690-2", Display: "Leukocytes [#/volume] in Blood by Automated count"},
	{Term: "platelet count", Code: "777-3", Display: "Platelets [#/volume] in Blood by Automated count"},
	{Term: "platelets", Code: "777-3", Display: "Platelets [#/volume] in Blood by Automated count"},
	{Term: "mean corpuscular volume", Code: "787-2", Display: "MCV [Entitic volume] by Automated count"},
	{Term: "mcv", Code: "787-2", Display: "MCV [Entitic volume] by Automated count"},
	{Term: "mch", Code: "785-6", Display: "MCH [Entitic mass] by Automated count"},
	{Term: "mchc", Code: "786-4", Display: "MCHC [Mass/volume] by Automated count"},
	{Term: "neutrophils", Code: "770-8", Display: "Neutrophils/100 leukocytes in Blood by Automated count"},
	{Term: "lymphocytes", Code: "736-9", Display: "Lymphocytes/100 leukocytes in Blood by Automated count"},
	{Term: "eosinophils", Code: "713-8", Display: "Eosinophils/100 leukocytes in Blood"},
	{Term: "monocytes", Code: "742-7", Display: "Monocytes [#/volume] in Blood by Automated count"},
	{Term: "erythrocyte sedimentation rate", Code: "30341-2", Display: "Erythrocyte sedimentation rate"},

	// Blood chemistry
	{Term: "fasting blood sugar", Code: "1558-6", Display: "Fasting glucose [Mass/volume] in Serum or Plasma"},
	{Term: "blood glucose fasting", Code: "1558-6", Display: "Fasting glucose [Mass/volume] in Serum or Plasma"},
	{Term: "random blood sugar", Code: "2345-7", Display: "Glucose [Mass/volume] in Serum or Plasma"},
	{Term: "blood glucose random", Code: "2345-7", Display: "Glucose [Mass/volume] in Serum or Plasma"},
	{Term: "post prandial blood sugar", Code: "1521-4", Display: "Glucose [Mass/volume] in Serum or Plasma 2 hours post meal"},
	{Term: "glycated haemoglobin", Code: "4548-4", Display: "Hemoglobin A1c/Hemoglobin.total in Blood"},
	{Term: "glycosylated hemoglobin", Code: "4548-4", Display: "Hemoglobin A1c/Hemoglobin.total in Blood"},

	// Kidney function
	{Term: "serum creatinine", Code: "2160-0", Display: "Creatinine [Mass/volume] in Serum or Plasma"},
	{Term: "creatinine", Code: "2160-0", Display: "Creatinine [Mass/volume] in Serum or Plasma"},
	{Term: "blood urea nitrogen", Code: "3094-0", Display: "Urea nitrogen [Mass/volume] in Serum or Plasma"},
	{Term: "urea", Code: "3094-0", Display: "Urea nitrogen [Mass/volume] in Serum or Plasma"},
	{Term: "uric acid", Code: "3084-1", Display: "Urate [Mass/volume] in Serum or Plasma"},
	{Term: "egfr", Code: "62238-1", Display: "Glomerular filtration rate predicted"},

	// Liver function
	{Term: "total bilirubin", Code: "1975-2", Display: "Bilirubin.total [Mass/volume] in Serum or Plasma"},
	{Term: "bilirubin", Code: "1975-2", Display: "Bilirubin.total [Mass/volume] in Serum or Plasma"},
	{Term: "direct bilirubin", Code: "1968-7", Display: "Bilirubin.direct [Mass/volume] in Serum or Plasma"},
	{Term: "alanine aminotransferase", Code: "1742-6", Display: "Alanine aminotransferase [Enzymatic activity/volume] in Serum or Plasma"},
	{Term: "aspartate aminotransferase", Code: "1920-8", Display: "Aspartate aminotransferase [Enzymatic activity/volume] in Serum or Plasma"},
	{Term: "alkaline phosphatase", Code: "6768-6", Display: "Alkaline phosphatase [Enzymatic activity/volume] in Serum or Plasma"},
	{Term: "total protein", Code: "2885-2", Display: "Protein [Mass/volume] in Serum or Plasma"},
	{Term: "serum albumin", Code: "1751-7", Display: "Albumin [Mass/volume] in Serum or Plasma"},
	{Term: "albumin", Code: "1751-7", Display: "Albumin [Mass/volume] in Serum or Plasma"},

	// Lipid profile
	{Term: "total cholesterol", Code: "2093-3", Display: "Cholesterol [Mass/volume] in Serum or Plasma"},
	{Term: "cholesterol", Code: "2093-3", Display: "Cholesterol [Mass/volume] in Serum or Plasma"},
	{Term: "ldl cholesterol", Code: "2089-1", Display: "Cholesterol in LDL [Mass/volume] in Serum or Plasma"},
	{Term: "hdl cholesterol", Code: "2085-9", Display: "Cholesterol in HDL [Mass/volume] in Serum or Plasma"},
	{Term: "triglycerides", Code: "2571-8", Display: "Triglyceride [Mass/volume] in Serum or Plasma"},

	// Cardiac markers
	{Term: "troponin i", Code: "10839-9", Display: "Troponin I.cardiac [Mass/volume] in Serum or Plasma"},
	{Term: "troponin t", Code: "6597-9", Display: "Troponin T.cardiac [Mass/volume] in Serum or Plasma"},
	{Term: "troponin", Code: "10839-9", Display: "Troponin I.cardiac [Mass/volume] in Serum or Plasma"},
	{Term: "ck mb", Code: "13969-1", Display: "Creatine kinase.MB [Enzymatic activity/volume] in Serum or Plasma"},
	{Term: "bnp", Code: "30934-4", Display: "Natriuretic peptide B [Mass/volume] in Serum or Plasma"},
	{Term: "procalcitonin", Code: "33959-8", Display: "Procalcitonin [Mass/volume] in Serum or Plasma"},
	{Term: "c reactive protein", Code: "1988-5", Display: "C reactive protein [Mass/volume] in Serum or Plasma"},

	// Thyroid
	{Term: "thyroid stimulating hormone", Code: "3016-3", Display: "Thyrotropin [Units/volume] in Serum or Plasma"},
	{Term: "t3", Code: "3051-0", Display: "Triiodothyronine (T3) [Mass/volume] in Serum or Plasma"},
	{Term: "t4", Code: "3054-4", Display: "Thyroxine (T4) [Mass/volume] in Serum or Plasma"},
	{Term: "free t4", Code: "3024-7", Display: "Thyroxine (T4) free [Mass/volume] in Serum or Plasma"},

	// Electrolytes
	{Term: "serum sodium", Code: "2951-2", Display: "Sodium [Moles/volume] in Serum or Plasma"},
	{Term: "sodium", Code: "2951-2", Display: "Sodium [Moles/volume] in Serum or Plasma"},
	{Term: "serum potassium", Code: "2823-3", Display: "Potassium [Moles/volume] in Serum or Plasma"},
	{Term: "potassium", Code: "2823-3", Display: "Potassium [Moles/volume] in Serum or Plasma"},
	{Term: "chloride", Code: "2075-0", Display: "Chloride [Moles/volume] in Serum or Plasma"},
	{Term: "serum calcium", Code: "17861-6", Display: "Calcium [Mass/volume] in Serum or Plasma"},
	{Term: "calcium", Code: "17861-6", Display: "Calcium [Mass/volume] in Serum or Plasma"},

	// Urine
	{Term: "urine routine", Code: "5767-9", Display: "Appearance of Urine"},
	{Term: "urinalysis", Code: "5767-9", Display: "Appearance of Urine"},
	{Term: "urine protein", Code: "2888-6", Display: "Protein [Mass/volume] in Urine"},
	{Term: "urine glucose", Code: "25428-4", Display: "Glucose [Presence] in Urine by Test strip"},

	// Coagulation
	{Term: "prothrombin time", Code: "5902-2", Display: "Prothrombin time (PT)"},
	{Term: "inr", Code: "6301-6", Display: "INR in Platelet poor plasma by Coagulation assay"},
	{Term: "aptt", Code: "3173-2", Display: "aPTT in Platelet poor plasma by Coagulation assay"},
	{Term: "d dimer", Code: "48065-7", Display: "Fibrin D-dimer DDU [Mass/volume] in Platelet poor plasma"},
}

// EmbeddedVersion identifies the built-in dictionary release.
const EmbeddedVersion = "embedded-2024.1"

// DefaultSet builds the dictionary set from the embedded tables.
func DefaultSet() *Set {
	return &Set{
		Version:   EmbeddedVersion,
		Diagnosis: NewDictionary(SystemICD10, URIICD10, icd10Entries),
		Lab:       NewDictionary(SystemLOINC, URILOINC, loincEntries),
	}
}

// EmbeddedRows returns the embedded tables in Parquet row form, for writing
// a dictionary asset that LoadParquet can read back.
func EmbeddedRows() []DictRow {
	rows := make([]DictRow, 0, len(icd10Entries)+len(loincEntries))
	for _, e := range icd10Entries {
		rows = append(rows, DictRow{
			System: SystemICD10, Term: e.Term, Code: e.Code,
			Display: e.Display, Version: EmbeddedVersion,
		})
	}
	for _, e := range loincEntries {
		rows = append(rows, DictRow{
			System: SystemLOINC, Term: e.Term, Code: e.Code,
			Display: e.Display, Version: EmbeddedVersion,
		})
	}
	return rows
}
