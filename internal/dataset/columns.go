package dataset

// Patient record columns.
const (
	ColAge                    = "age"
	ColBMI                    = "BMI"
	ColBloodPressure          = "blood_pressure"
	ColDiseaseScore           = "disease_score"
	ColBMINormalized          = "BMI_normalized"
	ColDiseaseScoreNormalized = "disease_score_normalized"
	ColRiskStatus             = "risk_status"
)

// BaseColumns are the numeric columns every input table must supply.
var BaseColumns = []string{ColAge, ColBMI, ColBloodPressure, ColDiseaseScore}

// NormalizedColumn returns the name of the min-max scaled companion of col.
func NormalizedColumn(col string) string { return col + "_normalized" }
