package ml

// FeatureCount is the width of the vector every estimator is trained on.
const FeatureCount = 8

// FeatureNames lists the model inputs in training order.
var FeatureNames = [FeatureCount]string{
	"Pregnancies",
	"Glucose",
	"BloodPressure",
	"SkinThickness",
	"Insulin",
	"BMI",
	"DiabetesPedigreeFunction",
	"Age",
}

// PatientRecord is one set of patient measurements submitted for scoring.
type PatientRecord struct {
	Pregnancies              int     `json:"Pregnancies"`
	Glucose                  float64 `json:"Glucose"`
	BloodPressure            float64 `json:"BloodPressure"`
	SkinThickness            float64 `json:"SkinThickness"`
	Insulin                  float64 `json:"Insulin"`
	BMI                      float64 `json:"BMI"`
	DiabetesPedigreeFunction float64 `json:"DiabetesPedigreeFunction"`
	Age                      int     `json:"Age"`
}

// Vector returns the record in FeatureNames order.
func (r PatientRecord) Vector() []float64 {
	return []float64{
		float64(r.Pregnancies),
		r.Glucose,
		r.BloodPressure,
		r.SkinThickness,
		r.Insulin,
		r.BMI,
		r.DiabetesPedigreeFunction,
		float64(r.Age),
	}
}

// FeatureNameList returns a copy of FeatureNames as a slice.
func FeatureNameList() []string {
	names := make([]string, FeatureCount)
	copy(names, FeatureNames[:])
	return names
}
