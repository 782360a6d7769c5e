package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"diapredict/ml"
)

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// FieldError describes one rejected input location.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError is returned when the request body does not describe a
// complete PatientRecord. Errors are in feature order.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(fe.Loc, "."), fe.Msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type fieldSpec struct {
	integer     bool
	nonNegative bool
	set         func(*ml.PatientRecord, float64)
}

var patientFields = map[string]fieldSpec{
	"Pregnancies":              {integer: true, nonNegative: true, set: func(r *ml.PatientRecord, v float64) { r.Pregnancies = int(v) }},
	"Glucose":                  {nonNegative: true, set: func(r *ml.PatientRecord, v float64) { r.Glucose = v }},
	"BloodPressure":            {nonNegative: true, set: func(r *ml.PatientRecord, v float64) { r.BloodPressure = v }},
	"SkinThickness":            {nonNegative: true, set: func(r *ml.PatientRecord, v float64) { r.SkinThickness = v }},
	"Insulin":                  {nonNegative: true, set: func(r *ml.PatientRecord, v float64) { r.Insulin = v }},
	"BMI":                      {nonNegative: true, set: func(r *ml.PatientRecord, v float64) { r.BMI = v }},
	"DiabetesPedigreeFunction": {set: func(r *ml.PatientRecord, v float64) { r.DiabetesPedigreeFunction = v }},
	"Age":                      {integer: true, nonNegative: true, set: func(r *ml.PatientRecord, v float64) { r.Age = int(v) }},
}

// DecodePatientRecord parses and validates a JSON body. Unknown keys are
// ignored; every known key must be present and numeric.
func DecodePatientRecord(body []byte) (ml.PatientRecord, error) {
	var record ml.PatientRecord

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return record, &ValidationError{Errors: []FieldError{{
			Loc:  []string{"body"},
			Msg:  "JSON decode error",
			Type: "json_invalid",
		}}}
	}
	if dec.More() {
		return record, &ValidationError{Errors: []FieldError{{
			Loc:  []string{"body"},
			Msg:  "JSON decode error",
			Type: "json_invalid",
		}}}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return record, &ValidationError{Errors: []FieldError{{
			Loc:  []string{"body"},
			Msg:  "Input should be a valid dictionary or object to extract fields from",
			Type: "model_attributes_type",
		}}}
	}

	var errs []FieldError
	for _, name := range ml.FeatureNames {
		spec := patientFields[name]
		value, present := obj[name]
		if !present {
			errs = append(errs, FieldError{Loc: []string{"body", name}, Msg: "Field required", Type: "missing"})
			continue
		}
		v, fe := parseNumber(value, spec)
		if fe != nil {
			fe.Loc = []string{"body", name}
			errs = append(errs, *fe)
			continue
		}
		spec.set(&record, v)
	}
	if len(errs) > 0 {
		return ml.PatientRecord{}, &ValidationError{Errors: errs}
	}
	return record, nil
}

func parseNumber(value any, spec fieldSpec) (float64, *FieldError) {
	num, ok := value.(json.Number)
	if !ok {
		if spec.integer {
			return 0, &FieldError{Msg: "Input should be a valid integer", Type: "int_type"}
		}
		return 0, &FieldError{Msg: "Input should be a valid number", Type: "float_type"}
	}

	v, err := num.Float64()
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &FieldError{Msg: "Input should be a finite number", Type: "finite_number"}
	}
	if spec.integer {
		if v != math.Trunc(v) {
			return 0, &FieldError{
				Msg:  "Input should be a valid integer, got a number with a fractional part",
				Type: "int_from_float",
			}
		}
		if math.Abs(v) > maxExactInt {
			return 0, &FieldError{Msg: "Input should be a valid integer, unable to parse number", Type: "int_parsing"}
		}
	}
	if spec.nonNegative && v < 0 {
		return 0, &FieldError{Msg: "Input should be greater than or equal to 0", Type: "greater_than_equal"}
	}
	return v, nil
}
