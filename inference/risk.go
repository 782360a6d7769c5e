package inference

// RiskLevel is the categorical label derived from the positive-class probability.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Lower bounds are inclusive: 0.30 is Medium, 0.70 is High.
const (
	MediumRiskThreshold = 0.30
	HighRiskThreshold   = 0.70
)

// RiskLevelFor maps a probability in [0,1] to its risk band.
func RiskLevelFor(probability float64) RiskLevel {
	switch {
	case probability < MediumRiskThreshold:
		return RiskLow
	case probability < HighRiskThreshold:
		return RiskMedium
	default:
		return RiskHigh
	}
}
