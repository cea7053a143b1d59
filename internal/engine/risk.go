package engine

// Recommendation texts. The low-coverage one is about video quality on
// purpose; it must not read as a statement about eye health.
const (
	recommendInsufficient = "Face was not visible in enough frames for a reliable screening. This reflects video quality, not eye health. Record again with the face clearly visible and well lit."
	recommendNoIssues     = "No issues detected."
	recommendFollowUp     = "Some asymmetric eye movement detected. Consider repeating the screening and monitoring over time."
	recommendProfessional = "Multiple indicators of potential lazy eye detected. Consult an eye care professional for a comprehensive evaluation."
)

// assessRisk maps (event count, peak asymmetry, face coverage) to a risk
// assessment. It is a pure function; identical inputs always produce the
// identical assessment.
func assessRisk(cfg riskParams, eventCount int, peakAsym, coveragePercent float64) RiskAssessment {
	if coveragePercent < cfg.minCoverage {
		return RiskAssessment{
			Level:          RiskLow,
			Confidence:     "Low",
			Recommendation: recommendInsufficient,
		}
	}

	if eventCount == 0 {
		confidence := "Medium"
		if coveragePercent >= cfg.highConfidenceRate {
			confidence = "High"
		}
		return RiskAssessment{
			Level:          RiskLow,
			Confidence:     confidence,
			Recommendation: recommendNoIssues,
		}
	}

	if eventCount < cfg.highEventCount && peakAsym < cfg.severeAsymmetry {
		return RiskAssessment{
			Level:          RiskMedium,
			Confidence:     "Medium",
			Recommendation: recommendFollowUp,
		}
	}

	return RiskAssessment{
		Level:          RiskHigh,
		Confidence:     "High",
		Recommendation: recommendProfessional,
	}
}

type riskParams struct {
	minCoverage        float64
	highEventCount     int
	severeAsymmetry    float64
	highConfidenceRate float64
}

func peakAsymmetry(events []DetectionEvent) float64 {
	var peak float64
	for _, ev := range events {
		d := ev.LeftDisplacement - ev.RightDisplacement
		if d < 0 {
			d = -d
		}
		if d > peak {
			peak = d
		}
	}
	return peak
}
