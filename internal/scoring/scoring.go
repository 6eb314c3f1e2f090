// Package scoring implements the rule-based cirrhosis risk estimate.
// The calculation is a fixed sequence of threshold checks with additive
// point accumulation; it is deterministic and touches no external state.
package scoring

import (
	"math"
	"strings"
	"time"

	"livsoul/internal/models"
)

// ModelType labels every result as rule-derived rather than learned.
const ModelType = "Rule-based Analysis"

// ConfidenceScore is a fixed property of the rule set, not a per-input
// statistic.
const ConfidenceScore = 0.85

// maxProbability caps the reported score; the rules never claim certainty.
const maxProbability = 0.95

// Input is a validated scoring request. Callers must reject missing or
// non-numeric fields before building one; Calculate itself cannot fail.
type Input struct {
	Age    int
	Gender string

	AWaveAmplitude        float64
	AWaveLatency          float64
	BWaveAmplitude        float64
	BWaveLatency          float64
	FlickerAmplitude      float64
	FlickerLatency        float64
	OscillatoryPotentials float64

	Symptoms    []string
	RiskFactors []string
}

// Result is the scorer's full output.
type Result struct {
	Probability     float64          `json:"probability"`
	RiskLevel       models.RiskLevel `json:"riskLevel"`
	Interpretation  string           `json:"interpretation"`
	Recommendations []string         `json:"recommendations"`
	ModelType       string           `json:"modelType"`
	ConfidenceScore float64          `json:"confidenceScore"`
	Timestamp       time.Time        `json:"timestamp"`
}

// normalRange is the reference band for one ERG measurement; readings
// outside it add the deviation weight to the score.
type normalRange struct {
	low, high float64
	weight    float64
}

func (r normalRange) score(value float64) float64 {
	if value < r.low || value > r.high {
		return r.weight
	}
	return 0
}

var (
	aWaveAmplitudeRange = normalRange{100, 200, 0.15}
	aWaveLatencyRange   = normalRange{10, 20, 0.10}
	bWaveAmplitudeRange = normalRange{200, 400, 0.15}
	bWaveLatencyRange   = normalRange{40, 60, 0.10}
	flickerAmpRange     = normalRange{50, 150, 0.10}
	flickerLatRange     = normalRange{20, 40, 0.05}
	oscillatoryRange    = normalRange{30, 100, 0.08}
)

// highRiskSymptoms each add 0.10 when present; highRiskFactors each add
// 0.15. Contributions are per match, on top of the count tiers.
var (
	highRiskSymptoms = []string{"Jaundice", "Abdominal swelling", "Confusion", "Vomiting blood"}
	highRiskFactors  = []string{"Alcohol abuse", "Hepatitis B", "Hepatitis C"}
)

// Calculate maps the patient demographics, ERG measurements and clinical
// sets to a probability, risk tier and tier-keyed advice. Identical
// inputs always produce identical output apart from the timestamp.
func Calculate(in Input) Result {
	probability := 0.0

	// Age factor (higher risk with age)
	switch {
	case in.Age > 60:
		probability += 0.20
	case in.Age > 45:
		probability += 0.10
	case in.Age > 30:
		probability += 0.05
	}

	// ERG pattern analysis against the reference bands.
	// Normal ranges: A-wave (100-200 uV, 10-20 ms), B-wave (200-400 uV, 40-60 ms)
	probability += aWaveAmplitudeRange.score(in.AWaveAmplitude)
	probability += aWaveLatencyRange.score(in.AWaveLatency)
	probability += bWaveAmplitudeRange.score(in.BWaveAmplitude)
	probability += bWaveLatencyRange.score(in.BWaveLatency)

	// Flicker and oscillatory values of exactly 0 mean "not measured"
	// and are skipped entirely.
	if in.FlickerAmplitude > 0 {
		probability += flickerAmpRange.score(in.FlickerAmplitude)
	}
	if in.FlickerLatency > 0 {
		probability += flickerLatRange.score(in.FlickerLatency)
	}
	if in.OscillatoryPotentials > 0 {
		probability += oscillatoryRange.score(in.OscillatoryPotentials)
	}

	symptoms := models.NormalizeSet(in.Symptoms)
	riskFactors := models.NormalizeSet(in.RiskFactors)

	// Symptom burden
	switch count := len(symptoms); {
	case count >= 5:
		probability += 0.20
	case count >= 3:
		probability += 0.15
	case count >= 1:
		probability += 0.10
	}

	// Risk-factor burden
	switch count := len(riskFactors); {
	case count >= 3:
		probability += 0.25
	case count >= 2:
		probability += 0.15
	case count >= 1:
		probability += 0.10
	}

	// Per-match bonuses for the red-flag entries
	for _, symptom := range highRiskSymptoms {
		if contains(symptoms, symptom) {
			probability += 0.10
		}
	}
	for _, factor := range highRiskFactors {
		if contains(riskFactors, factor) {
			probability += 0.15
		}
	}

	// Gender factor (males at higher risk)
	if strings.EqualFold(in.Gender, "male") {
		probability += 0.05
	}

	probability = math.Min(probability, maxProbability)
	probability = math.Round(probability*1000) / 1000

	level := riskLevelFor(probability)
	return Result{
		Probability:     probability,
		RiskLevel:       level,
		Interpretation:  interpretations[level],
		Recommendations: recommendations[level],
		ModelType:       ModelType,
		ConfidenceScore: ConfidenceScore,
		Timestamp:       time.Now().UTC(),
	}
}

// riskLevelFor discretizes the probability. Tiers are closed on their
// lower bound: 0.70 is High, 0.40 is Medium.
func riskLevelFor(probability float64) models.RiskLevel {
	switch {
	case probability >= 0.70:
		return models.RiskHigh
	case probability >= 0.40:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
