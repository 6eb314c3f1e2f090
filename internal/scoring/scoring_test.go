package scoring

import (
	"math"
	"testing"

	"livsoul/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// healthyInput sits inside every reference band and carries no clinical
// findings, so it scores exactly zero.
func healthyInput() Input {
	return Input{
		Age:                   25,
		Gender:                "female",
		AWaveAmplitude:        150,
		AWaveLatency:          15,
		BWaveAmplitude:        300,
		BWaveLatency:          50,
		FlickerAmplitude:      100,
		FlickerLatency:        30,
		OscillatoryPotentials: 65,
	}
}

func TestCalculateHealthyBaseline(t *testing.T) {
	result := Calculate(healthyInput())

	assert.Equal(t, 0.0, result.Probability)
	assert.Equal(t, models.RiskLow, result.RiskLevel)
	assert.Equal(t, ModelType, result.ModelType)
	assert.Equal(t, ConfidenceScore, result.ConfidenceScore)
	assert.NotEmpty(t, result.Interpretation)
	assert.Len(t, result.Recommendations, 6)
}

func TestCalculateModerateFindings(t *testing.T) {
	// Age 50 (+0.10), A-wave amplitude below band (+0.15), one ordinary
	// symptom (+0.10), one ordinary risk factor (+0.10).
	in := healthyInput()
	in.Age = 50
	in.AWaveAmplitude = 90
	in.Symptoms = []string{"Fatigue"}
	in.RiskFactors = []string{"Obesity"}

	result := Calculate(in)
	assert.Equal(t, 0.45, result.Probability)
	assert.Equal(t, models.RiskMedium, result.RiskLevel)
}

func TestCalculateSevereFindingsCapped(t *testing.T) {
	in := Input{
		Age:                   68,
		Gender:                "male",
		AWaveAmplitude:        50,
		AWaveLatency:          25,
		BWaveAmplitude:        100,
		BWaveLatency:          70,
		FlickerAmplitude:      160,
		FlickerLatency:        45,
		OscillatoryPotentials: 150,
		Symptoms:              []string{"Jaundice", "Confusion", "Fatigue"},
		RiskFactors:           []string{"Alcohol abuse", "Hepatitis B"},
	}

	result := Calculate(in)
	assert.Equal(t, 0.95, result.Probability)
	assert.Equal(t, models.RiskHigh, result.RiskLevel)
}

func TestCalculateTierBoundaries(t *testing.T) {
	t.Run("exactly 0.40 is Medium", func(t *testing.T) {
		// Age 50 (+0.10) plus both amplitude bands out (+0.15 each).
		in := healthyInput()
		in.Age = 50
		in.AWaveAmplitude = 90
		in.BWaveAmplitude = 150

		result := Calculate(in)
		require.Equal(t, 0.40, result.Probability)
		assert.Equal(t, models.RiskMedium, result.RiskLevel)
	})

	t.Run("just under 0.40 is Low", func(t *testing.T) {
		// Age 32 (+0.05) plus both amplitude bands out (+0.30).
		in := healthyInput()
		in.Age = 32
		in.AWaveAmplitude = 90
		in.BWaveAmplitude = 150

		result := Calculate(in)
		require.Equal(t, 0.35, result.Probability)
		assert.Equal(t, models.RiskLow, result.RiskLevel)
	})

	t.Run("exactly 0.70 is High", func(t *testing.T) {
		// Age 68 (+0.20) plus all four main bands out (+0.50).
		in := healthyInput()
		in.Age = 68
		in.AWaveAmplitude = 90
		in.AWaveLatency = 25
		in.BWaveAmplitude = 150
		in.BWaveLatency = 70

		result := Calculate(in)
		require.Equal(t, 0.70, result.Probability)
		assert.Equal(t, models.RiskHigh, result.RiskLevel)
	})
}

func TestCalculateZeroMeansNotMeasured(t *testing.T) {
	// Zero flicker and oscillatory readings are "not measured" and must
	// not count as band deviations even though 0 is below every band.
	in := healthyInput()
	in.FlickerAmplitude = 0
	in.FlickerLatency = 0
	in.OscillatoryPotentials = 0

	result := Calculate(in)
	assert.Equal(t, 0.0, result.Probability)

	// A genuinely low reading does score.
	in.FlickerAmplitude = 10
	result = Calculate(in)
	assert.Equal(t, 0.10, result.Probability)
}

func TestCalculateDeterministic(t *testing.T) {
	in := healthyInput()
	in.Age = 55
	in.Symptoms = []string{"Fatigue", "Nausea"}
	in.RiskFactors = []string{"Obesity"}

	first := Calculate(in)
	second := Calculate(in)

	assert.Equal(t, first.Probability, second.Probability)
	assert.Equal(t, first.RiskLevel, second.RiskLevel)
	assert.Equal(t, first.Interpretation, second.Interpretation)
	assert.Equal(t, first.Recommendations, second.Recommendations)
}

func TestCalculateSymptomMonotonicity(t *testing.T) {
	in := healthyInput()
	in.Symptoms = []string{"Fatigue"}
	base := Calculate(in).Probability

	in.Symptoms = []string{"Fatigue", "Jaundice"}
	withRedFlag := Calculate(in).Probability

	assert.Greater(t, withRedFlag, base)
}

func TestCalculateDuplicatesCollapse(t *testing.T) {
	in := healthyInput()
	in.Symptoms = []string{"Fatigue"}
	single := Calculate(in).Probability

	in.Symptoms = []string{"Fatigue", "Fatigue", " Fatigue "}
	duplicated := Calculate(in).Probability

	assert.Equal(t, single, duplicated)
}

func TestCalculateProbabilityWellFormed(t *testing.T) {
	inputs := []Input{
		healthyInput(),
		{Age: 80, Gender: "male", Symptoms: []string{"Jaundice", "Confusion", "Vomiting blood", "Fatigue", "Nausea"},
			RiskFactors: []string{"Alcohol abuse", "Hepatitis B", "Hepatitis C"}},
		{Age: 47, Gender: "other", AWaveAmplitude: 250, BWaveLatency: 30},
	}

	for _, in := range inputs {
		result := Calculate(in)
		assert.GreaterOrEqual(t, result.Probability, 0.0)
		assert.LessOrEqual(t, result.Probability, 0.95)
		// Rounded to at most three decimals.
		assert.Equal(t, math.Round(result.Probability*1000)/1000, result.Probability)
		assert.True(t, result.RiskLevel.IsValid())
	}
}
