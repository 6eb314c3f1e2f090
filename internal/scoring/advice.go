package scoring

import "livsoul/internal/models"

// Tier-keyed domain text. The lists are fixed clinical guidance, not
// computed output.
var interpretations = map[models.RiskLevel]string{
	models.RiskHigh:   "High probability of liver cirrhosis. Immediate medical consultation recommended.",
	models.RiskMedium: "Moderate probability of liver cirrhosis. Medical evaluation recommended.",
	models.RiskLow:    "Low probability of liver cirrhosis. Continue preventive measures.",
}

var recommendations = map[models.RiskLevel][]string{
	models.RiskHigh: {
		"Consult a hepatologist or gastroenterologist immediately",
		"Undergo comprehensive liver function testing",
		"Consider imaging studies (ultrasound, CT, or MRI)",
		"Discuss liver biopsy with your physician",
		"Avoid alcohol completely",
		"Review all medications with your doctor",
	},
	models.RiskMedium: {
		"Schedule appointment with primary care physician",
		"Request liver function tests",
		"Consider lifestyle modifications",
		"Monitor symptoms closely",
		"Reduce alcohol consumption significantly",
		"Maintain healthy diet and exercise",
	},
	models.RiskLow: {
		"Maintain current healthy lifestyle",
		"Continue regular medical check-ups",
		"Monitor for new symptoms",
		"Follow liver-healthy diet",
		"Limit alcohol consumption",
		"Stay up to date with vaccinations",
	},
}
