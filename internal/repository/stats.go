package repository

import (
	"context"
	"time"

	"livsoul/internal/models"
)

// TierStat is one row of the per-tier aggregation.
type TierStat struct {
	RiskLevel      models.RiskLevel `json:"riskLevel"`
	Count          int64            `json:"count"`
	AvgProbability float64          `json:"avgProbability"`
}

// RecentPrediction is the trimmed shape shown on the public overview.
type RecentPrediction struct {
	RiskLevel   models.RiskLevel `json:"riskLevel"`
	Probability float64          `json:"probability"`
	CreatedAt   time.Time        `json:"date"`
}

// Statistics aggregates the active prediction population.
type Statistics struct {
	Total       int64              `json:"total"`
	ByRiskLevel []TierStat         `json:"byRiskLevel"`
	Recent      []RecentPrediction `json:"recentPredictions"`
	Timestamp   time.Time          `json:"timestamp"`
}

// Statistics computes count and mean probability per risk tier plus the
// most recent submissions. Soft-deleted rows are excluded throughout.
func (r *Predictions) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{Timestamp: time.Now().UTC()}

	err := r.db.WithContext(ctx).Model(&models.Prediction{}).
		Where("is_active = ?", true).
		Select("result_risk_level AS risk_level, COUNT(*) AS count, AVG(result_probability) AS avg_probability").
		Group("result_risk_level").
		Scan(&stats.ByRiskLevel).Error
	if err != nil {
		return nil, err
	}

	for _, tier := range stats.ByRiskLevel {
		stats.Total += tier.Count
	}

	err = r.db.WithContext(ctx).Model(&models.Prediction{}).
		Where("is_active = ?", true).
		Select("result_risk_level AS risk_level, result_probability AS probability, created_at").
		Order("created_at DESC").
		Limit(5).
		Scan(&stats.Recent).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
