package services

import (
	"context"
	"errors"
	"time"

	"livsoul/internal/models"
	"livsoul/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FollowUpStore lists the predictions the scheduler should chase.
type FollowUpStore interface {
	ListNeedingFollowUp(ctx context.Context, olderThan time.Time, limit int) ([]models.Prediction, error)
}

// followUpAge is how long a high-risk result may sit unreviewed before
// the patient is nudged.
const followUpAge = 24 * time.Hour

// followUpBatch bounds the work done per tick.
const followUpBatch = 50

// Scheduler periodically finds stale unreviewed high-risk predictions
// and emails their owners.
type Scheduler struct {
	log          *zap.Logger
	emailService *EmailService
	predictions  FollowUpStore
	users        UserStore

	notified map[uuid.UUID]struct{}
}

func NewScheduler(log *zap.Logger, emailService *EmailService, predictions FollowUpStore, users UserStore) *Scheduler {
	return &Scheduler{
		log:          log,
		emailService: emailService,
		predictions:  predictions,
		users:        users,
		notified:     make(map[uuid.UUID]struct{}),
	}
}

// Start runs the scheduler until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("Starting follow-up scheduler...")
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log.Info("Follow-up scheduler stopped")
				return
			case <-ticker.C:
				s.runFollowUpCheck(ctx)
			}
		}
	}()
}

func (s *Scheduler) runFollowUpCheck(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-followUpAge)
	s.log.Debug("Running follow-up check", zap.Time("cutoff", cutoff))

	predictions, err := s.predictions.ListNeedingFollowUp(ctx, cutoff, followUpBatch)
	if err != nil {
		s.log.Error("Failed to list predictions needing follow-up", zap.Error(err))
		return
	}

	for _, prediction := range predictions {
		// One nudge per prediction per process lifetime.
		if _, seen := s.notified[prediction.ID]; seen {
			continue
		}

		user, err := s.users.GetByID(ctx, *prediction.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				continue
			}
			s.log.Error("Failed to load user for follow-up",
				zap.String("prediction_id", prediction.ID.String()), zap.Error(err))
			continue
		}

		s.emailService.SendFollowUpEmail(*user, prediction)
		s.notified[prediction.ID] = struct{}{}
	}
}
