package services

import (
	"fmt"

	"livsoul/internal/models"

	"go.uber.org/zap"
)

// EmailService is a placeholder for a real email sending service.
type EmailService struct {
	log *zap.Logger
}

func NewEmailService(log *zap.Logger) *EmailService {
	return &EmailService{log: log}
}

// SendFollowUpEmail simulates sending a follow-up notice for a
// high-risk result that has not been reviewed by a doctor yet.
func (s *EmailService) SendFollowUpEmail(user models.User, prediction models.Prediction) {
	s.log.Info("Sending follow-up email",
		zap.String("to", user.Email),
		zap.String("name", user.Name),
		zap.String("prediction_id", prediction.ID.String()),
	)
	// In a real application, you would use an SMTP client like go-mail
	// to send a templated HTML email here. // TODO
	fmt.Printf("--- SIMULATING EMAIL ---\nTo: %s\nSubject: Please consult a specialist about your recent assessment\nHi %s,\nYour assessment from %s returned a high risk estimate. Please schedule a consultation with a liver specialist.\n\n",
		user.Email, user.Name, prediction.CreatedAt.Format("2 January 2006"))
}
