package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"livsoul/internal/auth"
	"livsoul/internal/models"
	"livsoul/internal/repository"
	"livsoul/internal/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// UserStore is the persistence surface the auth service needs. The
// repository package provides the real implementation; tests use fakes.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, fields []string, values *models.User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	TouchLastLogin(ctx context.Context, userID uuid.UUID) error
}

// RegisterInput is the full registration payload.
type RegisterInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	Phone       string `json:"phone"`

	MedicalHistory *models.MedicalHistory `json:"medicalHistory"`
	RiskFactors    []string               `json:"riskFactors"`
	DoctorProfile  *models.DoctorProfile  `json:"doctorInfo"`
}

// ProfileUpdate lists the fields a user may change after registration.
// Nil pointers leave the stored value untouched.
type ProfileUpdate struct {
	Name           *string                `json:"name"`
	Phone          *string                `json:"phone"`
	MedicalHistory *models.MedicalHistory `json:"medicalHistory"`
	RiskFactors    []string               `json:"riskFactors"`
}

// AuthResult bundles the account and its fresh token pair.
type AuthResult struct {
	User   *models.User    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

type AuthService struct {
	users  UserStore
	tokens *auth.Manager
	log    *zap.Logger
}

func NewAuthService(users UserStore, tokens *auth.Manager, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

// Register validates the payload, creates the account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if verr := validateRegistration(in); verr != nil {
		return nil, verr
	}

	dob, _ := time.Parse("2006-01-02", in.DateOfBirth)

	role := models.Role(in.Role)
	if in.Role == "" {
		role = models.RolePatient
	}

	user := &models.User{
		Name:           in.Name,
		Email:          in.Email,
		Role:           role,
		DateOfBirth:    dob,
		Gender:         models.Gender(in.Gender),
		Phone:          in.Phone,
		MedicalHistory: in.MedicalHistory,
		RiskFactors:    pq.StringArray(models.NormalizeSet(in.RiskFactors)),
		IsActive:       true,
	}
	if role == models.RoleDoctor {
		user.DoctorProfile = in.DoctorProfile
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return s.issueTokens(user)
}

// Login authenticates by email and password. The caller learns only
// that the pair did not match, never which half was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		// Non-fatal; the login itself succeeded.
		s.log.Warn("failed to record last login",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Re-read the account so revoked or deactivated users drop out at
	// the refresh boundary.
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.issueTokens(user)
}

// Profile returns the caller's account.
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the allowed field changes and returns the
// refreshed account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*models.User, error) {
	var fields []string
	var values models.User

	if in.Name != nil {
		name := *in.Name
		if len(name) == 0 || len(name) > 100 {
			return nil, NewValidationError("name", "must be between 1 and 100 characters")
		}
		fields = append(fields, "Name")
		values.Name = name
	}
	if in.Phone != nil {
		fields = append(fields, "Phone")
		values.Phone = *in.Phone
	}
	if in.MedicalHistory != nil {
		fields = append(fields, "MedicalHistory")
		values.MedicalHistory = in.MedicalHistory
	}
	if in.RiskFactors != nil {
		fields = append(fields, "RiskFactors")
		values.RiskFactors = pq.StringArray(models.NormalizeSet(in.RiskFactors))
	}

	if len(fields) > 0 {
		if err := s.users.UpdateProfile(ctx, userID, fields, &values); err != nil {
			return nil, err
		}
	}
	return s.Profile(ctx, userID)
}

// ChangePassword verifies the current password before setting the new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !user.CheckPassword(current) {
		return ErrInvalidCredentials
	}
	if !utils.IsComplexPassword(next) {
		return NewValidationError("newPassword",
			"must be at least 8 characters with upper, lower, number and special characters")
	}
	if err := user.SetPassword(next); err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, user.PasswordHash); err != nil {
		return err
	}
	s.log.Info("password changed", zap.String("user_id", userID.String()))
	return nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResult, error) {
	pair, err := s.tokens.GenerateTokenPair(&auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Emails are stored lowercased so the unique index is case-insensitive
// in practice.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(in RegisterInput) *ValidationError {
	fields := map[string]string{}

	if in.Name == "" {
		fields["name"] = "name is required"
	} else if len(in.Name) > 100 {
		fields["name"] = "must be at most 100 characters"
	}

	if in.Email == "" {
		fields["email"] = "email is required"
	} else if !utils.IsValidEmail(in.Email) {
		fields["email"] = "must be a valid email address"
	}

	if in.Password == "" {
		fields["password"] = "password is required"
	} else if !utils.IsComplexPassword(in.Password) {
		fields["password"] = "must be at least 8 characters with upper, lower, number and special characters"
	}

	if in.Role != "" && !models.Role(in.Role).IsValid() {
		fields["role"] = "must be one of patient, doctor, admin"
	}

	if in.DateOfBirth == "" {
		fields["dateOfBirth"] = "date of birth is required"
	} else if _, err := time.Parse("2006-01-02", in.DateOfBirth); err != nil {
		fields["dateOfBirth"] = "must be formatted as YYYY-MM-DD"
	}

	if in.Gender == "" {
		fields["gender"] = "gender is required"
	} else if !models.Gender(in.Gender).IsValid() {
		fields["gender"] = "must be one of male, female, other"
	}

	// Doctor accounts carry mandatory credentials.
	if models.Role(in.Role) == models.RoleDoctor {
		if in.DoctorProfile == nil {
			fields["doctorInfo"] = "doctor accounts require license, specialization and hospital"
		} else {
			if in.DoctorProfile.LicenseNumber == "" {
				fields["doctorInfo.licenseNumber"] = "license number is required for doctors"
			} else if !utils.IsValidLicenseNumber(in.DoctorProfile.LicenseNumber) {
				fields["doctorInfo.licenseNumber"] = "license number must be letters, digits and dashes, at least five characters"
			}
			if in.DoctorProfile.Specialization == "" {
				fields["doctorInfo.specialization"] = "specialization is required for doctors"
			}
			if in.DoctorProfile.Hospital == "" {
				fields["doctorInfo.hospital"] = "hospital is required for doctors"
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
