package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// MedicalHistory is free-form background the patient supplies at
// registration. Stored as a JSON column, never interpreted by the scorer.
type MedicalHistory struct {
	Allergies          []string `json:"allergies,omitempty"`
	CurrentMedications []string `json:"currentMedications,omitempty"`
	PreviousConditions []string `json:"previousConditions,omitempty"`
	FamilyHistory      []string `json:"familyHistory,omitempty"`
}

// DoctorProfile holds the fields that are mandatory for doctor accounts
// and absent for everyone else.
type DoctorProfile struct {
	LicenseNumber  string `json:"licenseNumber"`
	Specialization string `json:"specialization"`
	Hospital       string `json:"hospital"`
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`

	Role        Role      `gorm:"type:varchar(20);not null;default:'patient';index" json:"role"`
	DateOfBirth time.Time `gorm:"not null" json:"dateOfBirth"`
	Gender      Gender    `gorm:"type:varchar(10);not null" json:"gender"`
	Phone       string    `gorm:"type:varchar(30)" json:"phone,omitempty"`

	MedicalHistory *MedicalHistory `gorm:"serializer:json" json:"medicalHistory,omitempty"`
	RiskFactors    pq.StringArray  `gorm:"type:text[]" json:"riskFactors,omitempty"`

	// Present iff Role == RoleDoctor.
	DoctorProfile *DoctorProfile `gorm:"serializer:json" json:"doctorProfile,omitempty"`

	IsActive      bool       `gorm:"default:true" json:"isActive"`
	EmailVerified bool       `gorm:"default:false" json:"emailVerified"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
}

// SetPassword hashes and stores the given clear-text password.
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

// CheckPassword compares a clear-text candidate against the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}

// Age derives the user's age in whole years from the date of birth.
func (u *User) Age() int {
	now := time.Now()
	years := now.Year() - u.DateOfBirth.Year()
	if now.Month() < u.DateOfBirth.Month() ||
		(now.Month() == u.DateOfBirth.Month() && now.Day() < u.DateOfBirth.Day()) {
		years--
	}
	return years
}
