package entity

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// VerificationStatus is the state of a user's strong age verification.
type VerificationStatus string

const (
	VerificationStatusNone     VerificationStatus = "NONE"
	VerificationStatusPending  VerificationStatus = "PENDING"
	VerificationStatusVerified VerificationStatus = "VERIFIED"
	VerificationStatusFailed   VerificationStatus = "FAILED"
)

// ComplianceAck is the user's self-declared consent statement. It is distinct
// from third-party-verified age: the user ticks boxes, nobody checks an ID.
type ComplianceAck struct {
	AgreedGeneralTerms bool      `gorm:"column:agree" json:"agree"`
	Over16Declared     bool      `gorm:"column:over16" json:"over16"`
	Over18Declared     bool      `gorm:"column:over18" json:"over18"`
	Version            string    `gorm:"column:version;size:20" json:"version"`
	AcceptedAt         time.Time `gorm:"column:accepted_at" json:"accepted_at"`
	Device             string    `gorm:"column:device;size:100" json:"device,omitempty"`
}

// AgeVerificationState is the user-level outcome of strong age verification.
// Failed attempts are recorded on the session only, never here: once VERIFIED,
// this state stands short of an explicit administrative action.
type AgeVerificationState struct {
	Status     VerificationStatus `gorm:"column:status;size:20" json:"status"`
	Provider   string             `gorm:"column:provider;size:50" json:"provider,omitempty"`
	Method     string             `gorm:"column:method;size:50" json:"method,omitempty"`
	Reference  string             `gorm:"column:reference;size:100" json:"reference,omitempty"`
	VerifiedAt *time.Time         `gorm:"column:verified_at" json:"verified_at,omitempty"`
}

// User represents an account. The compliance record (birth date, ack,
// verification state, cached tier) lives on the user row so every mutation of
// it is a single atomic update.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email    string `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password string `gorm:"size:100;not null" json:"-"`

	BirthDate *time.Time `gorm:"type:date" json:"birth_date,omitempty"`

	// AgeTier is a denormalized snapshot of ComputeTier over the fields below.
	// It is a cache, not a source of truth: security decisions recompute it.
	AgeTier AgeTier `gorm:"size:30;not null;default:'UNKNOWN';index" json:"age_tier"`

	Compliance      *ComplianceAck        `gorm:"embedded;embeddedPrefix:compliance_" json:"compliance,omitempty"`
	AgeVerification *AgeVerificationState `gorm:"embedded;embeddedPrefix:age_verification_" json:"age_verification,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (User) TableName() string {
	return "users"
}

// ComputeTier derives the user's current tier from the stored attributes.
func (u *User) ComputeTier(now time.Time) AgeTier {
	ack := u.Compliance
	if ack != nil && !ack.AgreedGeneralTerms && !ack.Over16Declared && !ack.Over18Declared {
		// Zero-valued embedded struct from a row that never acknowledged anything.
		ack = nil
	}
	verification := u.AgeVerification
	if verification != nil && verification.Status == "" {
		verification = nil
	}
	return ComputeTier(u.BirthDate, ack, verification, now)
}

// BeforeSave hashes the password unless it already is a bcrypt hash.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if len(u.Password) > 0 && !strings.HasPrefix(u.Password, "$2a$") &&
		!strings.HasPrefix(u.Password, "$2b$") && !strings.HasPrefix(u.Password, "$2y$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User.BeforeSave] failed to hash password for email=%s: %v", u.Email, err)
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// CheckPassword compares a candidate password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
