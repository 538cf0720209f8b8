package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Kind tags an account as one side of the marketplace.
type Kind string

const (
	KindTalent Kind = "talent"
	KindHirer  Kind = "hirer"
)

// Valid reports whether k is a known account kind.
func (k Kind) Valid() bool {
	return k == KindTalent || k == KindHirer
}

// RequiresApproval reports whether accounts of this kind need an admin decision
// after verification before they may log in.
func (k Kind) RequiresApproval() bool {
	return k == KindHirer
}

// Label is the capitalised kind used in messages ("Talent not found").
func (k Kind) Label() string {
	switch k {
	case KindTalent:
		return "Talent"
	case KindHirer:
		return "Hirer"
	default:
		return "Account"
	}
}

// ApprovalStatus is the admin decision on a hirer account.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// Account is the lifecycle record shared by talents and hirers.
// Email is unique per kind.
type Account struct {
	ID               uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Kind             Kind           `json:"kind" gorm:"type:varchar(10);not null;uniqueIndex:idx_accounts_kind_email,priority:1"`
	Name             string         `json:"name" gorm:"size:255;not null"`
	Email            string         `json:"email" gorm:"size:255;not null;uniqueIndex:idx_accounts_kind_email,priority:2"`
	Phone            string         `json:"phone" gorm:"size:32;not null"`
	Gender           string         `json:"gender" gorm:"size:16;not null"`
	Role             string         `json:"role" gorm:"size:64;not null"`
	PasswordHash     string         `json:"-" gorm:"size:255;not null"`
	OTP              *string        `json:"-" gorm:"column:otp;size:6"`
	IsVerified       bool           `json:"is_verified" gorm:"not null;default:false;index"`
	ApprovalStatus   ApprovalStatus `json:"status,omitempty" gorm:"type:varchar(16);index"`
	ResetToken       *string        `json:"-" gorm:"size:6;index"`
	ResetTokenExpire *time.Time     `json:"-"`
	DeviceToken      string         `json:"-" gorm:"size:512"`
	ProfilePicURL    string         `json:"profile_pic_url,omitempty" gorm:"size:1024"`
	ProfilePicKey    string         `json:"-" gorm:"size:512"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Active reports whether the account may hold an authenticated session.
func (a *Account) Active() bool {
	if !a.IsVerified {
		return false
	}
	if a.Kind.RequiresApproval() {
		return a.ApprovalStatus == StatusApproved
	}
	return true
}

// PublicAccount is the subset of an account returned to callers.
type PublicAccount struct {
	ID         uuid.UUID      `json:"_id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone"`
	Gender     string         `json:"gender"`
	Role       string         `json:"role"`
	Status     ApprovalStatus `json:"status,omitempty"`
	ProfilePic *string        `json:"profilePic"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Public strips credentials and one-time codes from the account.
func (a *Account) Public() PublicAccount {
	p := PublicAccount{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Gender:    a.Gender,
		Role:      a.Role,
		Status:    a.ApprovalStatus,
		CreatedAt: a.CreatedAt,
	}
	if a.ProfilePicURL != "" {
		url := a.ProfilePicURL
		p.ProfilePic = &url
	}
	return p
}
