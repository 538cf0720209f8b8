package model

import (
	"time"

	"github.com/google/uuid"
)

// Genders accepted at registration.
var Genders = []string{"Male", "Female"}

// HirerRoles are the roles a hirer may register with. Talent roles are free-form.
var HirerRoles = []string{
	"Director",
	"Assistant Director",
	"Casting Director",
	"Event Manager",
	"Other",
}

// TalentProfile holds the casting details of a talent account.
type TalentProfile struct {
	AccountID            uuid.UUID `json:"-" gorm:"type:char(36);primaryKey"`
	Age                  *int      `json:"age"`
	Height               string    `json:"height,omitempty" gorm:"size:32"`
	Weight               string    `json:"weight,omitempty" gorm:"size:32"`
	BodyType             string    `json:"bodyType,omitempty" gorm:"size:64"`
	SkinTone             string    `json:"skinTone,omitempty" gorm:"size:64"`
	Language             string    `json:"language,omitempty" gorm:"size:255"`
	Skills               string    `json:"skills,omitempty" gorm:"type:text"`
	MakeoverNeeded       bool      `json:"makeoverNeeded"`
	WillingToWorkAsExtra bool      `json:"willingToWorkAsExtra"`
	AboutYourself        string    `json:"aboutYourself,omitempty" gorm:"type:text"`
	VideoURL             string    `json:"video,omitempty" gorm:"size:1024"`
	FrontURL             string    `json:"front,omitempty" gorm:"size:1024"`
	FrontKey             string    `json:"-" gorm:"size:512"`
	LeftURL              string    `json:"left,omitempty" gorm:"size:1024"`
	LeftKey              string    `json:"-" gorm:"size:512"`
	RightURL             string    `json:"right,omitempty" gorm:"size:1024"`
	RightKey             string    `json:"-" gorm:"size:512"`
	UpdatedAt            time.Time `json:"-"`
}

// HirerProfile holds the optional details of a hirer account.
type HirerProfile struct {
	AccountID uuid.UUID `json:"-" gorm:"type:char(36);primaryKey"`
	Age       *int      `json:"age"`
	Country   string    `json:"country,omitempty" gorm:"size:128"`
	City      string    `json:"city,omitempty" gorm:"size:128"`
	UpdatedAt time.Time `json:"-"`
}

// ImageSlot names an uploadable profile image.
type ImageSlot string

const (
	ImageProfilePic ImageSlot = "profilePic"
	ImageFront      ImageSlot = "front"
	ImageLeft       ImageSlot = "left"
	ImageRight      ImageSlot = "right"
)

// ImageSlots returns the slots an account of kind k may upload.
func ImageSlots(k Kind) []ImageSlot {
	if k == KindTalent {
		return []ImageSlot{ImageFront, ImageLeft, ImageRight, ImageProfilePic}
	}
	return []ImageSlot{ImageProfilePic}
}
