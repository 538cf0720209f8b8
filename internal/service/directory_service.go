package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"showbiz/internal/errors"
	"showbiz/internal/model"
	"showbiz/internal/repository"
)

// HirerListing selects one of the admin dashboard's hirer lists.
type HirerListing string

const (
	ListPendingHirers  HirerListing = "pending"
	ListAllHirers      HirerListing = "all"
	ListApprovedHirers HirerListing = "approved"
)

// TalentCard is a talent as shown in directories. Email and Phone are nil when the
// viewer may not contact the talent directly.
type TalentCard struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Email                *string   `json:"email"`
	Phone                *string   `json:"phone"`
	Role                 string    `json:"role"`
	Gender               string    `json:"gender"`
	Age                  *int      `json:"age"`
	Height               string    `json:"height,omitempty"`
	Weight               string    `json:"weight,omitempty"`
	BodyType             string    `json:"bodyType,omitempty"`
	SkinTone             string    `json:"skinTone,omitempty"`
	Language             string    `json:"language,omitempty"`
	Skills               string    `json:"skills,omitempty"`
	ProfilePic           *string   `json:"profilePic"`
	Video                *string   `json:"video"`
	MakeoverNeeded       bool      `json:"makeoverNeeded"`
	WillingToWorkAsExtra bool      `json:"willingToWorkAsExtra"`
	AboutYourself        string    `json:"aboutYourself,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// DirectoryService lists accounts for the admin dashboard and for browsing talent.
type DirectoryService interface {
	ListHirers(ctx context.Context, which HirerListing) ([]model.PublicAccount, error)
	// PublicTalents lists every verified talent including contact details.
	PublicTalents(ctx context.Context) ([]TalentCard, error)
	// TalentsForHirer lists verified talents for an approved hirer without contact details.
	TalentsForHirer(ctx context.Context, hirerID uuid.UUID) ([]TalentCard, error)
}

type directoryService struct {
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(accounts repository.AccountRepository, profiles repository.ProfileRepository) DirectoryService {
	return &directoryService{accounts: accounts, profiles: profiles}
}

func (s *directoryService) ListHirers(ctx context.Context, which HirerListing) ([]model.PublicAccount, error) {
	var (
		filter repository.AccountFilter
		empty  string
	)
	switch which {
	case ListPendingHirers:
		filter = repository.AccountFilter{VerifiedOnly: true, Status: model.StatusPending}
		empty = "no pending hirers found"
	case ListApprovedHirers:
		filter = repository.AccountFilter{VerifiedOnly: true, Status: model.StatusApproved}
		empty = "no accepted hirers found"
	case ListAllHirers:
		empty = "no hirers found"
	default:
		return nil, errors.Validation("unknown hirer listing")
	}

	accounts, err := s.accounts.List(ctx, model.KindHirer, filter)
	if err != nil {
		return nil, fmt.Errorf("list hirers: %w", err)
	}
	if len(accounts) == 0 {
		return nil, errors.NotFound(empty)
	}

	out := make([]model.PublicAccount, len(accounts))
	for i := range accounts {
		out[i] = accounts[i].Public()
	}
	return out, nil
}

func (s *directoryService) PublicTalents(ctx context.Context) ([]TalentCard, error) {
	return s.talents(ctx, true)
}

func (s *directoryService) TalentsForHirer(ctx context.Context, hirerID uuid.UUID) ([]TalentCard, error) {
	if _, err := loadApproved(ctx, s.accounts, model.KindHirer, hirerID); err != nil {
		return nil, err
	}
	return s.talents(ctx, false)
}

func (s *directoryService) talents(ctx context.Context, withContact bool) ([]TalentCard, error) {
	accounts, err := s.accounts.List(ctx, model.KindTalent, repository.AccountFilter{VerifiedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list talents: %w", err)
	}
	if len(accounts) == 0 {
		return nil, errors.NotFound("no talents found")
	}

	ids := make([]uuid.UUID, len(accounts))
	for i := range accounts {
		ids[i] = accounts[i].ID
	}
	details, err := s.profiles.ListTalents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list talent profiles: %w", err)
	}

	cards := make([]TalentCard, len(accounts))
	for i := range accounts {
		cards[i] = talentCard(&accounts[i], details[accounts[i].ID], withContact)
	}
	return cards, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func talentCard(a *model.Account, p model.TalentProfile, withContact bool) TalentCard {
	card := TalentCard{
		ID:                   a.ID,
		Name:                 a.Name,
		Role:                 a.Role,
		Gender:               a.Gender,
		Age:                  p.Age,
		Height:               p.Height,
		Weight:               p.Weight,
		BodyType:             p.BodyType,
		SkinTone:             p.SkinTone,
		Language:             p.Language,
		Skills:               p.Skills,
		ProfilePic:           optional(a.ProfilePicURL),
		Video:                optional(p.VideoURL),
		MakeoverNeeded:       p.MakeoverNeeded,
		WillingToWorkAsExtra: p.WillingToWorkAsExtra,
		AboutYourself:        p.AboutYourself,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
	if withContact {
		card.Email = optional(a.Email)
		card.Phone = optional(a.Phone)
	}
	return card
}
