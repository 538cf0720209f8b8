package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"showbiz/internal/model"
)

// ProfileRepository stores the kind-specific profile rows that hang off an account.
type ProfileRepository interface {
	// GetTalent returns the talent profile, or an empty one when none was saved yet.
	GetTalent(ctx context.Context, accountID uuid.UUID) (*model.TalentProfile, error)
	GetHirer(ctx context.Context, accountID uuid.UUID) (*model.HirerProfile, error)
	SaveTalent(ctx context.Context, profile *model.TalentProfile) error
	SaveHirer(ctx context.Context, profile *model.HirerProfile) error
	// ListTalents returns profiles keyed by account id for the given accounts.
	ListTalents(ctx context.Context, accountIDs []uuid.UUID) (map[uuid.UUID]model.TalentProfile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetTalent(ctx context.Context, accountID uuid.UUID) (*model.TalentProfile, error) {
	profile := model.TalentProfile{AccountID: accountID}
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetHirer(ctx context.Context, accountID uuid.UUID) (*model.HirerProfile, error) {
	profile := model.HirerProfile{AccountID: accountID}
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &profile, nil
}

// SaveTalent inserts or fully replaces the talent profile.
func (r *profileRepository) SaveTalent(ctx context.Context, profile *model.TalentProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "account_id"}}, UpdateAll: true}).
		Create(profile).Error
}

// SaveHirer inserts or fully replaces the hirer profile.
func (r *profileRepository) SaveHirer(ctx context.Context, profile *model.HirerProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "account_id"}}, UpdateAll: true}).
		Create(profile).Error
}

func (r *profileRepository) ListTalents(ctx context.Context, accountIDs []uuid.UUID) (map[uuid.UUID]model.TalentProfile, error) {
	out := make(map[uuid.UUID]model.TalentProfile, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}

	var profiles []model.TalentProfile
	if err := r.db.WithContext(ctx).Where("account_id IN ?", accountIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.AccountID] = p
	}
	return out, nil
}
