package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"showbiz/internal/model"
)

// SubmissionRepository defines submission persistence operations.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	// FindOwned returns the submission only when hirerID authored it.
	FindOwned(ctx context.Context, id, hirerID uuid.UUID) (*model.Submission, error)
	// UpdateOwned applies fields when hirerID authored the submission and returns the reloaded row.
	UpdateOwned(ctx context.Context, id, hirerID uuid.UUID, fields map[string]interface{}) (*model.Submission, error)
	// DeleteOwned removes the submission when hirerID authored it.
	DeleteOwned(ctx context.Context, id, hirerID uuid.UUID) (bool, error)
	// List returns every submission with its author preloaded, newest first.
	List(ctx context.Context) ([]model.Submission, error)
	ListByHirer(ctx context.Context, hirerID uuid.UUID) ([]model.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(submission).Error
}

func (r *submissionRepository) FindOwned(ctx context.Context, id, hirerID uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).
		Where("id = ? AND hirer_id = ?", id, hirerID).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) UpdateOwned(ctx context.Context, id, hirerID uuid.UUID, fields map[string]interface{}) (*model.Submission, error) {
	res := r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ? AND hirer_id = ?", id, hirerID).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindOwned(ctx, id, hirerID)
}

func (r *submissionRepository) DeleteOwned(ctx context.Context, id, hirerID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND hirer_id = ?", id, hirerID).
		Delete(&model.Submission{})
	return res.RowsAffected == 1, res.Error
}

func (r *submissionRepository) List(ctx context.Context) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.WithContext(ctx).
		Preload("Hirer").
		Order("created_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) ListByHirer(ctx context.Context, hirerID uuid.UUID) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.WithContext(ctx).
		Where("hirer_id = ?", hirerID).
		Order("created_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}
