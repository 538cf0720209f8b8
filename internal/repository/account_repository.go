package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"showbiz/internal/model"
)

// AccountFilter narrows account listings. Zero values do not filter.
type AccountFilter struct {
	VerifiedOnly bool
	Status       model.ApprovalStatus
}

// AccountRepository defines account persistence operations. Every mutating method is a
// single UPDATE statement so concurrent requests on one account cannot lose updates.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByID(ctx context.Context, kind model.Kind, id uuid.UUID) (*model.Account, error)
	FindByEmail(ctx context.Context, kind model.Kind, email string) (*model.Account, error)
	List(ctx context.Context, kind model.Kind, filter AccountFilter) ([]model.Account, error)
	// Update applies fields and returns the reloaded account, or gorm.ErrRecordNotFound.
	Update(ctx context.Context, kind model.Kind, id uuid.UUID, fields map[string]interface{}) (*model.Account, error)
	// OverwriteUnverified applies fields only while the account is still unverified.
	OverwriteUnverified(ctx context.Context, kind model.Kind, id uuid.UUID, fields map[string]interface{}) (bool, error)
	// ReplaceOTP stores a new code only while the account is still unverified.
	ReplaceOTP(ctx context.Context, kind model.Kind, id uuid.UUID, otp string) (bool, error)
	// MarkVerified clears the OTP and sets is_verified only if otp still matches.
	MarkVerified(ctx context.Context, kind model.Kind, id uuid.UUID, otp string) (bool, error)
	// SetApprovalStatus changes the admin decision only on verified accounts.
	SetApprovalStatus(ctx context.Context, kind model.Kind, id uuid.UUID, status model.ApprovalStatus) (bool, error)
	// FindByResetToken finds the account holding token, provided it is unexpired at now.
	FindByResetToken(ctx context.Context, kind model.Kind, token string, now time.Time) (*model.Account, error)
	// ConsumeResetToken sets passwordHash and clears the reset pair if the account still holds
	// token unexpired at now.
	ConsumeResetToken(ctx context.Context, kind model.Kind, id uuid.UUID, token, passwordHash string, now time.Time) (bool, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) scoped(ctx context.Context, kind model.Kind, id uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Account{}).Where("id = ? AND kind = ?", id, kind)
}

// Create creates a new account.
func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// FindByID finds an account of the given kind by ID.
func (r *accountRepository) FindByID(ctx context.Context, kind model.Kind, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("id = ? AND kind = ?", id, kind).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByEmail finds an account of the given kind by email.
func (r *accountRepository) FindByEmail(ctx context.Context, kind model.Kind, email string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("email = ? AND kind = ?", email, kind).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// List lists accounts of a kind, newest first.
func (r *accountRepository) List(ctx context.Context, kind model.Kind, filter AccountFilter) ([]model.Account, error) {
	q := r.db.WithContext(ctx).Where("kind = ?", kind)
	if filter.VerifiedOnly {
		q = q.Where("is_verified = ?", true)
	}
	if filter.Status != "" {
		q = q.Where("approval_status = ?", filter.Status)
	}

	var accounts []model.Account
	if err := q.Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Update applies fields to an account and reloads it.
func (r *accountRepository) Update(ctx context.Context, kind model.Kind, id uuid.UUID, fields map[string]interface{}) (*model.Account, error) {
	res := r.scoped(ctx, kind, id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, kind, id)
}

func (r *accountRepository) OverwriteUnverified(ctx context.Context, kind model.Kind, id uuid.UUID, fields map[string]interface{}) (bool, error) {
	res := r.scoped(ctx, kind, id).Where("is_verified = ?", false).Updates(fields)
	return res.RowsAffected == 1, res.Error
}

func (r *accountRepository) ReplaceOTP(ctx context.Context, kind model.Kind, id uuid.UUID, otp string) (bool, error) {
	res := r.scoped(ctx, kind, id).Where("is_verified = ?", false).Update("otp", otp)
	return res.RowsAffected == 1, res.Error
}

func (r *accountRepository) MarkVerified(ctx context.Context, kind model.Kind, id uuid.UUID, otp string) (bool, error) {
	res := r.scoped(ctx, kind, id).
		Where("otp = ?", otp).
		Updates(map[string]interface{}{
			"otp":         nil,
			"is_verified": true,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *accountRepository) SetApprovalStatus(ctx context.Context, kind model.Kind, id uuid.UUID, status model.ApprovalStatus) (bool, error) {
	res := r.scoped(ctx, kind, id).Where("is_verified = ?", true).Update("approval_status", status)
	return res.RowsAffected == 1, res.Error
}

func (r *accountRepository) FindByResetToken(ctx context.Context, kind model.Kind, token string, now time.Time) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("kind = ? AND reset_token = ? AND reset_token_expire > ?", kind, token, now).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) ConsumeResetToken(ctx context.Context, kind model.Kind, id uuid.UUID, token, passwordHash string, now time.Time) (bool, error) {
	res := r.scoped(ctx, kind, id).
		Where("reset_token = ? AND reset_token_expire > ?", token, now).
		Updates(map[string]interface{}{
			"password_hash":      passwordHash,
			"reset_token":        nil,
			"reset_token_expire": nil,
		})
	return res.RowsAffected == 1, res.Error
}
