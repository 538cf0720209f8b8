package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"showbiz/internal/cache"
	"showbiz/internal/errors"
	"showbiz/internal/model"
	"showbiz/internal/repository"
)

const profileCacheTTL = 5 * time.Minute

func profileCacheKey(kind model.Kind, id uuid.UUID) string {
	return fmt.Sprintf("profile:%s:%s", kind, id)
}

func invalidateProfile(ctx context.Context, c *cache.Client, kind model.Kind, id uuid.UUID) {
	_ = c.Delete(ctx, profileCacheKey(kind, id))
}

// accountNotFound matches errors.ErrAccountNotFound but names the kind, e.g. "Hirer not found".
func accountNotFound(kind model.Kind) *errors.Error {
	return &errors.Error{
		Kind:    errors.KindNotFound,
		Code:    errors.ErrAccountNotFound.Code,
		Message: kind.Label() + " not found",
	}
}

func loadAccount(ctx context.Context, repo repository.AccountRepository, kind model.Kind, id uuid.UUID) (*model.Account, error) {
	if id == uuid.Nil {
		return nil, errors.ErrNotAuthenticated
	}
	account, err := repo.FindByID(ctx, kind, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, accountNotFound(kind)
		}
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	return account, nil
}

// loadApproved loads an account that may hold a session: verified and, for kinds
// with an approval gate, approved. A registration token alone does not pass.
func loadApproved(ctx context.Context, repo repository.AccountRepository, kind model.Kind, id uuid.UUID) (*model.Account, error) {
	account, err := loadAccount(ctx, repo, kind, id)
	if err != nil {
		return nil, err
	}
	if !account.Active() {
		if !account.IsVerified {
			return nil, errors.ErrNotVerified
		}
		return nil, errors.ErrNotApproved
	}
	return account, nil
}
