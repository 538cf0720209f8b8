package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"showbiz/internal/dbtest"
	"showbiz/internal/model"
)

func strPtr(s string) *string { return &s }

func newAccount(kind model.Kind, email string) *model.Account {
	return &model.Account{
		Kind:         kind,
		Name:         "Jane",
		Email:        email,
		Phone:        "+14155550100",
		Gender:       "Female",
		Role:         "Director",
		PasswordHash: "hash",
		OTP:          strPtr("123456"),
	}
}

func TestAccountRepository_EmailUniquePerKind(t *testing.T) {
	repo := NewAccountRepository(dbtest.New(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAccount(model.KindTalent, "a@x.com")))
	require.NoError(t, repo.Create(ctx, newAccount(model.KindHirer, "a@x.com")))

	err := repo.Create(ctx, newAccount(model.KindTalent, "a@x.com"))
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	talent, err := repo.FindByEmail(ctx, model.KindTalent, "a@x.com")
	require.NoError(t, err)
	hirer, err := repo.FindByEmail(ctx, model.KindHirer, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, talent.ID, hirer.ID)

	_, err = repo.FindByID(ctx, model.KindHirer, talent.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAccountRepository_MarkVerified(t *testing.T) {
	repo := NewAccountRepository(dbtest.New(t))
	ctx := context.Background()
	account := newAccount(model.KindTalent, "a@x.com")
	require.NoError(t, repo.Create(ctx, account))

	ok, err := repo.MarkVerified(ctx, model.KindTalent, account.ID, "654321")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByID(ctx, model.KindTalent, account.ID)
	require.NoError(t, err)
	assert.False(t, got.IsVerified)
	require.NotNil(t, got.OTP)
	assert.Equal(t, "123456", *got.OTP)

	ok, err = repo.MarkVerified(ctx, model.KindTalent, account.ID, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.FindByID(ctx, model.KindTalent, account.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Nil(t, got.OTP)

	// the code is consumed
	ok, err = repo.MarkVerified(ctx, model.KindTalent, account.ID, "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccountRepository_UnverifiedOnlyWrites(t *testing.T) {
	repo := NewAccountRepository(dbtest.New(t))
	ctx := context.Background()
	account := newAccount(model.KindHirer, "h@x.com")
	require.NoError(t, repo.Create(ctx, account))

	ok, err := repo.ReplaceOTP(ctx, model.KindHirer, account.ID, "111111")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.OverwriteUnverified(ctx, model.KindHirer, account.ID, map[string]interface{}{"name": "New"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkVerified(ctx, model.KindHirer, account.ID, "111111")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.ReplaceOTP(ctx, model.KindHirer, account.ID, "222222")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.OverwriteUnverified(ctx, model.KindHirer, account.ID, map[string]interface{}{"is_verified": false})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByID(ctx, model.KindHirer, account.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Nil(t, got.OTP)
	assert.Equal(t, "New", got.Name)
}

func TestAccountRepository_SetApprovalStatus(t *testing.T) {
	repo := NewAccountRepository(dbtest.New(t))
	ctx := context.Background()
	account := newAccount(model.KindHirer, "h@x.com")
	account.ApprovalStatus = model.StatusPending
	require.NoError(t, repo.Create(ctx, account))

	ok, err := repo.SetApprovalStatus(ctx, model.KindHirer, account.ID, model.StatusApproved)
	require.NoError(t, err)
	assert.False(t, ok, "unverified accounts cannot be approved")

	_, err = repo.MarkVerified(ctx, model.KindHirer, account.ID, "123456")
	require.NoError(t, err)

	ok, err = repo.SetApprovalStatus(ctx, model.KindHirer, account.ID, model.StatusApproved)
	require.NoError(t, err)
	assert.True(t, ok)

	approved, err := repo.List(ctx, model.KindHirer, AccountFilter{VerifiedOnly: true, Status: model.StatusApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, account.ID, approved[0].ID)

	pending, err := repo.List(ctx, model.KindHirer, AccountFilter{Status: model.StatusPending})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAccountRepository_ResetToken(t *testing.T) {
	repo := NewAccountRepository(dbtest.New(t))
	ctx := context.Background()
	account := newAccount(model.KindTalent, "a@x.com")
	require.NoError(t, repo.Create(ctx, account))

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	expire := now.Add(10 * time.Minute)
	_, err := repo.Update(ctx, model.KindTalent, account.ID, map[string]interface{}{
		"reset_token":        "424242",
		"reset_token_expire": expire,
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		at    time.Time
		found bool
	}{
		{name: "matching and fresh", token: "424242", at: now, found: true},
		{name: "wrong code", token: "000000", at: now, found: false},
		{name: "exactly at expiry", token: "424242", at: expire, found: false},
		{name: "after expiry", token: "424242", at: expire.Add(time.Second), found: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindByResetToken(ctx, model.KindTalent, tt.token, tt.at)
			if !tt.found {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, account.ID, got.ID)
		})
	}

	ok, err := repo.ConsumeResetToken(ctx, model.KindTalent, account.ID, "424242", "new-hash", expire.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.ConsumeResetToken(ctx, model.KindTalent, account.ID, "424242", "new-hash", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConsumeResetToken(ctx, model.KindTalent, account.ID, "424242", "other-hash", now)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.FindByID(ctx, model.KindTalent, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.Nil(t, got.ResetToken)
	assert.Nil(t, got.ResetTokenExpire)
}

func TestAccountRepository_UpdateMissing(t *testing.T) {
	repo := NewAccountRepository(dbtest.New(t))

	_, err := repo.Update(context.Background(), model.KindTalent, uuid.New(), map[string]interface{}{"name": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
