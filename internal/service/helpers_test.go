package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"showbiz/internal/auth"
	"showbiz/internal/cache"
	"showbiz/internal/dbtest"
	"showbiz/internal/model"
	"showbiz/internal/notify"
	"showbiz/internal/repository"
)

// MockNotifier is a mock implementation of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, msg notify.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockNotifier) NotifyAsync(ctx context.Context, msg notify.Message) {
	m.Called(ctx, msg)
}

func (m *MockNotifier) Close() error {
	return nil
}

// scriptedCodes hands out codes in order, then falls back to random ones.
type scriptedCodes struct {
	mu    sync.Mutex
	codes []string
}

func (s *scriptedCodes) NewCode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.codes) == 0 {
		return auth.NewOTPIssuer().NewCode()
	}
	code := s.codes[0]
	s.codes = s.codes[1:]
	return code, nil
}

func (s *scriptedCodes) push(codes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, codes...)
}

type testEnv struct {
	db         *gorm.DB
	accounts   repository.AccountRepository
	profiles   repository.ProfileRepository
	notifier   *MockNotifier
	codes      *scriptedCodes
	jwt        *auth.JWTService
	tokens     *auth.TokenStore
	cache      *cache.Client
	redis      *miniredis.Miniredis
	now        time.Time
	lifecycles map[model.Kind]LifecycleService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gormDB := dbtest.New(t)
	mr := miniredis.RunT(t)
	cacheClient := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cacheClient.Close() })

	env := &testEnv{
		db:         gormDB,
		accounts:   repository.NewAccountRepository(gormDB),
		profiles:   repository.NewProfileRepository(gormDB),
		notifier:   new(MockNotifier),
		codes:      &scriptedCodes{},
		jwt:        auth.NewJWTService("test-secret", 0),
		cache:      cacheClient,
		redis:      mr,
		now:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		lifecycles: map[model.Kind]LifecycleService{},
	}
	env.tokens = auth.NewTokenStore(cacheClient)

	for _, kind := range []model.Kind{model.KindTalent, model.KindHirer} {
		env.lifecycles[kind] = NewLifecycle(kind, LifecycleDeps{
			Accounts:    env.accounts,
			Hasher:      auth.NewBcryptHasher(bcrypt.MinCost),
			Codes:       env.codes,
			Tokens:      env.jwt,
			Revoker:     env.tokens,
			Notifier:    env.notifier,
			Cache:       cacheClient,
			ResetTTL:    10 * time.Minute,
			PhoneRegion: "IN",
			Now:         func() time.Time { return env.now },
		})
	}
	return env
}

func (e *testEnv) lc(kind model.Kind) LifecycleService {
	return e.lifecycles[kind]
}

// allowNotify accepts every synchronous and asynchronous notification.
func (e *testEnv) allowNotify() {
	e.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Maybe()
	e.notifier.On("NotifyAsync", mock.Anything, mock.Anything).Return().Maybe()
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Name:     "Jane Doe",
		Email:    email,
		Phone:    "+919876543210",
		Gender:   "Female",
		Role:     "Director",
		Password: "p1",
	}
}

func (e *testEnv) account(t *testing.T, kind model.Kind, email string) *model.Account {
	t.Helper()
	account, err := e.accounts.FindByEmail(context.Background(), kind, email)
	require.NoError(t, err)
	return account
}

func (e *testEnv) countAccounts(t *testing.T, kind model.Kind, email string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Account{}).Where("kind = ? AND email = ?", kind, email).Count(&n).Error)
	return n
}

// activate registers and verifies an account; hirers are approved as well.
func (e *testEnv) activate(t *testing.T, kind model.Kind, email string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	e.allowNotify()
	e.codes.push("111111")

	res, err := e.lc(kind).Register(ctx, registerInput(email))
	require.NoError(t, err)
	_, err = e.lc(kind).VerifyOTP(ctx, res.AccountID, "111111")
	require.NoError(t, err)
	if kind.RequiresApproval() {
		_, err = e.lc(kind).ManageStatus(ctx, res.AccountID, "approved")
		require.NoError(t, err)
	}
	return res.AccountID
}
