package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"showbiz/internal/auth"
	"showbiz/internal/cache"
	"showbiz/internal/errors"
	"showbiz/internal/metrics"
	"showbiz/internal/model"
	"showbiz/internal/notify"
	"showbiz/internal/repository"
)

// DefaultResetTTL is how long a password reset code stays valid.
const DefaultResetTTL = 10 * time.Minute

// resetCodeAttempts bounds how often ForgotPassword redraws a code that another
// account of the same kind currently holds.
const resetCodeAttempts = 5

// TokenIssuer signs bearer tokens. *auth.JWTService implements it.
type TokenIssuer interface {
	Issue(accountID uuid.UUID, kind model.Kind) (string, error)
}

// RegisterInput is the registration form. DeviceToken is optional.
type RegisterInput struct {
	Name        string
	Email       string
	Phone       string
	Gender      string
	Role        string
	Password    string
	DeviceToken string
}

// LoginInput is the login form. DeviceToken is optional.
type LoginInput struct {
	Email       string
	Password    string
	DeviceToken string
}

// AuthResult carries a freshly issued bearer token. Account is nil after registration.
type AuthResult struct {
	AccountID uuid.UUID
	Token     string
	Account   *model.PublicAccount
}

// LifecycleService drives one account kind from registration to an active account.
type LifecycleService interface {
	Kind() model.Kind
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	VerifyOTP(ctx context.Context, accountID uuid.UUID, code string) (*AuthResult, error)
	ResendOTP(ctx context.Context, accountID uuid.UUID) error
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	// ManageStatus records the admin decision. Only kinds with an approval gate accept it.
	ManageStatus(ctx context.Context, accountID uuid.UUID, status string) (*model.PublicAccount, error)
	// Logout revokes the token id until expiresAt.
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// LifecycleDeps are the collaborators shared by every account kind.
type LifecycleDeps struct {
	Accounts    repository.AccountRepository
	Hasher      auth.PasswordHasher
	Codes       auth.CodeIssuer
	Tokens      TokenIssuer
	Revoker     auth.TokenStoreInterface
	Notifier    notify.Notifier
	Cache       *cache.Client
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	ResetTTL    time.Duration
	PhoneRegion string
	Now         func() time.Time
}

type lifecycle struct {
	kind model.Kind
	LifecycleDeps
}

// NewLifecycle creates the lifecycle for kind.
func NewLifecycle(kind model.Kind, deps LifecycleDeps) LifecycleService {
	if deps.ResetTTL <= 0 {
		deps.ResetTTL = DefaultResetTTL
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Hasher == nil {
		deps.Hasher = auth.NewBcryptHasher(0)
	}
	if deps.Codes == nil {
		deps.Codes = auth.NewOTPIssuer()
	}
	return &lifecycle{kind: kind, LifecycleDeps: deps}
}

func (s *lifecycle) Kind() model.Kind {
	return s.kind
}

func (s *lifecycle) issue(account *model.Account) (*AuthResult, error) {
	token, err := s.Tokens.Issue(account.ID, s.kind)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{AccountID: account.ID, Token: token}, nil
}

func (s *lifecycle) sendOTP(ctx context.Context, account *model.Account, code string) error {
	msg, err := notify.OTPMessage(account.Email, account.Name, string(s.kind), code)
	if err != nil {
		return err
	}
	return s.Notifier.Notify(ctx, msg)
}

type registration struct {
	name, email, phone, gender, role, hash string
}

func (s *lifecycle) validateRegistration(in RegisterInput) (*registration, error) {
	missing := missingFields([][2]string{
		{"name", in.Name},
		{"email", in.Email},
		{"phone", in.Phone},
		{"gender", in.Gender},
		{"role", in.Role},
		{"password", in.Password},
	})
	if len(missing) > 0 {
		return nil, errors.Validation("all fields are required, missing: " + strings.Join(missing, ", "))
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	phone, err := normalizePhone(in.Phone, s.PhoneRegion)
	if err != nil {
		return nil, err
	}
	gender, err := validateGender(in.Gender)
	if err != nil {
		return nil, err
	}
	role, err := validateRole(s.kind, in.Role)
	if err != nil {
		return nil, err
	}

	return &registration{
		name:   strings.TrimSpace(in.Name),
		email:  email,
		phone:  phone,
		gender: gender,
		role:   role,
	}, nil
}

// Register creates an unverified account or overwrites the unverified account already
// holding the email, then sends a fresh OTP. Verified accounts are never touched.
func (s *lifecycle) Register(ctx context.Context, in RegisterInput) (result *AuthResult, err error) {
	defer func() { s.Metrics.ObserveRegistration(string(s.kind), err) }()

	reg, err := s.validateRegistration(in)
	if err != nil {
		return nil, err
	}
	reg.hash, err = s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	code, err := s.Codes.NewCode()
	if err != nil {
		return nil, err
	}

	account, err := s.upsertUnverified(ctx, reg, code, strings.TrimSpace(in.DeviceToken))
	if err != nil {
		return nil, err
	}

	// The code is stored before sending, so a failed send is recovered by ResendOTP.
	if err := s.sendOTP(ctx, account, code); err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "account registered", "kind", s.kind, "account_id", account.ID)
	return s.issue(account)
}

func (s *lifecycle) upsertUnverified(ctx context.Context, reg *registration, code, deviceToken string) (*model.Account, error) {
	// A second pass covers losing a create race to a concurrent registration.
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.Accounts.FindByEmail(ctx, s.kind, reg.email)
		switch {
		case err == nil && existing.IsVerified:
			return nil, errors.ErrAlreadyRegistered
		case err == nil:
			fields := map[string]interface{}{
				"name":          reg.name,
				"phone":         reg.phone,
				"gender":        reg.gender,
				"role":          reg.role,
				"password_hash": reg.hash,
				"otp":           code,
			}
			if s.kind.RequiresApproval() {
				fields["approval_status"] = model.StatusPending
			}
			if deviceToken != "" {
				fields["device_token"] = deviceToken
			}
			ok, err := s.Accounts.OverwriteUnverified(ctx, s.kind, existing.ID, fields)
			if err != nil {
				return nil, fmt.Errorf("overwrite %s: %w", s.kind, err)
			}
			if !ok {
				// verified in between
				return nil, errors.ErrAlreadyRegistered
			}
			invalidateProfile(ctx, s.Cache, s.kind, existing.ID)
			existing.Name = reg.name
			existing.OTP = &code
			return existing, nil
		case !stderrors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("find %s: %w", s.kind, err)
		}

		account := &model.Account{
			Kind:         s.kind,
			Name:         reg.name,
			Email:        reg.email,
			Phone:        reg.phone,
			Gender:       reg.gender,
			Role:         reg.role,
			PasswordHash: reg.hash,
			OTP:          &code,
			DeviceToken:  deviceToken,
		}
		if s.kind.RequiresApproval() {
			account.ApprovalStatus = model.StatusPending
		}
		err = s.Accounts.Create(ctx, account)
		if err == nil {
			return account, nil
		}
		if !stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create %s: %w", s.kind, err)
		}
	}
	return nil, errors.ErrAlreadyRegistered
}

// VerifyOTP compares code with the stored OTP as decimal strings and, on a match,
// marks the account verified in the same statement that consumes the code.
func (s *lifecycle) VerifyOTP(ctx context.Context, accountID uuid.UUID, code string) (result *AuthResult, err error) {
	defer func() { s.Metrics.ObserveVerification(string(s.kind), err) }()

	account, err := loadAccount(ctx, s.Accounts, s.kind, accountID)
	if err != nil {
		return nil, err
	}

	code = strings.TrimSpace(code)
	if account.OTP == nil || code == "" || *account.OTP != code {
		return nil, errors.ErrInvalidOTP
	}

	ok, err := s.Accounts.MarkVerified(ctx, s.kind, account.ID, code)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", s.kind, err)
	}
	if !ok {
		// consumed or replaced concurrently
		return nil, errors.ErrInvalidOTP
	}
	invalidateProfile(ctx, s.Cache, s.kind, account.ID)

	account.OTP = nil
	account.IsVerified = true

	result, err = s.issue(account)
	if err != nil {
		return nil, err
	}
	public := account.Public()
	result.Account = &public
	return result, nil
}

// ResendOTP replaces the outstanding OTP of an unverified account and sends it.
func (s *lifecycle) ResendOTP(ctx context.Context, accountID uuid.UUID) error {
	account, err := loadAccount(ctx, s.Accounts, s.kind, accountID)
	if err != nil {
		return err
	}
	if account.IsVerified {
		return errors.ErrAlreadyVerified
	}

	code, err := s.Codes.NewCode()
	if err != nil {
		return err
	}
	ok, err := s.Accounts.ReplaceOTP(ctx, s.kind, account.ID, code)
	if err != nil {
		return fmt.Errorf("replace otp: %w", err)
	}
	if !ok {
		return errors.ErrAlreadyVerified
	}

	return s.sendOTP(ctx, account, code)
}

// Login checks credentials before lifecycle state so a wrong password never reveals
// whether the account is verified or approved.
func (s *lifecycle) Login(ctx context.Context, in LoginInput) (result *AuthResult, err error) {
	defer func() { s.Metrics.ObserveLogin(string(s.kind), err) }()

	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, errors.Validation("email and password are required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	account, err := s.Accounts.FindByEmail(ctx, s.kind, email)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find %s: %w", s.kind, err)
	}
	if !s.Hasher.Verify(in.Password, account.PasswordHash) {
		return nil, errors.ErrInvalidCredentials
	}
	if !account.IsVerified {
		return nil, errors.ErrNotVerified
	}
	if s.kind.RequiresApproval() && account.ApprovalStatus != model.StatusApproved {
		return nil, errors.ErrNotApproved
	}

	if deviceToken := strings.TrimSpace(in.DeviceToken); deviceToken != "" && deviceToken != account.DeviceToken {
		updated, err := s.Accounts.Update(ctx, s.kind, account.ID, map[string]interface{}{"device_token": deviceToken})
		if err != nil {
			return nil, fmt.Errorf("save device token: %w", err)
		}
		account = updated
	}

	result, err = s.issue(account)
	if err != nil {
		return nil, err
	}
	public := account.Public()
	result.Account = &public
	return result, nil
}

// ForgotPassword stores a reset code valid for ResetTTL and mails it. Unknown emails
// are reported as not found.
func (s *lifecycle) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.Validation("email is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.Accounts.FindByEmail(ctx, s.kind, email)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return &errors.Error{Kind: errors.KindNotFound, Code: errors.ErrAccountNotFound.Code, Message: "user not found"}
		}
		return fmt.Errorf("find %s: %w", s.kind, err)
	}

	now := s.Now()
	code, err := s.freeResetCode(ctx, account.ID, now)
	if err != nil {
		return err
	}

	_, err = s.Accounts.Update(ctx, s.kind, account.ID, map[string]interface{}{
		"reset_token":        code,
		"reset_token_expire": now.Add(s.ResetTTL),
	})
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	msg, err := notify.ResetMessage(account.Email, account.Name, code, s.ResetTTL)
	if err != nil {
		return err
	}
	return s.Notifier.Notify(ctx, msg)
}

// freeResetCode draws a code no other account of this kind holds unexpired, since a
// reset is addressed by the code alone.
func (s *lifecycle) freeResetCode(ctx context.Context, accountID uuid.UUID, now time.Time) (string, error) {
	for i := 0; i < resetCodeAttempts; i++ {
		code, err := s.Codes.NewCode()
		if err != nil {
			return "", err
		}
		holder, err := s.Accounts.FindByResetToken(ctx, s.kind, code, now)
		if stderrors.Is(err, gorm.ErrRecordNotFound) || (err == nil && holder.ID == accountID) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check reset token: %w", err)
		}
	}
	return "", fmt.Errorf("no free reset code after %d attempts", resetCodeAttempts)
}

// ResetPassword sets a new password for the account holding token. Wrong, expired and
// already used codes all fail the same way.
func (s *lifecycle) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.ErrInvalidResetToken
	}
	if newPassword == "" {
		return errors.Validation("new password is required")
	}

	now := s.Now()
	account, err := s.Accounts.FindByResetToken(ctx, s.kind, token, now)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrInvalidResetToken
		}
		return fmt.Errorf("find reset token: %w", err)
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ok, err := s.Accounts.ConsumeResetToken(ctx, s.kind, account.ID, token, hash, now)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if !ok {
		return errors.ErrInvalidResetToken
	}

	s.Logger.InfoContext(ctx, "password reset", "kind", s.kind, "account_id", account.ID)
	return nil
}

// ManageStatus applies an admin decision to a verified account. The status email is
// best effort and its failure only logged.
func (s *lifecycle) ManageStatus(ctx context.Context, accountID uuid.UUID, status string) (*model.PublicAccount, error) {
	if !s.kind.RequiresApproval() {
		return nil, errors.State(s.kind.Label() + " accounts do not require approval")
	}

	decision := model.ApprovalStatus(strings.ToLower(strings.TrimSpace(status)))
	if decision != model.StatusApproved && decision != model.StatusRejected {
		return nil, errors.Validation("invalid status, must be 'approved' or 'rejected'")
	}

	account, err := loadAccount(ctx, s.Accounts, s.kind, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsVerified {
		return nil, errors.ErrVerifyBeforeApproval
	}

	ok, err := s.Accounts.SetApprovalStatus(ctx, s.kind, account.ID, decision)
	if err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	if !ok {
		return nil, accountNotFound(s.kind)
	}
	invalidateProfile(ctx, s.Cache, s.kind, account.ID)
	account.ApprovalStatus = decision

	if msg, err := notify.StatusMessage(account.Email, account.Name, string(decision)); err == nil {
		s.Notifier.NotifyAsync(ctx, msg)
	} else {
		s.Logger.ErrorContext(ctx, "render status email", "account_id", account.ID, "error", err)
	}

	s.Logger.InfoContext(ctx, "approval status changed", "kind", s.kind, "account_id", account.ID, "status", decision)
	public := account.Public()
	return &public, nil
}

func (s *lifecycle) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.ErrNotAuthenticated
	}
	if s.Revoker == nil {
		return nil
	}
	return s.Revoker.Revoke(ctx, tokenID, expiresAt.Sub(s.Now()))
}
