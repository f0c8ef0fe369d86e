package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/clientdesk/clientdesk/internal/auth"
	"github.com/clientdesk/clientdesk/internal/metrics"
	"github.com/clientdesk/clientdesk/internal/model"
	"github.com/clientdesk/clientdesk/internal/repository"
)

const (
	maxHandleLength   = 64
	maxEmailLength    = 128
	maxFullNameLength = 128
	maxPasswordLength = 256
)

// dummyPassword seeds the digest verified when a login has no usable
// account, so every failed login pays one hash verification.
const dummyPassword = "clientdesk-login-placeholder"

// AccountService handles account business logic.
type AccountService struct {
	store   repository.Store
	hasher  PasswordHasher
	tokens  TokenIssuer
	metrics metrics.Recorder
	now     func() time.Time

	// dummyDigest is verified on logins without a usable account.
	dummyDigest string
}

// NewAccountService creates a new AccountService.
func NewAccountService(store repository.Store, hasher PasswordHasher, tokens TokenIssuer, opts ...Option) *AccountService {
	o := buildOptions(opts)
	// A hashing failure here leaves dummyDigest empty; Login then still
	// answers ErrUnauthorized, only faster.
	dummyDigest, _ := hasher.Hash(dummyPassword)
	return &AccountService{
		store:       store,
		hasher:      hasher,
		tokens:      tokens,
		metrics:     o.metrics,
		now:         o.now,
		dummyDigest: dummyDigest,
	}
}

// RegisterInput defines input for registering an account.
type RegisterInput struct {
	Handle   string
	Password string
	FullName string
	Email    string
}

// Validate checks field presence and limits.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Handle, validation.Required, validation.Length(1, maxHandleLength)),
		validation.Field(&in.Password, validation.Required, validation.Length(1, maxPasswordLength)),
		validation.Field(&in.FullName, validation.Length(0, maxFullNameLength)),
		validation.Field(&in.Email, validation.Required, validation.Length(1, maxEmailLength), is.EmailFormat),
	)
}

// UpdateProfileInput defines the mutable profile fields. Nil fields are kept.
type UpdateProfileInput struct {
	FullName *string
	Email    *string
}

// Validate checks that at least one field is set and within limits.
func (in UpdateProfileInput) Validate() error {
	if in.FullName == nil && in.Email == nil {
		return errors.New("full_name or email is required")
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.FullName, validation.Length(0, maxFullNameLength)),
		validation.Field(&in.Email, validation.NilOrNotEmpty, validation.Length(1, maxEmailLength), is.EmailFormat),
	)
}

// TokenPair is the result of a successful login or refresh.
// RefreshToken is empty for a refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Register creates an active account and returns its id.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (int64, error) {
	if err := input.Validate(); err != nil {
		return 0, malformed(err)
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		Handle:       input.Handle,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: digest,
		Active:       true,
	}

	err = s.store.WithTx(ctx, func(tx repository.Tx) error {
		// Inactive accounts keep their handle.
		_, err := tx.FindAccountByHandle(ctx, input.Handle)
		switch {
		case err == nil:
			return ErrConflict
		case !errors.Is(err, repository.ErrAccountNotFound):
			return err
		}
		return tx.InsertAccount(ctx, account)
	})
	if err != nil {
		if errors.Is(err, ErrConflict) || isAccountClash(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("failed to register account: %w", err)
	}

	s.metrics.IncAccountRegistered()

	return account.ID, nil
}

// Login verifies credentials and issues an access and a refresh token.
// Unknown handle, inactive account and wrong password all return the same
// ErrUnauthorized value.
func (s *AccountService) Login(ctx context.Context, handle, password string) (*TokenPair, error) {
	var account *model.Account
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		account, err = tx.FindAccountByHandle(ctx, handle)
		return err
	})
	switch {
	case errors.Is(err, repository.ErrAccountNotFound):
		account = nil
	case err != nil:
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if account == nil || !account.Active {
		s.verifyDummy(password)
		s.metrics.IncLogin(metrics.ResultFailure)
		return nil, ErrUnauthorized
	}

	ok, err := s.hasher.Verify(account.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("stored credential for account %d is unreadable: %w", account.ID, err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.ResultFailure)
		return nil, ErrUnauthorized
	}

	now := s.now()
	access, err := s.tokens.Issue(account.ID, auth.KindAccess, now)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.tokens.Issue(account.ID, auth.KindRefresh, now)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	s.metrics.IncLogin(metrics.ResultSuccess)

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.tokens.TTL(auth.KindAccess),
	}, nil
}

// verifyDummy spends the same hashing work as a real password check.
func (s *AccountService) verifyDummy(password string) {
	if s.dummyDigest != "" {
		_, _ = s.hasher.Verify(s.dummyDigest, password)
	}
}

// RefreshToken exchanges a refresh token for a new access token. The
// refresh token stays valid until it expires.
func (s *AccountService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	access, err := s.tokens.Refresh(refreshToken, s.now())
	if err != nil {
		s.metrics.IncTokenRefresh(metrics.ResultFailure)
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	s.metrics.IncTokenRefresh(metrics.ResultSuccess)

	return &TokenPair{
		AccessToken: access,
		ExpiresIn:   s.tokens.TTL(auth.KindAccess),
	}, nil
}

// GetAccount returns the actor's own account.
func (s *AccountService) GetAccount(ctx context.Context, actorID, id int64) (*model.Account, error) {
	var account *model.Account
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		account, err = loadActiveAccount(ctx, tx, actorID, id)
		return err
	})
	if err != nil {
		return nil, accountError("failed to get account", err)
	}
	return account, nil
}

// UpdateProfile changes the display name and/or contact address.
func (s *AccountService) UpdateProfile(ctx context.Context, actorID, id int64, input UpdateProfileInput) (*model.Account, error) {
	if err := input.Validate(); err != nil {
		return nil, malformed(err)
	}

	var account *model.Account
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		account, err = loadActiveAccount(ctx, tx, actorID, id)
		if err != nil {
			return err
		}

		if input.FullName != nil {
			account.FullName = *input.FullName
		}
		if input.Email != nil {
			account.Email = *input.Email
		}
		return tx.UpdateAccount(ctx, account)
	})
	if err != nil {
		if isAccountClash(err) {
			return nil, ErrConflict
		}
		return nil, accountError("failed to update profile", err)
	}

	return account, nil
}

// Deactivate marks the account inactive. A second call returns ErrNotFound.
func (s *AccountService) Deactivate(ctx context.Context, actorID, id int64) error {
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		account, err := loadActiveAccount(ctx, tx, actorID, id)
		if err != nil {
			return err
		}
		account.Active = false
		return tx.UpdateAccount(ctx, account)
	})
	if err != nil {
		return accountError("failed to deactivate account", err)
	}

	s.metrics.IncAccountDeactivated()

	return nil
}

// ChangePassword replaces the credential. The new password must not verify
// against the current digest.
func (s *AccountService) ChangePassword(ctx context.Context, actorID, id int64, newPassword string) error {
	err := validation.Validate(newPassword, validation.Required, validation.Length(1, maxPasswordLength))
	if err != nil {
		return malformed(fmt.Errorf("password: %w", err))
	}

	err = s.store.WithTx(ctx, func(tx repository.Tx) error {
		account, err := loadActiveAccount(ctx, tx, actorID, id)
		if err != nil {
			return err
		}

		same, err := s.hasher.Verify(account.PasswordHash, newPassword)
		if err != nil {
			return fmt.Errorf("stored credential for account %d is unreadable: %w", account.ID, err)
		}
		if same {
			return ErrPolicyViolation
		}

		digest, err := s.hasher.Hash(newPassword)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		account.PasswordHash = digest
		return tx.UpdateAccount(ctx, account)
	})
	if err != nil {
		if errors.Is(err, ErrPolicyViolation) {
			return ErrPolicyViolation
		}
		return accountError("failed to change password", err)
	}

	return nil
}

// loadActiveAccount returns account id when the actor is that account and
// it is still active. Everything else is ErrNotFound.
func loadActiveAccount(ctx context.Context, tx repository.Tx, actorID, id int64) (*model.Account, error) {
	if actorID != id {
		return nil, ErrNotFound
	}

	account, err := tx.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !account.Active {
		return nil, ErrNotFound
	}
	return account, nil
}

func isAccountClash(err error) bool {
	return errors.Is(err, repository.ErrHandleExists) || errors.Is(err, repository.ErrEmailExists)
}

func accountError(msg string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, repository.ErrAccountNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
