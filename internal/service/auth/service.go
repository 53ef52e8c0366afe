package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/auth"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/errors"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/security"
)

var ErrInvalidCredentials = &errors.AppError{Code: errors.ErrUnauthorized, Message: "invalid credentials"}

type Service struct {
	accounts repository.AccountRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	logger   zerolog.Logger
}

func NewService(accounts repository.AccountRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher, logger zerolog.Logger) *Service {
	return &Service{
		accounts: accounts,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// Register creates a staff account and logs it in. Admin accounts can only
// be created by an admin through RegisterStaff.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	account, err := s.create(ctx, req, model.RoleStaff)
	if err != nil {
		return nil, err
	}
	return s.issue(account)
}

// RegisterStaff creates a staff or admin account without issuing a token.
func (s *Service) RegisterStaff(ctx context.Context, req *model.RegisterRequest) (*model.AccountView, error) {
	role := model.RoleStaff
	if req != nil && req.Role == model.RoleAdmin {
		role = model.RoleAdmin
	}
	account, err := s.create(ctx, req, role)
	if err != nil {
		return nil, err
	}
	view := account.View()
	return &view, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	if req == nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, errors.Validation("missing fields", nil)
	}

	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.StoreUnavailable(fmt.Errorf("failed to get account: %w", err))
	}

	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		s.logger.Warn().Str("account_id", account.ID.String()).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	return s.issue(account)
}

// Account loads the account a token names, so a deleted account stops
// working even while its token is still valid.
func (s *Service) Account(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, err := s.accounts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errors.Unauthorized(fmt.Errorf("account %s not found", id))
		}
		return nil, errors.StoreUnavailable(fmt.Errorf("failed to get account: %w", err))
	}
	return account, nil
}

// EnsureAccount creates the account if its email is not registered yet and
// reports whether it did.
func (s *Service) EnsureAccount(ctx context.Context, req *model.RegisterRequest, role model.Role) (bool, error) {
	_, err := s.create(ctx, req, role)
	if errors.HasCode(err, errors.ErrConflict) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) create(ctx context.Context, req *model.RegisterRequest, role model.Role) (*model.Account, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, errors.Validation("missing fields", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if stderrors.Is(err, security.ErrPasswordTooShort) {
			return nil, errors.Validation(fmt.Sprintf("password must be at least %d characters", security.MinPasswordLen), err)
		}
		return nil, errors.Internal(err)
	}

	now := time.Now().UTC()
	account := &model.Account{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errors.Conflict("user already exists", err)
		}
		return nil, errors.StoreUnavailable(fmt.Errorf("failed to create account: %w", err))
	}

	s.logger.Info().Str("account_id", account.ID.String()).Str("role", string(role)).Msg("account created")
	return account, nil
}

func (s *Service) issue(account *model.Account) (*model.TokenResponse, error) {
	token, err := s.jwtSvc.GenerateAccessToken(account)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &model.TokenResponse{Token: token, User: account.View()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
