package commands

//go:generate mockgen -destination=../../../tests/mock/commands/auth.go -package=commandsmock . AuthCommands

import (
	"context"
	"log/slog"

	"github.com/desidobreva/CinemaReservations/internal/domain/auth"
	"github.com/desidobreva/CinemaReservations/internal/domain/user"
	reqdto "github.com/desidobreva/CinemaReservations/internal/handler/dto/request"
	"github.com/desidobreva/CinemaReservations/internal/infra"
	"github.com/desidobreva/CinemaReservations/internal/pkg/errs"
	"github.com/desidobreva/CinemaReservations/internal/pkg/password"
	"github.com/desidobreva/CinemaReservations/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials   = errs.New("invalid credentials")
	ErrUserInactive         = errs.New("user inactive")
	ErrUserAlreadyExists    = errs.New("user already exists")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
)

type LoginResult struct {
	UserID      uuid.UUID
	Role        user.Role
	AccessToken string
	ExpiresIn   int64
}

type RegisterResult struct {
	UserID uuid.UUID
	Email  string
	Role   user.Role
}

type AuthCommands interface {
	Register(ctx context.Context, req reqdto.RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error)
	// EnsureAdmin makes sure an ADMIN account exists for email. It promotes an
	// existing account instead of touching its password.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authCommandsImpl struct {
	uow    shared.UnitOfWork
	tokens TokenIssuer
}

func NewAuthCommands(uow shared.UnitOfWork, tokens TokenIssuer) AuthCommands {
	return &authCommandsImpl{
		uow:    uow,
		tokens: tokens,
	}
}

func (a *authCommandsImpl) Register(ctx context.Context, req reqdto.RegisterRequest) (*RegisterResult, error) {
	credentials, err := req.ToDomain()
	if err != nil {
		return nil, err
	}

	hash, err := password.HashPassword(credentials.Password().Value())
	if err != nil {
		return nil, errs.Wrap(err, "failed to hash password")
	}

	u := user.NewUser(credentials.Email(), hash, user.RoleUser)

	var id uuid.UUID
	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, findErr := tx.Reads().UserByEmail(ctx, credentials.Email())
		if findErr == nil {
			return ErrUserAlreadyExists
		}
		if !infra.IsKind(findErr, infra.KindNotFound) {
			return findErr
		}

		var createErr error
		id, createErr = tx.Users().Create(ctx, u)
		if createErr != nil {
			if infra.IsKind(createErr, infra.KindDuplicateKey) {
				return ErrUserAlreadyExists
			}
			return createErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		UserID: id,
		Email:  credentials.Email().Value(),
		Role:   user.RoleUser,
	}, nil
}

func (a *authCommandsImpl) Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error) {
	credentials, err := req.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	u, err := a.validateUser(ctx, credentials)
	if err != nil {
		return nil, err
	}

	accessToken, err := a.tokens.GenerateToken(u.ID(), u.Role())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().UpdateLastLogin(ctx, u.ID())
	})
	if err != nil {
		// login already succeeded
		slog.Warn("failed to update last login", "user_id", u.ID(), "error", err.Error())
	}

	return &LoginResult{
		UserID:      u.ID(),
		Role:        u.Role(),
		AccessToken: accessToken,
		ExpiresIn:   int64(a.tokens.TokenDuration().Seconds()),
	}, nil
}

func (a *authCommandsImpl) EnsureAdmin(ctx context.Context, email, pass string) error {
	if email == "" || pass == "" {
		return nil
	}

	credentials, err := auth.NewCredentials(email, pass)
	if err != nil {
		return errs.Wrap(err, "invalid admin credentials")
	}

	return a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		existing, err := tx.Reads().UserByEmail(ctx, credentials.Email())
		if err == nil {
			if existing.Role() == user.RoleAdmin {
				return nil
			}
			slog.Info("promoting bootstrap account to admin", "user_id", existing.ID())
			return tx.Users().UpdateRole(ctx, existing.ID(), user.RoleAdmin)
		}
		if !infra.IsKind(err, infra.KindNotFound) {
			return err
		}

		hash, err := password.HashPassword(credentials.Password().Value())
		if err != nil {
			return errs.Wrap(err, "failed to hash admin password")
		}

		id, err := tx.Users().Create(ctx, user.NewUser(credentials.Email(), hash, user.RoleAdmin))
		if err != nil {
			return err
		}
		slog.Info("created bootstrap admin", "user_id", id)
		return nil
	})
}

func (a *authCommandsImpl) validateUser(ctx context.Context, credentials auth.Credentials) (*user.User, error) {
	u, err := a.uow.CommandReads().UserByEmail(ctx, credentials.Email())
	if err != nil {
		// same error as a password mismatch so accounts cannot be enumerated
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !u.IsActive() {
		return nil, ErrUserInactive
	}

	if err := password.ComparePassword(u.PasswordHash(), credentials.Password().Value()); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}
