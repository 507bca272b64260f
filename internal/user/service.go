package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ms-cinema/internal/auth"
	"ms-cinema/internal/errs"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/user/db"
	"ms-cinema/internal/validation"
)

var ErrEmailTaken = errs.New(errs.KindConflict, "email is already registered")

type UserService struct {
	DB         *db.DB
	Tokens     *auth.SessionTokens
	BcryptCost int
	Logger     *logger.Logger
}

func NewUserService(store *db.DB, tokens *auth.SessionTokens, bcryptCost int, log *logger.Logger) *UserService {
	return &UserService{DB: store, Tokens: tokens, BcryptCost: bcryptCost, Logger: log}
}

// Register creates an account. An empty role registers a client.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Role == "" {
		req.Role = models.RoleClient
	}

	hash, err := auth.HashPassword(req.Password, s.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.TrimSpace(req.Email),
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         req.Role,
	}
	err = s.DB.RunInTx(ctx, func(ctx context.Context, tx *db.DB) error {
		taken, err := tx.EmailTaken(ctx, user.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, errs.Transaction(err)
	}

	s.Logger.Info("AUTH", fmt.Sprintf("Registered user %d with role %s", user.ID, user.Role))
	return user, nil
}

// Login checks the credentials and issues a session token. Unknown emails
// and wrong passwords fail the same way.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.DB.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if db.IsNotFound(err) {
		s.Logger.LogSecurity("LOGIN_FAILED", "unknown email")
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		s.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("bad password for user %d", user.ID))
		return nil, err
	}

	token, expiresAt, err := s.Tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.DB.GetUser(ctx, id)
	if db.IsNotFound(err) {
		return nil, errs.NotFound("user %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return user, nil
}

// DeleteUser removes a user. Their purchases are kept with no owner, in the
// same transaction.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	var detached int64
	err := s.DB.RunInTx(ctx, func(ctx context.Context, tx *db.DB) error {
		n, err := tx.DetachPurchases(ctx, id)
		if err != nil {
			return fmt.Errorf("detach purchases: %w", err)
		}
		deleted, err := tx.DeleteUser(ctx, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if !deleted {
			return errs.NotFound("user %d not found", id)
		}
		detached = n
		return nil
	})
	if err != nil {
		if errs.IsKind(err, errs.KindNotFound) {
			return err
		}
		return errs.Transaction(err)
	}

	s.Logger.Info("AUTH", fmt.Sprintf("Deleted user %d, detached %d purchases", id, detached))
	return nil
}
