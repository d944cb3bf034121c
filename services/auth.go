package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/slidewise/slidewise-server/models"
	"github.com/slidewise/slidewise-server/store"
	"github.com/slidewise/slidewise-server/utils"
)

// TokenIssuer signs and verifies bearer tokens bound to a user id.
type TokenIssuer interface {
	GenerateToken(userID uuid.UUID) (string, error)
	VerifyToken(token string) (uuid.UUID, error)
}

// Onboarder places a freshly created user into a workspace. It runs inside
// the registration transaction and must use the stores it is handed.
type Onboarder interface {
	Onboard(ctx context.Context, stores store.Stores, user *models.User, invitationToken string) error
}

type RegisterInput struct {
	FirstName       string `json:"firstName" validate:"required,min=2,max=255"`
	LastName        string `json:"lastName" validate:"required,min=2,max=255"`
	Username        string `json:"username" validate:"required,min=6,max=255"`
	Email           string `json:"email" validate:"required,max=255,email"`
	Password        string `json:"password" validate:"required,min=8,max=1024"`
	InvitationToken string `json:"invitationToken"`
}

type LoginInput struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
	Password   string `json:"password" validate:"required,max=1024"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, in LoginInput) (*models.User, string, error)
	// Authenticate resolves a bearer token to its user.
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type authService struct {
	stores    store.Stores
	tx        store.TxRunner
	tokens    TokenIssuer
	onboarder Onboarder
}

func NewAuthService(stores store.Stores, tx store.TxRunner, tokens TokenIssuer, onboarder Onboarder) AuthService {
	return &authService{
		stores:    stores,
		tx:        tx,
		tokens:    tokens,
		onboarder: onboarder,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, "", err
	}

	emailTaken, err := s.stores.Users().ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", Internal(fmt.Errorf("checking email: %w", err))
	}
	if emailTaken {
		return nil, "", ErrEmailTaken
	}
	usernameTaken, err := s.stores.Users().ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, "", Internal(fmt.Errorf("checking username: %w", err))
	}
	if usernameTaken {
		return nil, "", ErrUsernameTaken
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", Internal(fmt.Errorf("hashing password: %w", err))
	}

	user := &models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
	}
	err = s.tx.WithTx(ctx, func(stores store.Stores) error {
		if err := stores.Users().Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return errRegisterRace
			}
			return Internal(fmt.Errorf("creating user: %w", err))
		}
		return s.onboarder.Onboard(ctx, stores, user, strings.TrimSpace(in.InvitationToken))
	})
	if errors.Is(err, errRegisterRace) {
		return nil, "", s.takenField(ctx, in)
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", Internal(fmt.Errorf("issuing token: %w", err))
	}

	slog.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"username", user.Username,
		"invited", in.InvitationToken != "",
	)

	return user, token, nil
}

// errRegisterRace marks an insert that lost to a concurrent registration.
var errRegisterRace = errors.New("user inserted concurrently")

// takenField reports which unique field a concurrent registration claimed.
// It runs after the failed transaction so postgres is not asked to query an
// aborted one.
func (s *authService) takenField(ctx context.Context, in RegisterInput) error {
	emailTaken, err := s.stores.Users().ExistsByEmail(ctx, in.Email)
	if err != nil {
		return Internal(fmt.Errorf("checking email: %w", err))
	}
	if emailTaken {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	in.Identifier = strings.TrimSpace(in.Identifier)
	if err := validateInput(in); err != nil {
		return nil, "", err
	}

	user, err := s.stores.Users().GetByLogin(ctx, strings.ToLower(in.Identifier), in.Identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", Internal(fmt.Errorf("looking up user: %w", err))
	}
	if !utils.CheckPassword(user.Password, in.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", Internal(fmt.Errorf("issuing token: %w", err))
	}
	return user, token, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	userID, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.stores.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, Internal(fmt.Errorf("loading user: %w", err))
	}
	return user, nil
}
