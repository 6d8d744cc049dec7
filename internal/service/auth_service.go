package service

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"friendmarket/internal/config"
	"friendmarket/internal/featureflags"
	"friendmarket/internal/mail"
	"friendmarket/internal/middleware"
	"friendmarket/internal/models"
	"friendmarket/internal/repository"
	"friendmarket/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetPasswordLength   = 10
	resetPasswordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// AuthService registers users and issues, refreshes and revokes tokens.
type AuthService struct {
	userRepo   repository.UserRepository
	cfg        *config.Config
	rdb        *redis.Client
	mailer     *mail.Background
	flags      *featureflags.Manager
	bcryptCost int
	now        func() time.Time
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
	Name     string `json:"name" validate:"max=181"`
}

// AuthResult is returned by every flow that issues a token pair.
type AuthResult struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

func NewAuthService(
	userRepo repository.UserRepository,
	cfg *config.Config,
	rdb *redis.Client,
	mailer *mail.Background,
	flags *featureflags.Manager,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		cfg:        cfg,
		rdb:        rdb,
		mailer:     mailer,
		flags:      flags,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	email, err := validation.Email(in.Email)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	first, last := models.SplitName(in.Name)
	user := &models.User{
		Email:        email,
		FirstName:    first,
		LastName:     last,
		Gender:       models.GenderUnknown,
		ProfilePhoto: models.DefaultProfilePhoto,
		EnableNotif:  true,
		IsActive:     true,
		Password:     string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.flags.Enabled(featureflags.WelcomeEmail, user.ID) {
		s.mailer.Send(ctx, mail.WelcomeMessage(user))
	}
	middleware.Logger.InfoContext(ctx, "user registered", slog.Uint64("user_id", uint64(user.ID)))
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	invalid := models.NewUnauthorizedError("Invalid credentials")
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, invalid
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, invalid
	}
	if !user.IsActive {
		return nil, models.NewUnauthorizedError("Account is disabled")
	}

	now := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		middleware.Logger.WarnContext(ctx, "last login update failed", slog.String("error", err.Error()))
	} else {
		user.LastLogin = &now
	}
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new pair and revokes the old one.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	invalid := models.NewUnauthorizedError("Invalid refresh token")
	claims, err := middleware.ParseToken(s.cfg.JWTSecret, strings.TrimSpace(refreshToken))
	if err != nil || claims.Type != middleware.TokenTypeRefresh {
		return nil, invalid
	}
	revoked, err := middleware.IsRevoked(ctx, s.rdb, claims.ID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token blacklist lookup failed", slog.String("error", err.Error()))
	}
	if revoked {
		return nil, models.NewUnauthorizedError("Refresh token has been revoked")
	}

	user, err := s.userRepo.GetAccount(ctx, claims.UserID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewUnauthorizedError("Account is disabled")
	}

	if err := middleware.RevokeToken(ctx, s.rdb, claims); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.issue(user)
}

// Logout revokes the access token and, when given, the refresh token.
func (s *AuthService) Logout(ctx context.Context, access *middleware.TokenClaims, refreshToken string) error {
	if err := middleware.RevokeToken(ctx, s.rdb, access); err != nil {
		return models.NewInternalError(err)
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := middleware.ParseToken(s.cfg.JWTSecret, refreshToken)
	if err != nil || claims.Type != middleware.TokenTypeRefresh || claims.UserID != access.UserID {
		return nil
	}
	if err := middleware.RevokeToken(ctx, s.rdb, claims); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ResetPassword replaces the password of the account behind email with a
// random one and mails it to the owner.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	normalized, err := validation.Email(email)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(ctx, normalized)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return models.NewValidationError("No user with this email")
		}
		return err
	}

	password, err := randomPassword(resetPasswordLength)
	if err != nil {
		return models.NewInternalError(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.userRepo.SetPassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	s.mailer.Send(ctx, mail.PasswordResetMessage(user, password))
	middleware.Logger.InfoContext(ctx, "password reset", slog.Uint64("user_id", uint64(user.ID)))
	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	access, _, err := middleware.IssueToken(s.cfg.JWTSecret, user.ID, middleware.TokenTypeAccess,
		time.Duration(s.cfg.JWTTTLHours)*time.Hour)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	refresh, _, err := middleware.IssueToken(s.cfg.JWTSecret, user.ID, middleware.TokenTypeRefresh,
		time.Duration(s.cfg.RefreshTTLHours)*time.Hour)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: access, RefreshToken: refresh, User: user}, nil
}

func randomPassword(n int) (string, error) {
	limit := big.NewInt(int64(len(resetPasswordAlphabet)))
	var b strings.Builder
	b.Grow(n)
	for range n {
		i, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(resetPasswordAlphabet[i.Int64()])
	}
	return b.String(), nil
}
