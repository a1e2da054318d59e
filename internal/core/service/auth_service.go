package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
	"github.com/stockdeck/marketplace-system/internal/core/ports"
)

const resetTokenType = "reset"

// AuthService implements password registration, login, and reset flows.
type AuthService struct {
	users     ports.UserRepository
	roles     ports.RoleRepository
	notifier  ports.Notifier
	jwtSecret string
	tokenTTL  time.Duration
	resetTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	notifier ports.Notifier,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		roles:     roles,
		notifier:  notifier,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		resetTTL:  24 * time.Hour,
		log:       log,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.roles.Grant(ctx, user.ID, domain.RoleFree); err != nil {
		return nil, fmt.Errorf("register: grant role: %w", err)
	}

	s.notifier.Enqueue(ports.Mail{
		To:      user.Email,
		Subject: "Welcome to the marketplace",
		HTML:    fmt.Sprintf("<p>Hi %s, your account is ready.</p>", displayName),
	})

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !user.IsActive || user.PasswordHash == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	roles, err := s.roles.ListByUser(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}

	token, err := s.generateToken(user, roles)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*ports.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return &ports.UserProfile{
		ID:          user.ID,
		ExternalID:  user.ExternalID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Roles:       names,
	}, nil
}

// RequestPasswordReset emails a reset link. The response is identical
// whether or not the email is registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, resetBaseURL string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := s.generateResetToken(user.ID)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", resetBaseURL, token)
	s.notifier.Enqueue(ports.Mail{
		To:      user.Email,
		Subject: "Password reset",
		HTML:    fmt.Sprintf("<p>Reset your password: <a href=%q>%s</a></p>", link, link),
	})
	return nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	userID, err := s.verifyResetToken(resetToken)
	if err != nil {
		return domain.ErrInvalidResetToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, user)
}

func (s *AuthService) generateToken(user *domain.User, roles []domain.Role) (string, error) {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"roles": names,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) generateResetToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"typ": resetTokenType,
		"exp": time.Now().Add(s.resetTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) verifyResetToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return "", domain.ErrInvalidResetToken
	}
	if typ, _ := claims["typ"].(string); typ != resetTokenType {
		return "", domain.ErrInvalidResetToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrInvalidResetToken
	}
	return sub, nil
}
