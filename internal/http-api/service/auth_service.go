package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reviewhub/internal/config"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/mailer"
	"reviewhub/internal/policy"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrReservedUsername = errors.New("username is reserved")
	ErrUsernameTaken    = errors.New("username already in use")
	ErrEmailTaken       = errors.New("email already in use")
	ErrInvalidCode      = errors.New("invalid or expired confirmation code")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
)

// Claims is the payload of an access token.
type Claims struct {
	UserID    string      `json:"user_id"`
	Username  string      `json:"username"`
	Role      policy.Role `json:"role"`
	Superuser bool        `json:"superuser"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// Signup creates the user and issues a confirmation code delivered by
	// email. The HTTP response never waits for delivery.
	Signup(ctx context.Context, username, email string) (*models.User, error)
	// IssueToken exchanges username + confirmation code for an access and a
	// refresh token. An unknown username surfaces as gorm.ErrRecordNotFound.
	IssueToken(ctx context.Context, username, code string) (accessToken, refreshToken string, err error)
	RefreshAccessToken(refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo         repository.UserRepository
	confirmationRepo repository.ConfirmationRepository
	refreshTokenRepo repository.RefreshTokenRepository
	mail             mailer.Mailer
	logger           *slog.Logger
	jwtSecret        string
	selfAlias        string
	sender           string
	confirmationTTL  time.Duration
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	confirmationRepo repository.ConfirmationRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	mail mailer.Mailer,
	logger *slog.Logger,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		confirmationRepo: confirmationRepo,
		refreshTokenRepo: refreshTokenRepo,
		mail:             mail,
		logger:           logger,
		jwtSecret:        cfg.JWTSecret,
		selfAlias:        cfg.SelfAlias,
		sender:           cfg.ConfirmationSender,
		confirmationTTL:  cfg.ConfirmationTTL,
		accessTokenTTL:   cfg.AccessTokenTTL,
		refreshTokenTTL:  cfg.RefreshTokenTTL,
	}
}

// Signup registers a new user and mails them a single-use confirmation code.
func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	if username == s.selfAlias {
		return nil, ErrReservedUsername
	}

	// Check if user exists
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	}

	// Check if email exists
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Role:     policy.RoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	code := uuid.New().String()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	rec := repository.ConfirmationRecord{
		CodeHash:    string(hash),
		Fingerprint: accountFingerprint(user),
	}
	if err := s.confirmationRepo.Store(ctx, user.Username, rec, s.confirmationTTL); err != nil {
		return nil, err
	}

	// Fire and forget: delivery failures are logged, never returned
	go func(email, code string) {
		if err := s.mail.Send(
			"Your confirmation code for reviewhub",
			fmt.Sprintf("Confirmation code: %s", code),
			s.sender,
			[]string{email},
		); err != nil {
			s.logger.Warn("confirmation email not delivered", "email", email, "err", err)
		}
	}(user.Email, code)

	return user, nil
}

// IssueToken validates the confirmation code and, on success, consumes it and
// returns a signed access token plus a stored refresh token. Lookup failure
// on the username is returned as-is so the handler can 404, matching the
// documented (and flagged) enumeration behavior.
func (s *authService) IssueToken(ctx context.Context, username, code string) (string, string, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return "", "", err
	}

	rec, err := s.confirmationRepo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return "", "", ErrInvalidCode
		}
		return "", "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.CodeHash), []byte(code)) != nil {
		return "", "", ErrInvalidCode
	}

	// Any account mutation since issue time changes the fingerprint and
	// voids the code
	if rec.Fingerprint != accountFingerprint(user) {
		return "", "", ErrInvalidCode
	}

	// Issued -> Consumed, a replay of the same code must fail
	if err := s.confirmationRepo.Consume(ctx, username); err != nil {
		return "", "", err
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		Superuser: user.Superuser,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) generateRefreshToken(user *models.User) (string, error) {
	refreshToken := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(s.refreshTokenTTL),
	}

	if err := s.refreshTokenRepo.Create(refreshToken); err != nil {
		return "", err
	}

	return refreshToken.Token, nil
}

func (s *authService) RefreshAccessToken(refreshTokenString string) (string, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(refreshTokenString)
	if err != nil {
		return "", ErrInvalidToken
	}

	if refreshToken.Revoked {
		return "", ErrInvalidToken
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		s.refreshTokenRepo.Delete(refreshToken.ID)
		return "", ErrExpiredToken
	}

	user, err := s.userRepo.FindByID(refreshToken.UserID)
	if err != nil {
		return "", err
	}

	return s.generateAccessToken(user)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// accountFingerprint binds a confirmation code to the account state it was
// issued against, the same construction as a password-reset token. UpdatedAt
// moves on every write to the record, so any mutation voids outstanding
// codes. The timestamp is truncated to microseconds, the resolution postgres
// keeps, so the fingerprint survives a store round-trip.
func accountFingerprint(user *models.User) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s|%s|%t|%d",
		user.ID, user.Username, user.Email, user.Role, user.Superuser,
		user.UpdatedAt.Truncate(time.Microsecond).UnixMicro()))
	return hex.EncodeToString(sum[:])
}
