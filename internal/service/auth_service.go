package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pinot/internal/cache"
	"pinot/internal/config"
	"pinot/internal/model"
	"pinot/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAdminDisabled      = errors.New("admin panel is not configured")
)

const (
	minPasswordLen   = 8
	hostTokenTTL     = 7 * 24 * time.Hour
	participantTTL   = 24 * time.Hour
	signingAlgorithm = "HS256"
)

// AuthService handles host, participant and admin authentication
type AuthService struct {
	hostRepo  repository.HostRepo
	sessions  cache.SessionCache
	jwtSecret []byte

	adminUser         string
	adminPasswordHash []byte
	adminSessionTTL   time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(hostRepo repository.HostRepo, sessions cache.SessionCache, cfg *config.Config) *AuthService {
	return &AuthService{
		hostRepo:          hostRepo,
		sessions:          sessions,
		jwtSecret:         []byte(cfg.JWTSecret),
		adminUser:         cfg.AdminUser,
		adminPasswordHash: []byte(cfg.AdminPasswordHash),
		adminSessionTTL:   cfg.AdminSessionTTL,
	}
}

// HashPassword returns a bcrypt hash suitable for hosts or ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Register creates a host account and logs it in
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	existing, err := s.hostRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up host: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	host := &model.Host{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.hostRepo.Create(ctx, host); err != nil {
		return nil, fmt.Errorf("failed to create host: %w", err)
	}

	return s.issueHostToken(host.ID)
}

// Login validates credentials and returns a host token
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	host, err := s.hostRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up host: %w", err)
	}
	if host == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(host.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueHostToken(host.ID)
}

func (s *AuthService) issueHostToken(hostID string) (*model.LoginResponse, error) {
	now := time.Now()
	claims := &model.HostClaims{
		HostID: hostID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(hostTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:  tokenString,
		HostID: hostID,
	}, nil
}

// ValidateHostToken validates a host JWT and returns claims
func (s *AuthService) ValidateHostToken(tokenString string) (*model.HostClaims, error) {
	claims := &model.HostClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.HostID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateParticipantToken creates an event-scoped token for a participant
func (s *AuthService) GenerateParticipantToken(eventID, participantID string) (string, error) {
	now := time.Now()
	claims := &model.ParticipantClaims{
		EventID:       eventID,
		ParticipantID: participantID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(participantTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateParticipantToken validates a participant JWT and returns claims
func (s *AuthService) ValidateParticipantToken(tokenString string) (*model.ParticipantClaims, error) {
	claims := &model.ParticipantClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.ParticipantID == "" || claims.EventID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{signingAlgorithm}))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// AdminLogin checks the admin password against the configured bcrypt hash
// and opens a session
func (s *AuthService) AdminLogin(ctx context.Context, user, password string) (*model.AdminSession, error) {
	if len(s.adminPasswordHash) == 0 {
		return nil, ErrAdminDisabled
	}
	if user != s.adminUser || bcrypt.CompareHashAndPassword(s.adminPasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	session := &model.AdminSession{
		ID:        uuid.NewString(),
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(s.adminSessionTTL),
	}
	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return session, nil
}

// ValidateAdminSession returns the live session for an id
func (s *AuthService) ValidateAdminSession(ctx context.Context, id string) (*model.AdminSession, error) {
	if id == "" {
		return nil, ErrInvalidToken
	}
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil || time.Now().After(session.ExpiresAt) {
		return nil, ErrInvalidToken
	}
	return session, nil
}

// AdminLogout ends an admin session
func (s *AuthService) AdminLogout(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}
