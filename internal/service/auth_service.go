package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/models"
)

// Auth errors: unknown identity vs wrong secret, per the session gate
// contract.
var (
	ErrUnknownUser = errors.New("unknown user")
	ErrWrongSecret = errors.New("wrong password")
	ErrBadToken    = errors.New("invalid session token")
)

// CredentialSource resolves a username to a stored user and secret.
type CredentialSource interface {
	GetByUsername(ctx context.Context, username string) (*models.User, string, error)
	TouchLastLogin(ctx context.Context, username string) error
}

// AuthService resolves credentials to a session and signs/parses the
// session token the client keeps across reloads. Tokens carry no expiry
// on purpose: the session is a UX convenience, not a security boundary.
type AuthService struct {
	users      CredentialSource
	jwtSecret  []byte
	adminEmail string
}

// NewAuthService creates a new auth service.
func NewAuthService(users CredentialSource, jwtSecret string, adminEmail string) *AuthService {
	return &AuthService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		adminEmail: adminEmail,
	}
}

// Authenticate resolves an identifier (username or email) and secret to
// a session. Returns ErrUnknownUser or ErrWrongSecret on failure.
func (s *AuthService) Authenticate(ctx context.Context, identifier, secret string) (*models.Session, error) {
	identifier = strings.TrimSpace(identifier)
	username := identifier
	if strings.Contains(identifier, "@") {
		username = UsernameFromEmail(identifier)
	}

	user, stored, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	if stored != secret {
		return nil, ErrWrongSecret
	}

	role := user.Role
	if s.adminEmail != "" && identifier == s.adminEmail {
		role = models.RoleAdmin
	}
	displayName := user.DisplayName
	if displayName == "" {
		displayName = username
	}

	if err := s.users.TouchLastLogin(ctx, username); err != nil {
		log.Printf("Failed to record login for %s: %v", username, err)
	}

	return &models.Session{Identity: username, Role: role, DisplayName: displayName}, nil
}

// UsernameFromEmail derives a short username from an email address: the
// part before the first dot.
func UsernameFromEmail(email string) string {
	if email == "" {
		return "user"
	}
	return strings.SplitN(email, ".", 2)[0]
}

// IssueToken signs a session token for the client to persist.
func (s *AuthService) IssueToken(sess *models.Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":  sess.Identity,
		"role": string(sess.Role),
		"name": sess.DisplayName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseToken recovers the session from a token string.
func (s *AuthService) ParseToken(tokenString string) (*models.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrBadToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrBadToken
	}
	identity, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	name, _ := claims["name"].(string)
	if identity == "" || role == "" {
		return nil, ErrBadToken
	}
	return &models.Session{Identity: identity, Role: models.Role(role), DisplayName: name}, nil
}
