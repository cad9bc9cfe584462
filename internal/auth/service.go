package auth

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/mail"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/layoutnav/layoutnav/internal/typeid"
)

var (
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrEmailTaken        = errors.New("email already registered")
)

// Failure codes reported to the login form.
const (
	CodeInvalidEmail      = "auth/invalid-email"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeUnknown           = "unknown-error"
)

type Service struct {
	mu         sync.RWMutex
	byEmail    map[string]*account
	byID       map[string]*account
	jwtSecret  []byte
	bcryptCost int
	tokenTTL   time.Duration
}

type account struct {
	user User
	hash []byte
}

func NewService(jwtSecret string, bcryptCost int, tokenTTL time.Duration) *Service {
	return &Service{
		byEmail:    make(map[string]*account),
		byID:       make(map[string]*account),
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		tokenTTL:   tokenTTL,
	}
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Register adds an account. Accounts are seeded from configuration; there
// is no self sign-up.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return nil, ErrEmailTaken
	}
	acct := &account{
		user: User{ID: typeid.NewUserID(), Email: email},
		hash: hash,
	}
	s.byEmail[email] = acct
	s.byID[acct.user.ID] = acct

	u := acct.user
	return &u, nil
}

// Seed registers every email/password pair, in email order.
func (s *Service) Seed(ctx context.Context, users map[string]string) error {
	for _, email := range slices.Sorted(maps.Keys(users)) {
		if _, err := s.Register(ctx, email, users[email]); err != nil {
			return fmt.Errorf("seed user %s: %w", email, err)
		}
	}
	return nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	acct, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := s.issueToken(acct.user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: acct.user}, nil
}

func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	userID, ok := claims["sub"].(string)
	if !ok {
		return "", errors.New("invalid token subject")
	}

	return userID, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.byID[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	u := acct.user
	return &u, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// normalizeEmail accepts a bare address such as "a@b.example" and
// lowercases it. Display-name forms are rejected.
func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(email), nil
}

// Code maps a login error to its failure code.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidEmail):
		return CodeInvalidEmail
	case errors.Is(err, ErrInvalidCredential):
		return CodeInvalidCredential
	}
	return CodeUnknown
}

// FailureMessage returns the text shown to the user for a failure code.
func FailureMessage(code string) string {
	if code == CodeInvalidEmail {
		return "Please enter a valid email address."
	}
	return "Login failed. Please ask admin for login permission."
}
