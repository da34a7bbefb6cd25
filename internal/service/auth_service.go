package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AdminClaims authorize questionnaire administration.
type AdminClaims struct {
	AdminID string `json:"adminId"`
	jwt.RegisteredClaims
}

// IntakeClaims scope a client to one questionnaire. The token is what an
// intake link carries; it is the only credential a client ever needs.
type IntakeClaims struct {
	ClientID        string `json:"clientId"`
	QuestionnaireID string `json:"questionnaireId"`
	jwt.RegisteredClaims
}

// AuthService issues and validates admin and client intake tokens.
type AuthService struct {
	adminUsername string
	adminPassword string
	jwtSecret     []byte
}

// NewAuthService reads credentials and secret from the environment.
func NewAuthService() *AuthService {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "password123"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super-secret-key-change-in-production"
	}
	return &AuthService{
		adminUsername: username,
		adminPassword: password,
		jwtSecret:     []byte(secret),
	}
}

// Login validates admin credentials and returns a signed admin token.
func (s *AuthService) Login(username, password string) (string, error) {
	if username != s.adminUsername || password != s.adminPassword {
		return "", ErrInvalidCredentials
	}

	claims := &AdminClaims{
		AdminID: "adm_" + uuid.New().String()[:8],
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// GenerateIntakeToken issues the long-lived token embedded in a client's
// intake link. Intakes routinely span weeks, so 90 days.
func (s *AuthService) GenerateIntakeToken(clientID, questionnaireID string) (string, error) {
	claims := &IntakeClaims{
		ClientID:        clientID,
		QuestionnaireID: questionnaireID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(90 * 24 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ValidateAdminToken parses and verifies an admin token.
func (s *AuthService) ValidateAdminToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.AdminID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateIntakeToken parses and verifies a client intake token.
func (s *AuthService) ValidateIntakeToken(tokenString string) (*IntakeClaims, error) {
	claims := &IntakeClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.ClientID == "" || claims.QuestionnaireID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
