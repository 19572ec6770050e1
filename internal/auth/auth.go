package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// AdminSubject is the subject carried by every admin token
	AdminSubject = "admin"

	tokenIssuer = "opgl-matchboard"
)

var (
	// ErrInvalidCredentials is returned when the admin password does not match
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned for malformed, expired or foreign tokens
	ErrInvalidToken = errors.New("invalid token")
)

// Claims represents the JWT claims of an admin session
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// AdminToken is returned by a successful login
type AdminToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// AuthService issues and validates admin access tokens
type AuthService struct {
	jwtSecret    []byte
	passwordHash string
	tokenTTL     time.Duration
}

// NewAuthService creates a new authentication service. passwordHash is the
// bcrypt hash of the single admin password.
func NewAuthService(jwtSecret string, passwordHash string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		jwtSecret:    []byte(jwtSecret),
		passwordHash: passwordHash,
		tokenTTL:     tokenTTL,
	}
}

// Login checks the admin password and returns a signed access token
func (authService *AuthService) Login(password string) (*AdminToken, error) {
	if authService.passwordHash == "" || !VerifyPassword(password, authService.passwordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, _, err := authService.generateToken(time.Now())
	if err != nil {
		return nil, err
	}

	return &AdminToken{
		AccessToken: accessToken,
		ExpiresIn:   int64(authService.tokenTTL.Seconds()),
	}, nil
}

// generateToken signs a token for a fresh session
func (authService *AuthService) generateToken(now time.Time) (string, uuid.UUID, error) {
	sessionID := uuid.New()
	claims := Claims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   AdminSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(authService.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(authService.jwtSecret)
	if err != nil {
		return "", uuid.Nil, err
	}
	return signed, sessionID, nil
}

// ValidateAccessToken validates an admin token and returns its session ID
func (authService *AuthService) ValidateAccessToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return authService.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithSubject(AdminSubject))
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return sessionID, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword checks if the provided password matches the hash
func VerifyPassword(password string, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
