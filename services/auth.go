package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

const (
	magicLinkTTL = 15 * time.Minute
	sessionTTL   = 7 * 24 * time.Hour
)

type AuthService struct {
	tokens     TokenStore
	users      *UserService
	jwtSecret  []byte
	smtpConfig SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Claims identify the user a session token was issued to.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewAuthService(jwtSecret string, smtpConfig SMTPConfig, tokens TokenStore, users *UserService) *AuthService {
	return &AuthService{
		tokens:     tokens,
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		smtpConfig: smtpConfig,
	}
}

// GenerateMagicLink creates a one-time token and email magic link
func (s *AuthService) GenerateMagicLink(ctx context.Context, email string, baseURL string) (string, error) {
	token, err := s.generateSecureToken(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.tokens.Put(ctx, token, email, magicLinkTTL); err != nil {
		return "", err
	}

	magicLink := fmt.Sprintf("%s/api/auth/magic-link?token=%s", baseURL, token)

	// Send the email (if SMTP is configured)
	if s.smtpConfig.Host != "" {
		if err := s.sendMagicLinkEmail(email, magicLink); err != nil {
			log.WithError(err).WithField("email", email).Warn("Failed to send magic link email")
		}
	}

	return magicLink, nil
}

// RedeemMagicLink consumes token and returns a session JWT for its user,
// registering the user on first login.
func (s *AuthService) RedeemMagicLink(ctx context.Context, token string) (string, error) {
	email, err := s.tokens.Take(ctx, token)
	if err != nil {
		return "", err
	}
	user, err := s.users.EnsureUser(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	return s.CreateJWT(user.ID, user.Email)
}

// CreateJWT generates a JWT token for a user
func (s *AuthService) CreateJWT(userID, email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// VerifyJWT verifies a JWT token and returns its claims
func (s *AuthService) VerifyJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("subject claim missing")
	}
	return claims, nil
}

func (s *AuthService) generateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (s *AuthService) sendMagicLinkEmail(to, magicLink string) error {
	if s.smtpConfig.Host == "" || s.smtpConfig.Port == "" ||
		s.smtpConfig.Username == "" || s.smtpConfig.Password == "" {
		return errors.New("SMTP not fully configured")
	}

	auth := smtp.PlainAuth("", s.smtpConfig.Username, s.smtpConfig.Password, s.smtpConfig.Host)

	from := s.smtpConfig.From
	if from == "" {
		from = s.smtpConfig.Username
	}

	subject := "Your Login Link for Kanban"
	body := fmt.Sprintf("Click the link below to log in to your boards:\n\n%s\n\nIf you didn't request this link, you can safely ignore this email.", magicLink)
	message := fmt.Sprintf("From: %s\nTo: %s\nSubject: %s\n\n%s", from, to, subject, body)

	addr := fmt.Sprintf("%s:%s", s.smtpConfig.Host, s.smtpConfig.Port)
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
