package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/apper-canvas/pipelineflow-firm-mega/internal/models"
)

// AuthService authenticates team members and issues session tokens.
type AuthService struct {
	team     TeamStore
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(team TeamStore, secret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{team: team, secret: secret, tokenTTL: tokenTTL}
}

type SessionClaims struct {
	MemberID int `json:"member_id"`
	jwt.RegisteredClaims
}

// Login verifies credentials and returns a signed token with the member.
func (s *AuthService) Login(email, password string) (string, *models.TeamMember, error) {
	member, err := s.team.GetByEmail(email)
	if err != nil {
		return "", nil, err
	}
	if member == nil {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := SessionClaims{
		MemberID: member.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return token, member, nil
}

// HashPassword is used by seeding and member provisioning.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(hash), err
}
