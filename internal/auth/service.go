package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
)

// Service issues and verifies caller tokens. A token asserts that its bearer
// acts as the address in its subject.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type Token struct {
	AccessToken string    `json:"access_token"`
	Caller      string    `json:"caller"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Issue signs a token for caller.
func (s *Service) Issue(caller address.Address) (Token, error) {
	if caller.IsZero() {
		return Token{}, errors.New("caller must not be the zero address")
	}
	now := s.now()
	exp := now.Add(s.ttl)
	signed, err := SignHS256(Claims{Subject: caller.String(), IssuedAt: now.Unix(), ExpiresAt: exp.Unix()}, s.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, Caller: caller.String(), ExpiresAt: exp.UTC()}, nil
}

// Verify checks the token and returns the caller it was issued to.
func (s *Service) Verify(token string) (address.Address, error) {
	claims, err := ParseAndVerifyHS256(token, s.secret)
	if err != nil {
		return address.Address{}, err
	}
	if claims.ExpiresAt != 0 && s.now().Unix() >= claims.ExpiresAt {
		return address.Address{}, ErrTokenExpired
	}
	caller, err := address.Parse(claims.Subject)
	if err != nil {
		return address.Address{}, fmt.Errorf("token subject: %w", err)
	}
	return caller, nil
}
