package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

const sessionTokenIssuer = "sma-timetable"

// SessionTokenService signs and verifies the session cookie. The token subject is the session id.
type SessionTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionTokenService constructs the token service.
func NewSessionTokenService(secret string, ttl time.Duration) *SessionTokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionTokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long issued tokens stay valid.
func (s *SessionTokenService) TTL() time.Duration {
	return s.ttl
}

// NewSession issues a token for a freshly generated session id.
func (s *SessionTokenService) NewSession() (sessionID, token string, err error) {
	sessionID = uuid.NewString()
	token, err = s.Issue(sessionID)
	if err != nil {
		return "", "", err
	}
	return sessionID, token, nil
}

// Issue signs a token for the given session id.
func (s *SessionTokenService) Issue(sessionID string) (string, error) {
	issuedAt := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionTokenIssuer,
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates the token and returns the session id it carries.
func (s *SessionTokenService) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(sessionTokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}
	if !parsed.Valid {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid session token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session id")
	}
	return claims.Subject, nil
}
