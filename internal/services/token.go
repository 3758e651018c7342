package services

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	resetTokenIssuer     = "microblog"
	DefaultResetTokenTTL = 600 * time.Second
)

// ErrInvalidToken is the only failure VerifyResetToken reports. Malformed, forged, expired and
// wrongly signed tokens are deliberately indistinguishable.
var ErrInvalidToken = errors.New("invalid or expired token")

type resetClaims struct {
	ResetPassword uint `json:"reset_password"`
	jwt.RegisteredClaims
}

// TokenService issues stateless, signed password reset tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// IssueResetToken signs {subject, expiry}. A non-positive ttl uses the service default.
func (s *TokenService) IssueResetToken(userID uint, ttl time.Duration) (string, error) {
	if userID == 0 {
		return "", errors.New("invalid user ID")
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.now()
	claims := resetClaims{
		ResetPassword: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    resetTokenIssuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyResetToken returns the embedded user id while the signature is valid and the token has not
// expired. Every other outcome is ErrInvalidToken.
func (s *TokenService) VerifyResetToken(tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, ErrInvalidToken
	}

	claims := &resetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(resetTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.ResetPassword == 0 || claims.Subject != strconv.FormatUint(uint64(claims.ResetPassword), 10) {
		return 0, ErrInvalidToken
	}
	return claims.ResetPassword, nil
}
