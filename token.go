package inkpress

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// confirmAudience namespaces confirmation tokens so they cannot be
// confused with tokens minted for any other purpose.
const confirmAudience = "email-confirmation"

// TokenService issues and verifies signed, time-windowed email
// confirmation tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService signing with the given secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

type confirmClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue produces a signed token embedding the email and an issuance
// timestamp.
func (t *TokenService) Issue(email string) (string, error) {
	claims := confirmClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience: jwt.ClaimStrings{confirmAudience},
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks the token's signature, audience, and age, returning the
// embedded email. Malformed input never panics; every failure is
// ErrInvalidToken.
func (t *TokenService) Verify(token string, maxAge time.Duration) (string, error) {
	claims := &confirmClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(confirmAudience),
		jwt.WithIssuedAt(),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Email == "" || claims.IssuedAt == nil {
		return "", ErrInvalidToken
	}
	if time.Since(claims.IssuedAt.Time) > maxAge {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}
