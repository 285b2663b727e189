package token

import (
	"errors"
	"fmt"
	"time"

	domain "authsvc/backend/internal/domain/auth"
	usecase "authsvc/backend/internal/usecase/auth"

	"github.com/golang-jwt/jwt/v5"
)

// Codec issues and verifies HMAC-SHA256 signed JWTs. It is a pure function
// of the configured secret, the clock, and its input, and is safe for
// concurrent use.
type Codec struct {
	secret  []byte
	issuer  string
	nowFunc func() time.Time
}

// NewCodec constructs a codec with the provided signing secret.
func NewCodec(secret, issuer string) *Codec {
	return &Codec{
		secret:  []byte(secret),
		issuer:  issuer,
		nowFunc: time.Now,
	}
}

// Ensure Codec implements the TokenCodec interface.
var _ usecase.TokenCodec = (*Codec)(nil)

// registeredKeys are JWT claims owned by the codec, excluded from Extra.
var registeredKeys = map[string]struct{}{
	"sub": {}, "iss": {}, "iat": {}, "exp": {}, "nbf": {}, "aud": {}, "jti": {},
}

// Issue creates a signed token for the subject, embedding any extra claims.
func (c *Codec) Issue(subject string, extra map[string]any, ttl time.Duration) (string, error) {
	now := c.nowFunc().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"iss": c.issuer,
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(ttl)),
	}
	for key, value := range extra {
		if _, reserved := registeredKeys[key]; reserved {
			continue
		}
		claims[key] = value
	}

	signed := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return signed.SignedString(c.secret)
}

// Verify parses and validates a token, returning its claims. Failures map
// onto the domain token errors: expiry -> ErrTokenExpired, a bad signature
// -> ErrTokenSignature, anything unparseable -> ErrTokenMalformed.
func (c *Codec) Verify(tokenString string) (*usecase.Claims, error) {
	parsed, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return c.secret, nil
		},
		jwt.WithTimeFunc(c.nowFunc),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, translateError(err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrTokenMalformed
	}

	subject, err := mapClaims.GetSubject()
	if err != nil || subject == "" {
		return nil, domain.ErrTokenMalformed
	}

	claims := &usecase.Claims{
		Subject: subject,
		Extra:   make(map[string]any),
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	for key, value := range mapClaims {
		if _, reserved := registeredKeys[key]; reserved {
			continue
		}
		claims.Extra[key] = value
	}
	return claims, nil
}

func translateError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrTokenSignature
	default:
		return domain.ErrTokenMalformed
	}
}
