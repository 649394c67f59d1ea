package session

import (
	"errors"
	"fmt"

	"globetrail/config"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ErrInvalidIdentity means the token failed verification or names another user.
var ErrInvalidIdentity = errors.New("invalid identity token")

// IdentityClaims are the claims read from the identity provider's ID token.
type IdentityClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Verifier checks identity tokens issued by the external provider, either
// HS256 with a shared secret or RS256 with the provider's public key.
type Verifier struct {
	keyFunc jwt.Keyfunc
	opts    []jwt.ParserOption
}

func NewVerifier(cfg config.IdentityConfig, log *zap.Logger) (*Verifier, error) {
	v := &Verifier{}

	switch {
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse identity public key: %w", err)
		}
		v.keyFunc = func(*jwt.Token) (any, error) { return key, nil }
		v.opts = append(v.opts, jwt.WithValidMethods([]string{"RS256"}))
	case cfg.HMACSecret != "":
		secret := []byte(cfg.HMACSecret)
		v.keyFunc = func(*jwt.Token) (any, error) { return secret, nil }
		v.opts = append(v.opts, jwt.WithValidMethods([]string{"HS256"}))
	default:
		log.Warn("⚠️  No identity key configured, login tokens are NOT verified")
		return v, nil
	}

	if cfg.Audience != "" {
		v.opts = append(v.opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Issuer != "" {
		v.opts = append(v.opts, jwt.WithIssuer(cfg.Issuer))
	}
	v.opts = append(v.opts, jwt.WithExpirationRequired())
	return v, nil
}

// Enabled reports whether tokens are actually checked.
func (v *Verifier) Enabled() bool {
	return v.keyFunc != nil
}

// Verify checks tokenString and that its subject is uid. When verification is
// disabled it accepts anything.
func (v *Verifier) Verify(tokenString, uid string) (*IdentityClaims, error) {
	if !v.Enabled() {
		return &IdentityClaims{}, nil
	}
	if tokenString == "" {
		return nil, fmt.Errorf("%w: missing token", ErrInvalidIdentity)
	}

	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc, v.opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if claims.Subject != uid {
		return nil, fmt.Errorf("%w: subject does not match user", ErrInvalidIdentity)
	}
	return claims, nil
}
