package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	defaultIssuer = "campusqa"
	defaultLeeway = 30 * time.Second
	defaultTTL    = 24 * time.Hour
)

// Claims is the access-token payload: the registered claims plus the
// caller's roles.
type Claims struct {
	jwt.RegisteredClaims
	Senior bool `json:"senior,omitempty"`
	Staff  bool `json:"staff,omitempty"`
}

// Verifier checks HS256 access tokens and turns them into principals.
type Verifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

func NewVerifier(secret, issuer string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("token verifier requires a secret")
	}
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		issuer = defaultIssuer
	}
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
		leeway: defaultLeeway,
	}, nil
}

// Verify validates token and returns the principal it names.
func (v *Verifier) Verify(token string) (*Principal, error) {
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return nil, errors.New("token subject missing")
	}
	return &Principal{ID: subject, IsSenior: claims.Senior, IsStaff: claims.Staff}, nil
}

// Issue signs a token for p. It is used by the seed tool and tests; the
// production identity provider issues its own tokens with the same shape.
func (v *Verifier) Issue(p Principal, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Senior: p.IsSenior,
		Staff:  p.IsStaff,
	})
	return token.SignedString(v.secret)
}
