package auth

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the statements embedded in an access token. The registered
// Subject carries the user's email, ID the jti that links the token to a
// server-side session row, and UID the owning user's id.
type Claims struct {
	jwt.RegisteredClaims
	UID string `json:"uid"`
}

// Complete reports whether all identity fields a caller needs for an
// authorization decision are present. Decode returns zero-value Claims on
// any failure, so an incomplete result is equivalent to an invalid token.
func (c Claims) Complete() bool {
	return c.Subject != "" && c.ID != "" && c.UID != ""
}

// Codec signs and verifies access tokens with a symmetric key.
type Codec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
}

// NewCodec builds a Codec for the given HMAC algorithm name (HS256, HS384
// or HS512). Non-HMAC algorithms are rejected.
func NewCodec(secret []byte, algorithm string) (*Codec, error) {
	m, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok || m == nil {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &Codec{secret: secret, method: m}, nil
}

// Issue signs a token for subject (email) and userID, valid for ttl, and
// returns the compact token together with its fresh jti.
func (c *Codec) Issue(subject, userID string, ttl time.Duration) (string, string, error) {
	now := time.Now()
	jti := newJTI()

	token := jwt.NewWithClaims(c.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		UID: userID,
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// Decode verifies the token and returns its claims. allowExpired skips the
// expiry check; logout uses it so an expired token can still identify the
// session it should revoke. On any failure (bad signature, malformed
// structure, wrong algorithm, expired) the zero Claims value is returned;
// callers must key decisions off Complete(), never off a raised error.
func (c *Codec) Decode(tokenString string, allowExpired bool) Claims {
	claims := &Claims{}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{c.method.Alg()})}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return Claims{}
	}

	return *claims
}

func newJTI() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
