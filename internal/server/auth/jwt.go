// Package auth mints and verifies the short-lived approval tokens that gate
// the sign-off workflow. Tokens are stateless HS256 JWTs; the verifier
// checks signature, expiry and scope only.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/meridianpress/newsdesk/internal/common"
)

// Token scopes understood by the service.
const (
	ScopeAuthorApproval = "author_approval"
	ScopeUploadRaw      = "upload-raw"
)

// Claims is the approval token claim set: registered claims plus the scope
// and the author/item pair the token is bound to. For upload-raw tokens
// ItemID carries the asset filename.
type Claims struct {
	jwt.RegisteredClaims
	Scope    string `json:"scope"`
	AuthorID string `json:"author_id"`
	ItemID   string `json:"item_id"`
}

// Issuer mints approval tokens with a fixed issuer name and signing secret.
type Issuer struct {
	issuer     string
	secretKey  []byte
	defaultTTL time.Duration
}

func NewIssuer(issuer string, secretKey []byte, defaultTTL time.Duration) *Issuer {
	return &Issuer{issuer: issuer, secretKey: secretKey, defaultTTL: defaultTTL}
}

// Mint returns a signed token authorizing authorID to act on itemID within
// the given scope. A zero ttl falls back to the issuer default.
func (i *Issuer) Mint(itemID string, authorID uuid.UUID, scope string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = i.defaultTTL
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope:    scope,
		AuthorID: authorID.String(),
		ItemID:   itemID,
	})

	tokenString, err := token.SignedString(i.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify parses tokenString and checks signature, expiry and scope.
// It returns common.ErrTokenExpired for stale tokens, common.ErrTokenScope
// when the scope does not match, and common.ErrInvalidToken for anything
// else that fails validation.
func (i *Issuer) Verify(tokenString string, wantScope string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Scope != wantScope {
		return nil, common.ErrTokenScope
	}

	return claims, nil
}

// AuthorUUID parses the author_id claim back into a typed identifier.
func (c *Claims) AuthorUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.AuthorID)
	if err != nil {
		return uuid.Nil, common.ErrInvalidToken
	}
	return id, nil
}
