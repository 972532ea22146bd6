// ABOUTME: JWT session token verification for portal-authenticated requests
// ABOUTME: Uses HS256 signing with configurable secret; extracts role and claims

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/naatox/capin-gateway/internal/payload"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// Principal is the authenticated identity carried by a portal session token.
type Principal struct {
	Sub        string
	Role       string
	SubArea    string
	Rut        string
	CustomerID string
	Email      string
}

// RoleContext maps the principal onto the request-building role context.
func (p *Principal) RoleContext() payload.RoleContext {
	return payload.RoleContext{
		Role:    p.Role,
		SubArea: p.SubArea,
		Claims: payload.Claims{
			Rut:        p.Rut,
			CustomerID: p.CustomerID,
			Email:      p.Email,
		},
	}
}

// TokenVerifier defines the interface for session token verification
type TokenVerifier interface {
	Verify(tokenString string) (*Principal, error)
}

// JWTVerifier implements TokenVerifier using HS256 signed JWTs
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a new JWT verifier with the given secret
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify validates the token and extracts the principal. "sub" and "role"
// are required; the remaining claims are optional and role-dependent.
func (v *JWTVerifier) Verify(tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return nil, fmt.Errorf("%w: role", ErrMissingClaim)
	}

	return &Principal{
		Sub:        sub,
		Role:       role,
		SubArea:    optionalClaim(claims, "subArea"),
		Rut:        optionalClaim(claims, "rut"),
		CustomerID: optionalClaim(claims, "idCliente"),
		Email:      optionalClaim(claims, "correo"),
	}, nil
}

func optionalClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

// Generate creates a new session token for the given principal with expiration
func (v *JWTVerifier) Generate(p *Principal, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  p.Sub,
		"role": p.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(expiresIn).Unix(),
	}
	if p.SubArea != "" {
		claims["subArea"] = p.SubArea
	}
	if p.Rut != "" {
		claims["rut"] = p.Rut
	}
	if p.CustomerID != "" {
		claims["idCliente"] = p.CustomerID
	}
	if p.Email != "" {
		claims["correo"] = p.Email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
