package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded payload of a verified token. Reserved claims are
// lifted into typed fields; everything else lands in Custom.
type Claims struct {
	Subject   string
	TokenType Type
	Issuer    string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Custom    map[string]any
}

// Claim returns a custom claim by name.
func (c *Claims) Claim(name string) (any, bool) {
	v, ok := c.Custom[name]
	return v, ok
}

// StringClaim returns a custom claim coerced to string, or "" when absent
// or not a string.
func (c *Claims) StringClaim(name string) string {
	s, _ := c.Custom[name].(string)
	return s
}

func claimsFromMap(mc jwt.MapClaims) *Claims {
	c := &Claims{Custom: make(map[string]any)}
	c.Subject, _ = mc["sub"].(string)
	c.Issuer, _ = mc["iss"].(string)
	c.ID, _ = mc["jti"].(string)
	if typ, ok := mc["type"].(string); ok {
		c.TokenType = Type(typ)
	}
	if iat, ok := mc["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := mc["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(exp), 0)
	}
	for k, v := range mc {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		c.Custom[k] = v
	}
	return c
}
