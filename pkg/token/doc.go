// Package token issues and verifies RS256-signed JWTs.
//
// A Service is bound to one issuer and one RSA key pair. Access and
// refresh tokens share the signing key but carry a "type" claim, and
// Verify can require a specific type so the two are never interchangeable:
//
//	svc, err := token.New("gate", privatePEM)
//	if err != nil {
//		return err
//	}
//	access, err := svc.Generate(userID, map[string]any{"tenant_id": tid}, 15*time.Minute, token.TypeAccess)
//
//	claims, err := svc.Verify(raw, token.WithTokenType(token.TypeAccess))
//	switch {
//	case errors.Is(err, token.ErrExpired):
//		// prompt re-auth
//	case err != nil:
//		// reject
//	}
//
// Verification pins the algorithm to RS256. Tokens whose header declares
// any other algorithm, including "none", fail before signature checking.
package token
