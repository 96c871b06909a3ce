package internal

// Identity is the authenticated principal for the current request.
// It is created by the JWT auth middleware after successful verification
// and cleared unconditionally at dispatch teardown.
type Identity struct {
	// UserID is the token subject.
	UserID string

	// Claims carries custom (non-reserved) claims from the verified token.
	Claims map[string]any
}

// Claim returns a custom claim value, or nil if absent.
func (id *Identity) Claim(name string) any {
	if id == nil || id.Claims == nil {
		return nil
	}
	return id.Claims[name]
}

// StringClaim returns a custom claim as a string.
// Returns empty string if the claim is absent or not a string.
func (id *Identity) StringClaim(name string) string {
	s, _ := id.Claim(name).(string)
	return s
}

// Tenant resolution sources, recorded on the resolved Tenant so callers can
// audit where the value came from.
const (
	TenantSourceClaim     = "claim"
	TenantSourceHeader    = "header"
	TenantSourceSubdomain = "subdomain"
)

// Tenant identifies the active customer/organization boundary for the
// current request. Same per-request lifecycle as Identity.
type Tenant struct {
	// ID is the tenant identifier.
	ID string

	// Source records which resolution strategy produced the value.
	Source string
}
