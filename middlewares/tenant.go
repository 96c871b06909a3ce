package middlewares

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/gate/internal"
	"github.com/dmitrymomot/gate/pkg/logger"
)

type tenantIDKey struct{}

// TenantConfig configures tenant resolution.
type TenantConfig struct {
	// ClaimName is the identity claim consulted first. Default "tenant_id".
	ClaimName string

	// HeaderName is the fallback header. Default "X-Tenant-ID".
	HeaderName string

	// ResolveSubdomain enables host-based resolution as the last fallback.
	// The first host label becomes the tenant ID ("acme.api.example.com"
	// resolves to "acme").
	ResolveSubdomain bool

	// Required rejects requests that resolve no tenant. The rejection is a
	// 404 rather than a 403 so probing requests cannot distinguish "no
	// such tenant" from "no such route".
	Required bool
}

// TenantOption configures TenantConfig.
type TenantOption func(*TenantConfig)

// WithTenantClaim sets the identity claim name.
func WithTenantClaim(name string) TenantOption {
	return func(cfg *TenantConfig) { cfg.ClaimName = name }
}

// WithTenantHeader sets the fallback header name.
func WithTenantHeader(name string) TenantOption {
	return func(cfg *TenantConfig) { cfg.HeaderName = name }
}

// WithTenantSubdomain enables subdomain resolution.
func WithTenantSubdomain() TenantOption {
	return func(cfg *TenantConfig) { cfg.ResolveSubdomain = true }
}

// WithTenantRequired makes an unresolved tenant a request failure.
func WithTenantRequired() TenantOption {
	return func(cfg *TenantConfig) { cfg.Required = true }
}

// Tenant resolves the active tenant for the request, trying the identity
// claim, then the header, then optionally the host subdomain. The resolved
// tenant rides the request scope and is torn down with it.
func Tenant(opts ...TenantOption) internal.Middleware {
	cfg := &TenantConfig{
		ClaimName:  "tenant_id",
		HeaderName: "X-Tenant-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			tenant := resolveTenant(c, cfg)
			if tenant == nil {
				if cfg.Required {
					return internal.ErrNotFound("route not found")
				}
				return next(c)
			}

			c.SetTenant(tenant)
			c.Set(tenantIDKey{}, tenant.ID)
			return next(c)
		}
	}
}

func resolveTenant(c internal.Context, cfg *TenantConfig) *internal.Tenant {
	if id := c.Identity(); id != nil {
		if v := id.StringClaim(cfg.ClaimName); v != "" {
			return &internal.Tenant{ID: v, Source: internal.TenantSourceClaim}
		}
	}
	if v := c.Header(cfg.HeaderName); v != "" {
		return &internal.Tenant{ID: v, Source: internal.TenantSourceHeader}
	}
	if cfg.ResolveSubdomain {
		host := c.Request().Host
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		if label, rest, ok := strings.Cut(host, "."); ok && label != "" && strings.Contains(rest, ".") {
			return &internal.Tenant{ID: label, Source: internal.TenantSourceSubdomain}
		}
	}
	return nil
}

// TenantIDExtractor adds "tenant_id" to log records. Pass it to
// logger.New.
func TenantIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(tenantIDKey{}).(string); ok && v != "" {
			return slog.String("tenant_id", v), true
		}
		return slog.Attr{}, false
	}
}

// UserIDExtractor adds "user_id" to log records for authenticated
// requests. Pass it to logger.New.
func UserIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(userIDKey{}).(string); ok && v != "" {
			return slog.String("user_id", v), true
		}
		return slog.Attr{}, false
	}
}
