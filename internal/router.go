package internal

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Router is the interface handlers use to declare routes.
// Path patterns use ":name" segments for named parameters, e.g.
// "/users/:id/posts/:post_id". Matching is exact or parametrized only:
// the registry rejects, at registration time, any pattern that could match
// the same concrete path as an already registered pattern for the same
// method. Registration failures panic; routes are declared in code and a
// bad declaration is a programmer error.
type Router interface {
	// GET registers a handler for GET requests.
	GET(path string, h HandlerFunc, mw ...Middleware)

	// POST registers a handler for POST requests.
	POST(path string, h HandlerFunc, mw ...Middleware)

	// PUT registers a handler for PUT requests.
	PUT(path string, h HandlerFunc, mw ...Middleware)

	// PATCH registers a handler for PATCH requests.
	PATCH(path string, h HandlerFunc, mw ...Middleware)

	// DELETE registers a handler for DELETE requests.
	DELETE(path string, h HandlerFunc, mw ...Middleware)

	// HEAD registers a handler for HEAD requests.
	HEAD(path string, h HandlerFunc, mw ...Middleware)

	// OPTIONS registers a handler for OPTIONS requests.
	OPTIONS(path string, h HandlerFunc, mw ...Middleware)

	// Use appends middleware to the global chain. Global middleware runs
	// before any route-scoped middleware, and also on requests that match
	// no route.
	Use(mw ...Middleware)

	// LoadRoutes registers a method → path → handler table at once.
	// Routes loaded this way carry no route-scoped middleware.
	LoadRoutes(routes map[string]map[string]HandlerFunc)
}

// pattern is a parsed, normalized path pattern.
type pattern struct {
	raw      string
	segments []segment
}

// segment is one path element. A non-empty param means the segment is a
// named parameter.
type segment struct {
	literal string
	param   string
}

func (p pattern) paramCount() int {
	n := 0
	for _, s := range p.segments {
		if s.param != "" {
			n++
		}
	}
	return n
}

// chiPattern renders the pattern in chi's {name} syntax for the underlying
// mux.
func (p pattern) chiPattern() string {
	if len(p.segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteByte('/')
		if s.param != "" {
			b.WriteByte('{')
			b.WriteString(s.param)
			b.WriteByte('}')
		} else {
			b.WriteString(s.literal)
		}
	}
	return b.String()
}

// parsePattern normalizes and parses a ":name" path pattern.
// Trailing slashes are stripped so "/users/" and "/users" register the same
// route.
func parsePattern(path string) (pattern, error) {
	if path == "" || path[0] != '/' {
		return pattern{}, fmt.Errorf("%w: %q must start with /", ErrInvalidPattern, path)
	}

	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return pattern{raw: "/"}, nil
	}

	parts := strings.Split(trimmed, "/")
	segs := make([]segment, 0, len(parts))
	for _, part := range parts {
		switch {
		case part == "":
			return pattern{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPattern, path)
		case part == ":":
			return pattern{}, fmt.Errorf("%w: %q has an unnamed parameter", ErrInvalidPattern, path)
		case part[0] == ':':
			segs = append(segs, segment{param: part[1:]})
		default:
			segs = append(segs, segment{literal: part})
		}
	}

	return pattern{raw: "/" + strings.Join(parts, "/"), segments: segs}, nil
}

// overlaps reports whether two patterns can match the same concrete path.
// That is the case when they have the same segment count and every position
// is either a parameter on at least one side or an equal literal on both.
func (p pattern) overlaps(other pattern) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i, s := range p.segments {
		o := other.segments[i]
		if s.param != "" || o.param != "" {
			continue
		}
		if s.literal != o.literal {
			return false
		}
	}
	return true
}

// registeredRoute is one entry in the route registry.
type registeredRoute struct {
	method  string
	pattern pattern
}

// registry enforces registration invariants on top of the chi mux: no
// duplicate (method, pattern) pairs, and no two patterns for a method that
// could both match one concrete path.
type registry struct {
	routes []registeredRoute
}

func (reg *registry) add(method string, p pattern) error {
	for _, r := range reg.routes {
		if r.method != method {
			continue
		}
		if r.pattern.raw == p.raw {
			return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, method, p.raw)
		}
		if r.pattern.overlaps(p) {
			return fmt.Errorf("%w: %s %s collides with %s (parameter counts %d and %d)",
				ErrAmbiguousRoute, method, p.raw, r.pattern.raw,
				p.paramCount(), r.pattern.paramCount())
		}
	}
	reg.routes = append(reg.routes, registeredRoute{method: method, pattern: p})
	return nil
}

// routerAdapter implements Router on top of the app's chi mux and registry.
type routerAdapter struct {
	app *App
}

func (r *routerAdapter) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.register(http.MethodGet, path, h, mw)
}

func (r *routerAdapter) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.register(http.MethodPost, path, h, mw)
}

func (r *routerAdapter) PUT(path string, h HandlerFunc, mw ...Middleware) {
	r.register(http.MethodPut, path, h, mw)
}

func (r *routerAdapter) PATCH(path string, h HandlerFunc, mw ...Middleware) {
	r.register(http.MethodPatch, path, h, mw)
}

func (r *routerAdapter) DELETE(path string, h HandlerFunc, mw ...Middleware) {
	r.register(http.MethodDelete, path, h, mw)
}

func (r *routerAdapter) HEAD(path string, h HandlerFunc, mw ...Middleware) {
	r.register(http.MethodHead, path, h, mw)
}

func (r *routerAdapter) OPTIONS(path string, h HandlerFunc, mw ...Middleware) {
	r.register(http.MethodOptions, path, h, mw)
}

func (r *routerAdapter) Use(mw ...Middleware) {
	for _, m := range mw {
		r.app.mux.Use(r.app.adaptMiddleware(m))
	}
}

func (r *routerAdapter) LoadRoutes(routes map[string]map[string]HandlerFunc) {
	for method, paths := range routes {
		for path, h := range paths {
			r.register(strings.ToUpper(method), path, h, nil)
		}
	}
}

func (r *routerAdapter) register(method, path string, h HandlerFunc, mw []Middleware) {
	p, err := parsePattern(path)
	if err != nil {
		panic(err)
	}
	if err := r.app.registry.add(method, p); err != nil {
		panic(err)
	}
	r.app.mux.Method(method, p.chiPattern(), r.wrap(h, mw...))
}

// wrap composes route-scoped middleware around the terminal handler step
// and adapts the result to http.HandlerFunc.
func (r *routerAdapter) wrap(h HandlerFunc, mw ...Middleware) http.HandlerFunc {
	h = Chain(h, mw...)
	return func(w http.ResponseWriter, req *http.Request) {
		c := newContext(w, req, r.app)
		if err := h(c); err != nil {
			r.app.handleError(c, err)
		}
	}
}

// Chain composes middleware around a handler. The first middleware in mw is
// the outermost. Each middleware's next continuation is single-shot:
// invoking it a second time fails with ErrNextCalledTwice instead of
// re-running the rest of the chain.
func Chain(h HandlerFunc, mw ...Middleware) HandlerFunc {
	mw = slices.Clone(mw)
	slices.Reverse(mw)
	for _, m := range mw {
		h = guard(m, h)
	}
	return h
}

// guard wraps a single middleware so its next continuation errors on
// repeated invocation. The guard state is per request, so the composed
// chain itself stays reusable across requests.
func guard(m Middleware, next HandlerFunc) HandlerFunc {
	return func(c Context) error {
		called := false
		return m(func(c Context) error {
			if called {
				return ErrNextCalledTwice
			}
			called = true
			return next(c)
		})(c)
	}
}

// adaptMiddleware converts a gate Middleware to a chi middleware so global
// middleware registered via Use participates in chi's mux chain, including
// on requests that match no route.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextFunc := func(c Context) error {
				next.ServeHTTP(c.Response(), c.Request())
				return nil
			}
			c := newContext(w, r, a)
			if err := Chain(nextFunc, mw)(c); err != nil {
				a.handleError(c, err)
			}
		})
	}
}
