package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gate/internal"
)

// extract runs the extractor against a request served through a real app so
// header, query, and cookie sources all behave as they do in production.
func extract(t *testing.T, e internal.Extractor, mutate func(*http.Request)) (string, bool) {
	t.Helper()

	var (
		value string
		found bool
	)
	app := internal.New(internal.WithRoutes(map[string]map[string]internal.HandlerFunc{
		"GET": {"/probe": func(c internal.Context) error {
			value, found = e.Extract(c)
			return c.NoContent(http.StatusNoContent)
		}},
	}))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if mutate != nil {
		mutate(req)
	}
	app.ServeHTTP(httptest.NewRecorder(), req)
	return value, found
}

func TestExtractorFromHeader(t *testing.T) {
	t.Parallel()

	e := internal.NewExtractor(internal.FromHeader("X-API-Key"))

	v, ok := extract(t, e, func(r *http.Request) {
		r.Header.Set("X-API-Key", "key-123")
	})
	require.True(t, ok)
	require.Equal(t, "key-123", v)

	_, ok = extract(t, e, nil)
	require.False(t, ok)
}

func TestExtractorFromQuery(t *testing.T) {
	t.Parallel()

	e := internal.NewExtractor(internal.FromQuery("token"))

	v, ok := extract(t, e, func(r *http.Request) {
		q := r.URL.Query()
		q.Set("token", "qt-1")
		r.URL.RawQuery = q.Encode()
	})
	require.True(t, ok)
	require.Equal(t, "qt-1", v)
}

func TestExtractorFromCookie(t *testing.T) {
	t.Parallel()

	e := internal.NewExtractor(internal.FromCookie("session"))

	v, ok := extract(t, e, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "session", Value: "cv-9"})
	})
	require.True(t, ok)
	require.Equal(t, "cv-9", v)

	_, ok = extract(t, e, nil)
	require.False(t, ok)
}

func TestExtractorFromBearerToken(t *testing.T) {
	t.Parallel()

	e := internal.NewExtractor(internal.FromBearerToken())

	cases := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{name: "standard", header: "Bearer abc.def.ghi", want: "abc.def.ghi", ok: true},
		{name: "lowercase scheme", header: "bearer tok", want: "tok", ok: true},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", ok: false},
		{name: "empty token", header: "Bearer ", ok: false},
		{name: "scheme only", header: "Bearer", ok: false},
		{name: "absent", header: "", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			v, ok := extract(t, e, func(r *http.Request) {
				if tc.header != "" {
					r.Header.Set("Authorization", tc.header)
				}
			})
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, v)
		})
	}
}

func TestExtractorSourceOrder(t *testing.T) {
	t.Parallel()

	e := internal.NewExtractor(
		internal.FromBearerToken(),
		internal.FromQuery("token"),
		internal.FromCookie("token"),
	)

	// Header wins over query and cookie.
	v, ok := extract(t, e, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer from-header")
		q := r.URL.Query()
		q.Set("token", "from-query")
		r.URL.RawQuery = q.Encode()
		r.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
	})
	require.True(t, ok)
	require.Equal(t, "from-header", v)

	// With the header gone, the next source in order matches.
	v, ok = extract(t, e, func(r *http.Request) {
		q := r.URL.Query()
		q.Set("token", "from-query")
		r.URL.RawQuery = q.Encode()
		r.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
	})
	require.True(t, ok)
	require.Equal(t, "from-query", v)
}

func TestExtractorNoSources(t *testing.T) {
	t.Parallel()

	e := internal.NewExtractor()
	_, ok := extract(t, e, nil)
	require.False(t, ok)
}
