package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/poliklinik-dashboard/pkg/utils"
)

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestJWTMiddleware(t *testing.T) {
	jm := utils.NewJWTManager("secret", time.Hour)
	token, _, err := jm.GenerateJWTToken("dr.lim", utils.RoleDokter)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"malformed", "Token abc", "", http.StatusUnauthorized},
		{"invalid", "Bearer abc", "", http.StatusUnauthorized},
		{"header", "Bearer " + token, "", http.StatusOK},
		{"query", "", "?token=" + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seen *utils.Claims
			h := JWTMiddleware(jm)(func(c echo.Context) error {
				seen = ClaimsFrom(c)
				return ok(c)
			})
			if err := h(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if tc.want == http.StatusOK && (seen == nil || seen.Username != "dr.lim") {
				t.Errorf("expected claims for dr.lim, got %+v", seen)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	run := func(claims *utils.Claims) int {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		if claims != nil {
			c.Set(ContextKeyClaims, claims)
		}
		if err := RequireRole(utils.RoleAdmin)(ok)(c); err != nil {
			t.Fatal(err)
		}
		return rec.Code
	}

	if got := run(nil); got != http.StatusUnauthorized {
		t.Errorf("no claims: expected 401, got %d", got)
	}
	if got := run(&utils.Claims{Username: "d", Role: utils.RoleDokter}); got != http.StatusForbidden {
		t.Errorf("doctor: expected 403, got %d", got)
	}
	if got := run(&utils.Claims{Username: "a", Role: utils.RoleAdmin}); got != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", got)
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestID()(func(c echo.Context) error {
		if rid := c.Get(ContextKeyRequest).(string); rid != "abc-123" {
			t.Errorf("expected abc-123, got %s", rid)
		}
		return ok(c)
	})
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("expected request id echoed, got %q", rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = RequestID()(ok)(c)
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a generated request id")
	}
}

func TestLoggerPassesErrorThrough(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), httptest.NewRecorder())
	want := errors.New("boom")

	err := Logger(zerolog.Nop())(func(echo.Context) error { return want })(c)
	if !errors.Is(err, want) {
		t.Errorf("expected handler error, got %v", err)
	}
}

func TestRecovery(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := Recovery(zerolog.Nop())(func(echo.Context) error { panic("kaboom") })(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 HTTPError, got %v", err)
	}
}
