package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pickupcore/internal/domain"

	"github.com/gin-gonic/gin"
)

func newTestEngine(parse TokenParser, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", RequireAuth(parse), RequireRoles(roles...), func(c *gin.Context) {
		rc, _ := GetRequestContext(c)
		c.JSON(http.StatusOK, gin.H{"driver": rc.DriverID})
	})
	return r
}

func fakeParser(raw string) (domain.RequestContext, error) {
	switch raw {
	case "driver-token":
		return domain.RequestContext{StaffID: 2, Role: domain.RoleDriver, DriverID: 7}, nil
	case "admin-token":
		return domain.RequestContext{StaffID: 1, Role: domain.RoleAdmin}, nil
	}
	return domain.RequestContext{}, errors.New("bad token")
}

func TestRequireAuthAndRoles(t *testing.T) {
	r := newTestEngine(fakeParser, domain.RoleAdmin)

	cases := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"invalid", "Bearer nope", "", http.StatusUnauthorized},
		{"wrong role", "Bearer driver-token", "", http.StatusForbidden},
		{"admin header", "Bearer admin-token", "", http.StatusOK},
		{"admin query", "", "?token=admin-token", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x"+tc.query, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.want, w.Code, w.Body.String())
		}
	}
}

func TestRequestID_EchoesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" || w.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("request id not propagated: body=%q header=%q", w.Body.String(), w.Header().Get("X-Request-ID"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if len(w.Body.String()) != 36 {
		t.Fatalf("expected generated uuid, got %q", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc msg=forged")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Body.String(); got == "abc msg=forged" || len(got) != 36 {
		t.Fatalf("unsafe request id should be replaced, got %q", got)
	}
}
