package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gestaozabele/condominio/internal/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(GetSubject(r.Context())))
}

func TestAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager(testSecret, time.Minute)
	user := uuid.New()
	token, err := jwtManager.GenerateAccessToken(user, []string{"MORADOR"})
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	h := Auth(jwtManager)(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"sem token", "/assembleias", "", http.StatusUnauthorized},
		{"token inválido", "/assembleias", "Bearer abc", http.StatusUnauthorized},
		{"bearer", "/assembleias", "Bearer " + token, http.StatusOK},
		{"query fora de eventos", "/assembleias?access_token=" + token, "", http.StatusUnauthorized},
		{"query em eventos", "/assembleias/x/eventos?access_token=" + token, "", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, rec.Code)
			}
			if tc.status == http.StatusOK && rec.Body.String() != user.String() {
				t.Fatalf("subject not propagated: %q", rec.Body.String())
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	h := RequireRoles("SINDICO", "admin")(http.HandlerFunc(okHandler))

	for roles, status := range map[string]int{
		"sindico": http.StatusOK,
		"ADMIN":   http.StatusOK,
		"MORADOR": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/assembleias", nil)
		req = req.WithContext(WithIdentity(req.Context(), uuid.NewString(), []string{roles}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != status {
			t.Fatalf("%s: expected %d got %d", roles, status, rec.Code)
		}
	}
}

func TestUserRateLimit(t *testing.T) {
	h := UserRateLimit(NewRateLimiter(1, 2))(http.HandlerFunc(okHandler))
	subject := uuid.NewString()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/pautas/x/apuracao", nil)
		req = req.WithContext(WithIdentity(req.Context(), subject, nil))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.condominio.com.br", "*.zabele.com.br"})(http.HandlerFunc(okHandler))

	for origin, allowed := range map[string]bool{
		"https://app.condominio.com.br": true,
		"https://sindico.zabele.com.br": true,
		"https://zabele.com.br":         false,
		"https://evil.com":              false,
	} {
		req := httptest.NewRequest(http.MethodOptions, "/assembleias", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		got := rec.Header().Get("Access-Control-Allow-Origin") == origin
		if got != allowed {
			t.Errorf("%s: allowed=%v", origin, got)
		}
		if rec.Code != http.StatusNoContent {
			t.Errorf("%s: preflight status %d", origin, rec.Code)
		}
	}
}
