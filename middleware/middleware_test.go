package middleware

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"linkup/database"
	"linkup/securestore"
)

func TestJWT(t *testing.T) {
	token, err := GenerateToken(42, "alice", "supersecret")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	claims, err := ValidateToken(token, "supersecret")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Errorf("Unexpected claims %+v", claims)
	}

	if _, err := ValidateToken(token, "wrongsecret"); err == nil {
		t.Errorf("Expected error with wrong secret")
	}
}

func TestBearerAuthReadsTokenPerRequest(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	store := securestore.NewMemoryStore()
	client := &http.Client{Transport: &BearerAuth{Store: store}}

	get := func() {
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		resp.Body.Close()
	}

	get()
	store.Set(securestore.KeyAccessToken, "first")
	get()
	store.Set(securestore.KeyAccessToken, "rotated")
	get()

	want := []string{"", "Bearer first", "Bearer rotated"}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("request %d: expected %q, got %q", i, want[i], seen[i])
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	user, _ := db.CreateUser("alice", "alice@linkup.test", "Alice", "hash")
	token, _ := GenerateToken(user.ID, user.Username, "secret")

	var got *database.User
	h := Auth(db, "secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserFromContext(r)
	}))

	cases := []struct {
		name   string
		target string
		header string
		code   int
	}{
		{"header", "/", "Bearer " + token, http.StatusOK},
		{"query", "/?token=" + token, "", http.StatusOK},
		{"missing", "/", "", http.StatusUnauthorized},
		{"bad", "/", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		got = nil
		req := httptest.NewRequest(http.MethodGet, tc.target, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.code {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.code, rec.Code)
		}
		if tc.code == http.StatusOK && (got == nil || got.Username != "alice") {
			t.Errorf("%s: expected alice in context, got %+v", tc.name, got)
		}
	}
}
