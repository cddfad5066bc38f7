package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/debemdeboas/the-press/internal/api"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/db"
)

type fakeSigner struct {
	token string
	err   error
	got   api.Credentials
}

func (s *fakeSigner) SignIn(_ context.Context, creds api.Credentials) (string, error) {
	s.got = creds
	return s.token, s.err
}

func signedToken(t *testing.T, email string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		Name:  "Ada",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}).SignedString([]byte("not-our-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tok
}

func setupStore(t *testing.T) *TokenStore {
	t.Helper()
	sqlite := db.NewSQLite(db.MemoryPath)
	if err := sqlite.Init(context.Background()); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return NewTokenStore(sqlite)
}

func TestAccountFromToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	a, err := AccountFromToken(signedToken(t, "ada@example.com", exp))
	if err != nil {
		t.Fatalf("AccountFromToken failed: %v", err)
	}
	if a.Email != "ada@example.com" || a.Subject != "user-1" || a.Name != "Ada" {
		t.Errorf("Unexpected account: %+v", a)
	}
	if !a.ExpiresAt.Equal(exp) {
		t.Errorf("Expected expiry %v, got %v", exp, a.ExpiresAt)
	}
	if a.DisplayName() != "Ada" {
		t.Errorf("Expected display name Ada, got %q", a.DisplayName())
	}

	if _, err := AccountFromToken("opaque-token"); !errors.Is(err, ErrOpaqueToken) {
		t.Errorf("Expected ErrOpaqueToken, got %v", err)
	}
}

func TestAccountExpired(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		a    Account
		want bool
	}{
		{"no expiry", Account{}, false},
		{"future", Account{ExpiresAt: now.Add(time.Minute)}, false},
		{"past", Account{ExpiresAt: now.Add(-time.Minute)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	tok, err := store.Token(ctx)
	if err != nil || tok != "" {
		t.Fatalf("Expected empty token, got %q, %v", tok, err)
	}

	if err := store.Save(ctx, "abc", "ada@example.com"); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "def", "ada@example.com"); err != nil {
		t.Fatal(err)
	}

	// A fresh store reads the persisted row.
	other := NewTokenStore(store.db)
	tok, err = other.Token(ctx)
	if err != nil || tok != "def" {
		t.Errorf("Expected persisted token def, got %q, %v", tok, err)
	}
	email, _ := other.Email(ctx)
	if email != "ada@example.com" {
		t.Errorf("Expected persisted email, got %q", email)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if tok, _ := store.Token(ctx); tok != "" {
		t.Errorf("Expected token cleared, got %q", tok)
	}
}

func TestProviderSignIn(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	signer := &fakeSigner{token: signedToken(t, "ada@example.com", time.Now().Add(time.Hour))}
	p := NewProvider(store, signer)

	a, err := p.SignIn(ctx, api.Credentials{Email: " ada@example.com ", Password: "pw"})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if signer.got.Email != "ada@example.com" {
		t.Errorf("Expected trimmed email, got %q", signer.got.Email)
	}
	if a.Subject != "user-1" {
		t.Errorf("Expected subject from claims, got %q", a.Subject)
	}

	cur, err := p.Current(ctx)
	if err != nil || cur.Email != "ada@example.com" {
		t.Errorf("Expected current account, got %+v, %v", cur, err)
	}

	if err := p.SignOut(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Current(ctx); !errors.Is(err, ErrSignedOut) {
		t.Errorf("Expected ErrSignedOut, got %v", err)
	}
}

func TestProviderSignInFailure(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	p := NewProvider(store, &fakeSigner{err: errors.New("bad password")})

	if _, err := p.SignIn(ctx, api.Credentials{Email: "a", Password: "b"}); err == nil {
		t.Fatal("Expected sign-in error")
	}
	if tok, _ := store.Token(ctx); tok != "" {
		t.Errorf("Expected no token stored, got %q", tok)
	}
}

func TestProviderOpaqueAndExpiredTokens(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	p := NewProvider(store, nil)

	if err := store.Save(ctx, "opaque", "ed@example.com"); err != nil {
		t.Fatal(err)
	}
	a, err := p.Current(ctx)
	if err != nil {
		t.Fatalf("Expected opaque token to count as signed in: %v", err)
	}
	if a.DisplayName() != "ed@example.com" {
		t.Errorf("Expected stored email as display name, got %q", a.DisplayName())
	}

	if err := store.Save(ctx, signedToken(t, "ed@example.com", time.Now().Add(-time.Hour)), "ed@example.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Current(ctx); !errors.Is(err, ErrSignedOut) {
		t.Errorf("Expected expired token to count as signed out, got %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	p := NewProvider(store, nil)

	var seen Account
	h := p.WithAccount()(p.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AccountFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("signed out redirects", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts?page=2", nil))
		if w.Code != http.StatusSeeOther {
			t.Fatalf("Expected 303, got %d", w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/signin?next=%2Fposts%3Fpage%3D2" {
			t.Errorf("Unexpected redirect %q", loc)
		}
	})

	t.Run("htmx gets HX-Redirect", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/editor/x/save", nil)
		r.Header.Set(config.HHxRequest, "true")
		h.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
		if got := w.Header().Get(config.HHxRedirect); got != config.SignInURLPath {
			t.Errorf("Expected HX-Redirect to sign-in, got %q", got)
		}
	})

	t.Run("signed in passes through", func(t *testing.T) {
		if err := store.Save(ctx, "opaque", "ed@example.com"); err != nil {
			t.Fatal(err)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
		if seen.Email != "ed@example.com" {
			t.Errorf("Expected account in context, got %+v", seen)
		}
	})
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"/posts":          "/posts",
		"":                "/",
		"//evil.example":  "/",
		"https://evil":    "/",
		"/\\evil.example": "/",
		"/editor/new?x=1": "/editor/new?x=1",
	}
	for in, want := range tests {
		if got := SafeNext(in); got != want {
			t.Errorf("SafeNext(%q) = %q, want %q", in, got, want)
		}
	}
}
