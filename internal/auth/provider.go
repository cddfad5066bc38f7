// Package auth signs the console in against the content API and keeps the
// resulting bearer token.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-press/internal/api"
	"github.com/debemdeboas/the-press/internal/config"
)

var authLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	authLogger = l
}

var ErrSignedOut = errors.New("not signed in")

// Signer exchanges credentials for a token. *api.Client is one.
type Signer interface {
	SignIn(ctx context.Context, creds api.Credentials) (string, error)
}

type Provider struct {
	store  *TokenStore
	signer Signer
	now    func() time.Time
}

func NewProvider(store *TokenStore, signer Signer) *Provider {
	return &Provider{
		store:  store,
		signer: signer,
		now:    time.Now,
	}
}

func (p *Provider) Store() *TokenStore { return p.store }

// SignIn trades creds for a token and stores it.
func (p *Provider) SignIn(ctx context.Context, creds api.Credentials) (Account, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	token, err := p.signer.SignIn(ctx, creds)
	if err != nil {
		authLogger.Warn().Err(err).Str("email", creds.Email).Msg("Sign-in failed")
		return Account{}, err
	}
	if err := p.store.Save(ctx, token, creds.Email); err != nil {
		return Account{}, err
	}
	return p.account(token, creds.Email), nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	return p.store.Clear(ctx)
}

// Current returns the account behind the stored token. An expired JWT
// counts as signed out.
func (p *Provider) Current(ctx context.Context) (Account, error) {
	token, err := p.store.Token(ctx)
	if err != nil {
		return Account{}, err
	}
	if token == "" {
		return Account{}, ErrSignedOut
	}
	email, err := p.store.Email(ctx)
	if err != nil {
		return Account{}, err
	}
	a := p.account(token, email)
	if a.Expired(p.now()) {
		return Account{}, ErrSignedOut
	}
	return a, nil
}

func (p *Provider) account(token, email string) Account {
	a, err := AccountFromToken(token)
	if err != nil {
		authLogger.Debug().Err(err).Msg("Token carries no readable claims")
	}
	if a.Email == "" {
		a.Email = email
	}
	return a
}

// WithAccount puts the signed-in account, if any, into the request context.
func (p *Provider) WithAccount() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, err := p.Current(r.Context())
			if err != nil {
				if !errors.Is(err, ErrSignedOut) {
					zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error reading credentials")
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithAccount(r.Context(), a)))
		})
	}
}

// Require sends requests without an account in context to the sign-in page.
// It must run after WithAccount.
func (p *Provider) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := AccountFromContext(r.Context()); !ok {
			RedirectToSignIn(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectToSignIn redirects to the sign-in page, remembering where the user
// was headed. htmx requests get an HX-Redirect instead of a 303.
func RedirectToSignIn(w http.ResponseWriter, r *http.Request) {
	target := config.SignInURLPath
	if r.Method == http.MethodGet && r.URL.Path != config.DashboardURLPath {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}

	if r.Header.Get(config.HHxRequest) == "true" {
		w.Header().Set(config.HHxRedirect, target)
		http.Error(w, config.ErrSignInRequired, http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SafeNext returns next when it is a local path, else the dashboard.
func SafeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return config.DashboardURLPath
}
