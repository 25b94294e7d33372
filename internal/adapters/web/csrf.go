package web

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
	"net/http"
)

const (
	csrfCookieName = "csrf_token"
	csrfFieldName  = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	csrfTokenBytes = 32
)

type csrfKey struct{}

func csrfTokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(csrfKey{}).(string)
	return v
}

func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// validCSRFToken reports whether s looks like a token we issued.
func validCSRFToken(s string) bool {
	b, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil && len(b) == csrfTokenBytes
}

// CSRF implements double-submit protection. Every request gets a token
// cookie (issued on first visit) and the token in its context for the
// templates. Unsafe methods must echo the cookie value in the csrf_token
// form field or the X-CSRF-Token header.
func (h *Handler) CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(csrfCookieName); err == nil && validCSRFToken(c.Value) {
			token = c.Value
		}
		issued := false
		if token == "" {
			t, err := generateCSRFToken()
			if err != nil {
				h.renderError(w, r, http.StatusInternalServerError, "Something went wrong", "")
				return
			}
			token = t
			issued = true
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookieName,
				Value:    token,
				Path:     h.cookiePath(),
				HttpOnly: true,
				Secure:   h.cfg.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		r = r.WithContext(context.WithValue(r.Context(), csrfKey{}, token))

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		default:
			sent := r.Header.Get(csrfHeaderName)
			if sent == "" {
				sent = r.PostFormValue(csrfFieldName)
			}
			if issued || !hmac.Equal([]byte(sent), []byte(token)) {
				h.renderError(w, r, http.StatusForbidden, "Form expired", "Reload the page and try again.")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
