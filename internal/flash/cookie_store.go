package flash

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	keyText     = "text"
	keyCategory = "category"

	// DefaultCookieName is the cookie used by CookieStore.
	DefaultCookieName = "flash"
)

// CookieOptions configures the flash cookie.
type CookieOptions struct {
	Name   string
	Path   string
	Secure bool
}

// CookieStore keeps the pending message in a signed cookie. The cookie is
// tamper-evident but not encrypted; flash text is shown to the same browser
// anyway.
type CookieStore struct {
	store *sessions.CookieStore
	name  string
}

// NewCookieStore returns a CookieStore signing with hashKey.
func NewCookieStore(hashKey []byte, opts CookieOptions) *CookieStore {
	if opts.Name == "" {
		opts.Name = DefaultCookieName
	}
	if opts.Path == "" {
		opts.Path = "/"
	}
	s := sessions.NewCookieStore(hashKey)
	s.Options = &sessions.Options{
		Path:     opts.Path,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieStore{store: s, name: opts.Name}
}

// Set implements Store.
func (c *CookieStore) Set(w http.ResponseWriter, r *http.Request, m Message) error {
	m, err := m.Normalize()
	if err != nil {
		return err
	}
	sess, err := c.store.Get(r, c.name)
	if sess == nil {
		return fmt.Errorf("flash: load cookie: %w", err)
	}
	// An undecodable cookie is simply overwritten.
	sess.Values[keyText] = m.Text
	sess.Values[keyCategory] = string(m.Category)
	sess.Options.MaxAge = 0
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("flash: save cookie: %w", err)
	}
	return nil
}

// Consume implements Store. When no flash cookie came with the request no
// Set-Cookie header is emitted.
func (c *CookieStore) Consume(w http.ResponseWriter, r *http.Request) (*Message, error) {
	if _, err := r.Cookie(c.name); err != nil {
		return nil, nil
	}
	sess, err := c.store.Get(r, c.name)
	if sess == nil {
		return nil, fmt.Errorf("flash: load cookie: %w", err)
	}
	text, _ := sess.Values[keyText].(string)
	category, _ := sess.Values[keyCategory].(string)

	delete(sess.Values, keyText)
	delete(sess.Values, keyCategory)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return nil, fmt.Errorf("flash: clear cookie: %w", err)
	}
	return restore(text, category), nil
}
