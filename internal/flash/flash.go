// Package flash carries a one-shot status message from the handler that
// performed an action to the next page that renders.
//
// The holder has a single slot: a second Set before the next Consume
// replaces the first message, and Consume clears the slot as it reads it.
// Consume mutates response state (a cookie, or a row keyed by one), so it
// must run before the response headers are written.
package flash

import (
	"errors"
	"net/http"
	"strings"
)

// Category drives the toast colour and icon.
type Category string

const (
	Success Category = "success"
	Error   Category = "error"
	Info    Category = "info"
	Warning Category = "warning"
)

// ErrInvalidCategory is returned by Set for a category outside the four known ones.
var ErrInvalidCategory = errors.New("flash: invalid category")

// ParseCategory maps s to a Category. An empty string is Success.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return Success, nil
	case Success, Error, Info, Warning:
		return c, nil
	default:
		return "", ErrInvalidCategory
	}
}

// Message is a pending notification.
type Message struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// Normalize validates m and fills in the default category.
func (m Message) Normalize() (Message, error) {
	c, err := ParseCategory(string(m.Category))
	if err != nil {
		return Message{}, err
	}
	m.Category = c
	return m, nil
}

// restore rebuilds a message read back from storage. Storage is not trusted
// to hold a valid category, so anything unknown degrades to Success.
func restore(text, category string) *Message {
	if text == "" {
		return nil
	}
	c, err := ParseCategory(category)
	if err != nil {
		c = Success
	}
	return &Message{Text: text, Category: c}
}

// Store is the single-slot holder. Implementations are keyed to the
// browser through a cookie.
type Store interface {
	// Set writes m, replacing anything pending.
	Set(w http.ResponseWriter, r *http.Request, m Message) error
	// Consume returns the pending message and clears it. It returns nil
	// when nothing is pending.
	Consume(w http.ResponseWriter, r *http.Request) (*Message, error)
}

func NewSuccess(text string) Message { return Message{Text: text, Category: Success} }
func NewError(text string) Message   { return Message{Text: text, Category: Error} }
func NewInfo(text string) Message    { return Message{Text: text, Category: Info} }
func NewWarning(text string) Message { return Message{Text: text, Category: Warning} }
