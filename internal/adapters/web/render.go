package web

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"auction-house/internal/config"
	"auction-house/internal/flash"
	"auction-house/web/templates/layouts"
	"auction-house/web/templates/pages"
)

// layoutData builds the per-request layout data. It consumes the pending
// flash message, so it must run before anything is written to w.
func (h *Handler) layoutData(w http.ResponseWriter, r *http.Request, kind layouts.Kind, title, activeNav string) layouts.LayoutData {
	d := layouts.LayoutData{
		Title:     title,
		AppName:   h.cfg.AppName,
		BasePath:  h.cfg.BasePath,
		CSRFToken: csrfTokenFromContext(r.Context()),
		ActiveNav: activeNav,
		RequestID: requestIDFromContext(r.Context()),
		Year:      time.Now().Year(),
		Nav:       h.navFor(kind, activeNav),
	}
	if claims := authFromContext(r.Context()); claims != nil {
		d.Principal = &layouts.Principal{
			UserID:      claims.UserID,
			Username:    claims.Username,
			DisplayName: claims.DisplayName,
			Role:        claims.Role,
		}
		d.Idle = layouts.NewIdleLogout(h.cfg.BasePath, h.cfg.IdleWindow)
	}
	d.Flash = h.consumeFlash(w, r)
	return d
}

type flashSlotKey struct{}

// flashSlot remembers the message consumed during a request, so a second
// layout built for the same request (the panic page) still shows it.
type flashSlot struct {
	consumed bool
	msg      *flash.Message
}

func withFlashSlot(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), flashSlotKey{}, &flashSlot{}))
}

func (h *Handler) consumeFlash(w http.ResponseWriter, r *http.Request) *flash.Message {
	slot, _ := r.Context().Value(flashSlotKey{}).(*flashSlot)
	if slot != nil && slot.consumed {
		return slot.msg
	}
	if h.flash == nil {
		return nil
	}
	msg, err := h.flash.Consume(w, r)
	if err != nil {
		log.Printf("FLASH_CONSUME_FAILED req=%s: %v", requestIDFromContext(r.Context()), err)
	}
	if slot != nil {
		slot.consumed = true
		slot.msg = msg
	}
	return msg
}

func (h *Handler) navFor(kind layouts.Kind, active string) []layouts.NavLink {
	var items []config.NavItem
	switch kind {
	case layouts.Public, layouts.Error:
		items = h.cfg.Nav.Public
	case layouts.Admin:
		items = h.cfg.Nav.Admin
	case layouts.Auctioneer:
		items = h.cfg.Nav.Auctioneer
	}
	links := make([]layouts.NavLink, 0, len(items))
	for _, it := range items {
		links = append(links, layouts.NavLink{
			Label:  it.Label,
			Href:   h.url(it.Path),
			Active: it.Key != "" && it.Key == active,
		})
	}
	return links
}

// write renders c, a page in the kind layout, into a buffer and sends it with status. A render failure
// becomes the 500 page built from the same layout data, so the message
// consumed for d is still shown.
func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, kind layouts.Kind, d layouts.LayoutData, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		log.Printf("RENDER_FAILED req=%s: %v", d.RequestID, err)
		buf.Reset()
		status = http.StatusInternalServerError
		kind = layouts.Error
		d.Title = "Error"
		d.Nav = h.navFor(layouts.Error, "")
		fallback := pages.Error(d, pages.ErrorData{
			Status:  status,
			Heading: "Something went wrong",
			Message: "The page could not be displayed.",
		})
		if err := fallback.Render(r.Context(), &buf); err != nil {
			log.Printf("RENDER_FAILED req=%s: error page: %v", d.RequestID, err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	h.metrics.PageRendered(string(kind))
}
