package web

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"auction-house/internal/app"
	"auction-house/internal/core"
	"auction-house/internal/flash"
	"auction-house/web/templates/layouts"
	"auction-house/web/templates/pages"
)

// ── Public pages ──────────────────────────────────────────────────────────────

// homePage handles GET /.
func (h *Handler) homePage(w http.ResponseWriter, r *http.Request) {
	d := h.layoutData(w, r, layouts.Public, "Home", "home")
	data := pages.HomeData{}
	if res, err := h.svc.GetDisplay(r.Context()); err != nil {
		log.Printf("home: get display: %v", err)
	} else {
		data.Banner = res.Display.Banner
		data.CurrentLot = res.Display.CurrentLot
	}
	h.write(w, r, http.StatusOK, layouts.Public, d, pages.Home(d, data))
}

// displayPage handles GET /display, the saleroom projector.
func (h *Handler) displayPage(w http.ResponseWriter, r *http.Request) {
	d := h.layoutData(w, r, layouts.Projector, "Display", "display")
	d.RefreshSeconds = int(h.cfg.DisplayRefresh / time.Second)
	res, err := h.svc.GetDisplay(r.Context())
	if err != nil {
		log.Printf("display: get display: %v", err)
		h.write(w, r, http.StatusInternalServerError, layouts.Projector, d, pages.Display(d, pages.DisplayData{}))
		return
	}
	h.write(w, r, http.StatusOK, layouts.Projector, d, pages.Display(d, pages.DisplayData{
		Banner:     res.Display.Banner,
		CurrentLot: res.Display.CurrentLot,
	}))
}

// ── Login / logout ────────────────────────────────────────────────────────────

// homeFor is where a role lands after signing in.
func (h *Handler) homeFor(role string) string {
	switch role {
	case core.RoleAdmin:
		return h.url("/admin")
	case core.RoleAuctioneer:
		return h.url("/auctioneer")
	default:
		return h.url("/")
	}
}

// loginPage handles GET /login. Signed-in users are sent to their home page.
func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	if claims := authFromContext(r.Context()); claims != nil {
		http.Redirect(w, r, h.homeFor(claims.Role), http.StatusSeeOther)
		return
	}
	d := h.layoutData(w, r, layouts.Auth, "Sign in", "login")
	h.write(w, r, http.StatusOK, layouts.Auth, d, pages.Login(d, pages.LoginData{}))
}

// loginFormSubmit handles POST /login.
func (h *Handler) loginFormSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	fail := func(status int, msg string) {
		d := h.layoutData(w, r, layouts.Auth, "Sign in", "login")
		h.write(w, r, status, layouts.Auth, d, pages.Login(d, pages.LoginData{Username: username, Error: msg}))
	}

	if username == "" || password == "" {
		fail(http.StatusBadRequest, "Enter your username and password.")
		return
	}
	sess, err := h.svc.AuthenticateUser(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			fail(http.StatusUnauthorized, "Invalid username or password.")
			return
		}
		log.Printf("login: %v req=%s", err, requestIDFromContext(r.Context()))
		fail(http.StatusInternalServerError, "Sign-in is unavailable. Try again shortly.")
		return
	}

	signed, sid, expires, err := h.issueToken(sess, time.Now())
	if err != nil {
		log.Printf("login: %v req=%s", err, requestIDFromContext(r.Context()))
		fail(http.StatusInternalServerError, "Sign-in is unavailable. Try again shortly.")
		return
	}
	h.sessions.Touch(sid, expires)
	h.setAuthCookie(w, signed, int(time.Until(expires).Seconds()))
	h.setFlash(w, r, flash.NewSuccess(fmt.Sprintf("Welcome back, %s", sess.DisplayName)))
	http.Redirect(w, r, h.homeFor(sess.Role), http.StatusSeeOther)
}

// logoutPage handles GET and POST /logout. GET is what the idle-logout script
// navigates to, so it carries no CSRF token; logging out is its only effect.
func (h *Handler) logoutPage(w http.ResponseWriter, r *http.Request) {
	if claims := authFromContext(r.Context()); claims != nil {
		h.sessions.Revoke(claims.SessionID, claims.ExpiresAt)
	}
	h.setAuthCookie(w, "", -1)

	msg := flash.NewInfo("You have been signed out.")
	if r.URL.Query().Get("reason") == "idle" {
		msg = flash.NewWarning("You were signed out after a period of inactivity.")
	}
	h.setFlash(w, r, msg)
	http.Redirect(w, r, h.url("/login"), http.StatusSeeOther)
}

// ── Admin ─────────────────────────────────────────────────────────────────────

// adminPage handles GET /admin.
func (h *Handler) adminPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d := h.layoutData(w, r, layouts.Admin, "Dashboard", "dashboard")

	disp, err := h.svc.GetDisplay(ctx)
	if err != nil {
		h.serverError(w, r, d, fmt.Errorf("admin: get display: %w", err))
		return
	}
	lots, err := h.svc.ListLots(ctx)
	if err != nil {
		h.serverError(w, r, d, fmt.Errorf("admin: list lots: %w", err))
		return
	}
	users, err := h.svc.ListUsers(ctx)
	if err != nil {
		h.serverError(w, r, d, fmt.Errorf("admin: list users: %w", err))
		return
	}

	data := pages.AdminData{
		Banner:       disp.Display.Banner,
		MaxBannerLen: core.MaxBannerLen,
		CurrentLot:   disp.Display.CurrentLot,
		LotCount:     len(lots.Lots),
	}
	for _, u := range users.Users {
		data.Users = append(data.Users, pages.AdminUser{
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Role:        u.Role,
			IsActive:    u.IsActive,
		})
	}
	h.write(w, r, http.StatusOK, layouts.Admin, d, pages.AdminDashboard(d, data))
}

// bannerAction handles POST /admin/banner.
func (h *Handler) bannerAction(w http.ResponseWriter, r *http.Request) {
	banner := r.PostFormValue("banner")
	err := h.svc.SetBanner(r.Context(), banner)
	var verr *core.ValidationError
	switch {
	case err == nil && strings.TrimSpace(banner) == "":
		h.setFlash(w, r, flash.NewSuccess("Banner cleared"))
	case err == nil:
		h.setFlash(w, r, flash.NewSuccess("Banner updated"))
	case errors.As(err, &verr):
		h.setFlash(w, r, flash.NewError(verr.Msg))
	default:
		log.Printf("banner: %v req=%s", err, requestIDFromContext(r.Context()))
		h.setFlash(w, r, flash.NewError("The banner could not be saved."))
	}
	http.Redirect(w, r, h.url("/admin"), http.StatusSeeOther)
}

// ── Rostrum ───────────────────────────────────────────────────────────────────

// auctioneerPage handles GET /auctioneer.
func (h *Handler) auctioneerPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d := h.layoutData(w, r, layouts.Auctioneer, "Lots", "lots")

	lots, err := h.svc.ListLots(ctx)
	if err != nil {
		h.serverError(w, r, d, fmt.Errorf("auctioneer: list lots: %w", err))
		return
	}
	disp, err := h.svc.GetDisplay(ctx)
	if err != nil {
		h.serverError(w, r, d, fmt.Errorf("auctioneer: get display: %w", err))
		return
	}
	data := pages.AuctioneerData{Lots: lots.Lots}
	if disp.Display.CurrentLot != nil {
		data.CurrentNumber = disp.Display.CurrentLot.Number
	}
	h.write(w, r, http.StatusOK, layouts.Auctioneer, d, pages.Auctioneer(d, data))
}

// showLotAction handles POST /auctioneer/lots/{number}/show.
func (h *Handler) showLotAction(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		h.notFound(w, r)
		return
	}
	res, err := h.svc.ShowLot(r.Context(), number)
	switch {
	case err == nil:
		h.setFlash(w, r, flash.NewSuccess(fmt.Sprintf("Lot %d is now on display", res.Lot.Number)))
	case errors.Is(err, core.ErrNotFound):
		h.setFlash(w, r, flash.NewError(fmt.Sprintf("Lot %d does not exist", number)))
	default:
		log.Printf("show lot %d: %v req=%s", number, err, requestIDFromContext(r.Context()))
		h.setFlash(w, r, flash.NewError("The display could not be updated."))
	}
	http.Redirect(w, r, h.url("/auctioneer"), http.StatusSeeOther)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// setFlash queues m for the next page. A failure is logged and the action
// continues; the user just misses the toast.
func (h *Handler) setFlash(w http.ResponseWriter, r *http.Request, m flash.Message) {
	if h.flash == nil {
		return
	}
	if err := h.flash.Set(w, r, m); err != nil {
		log.Printf("FLASH_SET_FAILED req=%s: %v", requestIDFromContext(r.Context()), err)
	}
}

// serverError logs err and renders the 500 page with the already-built
// layout data, keeping any flash consumed for it.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, d layouts.LayoutData, err error) {
	log.Printf("%v req=%s", err, d.RequestID)
	d.Title = "Error"
	d.Nav = h.navFor(layouts.Error, "")
	h.write(w, r, http.StatusInternalServerError, layouts.Error, d, pages.Error(d, pages.ErrorData{
		Status:  http.StatusInternalServerError,
		Heading: "Something went wrong",
		Message: "The page could not be loaded.",
	}))
}
