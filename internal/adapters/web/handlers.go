package web

import (
	"context"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"auction-house/internal/app"
	"auction-house/internal/config"
	"auction-house/internal/core"
	"auction-house/internal/flash"
	"auction-house/internal/metrics"
	"auction-house/internal/session"
	webui "auction-house/web"
	"auction-house/web/templates/layouts"
	"auction-house/web/templates/pages"
)

// Config wires a Handler to its collaborators.
type Config struct {
	BasePath           string
	AppName            string
	JWTSecret          string
	CookieSecure       bool
	AllowedOrigins     []string
	IdleWindow         time.Duration
	TokenTTL           time.Duration
	LoginRatePerMinute int
	// DisplayRefresh is how often the projector page reloads itself.
	DisplayRefresh time.Duration
	Nav            config.Nav

	Flash    flash.Store
	Sessions *session.Registry
	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// Handler holds the ApplicationService, the chi router and the per-request
// collaborators.
type Handler struct {
	svc        app.ApplicationService
	cfg        Config
	flash      flash.Store
	sessions   *session.Registry
	metrics    *metrics.Metrics
	limiter    *loginLimiter
	fileServer http.Handler
}

// NewHandler creates and wires the chi router with all routes. Background
// maintenance goroutines stop when ctx is cancelled.
func NewHandler(ctx context.Context, svc app.ApplicationService, cfg Config) http.Handler {
	staticFS, err := fs.Sub(webui.Static, "static")
	if err != nil {
		panic("web/static embed sub-FS failed: " + err.Error())
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	if cfg.DisplayRefresh <= 0 {
		cfg.DisplayRefresh = 15 * time.Second
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewRegistry(nil, 0, nil)
	}

	h := &Handler{
		svc:        svc,
		cfg:        cfg,
		sessions:   cfg.Sessions,
		metrics:    cfg.Metrics,
		limiter:    newLoginLimiter(cfg.LoginRatePerMinute),
		fileServer: http.FileServer(http.FS(staticFS)),
	}
	if cfg.Flash != nil {
		h.flash = metrics.InstrumentFlash(cfg.Flash, cfg.Metrics)
	}
	h.limiter.startPurge(ctx)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.metrics))
	r.Use(h.Recoverer)
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(SecurityHeaders)
	r.Use(RequestBodyLimit(1 << 20))
	r.Use(h.CSRF)
	r.Use(h.LoadPrincipal)

	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.methodNotAllowed)

	// ── Health and metrics ───────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	// ── Static files served at /static/* ─────────────────────────────────────
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		http.StripPrefix(h.url("/static"), h.fileServer).ServeHTTP(w, req)
	})

	// ── Public pages ─────────────────────────────────────────────────────────
	r.Get("/", h.homePage)
	r.Get("/display", h.displayPage)
	r.Get("/login", h.loginPage)
	r.With(h.LimitLogin).Post("/login", h.loginFormSubmit)
	r.Get("/logout", h.logoutPage)
	r.Post("/logout", h.logoutPage)

	// ── Admin ────────────────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuthBrowser)
		r.Use(h.RequireRole(core.RoleAdmin))
		r.Get("/admin", h.adminPage)
		r.Post("/admin/banner", h.bannerAction)
	})

	// ── Rostrum ──────────────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuthBrowser)
		r.Use(h.RequireRole(core.RoleAuctioneer, core.RoleAdmin))
		r.Get("/auctioneer", h.auctioneerPage)
		r.Post("/auctioneer/lots/{number}/show", h.showLotAction)
	})

	if cfg.BasePath == "" {
		return r
	}

	root := chi.NewRouter()
	root.Mount(cfg.BasePath, r)
	root.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, h.url("/"), http.StatusFound)
	})
	return root
}

// LimitLogin rejects sign-in attempts beyond the per-client rate with 429.
func (h *Handler) LimitLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.allow(clientIP(r)) {
			d := h.layoutData(w, r, layouts.Auth, "Sign in", "")
			h.write(w, r, http.StatusTooManyRequests, layouts.Auth, d, pages.Login(d, pages.LoginData{
				Username: r.PostFormValue("username"),
				Error:    "Too many sign-in attempts. Wait a minute and try again.",
			}))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// health returns service status and the number of tracked sessions.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status         string `json:"status"`
		ActiveSessions int    `json:"active_sessions"`
	}
	writeJSON(w, response{Status: "ok", ActiveSessions: h.sessions.Active()})
}

// url prefixes p with the base path.
func (h *Handler) url(p string) string {
	return h.cfg.BasePath + p
}

func (h *Handler) cookiePath() string {
	if h.cfg.BasePath == "" {
		return "/"
	}
	return h.cfg.BasePath
}

// clientIP is the remote address without the port. Proxies are not trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
