package layouts

import (
	"html/template"
	"time"

	"auction-house/internal/flash"
	"auction-house/internal/idle"
)

// Kind names a page shell. It doubles as the template name.
type Kind string

const (
	Public     Kind = "public"
	Auth       Kind = "auth"
	Admin      Kind = "admin"
	Auctioneer Kind = "auctioneer"
	Projector  Kind = "projector"
	Error      Kind = "error"
)

// Kinds lists every layout.
func Kinds() []Kind {
	return []Kind{Public, Auth, Admin, Auctioneer, Projector, Error}
}

// Principal is the signed-in user as the templates see it.
type Principal struct {
	UserID      int
	Username    string
	DisplayName string
	Role        string
}

// IdleLogout configures the inline auto-logout script.
type IdleLogout struct {
	WindowMillis int64
	LogoutURL    string
	Events       []string
}

// NewIdleLogout builds the script settings for a page under basePath.
func NewIdleLogout(basePath string, window time.Duration) *IdleLogout {
	if window <= 0 {
		window = idle.DefaultWindow
	}
	return &IdleLogout{
		WindowMillis: window.Milliseconds(),
		LogoutURL:    basePath + "/logout?reason=idle",
		Events:       idle.EventNames(),
	}
}

// NavLink is a resolved header link.
type NavLink struct {
	Label  string
	Href   string
	Active bool
}

// LayoutData is passed to every layout. It is built fresh for each request;
// nothing in it is shared between renders.
type LayoutData struct {
	Title     string
	AppName   string
	BasePath  string
	CSRFToken string
	ActiveNav string
	RequestID string
	Year      int

	// Principal is nil for anonymous visitors.
	Principal *Principal
	// Flash is the message consumed for this render, or nil.
	Flash *flash.Message
	// Idle is nil unless Principal is set.
	Idle *IdleLogout
	Nav  []NavLink

	// RefreshSeconds makes the projector reload itself. Zero disables it.
	RefreshSeconds int

	Content template.HTML
	Script  template.HTML
}

// PageTitle is the <title> text.
func (d LayoutData) PageTitle() string {
	if d.Title == "" {
		return d.AppName
	}
	if d.AppName == "" {
		return d.Title
	}
	return d.Title + " | " + d.AppName
}
