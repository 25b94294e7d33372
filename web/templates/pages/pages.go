// Package pages renders each screen's content into its layout.
package pages

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"auction-house/internal/core"
	"auction-house/web/templates/layouts"
)

//go:embed *.html
var files embed.FS

var templates = template.Must(template.New("pages").ParseFS(files, "*.html"))

// view is what a page template sees: the layout data for links and the CSRF
// token, plus the page's own data.
type view[T any] struct {
	Layout layouts.LayoutData
	Data   T
}

// page executes the content template name (and name+"-script" when the page
// defines one) and hands the result to the layout.
func page[T any](kind layouts.Kind, name string, d layouts.LayoutData, data T) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		v := view[T]{Layout: d, Data: data}

		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, name, v); err != nil {
			return fmt.Errorf("pages: render %s: %w", name, err)
		}
		d.Content = template.HTML(buf.String())

		if t := templates.Lookup(name + "-script"); t != nil {
			buf.Reset()
			if err := t.Execute(&buf, v); err != nil {
				return fmt.Errorf("pages: render %s script: %w", name, err)
			}
			d.Script = template.HTML(buf.String())
		}
		return layouts.Page(kind, d).Render(ctx, w)
	})
}

// HomeData feeds the public landing page.
type HomeData struct {
	Banner     string
	CurrentLot *core.Lot
}

func Home(d layouts.LayoutData, data HomeData) templ.Component {
	return page(layouts.Public, "home", d, data)
}

// LoginData feeds the sign-in form. Error is shown inline above the form.
type LoginData struct {
	Username string
	Error    string
}

func Login(d layouts.LayoutData, data LoginData) templ.Component {
	return page(layouts.Auth, "login", d, data)
}

// DisplayData feeds the projector screen.
type DisplayData struct {
	Banner     string
	CurrentLot *core.Lot
}

func Display(d layouts.LayoutData, data DisplayData) templ.Component {
	return page(layouts.Projector, "display", d, data)
}

// AdminUser is one row of the admin user table.
type AdminUser struct {
	Username    string
	DisplayName string
	Role        string
	IsActive    bool
}

// AdminData feeds the admin dashboard.
type AdminData struct {
	Banner       string
	MaxBannerLen int
	CurrentLot   *core.Lot
	LotCount     int
	Users        []AdminUser
}

func AdminDashboard(d layouts.LayoutData, data AdminData) templ.Component {
	return page(layouts.Admin, "admin", d, data)
}

// AuctioneerData feeds the rostrum lot list.
type AuctioneerData struct {
	Lots          []core.Lot
	CurrentNumber int
}

func Auctioneer(d layouts.LayoutData, data AuctioneerData) templ.Component {
	return page(layouts.Auctioneer, "auctioneer", d, data)
}

// ErrorData feeds the error layout.
type ErrorData struct {
	Status  int
	Heading string
	Message string
}

func Error(d layouts.LayoutData, data ErrorData) templ.Component {
	return page(layouts.Error, "error", d, data)
}
