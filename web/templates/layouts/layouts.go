// Package layouts holds the page shells shared by every screen and the
// partials they include.
package layouts

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

//go:embed *.html partials/*.html
var files embed.FS

var templates = template.Must(template.New("layouts").ParseFS(files, "*.html", "partials/*.html"))

// Page returns the layout for kind rendered around d.Content.
func Page(kind Kind, d LayoutData) templ.Component {
	t := templates.Lookup(string(kind))
	if t == nil {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			return fmt.Errorf("layouts: unknown layout %q", kind)
		})
	}
	return templ.FromGoHTML(t, d)
}
