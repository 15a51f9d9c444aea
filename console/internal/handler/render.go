package handler

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/Astemirdum/library-admin/console/internal/console"
	"github.com/Astemirdum/library-admin/console/internal/errs"
	"github.com/Astemirdum/library-admin/console/internal/model"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templatesFS embed.FS

type pageData struct {
	Title   string
	Active  console.Page
	Path    string
	User    *model.User
	Notices []console.Notice
	Data    any
	Form    any
	Errors  errs.FieldErrors
	Message string
}

type renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	// day cuts a date or timestamp to YYYY-MM-DD.
	"day": func(s string) string {
		if len(s) < 10 {
			return s
		}
		return s[:10]
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	// percent scales n against top for the chart bars.
	"percent": func(n, top int) int {
		if top == 0 {
			return 0
		}
		return n * 100 / top
	},
}

// newRenderer parses every page together with the layout.
func newRenderer() *renderer {
	layout := template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html"))
	names, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	r := &renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		t := template.Must(layout.Clone())
		template.Must(t.ParseFS(templatesFS, name))
		r.pages[strings.TrimSuffix(base, ".html")] = t
	}
	return r
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// render fills the parts every page shows and drains pending notices.
func (h *Handler) render(c echo.Context, code int, name string, p pageData) error {
	if ws, ok := c.Get(workspaceKey).(*console.Workspace); ok {
		p.User = ws.Session.User()
		p.Notices = ws.Notices.Drain()
	}
	return c.Render(code, name, p)
}

// refresh reports whether the user asked for the page to be fetched again.
func refresh(c echo.Context) bool {
	return c.QueryParam("refresh") != ""
}

func formValues(c echo.Context) url.Values {
	values, err := c.FormParams()
	if err != nil {
		return url.Values{}
	}
	return values
}

var _ echo.Renderer = (*renderer)(nil)
