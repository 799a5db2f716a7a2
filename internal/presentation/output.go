package presentation

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer is content placed between header and footer.
type Renderer interface {
	Render(w io.Writer) error
}

// Output writes the page chrome. It is safe for concurrent use.
type Output struct {
	tmpl *template.Template
}

// NewOutput parses the embedded templates.
func NewOutput() (*Output, error) {
	tmpl, err := template.New("presentation").
		Funcs(sprig.HtmlFuncMap()).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse presentation templates")
	}
	return &Output{tmpl: tmpl}, nil
}

type headerView struct {
	Title       string
	Brand       string
	Home        string
	Stylesheets []string
	Menu        []navEntry
}

// Header writes the document head, navbar and opens the main container.
func (o *Output) Header(w io.Writer, page *Page) error {
	view := headerView{
		Title:       page.Title,
		Brand:       page.Brand,
		Home:        "/",
		Stylesheets: page.Stylesheets,
		Menu:        page.menu(page.Navbar),
	}
	if err := o.tmpl.ExecuteTemplate(w, "header", view); err != nil {
		return errors.Wrapf(err, "failed to render header for %s", page.URL)
	}
	return nil
}

// Heading writes an escaped <hN> element; level is clamped to 1..6.
func (o *Output) Heading(w io.Writer, text string, level int) error {
	level = max(1, min(level, 6))
	_, err := fmt.Fprintf(w, "<h%d>%s</h%d>\n", level, template.HTMLEscapeString(text), level)
	return errors.Wrap(err, "failed to write heading")
}

// Footer closes the container and loads the page scripts.
func (o *Output) Footer(w io.Writer, page *Page) error {
	if err := o.tmpl.ExecuteTemplate(w, "footer", page); err != nil {
		return errors.Wrapf(err, "failed to render footer for %s", page.URL)
	}
	return nil
}

// Table writes t with the table template.
func (o *Output) Table(w io.Writer, t *Table) error {
	if err := o.tmpl.ExecuteTemplate(w, "table", t.view()); err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	return nil
}

// Page writes a complete document: header, a level 1 heading when heading
// is not empty, every content block and the footer.
func (o *Output) Page(w io.Writer, page *Page, heading string, content ...Renderer) error {
	if err := o.Header(w, page); err != nil {
		return err
	}
	if heading != "" {
		if err := o.Heading(w, heading, 1); err != nil {
			return err
		}
	}
	for _, c := range content {
		if err := c.Render(w); err != nil {
			return err
		}
	}
	return o.Footer(w, page)
}
