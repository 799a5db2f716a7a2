// Package presentation renders the HTML chrome of the admin pages.
//
// A Page carries the per-request state (URL, title, stylesheets, navbar)
// and is passed explicitly to Output, which writes the header, headings
// and footer around application content such as a record Table.
package presentation

import "strings"

// Bootstrap assets used by the default page.
const (
	BootstrapCSS   = "//maxcdn.bootstrapcdn.com/bootstrap/3.2.0/css/bootstrap.min.css"
	BootstrapTheme = "//maxcdn.bootstrapcdn.com/bootstrap/3.2.0/css/bootstrap-theme.min.css"
	BootstrapJS    = "//maxcdn.bootstrapcdn.com/bootstrap/3.2.0/js/bootstrap.min.js"
	JQueryJS       = "//code.jquery.com/jquery-1.11.1.min.js"
)

// NavItem is one navbar entry. Items with Children render as a dropdown;
// Divider and Header items only make sense inside a dropdown.
type NavItem struct {
	Name     string
	URL      string
	Children []NavItem
	Divider  bool
	Header   bool
}

func Link(name, url string) NavItem {
	return NavItem{Name: name, URL: url}
}

func Dropdown(name string, children ...NavItem) NavItem {
	return NavItem{Name: name, Children: children}
}

func Divider() NavItem {
	return NavItem{Divider: true}
}

func Header(text string) NavItem {
	return NavItem{Name: text, Header: true}
}

// Page is the state of the page being rendered.
type Page struct {
	URL         string
	Title       string
	Brand       string
	Stylesheets []string
	Scripts     []string
	Navbar      []NavItem
}

// NewPage returns a page with the bootstrap assets and a Home link.
func NewPage(url, title string) *Page {
	return &Page{
		URL:         url,
		Title:       title,
		Brand:       "CLA",
		Stylesheets: []string{BootstrapCSS, BootstrapTheme},
		Scripts:     []string{JQueryJS, BootstrapJS},
		Navbar:      []NavItem{Link("Home", "/")},
	}
}

func (p *Page) AddStylesheet(href string) {
	p.Stylesheets = append(p.Stylesheets, href)
}

func (p *Page) AddNav(items ...NavItem) {
	p.Navbar = append(p.Navbar, items...)
}

// IsActive reports whether url points at this page. Query strings and a
// trailing slash are ignored.
func (p *Page) IsActive(url string) bool {
	return normalizePath(url) == normalizePath(p.URL)
}

func normalizePath(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	if len(url) > 1 {
		url = strings.TrimSuffix(url, "/")
	}
	return url
}

type navEntry struct {
	Name     string
	URL      string
	Active   bool
	Divider  bool
	Header   bool
	Children []navEntry
}

func (p *Page) menu(items []NavItem) []navEntry {
	out := make([]navEntry, 0, len(items))
	for _, it := range items {
		out = append(out, navEntry{
			Name:     it.Name,
			URL:      it.URL,
			Active:   it.URL != "" && p.IsActive(it.URL),
			Divider:  it.Divider,
			Header:   it.Header,
			Children: p.menu(it.Children),
		})
	}
	return out
}
