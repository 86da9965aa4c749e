package gen

import "text/template"

// MenuItem is one entry of the generated navbar's table dropdown.
type MenuItem struct {
	File        string
	DisplayName string
}

// sharedPageData feeds every page template that is not table-specific.
type sharedPageData struct {
	AppTitle     string
	PrimaryColor string
	LogoPath     string
	DBFile       string
	MenuItems    []MenuItem
}

// sharedPages maps templates to their output filenames, emitted in order.
var sharedPages = []struct {
	tmpl *template.Template
	file string
}{
	{tmplIndex, "index.php"},
	{tmplHeader, "header.php"},
	{tmplFooter, "footer.php"},
	{tmplLogin, "login.php"},
	{tmplLogout, "logout.php"},
	{tmplAuth, "auth.php"},
	{tmplConfig, "config.php"},
}
