package gen

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*
var templateFS embed.FS

var crudFuncs = template.FuncMap{
	"formField": renderFormField,
}

var (
	tmplIndex  = mustParseTemplate("index.php.tmpl", nil)
	tmplHeader = mustParseTemplate("header.php.tmpl", nil)
	tmplFooter = mustParseTemplate("footer.php.tmpl", nil)
	tmplLogin  = mustParseTemplate("login.php.tmpl", nil)
	tmplLogout = mustParseTemplate("logout.php.tmpl", nil)
	tmplAuth   = mustParseTemplate("auth.php.tmpl", nil)
	tmplConfig = mustParseTemplate("config.php.tmpl", nil)
	tmplCRUD   = mustParseTemplate("crud.php.tmpl", crudFuncs)
	tmplStyle  = mustParseTemplate("style.css.tmpl", nil)
)

func mustParseTemplate(name string, funcMap template.FuncMap) *template.Template {
	data, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		panic(fmt.Sprintf("reading template %s: %v", name, err))
	}
	tmpl, err := template.New(name).Funcs(funcMap).Parse(string(data))
	if err != nil {
		panic(fmt.Sprintf("parsing template %s: %v", name, err))
	}
	return tmpl
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
