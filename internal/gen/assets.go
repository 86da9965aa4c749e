package gen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// assetDirs is the directory tree every generated application ships with.
var assetDirs = []string{
	"assets/css",
	"assets/js",
	"assets/db",
	"assets/img",
	"assets/webfonts",
}

func (e *Emitter) makeDirs() error {
	for _, d := range assetDirs {
		if err := os.MkdirAll(filepath.Join(e.OutputDir, d), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", d, err)
		}
	}
	return nil
}

// emitStyles renders the application stylesheet with the chosen primary color.
func (e *Emitter) emitStyles(primaryColor string) error {
	content, err := renderTemplate(tmplStyle, struct{ PrimaryColor string }{primaryColor})
	if err != nil {
		return err
	}
	return e.writeFile(filepath.Join("assets", "css", "style.css"), content)
}

// emitLanguageFile ships the Spanish DataTables strings as a static asset.
func (e *Emitter) emitLanguageFile() error {
	data, err := templateFS.ReadFile("templates/spanish.json")
	if err != nil {
		return fmt.Errorf("reading language file: %w", err)
	}
	return e.writeFile(filepath.Join("assets", "js", "Spanish.json"), string(data))
}

func (e *Emitter) writeFile(rel, content string) error {
	path := filepath.Join(e.OutputDir, rel)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
