// Package gen turns an approved generation config into a self-contained PHP
// application on disk: shared pages, one CRUD page per table, and static
// assets. Emission is not transactional; a failed run leaves partial output
// and the next run overwrites it.
package gen

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/stibata/crudgen/internal/config"
	"github.com/stibata/crudgen/internal/schema"
)

// Progress receives one event per emission step, in order. The wizard
// streams these to the browser while generation runs.
type Progress func(step, detail string)

// Emitter writes a generated application under OutputDir.
type Emitter struct {
	OutputDir string
	Logger    *log.Logger
	Progress  Progress
}

// New returns an Emitter logging to stderr.
func New(outputDir string) *Emitter {
	return &Emitter{
		OutputDir: outputDir,
		Logger:    log.New(os.Stderr, "[gen] ", log.LstdFlags),
	}
}

// Result lists what one emission produced.
type Result struct {
	OutputDir string
	Pages     []string
}

// Emit validates cfg against the source database and writes the complete
// application. Rendering the same config against the same database twice
// produces byte-identical output.
func (e *Emitter) Emit(ctx context.Context, cfg *config.GenerationConfig) (*Result, error) {
	cfg.Normalize()

	src, err := schema.Open(cfg.DBFilePath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	tables, err := src.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(tables); err != nil {
		return nil, err
	}

	e.report("prepare", "creating output directories")
	if err := e.makeDirs(); err != nil {
		return nil, err
	}

	// The database ships with the application and is copied before any
	// per-table page is generated, so pages are built against the copy
	// they will read at runtime.
	dbTarget := filepath.Join(e.OutputDir, "assets", "db", cfg.DBFileName)
	dbForStructure := dbTarget
	if err := copyFile(cfg.DBFilePath, dbTarget); err != nil {
		e.Logger.Printf("copying database to %s: %v; generating from original file", dbTarget, err)
		dbForStructure = cfg.DBFilePath
	}
	e.report("database", cfg.DBFileName)

	logoRel := ""
	if cfg.LogoPath != "" && cfg.LogoFileName != "" {
		target := filepath.Join(e.OutputDir, "assets", "img", cfg.LogoFileName)
		if err := copyFile(cfg.LogoPath, target); err != nil {
			e.Logger.Printf("copying logo to %s: %v; omitting logo", target, err)
		} else {
			logoRel = "assets/img/" + cfg.LogoFileName
		}
	}

	names := make([]string, 0, len(cfg.Tables))
	for name := range cfg.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	shared := sharedPageData{
		AppTitle:     cfg.AppTitle,
		PrimaryColor: cfg.PrimaryColor,
		LogoPath:     logoRel,
		DBFile:       "assets/db/" + cfg.DBFileName,
	}
	for _, name := range names {
		shared.MenuItems = append(shared.MenuItems, MenuItem{
			File:        "crud_" + name + ".php",
			DisplayName: cfg.Tables[name].DisplayName,
		})
	}

	result := &Result{OutputDir: e.OutputDir}
	for _, page := range sharedPages {
		content, err := renderTemplate(page.tmpl, shared)
		if err != nil {
			return nil, err
		}
		if err := e.writeFile(page.file, content); err != nil {
			return nil, err
		}
		result.Pages = append(result.Pages, page.file)
	}
	e.report("pages", "shared pages written")

	copied, err := schema.Open(dbForStructure)
	if err != nil {
		return nil, err
	}
	defer copied.Close()

	for _, name := range names {
		tab, err := copied.TableSchema(ctx, name)
		if err != nil {
			return nil, err
		}
		data, err := buildCRUDPage(ctx, copied, tab, cfg.Tables[name], cfg)
		if err != nil {
			return nil, err
		}
		content, err := renderTemplate(tmplCRUD, data)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		file := "crud_" + name + ".php"
		if err := e.writeFile(file, content); err != nil {
			return nil, err
		}
		result.Pages = append(result.Pages, file)
		e.report("table", name)
	}

	if err := e.emitStyles(cfg.PrimaryColor); err != nil {
		return nil, err
	}
	if err := e.emitLanguageFile(); err != nil {
		return nil, err
	}
	e.report("assets", "style.css, Spanish.json")

	return result, nil
}

func (e *Emitter) report(step, detail string) {
	if e.Progress != nil {
		e.Progress(step, detail)
	}
	if e.Logger != nil {
		e.Logger.Printf("%s: %s", step, detail)
	}
}
