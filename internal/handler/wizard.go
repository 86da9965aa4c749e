// Package handler exposes the generation wizard over HTTP: database and
// logo uploads, table and column configuration, project persistence, and
// the final emission with its progress stream.
package handler

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stibata/crudgen/internal/activity"
	"github.com/stibata/crudgen/internal/config"
	"github.com/stibata/crudgen/internal/gen"
	"github.com/stibata/crudgen/internal/infer"
	"github.com/stibata/crudgen/internal/project"
	"github.com/stibata/crudgen/internal/schema"
	"github.com/stibata/crudgen/internal/wizard"
)

const maxUploadBytes = 64 << 20

var databaseExtensions = map[string]bool{
	".db":      true,
	".sqlite":  true,
	".sqlite3": true,
}

var logoExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
}

// Handler serves the wizard API.
type Handler struct {
	Sessions  *wizard.Manager
	Activity  activity.Store
	DataDir   string
	OutputDir string
	Logger    *log.Logger
}

// New creates a wizard handler storing uploads under dataDir and generated
// applications under outputDir.
func New(sessions *wizard.Manager, store activity.Store, dataDir, outputDir string) *Handler {
	return &Handler{
		Sessions:  sessions,
		Activity:  store,
		DataDir:   dataDir,
		OutputDir: outputDir,
		Logger:    log.New(os.Stderr, "[wizard] ", log.LstdFlags),
	}
}

// record appends a session activity entry. Logging the failure is all we
// can do; activity is best-effort and never fails a request.
func (h *Handler) record(ctx context.Context, sessionID, eventType, summary, detail string) {
	if h.Activity == nil {
		return
	}
	err := h.Activity.Record(ctx, activity.Entry{
		SessionID:  sessionID,
		EventType:  eventType,
		OccurredAt: time.Now(),
		Summary:    summary,
		Detail:     detail,
	})
	if err != nil {
		h.Logger.Printf("session %s: recording activity: %v", sessionID, err)
	}
}

// RegisterRoutes mounts the wizard API on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Post("/logo", h.UploadLogo)
			r.Get("/tables", h.ListTables)
			r.Post("/columns", h.SelectColumns)
			r.Post("/generate", h.Generate)
			r.Get("/progress", h.StreamProgress)
			r.Get("/activity", h.SessionActivity)
		})
		r.Post("/projects", h.SaveProject)
		r.Post("/projects/load", h.LoadProject)
	})
}

type tableSummary struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	ColumnCount int    `json:"column_count"`
}

func tableSummaries(tables []schema.Table) []tableSummary {
	out := make([]tableSummary, 0, len(tables))
	for _, t := range tables {
		out = append(out, tableSummary{
			Name:        t.Name,
			DisplayName: infer.DisplayTitle(t.Name),
			ColumnCount: len(t.Columns),
		})
	}
	return out
}

// CreateSession accepts a database upload, introspects it, and opens a new
// wizard session. A database that cannot be read is rejected outright; a
// readable database with no tables yields a session with an empty list.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	path, filename, ok := h.saveUpload(w, r, "db_file", databaseExtensions)
	if !ok {
		return
	}

	in, err := schema.Open(path)
	if err != nil {
		os.Remove(path)
		writeError(w, http.StatusUnprocessableEntity, "INVALID_DATABASE", err.Error())
		return
	}
	tables, err := in.Snapshot(r.Context())
	in.Close()
	if err != nil {
		os.Remove(path)
		writeError(w, http.StatusUnprocessableEntity, "INVALID_DATABASE", err.Error())
		return
	}

	sess := h.Sessions.Create()
	sess.AttachDatabase(path, filename, tables)
	h.Logger.Printf("session %s: %s uploaded, %d tables", sess.ID, filename, len(tables))
	h.record(r.Context(), sess.ID, activity.EventSessionCreated,
		fmt.Sprintf("%s uploaded, %d tables found", filename, len(tables)), "")

	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"step":       sess.Step(),
		"tables":     tableSummaries(tables),
	})
}

// UploadLogo stores a logo image on the session.
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	path, filename, ok := h.saveUpload(w, r, "logo_file", logoExtensions)
	if !ok {
		return
	}
	sess.AttachLogo(path, filename)
	h.record(r.Context(), sess.ID, activity.EventLogoUploaded, filename+" uploaded", "")
	writeJSON(w, http.StatusOK, map[string]string{"logo_filename": filename})
}

// ListTables returns the tables of the uploaded database.
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"step":   sess.Step(),
		"tables": tableSummaries(sess.Tables()),
	})
}

type columnInfo struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Required   bool              `json:"required"`
	PrimaryKey bool              `json:"primary_key"`
	Control    infer.ControlKind `json:"control"`
	Title      string            `json:"title"`
	References string            `json:"references,omitempty"`
}

type tableColumns struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Columns     []columnInfo `json:"columns"`
}

// SelectColumns narrows the session to the requested tables and returns
// their column metadata with inferred controls and default titles.
func (h *Handler) SelectColumns(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		Tables []string `json:"tables"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := sess.SelectTables(req.Tables); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_SELECTION", err.Error())
		return
	}
	h.record(r.Context(), sess.ID, activity.EventTablesSelected,
		fmt.Sprintf("%d tables selected", len(req.Tables)), strings.Join(req.Tables, ", "))

	cfg := sess.Config()
	out := make([]tableColumns, 0, len(req.Tables))
	for _, name := range req.Tables {
		tab, _ := sess.TableSchemaFor(name)
		tc := cfg.Tables[name]

		cols := make([]columnInfo, 0, len(tab.Columns))
		for _, col := range tab.Columns {
			info := columnInfo{
				Name:       col.Name,
				Type:       col.DeclaredType,
				Required:   col.NotNull,
				PrimaryKey: col.PrimaryKey,
				Control:    tc.Control(col),
				Title:      tc.Title(col.Name),
			}
			if fk := tab.ForeignKeyFor(col.Name); fk != nil {
				info.Control = infer.ControlSelect
				info.References = fk.ToTable
			}
			cols = append(cols, info)
		}
		out = append(out, tableColumns{
			Name:        name,
			DisplayName: tc.DisplayName,
			Columns:     cols,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"step":   sess.Step(),
		"tables": out,
	})
}

type generateRequest struct {
	AppTitle     string                        `json:"app_title"`
	PrimaryColor string                        `json:"primary_color"`
	TablesConfig map[string]config.TableConfig `json:"tables_config"`
}

// Generate runs the emitter for the session, streaming progress to any
// subscribed sockets.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	sess.SetAppearance(req.AppTitle, req.PrimaryColor)
	for name, tc := range req.TablesConfig {
		if err := sess.SetTableConfig(name, tc); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
			return
		}
	}

	cfg, err := sess.BuildConfig()
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}

	outputDir := filepath.Join(h.OutputDir, "app_"+sess.ID)
	feed := sess.Progress()
	feed.Reset()

	em := gen.New(outputDir)
	em.Progress = func(step, detail string) {
		feed.Publish(wizard.ProgressEvent{Step: step, Detail: detail})
	}

	result, err := em.Emit(r.Context(), cfg)
	if err != nil {
		h.Logger.Printf("session %s: generation failed: %v", sess.ID, err)
		feed.Publish(wizard.ProgressEvent{Step: "failed", Error: err.Error()})
		h.record(r.Context(), sess.ID, activity.EventGenerationFailed, "generation failed", err.Error())
		writeError(w, http.StatusUnprocessableEntity, "GENERATION_FAILED", err.Error())
		return
	}

	sess.MarkGenerated()
	feed.Publish(wizard.ProgressEvent{Step: "complete", Detail: outputDir, Done: true})
	h.Logger.Printf("session %s: generated %d pages in %s", sess.ID, len(result.Pages), outputDir)
	h.record(r.Context(), sess.ID, activity.EventGenerationRun,
		fmt.Sprintf("%d pages generated", len(result.Pages)), outputDir)

	writeJSON(w, http.StatusOK, map[string]any{
		"output_dir": result.OutputDir,
		"pages":      result.Pages,
	})
}

// SaveProject persists the session's configuration as a project file.
func (h *Handler) SaveProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Filename  string `json:"filename"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	sess := h.Sessions.Get(req.SessionID)
	if sess == nil {
		writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found or expired")
		return
	}

	cfg := sess.Config()
	cfg.DBFileName = sess.DBFileName()
	cfg.LogoFileName = sess.LogoFileName()
	cfg.Normalize()

	now := time.Now()
	snap := project.FromConfig(&cfg, now)

	dir := filepath.Join(h.DataDir, "projects")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	filename, err := project.Save(dir, snap, req.Filename, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FILENAME", err.Error())
		return
	}

	h.record(r.Context(), sess.ID, activity.EventProjectSaved, filename+" saved", "")
	writeJSON(w, http.StatusCreated, map[string]any{
		"filename": filename,
		"project":  snap,
	})
}

// LoadProject parses an uploaded project file and, when a session is named,
// overlays it onto that session. Tables missing from the session's database
// are dropped and reported.
func (h *Handler) LoadProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var data []byte
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, ferr := r.FormFile("project_file")
		if ferr != nil {
			writeError(w, http.StatusBadRequest, "MISSING_FILE", "project_file is required")
			return
		}
		defer file.Close()
		data, err = io.ReadAll(file)
	} else {
		data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	snap, err := project.Parse(data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "INVALID_PROJECT", err.Error())
		return
	}

	var dropped []string
	if id := r.URL.Query().Get("session_id"); id != "" {
		sess := h.Sessions.Get(id)
		if sess == nil {
			writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found or expired")
			return
		}
		tables := make(map[string]config.TableConfig, len(snap.TablesConfig))
		for name, tc := range snap.TablesConfig {
			if _, ok := sess.TableSchemaFor(name); !ok {
				dropped = append(dropped, name)
				continue
			}
			tables[name] = tc
		}
		sess.ApplyProject(snap.AppTitle, snap.PrimaryColor, tables)
		h.record(r.Context(), sess.ID, activity.EventProjectLoaded,
			fmt.Sprintf("project applied, %d tables kept", len(tables)), strings.Join(dropped, ", "))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"project":        snap,
		"dropped_tables": dropped,
	})
}

// SessionActivity returns what happened on a session, newest first.
func (h *Handler) SessionActivity(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.Activity == nil {
		writeJSON(w, http.StatusOK, map[string]any{"entries": []activity.Entry{}, "total": 0})
		return
	}

	opts := activity.QueryOptions{}
	if v := r.URL.Query().Get("type"); v != "" {
		opts.Types = strings.Split(v, ",")
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = n
		}
	}

	entries, total, err := h.Activity.BySession(r.Context(), sess.ID, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "total": total})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return nil, false
	}
	sess := h.Sessions.Get(id)
	if sess == nil {
		writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found or expired")
		return nil, false
	}
	return sess, true
}

// saveUpload stores one multipart file under the uploads directory, keyed
// by a fresh UUID so concurrent uploads never collide.
func (h *Handler) saveUpload(w http.ResponseWriter, r *http.Request, field string, allowed map[string]bool) (path, filename string, ok bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", err.Error())
		return "", "", false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_FILE", field+" is required")
		return "", "", false
	}
	defer file.Close()

	filename = filepath.Base(header.Filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowed[ext] {
		writeError(w, http.StatusBadRequest, "INVALID_FILE_TYPE",
			fmt.Sprintf("file extension %q is not accepted", ext))
		return "", "", false
	}

	dir := filepath.Join(h.DataDir, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return "", "", false
	}

	path = filepath.Join(dir, uuid.New().String()+"_"+filename)
	out, err := os.Create(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return "", "", false
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(path)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return "", "", false
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return "", "", false
	}
	return path, filename, true
}
