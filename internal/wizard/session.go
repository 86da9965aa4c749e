package wizard

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stibata/crudgen/internal/config"
	"github.com/stibata/crudgen/internal/infer"
	"github.com/stibata/crudgen/internal/schema"
)

// Session holds the state of one generation flow: the uploaded database,
// its introspected schema, and the configuration built up step by step.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	lastActiveAt time.Time
	step         Step
	dbPath       string
	dbFileName   string
	logoPath     string
	logoFileName string
	tables       []schema.Table
	cfg          config.GenerationConfig

	progress *progressFeed
}

// NewSession creates a session at the connect step.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		CreatedAt:    now,
		lastActiveAt: now,
		step:         StepConnect,
		cfg:          config.GenerationConfig{Tables: map[string]config.TableConfig{}},
		progress:     newProgressFeed(),
	}
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActiveAt = time.Now()
	s.mu.Unlock()
}

// IsExpired returns true if the session has exceeded the given max age.
func (s *Session) IsExpired(maxAge time.Duration) bool {
	return time.Since(s.CreatedAt) > maxAge
}

// IsIdle returns true if the session has been idle longer than the timeout.
// The cleanup loop calls this concurrently with request handling.
func (s *Session) IsIdle(timeout time.Duration) bool {
	s.mu.Lock()
	last := s.lastActiveAt
	s.mu.Unlock()
	return time.Since(last) > timeout
}

// Step returns the current wizard step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// AttachDatabase records an uploaded database and its introspected tables,
// moving the flow to table selection. Any configuration from a previous
// upload is discarded.
func (s *Session) AttachDatabase(path, filename string, tables []schema.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbPath = path
	s.dbFileName = filename
	s.tables = tables
	s.cfg.Tables = map[string]config.TableConfig{}
	s.step = StepSelectTables
}

// AttachLogo records an uploaded logo image.
func (s *Session) AttachLogo(path, filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoPath = path
	s.logoFileName = filename
}

// DBFileName returns the original name of the uploaded database file.
func (s *Session) DBFileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dbFileName
}

// LogoFileName returns the original name of the uploaded logo, if any.
func (s *Session) LogoFileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoFileName
}

// Tables returns the introspected schema of the uploaded database.
func (s *Session) Tables() []schema.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables
}

// TableSchemaFor looks up one introspected table by name.
func (s *Session) TableSchemaFor(name string) (*schema.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tables {
		if s.tables[i].Name == name {
			return &s.tables[i], true
		}
	}
	return nil, false
}

// SelectTables narrows the flow to the named tables and seeds their
// configuration with every column selected and derived display names.
// Previously configured tables keep their configuration when re-selected.
func (s *Session) SelectTables(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.step.CanMoveTo(StepConfigureColumns) && s.step != StepConfigureColumns {
		return fmt.Errorf("wizard: cannot select tables at step %q", s.step)
	}
	if len(names) == 0 {
		return fmt.Errorf("wizard: no tables selected")
	}

	known := make(map[string]*schema.Table, len(s.tables))
	for i := range s.tables {
		known[s.tables[i].Name] = &s.tables[i]
	}

	next := make(map[string]config.TableConfig, len(names))
	for _, name := range names {
		tab, ok := known[name]
		if !ok {
			return fmt.Errorf("wizard: table %q not present in uploaded database", name)
		}
		if tc, ok := s.cfg.Tables[name]; ok {
			next[name] = tc
			continue
		}
		cols := make([]string, 0, len(tab.Columns))
		for _, c := range tab.Columns {
			cols = append(cols, c.Name)
		}
		next[name] = config.TableConfig{
			DisplayName:     infer.DisplayTitle(name),
			SelectedColumns: cols,
			ColumnTitles:    map[string]string{},
			ControlTypes:    map[string]infer.ControlKind{},
		}
	}

	s.cfg.Tables = next
	s.step = StepConfigureColumns
	return nil
}

// SetTableConfig replaces the configuration of one selected table.
func (s *Session) SetTableConfig(table string, tc config.TableConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cfg.Tables[table]; !ok {
		return fmt.Errorf("wizard: table %q is not selected", table)
	}
	s.cfg.Tables[table] = tc
	return nil
}

// SetAppearance records the application title and primary color.
func (s *Session) SetAppearance(appTitle, primaryColor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.AppTitle = appTitle
	s.cfg.PrimaryColor = primaryColor
}

// Config returns a copy of the configuration built so far, without the
// file paths only BuildConfig fills in.
func (s *Session) Config() config.GenerationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() config.GenerationConfig {
	cfg := s.cfg
	cfg.Tables = make(map[string]config.TableConfig, len(s.cfg.Tables))
	for name, tc := range s.cfg.Tables {
		cfg.Tables[name] = tc
	}
	return cfg
}

// ApplyProject overlays a loaded project snapshot onto the session. Tables
// absent from the uploaded database are dropped by the caller's validation.
func (s *Session) ApplyProject(appTitle, primaryColor string, tables map[string]config.TableConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.AppTitle = appTitle
	s.cfg.PrimaryColor = primaryColor
	if tables != nil {
		s.cfg.Tables = tables
		if s.step == StepSelectTables {
			s.step = StepConfigureColumns
		}
	}
}

// BuildConfig assembles the complete generation config and advances the
// flow to review. It fails if no database was uploaded or nothing is
// selected; full schema validation happens in the emitter.
func (s *Session) BuildConfig() (*config.GenerationConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dbPath == "" {
		return nil, fmt.Errorf("wizard: no database uploaded")
	}
	if len(s.cfg.Tables) == 0 {
		return nil, fmt.Errorf("wizard: no tables selected")
	}

	cfg := s.snapshotLocked()
	cfg.DBFilePath = s.dbPath
	cfg.DBFileName = s.dbFileName
	cfg.LogoPath = s.logoPath
	cfg.LogoFileName = s.logoFileName
	cfg.Normalize()

	s.step = StepReview
	return &cfg, nil
}

// MarkGenerated records a completed emission.
func (s *Session) MarkGenerated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = StepGenerated
}

// Progress returns the session's generation progress feed.
func (s *Session) Progress() *progressFeed {
	return s.progress
}

// removeFiles deletes the uploaded artifacts backing this session.
func (s *Session) removeFiles() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dbPath != "" {
		os.Remove(s.dbPath)
	}
	if s.logoPath != "" {
		os.Remove(s.logoPath)
	}
}

// Manager handles session creation, lookup, and cleanup.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxAge      time.Duration
	idleTimeout time.Duration
}

// NewManager creates a session manager with the given timeouts.
func NewManager(maxAge, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxAge:      maxAge,
		idleTimeout: idleTimeout,
	}
}

// Create creates a new session and returns it.
func (m *Manager) Create() *Session {
	s := NewSession()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get retrieves a session by ID. Returns nil if not found or expired.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout) {
		m.Remove(id)
		return nil
	}
	s.Touch()
	return s
}

// Remove deletes a session along with its uploaded files.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.removeFiles()
	}
}

// Cleanup removes all expired and idle sessions.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range stale {
		s.removeFiles()
	}
}
