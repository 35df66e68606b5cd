package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/logger"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/store"
)

// Pane represents which pane is focused
type Pane int

const (
	PaneSidebar Pane = iota
	PaneDetail
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeHelp
)

// Tab selects the table shown under the summary cards
type Tab int

const (
	TabQuotes Tab = iota
	TabPayments
	TabExpenses
)

var tabTitles = []string{"Devis", "Paiements", "Dépenses"}

// statusFilters is the cycle walked by the status filter key. The empty
// status shows every project.
var statusFilters = append([]model.ProjectStatus{""}, model.ProjectStatuses...)

// Options tunes the dashboard
type Options struct {
	// RefreshInterval polls the store in the background. Zero disables polling.
	RefreshInterval time.Duration
	// ExportDir receives PDF reports. Empty means the working directory.
	ExportDir string
	// Now is the clock used for report dates; defaults to time.Now.
	Now func() time.Time
}

// Model is the main TUI model
type Model struct {
	store     store.Store
	refresher *store.Refresher
	loadedCh  chan model.Snapshot // Fed by the refresher after each reload
	opts      Options

	snap     model.Snapshot
	status   store.Status
	overview finance.Overview
	projects []model.Project // snap.Projects after filtering

	// UI state
	width      int
	height     int
	pane       Pane
	mode       Mode
	tab        Tab
	projCursor int
	table      table.Model

	// Filters
	input        textinput.Model
	searchText   string
	statusFilter int // Index into statusFilters

	message string
}

// NewModel creates the dashboard over st. The first snapshot is fetched by
// Init, so the model starts in the loading state.
func NewModel(st store.Store, opts Options) Model {
	logger.Info("Initializing TUI model", logger.F("mode", st.Mode()))
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ti := textinput.New()
	ti.Placeholder = "nom ou client..."
	ti.CharLimit = 64
	ti.Width = 40

	m := Model{
		store:    st,
		opts:     opts,
		status:   store.Status{Loading: true},
		pane:     PaneSidebar,
		mode:     ModeNormal,
		tab:      TabQuotes,
		input:    ti,
		table:    newTable(),
		loadedCh: make(chan model.Snapshot, 1), // Buffered to avoid blocking
	}

	m.refresher = store.NewRefresher(st, opts.RefreshInterval)
	ch := m.loadedCh
	m.refresher.SetOnLoad(func(snap model.Snapshot) {
		logger.Debug("Refresh callback triggered")
		// Keep only the newest snapshot
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	})

	return m
}

// setSnapshot replaces the data and re-derives everything shown from it
func (m *Model) setSnapshot(snap model.Snapshot) {
	selected := ""
	if p := m.currentProject(); p != nil {
		selected = p.ID
	}

	m.snap = snap
	m.status = store.Status{}
	m.overview = finance.BuildOverview(snap)
	m.applyFilter()

	// Stay on the same project across reloads
	for i, p := range m.projects {
		if p.ID == selected {
			m.projCursor = i
			break
		}
	}
	m.refreshTable()
}

// applyFilter recomputes the visible project list
func (m *Model) applyFilter() {
	m.projects = finance.FilterProjects(m.snap.Projects, m.searchText, statusFilters[m.statusFilter])
	if m.projCursor >= len(m.projects) {
		m.projCursor = max(len(m.projects)-1, 0)
	}
}

func (m *Model) currentProject() *model.Project {
	if m.projCursor < len(m.projects) {
		return &m.projects[m.projCursor]
	}
	return nil
}

func (m *Model) currentSummary() finance.Summary {
	if p := m.currentProject(); p != nil {
		return finance.SummarizeProject(*p, m.snap)
	}
	return finance.Summary{}
}
