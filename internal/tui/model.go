// Package tui is the terminal browser of the collection. It drives a
// catalog.Pipeline from key presses: search, region, sort and photo column.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/mineraly/internal/catalog"
	"github.com/JonMunkholm/mineraly/internal/source"
)

// Options tune the browser.
type Options struct {
	Title     string
	PhotosDir string // photo paths are shown relative to this directory
	PhotoExt  string
	Timeout   time.Duration // per fetch; 0 means no limit
}

// loadedMsg carries the result of a fetch.
type loadedMsg struct {
	text string
	err  error
}

// Model is the bubbletea model of the browser.
type Model struct {
	src  source.Source
	opts Options

	pipeline catalog.Pipeline
	regions  []string
	region   int // index into regions, -1 for all

	input     textinput.Model
	searching bool
	sortPick  bool
	photos    bool

	cursor int
	offset int
	width  int
	height int

	loading bool
	status  string
}

// New creates a browser reading src. The first fetch starts with Init.
func New(src source.Source, opts Options) Model {
	in := textinput.New()
	in.Prompt = "/"
	in.Placeholder = "hledat…"
	in.CharLimit = 200

	if opts.PhotoExt == "" {
		opts.PhotoExt = ".jpg"
	}
	if opts.Title == "" {
		opts.Title = src.Name()
	}

	return Model{
		src:     src,
		opts:    opts,
		region:  -1,
		input:   in,
		loading: true,
		status:  statusLoading,
	}
}

// Init starts the first fetch.
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

// fetch reads the source in the background.
func (m Model) fetch() tea.Cmd {
	src, timeout := m.src, m.opts.Timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		text, err := src.Fetch(ctx)
		return loadedMsg{text: text, err: err}
	}
}

// Pipeline returns the current pipeline.
func (m Model) Pipeline() catalog.Pipeline { return m.pipeline }

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return m.applyLoad(msg), nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.sortPick {
			m.sortPick = false
			if f, ok := pickField(msg.String()); ok {
				m = m.sortBy(f)
			}
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) applyLoad(msg loadedMsg) Model {
	m.loading = false
	if msg.err != nil {
		m.status = statusFailed + " " + msg.err.Error()
		return m
	}
	next, ok := m.pipeline.Reload(msg.text)
	if !ok {
		m.status = statusMalformed
		return m
	}

	// Keep the selected region when it still exists.
	selected := m.selectedRegion()
	m.pipeline = next
	m.regions = next.Regions()
	m.region = -1
	for i, r := range m.regions {
		if r == selected {
			m.region = i
		}
	}
	if selected != "" && m.region == -1 {
		m.pipeline = m.pipeline.WithCriteria(m.criteria())
	}

	m.status = ""
	m.clampCursor()
	return m
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.input.Blur()
		m.input.SetValue("")
		return m.refilter(), nil
	case tea.KeyEnter:
		m.searching = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m.refilter(), cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "/":
		m.searching = true
		cmd := m.input.Focus()
		return m, cmd
	case "r":
		m = m.cycleRegion(1)
	case "R":
		m = m.cycleRegion(-1)
	case "p":
		m.photos = !m.photos
	case "s":
		m.sortPick = true
	case "ctrl+r":
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.status = statusLoading
		return m, m.fetch()
	case "j", "down":
		m.cursor++
	case "k", "up":
		m.cursor--
	case "pgdown", " ":
		m.cursor += m.pageSize()
	case "pgup":
		m.cursor -= m.pageSize()
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.pipeline.View()) - 1
	default:
		if f, ok := digitField(key); ok {
			m = m.sortBy(f)
		}
	}
	m.clampCursor()
	return m, nil
}

func (m Model) selectedRegion() string {
	if m.region < 0 || m.region >= len(m.regions) {
		return ""
	}
	return m.regions[m.region]
}

func (m Model) criteria() catalog.Criteria {
	return catalog.Criteria{Region: m.selectedRegion(), Query: m.input.Value()}
}

// cycleRegion steps through all regions and back to no region filter.
func (m Model) cycleRegion(step int) Model {
	if !m.pipeline.Loaded() {
		return m
	}
	n := len(m.regions) + 1
	m.region = ((m.region+1+step)%n+n)%n - 1
	return m.refilter()
}

func (m Model) refilter() Model {
	if !m.pipeline.Loaded() {
		return m
	}
	m.pipeline = m.pipeline.WithCriteria(m.criteria())
	m.cursor, m.offset = 0, 0
	return m
}

func (m Model) sortBy(f catalog.Field) Model {
	if next, ok := m.pipeline.SortBy(f); ok {
		m.pipeline = next
	}
	return m
}

// pageSize is the number of table rows that fit the window.
func (m Model) pageSize() int {
	const chrome = 7 // title, criteria, help and table borders
	if m.height <= chrome {
		return 10
	}
	return m.height - chrome
}

func (m *Model) clampCursor() {
	n := len(m.pipeline.View())
	m.cursor = max(0, min(m.cursor, n-1))
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	m.offset = max(0, min(m.offset, max(0, n-page)))
}

// Run starts the browser on the terminal and blocks until the user quits.
func Run(ctx context.Context, src source.Source, opts Options) error {
	p := tea.NewProgram(New(src, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
