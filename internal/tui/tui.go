// Package tui provides a Bubble Tea terminal user interface for xenocanto-downloader.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/xenocanto-downloader/internal/cache"
	"github.com/handiism/xenocanto-downloader/internal/config"
	"github.com/handiism/xenocanto-downloader/internal/download"
	"github.com/handiism/xenocanto-downloader/internal/http"
	"github.com/handiism/xenocanto-downloader/internal/model"
	"github.com/handiism/xenocanto-downloader/internal/query"
	"github.com/handiism/xenocanto-downloader/internal/xenocanto"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7FB069")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	recordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateSearching
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// eventBuffer collects progress events from background goroutines so
// the update loop can drain them on its own schedule.
type eventBuffer struct {
	mu     sync.Mutex
	events []download.ProgressEvent
}

func (b *eventBuffer) push(event download.ProgressEvent) {
	b.mu.Lock()
	b.events = append(b.events, event)
	b.mu.Unlock()
}

func (b *eventBuffer) drain() []download.ProgressEvent {
	b.mu.Lock()
	events := b.events
	b.events = nil
	b.mu.Unlock()
	return events
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	events    *eventBuffer
	logs      []LogEntry
	preview   []string
	found     int
	err       error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// Download manager reference
	manager *download.Manager

	// Download progress
	totalFiles      int32
	downloadedFiles int32
	totalBytes      int64
	receivedBytes   int64

	// Options
	sonograms bool
	playlist  bool
	verbose   bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel() Model {
	ti := textinput.New()
	ti.Placeholder = `gen:Troglodytes cnt:spain q:>C`
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB069"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	settings, err := config.Load(config.DefaultPath())
	if err != nil {
		settings = config.DefaultSettings()
	}

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		events:    &eventBuffer{},
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// SearchDoneMsg is sent when the search completes.
	SearchDoneMsg struct {
		Preview []string
		Found   int
		Manager *download.Manager
		Err     error
	}

	// DownloadDoneMsg is sent when all downloads complete.
	DownloadDoneMsg struct {
		Received int64
		Total    int64
		Files    int32
		TotalF   int32
		Err      error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateSearching {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && m.textInput.Value() != "" {
				m.state = StateSearching
				return m, tea.Batch(m.runSearch(), m.spinner.Tick, m.tickProgress())
			}

		case "s":
			if m.state == StateInput {
				m.sonograms = !m.sonograms
			}

		case "p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for new search
				m.state = StateInput
				m.logs = nil
				m.preview = nil
				m.found = 0
				m.err = nil
				m.downloadedFiles = 0
				m.totalFiles = 0
				m.receivedBytes = 0
				m.totalBytes = 0
				m.manager = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case SearchDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.preview = msg.Preview
			m.found = msg.Found
			m.manager = msg.Manager
			m.state = StateDownloading
			cmds = append(cmds, m.startDownload())
		}

	case DownloadDoneMsg:
		m.receivedBytes = msg.Received
		m.totalBytes = msg.Total
		m.downloadedFiles = msg.Files
		m.totalFiles = msg.TotalF
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		// Pick up events produced by background goroutines.
		for _, event := range m.events.drain() {
			if event.Level == download.LevelVerbose && !m.verbose {
				continue
			}
			m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
		}
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}

		// Update progress from manager
		if m.manager != nil && m.state == StateDownloading {
			received, total, files, totalFiles := m.manager.GetProgress()
			m.receivedBytes = received
			m.totalBytes = total
			m.downloadedFiles = files
			m.totalFiles = totalFiles

			// Calculate percentage and animate progress bar
			var percent float64
			if totalFiles > 0 {
				percent = float64(files) / float64(totalFiles)
			}
			progressCmd := m.progress.SetPercent(percent)
			cmds = append(cmds, progressCmd)
		}
		if m.state == StateSearching || m.state == StateDownloading {
			cmds = append(cmds, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🐦 xeno-canto Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Search and download wildlife recordings"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateSearching:
		b.WriteString(m.viewSearching())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter search query:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	// Options
	sonogramCheck := "[ ]"
	if m.sonograms {
		sonogramCheck = "[×]"
	}
	playlistCheck := "[ ]"
	if m.playlist {
		playlistCheck = "[×]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Save sonograms (s)\n", sonogramCheck))
	b.WriteString(fmt.Sprintf("  %s Create playlist (p)\n", playlistCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.DownloadsPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewSearching() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Searching the catalogue..."))
	b.WriteString("\n\n")

	// Show logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	// Recordings found
	if m.found > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d recording(s):", m.found)))
		b.WriteString("\n")
		for _, line := range m.preview {
			b.WriteString(recordStyle.Render(fmt.Sprintf("  ♪ %s", line)))
			b.WriteString("\n")
		}
		if m.found > len(m.preview) {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ... and %d more", m.found-len(m.preview))))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Progress bar
	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.downloadedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Downloaded: %.2f MB",
		m.downloadedFiles,
		m.totalFiles,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")

	// Logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Download Complete!\n\n"+
			"Recordings: %d\n"+
			"Files: %d\n"+
			"Size: %.2f MB",
		m.found,
		m.downloadedFiles,
		float64(m.receivedBytes)/1024/1024,
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: search • s: sonograms • p: playlist • v: verbose • esc: quit"
	case StateSearching, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new search • q: quit"
	}
	return ""
}

// runSearch parses the query, runs it, and builds a loaded manager.
func (m *Model) runSearch() tea.Cmd {
	return func() tea.Msg {
		q, err := query.Parse(m.textInput.Value())
		if err != nil {
			return SearchDoneMsg{Err: err}
		}

		settings := m.settings
		httpOpts := []http.Option{
			http.WithRateLimit(settings.RequestsPerSecond, settings.RequestBurst),
		}
		if settings.CacheEnabled && os.MkdirAll(settings.CacheDir, 0755) == nil {
			dbPath := filepath.Join(settings.CacheDir, "responses.db")
			maxAge := time.Duration(settings.CacheMaxAgeHours) * time.Hour
			if store, err := cache.Open(dbPath, maxAge); err == nil {
				httpOpts = append(httpOpts, http.WithCache(store))
			}
		}
		httpClient := http.NewClient(httpOpts...)

		client, err := xenocanto.NewClient(settings.APIKey,
			xenocanto.WithTransport(httpClient),
			xenocanto.WithPageSize(settings.PageSize),
			xenocanto.WithWorkers(settings.MaxWorkers),
			xenocanto.WithWarningHandler(func(msg string) {
				m.events.push(download.ProgressEvent{Message: msg, Level: download.LevelWarning})
			}))
		if err != nil {
			return SearchDoneMsg{Err: err}
		}

		records, err := client.SearchAll(m.ctx, q, 0)
		if err != nil {
			return SearchDoneMsg{Err: err}
		}
		if len(records) == 0 {
			return SearchDoneMsg{Err: fmt.Errorf("no recordings match %q", m.textInput.Value())}
		}

		opts := download.DefaultOptions(settings.DownloadsPath)
		opts.Grouping = settings.GroupingMode()
		opts.Naming = settings.NamingMode()
		opts.MaxConcurrent = settings.MaxConcurrentDownloads
		opts.MaxRetries = settings.DownloadMaxRetries
		opts.RetryCooldown = settings.DownloadRetryCooldown
		opts.RetryExponent = settings.DownloadRetryExponent
		opts.ModifyTags = settings.ModifyTags
		opts.SaveSonograms = m.sonograms
		opts.SonogramResize = settings.SonogramResize
		opts.SonogramMaxSize = settings.SonogramMaxSize
		opts.ConvertSonogramToJPG = settings.ConvertSonogramToJPG
		opts.CreatePlaylist = m.playlist
		opts.PlaylistFormat = settings.PlaylistFormatMode()
		opts.M3UExtended = settings.M3UExtended

		manager := download.NewManager(opts, httpClient, m.events.push)
		manager.Add(records...)

		return SearchDoneMsg{
			Preview: previewLines(records, 5),
			Found:   len(records),
			Manager: manager,
		}
	}
}

// previewLines renders the first n recordings as display lines.
func previewLines(records []*model.Recording, n int) []string {
	if len(records) < n {
		n = len(records)
	}
	lines := make([]string, 0, n)
	for _, rec := range records[:n] {
		lines = append(lines, fmt.Sprintf("%s %s", rec.CatalogueNumber(), rec.Title()))
	}
	return lines
}

// startDownload starts the actual download in background.
func (m *Model) startDownload() tea.Cmd {
	return func() tea.Msg {
		if m.manager == nil {
			return DownloadDoneMsg{Err: fmt.Errorf("no manager")}
		}

		err := m.manager.StartDownloads(m.ctx)
		received, total, files, totalFiles := m.manager.GetProgress()

		return DownloadDoneMsg{
			Received: received,
			Total:    total,
			Files:    files,
			TotalF:   totalFiles,
			Err:      err,
		}
	}
}

// Run starts the TUI application.
func Run() error {
	p := tea.NewProgram(NewModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
