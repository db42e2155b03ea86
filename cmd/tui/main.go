package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/config"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/entry"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/logging"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/preview"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/session"
	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/uniprot"
)

// Colors for modern design
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	surfaceColor   = lipgloss.Color("#1F2937") // Dark gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	mutedColor     = lipgloss.Color("#9CA3AF") // Muted gray
	borderColor    = lipgloss.Color("#374151") // Border gray
)

// Styles
var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(mutedColor)

	sequenceStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(lipgloss.Color("#111827")).
			Padding(0, 1)

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF6B6B"))

	// Status styles
	statusStyles = map[statusKind]lipgloss.Style{
		statusInfo:    lipgloss.NewStyle().Foreground(mutedColor),
		statusSuccess: lipgloss.NewStyle().Foreground(secondaryColor).Bold(true),
		statusWarning: lipgloss.NewStyle().Foreground(accentColor).Bold(true),
		statusError:   lipgloss.NewStyle().Foreground(errorColor).Bold(true),
	}
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarning
	statusError
)

type field int

const (
	fieldAccession field = iota
	fieldMutation
)

type listItem struct {
	entry entry.Entry
}

func (i listItem) FilterValue() string { return i.entry.Label }

func (i listItem) Title() string { return i.entry.Label }

func (i listItem) Description() string {
	// FASTA header without the '>'
	header, _, _ := strings.Cut(i.entry.FASTA, "\n")
	return strings.TrimPrefix(header, ">")
}

// fetchedMsg carries the result of a fetch started by fetchCmd.
type fetchedMsg struct {
	accession string
	code      string
	record    *uniprot.Record
	err       error
}

func fetchCmd(f session.Fetcher, timeout time.Duration, accession, code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rec, err := f.Fetch(ctx, accession)
		return fetchedMsg{accession: accession, code: code, record: rec, err: err}
	}
}

type model struct {
	session    *session.Session
	fetcher    session.Fetcher
	timeout    time.Duration
	exportPath string
	logger     *log.Logger

	inputs  [2]textinput.Model
	focused field
	list    list.Model

	status     string
	statusKind statusKind
	loading    bool
	showHelp   bool
	width      int
	height     int
}

func newModel(f session.Fetcher, cfg *config.Config, logger *log.Logger) model {
	acc := textinput.New()
	acc.Prompt = "Accession: "
	acc.Placeholder = "Q9Y5B6"
	acc.SetValue(cfg.DefaultAccession)
	acc.CharLimit = 32
	acc.Focus()

	mut := textinput.New()
	mut.Prompt = "Mutation:  "
	mut.Placeholder = "e.g., P30R or P30TER"
	mut.CharLimit = 32

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Collected Sequences"
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return model{
		session:    session.New(),
		fetcher:    f,
		timeout:    cfg.HTTPTimeout(),
		exportPath: cfg.ExportFile,
		logger:     logger,
		inputs:     [2]textinput.Model{acc, mut},
		list:       l,
		status:     "Enter an accession and press enter to fetch",
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) setStatus(kind statusKind, format string, args ...any) {
	m.statusKind = kind
	m.status = fmt.Sprintf(format, args...)
}

func (m *model) focus(f field) tea.Cmd {
	m.focused = f
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	return m.inputs[f].Focus()
}

func (m *model) syncList() tea.Cmd {
	entries := m.session.Entries()
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = listItem{entry: e}
	}
	return m.list.SetItems(items)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Calculate list dimensions (right panel takes 1/3 of width)
		m.list.SetWidth(msg.Width/3 - 4)
		m.list.SetHeight(msg.Height - 4) // Account for borders and status
		return m, nil

	case fetchedMsg:
		return m.handleFetched(msg)

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "f1":
			m.showHelp = true
			return m, nil
		case "tab", "shift+tab":
			return m, m.focus(1 - m.focused)
		case "enter":
			return m.submit()
		case "ctrl+a":
			return m.add()
		case "ctrl+x":
			m.session.Clear()
			m.setStatus(statusSuccess, "Lists cleared!")
			return m, m.syncList()
		case "ctrl+e":
			m.export()
			return m, nil
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

// submit fetches, or only re-applies the mutation when the accession is
// unchanged and the mutation field has focus.
func (m model) submit() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	accession := strings.TrimSpace(m.inputs[fieldAccession].Value())
	code := strings.TrimSpace(m.inputs[fieldMutation].Value())

	if cur := m.session.Current(); m.focused == fieldMutation && cur.Record != nil && strings.EqualFold(cur.Record.Accession, accession) {
		v, _ := m.session.Mutate(code)
		m.reportView(v)
		return m, nil
	}
	m.loading = true
	m.setStatus(statusInfo, "Fetching %s...", accession)
	return m, fetchCmd(m.fetcher, m.timeout, accession, code)
}

func (m model) handleFetched(msg fetchedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.logger.Warn("fetch failed", "accession", msg.accession, "err", msg.err)
		m.setStatus(statusError, "%v", msg.err)
		return m, nil
	}
	m.logger.Info("fetched record", "accession", msg.record.Accession, "length", len(msg.record.Sequence))
	m.reportView(m.session.Load(msg.record, msg.code))
	return m, nil
}

func (m *model) reportView(v session.View) {
	switch {
	case v.MutationErr != nil:
		m.setStatus(statusError, "%v", v.MutationErr)
	case v.Mutated():
		m.setStatus(statusSuccess, "Applied %s to %s", v.Code, v.Record.Accession)
	default:
		m.setStatus(statusInfo, "Loaded %s (wild type)", v.Record.Accession)
	}
}

func (m model) add() (tea.Model, tea.Cmd) {
	_, err := m.session.Add()
	switch {
	case errors.Is(err, session.ErrNoRecord):
		m.setStatus(statusWarning, "Please fetch a sequence first!")
		return m, nil
	case errors.Is(err, session.ErrDuplicate):
		m.setStatus(statusWarning, "This sequence is already in the list!")
		return m, nil
	}
	m.setStatus(statusSuccess, "Sequence added to list!")
	return m, m.syncList()
}

func (m *model) export() {
	if m.session.Len() == 0 {
		m.setStatus(statusWarning, "Nothing to export")
		return
	}
	f, err := os.Create(m.exportPath)
	if err == nil {
		err = m.session.Export(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		m.logger.Error("export failed", "path", m.exportPath, "err", err)
		m.setStatus(statusError, "Export failed: %v", err)
		return
	}
	m.logger.Info("wrote FASTA", "path", m.exportPath, "entries", m.session.Len())
	m.setStatus(statusSuccess, "Exported %d sequences to %s", m.session.Len(), m.exportPath)
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpModal()
	}

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderLeftPanel(),
		m.renderRightPanel(),
	)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		main,
		m.renderStatusBar(),
	)
}

func (m model) renderLeftPanel() string {
	leftWidth := (m.width * 2) / 3
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("UniProt Sequence Collector"),
		"",
		m.inputs[fieldAccession].View(),
		m.inputs[fieldMutation].View(),
		"",
		m.renderCurrent(leftWidth-6),
	)
	return containerStyle.
		Width(leftWidth - 2).
		Height(m.height - 4).
		Render(content)
}

// renderCurrent shows the mutation preview and the text block of the
// current record.
func (m model) renderCurrent(width int) string {
	v := m.session.Current()
	if v.Record == nil {
		return labelStyle.Render("No record fetched")
	}
	parts := []string{}
	if v.Preview != nil {
		parts = append(parts,
			labelStyle.Render(fmt.Sprintf("Original (position %d):", v.Preview.Code.Position)),
			sequenceStyle.Width(width).Render(renderSegments(v.Preview.Original())),
			labelStyle.Render("Mutated ("+v.Code+"):"),
			sequenceStyle.Width(width).Render(renderSegments(v.Preview.Mutated())),
			"",
		)
	}
	parts = append(parts,
		labelStyle.Render(entry.Comment(v.Record, v.Code)),
		sequenceStyle.Width(width).Render(v.Sequence),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderSegments(s preview.Segments) string {
	if s.Stop {
		return s.Before + highlightStyle.Render(preview.StopMarker)
	}
	return s.Before + highlightStyle.Render(s.At) + s.After
}

func (m model) renderRightPanel() string {
	rightWidth := m.width / 3
	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Collected Sequences"), "", labelStyle.Render("Empty list"))
	}
	return containerStyle.
		Width(rightWidth - 2).
		Height(m.height - 4).
		Render(body)
}

func (m model) renderStatusBar() string {
	leftInfo := statusStyles[m.statusKind].Render(m.status)
	rightInfo := fmt.Sprintf("%d collected • F1 help • esc quit", m.session.Len())

	spacing := m.width - lipgloss.Width(leftInfo) - lipgloss.Width(rightInfo) - 2
	statusContent := leftInfo + " | " + rightInfo
	if spacing > 0 {
		statusContent = leftInfo + strings.Repeat(" ", spacing) + rightInfo
	}
	return statusBarStyle.
		Width(m.width).
		Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `UniProt Sequence Collector - Help

Inputs:
  tab          Switch between accession and mutation
  enter        Fetch (on the mutation field with the same
               accession, re-apply the mutation only)

List:
  ctrl+a       Add current sequence to the list
  ctrl+x       Clear the list
  ctrl+e       Export the list to ` + m.exportPath + `
  ↑/↓          Browse collected sequences

General:
  F1           Toggle this help
  esc, ctrl+c  Quit application

Collected: ` + fmt.Sprintf("%d", m.session.Len()) + `
`

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(64)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modalStyle.Render(helpContent),
	)
}

func main() {
	configPath := flag.String("config", "", "path to config.json (optional)")
	exportPath := flag.String("export", "", "FASTA export path (overrides export_file)")
	verbose := flag.Bool("verbose", false, "enable verbose (debug) logging")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *exportPath != "" {
		cfg.ExportFile = *exportPath
	}
	logger, closeLog := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Verbose: *verbose, NoStderr: true})
	defer closeLog()

	p := tea.NewProgram(newModel(cfg.Client(), cfg, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
