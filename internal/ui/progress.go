package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"bxls/internal/workspace"
)

// maxRows bounds the per-file rows shown below the header. Finished files
// drop out first, so active and failed files stay visible.
const maxRows = 8

type progressModel struct {
	title   string
	events  <-chan workspace.Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	queued  int
	done    int
	failed  int
	width   int
	final   bool
}

type fileItem struct {
	path   string
	status workspace.Status
}

type eventMsg workspace.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders workspace scan
// progress. Files appear as their queued events arrive.
func NewProgressModel(title string, events <-chan workspace.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		index:   make(map[string]int),
		width:   80,
	}
}

// Run drives the model until the event channel closes.
func Run(title string, events <-chan workspace.Event, out io.Writer) error {
	program := tea.NewProgram(NewProgressModel(title, events), tea.WithOutput(out))
	_, err := program.Run()
	return err
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(workspace.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.final = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.final {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		model, cmd := m.prog.Update(msg)
		m.prog = model.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d", m.title, m.done+m.failed, m.queued)
	if m.failed > 0 {
		header += fmt.Sprintf(", %d failed", m.failed)
	}
	header += ")"
	if m.final {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := m.width - 16
	if nameWidth < 20 {
		nameWidth = 20
	}
	for _, item := range m.visibleItems() {
		status := styleStatus(item.status).Render(fmt.Sprintf("%12s", statusLabel(item.status)))
		b.WriteString(fmt.Sprintf("  %s %s\n", status, truncate(item.path, nameWidth)))
	}

	b.WriteString("\n")
	if m.final {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

// visibleItems prefers working and failed files, then fills up with the
// most recent others.
func (m *progressModel) visibleItems() []fileItem {
	out := make([]fileItem, 0, maxRows)
	for _, item := range m.items {
		if item.status == workspace.StatusWorking || item.status == workspace.StatusError {
			out = append(out, item)
			if len(out) == maxRows {
				return out
			}
		}
	}
	for i := len(m.items) - 1; i >= 0 && len(out) < maxRows; i-- {
		item := m.items[i]
		if item.status == workspace.StatusQueued || item.status == workspace.StatusDone {
			out = append(out, item)
		}
	}
	return out
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev workspace.Event) tea.Cmd {
	if ev.File == "" {
		if ev.Status == workspace.StatusDone || ev.Status == workspace.StatusError {
			return m.prog.SetPercent(1.0)
		}
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok {
		idx = len(m.items)
		m.index[ev.File] = idx
		m.items = append(m.items, fileItem{path: ev.File, status: workspace.StatusQueued})
		m.queued++
	}
	prev := m.items[idx].status
	if prev == workspace.StatusDone || prev == workspace.StatusError {
		return nil
	}
	m.items[idx].status = ev.Status
	switch ev.Status {
	case workspace.StatusDone:
		m.done++
	case workspace.StatusError:
		m.failed++
	}
	if m.queued == 0 {
		return nil
	}
	return m.prog.SetPercent(float64(m.done+m.failed) / float64(m.queued))
}

func statusLabel(status workspace.Status) string {
	switch status {
	case workspace.StatusWorking:
		return "analyzing"
	case "":
		return "queued"
	default:
		return string(status)
	}
}

func styleStatus(status workspace.Status) lipgloss.Style {
	switch status {
	case workspace.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case workspace.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case workspace.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
