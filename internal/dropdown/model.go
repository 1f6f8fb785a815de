package dropdown

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hyperjump/ruslat/internal/debounce"
)

// searchMsg fires when typing has paused for the debounce delay. Only the
// handle of the latest scheduled search is acted on.
type searchMsg struct {
	handle debounce.Handle
	query  string
}

// resultMsg carries a finished search back to Update.
type resultMsg struct {
	seq    uint64
	result Result
}

var (
	chipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#5A56E0")).Padding(0, 1)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#86AAEC")).Bold(true)
	itemStyle    = lipgloss.NewStyle().PaddingLeft(2)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A040"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// Model is a bubbletea front end for a Dropdown.
type Model struct {
	dd      *Dropdown
	ctx     context.Context
	input   textinput.Model
	delay   time.Duration
	timer   debounce.Timer
	pending debounce.Handle
	send    func(tea.Msg)
	seq     uint64
	result  Result
	cursor  int
	limit   int

	// Done is set when the user confirmed the selection.
	Done bool
	// Cancelled is set when the user left without confirming.
	Cancelled bool
}

// NewModel creates a model over dd. Searches run delay after the last keystroke.
func NewModel(ctx context.Context, dd *Dropdown, delay time.Duration) *Model {
	ti := textinput.New()
	ti.Placeholder = dd.Placeholder()
	ti.Prompt = "┃ "
	ti.CharLimit = 100
	ti.Focus()

	m := &Model{
		dd:    dd,
		ctx:   ctx,
		input: ti,
		delay: delay,
		limit: 10,
	}
	m.result = dd.Search(ctx, "")
	return m
}

// SetSender sets the function debounced searches are delivered through,
// normally (*tea.Program).Send.
func (m *Model) SetSender(send func(tea.Msg)) {
	m.send = send
}

// Run shows the model in the terminal until the user confirms or cancels.
func (m *Model) Run() error {
	p := tea.NewProgram(m)
	m.SetSender(p.Send)
	defer m.timer.Cancel()
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case searchMsg:
		if msg.handle != m.pending {
			return m, nil
		}
		return m, m.searchCmd(m.seq, msg.query)

	case resultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.result = msg.result
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.Cancelled = true
		m.timer.Cancel()
		return m, tea.Quit

	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case tea.KeyDown:
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
		return m, nil

	case tea.KeyEnter:
		return m.choose()

	case tea.KeyCtrlD:
		if m.dd.Capabilities().Multi {
			m.Done = true
			m.timer.Cancel()
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyBackspace:
		if m.input.Value() == "" && m.dd.Capabilities().Multi {
			if v := m.dd.Value(); len(v) > 0 {
				m.dd.Remove(v[len(v)-1])
				return m, m.refresh()
			}
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.schedule()
	}
	return m, cmd
}

// choose selects the item under the cursor. Single mode finishes; multi mode
// clears the query and lists the remaining items.
func (m *Model) choose() (tea.Model, tea.Cmd) {
	items := m.visible()
	if len(items) == 0 {
		return m, nil
	}
	if err := m.dd.Select(items[m.cursor].Value); err != nil {
		return m, nil
	}
	if !m.dd.Capabilities().Multi {
		m.Done = true
		m.timer.Cancel()
		return m, tea.Quit
	}
	m.input.SetValue("")
	return m, m.refresh()
}

// schedule debounces a search for the current input.
func (m *Model) schedule() {
	m.seq++
	if m.send == nil {
		return
	}
	send, query := m.send, m.input.Value()
	m.pending = m.timer.Schedule(m.delay, func(h debounce.Handle) {
		send(searchMsg{handle: h, query: query})
	})
}

// refresh searches the current input immediately.
func (m *Model) refresh() tea.Cmd {
	m.timer.Cancel()
	m.pending = 0
	m.seq++
	return m.searchCmd(m.seq, m.input.Value())
}

func (m *Model) searchCmd(seq uint64, query string) tea.Cmd {
	dd, ctx := m.dd.snapshot(), m.ctx
	return func() tea.Msg {
		return resultMsg{seq: seq, result: dd.Search(ctx, query)}
	}
}

func (m *Model) visible() []Item {
	if len(m.result.Items) > m.limit {
		return m.result.Items[:m.limit]
	}
	return m.result.Items
}

// Result returns the most recent search result.
func (m *Model) Result() Result {
	return m.result
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	if sel := m.dd.Selected(); len(sel) > 0 {
		chips := make([]string, 0, len(sel))
		for _, it := range sel {
			chips = append(chips, chipStyle.Render(it.Title))
		}
		b.WriteString(strings.Join(chips, " "))
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	items := m.visible()
	if len(items) == 0 {
		b.WriteString(messageStyle.Render(m.result.Message))
		b.WriteString("\n")
	}
	for i, it := range items {
		line := m.dd.Render(it)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if more := len(m.result.Items) - len(items); more > 0 {
		b.WriteString(messageStyle.Render("  …and more, keep typing"))
		b.WriteString("\n")
	}
	if m.result.RemoteErr != nil {
		b.WriteString(warnStyle.Render("page search unavailable, showing local matches"))
		b.WriteString("\n")
	}

	help := "↑/↓ move • enter select • esc quit"
	if m.dd.Capabilities().Multi {
		help = "↑/↓ move • enter add • backspace remove last • ctrl+d done • esc quit"
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(help))
	return b.String()
}
