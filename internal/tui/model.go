// Package tui is the terminal frontend for the assistant. It drives one
// streamed turn at a time: sources appear as soon as the server sends
// them, then the reply types itself out while chunks keep arriving.
package tui

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"ai-assistant-be/internal/client"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/pkg/frame"
)

const (
	typewriterInterval = 25 * time.Millisecond
	typewriterStep     = 3 // characters revealed per tick
)

type sessionUpdateMsg struct{}

type streamDoneMsg struct {
	threadId uuid.UUID
	err      error
}

type typeTickMsg time.Time

// Model is the Bubble Tea model for the ask loop.
type Model struct {
	api    *client.Client
	logger *log.Logger

	input    textinput.Model
	viewport viewport.Model
	ready    bool

	threadId  uuid.UUID
	session   *client.TurnSession
	updates   chan struct{}
	streaming bool

	lastQuery  string
	visibleLen int
	status     string
}

func New(api *client.Client, logger *log.Logger) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		api:      api,
		logger:   logger,
		input:    ti,
		viewport: vp,
		status:   "Ready.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderTurn())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.streaming {
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				return m.startTurn(q)
			}
		}

	case sessionUpdateMsg:
		m.viewport.SetContent(m.renderTurn())
		return m, m.waitForUpdate()

	case typeTickMsg:
		_, _, reply, _ := m.session.Snapshot()
		total := len([]rune(reply))
		if m.visibleLen < total {
			m.visibleLen = min(total, m.visibleLen+typewriterStep)
		}
		m.viewport.SetContent(m.renderTurn())
		if m.streaming || m.visibleLen < total {
			return m, typeTick()
		}
		return m, nil

	case streamDoneMsg:
		m.streaming = false
		if msg.threadId != uuid.Nil {
			m.threadId = msg.threadId
		}
		if msg.err != nil {
			m.status = "Stream failed: " + msg.err.Error()
		} else {
			state, _, _, errMsg := m.session.Snapshot()
			if state == client.StateErrored {
				m.status = "Assistant error: " + errMsg
			} else {
				m.status = fmt.Sprintf("Done in %.1fs. Ask another question.", m.session.SearchSeconds())
			}
		}
		m.viewport.SetContent(m.renderTurn())
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// startTurn opens the stream on a reader goroutine. The goroutine feeds the
// frame decoder and finalizes the session; the UI only ever reads snapshots.
func (m Model) startTurn(query string) (tea.Model, tea.Cmd) {
	m.lastQuery = query
	m.visibleLen = 0
	m.streaming = true
	m.status = "Searching..."
	m.input.SetValue("")

	updates := make(chan struct{}, 64)
	m.updates = updates
	m.session = client.NewTurnSession(query, func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	}, m.logger)

	session := m.session
	api := m.api
	threadId := m.threadId
	logger := m.logger

	stream := func() tea.Msg {
		ctx := context.Background()

		if threadId == uuid.Nil {
			thread, err := api.CreateThread(ctx, query)
			if err != nil {
				return streamDoneMsg{err: err}
			}
			threadId = thread.Id
		}

		body, err := api.StreamAsk(ctx, &dto.AskStreamRequest{
			Message:        query,
			LiveWebEnabled: true,
		})
		if err != nil {
			return streamDoneMsg{threadId: threadId, err: err}
		}
		defer body.Close()

		dec := frame.NewDecoder(session, logger)
		buf := make([]byte, 4096)
		for {
			n, readErr := body.Read(buf)
			if n > 0 {
				dec.Feed(buf[:n])
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				dec.Close()
				return streamDoneMsg{threadId: threadId, err: readErr}
			}
		}
		dec.Close()

		if err := session.CloseStream(ctx, api, threadId); err != nil {
			return streamDoneMsg{threadId: threadId, err: err}
		}
		return streamDoneMsg{threadId: threadId}
	}

	return m, tea.Batch(stream, m.waitForUpdate(), typeTick())
}

func (m Model) waitForUpdate() tea.Cmd {
	updates := m.updates
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		<-updates
		return sessionUpdateMsg{}
	}
}

func typeTick() tea.Cmd {
	return tea.Tick(typewriterInterval, func(t time.Time) tea.Msg {
		return typeTickMsg(t)
	})
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Personal Assistant")
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	answer := answerBoxStyle.Render(m.viewport.View())
	return header + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderTurn() string {
	if m.session == nil {
		return "Ask anything about your documents, emails, past conversations, or the web."
	}

	state, sources, reply, errMsg := m.session.Snapshot()

	var sb strings.Builder
	sb.WriteString(questionStyle.Render("You: "+m.lastQuery) + "\n\n")

	if len(sources) > 0 {
		sb.WriteString(sourceHeaderStyle.Render("Sources") + "\n")
		for i, src := range sources {
			sb.WriteString(fmt.Sprintf("  %d. %s", i+1, src.Title))
			if src.URL != "" {
				sb.WriteString(sourceURLStyle.Render("  " + src.URL))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	} else if state == client.StateAwaitingSources {
		sb.WriteString(sourceHeaderStyle.Render("Searching sources...") + "\n\n")
	}

	runes := []rune(reply)
	visible := reply
	if m.visibleLen < len(runes) {
		visible = string(runes[:m.visibleLen])
	}
	sb.WriteString(visible)

	if state == client.StateErrored {
		sb.WriteString("\n\n" + errorStyle.Render("! "+errMsg))
	}

	return sb.String()
}

var (
	answerBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle     = lipgloss.NewStyle().Bold(true)
	sourceHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	sourceURLStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
