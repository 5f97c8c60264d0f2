package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/OmniMind/internal/models"
	"github.com/Rorical/OmniMind/internal/update"
	"github.com/Rorical/OmniMind/ui/components"
)

const visibleMessages = 8

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		update.TickCmd(),
		textinput.Blink,
		m.dispatcher.ListenForCoreEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle core events and continue listening
	if coreEvent, ok := msg.(update.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.appModel, coreEvent)
		return m, tea.Batch(cmd, m.dispatcher.ListenForCoreEvents())
	}

	cmd := update.HandleUpdate(&m.appModel, msg, m.dispatcher.EventBus())
	return m, cmd
}

func (m *AppModel) View() string {
	am := m.appModel
	var b strings.Builder

	b.WriteString(components.RenderMessages(am.Messages, visibleMessages))
	b.WriteString("\n")
	b.WriteString(components.RenderWallet(am.Snapshot, am.Profile, am.Width))
	b.WriteString("\n")
	if am.PendingPassphrase != nil {
		b.WriteString(components.RenderPassphrase(am))
		b.WriteString("\n")
	} else {
		b.WriteString(components.RenderTransfer(am))
		b.WriteString("\n")
		b.WriteString(components.RenderInput(am.Command, am.Focus == models.FocusCommand, am.Width))
		b.WriteString("\n")
	}
	if result := components.RenderResult(am.Snapshot, am.Width); result != "" {
		b.WriteString(result)
		b.WriteString("\n")
	}
	loading := am.Busy() || strings.HasSuffix(am.Status, "...")
	b.WriteString(components.RenderStatus(am.Status, loading, am.LoadingDots, am.Width))

	return b.String()
}
