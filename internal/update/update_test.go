package update

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/OmniMind/internal/eventbus"
	"github.com/Rorical/OmniMind/internal/models"
	"github.com/Rorical/OmniMind/internal/session"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func nextUIEvent(t *testing.T, eb *eventbus.EventBus) eventbus.UIEvent {
	t.Helper()
	select {
	case ev := <-eb.UIToCore():
		return ev
	default:
		t.Fatal("no event sent to core")
		return nil
	}
}

func TestEnterSendsCommandAndKeepsInput(t *testing.T) {
	m := models.NewAppModel("sepolia")
	eb := eventbus.NewEventBus()

	HandleUpdate(&m, key("help"), eb)
	HandleUpdate(&m, key("enter"), eb)

	assert.Equal(t, eventbus.SendCommandEvent{Raw: "help"}, nextUIEvent(t, eb))
	assert.Equal(t, "help", m.Command.Value())

	HandleCoreEvent(&m, CoreEventMsg{Event: eventbus.CommandClearedEvent{}})
	assert.Empty(t, m.Command.Value())
}

func TestTransferFormFlow(t *testing.T) {
	m := models.NewAppModel("sepolia")
	eb := eventbus.NewEventBus()

	HandleUpdate(&m, key("tab"), eb)
	require.Equal(t, models.FocusRecipient, m.Focus)
	HandleUpdate(&m, key("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"), eb)
	HandleUpdate(&m, key("enter"), eb)
	require.Equal(t, models.FocusAmount, m.Focus)
	HandleUpdate(&m, key("1.5"), eb)
	HandleUpdate(&m, key("enter"), eb)

	assert.Equal(t, eventbus.TransferEvent{
		To:     "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		Amount: "1.5",
	}, nextUIEvent(t, eb))

	HandleCoreEvent(&m, CoreEventMsg{Event: eventbus.TransferClearedEvent{}})
	assert.Empty(t, m.Recipient.Value())
	assert.Empty(t, m.Amount.Value())
	assert.Equal(t, models.FocusRecipient, m.Focus)
}

func TestShortcutsEmitWalletEvents(t *testing.T) {
	m := models.NewAppModel("sepolia")
	eb := eventbus.NewEventBus()

	HandleUpdate(&m, key("ctrl+o"), eb)
	assert.Equal(t, eventbus.ConnectEvent{}, nextUIEvent(t, eb))
	HandleUpdate(&m, key("ctrl+r"), eb)
	assert.Equal(t, eventbus.RefreshBalanceEvent{}, nextUIEvent(t, eb))

	cmd := HandleUpdate(&m, key("ctrl+c"), eb)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPassphrasePromptCapturesKeys(t *testing.T) {
	m := models.NewAppModel("sepolia")
	eb := eventbus.NewEventBus()

	HandleCoreEvent(&m, CoreEventMsg{Event: eventbus.PassphraseRequestEvent{ID: "abc", Account: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"}})
	require.NotNil(t, m.PendingPassphrase)

	HandleUpdate(&m, key("secret"), eb)
	HandleUpdate(&m, key("ctrl+o"), eb)
	assert.Empty(t, m.Command.Value(), "typing goes to the prompt")
	HandleUpdate(&m, key("enter"), eb)

	assert.Equal(t, eventbus.PassphraseResponseEvent{ID: "abc", Passphrase: "secret", Approved: true}, nextUIEvent(t, eb))
	assert.Nil(t, m.PendingPassphrase)
	assert.Empty(t, m.Passphrase.Value())
}

func TestPassphrasePromptEscDismisses(t *testing.T) {
	m := models.NewAppModel("sepolia")
	eb := eventbus.NewEventBus()

	HandleCoreEvent(&m, CoreEventMsg{Event: eventbus.PassphraseRequestEvent{ID: "abc"}})
	HandleUpdate(&m, key("secret"), eb)
	HandleUpdate(&m, key("esc"), eb)

	assert.Equal(t, eventbus.PassphraseResponseEvent{ID: "abc"}, nextUIEvent(t, eb))
	assert.Nil(t, m.PendingPassphrase)
}

func TestStateUpdateDrivesStatusAndLog(t *testing.T) {
	m := models.NewAppModel("sepolia")

	HandleCoreEvent(&m, CoreEventMsg{Event: eventbus.StateUpdateEvent{
		Snapshot: session.Snapshot{Feedback: "Fetching MIND balance...", Connected: true},
		Messages: []models.Message{{Content: "-- OMNIMIND --", Type: models.Program}},
	}})
	assert.Equal(t, "Fetching MIND balance...", m.Status)
	assert.True(t, m.Snapshot.Connected)
	require.Len(t, m.Messages, 1)

	HandleTickMsg(&m)
	assert.Equal(t, 1, m.LoadingDots)

	HandleCoreEvent(&m, CoreEventMsg{Event: eventbus.StateUpdateEvent{Snapshot: session.Snapshot{}}})
	assert.Equal(t, "Ready", m.Status)
	HandleTickMsg(&m)
	assert.Equal(t, 0, m.LoadingDots)
}

func TestActivityLogIsBounded(t *testing.T) {
	m := models.NewAppModel("sepolia")
	batch := make([]models.Message, models.MaxMessages+25)
	for i := range batch {
		batch[i] = models.Message{Content: string(rune('a' + i%26))}
	}
	m.AppendMessages(batch)
	assert.Len(t, m.Messages, models.MaxMessages)
	assert.Equal(t, batch[25].Content, m.Messages[0].Content)
}
