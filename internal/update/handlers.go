package update

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/OmniMind/internal/eventbus"
	"github.com/Rorical/OmniMind/internal/models"
)

// HandleKeyMsg handles keyboard input. Keys that trigger operations become
// events for core; everything else goes to the focused text input.
func HandleKeyMsg(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	if keyMsg.String() == "ctrl+c" {
		return tea.Quit
	}
	if appModel.PendingPassphrase != nil {
		return handlePassphraseKey(appModel, keyMsg, eb)
	}

	switch keyMsg.String() {
	case "ctrl+o":
		sendToCore(appModel, eb, eventbus.ConnectEvent{})
		return nil
	case "ctrl+d":
		sendToCore(appModel, eb, eventbus.DisconnectEvent{})
		return nil
	case "ctrl+r":
		sendToCore(appModel, eb, eventbus.RefreshBalanceEvent{})
		return nil
	case "tab":
		appModel.SetFocus(appModel.Focus.Next())
		return nil
	case "shift+tab":
		appModel.SetFocus((appModel.Focus + 2) % 3)
		return nil
	case "enter":
		return handleEnter(appModel, eb)
	}

	var cmd tea.Cmd
	switch appModel.Focus {
	case models.FocusRecipient:
		appModel.Recipient, cmd = appModel.Recipient.Update(keyMsg)
	case models.FocusAmount:
		appModel.Amount, cmd = appModel.Amount.Update(keyMsg)
	default:
		appModel.Command, cmd = appModel.Command.Update(keyMsg)
	}
	return cmd
}

func handleEnter(appModel *models.AppModel, eb *eventbus.EventBus) tea.Cmd {
	switch appModel.Focus {
	case models.FocusRecipient:
		appModel.SetFocus(models.FocusAmount)
	case models.FocusAmount:
		sendToCore(appModel, eb, eventbus.TransferEvent{
			To:     appModel.Recipient.Value(),
			Amount: appModel.Amount.Value(),
		})
	default:
		// Input is kept until core reports success.
		sendToCore(appModel, eb, eventbus.SendCommandEvent{Raw: appModel.Command.Value()})
	}
	return nil
}

func handlePassphraseKey(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	switch keyMsg.String() {
	case "enter":
		answerPassphrase(appModel, eb, true)
		return nil
	case "esc":
		answerPassphrase(appModel, eb, false)
		return nil
	}
	var cmd tea.Cmd
	appModel.Passphrase, cmd = appModel.Passphrase.Update(keyMsg)
	return cmd
}

func answerPassphrase(appModel *models.AppModel, eb *eventbus.EventBus, approved bool) {
	response := eventbus.PassphraseResponseEvent{
		ID:       appModel.PendingPassphrase.ID,
		Approved: approved,
	}
	if approved {
		response.Passphrase = appModel.Passphrase.Value()
	}
	appModel.PendingPassphrase = nil
	appModel.Passphrase.Reset()
	appModel.Passphrase.Blur()
	appModel.SetFocus(appModel.Focus)
	sendToCore(appModel, eb, response)
}

func sendToCore(appModel *models.AppModel, eb *eventbus.EventBus, event eventbus.UIEvent) {
	if err := eb.SendToCore(event); err != nil {
		appModel.Status = "Error sending request: " + err.Error()
	}
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// HandleCoreEvent processes events from the core
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		appModel.Snapshot = event.Snapshot
		appModel.AppendMessages(event.Messages)
		if event.Snapshot.Feedback != "" {
			appModel.Status = event.Snapshot.Feedback
		} else {
			appModel.Status = "Ready"
		}
	case eventbus.PassphraseRequestEvent:
		appModel.PendingPassphrase = &models.PassphraseRequest{ID: event.ID, Account: event.Account}
		appModel.Passphrase.Reset()
		return appModel.Passphrase.Focus()
	case eventbus.TransferClearedEvent:
		appModel.Recipient.Reset()
		appModel.Amount.Reset()
		appModel.SetFocus(models.FocusRecipient)
	case eventbus.CommandClearedEvent:
		appModel.Command.Reset()
	}
	return nil
}

type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
	inputWidth := sizeMsg.Width - 16
	if inputWidth < 10 {
		inputWidth = 10
	}
	appModel.Command.Width = inputWidth
	appModel.Recipient.Width = inputWidth
	appModel.Amount.Width = inputWidth
	appModel.Passphrase.Width = inputWidth
}

func HandleTickMsg(appModel *models.AppModel) tea.Cmd {
	// Only handle UI animations - loading dots
	if appModel.Busy() || strings.HasSuffix(appModel.Status, "...") {
		appModel.LoadingDots = (appModel.LoadingDots + 1) % 4
	} else {
		appModel.LoadingDots = 0
	}
	return TickCmd()
}
