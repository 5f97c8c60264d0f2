package components

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/Rorical/OmniMind/internal/models"
	"github.com/Rorical/OmniMind/ui/styles"
)

// RenderTransfer renders the recipient and amount inputs.
func RenderTransfer(appModel models.AppModel) string {
	focused := appModel.Focus == models.FocusRecipient || appModel.Focus == models.FocusAmount
	title := "Send " + appModel.Snapshot.Symbol
	if appModel.Snapshot.Transferring {
		title += " (pending)"
	}
	body := styles.TitleStyle().Render(title) + "\n" +
		appModel.Recipient.View() + "\n" +
		appModel.Amount.View()
	return styles.PanelStyle(appModel.Width, focused && appModel.PendingPassphrase == nil).Render(body)
}

// RenderInput renders the command input with its panel.
func RenderInput(input textinput.Model, focused bool, width int) string {
	body := styles.TitleStyle().Render("OmniMind Command") + "\n" + input.View()
	return styles.PanelStyle(width, focused).Render(body)
}
