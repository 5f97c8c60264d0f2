package components

import (
	"strings"

	"github.com/Rorical/OmniMind/internal/models"
	"github.com/Rorical/OmniMind/ui/styles"
)

func RenderStatus(status string, loading bool, loadingDots int, width int) string {
	statusStyle := styles.StatusStyle(width)

	statusContent := status
	if loading {
		statusContent = strings.TrimRight(statusContent, ".") + strings.Repeat(".", loadingDots)
	}

	return statusStyle.Render(statusContent)
}

// RenderPassphrase renders the keystore unlock prompt.
func RenderPassphrase(appModel models.AppModel) string {
	req := appModel.PendingPassphrase
	body := styles.TitleStyle().Render("Unlock account") + "\n" +
		styles.ValueStyle().Render(req.Account) + "\n\n" +
		appModel.Passphrase.View() + "\n\n" +
		styles.LabelStyle().Width(0).Render("Enter to unlock, Esc to cancel")
	return styles.ModalStyle(appModel.Width).Render(body)
}
