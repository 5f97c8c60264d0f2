package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/OmniMind/internal/eventbus"
	"github.com/Rorical/OmniMind/internal/models"
)

func HandleUpdate(appModel *models.AppModel, msg tea.Msg, eb *eventbus.EventBus) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return HandleKeyMsg(appModel, msg, eb)
	case tea.WindowSizeMsg:
		HandleWindowSizeMsg(appModel, msg)
		return nil
	case TickMsg:
		return HandleTickMsg(appModel)
	case CoreEventMsg:
		return HandleCoreEvent(appModel, msg)
	}
	return nil
}
