package dispatcher

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/OmniMind/internal/eventbus"
	"github.com/Rorical/OmniMind/internal/update"
)

// EventDispatcher handles routing events between core and UI
type EventDispatcher struct {
	eventBus *eventbus.EventBus
}

func NewEventDispatcher(eventBus *eventbus.EventBus) *EventDispatcher {
	return &EventDispatcher{eventBus: eventBus}
}

// ListenForCoreEvents waits for the next core event. The UI re-issues it
// after handling each event; a closed bus ends the listener.
func (ed *EventDispatcher) ListenForCoreEvents() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ed.eventBus.CoreToUI()
		if !ok {
			return nil
		}
		return update.CoreEventMsg{Event: event}
	}
}

func (ed *EventDispatcher) EventBus() *eventbus.EventBus {
	return ed.eventBus
}
