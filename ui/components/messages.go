package components

import (
	"strings"

	"github.com/Rorical/OmniMind/internal/models"
	"github.com/Rorical/OmniMind/ui/styles"
)

// RenderMessages renders the newest limit entries of the activity log.
func RenderMessages(messages []models.Message, limit int) string {
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	var b strings.Builder

	programStyle := styles.ProgramStyle()
	commandStyle := styles.CommandStyle()
	resultStyle := styles.SuccessStyle().PaddingLeft(2)
	failureStyle := styles.ErrorStyle().PaddingLeft(2)

	for _, msg := range messages {
		switch msg.Type {
		case models.Program:
			b.WriteString(programStyle.Render(msg.Content) + "\n")
		case models.Command:
			b.WriteString(commandStyle.Render("You: "+msg.Content) + "\n")
		case models.Result:
			b.WriteString(resultStyle.Render(msg.At.Format("15:04:05")+" "+msg.Content) + "\n")
		case models.Failure:
			b.WriteString(failureStyle.Render(msg.At.Format("15:04:05")+" "+msg.Content) + "\n")
		}
	}

	return b.String()
}
