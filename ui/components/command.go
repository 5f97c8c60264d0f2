package components

import (
	"strings"

	"github.com/Rorical/OmniMind/internal/omnicore"
	"github.com/Rorical/OmniMind/internal/session"
	"github.com/Rorical/OmniMind/ui/styles"
)

// RenderResult shows the last command result, or nothing before the first one.
func RenderResult(snap session.Snapshot, width int) string {
	if snap.Result == nil {
		if snap.Phase == session.CommandSending {
			return styles.PanelStyle(width, false).Render("Waiting for OmniMind Core")
		}
		return ""
	}

	r := snap.Result
	var b strings.Builder
	b.WriteString(styles.TitleStyle().Render("Last result") + "\n")
	if r.Succeeded() {
		b.WriteString(row("Status", styles.SuccessStyle().Render(r.Status)) + "\n")
	} else {
		b.WriteString(row("Status", styles.ErrorStyle().Render(r.Status)) + "\n")
	}
	b.WriteString(row("Message", r.Message) + "\n")
	b.WriteString(row("Confidence", omnicore.FormatConfidence(r.Confidence())))
	return styles.PanelStyle(width, false).Render(b.String())
}
