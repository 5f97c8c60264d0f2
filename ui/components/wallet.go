package components

import (
	"strings"

	"github.com/Rorical/OmniMind/internal/session"
	"github.com/Rorical/OmniMind/internal/wallet"
	"github.com/Rorical/OmniMind/ui/styles"
)

// RenderWallet shows the connected account, its balance and the network.
func RenderWallet(snap session.Snapshot, profile string, width int) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle().Render("Wallet") + "  " + styles.LabelStyle().Render("["+profile+"]") + "\n")

	switch {
	case !snap.WalletAvailable:
		b.WriteString(styles.WarningStyle().Render("No wallet configured."))
	case !snap.Connected:
		b.WriteString(styles.ValueStyle().Render("Not connected. Press Ctrl+O to connect."))
	default:
		b.WriteString(row("Account", wallet.ShortAddress(snap.Account)) + "\n")
		b.WriteString(row("Network", networkLabel(snap.ChainID)) + "\n")
		b.WriteString(row("Balance", balanceLabel(snap)))
	}

	return styles.PanelStyle(width, false).Render(b.String())
}

func row(label, value string) string {
	return styles.LabelStyle().Render(label) + styles.ValueStyle().Render(value)
}

func networkLabel(chainID string) string {
	switch chainID {
	case "":
		return "unknown"
	case "11155111":
		return "Sepolia (11155111)"
	default:
		return "chain " + chainID
	}
}

func balanceLabel(snap session.Snapshot) string {
	switch snap.Token.Status {
	case session.BalanceOK:
		return styles.SuccessStyle().Render(snap.Token.Balance + " " + snap.Symbol)
	case session.BalanceWrongNetwork:
		return styles.WarningStyle().Render(snap.Token.Balance)
	case session.BalanceError:
		return styles.ErrorStyle().Render(snap.Token.Balance)
	default:
		return snap.Token.Balance + " " + snap.Symbol
	}
}
