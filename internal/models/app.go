package models

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/Rorical/OmniMind/internal/session"
)

// MaxMessages bounds the activity log kept by the UI.
const MaxMessages = 200

type Focus int

const (
	FocusCommand Focus = iota
	FocusRecipient
	FocusAmount
)

func (f Focus) Next() Focus {
	return (f + 1) % 3
}

// PassphraseRequest represents a pending keystore unlock (avoiding import cycle)
type PassphraseRequest struct {
	ID      string
	Account string
}

// AppModel represents the UI state - only local UI concerns
type AppModel struct {
	Snapshot          session.Snapshot // Last state pushed by core
	Messages          []Message        // Activity log
	Command           textinput.Model
	Recipient         textinput.Model
	Amount            textinput.Model
	Passphrase        textinput.Model
	Focus             Focus
	PendingPassphrase *PassphraseRequest
	Profile           string
	Status            string // Status bar text
	LoadingDots       int    // Animation counter for loading dots
	Width             int
	Height            int
}

func NewAppModel(profile string) AppModel {
	command := textinput.New()
	command.Placeholder = "Type a command for OmniMind Core"
	command.Prompt = "> "
	command.CharLimit = 512

	recipient := textinput.New()
	recipient.Placeholder = "0x recipient address"
	recipient.Prompt = "To: "
	recipient.CharLimit = 42

	amount := textinput.New()
	amount.Placeholder = "0.0"
	amount.Prompt = "Amount: "
	amount.CharLimit = 80

	passphrase := textinput.New()
	passphrase.Prompt = "Passphrase: "
	passphrase.EchoMode = textinput.EchoPassword
	passphrase.EchoCharacter = '*'

	m := AppModel{
		Command:    command,
		Recipient:  recipient,
		Amount:     amount,
		Passphrase: passphrase,
		Focus:      FocusCommand,
		Profile:    profile,
		Status:     "Ready",
	}
	m.SetFocus(FocusCommand)
	return m
}

// SetFocus moves keyboard focus to one of the three form inputs.
func (m *AppModel) SetFocus(f Focus) {
	m.Focus = f
	m.Command.Blur()
	m.Recipient.Blur()
	m.Amount.Blur()
	switch f {
	case FocusRecipient:
		m.Recipient.Focus()
	case FocusAmount:
		m.Amount.Focus()
	default:
		m.Command.Focus()
	}
}

// Busy reports whether core has an operation the user is waiting on.
func (m *AppModel) Busy() bool {
	return m.Snapshot.Phase == session.CommandSending || m.Snapshot.Transferring
}

func (m *AppModel) AppendMessages(msgs []Message) {
	m.Messages = append(m.Messages, msgs...)
	if over := len(m.Messages) - MaxMessages; over > 0 {
		m.Messages = append([]Message(nil), m.Messages[over:]...)
	}
}
