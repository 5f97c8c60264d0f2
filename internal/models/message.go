package models

import "time"

type MessageType int

const (
	// Program lines are banner and help text.
	Program MessageType = iota
	Command
	Result
	Failure
)

// Message is one line of the dashboard's activity log.
type Message struct {
	Content string
	Type    MessageType
	At      time.Time
}
