package models

import "strings"

// CommandType enumerates the owner console commands accepted over WhatsApp.
type CommandType string

const (
	CommandSeat    CommandType = "seat"
	CommandPay     CommandType = "pay"
	CommandDues    CommandType = "dues"
	CommandRate    CommandType = "rate"
	CommandFixed   CommandType = "fixed"
	CommandClear   CommandType = "clear"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed owner instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
func ParseCommand(message string) Command {
	normalized := strings.TrimSpace(strings.ToLower(message))
	cmd := Command{Type: CommandUnknown, Raw: message}
	if normalized == "" {
		return cmd
	}

	tokens := strings.Fields(normalized)
	switch head := CommandType(strings.TrimPrefix(tokens[0], "/")); head {
	case CommandSeat, CommandPay, CommandDues, CommandRate, CommandFixed, CommandClear:
		cmd.Type = head
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd
}
