package models

// OutboundMessageRequest is the owner's request to message a student directly.
type OutboundMessageRequest struct {
	To      string `json:"to" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// AutomationReply describes the canned response sent back for a command.
type AutomationReply struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
