package domain

// ConversationSummary is derived on demand from the message log; it is
// never persisted. Counterpart may be a stub when the user record is gone.
type ConversationSummary struct {
	Counterpart *User   `json:"counterpart"`
	LastMessage Message `json:"lastMessage"`
}
