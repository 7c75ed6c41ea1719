package domain

import (
	"strings"
	"time"
)

// ConversationState labels the step a messaging session is at. Values are
// owned by the messaging integration; the store only requires a label.
type ConversationState string

func (s ConversationState) Valid() bool { return strings.TrimSpace(string(s)) != "" }

type Conversation struct {
	ID        int64
	UserID    int64
	State     ConversationState
	Context   Document // session variables
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewConversation(userID int64, state ConversationState, context Document) (Conversation, error) {
	c := Conversation{UserID: userID, State: ConversationState(strings.TrimSpace(string(state))), Context: context}
	return c, c.Validate()
}

func (c Conversation) Validate() error {
	if c.UserID <= 0 {
		return invalid("conversation must reference a user")
	}
	if !c.State.Valid() {
		return invalid("conversation state is required")
	}
	return nil
}
