package events

const (
	TypeUserSignedUp        = "USER_SIGNED_UP"
	TypeConversationCreated = "CONVERSATION_CREATED"
	TypeMessageCreated      = "MESSAGE_CREATED"
	TypeCompletionStarted   = "COMPLETION_STARTED"
	TypeCompletionFinished  = "COMPLETION_FINISHED"
)

// Payload keys
const (
	PayloadUserID         = "user_id"
	PayloadConversationID = "conversation_id"
	PayloadMessageID      = "message_id"
	PayloadSender         = "sender"
	PayloadText           = "text"
	PayloadPosition       = "position"
	PayloadEmail          = "email"
	PayloadSuccess        = "success"
)

// UserID extracts the owning user of an event, if the event carries one.
func UserID(e Event) (string, bool) {
	v, ok := e.Payload()[PayloadUserID].(string)
	return v, ok && v != ""
}
