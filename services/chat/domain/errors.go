package domain

import "errors"

// Sentinel errors for the chat domain. Use errors.Is() to check these.
var (
	// ErrConversationNotFound indicates the requested conversation does not exist.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrNotParticipant indicates the caller is not a member of the conversation.
	ErrNotParticipant = errors.New("not a participant of this conversation")

	// ErrUnknownParticipant indicates a participant ID that has not been synced
	// into this service's local user view yet.
	ErrUnknownParticipant = errors.New("unknown participant")
)
