package bus

import "time"

// Event represents a domain event published on the bus. ID is assigned on
// publish when empty.
type Event struct {
	ID        string
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Event kinds published by the sync daemon.
const (
	KindConversationUpdated  = "conversation.updated"
	KindConversationCleared  = "conversation.cleared"
	KindBackendConversations = "backend.conversations"
	KindSyncStarted          = "sync.started"
	KindSyncReconciled       = "sync.reconciled"
	KindSyncFailed           = "sync.failed"
	KindStateChanged         = "state.changed"
)
