package conv

// Notifier receives change notifications for conversation entities. The
// daemon wires the event bus behind this; tests and detached entities leave
// it nil.
type Notifier interface {
	// ConversationChanged is called after a single field mutation.
	ConversationChanged(id, field string)
	// ConversationCleared is called when a cleared timestamp is applied,
	// signalling that local history up to that timestamp should be dropped.
	ConversationCleared(id string, timestamp int64)
}

// Conversation is the canonical in-memory conversation record. All
// timestamps are epoch milliseconds and only meaningful relative to other
// timestamps of the same conversation.
type Conversation struct {
	ID      string
	Creator string
	Name    string
	TeamID  string
	Type    Type

	AccessModes []AccessMode
	AccessRole  AccessRole
	AccessState AccessState

	ParticipatingUserIDs []string
	Roles                map[string]string

	MessageTimerGlobal *int64
	MessageTimerLocal  *int64
	ReceiptMode        *int

	IsGuest     bool
	IsGuestRoom bool

	LastEventTimestamp  int64
	LastReadTimestamp   int64
	LastServerTimestamp int64
	ArchivedTimestamp   int64
	ClearedTimestamp    int64
	MutedTimestamp      int64

	ArchivedState     bool
	MutedState        MuteState
	Status            MemberStatus
	VerificationState VerificationState
	LegalHoldStatus   LegalHoldStatus

	notifier Notifier
	silenced bool
}

// NewConversation allocates a conversation with the given id. The id is the
// merge join key and never changes afterwards.
func NewConversation(id string) *Conversation {
	return &Conversation{
		ID:          id,
		AccessState: AccessStateUnknown,
		Roles:       map[string]string{},
	}
}

// SetNotifier attaches a change notifier to the entity.
func (c *Conversation) SetNotifier(n Notifier) {
	c.notifier = n
}

// suspendStateChanges silences change notifications and returns a function
// restoring the previous state. Nested suspensions restore correctly because
// each restore puts back what it saw, not unconditionally "on".
func (c *Conversation) suspendStateChanges() func() {
	prev := c.silenced
	c.silenced = true
	return func() { c.silenced = prev }
}

func (c *Conversation) notify(field string) {
	if c.notifier != nil && !c.silenced {
		c.notifier.ConversationChanged(c.ID, field)
	}
}

func (c *Conversation) notifyCleared(timestamp int64) {
	if c.notifier != nil && !c.silenced {
		c.notifier.ConversationCleared(c.ID, timestamp)
	}
}

// SetTimestamp updates one of the conversation timestamps. Timestamps only
// move forward unless force is set. Updating the last event timestamp heals
// the last server timestamp so that server >= event always holds afterwards.
// Reports whether the value changed.
func (c *Conversation) SetTimestamp(timestamp int64, kind TimestampKind, force bool) bool {
	target := c.timestampField(kind)
	if !force && timestamp <= *target {
		return false
	}
	*target = timestamp

	if kind == TimestampLastEvent && c.LastServerTimestamp < c.LastEventTimestamp {
		c.LastServerTimestamp = c.LastEventTimestamp
		c.notify("last_server_timestamp")
	}

	c.notify(timestampFieldName(kind))
	if kind == TimestampCleared {
		c.notifyCleared(timestamp)
	}
	return true
}

func (c *Conversation) timestampField(kind TimestampKind) *int64 {
	switch kind {
	case TimestampArchived:
		return &c.ArchivedTimestamp
	case TimestampCleared:
		return &c.ClearedTimestamp
	case TimestampLastEvent:
		return &c.LastEventTimestamp
	case TimestampLastRead:
		return &c.LastReadTimestamp
	case TimestampLastServer:
		return &c.LastServerTimestamp
	default:
		return &c.MutedTimestamp
	}
}

func timestampFieldName(kind TimestampKind) string {
	switch kind {
	case TimestampArchived:
		return "archived_timestamp"
	case TimestampCleared:
		return "cleared_timestamp"
	case TimestampLastEvent:
		return "last_event_timestamp"
	case TimestampLastRead:
		return "last_read_timestamp"
	case TimestampLastServer:
		return "last_server_timestamp"
	default:
		return "muted_timestamp"
	}
}

// SetAccessState stores the derived access state and keeps the guest room
// flag in line with it.
func (c *Conversation) SetAccessState(state AccessState) {
	c.AccessState = state
	c.IsGuestRoom = state == AccessStateTeamGuestRoom
	c.notify("access_state")
}

// SetArchivedState updates the archived flag.
func (c *Conversation) SetArchivedState(archived bool) {
	c.ArchivedState = archived
	c.notify("archived_state")
}

// SetMutedState updates the canonical muted state.
func (c *Conversation) SetMutedState(state MuteState) {
	c.MutedState = state
	c.notify("muted_state")
}

// SetReceiptMode updates the read receipt mode.
func (c *Conversation) SetReceiptMode(mode *int) {
	c.ReceiptMode = mode
	c.notify("receipt_mode")
}

// SetLocalMessageTimer updates the per-client ephemeral message timer.
func (c *Conversation) SetLocalMessageTimer(timer *int64) {
	c.MessageTimerLocal = timer
	c.notify("ephemeral_timer")
}

// SetGlobalMessageTimer updates the conversation-wide message timer.
func (c *Conversation) SetGlobalMessageTimer(timer *int64) {
	c.MessageTimerGlobal = timer
	c.notify("message_timer")
}

// SetStatus updates the self membership status.
func (c *Conversation) SetStatus(status MemberStatus) {
	c.Status = status
	c.notify("status")
}

// SetVerificationState updates the verification state.
func (c *Conversation) SetVerificationState(state VerificationState) {
	c.VerificationState = state
	c.notify("verification_state")
}

// SetLegalHoldStatus updates the legal hold status.
func (c *Conversation) SetLegalHoldStatus(status LegalHoldStatus) {
	c.LegalHoldStatus = status
	c.notify("legal_hold_status")
}
