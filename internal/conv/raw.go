package conv

import "time"

// The two raw conversation schemas. They describe the same logical fields
// under different names and units: the wire schema uses booleans plus
// ISO-8601 refs for archived/muted state, the persisted schema uses epoch
// millisecond timestamps plus explicit state fields. They are deliberately
// two distinct types with explicit adapters into SelfUpdate, not one
// duck-typed structure.

// RemoteConversation is the backend wire schema of a conversation.
type RemoteConversation struct {
	ID            string        `json:"id"`
	Access        []AccessMode  `json:"access,omitempty"`
	AccessRole    AccessRole    `json:"access_role,omitempty"`
	Creator       string        `json:"creator,omitempty"`
	LastEventTime string        `json:"last_event_time,omitempty"`
	Members       RemoteMembers `json:"members"`
	MessageTimer  *int64        `json:"message_timer,omitempty"`
	Name          string        `json:"name,omitempty"`
	ReceiptMode   *int          `json:"receipt_mode,omitempty"`
	Team          string        `json:"team,omitempty"`
	Type          Type          `json:"type"`
}

// RemoteMembers groups the self membership and the other participants.
type RemoteMembers struct {
	Self   RemoteSelf     `json:"self"`
	Others []RemoteMember `json:"others"`
}

// RemoteSelf is the wire shape of the current user's membership.
type RemoteSelf struct {
	ID               string             `json:"id,omitempty"`
	ConversationRole string             `json:"conversation_role,omitempty"`
	Hidden           *bool              `json:"hidden,omitempty"`
	HiddenRef        string             `json:"hidden_ref,omitempty"`
	OtrArchived      *bool              `json:"otr_archived,omitempty"`
	OtrArchivedRef   string             `json:"otr_archived_ref,omitempty"`
	OtrMuted         *bool              `json:"otr_muted,omitempty"`
	OtrMutedRef      string             `json:"otr_muted_ref,omitempty"`
	OtrMutedStatus   *NotificationState `json:"otr_muted_status,omitempty"`
	Status           *MemberStatus      `json:"status,omitempty"`
}

// RemoteMember is the wire shape of another participant.
type RemoteMember struct {
	ID               string       `json:"id"`
	ConversationRole string       `json:"conversation_role,omitempty"`
	Status           MemberStatus `json:"status"`
}

// LocalConversation is the persisted (database) schema of a conversation.
// It is also the output shape of the merge engine. Pointer fields
// distinguish absent from zero-valued.
type LocalConversation struct {
	ID string `json:"id"`

	ArchivedState       *bool              `json:"archived_state,omitempty"`
	ArchivedTimestamp   *int64             `json:"archived_timestamp,omitempty"`
	ClearedTimestamp    *int64             `json:"cleared_timestamp,omitempty"`
	EphemeralTimer      *int64             `json:"ephemeral_timer,omitempty"`
	MessageTimer        *int64             `json:"message_timer,omitempty"`
	LastEventTimestamp  *int64             `json:"last_event_timestamp,omitempty"`
	LastReadTimestamp   *int64             `json:"last_read_timestamp,omitempty"`
	LastServerTimestamp *int64             `json:"last_server_timestamp,omitempty"`
	LegalHoldStatus     *LegalHoldStatus   `json:"legal_hold_status,omitempty"`
	MutedState          *MuteState         `json:"muted_state,omitempty"`
	MutedTimestamp      *int64             `json:"muted_timestamp,omitempty"`
	ReceiptMode         *int               `json:"receipt_mode,omitempty"`
	Status              *MemberStatus      `json:"status,omitempty"`
	VerificationState   *VerificationState `json:"verification_state,omitempty"`

	Creator string            `json:"creator,omitempty"`
	Name    string            `json:"name,omitempty"`
	Type    Type              `json:"type"`
	IsGuest *bool             `json:"is_guest,omitempty"`
	Roles   map[string]string `json:"roles,omitempty"`
	Others  []string          `json:"others,omitempty"`

	// Both historical spellings occur in persisted records. The camel-case
	// names are the newer ones and win when both are present.
	AccessModes      []AccessMode `json:"accessModes,omitempty"`
	Access           []AccessMode `json:"access,omitempty"`
	AccessRole       AccessRole   `json:"accessRole,omitempty"`
	AccessRoleLegacy AccessRole   `json:"access_role,omitempty"`
	TeamID           string       `json:"team_id,omitempty"`
	Team             string       `json:"team,omitempty"`
}

// ResolvedAccessModes returns the access mode set under either spelling.
func (l *LocalConversation) ResolvedAccessModes() []AccessMode {
	if l.AccessModes != nil {
		return l.AccessModes
	}
	return l.Access
}

// ResolvedAccessRole returns the access role under either spelling.
func (l *LocalConversation) ResolvedAccessRole() AccessRole {
	if l.AccessRole != "" {
		return l.AccessRole
	}
	return l.AccessRoleLegacy
}

// ResolvedTeamID returns the team id under either spelling.
func (l *LocalConversation) ResolvedTeamID() string {
	if l.TeamID != "" {
		return l.TeamID
	}
	return l.Team
}

// SelfUpdate carries the self-membership fields of one raw payload. Each
// source schema maps into it through its own adapter; nil means the field
// was absent from the source. Both shape groups may be populated on the
// same update, in which case the wire-shape fields are applied last.
type SelfUpdate struct {
	// Persisted shape.
	ArchivedState       *bool
	ArchivedTimestamp   *int64
	ClearedTimestamp    *int64
	EphemeralTimer      *int64
	MessageTimer        *int64
	LastEventTimestamp  *int64
	LastReadTimestamp   *int64
	LastServerTimestamp *int64
	LegalHoldStatus     *LegalHoldStatus
	MutedState          *MuteState
	MutedTimestamp      *int64
	ReceiptMode         *int
	Status              *MemberStatus
	VerificationState   *VerificationState

	// Wire shape.
	OtrArchived    *bool
	OtrArchivedRef string
	OtrMuted       *bool
	OtrMutedRef    string
	OtrMutedStatus *NotificationState
}

// SelfUpdate maps the persisted self-membership fields into an update.
func (l *LocalConversation) SelfUpdate() *SelfUpdate {
	return &SelfUpdate{
		ArchivedState:       l.ArchivedState,
		ArchivedTimestamp:   l.ArchivedTimestamp,
		ClearedTimestamp:    l.ClearedTimestamp,
		EphemeralTimer:      l.EphemeralTimer,
		MessageTimer:        l.MessageTimer,
		LastEventTimestamp:  l.LastEventTimestamp,
		LastReadTimestamp:   l.LastReadTimestamp,
		LastServerTimestamp: l.LastServerTimestamp,
		LegalHoldStatus:     l.LegalHoldStatus,
		MutedState:          l.MutedState,
		MutedTimestamp:      l.MutedTimestamp,
		ReceiptMode:         l.ReceiptMode,
		Status:              l.Status,
		VerificationState:   l.VerificationState,
	}
}

// SelfUpdate maps the wire self-membership fields into an update.
func (s *RemoteSelf) SelfUpdate() *SelfUpdate {
	return &SelfUpdate{
		Status:         s.Status,
		OtrArchived:    s.OtrArchived,
		OtrArchivedRef: s.OtrArchivedRef,
		OtrMuted:       s.OtrMuted,
		OtrMutedRef:    s.OtrMutedRef,
		OtrMutedStatus: s.OtrMutedStatus,
	}
}

// Payload is one raw conversation payload of either schema. Exactly one
// side is set.
type Payload struct {
	Local  *LocalConversation
	Remote *RemoteConversation
}

// LocalPayload wraps a persisted record as a builder payload.
func LocalPayload(l *LocalConversation) Payload { return Payload{Local: l} }

// RemotePayload wraps a wire record as a builder payload.
func RemotePayload(r *RemoteConversation) Payload { return Payload{Remote: r} }

// parseRefTime converts an ISO-8601 ref into epoch milliseconds. Absent or
// malformed refs report ok=false and never take part in reconciliation.
func parseRefTime(ref string) (int64, bool) {
	if ref == "" {
		return 0, false
	}
	t, err := time.Parse(time.RFC3339Nano, ref)
	if err != nil {
		return 0, false
	}
	return t.UnixMilli(), true
}
