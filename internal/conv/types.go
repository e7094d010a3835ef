// Package conv implements the conversation metadata reconciliation core:
// merging locally persisted conversation records with backend payloads and
// building canonical conversation entities from either shape.
package conv

// Type is the backend conversation type discriminator.
type Type int

const (
	TypeGroup    Type = 0
	TypeSelf     Type = 1
	TypeOneToOne Type = 2
	TypeConnect  Type = 3
)

// AccessMode is a server-defined flag controlling how a conversation can be joined.
type AccessMode string

const (
	AccessModePrivate AccessMode = "private"
	AccessModeInvite  AccessMode = "invite"
	AccessModeCode    AccessMode = "code"
	AccessModeLink    AccessMode = "link"
)

// AccessRole is the kind of account allowed to hold membership.
type AccessRole string

const (
	AccessRoleActivated    AccessRole = "activated"
	AccessRoleNonActivated AccessRole = "non_activated"
	AccessRolePrivate      AccessRole = "private"
	AccessRoleTeam         AccessRole = "team"
)

// AccessState is the derived access classification of a conversation.
type AccessState string

const (
	AccessStateUnknown         AccessState = "UNKNOWN"
	AccessStateSelf            AccessState = "SELF"
	AccessStateTeamOne2One     AccessState = "TEAM_ONE2ONE"
	AccessStateTeamOnly        AccessState = "TEAM_ONLY"
	AccessStateTeamGuestRoom   AccessState = "TEAM_GUEST_ROOM"
	AccessStateTeamLegacy      AccessState = "TEAM_LEGACY"
	AccessStatePersonalGroup   AccessState = "PERSONAL_GROUP"
	AccessStatePersonalOne2One AccessState = "PERSONAL_ONE2ONE"
)

// MemberStatus is the backend membership status of a participant.
type MemberStatus int

const (
	// CurrentMember denotes a participant that has not left or been removed.
	CurrentMember MemberStatus = 0
	PastMember    MemberStatus = 1
)

// VerificationState tracks device verification for a conversation.
type VerificationState int

const (
	VerificationUnverified VerificationState = 0
	VerificationVerified   VerificationState = 1
	VerificationDegraded   VerificationState = 2
)

// LegalHoldStatus tracks legal hold for a conversation.
type LegalHoldStatus int

const (
	LegalHoldUnknown  LegalHoldStatus = 0
	LegalHoldDisabled LegalHoldStatus = 1
	LegalHoldEnabled  LegalHoldStatus = 2
)

// TimestampKind selects which conversation timestamp SetTimestamp updates.
type TimestampKind int

const (
	TimestampArchived TimestampKind = iota
	TimestampCleared
	TimestampLastEvent
	TimestampLastRead
	TimestampLastServer
	TimestampMuted
)
