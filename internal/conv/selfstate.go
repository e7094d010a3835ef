package conv

import "go.uber.org/zap"

// Mapper converts raw conversation payloads into canonical entities and
// merges persisted records with backend payloads.
type Mapper struct {
	logger *zap.Logger
}

// NewMapper creates a mapper. A nil logger disables logging.
func NewMapper(logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{logger: logger}
}

// UpdateSelfStatus applies a self-membership update onto a conversation,
// field by field and only where the update carries a value. Persisted-shape
// fields are applied first, wire-shape fields after, so the wire shape wins
// when an update carries both.
//
// With suppressNotifications set, change notifications are silenced for the
// whole batch of field applications and restored afterwards, on every exit
// path. Returns the conversation unchanged when it or the update is nil.
func (m *Mapper) UpdateSelfStatus(c *Conversation, self *SelfUpdate, suppressNotifications bool) *Conversation {
	if c == nil || self == nil {
		return c
	}
	if suppressNotifications {
		restore := c.suspendStateChanges()
		defer restore()
	}

	// Persisted shape.
	if ts := self.ArchivedTimestamp; ts != nil && *ts != 0 {
		c.SetTimestamp(*ts, TimestampArchived, false)
		if self.ArchivedState != nil {
			c.SetArchivedState(*self.ArchivedState)
		}
	}

	// A cleared timestamp is applied even when zero: an explicit zero still
	// means "history was cleared" and must fire the side effect.
	if ts := self.ClearedTimestamp; ts != nil {
		c.SetTimestamp(*ts, TimestampCleared, true)
	}

	if self.EphemeralTimer != nil {
		c.SetLocalMessageTimer(self.EphemeralTimer)
	}
	if self.MessageTimer != nil {
		c.SetGlobalMessageTimer(self.MessageTimer)
	}
	if self.ReceiptMode != nil {
		c.SetReceiptMode(self.ReceiptMode)
	}

	if ts := self.LastEventTimestamp; ts != nil && *ts != 0 {
		c.SetTimestamp(*ts, TimestampLastEvent, false)
	}
	if ts := self.LastReadTimestamp; ts != nil && *ts != 0 {
		c.SetTimestamp(*ts, TimestampLastRead, false)
	}
	if ts := self.LastServerTimestamp; ts != nil && *ts != 0 {
		c.SetTimestamp(*ts, TimestampLastServer, false)
	}

	if ts := self.MutedTimestamp; ts != nil && *ts != 0 {
		c.SetTimestamp(*ts, TimestampMuted, false)
		if self.MutedState != nil {
			c.SetMutedState(*self.MutedState)
		}
	}

	if self.Status != nil {
		c.SetStatus(*self.Status)
	}
	if self.VerificationState != nil {
		c.SetVerificationState(*self.VerificationState)
	}
	if self.LegalHoldStatus != nil && *self.LegalHoldStatus != LegalHoldUnknown {
		c.SetLegalHoldStatus(*self.LegalHoldStatus)
	}

	// Wire shape.
	if self.OtrArchived != nil {
		if ts, ok := parseRefTime(self.OtrArchivedRef); ok {
			c.SetTimestamp(ts, TimestampArchived, false)
		}
		c.SetArchivedState(*self.OtrArchived)
	}

	if self.OtrMuted != nil {
		if ts, ok := parseRefTime(self.OtrMutedRef); ok {
			c.SetTimestamp(ts, TimestampMuted, false)
		}
		c.SetMutedState(NormalizeMuteState(self.OtrMuted, self.OtrMutedStatus))
	}

	return c
}
