package conv

import "go.uber.org/zap"

// Merge reconciles the full set of persisted records with a backend
// payload. It produces one merged, still raw-shaped record per remote
// entry, preserving remote order; consumers feed the output to
// BuildConversation to obtain canonical entities.
func (m *Mapper) Merge(local []*LocalConversation, remote []*RemoteConversation) []*LocalConversation {
	known := make(map[string]*LocalConversation, len(local))
	for _, l := range local {
		if l != nil {
			known[l.ID] = l
		}
	}

	merged := make([]*LocalConversation, 0, len(remote))
	for i, r := range remote {
		merged = append(merged, m.mergeOne(known[r.ID], r, i))
	}

	m.logger.Debug("merged conversations",
		zap.Int("local", len(known)),
		zap.Int("remote", len(remote)),
	)
	return merged
}

func (m *Mapper) mergeOne(local *LocalConversation, r *RemoteConversation, index int) *LocalConversation {
	if local == nil {
		local = &LocalConversation{ID: r.ID}
	}
	self := r.Members.Self
	others := r.Members.Others

	out := *local

	// Remote conversation-wide fields take precedence over the persisted
	// record. The legacy access/team spellings of the local record are left
	// in place; the canonical spellings written here win on resolution.
	out.AccessModes = r.Access
	out.AccessRole = r.AccessRole
	out.Creator = r.Creator
	out.MessageTimer = r.MessageTimer
	out.Name = r.Name
	out.ReceiptMode = r.ReceiptMode
	out.Status = self.Status
	out.TeamID = r.Team
	out.Type = r.Type

	// First write wins for roles: self before others, earlier members
	// before later duplicates.
	roles := map[string]string{}
	if self.ConversationRole != "" && self.ID != "" {
		roles[self.ID] = self.ConversationRole
	}
	for _, other := range others {
		if other.ConversationRole == "" {
			continue
		}
		if _, ok := roles[other.ID]; !ok {
			roles[other.ID] = other.ConversationRole
		}
	}
	out.Roles = roles

	// Once a client has stored an explicit numeric receipt mode, server
	// defaults must not clobber it.
	if local.ReceiptMode != nil {
		out.ReceiptMode = local.ReceiptMode
	}

	// For groups, and whenever there is no prior participant list, the
	// participant list is rebuilt from the remote members that are still
	// current. A stale local cache may list members that have left.
	if r.Type == TypeGroup || len(out.Others) == 0 {
		ids := make([]string, 0, len(others))
		for _, other := range others {
			if other.Status == CurrentMember {
				ids = append(ids, other.ID)
			}
		}
		out.Others = ids
	}

	// Conversations without any event yet keep their server ordering via a
	// 1-based batch position.
	if out.LastEventTimestamp == nil || *out.LastEventTimestamp == 0 {
		ordinal := int64(index + 1)
		out.LastEventTimestamp = &ordinal
	}

	if out.LastServerTimestamp == nil || *out.LastServerTimestamp < *out.LastEventTimestamp {
		ts := *out.LastEventTimestamp
		out.LastServerTimestamp = &ts
	}

	// Archived and muted state may have been stored with a stale timestamp.
	// Adopt the remote value when it is strictly newer, or when the local
	// record never recorded one. A ref that does not parse never wins.
	if ts, ok := parseRefTime(self.OtrArchivedRef); ok {
		if local.ArchivedTimestamp == nil || ts > *local.ArchivedTimestamp {
			out.ArchivedState = self.OtrArchived
			out.ArchivedTimestamp = &ts
		}
	}

	if ts, ok := parseRefTime(self.OtrMutedRef); ok {
		if local.MutedTimestamp == nil || ts > *local.MutedTimestamp {
			state := NormalizeMuteState(self.OtrMuted, self.OtrMutedStatus)
			out.MutedState = &state
			out.MutedTimestamp = &ts
		}
	}

	return &out
}
