package conv

import "fmt"

// BuildConversation constructs a canonical conversation entity from one raw
// payload. fallbackTimestamp gives conversations without any event a stable
// sort key; pass 0 for none.
func (m *Mapper) BuildConversation(p Payload, fallbackTimestamp int64) (*Conversation, error) {
	if p.Local == nil && p.Remote == nil {
		return nil, fmt.Errorf("conversation payload: %w", ErrMissingParameter)
	}

	var id string
	if p.Local != nil {
		id = p.Local.ID
	} else {
		id = p.Remote.ID
	}
	if id == "" {
		return nil, fmt.Errorf("conversation payload without id: %w", ErrInvalidParameter)
	}

	c := NewConversation(id)

	if p.Local != nil {
		m.buildFromLocal(c, p.Local)
	} else {
		m.buildFromRemote(c, p.Remote)
	}

	if c.LastEventTimestamp == 0 && fallbackTimestamp != 0 {
		// Both timestamps take the fallback, even over a higher stored
		// server timestamp: a conversation without any event sorts by its
		// batch position alone.
		c.SetTimestamp(fallbackTimestamp, TimestampLastServer, true)
		c.SetTimestamp(fallbackTimestamp, TimestampLastEvent, true)
	}

	return c, nil
}

func (m *Mapper) buildFromLocal(c *Conversation, l *LocalConversation) {
	if l.Roles != nil {
		for id, role := range l.Roles {
			c.Roles[id] = role
		}
	}
	c.Creator = l.Creator
	c.Type = l.Type
	c.Name = l.Name

	m.UpdateSelfStatus(c, l.SelfUpdate(), false)

	c.ParticipatingUserIDs = l.Others
	c.TeamID = l.ResolvedTeamID()
	if l.IsGuest != nil && *l.IsGuest {
		c.IsGuest = true
	}

	modes := l.ResolvedAccessModes()
	role := l.ResolvedAccessRole()
	if modes != nil && role != "" {
		c.AccessModes = modes
		c.AccessRole = role
		c.SetAccessState(ClassifyAccessState(c, modes, role))
	}

	c.SetReceiptMode(l.ReceiptMode)
}

func (m *Mapper) buildFromRemote(c *Conversation, r *RemoteConversation) {
	// Role aggregation happens in the merge engine; a raw wire payload has
	// no roles field of its own.
	self := r.Members.Self
	c.Creator = r.Creator
	c.Type = r.Type
	c.Name = r.Name

	m.UpdateSelfStatus(c, self.SelfUpdate(), false)

	ids := make([]string, 0, len(r.Members.Others))
	for _, other := range r.Members.Others {
		ids = append(ids, other.ID)
	}
	c.ParticipatingUserIDs = ids
	c.TeamID = r.Team

	if r.Access != nil && r.AccessRole != "" {
		c.AccessModes = r.Access
		c.AccessRole = r.AccessRole
		c.SetAccessState(ClassifyAccessState(c, r.Access, r.AccessRole))
	}

	c.SetReceiptMode(r.ReceiptMode)
}

// BuildConversations constructs one entity per payload, assigning ordinal
// fallback timestamps baseOrdinal, baseOrdinal+1, ... in input order so that
// conversations without any true server event keep a deterministic relative
// order.
func (m *Mapper) BuildConversations(payloads []Payload, baseOrdinal int64) ([]*Conversation, error) {
	if payloads == nil {
		return nil, fmt.Errorf("conversation payloads: %w", ErrMissingParameter)
	}
	if len(payloads) == 0 {
		return nil, fmt.Errorf("conversation payloads empty: %w", ErrInvalidParameter)
	}

	conversations := make([]*Conversation, 0, len(payloads))
	for i, p := range payloads {
		c, err := m.BuildConversation(p, baseOrdinal+int64(i))
		if err != nil {
			return nil, fmt.Errorf("payload %d: %w", i, err)
		}
		conversations = append(conversations, c)
	}
	return conversations, nil
}
