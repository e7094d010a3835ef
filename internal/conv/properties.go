package conv

// PropertyUpdate is a partial conversation-wide update. Nil fields are left
// untouched; the conversation id is immutable and has no field here.
type PropertyUpdate struct {
	Name         *string
	Creator      *string
	Type         *Type
	TeamID       *string
	AccessModes  []AccessMode
	AccessRole   *AccessRole
	ReceiptMode  *int
	MessageTimer *int64
}

// UpdateProperties applies a partial update onto an existing entity, one
// explicit field at a time. Access changes reclassify the access state.
func (m *Mapper) UpdateProperties(c *Conversation, update *PropertyUpdate) *Conversation {
	if c == nil || update == nil {
		return c
	}

	if update.Name != nil {
		c.Name = *update.Name
		c.notify("name")
	}
	if update.Creator != nil {
		c.Creator = *update.Creator
		c.notify("creator")
	}
	if update.Type != nil {
		c.Type = *update.Type
		c.notify("type")
	}
	if update.TeamID != nil {
		c.TeamID = *update.TeamID
		c.notify("team_id")
	}
	if update.ReceiptMode != nil {
		c.SetReceiptMode(update.ReceiptMode)
	}
	if update.MessageTimer != nil {
		c.SetGlobalMessageTimer(update.MessageTimer)
	}

	if update.AccessModes != nil {
		c.AccessModes = update.AccessModes
		c.notify("access_modes")
	}
	if update.AccessRole != nil {
		c.AccessRole = *update.AccessRole
		c.notify("access_role")
	}
	if update.AccessModes != nil || update.AccessRole != nil {
		c.SetAccessState(ClassifyAccessState(c, c.AccessModes, c.AccessRole))
	}

	return c
}
