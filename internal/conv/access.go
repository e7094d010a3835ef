package conv

// ClassifyAccessState derives the access classification of a conversation
// from its team membership, kind, access role and access mode set. First
// matching rule wins; unrecognized team combinations fall through to the
// legacy state, so every input maps to some state.
func ClassifyAccessState(c *Conversation, modes []AccessMode, role AccessRole) AccessState {
	if c.TeamID != "" {
		if c.Type == TypeOneToOne {
			return AccessStateTeamOne2One
		}

		isTeamRole := role == AccessRoleTeam

		includesInvite := containsMode(modes, AccessModeInvite)
		isInviteOnly := includesInvite && len(modes) == 1

		if isTeamRole && isInviteOnly {
			return AccessStateTeamOnly
		}

		isNonActivatedRole := role == AccessRoleNonActivated

		includesCode := containsMode(modes, AccessModeCode)
		isGuestRoomModes := includesCode && includesInvite && len(modes) == 2

		if isNonActivatedRole && isGuestRoomModes {
			return AccessStateTeamGuestRoom
		}
		return AccessStateTeamLegacy
	}

	if c.Type == TypeSelf {
		return AccessStateSelf
	}

	if c.Type == TypeGroup {
		return AccessStatePersonalGroup
	}
	return AccessStatePersonalOne2One
}

func containsMode(modes []AccessMode, mode AccessMode) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}
