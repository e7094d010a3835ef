package conv

import "testing"

func TestClassifyAccessState(t *testing.T) {
	tests := []struct {
		name   string
		teamID string
		kind   Type
		role   AccessRole
		modes  []AccessMode
		want   AccessState
	}{
		{
			name: "team one to one",
			teamID: "team-1", kind: TypeOneToOne,
			want: AccessStateTeamOne2One,
		},
		{
			name: "team only",
			teamID: "team-1", kind: TypeGroup,
			role: AccessRoleTeam, modes: []AccessMode{AccessModeInvite},
			want: AccessStateTeamOnly,
		},
		{
			name: "guest room",
			teamID: "team-1", kind: TypeGroup,
			role: AccessRoleNonActivated, modes: []AccessMode{AccessModeCode, AccessModeInvite},
			want: AccessStateTeamGuestRoom,
		},
		{
			name: "guest room mode order irrelevant",
			teamID: "team-1", kind: TypeGroup,
			role: AccessRoleNonActivated, modes: []AccessMode{AccessModeInvite, AccessModeCode},
			want: AccessStateTeamGuestRoom,
		},
		{
			name: "team role with guest room modes is legacy",
			teamID: "team-1", kind: TypeGroup,
			role: AccessRoleTeam, modes: []AccessMode{AccessModeInvite, AccessModeCode},
			want: AccessStateTeamLegacy,
		},
		{
			name: "team role with extra mode is legacy",
			teamID: "team-1", kind: TypeGroup,
			role: AccessRoleTeam, modes: []AccessMode{AccessModeInvite, AccessModeLink},
			want: AccessStateTeamLegacy,
		},
		{
			name: "unrecognized team combination is legacy",
			teamID: "team-1", kind: TypeGroup,
			role: AccessRoleActivated, modes: []AccessMode{AccessModePrivate},
			want: AccessStateTeamLegacy,
		},
		{
			name: "self conversation",
			kind: TypeSelf,
			want: AccessStateSelf,
		},
		{
			name: "personal group",
			kind: TypeGroup,
			want: AccessStatePersonalGroup,
		},
		{
			name: "personal one to one",
			kind: TypeOneToOne,
			want: AccessStatePersonalOne2One,
		},
		{
			name: "connect falls back to personal one to one",
			kind: TypeConnect,
			want: AccessStatePersonalOne2One,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConversation("c1")
			c.TeamID = tt.teamID
			c.Type = tt.kind
			got := ClassifyAccessState(c, tt.modes, tt.role)
			if got != tt.want {
				t.Errorf("ClassifyAccessState() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSetAccessStateGuestRoomFlag(t *testing.T) {
	c := NewConversation("c1")
	c.SetAccessState(AccessStateTeamGuestRoom)
	if !c.IsGuestRoom {
		t.Error("IsGuestRoom should track guest room access state")
	}
	c.SetAccessState(AccessStateTeamOnly)
	if c.IsGuestRoom {
		t.Error("IsGuestRoom should reset when access state changes")
	}
}
