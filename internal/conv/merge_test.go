package conv

import (
	"reflect"
	"testing"
)

func TestMergeLocalOverridesReceiptMode(t *testing.T) {
	m := NewMapper(nil)

	local := []*LocalConversation{{ID: "c1", ReceiptMode: ptr(1)}}
	remote := []*RemoteConversation{{
		ID:   "c1",
		Type: TypeGroup,
		Members: RemoteMembers{
			Self: RemoteSelf{
				Status:         ptr(CurrentMember),
				OtrArchivedRef: "1970-01-01T00:00:00.000Z",
			},
			Others: []RemoteMember{{ID: "u1", Status: CurrentMember}},
		},
	}}

	merged := m.Merge(local, remote)
	if len(merged) != 1 {
		t.Fatalf("got %d merged records, want 1", len(merged))
	}
	got := merged[0]

	if got.ReceiptMode == nil || *got.ReceiptMode != 1 {
		t.Errorf("ReceiptMode = %v, want local override 1", got.ReceiptMode)
	}
	if got.LastEventTimestamp == nil || *got.LastEventTimestamp != 1 {
		t.Errorf("LastEventTimestamp = %v, want ordinal 1", got.LastEventTimestamp)
	}
	if !reflect.DeepEqual(got.Others, []string{"u1"}) {
		t.Errorf("Others = %v, want [u1]", got.Others)
	}
	// Local archived timestamp was unset, remote ref parses to 0: adopt it.
	if got.ArchivedTimestamp == nil || *got.ArchivedTimestamp != 0 {
		t.Errorf("ArchivedTimestamp = %v, want adopted 0", got.ArchivedTimestamp)
	}
}

func TestMergeRemoteReceiptModeWhenLocalUnset(t *testing.T) {
	m := NewMapper(nil)
	merged := m.Merge(
		[]*LocalConversation{{ID: "c1"}},
		[]*RemoteConversation{{ID: "c1", ReceiptMode: ptr(1), Members: RemoteMembers{}}},
	)
	if merged[0].ReceiptMode == nil || *merged[0].ReceiptMode != 1 {
		t.Errorf("ReceiptMode = %v, want remote 1", merged[0].ReceiptMode)
	}
}

func TestMergeSynthesizesStubForUnknownID(t *testing.T) {
	m := NewMapper(nil)
	merged := m.Merge(nil, []*RemoteConversation{{
		ID:   "fresh",
		Name: "new room",
		Type: TypeGroup,
		Members: RemoteMembers{
			Others: []RemoteMember{{ID: "u1", Status: CurrentMember}},
		},
	}})
	got := merged[0]
	if got.ID != "fresh" || got.Name != "new room" {
		t.Errorf("stub merge = (%s, %s)", got.ID, got.Name)
	}
	if !reflect.DeepEqual(got.Others, []string{"u1"}) {
		t.Errorf("Others = %v", got.Others)
	}
}

func TestMergeSkipsNilLocals(t *testing.T) {
	m := NewMapper(nil)
	merged := m.Merge(
		[]*LocalConversation{nil, {ID: "c1", Name: "kept"}, nil},
		[]*RemoteConversation{{ID: "c1", Name: "remote name", Members: RemoteMembers{}}},
	)
	if merged[0].Name != "remote name" {
		t.Errorf("Name = %q, want remote precedence", merged[0].Name)
	}
}

func TestMergeRolesFirstWriteWins(t *testing.T) {
	m := NewMapper(nil)
	merged := m.Merge(nil, []*RemoteConversation{{
		ID:   "c1",
		Type: TypeGroup,
		Members: RemoteMembers{
			Self: RemoteSelf{ID: "self-user", ConversationRole: "admin"},
			Others: []RemoteMember{
				{ID: "u1", ConversationRole: "member", Status: CurrentMember},
				{ID: "u1", ConversationRole: "admin", Status: CurrentMember},
				{ID: "u2", Status: CurrentMember},
			},
		},
	}})

	want := map[string]string{"self-user": "admin", "u1": "member"}
	if !reflect.DeepEqual(merged[0].Roles, want) {
		t.Errorf("Roles = %v, want %v", merged[0].Roles, want)
	}
}

func TestMergeParticipantCorrection(t *testing.T) {
	m := NewMapper(nil)
	stale := []string{"u-gone", "u1"}

	tests := []struct {
		name   string
		kind   Type
		locals []string
		want   []string
	}{
		{"group always rebuilt", TypeGroup, stale, []string{"u1"}},
		{"one to one with prior list kept", TypeOneToOne, stale, stale},
		{"one to one without prior list rebuilt", TypeOneToOne, nil, []string{"u1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := m.Merge(
				[]*LocalConversation{{ID: "c1", Others: tt.locals}},
				[]*RemoteConversation{{
					ID:   "c1",
					Type: tt.kind,
					Members: RemoteMembers{
						Others: []RemoteMember{
							{ID: "u1", Status: CurrentMember},
							{ID: "u-gone", Status: PastMember},
						},
					},
				}},
			)
			if !reflect.DeepEqual(merged[0].Others, tt.want) {
				t.Errorf("Others = %v, want %v", merged[0].Others, tt.want)
			}
		})
	}
}

func TestMergeOrdinalPreservesRemoteOrder(t *testing.T) {
	m := NewMapper(nil)
	remote := []*RemoteConversation{
		{ID: "a", Members: RemoteMembers{}},
		{ID: "b", Members: RemoteMembers{}},
		{ID: "c", Members: RemoteMembers{}},
	}
	merged := m.Merge(nil, remote)
	for i, got := range merged {
		if *got.LastEventTimestamp != int64(i+1) {
			t.Errorf("record %d ordinal = %d, want %d", i, *got.LastEventTimestamp, i+1)
		}
	}
}

func TestMergeServerTimestampCorrection(t *testing.T) {
	m := NewMapper(nil)

	tests := []struct {
		name   string
		event  *int64
		server *int64
		want   int64
	}{
		{"missing server adopts event", ptr(int64(5000)), nil, 5000},
		{"lagging server corrected", ptr(int64(5000)), ptr(int64(100)), 5000},
		{"valid server kept", ptr(int64(5000)), ptr(int64(6000)), 6000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := m.Merge(
				[]*LocalConversation{{
					ID:                  "c1",
					LastEventTimestamp:  tt.event,
					LastServerTimestamp: tt.server,
				}},
				[]*RemoteConversation{{ID: "c1", Members: RemoteMembers{}}},
			)
			if *merged[0].LastServerTimestamp != tt.want {
				t.Errorf("LastServerTimestamp = %d, want %d", *merged[0].LastServerTimestamp, tt.want)
			}
		})
	}
}

func TestMergeArchivedReconciliation(t *testing.T) {
	m := NewMapper(nil)

	tests := []struct {
		name      string
		localTS   *int64
		ref       string
		remote    bool
		wantState *bool
		wantTS    *int64
	}{
		{
			name:    "remote newer wins",
			localTS: ptr(int64(1000)),
			ref:     "2020-01-01T00:00:00.000Z",
			remote:  true,
			wantState: ptr(true),
			wantTS:    ptr(int64(1577836800000)),
		},
		{
			name:    "local newer kept",
			localTS: ptr(int64(9999999999999)),
			ref:     "2020-01-01T00:00:00.000Z",
			remote:  true,
			wantTS:  ptr(int64(9999999999999)),
		},
		{
			name:      "local unset adopts remote",
			ref:       "1970-01-01T00:00:00.000Z",
			remote:    true,
			wantState: ptr(true),
			wantTS:    ptr(int64(0)),
		},
		{
			name:    "malformed ref never wins",
			ref:     "garbage",
			remote:  true,
			wantTS:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := &LocalConversation{ID: "c1", ArchivedTimestamp: tt.localTS}
			if tt.localTS != nil {
				local.ArchivedState = ptr(false)
			}
			merged := m.Merge(
				[]*LocalConversation{local},
				[]*RemoteConversation{{
					ID: "c1",
					Members: RemoteMembers{Self: RemoteSelf{
						OtrArchived:    ptr(tt.remote),
						OtrArchivedRef: tt.ref,
					}},
				}},
			)
			got := merged[0]
			if (got.ArchivedTimestamp == nil) != (tt.wantTS == nil) {
				t.Fatalf("ArchivedTimestamp = %v, want %v", got.ArchivedTimestamp, tt.wantTS)
			}
			if tt.wantTS != nil && *got.ArchivedTimestamp != *tt.wantTS {
				t.Errorf("ArchivedTimestamp = %d, want %d", *got.ArchivedTimestamp, *tt.wantTS)
			}
			if tt.wantState != nil {
				if got.ArchivedState == nil || *got.ArchivedState != *tt.wantState {
					t.Errorf("ArchivedState = %v, want %v", got.ArchivedState, *tt.wantState)
				}
			}
		})
	}
}

func TestMergeMutedReconciliationNormalizes(t *testing.T) {
	m := NewMapper(nil)
	merged := m.Merge(
		[]*LocalConversation{{ID: "c1"}},
		[]*RemoteConversation{{
			ID: "c1",
			Members: RemoteMembers{Self: RemoteSelf{
				OtrMuted:       ptr(true),
				OtrMutedRef:    "2020-01-01T00:00:00.000Z",
				OtrMutedStatus: ptr(NotifyMentionsAndReplies),
			}},
		}},
	)
	got := merged[0]
	if got.MutedState == nil || *got.MutedState != BitmaskMute(NotifyNothing) {
		t.Errorf("MutedState = %v, want normalized bitmask(0b11)", got.MutedState)
	}
	if got.MutedTimestamp == nil || *got.MutedTimestamp != 1577836800000 {
		t.Errorf("MutedTimestamp = %v", got.MutedTimestamp)
	}
}

func TestMergeMutedLocalNewerKept(t *testing.T) {
	m := NewMapper(nil)
	localState := LegacyMute(true)
	merged := m.Merge(
		[]*LocalConversation{{
			ID:             "c1",
			MutedTimestamp: ptr(int64(9999999999999)),
			MutedState:     &localState,
		}},
		[]*RemoteConversation{{
			ID: "c1",
			Members: RemoteMembers{Self: RemoteSelf{
				OtrMuted:    ptr(false),
				OtrMutedRef: "2020-01-01T00:00:00.000Z",
			}},
		}},
	)
	got := merged[0]
	if got.MutedState == nil || *got.MutedState != localState {
		t.Errorf("MutedState = %v, want local state kept", got.MutedState)
	}
}

// A merged record run through the builder must satisfy the server >= event
// timestamp invariant.
func TestMergeOutputThroughBuilderInvariant(t *testing.T) {
	m := NewMapper(nil)
	merged := m.Merge(
		[]*LocalConversation{{
			ID:                  "c1",
			LastEventTimestamp:  ptr(int64(7000)),
			LastServerTimestamp: ptr(int64(100)),
		}},
		[]*RemoteConversation{
			{ID: "c1", Members: RemoteMembers{}},
			{ID: "c2", Members: RemoteMembers{}},
		},
	)

	payloads := make([]Payload, len(merged))
	for i, rec := range merged {
		payloads[i] = LocalPayload(rec)
	}
	built, err := m.BuildConversations(payloads, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range built {
		if c.LastServerTimestamp < c.LastEventTimestamp {
			t.Errorf("conversation %s: server %d < event %d",
				c.ID, c.LastServerTimestamp, c.LastEventTimestamp)
		}
	}
}
