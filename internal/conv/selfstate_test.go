package conv

import (
	"reflect"
	"testing"
)

func TestUpdateSelfStatusNilInputs(t *testing.T) {
	m := NewMapper(nil)
	if got := m.UpdateSelfStatus(nil, &SelfUpdate{}, false); got != nil {
		t.Error("nil conversation should pass through unchanged")
	}
	c := NewConversation("c1")
	if got := m.UpdateSelfStatus(c, nil, false); got != c {
		t.Error("nil update should return the conversation untouched")
	}
}

func TestUpdateSelfStatusDatabaseShape(t *testing.T) {
	m := NewMapper(nil)
	c := NewConversation("c1")

	m.UpdateSelfStatus(c, &SelfUpdate{
		ArchivedTimestamp:   ptr(int64(1000)),
		ArchivedState:       ptr(true),
		EphemeralTimer:      ptr(int64(30000)),
		MessageTimer:        ptr(int64(60000)),
		ReceiptMode:         ptr(1),
		LastEventTimestamp:  ptr(int64(2000)),
		LastReadTimestamp:   ptr(int64(1500)),
		LastServerTimestamp: ptr(int64(2500)),
		MutedTimestamp:      ptr(int64(1200)),
		MutedState:          ptr(BitmaskMute(NotifyNothing)),
		Status:              ptr(CurrentMember),
		VerificationState:   ptr(VerificationVerified),
		LegalHoldStatus:     ptr(LegalHoldEnabled),
	}, false)

	if c.ArchivedTimestamp != 1000 || !c.ArchivedState {
		t.Errorf("archived = (%d, %t), want (1000, true)", c.ArchivedTimestamp, c.ArchivedState)
	}
	if *c.MessageTimerLocal != 30000 || *c.MessageTimerGlobal != 60000 {
		t.Error("message timers not applied")
	}
	if *c.ReceiptMode != 1 {
		t.Errorf("ReceiptMode = %d, want 1", *c.ReceiptMode)
	}
	if c.LastEventTimestamp != 2000 || c.LastReadTimestamp != 1500 || c.LastServerTimestamp != 2500 {
		t.Errorf("timestamps = (%d, %d, %d)", c.LastEventTimestamp, c.LastReadTimestamp, c.LastServerTimestamp)
	}
	if c.MutedTimestamp != 1200 || c.MutedState != BitmaskMute(NotifyNothing) {
		t.Errorf("muted = (%d, %v)", c.MutedTimestamp, c.MutedState)
	}
	if c.VerificationState != VerificationVerified || c.LegalHoldStatus != LegalHoldEnabled {
		t.Error("verification/legal hold not applied")
	}
}

func TestUpdateSelfStatusAbsentFieldsUntouched(t *testing.T) {
	m := NewMapper(nil)
	c := NewConversation("c1")
	c.SetTimestamp(9000, TimestampLastEvent, false)
	c.SetArchivedState(true)

	m.UpdateSelfStatus(c, &SelfUpdate{ReceiptMode: ptr(0)}, false)

	if c.LastEventTimestamp != 9000 {
		t.Errorf("LastEventTimestamp = %d, want 9000 (absent field touched)", c.LastEventTimestamp)
	}
	if !c.ArchivedState {
		t.Error("ArchivedState reset by an update that did not carry it")
	}
	if *c.ReceiptMode != 0 {
		t.Error("present zero receipt mode must still apply")
	}
}

func TestUpdateSelfStatusZeroClearedTimestampApplies(t *testing.T) {
	m := NewMapper(nil)
	c := NewConversation("c1")
	n := &recordingNotifier{}
	c.SetNotifier(n)

	m.UpdateSelfStatus(c, &SelfUpdate{ClearedTimestamp: ptr(int64(0))}, false)

	if len(n.cleared) != 1 {
		t.Fatalf("cleared side effect fired %d times, want 1", len(n.cleared))
	}
}

func TestUpdateSelfStatusBackendShape(t *testing.T) {
	m := NewMapper(nil)
	c := NewConversation("c1")

	m.UpdateSelfStatus(c, &SelfUpdate{
		OtrArchived:    ptr(true),
		OtrArchivedRef: "2020-06-01T12:00:00.000Z",
		OtrMuted:       ptr(true),
		OtrMutedRef:    "2020-06-02T12:00:00.000Z",
		OtrMutedStatus: ptr(NotifyMentionsAndReplies),
	}, false)

	if !c.ArchivedState {
		t.Error("ArchivedState not applied from backend shape")
	}
	if c.ArchivedTimestamp == 0 {
		t.Error("archived ref not converted to a timestamp")
	}
	if c.MutedState != BitmaskMute(NotifyNothing) {
		t.Errorf("MutedState = %v, want bitmask(0b11) (bit 0 forced)", c.MutedState)
	}
	if c.MutedTimestamp <= c.ArchivedTimestamp {
		t.Error("muted ref should parse to a later timestamp than archived ref")
	}
}

func TestUpdateSelfStatusBackendShapeWinsOverDatabaseShape(t *testing.T) {
	m := NewMapper(nil)
	c := NewConversation("c1")

	m.UpdateSelfStatus(c, &SelfUpdate{
		ArchivedTimestamp: ptr(int64(1)),
		ArchivedState:     ptr(false),
		OtrArchived:       ptr(true),
		OtrArchivedRef:    "2020-06-01T12:00:00.000Z",
	}, false)

	if !c.ArchivedState {
		t.Error("backend shape applied last must win")
	}
}

func TestUpdateSelfStatusMalformedRefSkipsTimestamp(t *testing.T) {
	m := NewMapper(nil)
	c := NewConversation("c1")

	m.UpdateSelfStatus(c, &SelfUpdate{
		OtrArchived:    ptr(true),
		OtrArchivedRef: "not-a-date",
	}, false)

	if c.ArchivedTimestamp != 0 {
		t.Errorf("ArchivedTimestamp = %d, want 0 for malformed ref", c.ArchivedTimestamp)
	}
	if !c.ArchivedState {
		t.Error("archived flag still applies when only the ref is malformed")
	}
}

func TestUpdateSelfStatusIdempotent(t *testing.T) {
	m := NewMapper(nil)
	update := &SelfUpdate{
		ArchivedTimestamp:  ptr(int64(1000)),
		ArchivedState:      ptr(true),
		ClearedTimestamp:   ptr(int64(500)),
		LastEventTimestamp: ptr(int64(2000)),
		MutedTimestamp:     ptr(int64(1200)),
		MutedState:         ptr(LegacyMute(true)),
		ReceiptMode:        ptr(1),
	}

	once := NewConversation("c1")
	m.UpdateSelfStatus(once, update, false)

	twice := NewConversation("c1")
	m.UpdateSelfStatus(twice, update, false)
	m.UpdateSelfStatus(twice, update, false)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("applying the same update twice diverged:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestUpdateSelfStatusSuppressionScope(t *testing.T) {
	m := NewMapper(nil)
	c := NewConversation("c1")
	n := &recordingNotifier{}
	c.SetNotifier(n)

	m.UpdateSelfStatus(c, &SelfUpdate{
		ArchivedTimestamp: ptr(int64(1000)),
		ArchivedState:     ptr(true),
		ClearedTimestamp:  ptr(int64(500)),
	}, true)

	if len(n.changes) != 0 || len(n.cleared) != 0 {
		t.Errorf("notifications leaked during suppression: %v %v", n.changes, n.cleared)
	}

	// Suppression is scoped to the call: afterwards changes notify again.
	c.SetArchivedState(false)
	if len(n.changes) != 1 {
		t.Errorf("got %d notifications after suppressed call, want 1", len(n.changes))
	}
}
