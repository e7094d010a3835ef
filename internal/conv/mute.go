package conv

import (
	"encoding/json"
	"fmt"
)

// NotificationState is the bitmask-based notification setting. Bit 0 means
// "muted at all" and is kept for backward compatibility with the deprecated
// boolean muted state.
type NotificationState int

const (
	NotifyEverything         NotificationState = 0b00
	NotifyMentionsAndReplies NotificationState = 0b10
	NotifyNothing            NotificationState = 0b11
)

func (n NotificationState) valid() bool {
	switch n {
	case NotifyEverything, NotifyMentionsAndReplies, NotifyNothing:
		return true
	}
	return false
}

// MuteState is the canonical muted state of a conversation. Old persisted
// records carry a plain boolean, newer ones a NotificationState bitmask; the
// two representations are a tagged union rather than one field that changes
// runtime type. The zero value is "notify everything".
type MuteState struct {
	isLegacy bool
	muted    bool
	bits     NotificationState
}

// LegacyMute returns a MuteState holding a pre-bitmask boolean state.
func LegacyMute(muted bool) MuteState {
	return MuteState{isLegacy: true, muted: muted}
}

// BitmaskMute returns a MuteState holding a bitmask notification setting.
func BitmaskMute(bits NotificationState) MuteState {
	return MuteState{bits: bits}
}

// IsLegacy reports whether the state is the deprecated boolean representation.
func (m MuteState) IsLegacy() bool { return m.isLegacy }

// Bits returns the bitmask value. Only meaningful when !IsLegacy().
func (m MuteState) Bits() NotificationState { return m.bits }

// Muted reports whether the conversation is muted in any form.
func (m MuteState) Muted() bool {
	if m.isLegacy {
		return m.muted
	}
	return m.bits != NotifyEverything
}

func (m MuteState) String() string {
	if m.isLegacy {
		return fmt.Sprintf("legacy(%t)", m.muted)
	}
	return fmt.Sprintf("bitmask(%#b)", int(m.bits))
}

// MarshalJSON writes the state in its source representation: a boolean for
// legacy records, a number otherwise.
func (m MuteState) MarshalJSON() ([]byte, error) {
	if m.isLegacy {
		return json.Marshal(m.muted)
	}
	return json.Marshal(int(m.bits))
}

// UnmarshalJSON accepts either representation.
func (m *MuteState) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*m = LegacyMute(b)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("muted state is neither bool nor number: %w", err)
	}
	*m = BitmaskMute(NotificationState(n))
	return nil
}

// NormalizeMuteState converts the legacy boolean flag plus the optional
// bitmask value into one canonical MuteState. Nil inputs mean the field was
// absent from the payload.
//
// A valid bitmask wins; when the legacy flag is also set, bit 0 is forced on
// so old readers still see the conversation as muted. Without a valid
// bitmask the legacy boolean is kept verbatim, and with neither present the
// conversation is not muted.
func NormalizeMuteState(legacyMuted *bool, bits *NotificationState) MuteState {
	if bits != nil && bits.valid() {
		if legacyMuted != nil && *legacyMuted {
			return BitmaskMute(*bits | 0b1)
		}
		return BitmaskMute(*bits)
	}
	if legacyMuted != nil {
		return LegacyMute(*legacyMuted)
	}
	return BitmaskMute(NotifyEverything)
}
