package conv

func ptr[T any](v T) *T { return &v }

// recordingNotifier captures change notifications for assertions.
type recordingNotifier struct {
	changes []string
	cleared []int64
}

func (r *recordingNotifier) ConversationChanged(id, field string) {
	r.changes = append(r.changes, id+":"+field)
}

func (r *recordingNotifier) ConversationCleared(_ string, timestamp int64) {
	r.cleared = append(r.cleared, timestamp)
}
