package models

import "encoding/base64"

// Thread is a conversation with either one recipient or a group.
type Thread struct {
	ID          string
	RecipientID string
	GroupID     []byte
}

// ThreadAssociatedData holds per-thread flags that exist independently of
// whether the thread row itself exists yet.
type ThreadAssociatedData struct {
	IsArchived     bool
	IsMarkedUnread bool
	MutedUntil     uint64 // ms since epoch, 0 when not muted
}

// StoryViewMode controls whether group members see stories sent to the group.
type StoryViewMode int

const (
	StoryViewModeDefault StoryViewMode = iota
	StoryViewModeExplicit
	StoryViewModeDisabled
)

// MentionMode controls mention notifications while a thread is muted.
type MentionMode int

const (
	MentionModeDefault MentionMode = iota
	MentionModeAlways
	MentionModeNever
)

// GroupThread is a v2 group conversation.
type GroupThread struct {
	Thread
	MasterKey     []byte
	StoryViewMode StoryViewMode
	MentionMode   MentionMode
}

// GroupThreadID is the deterministic thread id for a group.
func GroupThreadID(groupID []byte) string {
	return "g" + base64.StdEncoding.EncodeToString(groupID)
}

// PendingGroupRestore remembers a group seen in storage that has not been
// created locally yet.
type PendingGroupRestore struct {
	MasterKey     []byte
	StoryViewMode *StoryViewMode
}
