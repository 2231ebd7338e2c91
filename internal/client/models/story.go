package models

import "github.com/google/uuid"

// MyStoryID identifies the implicit "My Story" list.
var MyStoryID = uuid.Nil

// MyStoryName is the display name of My Story; it is never synced.
const MyStoryName = "My Story"

// StoryListMode says how Members is interpreted.
type StoryListMode int

const (
	StoryListModeExplicit StoryListMode = iota
	StoryListModeBlockList
)

// PrivateStoryList is a story distribution list.
type PrivateStoryList struct {
	ID            uuid.UUID
	Name          string
	AllowsReplies bool
	Mode          StoryListMode
	Members       []ServiceID
}

func (l *PrivateStoryList) IsMyStory() bool {
	return l.ID == MyStoryID
}
