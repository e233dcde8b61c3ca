package editor

import "github.com/starford/cvdraft/internal/resume"

// EventType names a session change.
type EventType string

const (
	EventSectionUpdated  EventType = "section.updated"
	EventViewChanged     EventType = "view.changed"
	EventEnhanceStarted  EventType = "enhance.started"
	EventEnhanceFinished EventType = "enhance.finished"
	EventResumeSaved     EventType = "resume.saved"
	EventNoticeAdded     EventType = "notice.added"
)

// Event describes one change. Only the fields relevant to Type are set.
type Event struct {
	Type     EventType
	Section  resume.Slice
	View     View
	Target   string
	ResumeID string
	Notice   *Notice
}
