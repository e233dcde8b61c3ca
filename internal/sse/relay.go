package sse

import "github.com/starford/cvdraft/internal/editor"

// Relay forwards a session event to connected clients. Register it with
// editor.Session.OnChange.
func (b *Broker) Relay(ev editor.Event) {
	switch ev.Type {
	case editor.EventSectionUpdated:
		b.PublishSectionUpdate(string(ev.Section))
	case editor.EventViewChanged:
		b.Publish(Event{Type: string(ev.Type), Data: map[string]string{"view": string(ev.View)}})
	case editor.EventEnhanceStarted, editor.EventEnhanceFinished:
		b.Publish(Event{Type: string(ev.Type), Data: map[string]string{"target": ev.Target}})
	case editor.EventResumeSaved:
		b.Publish(Event{Type: string(ev.Type), Data: map[string]string{"resume_id": ev.ResumeID}})
	case editor.EventNoticeAdded:
		if ev.Notice != nil {
			b.Publish(Event{Type: string(ev.Type), Data: map[string]string{"id": ev.Notice.ID, "message": ev.Notice.Message}})
		}
	}
}
