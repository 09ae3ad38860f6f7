package segment

import (
	"encoding/json"

	"github.com/gofrs/uuid"
	analytics "gopkg.in/segmentio/analytics-go.v3"
)

type Event struct {
	name       string
	subjectID  uuid.UUID
	properties map[string]interface{}
}

func (e *Event) trackable() analytics.Track {
	return analytics.Track{
		Event:      e.name,
		UserId:     e.subjectID.String(),
		Properties: e.properties,
	}
}

func (e *Event) String() string {
	buf, _ := json.Marshal(*e)
	return string(buf)
}

// SetSubjectID sets the shareholder or admin the event is about.
func (e *Event) SetSubjectID(id uuid.UUID) {
	e.subjectID = id
}

func (e *Event) SetProperty(key string, value interface{}) {
	if e.properties == nil {
		e.properties = map[string]interface{}{}
	}
	e.properties[key] = value
}

func NewShareholderCreatedEvent() Event {
	return Event{
		name:       "Shareholder Created",
		properties: map[string]interface{}{},
	}
}

func NewSharesIssuedEvent() Event {
	return Event{
		name:       "Shares Issued",
		properties: map[string]interface{}{},
	}
}

func NewSharesTransferredEvent() Event {
	return Event{
		name:       "Shares Transferred",
		properties: map[string]interface{}{},
	}
}

func NewWorkflowApprovedEvent() Event {
	return Event{
		name:       "Workflow Approved",
		properties: map[string]interface{}{},
	}
}

func NewWorkflowRejectedEvent() Event {
	return Event{
		name:       "Workflow Rejected",
		properties: map[string]interface{}{},
	}
}

func NewResolutionPassedEvent() Event {
	return Event{
		name:       "Resolution Passed",
		properties: map[string]interface{}{},
	}
}
