package models

import (
	"github.com/uptrace/bun"
)

// SpeakerSeparator splits a multi-speaker cell into names.
const SpeakerSeparator = "; "

// Speaker ids follow first-appearance order within one import run.
type Speaker struct {
	bun.BaseModel `bun:"table:speakers"`

	ID   int64  `bun:"id,pk" json:"id"`
	Name string `bun:"name,notnull,unique" json:"name"`
}

func (s *Speaker) Row() map[string]interface{} {
	return map[string]interface{}{
		"id":   s.ID,
		"name": s.Name,
	}
}

// EventSpeaker links an event to one of its speakers.
type EventSpeaker struct {
	bun.BaseModel `bun:"table:event_speakers"`

	EventID   int64 `bun:"event_id,pk" json:"event_id"`
	SpeakerID int64 `bun:"speaker_id,pk" json:"speaker_id"`

	Event   *Event   `bun:"rel:belongs-to,join:event_id=id" json:"-"`
	Speaker *Speaker `bun:"rel:belongs-to,join:speaker_id=id" json:"-"`
}

// ForeignKeys lists the link constraints. bun emits none for belongs-to
// relations whose join columns are part of the primary key.
func (*EventSpeaker) ForeignKeys() []string {
	return []string{
		`("event_id") REFERENCES "agenda" ("id")`,
		`("speaker_id") REFERENCES "speakers" ("id")`,
	}
}

func (es *EventSpeaker) Row() map[string]interface{} {
	return map[string]interface{}{
		"event_id":   es.EventID,
		"speaker_id": es.SpeakerID,
	}
}
