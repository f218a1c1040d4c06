package models

import (
	"github.com/uptrace/bun"
)

// SubSessionMarker is the session label that nests a row under the preceding session.
const SubSessionMarker = "Sub"

// Event is one agenda row. ID is the row's position in the source sheet.
type Event struct {
	bun.BaseModel `bun:"table:agenda"`

	ID          int64  `bun:"id,pk" json:"id"`
	Date        string `bun:"date,notnull" json:"date"`
	TimeStart   string `bun:"time_start,notnull" json:"time_start"`
	TimeEnd     string `bun:"time_end,notnull" json:"time_end"`
	Session     string `bun:"session,notnull" json:"session"`
	Title       string `bun:"title,notnull" json:"title"`
	Location    string `bun:"location" json:"location"`
	Description string `bun:"description" json:"description"`
	Speaker     string `bun:"speaker" json:"speaker"`
	ParentID    *int64 `bun:"parent_id" json:"parent_id,omitempty"`

	Parent *Event `bun:"rel:belongs-to,join:parent_id=id" json:"-"`
}

func (e *Event) IsSubSession() bool {
	return e.Session == SubSessionMarker
}

// Row flattens the event into column/value pairs for the storage adapter.
func (e *Event) Row() map[string]interface{} {
	row := map[string]interface{}{
		"id":          e.ID,
		"date":        e.Date,
		"time_start":  e.TimeStart,
		"time_end":    e.TimeEnd,
		"session":     e.Session,
		"title":       e.Title,
		"location":    e.Location,
		"description": e.Description,
		"speaker":     e.Speaker,
		"parent_id":   nil,
	}
	if e.ParentID != nil {
		row["parent_id"] = *e.ParentID
	}
	return row
}

// EventView is the read side of the agenda relation. It leaves out parent_id,
// which only drives sub-session expansion and is never displayed.
type EventView struct {
	bun.BaseModel `bun:"table:agenda"`

	ID          int64  `bun:"id,pk" json:"id"`
	Date        string `bun:"date,notnull" json:"date"`
	TimeStart   string `bun:"time_start,notnull" json:"time_start"`
	TimeEnd     string `bun:"time_end,notnull" json:"time_end"`
	Session     string `bun:"session,notnull" json:"session"`
	Title       string `bun:"title,notnull" json:"title"`
	Location    string `bun:"location" json:"location"`
	Description string `bun:"description" json:"description"`
	Speaker     string `bun:"speaker" json:"speaker"`
}
