package models

// Relation names shared by the importer and the lookup engine.
const (
	EventTable        = "agenda"
	SpeakerTable      = "speakers"
	EventSpeakerTable = "event_speakers"
)

// SourceColumns is the fixed left-to-right column order of an agenda sheet.
var SourceColumns = []string{
	"date", "time_start", "time_end", "session", "title", "location", "description", "speaker",
}

// DisplayColumns are the user-facing event columns, in rendering order.
var DisplayColumns = SourceColumns

// DisplayWidths caps each display column, matched by index.
var DisplayWidths = []int{10, 10, 10, 10, 20, 20, 50, 20}

// IsEventColumn reports whether column can be used as a lookup predicate.
func IsEventColumn(column string) bool {
	if column == "id" {
		return true
	}
	for _, c := range DisplayColumns {
		if c == column {
			return true
		}
	}
	return false
}
