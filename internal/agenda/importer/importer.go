package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agenda/internal/logger"
	"agenda/internal/models"
	"agenda/internal/source"
	"agenda/internal/store"

	"github.com/google/uuid"
)

type Inserter interface {
	Name() string
	Insert(ctx context.Context, row store.Row) error
}

// Notifier is told about every completed import run.
type Notifier interface {
	PublishImportCompleted(ctx context.Context, report Report) error
}

type Importer struct {
	Events        Inserter
	Speakers      Inserter
	EventSpeakers Inserter
	Logger        *logger.Logger
	Notifier      Notifier
}

// Report summarises one import run.
type Report struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	Events      int       `json:"events"`
	SubSessions int       `json:"sub_sessions"`
	Speakers    int       `json:"speakers"`
	Links       int       `json:"links"`
	Rejected    []int     `json:"rejected_rows,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// runState is the hierarchy and speaker bookkeeping for a single run.
type runState struct {
	lastSessionID int64
	haveSession   bool
	speakerIDs    map[string]int64
}

func NewImporter(rels store.Relations, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.Discard()
	}
	return &Importer{
		Events:        rels.Events,
		Speakers:      rels.Speakers,
		EventSpeakers: rels.EventSpeakers,
		Logger:        log,
	}
}

// ImportFile reads the agenda at path and imports every row after the header block.
func (im *Importer) ImportFile(ctx context.Context, path string, headerRows int) (*Report, error) {
	im.Logger.LogImport("OPEN", path, "reading agenda document")
	doc, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	im.Logger.LogImport("OPEN", path, fmt.Sprintf("%d sheet rows, skipping %d header rows", doc.NumRows(), headerRows))

	return im.Import(ctx, path, doc.Rows(headerRows))
}

// Import writes rows in order. Each row's sheet index becomes its event id.
// Rows already written stay in place when a later row fails.
func (im *Importer) Import(ctx context.Context, src string, rows []source.Row) (*Report, error) {
	report := &Report{
		RunID:     uuid.New().String(),
		Source:    src,
		StartedAt: time.Now().UTC(),
	}
	st := &runState{speakerIDs: make(map[string]int64)}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := im.importRow(ctx, st, row, report); err != nil {
			return report, fmt.Errorf("import row %d: %w", row.Index, err)
		}
	}

	report.FinishedAt = time.Now().UTC()
	im.Logger.LogImport("DONE", src, fmt.Sprintf("run %s: %d events (%d sub-sessions), %d speakers, %d links, %d rejected",
		report.RunID, report.Events, report.SubSessions, report.Speakers, report.Links, len(report.Rejected)))

	if im.Notifier != nil {
		if err := im.Notifier.PublishImportCompleted(ctx, *report); err != nil {
			im.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish import completion for run %s: %v", report.RunID, err))
		}
	}
	return report, nil
}

func (im *Importer) importRow(ctx context.Context, st *runState, row source.Row, report *Report) error {
	event := &models.Event{
		ID:          int64(row.Index),
		Date:        row.Cell("date"),
		TimeStart:   row.Cell("time_start"),
		TimeEnd:     row.Cell("time_end"),
		Session:     row.Cell("session"),
		Title:       row.Cell("title"),
		Location:    row.Cell("location"),
		Description: row.Cell("description"),
		Speaker:     row.Cell("speaker"),
	}

	if event.IsSubSession() {
		if !st.haveSession {
			im.Logger.Warn("IMPORT", fmt.Sprintf("Rejecting row %d (%q): sub-session with no preceding session", row.Index, event.Title))
			report.Rejected = append(report.Rejected, row.Index)
			return nil
		}
		parentID := st.lastSessionID
		event.ParentID = &parentID
		report.SubSessions++
	} else {
		st.lastSessionID = event.ID
		st.haveSession = true
	}

	// The event goes first so the link rows below satisfy their foreign keys.
	if err := im.Events.Insert(ctx, event.Row()); err != nil {
		return err
	}
	report.Events++

	for _, name := range SplitSpeakers(event.Speaker) {
		speakerID, seen := st.speakerIDs[name]
		if !seen {
			speakerID = int64(len(st.speakerIDs))
			st.speakerIDs[name] = speakerID
			speaker := &models.Speaker{ID: speakerID, Name: name}
			if err := im.Speakers.Insert(ctx, speaker.Row()); err != nil {
				return err
			}
			report.Speakers++
		}

		link := &models.EventSpeaker{EventID: event.ID, SpeakerID: speakerID}
		if err := im.EventSpeakers.Insert(ctx, link.Row()); err != nil {
			return err
		}
		report.Links++
	}
	return nil
}

// SplitSpeakers breaks a speaker cell into distinct names in order of appearance.
// Empty names are dropped.
func SplitSpeakers(cell string) []string {
	if cell == "" {
		return nil
	}
	var names []string
	seen := make(map[string]bool)
	for _, name := range strings.Split(cell, models.SpeakerSeparator) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
