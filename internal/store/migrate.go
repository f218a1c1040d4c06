package store

import (
	"context"

	"agenda/internal/models"
)

// Relations groups the three agenda relations.
type Relations struct {
	Events        *Relation
	Speakers      *Relation
	EventSpeakers *Relation
}

// WriteRelations binds the import-time schema, including agenda.parent_id.
func (d *DB) WriteRelations() Relations {
	return Relations{
		Events:        d.Relation((*models.Event)(nil)),
		Speakers:      d.Relation((*models.Speaker)(nil)),
		EventSpeakers: d.Relation((*models.EventSpeaker)(nil)),
	}
}

// ReadRelations binds the lookup-time schema, whose agenda view omits parent_id.
func (d *DB) ReadRelations() Relations {
	return Relations{
		Events:        d.Relation((*models.EventView)(nil)),
		Speakers:      d.Relation((*models.Speaker)(nil)),
		EventSpeakers: d.Relation((*models.EventSpeaker)(nil)),
	}
}

// Migrate creates the write relations, dropping them first when reset is set.
func (d *DB) Migrate(ctx context.Context, reset bool) (Relations, error) {
	rels := d.WriteRelations()

	if reset {
		// Reverse dependency order.
		for _, r := range []*Relation{rels.EventSpeakers, rels.Speakers, rels.Events} {
			if err := r.Drop(ctx); err != nil {
				return rels, err
			}
		}
	}

	for _, r := range []*Relation{rels.Events, rels.Speakers, rels.EventSpeakers} {
		if err := r.Create(ctx); err != nil {
			return rels, err
		}
	}
	return rels, nil
}

// Verify checks the read relations exist and match their models.
func (d *DB) Verify(ctx context.Context) (Relations, error) {
	rels := d.ReadRelations()
	for _, r := range []*Relation{rels.Events, rels.Speakers, rels.EventSpeakers} {
		if err := r.Check(ctx); err != nil {
			return rels, err
		}
	}
	return rels, nil
}
