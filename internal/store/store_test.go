package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"agenda/internal/config"
	"agenda/internal/models"
	"agenda/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *store.DB {
	db, err := store.Open(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    ":memory:",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleEvent(id int64, title string) *models.Event {
	return &models.Event{
		ID:        id,
		Date:      "06/16/2018",
		TimeStart: "08:00 AM",
		TimeEnd:   "09:00 AM",
		Session:   "Session",
		Title:     title,
	}
}

func TestMigrateAndSelect(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	rels, err := db.Migrate(ctx, false)
	require.NoError(t, err)

	require.NoError(t, rels.Events.Insert(ctx, sampleEvent(15, "Opening").Row()))
	require.NoError(t, rels.Events.Insert(ctx, sampleEvent(16, "Keynote").Row()))

	rows, err := rels.Events.Select(ctx, nil, store.Where{"title": "Keynote"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 16, rows[0]["id"])
	assert.Equal(t, "Keynote", rows[0]["title"])
	assert.Contains(t, rows[0], "parent_id")
	assert.Nil(t, rows[0]["parent_id"])

	// Empty where returns every row in key order.
	rows, err = rels.Events.Select(ctx, []string{"id"}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 15, rows[0]["id"])
	assert.Len(t, rows[0], 1)

	rows, err = rels.Events.Select(ctx, nil, store.Where{"title": "Missing"})
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	rels, err := db.Migrate(ctx, false)
	require.NoError(t, err)
	require.NoError(t, rels.Speakers.Insert(ctx, (&models.Speaker{ID: 0, Name: "Alice"}).Row()))

	rels, err = db.Migrate(ctx, false)
	require.NoError(t, err)
	rows, err := rels.Speakers.Select(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// Reset drops existing rows.
	rels, err = db.Migrate(ctx, true)
	require.NoError(t, err)
	rows, err = rels.Speakers.Select(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCreateRejectsIncompatibleRelation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := db.Bun.ExecContext(ctx, `CREATE TABLE speakers (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	err = db.Relation((*models.Speaker)(nil)).Create(ctx)
	var schemaErr *store.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "speakers", schemaErr.Relation)
	assert.Equal(t, []string{"name"}, schemaErr.Missing)
}

func TestInsertConstraintViolations(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	rels, err := db.Migrate(ctx, false)
	require.NoError(t, err)

	require.NoError(t, rels.Speakers.Insert(ctx, (&models.Speaker{ID: 0, Name: "Alice"}).Row()))

	err = rels.Speakers.Insert(ctx, (&models.Speaker{ID: 0, Name: "Bob"}).Row())
	var violation *store.ConstraintViolation
	require.True(t, errors.As(err, &violation), "duplicate primary key: %v", err)
	assert.Equal(t, "speakers", violation.Relation)

	orphan := sampleEvent(20, "Q&A")
	parent := int64(99)
	orphan.ParentID = &parent
	err = rels.Events.Insert(ctx, orphan.Row())
	assert.True(t, errors.As(err, &violation), "dangling parent_id: %v", err)

	err = rels.EventSpeakers.Insert(ctx, (&models.EventSpeaker{EventID: 42, SpeakerID: 0}).Row())
	assert.True(t, errors.As(err, &violation), "dangling event_id: %v", err)
	assert.Equal(t, "event_speakers", violation.Relation)

	require.NoError(t, rels.Events.Insert(ctx, sampleEvent(21, "Keynote").Row()))
	err = rels.EventSpeakers.Insert(ctx, (&models.EventSpeaker{EventID: 21, SpeakerID: 7}).Row())
	assert.True(t, errors.As(err, &violation), "dangling speaker_id: %v", err)

	require.NoError(t, rels.EventSpeakers.Insert(ctx, (&models.EventSpeaker{EventID: 21, SpeakerID: 0}).Row()))
}

func TestEventSpeakersDeclareForeignKeys(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	_, err := db.Migrate(ctx, false)
	require.NoError(t, err)

	var ddl string
	err = db.Bun.NewSelect().
		TableExpr("sqlite_master").
		Column("sql").
		Where("name = ?", "event_speakers").
		Scan(ctx, &ddl)
	require.NoError(t, err)
	assert.Contains(t, ddl, `REFERENCES "agenda" ("id")`)
	assert.Contains(t, ddl, `REFERENCES "speakers" ("id")`)
}

func TestReadRelationsOmitParentID(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := db.Verify(ctx)
	var schemaErr *store.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.True(t, schemaErr.NotFound)

	rels, err := db.Migrate(ctx, false)
	require.NoError(t, err)
	parent := sampleEvent(15, "Opening")
	child := sampleEvent(16, "Q&A")
	child.Session = models.SubSessionMarker
	child.ParentID = &parent.ID
	require.NoError(t, rels.Events.Insert(ctx, parent.Row()))
	require.NoError(t, rels.Events.Insert(ctx, child.Row()))

	read, err := db.Verify(ctx)
	require.NoError(t, err)
	assert.NotContains(t, read.Events.Columns(), "parent_id")

	rows, err := read.Events.Select(ctx, nil, store.Where{"parent_id": int64(15)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Q&A", rows[0]["title"])
	assert.NotContains(t, rows[0], "parent_id")
}

func TestPostgresStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "agenda",
				"POSTGRES_PASSWORD": "agenda",
				"POSTGRES_DB":       "agenda",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer pgContainer.Terminate(ctx)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := store.Open(ctx, config.DatabaseConfig{
		Driver:     config.DriverPostgres,
		DSN:        fmt.Sprintf("postgres://agenda:agenda@%s:%s/agenda?sslmode=disable", host, port.Port()),
		MaxRetries: 5,
		RetryDelay: time.Second,
	}, nil)
	require.NoError(t, err)
	defer db.Close()

	rels, err := db.Migrate(ctx, true)
	require.NoError(t, err)

	require.NoError(t, rels.Events.Insert(ctx, sampleEvent(15, "Opening").Row()))
	require.NoError(t, rels.Speakers.Insert(ctx, (&models.Speaker{ID: 0, Name: "Alice"}).Row()))
	require.NoError(t, rels.EventSpeakers.Insert(ctx, (&models.EventSpeaker{EventID: 15, SpeakerID: 0}).Row()))

	err = rels.EventSpeakers.Insert(ctx, (&models.EventSpeaker{EventID: 15, SpeakerID: 0}).Row())
	var violation *store.ConstraintViolation
	assert.True(t, errors.As(err, &violation))

	rows, err := rels.Events.Select(ctx, []string{"id", "title"}, store.Where{"title": "Opening"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 15, rows[0]["id"])
}
