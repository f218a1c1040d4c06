package kafka_test

import (
	"context"
	"encoding/json"
	"testing"

	"agenda/internal/agenda/importer"
	agendakafka "agenda/internal/kafka"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	return nil
}

func TestPublishImportCompleted(t *testing.T) {
	writer := &recordingWriter{}
	producer := &agendakafka.Producer{Writer: writer, Topic: "agenda.imported"}

	report := importer.Report{RunID: "run-1", Source: "agenda.xls", Events: 3, Speakers: 2, Links: 4}
	require.NoError(t, producer.PublishImportCompleted(context.Background(), report))

	require.Len(t, writer.messages, 1)
	assert.Equal(t, "run-1", string(writer.messages[0].Key))

	var event agendakafka.ImportCompletedEvent
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &event))
	assert.Equal(t, "agenda.imported", event.Type)
	assert.Equal(t, 3, event.Report.Events)
	assert.Equal(t, "agenda.xls", event.Report.Source)
}
