package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"agenda/internal/agenda/importer"
	"agenda/internal/logger"

	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer MessageWriter
	Topic  string
	Logger *logger.Logger
}

func NewProducer(brokers []string, topic string, log *logger.Logger) *Producer {
	if log == nil {
		log = logger.Discard()
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer, Topic: topic, Logger: log}
}

// ImportCompletedEvent is the payload announcing a finished import run.
type ImportCompletedEvent struct {
	Type   string          `json:"type"`
	Report importer.Report `json:"report"`
}

// PublishImportCompleted streams the import report to Kafka, keyed by run id.
func (p *Producer) PublishImportCompleted(ctx context.Context, report importer.Report) error {
	msgBytes, err := json.Marshal(ImportCompletedEvent{Type: "agenda.imported", Report: report})
	if err != nil {
		return err
	}

	log := p.Logger
	if log == nil {
		log = logger.Discard()
	}
	log.Info("KAFKA", fmt.Sprintf("Publishing to Kafka [%s]: run %s", p.Topic, report.RunID))

	return p.Writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(report.RunID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
