// Package kafka publica los eventos de traslado y de caja en Kafka (IBM/sarama),
// con un span OpenTelemetry por mensaje y el contexto de traza en los headers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/optica-core/internal/application/ports"
	"github.com/jhoicas/optica-core/pkg/logger"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Topics destino de cada familia de eventos.
type Topics struct {
	Transfers string
	Caisse    string
}

// Publisher envuelve un SyncProducer de sarama.
type Publisher struct {
	producer sarama.SyncProducer
	topics   Topics
	log      *logger.Logger
}

// NewConfig devuelve la configuración de productor usada en producción.
func NewConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000
	return config
}

// NewPublisher conecta con los brokers.
func NewPublisher(brokers []string, topics Topics, log *logger.Logger) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("crear productor Kafka: %w", err)
	}
	p := NewPublisherWithProducer(producer, topics, log)
	p.log.Info().Strs("brokers", brokers).Msg("publicador Kafka inicializado")
	return p, nil
}

// NewPublisherWithProducer usa un productor ya construido (tests con sarama/mocks).
func NewPublisherWithProducer(producer sarama.SyncProducer, topics Topics, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{producer: producer, topics: topics, log: log.Named("kafka")}
}

// PublishTransfer publica una transición de traslado; la clave es el número de traslado
// para conservar el orden por traslado dentro de la partición.
func (p *Publisher) PublishTransfer(ctx context.Context, event ports.TransferEvent) error {
	return p.publish(ctx, p.topics.Transfers, event.TransferNumber, event.EventType, event.EventID, event,
		attribute.String("transfer.id", event.TransferID),
		attribute.String("transfer.status", event.Status),
	)
}

// PublishCash publica un cambio de jornada; la clave es la jornada.
func (p *Publisher) PublishCash(ctx context.Context, event ports.CashEvent) error {
	return p.publish(ctx, p.topics.Caisse, event.SessionID, event.EventType, event.EventID, event,
		attribute.String("caisse.session_id", event.SessionID),
		attribute.String("caisse.register_id", event.RegisterID),
	)
}

func (p *Publisher) publish(ctx context.Context, topic, key, eventType, eventID string, payload any, attrs ...attribute.KeyValue) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(append(attrs,
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		)...),
	)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal")
		return fmt.Errorf("serializar evento: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
		{Key: []byte("event_id"), Value: []byte(eventID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(body),
		Headers: headers,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send")
		return fmt.Errorf("enviar a Kafka (%s): %w", topic, err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "")
	p.log.Debug().
		Str("topic", topic).
		Str("event_type", eventType).
		Str("event_id", eventID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("evento publicado")
	return nil
}

// Close cierra el productor.
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
