// Package kafka publica los eventos de ciclo de vida de los traslados.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var _ inventory.TransferEventPublisher = (*TransferPublisher)(nil)

// MessageProducer lo que se usa de *kafka.Writer.
type MessageProducer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TransferPublisher serializa el evento en JSON; la clave es el id del traslado para conservar el orden
// de eventos de un mismo traslado dentro de la partición.
type TransferPublisher struct {
	producer MessageProducer
}

// NewWriter crea el writer para el tópico. brokers separados por coma.
func NewWriter(brokers, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(splitBrokers(brokers)...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// NewTransferPublisher construye el publicador.
func NewTransferPublisher(producer MessageProducer) *TransferPublisher {
	return &TransferPublisher{producer: producer}
}

// PublishTransferEvent escribe el evento en el tópico con clave = número de traslado
// (balanceo Hash: los eventos de un traslado conservan su orden).
func (p *TransferPublisher) PublishTransferEvent(ctx context.Context, ev inventory.TransferEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serializar evento %s: %w", ev.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.TransferNumber),
		Value: payload,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publicar evento %s: %w", ev.Type, err)
	}
	return nil
}

// Close cierra el writer.
func (p *TransferPublisher) Close() error {
	return p.producer.Close()
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
