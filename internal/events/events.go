package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/esportehub/equipment-reservation/internal/model"
)

const (
	TypeCreated       = "reservation.created"
	TypeStatusChanged = "reservation.status_changed"
	TypeDeleted       = "reservation.deleted"
)

// ReservationEvent is what downstream consumers (stats, notifications)
// receive for every lifecycle change.
type ReservationEvent struct {
	Type           string       `json:"type"`
	ReservationUID string       `json:"reservationUid"`
	Username       string       `json:"username"`
	EquipmentID    int          `json:"equipmentId"`
	Amount         int          `json:"amount"`
	Status         model.Status `json:"status"`
	OccurredAt     time.Time    `json:"occurredAt"`
}

// Publisher pushes reservation events to kafka. A nil Publisher is valid
// and drops everything, so wiring stays optional.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.Logger
}

func NewPublisher(producer sarama.SyncProducer, topic string, log *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		log:      log.Named("events"),
	}
}

// Publish sends the event; failures are logged and never propagated, the
// reservation change has already been committed.
func (p *Publisher) Publish(_ context.Context, ev ReservationEvent) {
	if p == nil || p.producer == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("marshal event", zap.Error(err))
		return
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.ReservationUID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		p.log.Error("publish event", zap.String("type", ev.Type), zap.Error(err))
	}
}
