package repository

import (
	"context"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	pkgkafka "PriceCast/pkg/kafka"
)

// KafkaPublisher writes each forecast as JSON keyed by symbol, so one
// symbol's forecasts stay ordered within a partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
}

func NewKafkaPublisher(p *pkgkafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: p}
}

func (k *KafkaPublisher) Name() string { return "kafka" }

func (k *KafkaPublisher) Publish(ctx context.Context, f *models.Forecast) error {
	return k.producer.Publish(ctx, []byte(f.Symbol), f)
}

func (k *KafkaPublisher) Close() error { return k.producer.Close() }

var _ domrepo.ForecastPublisher = (*KafkaPublisher)(nil)
