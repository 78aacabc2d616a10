package feed

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/uhyunpark/orderboard/pkg/app/market"
)

// SaramaPublisher writes snapshots with an IBM/sarama sync producer.
type SaramaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewSaramaPublisher(brokers []string, topic string) (*SaramaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return newSaramaPublisher(producer, topic), nil
}

func newSaramaPublisher(producer sarama.SyncProducer, topic string) *SaramaPublisher {
	return &SaramaPublisher{producer: producer, topic: topic}
}

// Publish ignores ctx; the sync producer has its own timeouts.
func (p *SaramaPublisher) Publish(_ context.Context, s market.Snapshot) error {
	key, value, err := Encode(s)
	if err != nil {
		return fmt.Errorf("encode snapshot %d: %w", s.Seq, err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	return err
}

func (p *SaramaPublisher) Close() error {
	return p.producer.Close()
}

var _ market.Publisher = (*SaramaPublisher)(nil)
