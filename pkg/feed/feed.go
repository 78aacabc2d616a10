package feed

import (
	"fmt"
	"io"

	"github.com/uhyunpark/orderboard/params"
	"github.com/uhyunpark/orderboard/pkg/app/market"
)

// ClosingPublisher is a market.Publisher that owns a broker connection.
type ClosingPublisher interface {
	market.Publisher
	io.Closer
}

// New builds the publisher selected by cfg.Driver. It returns nil, nil for
// the "none" driver.
func New(cfg params.Feed) (ClosingPublisher, error) {
	switch cfg.Driver {
	case "", params.FeedNone:
		return nil, nil
	case params.FeedKafka:
		return NewKafkaPublisher(cfg.Brokers, cfg.Topic), nil
	case params.FeedSarama:
		p, err := NewSaramaPublisher(cfg.Brokers, cfg.Topic)
		if err != nil {
			return nil, fmt.Errorf("sarama producer: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown feed driver %q", cfg.Driver)
	}
}
