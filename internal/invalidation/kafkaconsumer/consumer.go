package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"mediamap/internal/invalidation"
	"mediamap/internal/observability"
)

// Refresher rebuilds the library-derived data after a reindex: the facet
// index, the filtered point set and any cached search responses.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Consumer struct {
	cfg       Config
	logger    *slog.Logger
	refresher Refresher
}

func New(cfg Config, logger *slog.Logger, refresher Refresher) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{cfg: cfg, logger: logger, refresher: refresher}
}

// Start consumes reindex events until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.refresher == nil {
		return errors.New("kafkaconsumer: missing refresher")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne}

	c.logger.Info("reindex consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("reindex consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				c.logger.Error("consumer error", "err", err)
				time.Sleep(2 * time.Second)
			}
		}
	}
}

// ProcessOne handles a single reindex event message. Undecodable or invalid
// messages are logged and skipped; they must not wedge the partition.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	start := time.Now()

	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		observability.IncCatalogReload("decode_error")
		c.logger.Error("reindex event decode failed",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
		return nil
	}
	if err := ev.Validate(); err != nil {
		observability.IncCatalogReload("invalid_event")
		c.logger.Error("reindex event invalid",
			"topic", msg.Topic, "offset", msg.Offset, "err", err)
		return nil
	}

	if err := c.refresher.Refresh(ctx); err != nil {
		observability.IncCatalogReload("error")
		return fmt.Errorf("refresh after reindex: %w", err)
	}

	observability.IncCatalogReload("ok")
	c.logger.Info("library refreshed after reindex",
		"source", ev.Source, "files", ev.Files, "took", time.Since(start).String())
	return nil
}
