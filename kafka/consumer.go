package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/IBM/sarama"

	"dropbot/types"
)

// Processor is the pipeline entrypoint triggered by incoming messages.
type Processor interface {
	Process(ctx context.Context, ids []string, opts types.EnrichmentOptions) (*types.ProcessingRun, error)
}

// EnrichRequest is the message format on the trigger topic.
type EnrichRequest struct {
	BookmarkIDs        []string `json:"bookmark_ids"`
	ExtractTags        bool     `json:"extract_tags"`
	GenerateSummary    bool     `json:"generate_summary"`
	UpdateRemote       bool     `json:"update_remote"`
	OverrideClassified bool     `json:"override_classified"`
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers   []string
	Topic     string
	GroupID   string
	Processor Processor
}

// Consumer listens for enrichment requests on a Kafka topic and feeds
// them into the pipeline. It is an optional trigger surface next to the
// HTTP API.
type Consumer struct {
	group     sarama.ConsumerGroup
	processor Processor
	topic     string
	groupID   string
	ready     chan bool
}

// NewConsumer creates a Kafka consumer group for the trigger topic.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:     group,
		processor: cfg.Processor,
		topic:     cfg.Topic,
		groupID:   cfg.GroupID,
		ready:     make(chan bool),
	}, nil
}

// Start begins consuming enrichment requests. It returns once the
// consumer group session is established.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &requestHandler{consumer: c, ready: c.ready}

	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
				if err == context.Canceled {
					log.Println("Kafka consumer context canceled")
					return
				}
				log.Printf("Error from Kafka consumer: %v", err)
			}
			if ctx.Err() != nil {
				return
			}
			handler.ready = make(chan bool)
		}
	}()

	<-c.ready
	log.Printf("✅ Kafka trigger started (group: %s, topic: %s)", c.groupID, c.topic)

	go func() {
		for err := range c.group.Errors() {
			log.Printf("❌ Kafka consumer error: %v", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the consumer.
func (c *Consumer) Close() error {
	log.Println("Closing Kafka consumer...")
	return c.group.Close()
}

// requestHandler implements sarama.ConsumerGroupHandler for enrichment requests.
type requestHandler struct {
	consumer *Consumer
	ready    chan bool
}

func (h *requestHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *requestHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *requestHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			h.handle(session.Context(), message.Value)
			// Malformed or failed requests are marked too: the pipeline
			// records failures per item, so redelivery buys nothing.
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *requestHandler) handle(ctx context.Context, value []byte) {
	var req EnrichRequest
	if err := json.Unmarshal(value, &req); err != nil {
		log.Printf("❌ Failed to unmarshal enrichment request: %v", err)
		return
	}
	if len(req.BookmarkIDs) == 0 {
		log.Printf("❌ Enrichment request without bookmark IDs, skipping")
		return
	}

	log.Printf("📥 Kafka enrichment request for %d bookmark(s)", len(req.BookmarkIDs))
	run, err := h.consumer.processor.Process(ctx, req.BookmarkIDs, types.EnrichmentOptions{
		ExtractTags:        req.ExtractTags,
		GenerateSummary:    req.GenerateSummary,
		UpdateRemote:       req.UpdateRemote,
		OverrideClassified: req.OverrideClassified,
	})
	if err != nil {
		log.Printf("❌ Triggered run failed: %v", err)
		return
	}
	log.Printf("✅ Triggered run %s complete (%d failed)", run.RunID, len(run.FailedIDs))
}
