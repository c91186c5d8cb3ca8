package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/config"
)

type Type string

const (
	PaymentApprovalRequested Type = "payment.approval_requested"
	PaymentCompleted         Type = "payment.completed"
	PaymentFailed            Type = "payment.failed"
)

// Event 付款生命周期事件
type Event struct {
	Type       Type      `json:"type"`
	PaymentID  int64     `json:"payment_id"`
	CompanyID  int64     `json:"company_id"`
	Method     string    `json:"method"`
	Purpose    string    `json:"purpose"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	Source     string    `json:"source"` // approval / webhook
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher 领域事件发布接口，发布失败不影响业务流程
type Publisher interface {
	Publish(event Event)
	Close()
}

// Nop 未配置 kafka 时使用
type Nop struct{}

func (Nop) Publish(Event) {}
func (Nop) Close()        {}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer    KafkaWriter
	events    chan Event
	logger    *zap.Logger
	closeChan chan struct{}
	done      chan struct{}
}

// New brokers 为空时返回 Nop
func New(cfg config.KafkaConfig, logger *zap.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		return Nop{}
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, 1000, logger)
}

func newKafkaPublisher(writer KafkaWriter, buffer int, logger *zap.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		writer:    writer,
		events:    make(chan Event, buffer),
		logger:    logger.Named("kafka_publisher"),
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}
	go p.eventLoop()
	return p
}

func (p *KafkaPublisher) Publish(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	select {
	case p.events <- event:
	default:
		p.logger.Warn("kafka publisher queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.Int64("payment_id", event.PaymentID),
		)
	}
}

func (p *KafkaPublisher) eventLoop() {
	defer close(p.done)
	for {
		select {
		case event := <-p.events:
			p.send(event)
		case <-p.closeChan:
			// 发送剩余事件
			for {
				select {
				case event := <-p.events:
					p.send(event)
				default:
					return
				}
			}
		}
	}
}

func (p *KafkaPublisher) send(event Event) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to serialize event", zap.Error(err), zap.Int64("payment_id", event.PaymentID))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.PaymentID, 10)),
		Value: value,
	})
	if err != nil {
		p.logger.Error("failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.Int64("payment_id", event.PaymentID),
		)
	}
}

func (p *KafkaPublisher) Close() {
	close(p.closeChan)
	<-p.done
	if err := p.writer.Close(); err != nil {
		p.logger.Error("failed to close kafka writer", zap.Error(err))
	}
}
