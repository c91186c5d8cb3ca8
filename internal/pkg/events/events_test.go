package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/qs3c/devmatch_server/config"
)

type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestNew_WithoutBrokers(t *testing.T) {
	p := New(config.KafkaConfig{}, zaptest.NewLogger(t))

	_, ok := p.(Nop)
	assert.True(t, ok)
	assert.NotPanics(t, func() {
		p.Publish(Event{Type: PaymentCompleted})
		p.Close()
	})
}

func TestKafkaPublisher_PublishAndClose(t *testing.T) {
	writer := new(MockKafkaWriter)
	var written []kafka.Message
	writer.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			written = append(written, args.Get(1).([]kafka.Message)...)
		}).
		Return(nil)
	writer.On("Close").Return(nil)

	p := newKafkaPublisher(writer, 10, zaptest.NewLogger(t))
	p.Publish(Event{Type: PaymentCompleted, PaymentID: 9, CompanyID: 3, Purpose: "scout"})
	p.Close()

	require.Len(t, written, 1)
	assert.Equal(t, "9", string(written[0].Key))

	var got Event
	require.NoError(t, json.Unmarshal(written[0].Value, &got))
	assert.Equal(t, PaymentCompleted, got.Type)
	assert.Equal(t, int64(3), got.CompanyID)
	assert.False(t, got.OccurredAt.IsZero())
	writer.AssertExpectations(t)
}

func TestKafkaPublisher_WriteErrorLogged(t *testing.T) {
	core, recorded := observer.New(zap.ErrorLevel)
	writer := new(MockKafkaWriter)
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	writer.On("Close").Return(nil)

	p := newKafkaPublisher(writer, 10, zap.New(core))
	p.Publish(Event{Type: PaymentFailed, PaymentID: 1})
	p.Close()

	assert.Equal(t, 1, recorded.FilterMessage("failed to produce event").Len())
}

func TestKafkaPublisher_DropsWhenFull(t *testing.T) {
	core, recorded := observer.New(zap.WarnLevel)
	writer := new(MockKafkaWriter)
	writer.On("Close").Return(nil)

	// 直接构造，不启动发送循环
	p := &KafkaPublisher{
		writer: writer,
		events: make(chan Event, 1),
		logger: zap.New(core),
	}
	p.Publish(Event{PaymentID: 1})
	p.Publish(Event{PaymentID: 2})

	assert.Equal(t, 1, len(p.events))
	assert.Equal(t, 1, recorded.FilterMessage("kafka publisher queue full, dropping event").Len())
}
