package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/pkg/metrics"
	"github.com/qs3c/devmatch_server/internal/pkg/queue"
)

const (
	popTimeout     = 5 * time.Second
	defaultRetries = 3
)

var ErrEmptyMessage = errors.New("empty mail message")

// Source 邮件来源，生产环境为 redis 队列
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.MailMessage, error)
}

// Processor 邮件任务处理器
type Processor struct {
	sender     email.Sender
	metrics    *metrics.Metrics
	logger     *zap.Logger
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

// NewProcessor 创建邮件任务处理器
func NewProcessor(sender email.Sender, m *metrics.Metrics, logger *zap.Logger) *Processor {
	return &Processor{
		sender:     sender,
		metrics:    m,
		logger:     logger.Named("worker"),
		maxRetries: defaultRetries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

// Process 发送一封邮件，SMTP 瞬时失败按指数退避重试
func (p *Processor) Process(ctx context.Context, msg *queue.MailMessage) error {
	if msg == nil || msg.Mail == nil || msg.Mail.To == "" {
		return ErrEmptyMessage
	}

	attempts := 0
	op := func() error {
		attempts++
		err := p.sender.Send(ctx, msg.Mail)
		if errors.Is(err, email.ErrNotConfigured) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), p.maxRetries), ctx)
	err := backoff.RetryNotify(op, policy, func(err error, next time.Duration) {
		p.logger.Warn("mail send failed, retrying",
			zap.String("id", msg.ID),
			zap.String("kind", msg.Mail.Kind),
			zap.Error(err),
			zap.Duration("next", next),
		)
	})

	p.metrics.Email(msg.Mail.Kind, err == nil)
	if err != nil {
		p.logger.Error("mail dropped",
			zap.String("id", msg.ID),
			zap.String("kind", msg.Mail.Kind),
			zap.String("to", msg.Mail.To),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return err
	}

	p.logger.Info("mail sent",
		zap.String("id", msg.ID),
		zap.String("kind", msg.Mail.Kind),
		zap.Duration("queued", time.Since(msg.EnqueuedAt)),
	)
	return nil
}

// Run 启动 workers 个消费者，阻塞直到 ctx 取消且所有消费者退出
func (p *Processor) Run(ctx context.Context, src Source, workers int) {
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(workerID int) {
			defer wg.Done()
			p.consume(ctx, src, workerID)
		}(i)
	}
	wg.Wait()
}

func (p *Processor) consume(ctx context.Context, src Source, workerID int) {
	for {
		if ctx.Err() != nil {
			p.logger.Info("worker shutting down", zap.Int("worker", workerID))
			return
		}

		msg, err := src.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("failed to pop mail", zap.Int("worker", workerID), zap.Error(err))
			// 避免 redis 故障时空转
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if msg == nil {
			continue // 超时，继续等待
		}

		_ = p.Process(ctx, msg)
	}
}
