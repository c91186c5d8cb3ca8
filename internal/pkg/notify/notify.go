package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/pkg/queue"
)

const deliverTimeout = 30 * time.Second

// Deliverer 实际投递邮件的方式
type Deliverer interface {
	Deliver(ctx context.Context, msg *email.Message) error
}

// Result 一次投递的结果
type Result struct {
	Kind    string
	To      string
	Err     error
	Dropped bool
}

// Notifier 尽力而为的邮件分发器。Notify 从不阻塞调用方，也不返回错误。
type Notifier struct {
	deliverer Deliverer
	mails     chan *email.Message
	logger    *zap.Logger

	hooksMu sync.RWMutex
	hooks   []func(Result)

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func New(deliverer Deliverer, bufferSize, workers int, logger *zap.Logger) *Notifier {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if workers <= 0 {
		workers = 1
	}

	n := &Notifier{
		deliverer: deliverer,
		mails:     make(chan *email.Message, bufferSize),
		logger:    logger.Named("notify"),
	}

	n.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go n.worker()
	}
	return n
}

// OnResult 注册结果回调（指标、日志）
func (n *Notifier) OnResult(hook func(Result)) {
	n.hooksMu.Lock()
	defer n.hooksMu.Unlock()
	n.hooks = append(n.hooks, hook)
}

// Notify 投递邮件。缓冲区满或已关闭时丢弃并记录。
func (n *Notifier) Notify(msg *email.Message) {
	if msg == nil || msg.To == "" {
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		n.report(Result{Kind: msg.Kind, To: msg.To, Dropped: true})
		return
	}

	select {
	case n.mails <- msg:
	default:
		n.logger.Warn("notify buffer full, dropping mail",
			zap.String("kind", msg.Kind),
			zap.String("to", msg.To),
		)
		n.report(Result{Kind: msg.Kind, To: msg.To, Dropped: true})
	}
}

// Close 停止接收新邮件，并等待缓冲区中的邮件投递完成
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.mails)
	n.mu.Unlock()

	n.wg.Wait()
}

func (n *Notifier) worker() {
	defer n.wg.Done()
	for msg := range n.mails {
		n.deliver(msg)
	}
}

func (n *Notifier) deliver(msg *email.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	err := n.deliverer.Deliver(ctx, msg)
	if err != nil {
		n.logger.Error("mail delivery failed",
			zap.String("kind", msg.Kind),
			zap.String("to", msg.To),
			zap.Error(err),
		)
	} else {
		n.logger.Debug("mail delivered", zap.String("kind", msg.Kind), zap.String("to", msg.To))
	}
	n.report(Result{Kind: msg.Kind, To: msg.To, Err: err})
}

func (n *Notifier) report(r Result) {
	n.hooksMu.RLock()
	hooks := n.hooks
	n.hooksMu.RUnlock()

	for _, hook := range hooks {
		hook(r)
	}
}

// Direct 进程内直接通过 SMTP 发送
type Direct struct {
	Sender email.Sender
}

func (d Direct) Deliver(ctx context.Context, msg *email.Message) error {
	return d.Sender.Send(ctx, msg)
}

// Queued 推入 redis 邮件队列，由 worker 进程发送
type Queued struct {
	Queue *queue.Queue
}

func (q Queued) Deliver(ctx context.Context, msg *email.Message) error {
	return q.Queue.Push(ctx, &queue.MailMessage{
		ID:         uuid.NewString(),
		Mail:       msg,
		EnqueuedAt: time.Now(),
	})
}
