package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aura-platform/usercenter/pkg/queue"
)

// CodeSender delivers a verification code to its receiver.
type CodeSender interface {
	SendCode(ctx context.Context, receiver, codeType, code string) error
}

// QueuedSender hands codes to the delivery queue instead of sending inline.
// When the queue cannot take a job the code goes to the fallback sender.
type QueuedSender struct {
	queue    *queue.Queue
	fallback CodeSender
	logger   *zap.Logger
}

// NewQueuedSender creates a CodeSender backed by q. fallback may be nil.
func NewQueuedSender(q *queue.Queue, fallback CodeSender, logger *zap.Logger) *QueuedSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueuedSender{queue: q, fallback: fallback, logger: logger}
}

// SendCode enqueues a delivery job, or sends inline through the fallback
// when the enqueue fails.
func (s *QueuedSender) SendCode(ctx context.Context, receiver, codeType, code string) error {
	err := s.queue.EnqueueCodeDelivery(ctx, queue.CodeDeliveryPayload{Receiver: receiver, Type: codeType, Code: code})
	if err == nil || s.fallback == nil {
		return err
	}
	s.logger.Warn("enqueue code delivery failed, sending inline", zap.String("type", codeType), zap.Error(err))
	return s.fallback.SendCode(ctx, receiver, codeType, code)
}

// DeliveryProcessor consumes code delivery jobs and passes them to a sender.
type DeliveryProcessor struct {
	queue   *queue.Queue
	sender  CodeSender
	logger  *zap.Logger
	poll    time.Duration
	backoff time.Duration
}

// NewDeliveryProcessor creates a code delivery processor.
func NewDeliveryProcessor(q *queue.Queue, sender CodeSender, logger *zap.Logger) *DeliveryProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryProcessor{queue: q, sender: sender, logger: logger, poll: time.Second, backoff: queue.RetryBackoff}
}

// Process executes one delivery job.
func (p *DeliveryProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeCodeDelivery {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.CodeDeliveryPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := p.sender.SendCode(ctx, payload.Receiver, payload.Type, payload.Code); err != nil {
		return fmt.Errorf("send code: %w", err)
	}
	return nil
}

// Run dequeues and processes jobs until ctx is done. Failed jobs are
// retried, then dead-lettered.
func (p *DeliveryProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("delivery worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx, p.poll)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *DeliveryProcessor) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(p.backoff):
	}
}
