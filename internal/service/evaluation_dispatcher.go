package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackjudge/internal/middleware"
	"github.com/noah-isme/hackjudge/internal/worker"
)

// Dispatch modes reported in metrics.
const (
	DispatchInline = "inline"
	DispatchPool   = "pool"
	DispatchNATS   = "nats"
)

const evaluatorQueueGroup = "hackjudge-evaluators"

// Dispatcher hands a stored submission to the evaluator.
type Dispatcher interface {
	Dispatch(ctx context.Context, submissionID uint) error
	Mode() string
}

// InlineDispatcher evaluates before the submit request returns.
type InlineDispatcher struct {
	evaluations EvaluationService
}

// NewInlineDispatcher constructs an InlineDispatcher.
func NewInlineDispatcher(evaluations EvaluationService) *InlineDispatcher {
	return &InlineDispatcher{evaluations: evaluations}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, submissionID uint) error {
	return d.evaluations.Evaluate(ctx, submissionID)
}

func (d *InlineDispatcher) Mode() string { return DispatchInline }

// PoolDispatcher queues evaluations on the in-process worker pool.
type PoolDispatcher struct {
	pool        *worker.Pool
	evaluations EvaluationService
	logger      zerolog.Logger
}

// NewPoolDispatcher constructs a PoolDispatcher. The pool must be started by the caller.
func NewPoolDispatcher(pool *worker.Pool, evaluations EvaluationService, logger zerolog.Logger) *PoolDispatcher {
	return &PoolDispatcher{
		pool:        pool,
		evaluations: evaluations,
		logger:      logger.With().Str("component", "pool_dispatcher").Logger(),
	}
}

func (d *PoolDispatcher) Dispatch(_ context.Context, submissionID uint) error {
	return d.pool.Submit(d.task(submissionID))
}

func (d *PoolDispatcher) Mode() string { return DispatchPool }

func (d *PoolDispatcher) task(submissionID uint) worker.Task {
	return func(ctx context.Context) {
		if err := d.evaluations.Evaluate(ctx, submissionID); err != nil {
			d.logger.Error().Err(err).Uint("submission_id", submissionID).Msg("evaluation failed")
		}
	}
}

type evaluationJob struct {
	SubmissionID  uint   `json:"submission_id"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// NATSDispatcher publishes evaluation jobs on a subject. Any replica running
// Start consumes them through a shared queue group.
type NATSDispatcher struct {
	conn    *nats.Conn
	subject string
	local   *PoolDispatcher
	logger  zerolog.Logger
}

// NewNATSDispatcher constructs a NATSDispatcher that runs received jobs on local.
func NewNATSDispatcher(conn *nats.Conn, subject string, local *PoolDispatcher, logger zerolog.Logger) *NATSDispatcher {
	return &NATSDispatcher{
		conn:    conn,
		subject: subject,
		local:   local,
		logger:  logger.With().Str("component", "nats_dispatcher").Logger(),
	}
}

func (d *NATSDispatcher) Dispatch(ctx context.Context, submissionID uint) error {
	if d.conn == nil {
		return errors.New("nats connection unavailable")
	}

	job := evaluationJob{SubmissionID: submissionID}
	job.CorrelationID = middleware.CorrelationIDFromContext(ctx)

	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := d.conn.Publish(d.subject, payload); err != nil {
		return fmt.Errorf("publish evaluation job: %w", err)
	}
	return nil
}

func (d *NATSDispatcher) Mode() string { return DispatchNATS }

// Start subscribes to the job subject until ctx is cancelled.
func (d *NATSDispatcher) Start(ctx context.Context) error {
	sub, err := d.conn.QueueSubscribe(d.subject, evaluatorQueueGroup, func(msg *nats.Msg) {
		d.handleMessage(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe to evaluation jobs: %w", err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			d.logger.Warn().Err(err).Msg("failed to drain evaluation subscription")
		}
	}()

	d.logger.Info().Str("subject", d.subject).Msg("consuming evaluation jobs")
	return nil
}

func (d *NATSDispatcher) handleMessage(payload []byte) {
	var job evaluationJob
	if err := json.Unmarshal(payload, &job); err != nil || job.SubmissionID == 0 {
		d.logger.Warn().Bytes("payload", payload).Msg("invalid evaluation job payload")
		return
	}

	if err := d.local.Dispatch(context.Background(), job.SubmissionID); err != nil {
		d.logger.Error().Err(err).
			Uint("submission_id", job.SubmissionID).
			Str("correlation_id", job.CorrelationID).
			Msg("failed to queue evaluation job")
	}
}
