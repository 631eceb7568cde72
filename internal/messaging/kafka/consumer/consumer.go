package consumer

import (
	"context"
	"encoding/json"
	"time"

	"aisg-audit/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader dipenuhi *kafkago.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// ManagerRefresher dipenuhi audit.Service.
type ManagerRefresher interface {
	RefreshManagerAggregation(ctx context.Context, event events.AuditLifecycleEvent) error
}

// RetryPolicy: refresh yang gagal diulang di tempat sebelum offset maju.
// Nilai nol memakai default.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 5
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	return p
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return d
}

type outcome int

const (
	outcomeHandled outcome = iota
	outcomeSkipped
	outcomeRetry
)

// ConsumeAuditLifecycle menyegarkan agregasi tim di audit atasan setiap kali
// audit bawahan dibuat, berubah agregasinya, atau dihapus.
//
// FetchMessage selalu maju ke offset berikutnya, jadi pesan yang gagal diulang
// di sini. Setelah MaxAttempts pesan tetap di-commit; audit atasan bisa
// disegarkan manual lewat endpoint refresh-aggregation.
func ConsumeAuditLifecycle(
	ctx context.Context,
	reader MessageReader,
	refresher ManagerRefresher,
	policy RetryPolicy,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.audit_lifecycle")
	policy = policy.withDefaults()
	log.Info("audit lifecycle consumer started", zap.Int("max_attempts", policy.MaxAttempts))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("audit lifecycle consumer stopped")
				return
			}
			log.Error("fetch audit lifecycle message failed", zap.Error(err))
			continue
		}

		if !processWithRetry(ctx, msg, refresher, policy, log) {
			// dibatalkan saat menunggu; offset tidak di-commit
			log.Info("audit lifecycle consumer stopped")
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit audit lifecycle message failed", zap.Error(err))
		}
	}
}

// processWithRetry mengembalikan false hanya jika ctx selesai sebelum pesan tuntas.
func processWithRetry(
	ctx context.Context,
	msg kafkago.Message,
	refresher ManagerRefresher,
	policy RetryPolicy,
	log *zap.Logger,
) bool {
	for attempt := 1; ; attempt++ {
		if handleAuditMessage(ctx, msg, refresher, log) != outcomeRetry {
			return true
		}
		if attempt >= policy.MaxAttempts {
			log.Error("audit lifecycle message dropped after retries",
				zap.Int("attempts", attempt),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			return true
		}

		wait := policy.delay(attempt)
		log.Warn("retrying audit lifecycle message",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Int64("offset", msg.Offset),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

func handleAuditMessage(ctx context.Context, msg kafkago.Message, refresher ManagerRefresher, log *zap.Logger) outcome {
	var event events.AuditLifecycleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode audit lifecycle event failed", zap.Error(err))
		return outcomeSkipped
	}

	switch event.EventType {
	case events.AuditCreated, events.AuditAggregationRefreshed, events.AuditDeleted:
	default:
		log.Debug("audit lifecycle event ignored", zap.String("event_type", event.EventType))
		return outcomeSkipped
	}

	if err := refresher.RefreshManagerAggregation(ctx, event); err != nil {
		log.Error("refresh manager aggregation failed",
			zap.String("event_type", event.EventType),
			zap.String("audit_id", event.AuditID),
			zap.String("employee_id", event.EmployeeID),
			zap.String("company_id", event.CompanyID),
			zap.Error(err),
		)
		return outcomeRetry
	}

	log.Info("manager aggregation refreshed",
		zap.String("event_type", event.EventType),
		zap.String("employee_id", event.EmployeeID),
		zap.Int("year", event.Year),
		zap.Int("quarter", event.Quarter),
		zap.Int("depth", event.Depth),
	)
	return outcomeHandled
}
