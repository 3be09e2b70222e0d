package counter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/like-engine/domain"
	"github.com/Guyuepp/like-engine/internal/backoff"
)

// Processor drives one delta intent through the ledger, the status
// machine and the aggregate store. It is the only component that
// mutates ledger entries or the aggregate counter for a given event.
type Processor struct {
	events   domain.CountEventRepository
	posts    domain.PostRepository
	cache    domain.CountCache
	deadSink domain.DeadLetterSink

	machine   *statusMachine
	executor  *backoff.Executor
	retryOpts backoff.Options
}

var _ domain.IntentProcessor = (*Processor)(nil)

func NewProcessor(events domain.CountEventRepository, posts domain.PostRepository, cache domain.CountCache, deadSink domain.DeadLetterSink, retryOpts backoff.Options) *Processor {
	return &Processor{
		events:    events,
		posts:     posts,
		cache:     cache,
		deadSink:  deadSink,
		machine:   newStatusMachine(),
		executor:  backoff.NewExecutor(),
		retryOpts: retryOpts,
	}
}

// Process handles one raw message to completion. It returns an error
// only when no terminal outcome was reached (ledger unreachable, status
// not persisted); the caller then leaves the message for redelivery.
func (p *Processor) Process(ctx context.Context, payload []byte) error {
	intent, err := parseIntent(payload)
	if err != nil {
		// Malformed input can never succeed: dead-letter it right away,
		// without creating a ledger entry.
		logrus.Errorf("failed to parse delta intent: %v", err)
		_ = p.deadSink.Send(ctx, payload, err)
		return nil
	}

	entry, err := p.events.RecordIfAbsent(ctx, intent.EventID, intent.PostID, intent.Delta)
	if err != nil {
		return fmt.Errorf("record intent %s: %w", intent.EventID, err)
	}

	if entry.Status == domain.EventSuccess {
		logrus.Infof("event %s already processed successfully, skipping", entry.EventID)
		return nil
	}

	label := "count-event-" + intent.EventID
	attempt := 0
	err = p.executor.Execute(ctx, func(ctx context.Context) error {
		attempt++
		return p.applyOnce(ctx, &entry, intent, attempt)
	}, p.retryOpts, label)

	// Terminal bookkeeping must land even when the per-message deadline
	// expired mid-retry; otherwise the entry stays PENDING and the
	// dead-letter sink never sees the message.
	if err != nil {
		return p.finishFailed(context.WithoutCancel(ctx), &entry, payload, err)
	}
	return p.finish(context.WithoutCancel(ctx), &entry, SetSuccess)
}

// applyOnce is one attempt of the business step. Any attempt after the
// first (in this run or a previous one that crashed mid-retry) moves
// the entry into RETRYING first, keeping the audit trail honest.
func (p *Processor) applyOnce(ctx context.Context, entry *domain.CountEvent, intent domain.DeltaIntent, attempt int) error {
	if attempt > 1 || entry.RetryCount > 0 {
		if _, err := p.machine.Trigger(entry.Status, SetRetrying, entry); err != nil {
			return err
		}
		if err := p.events.SetStatus(ctx, entry.EventID, entry.Status, entry.RetryCount); err != nil {
			return err
		}
	}

	if err := p.posts.EnsureExists(ctx, intent.PostID); err != nil {
		return err
	}
	if err := p.posts.ApplyDelta(ctx, intent.PostID, intent.Delta); err != nil {
		return err
	}

	// Best effort: a stale count repopulated between toggle and apply
	// would otherwise survive until TTL.
	if err := p.cache.InvalidateLikeCount(ctx, intent.PostID); err != nil {
		logrus.Warnf("failed to invalidate count cache for post %d: %v", intent.PostID, err)
	}
	return nil
}

func (p *Processor) finish(ctx context.Context, entry *domain.CountEvent, event StatusEvent) error {
	if _, err := p.machine.Trigger(entry.Status, event, entry); err != nil {
		return err
	}
	return p.events.SetStatus(ctx, entry.EventID, entry.Status, entry.RetryCount)
}

// finishFailed marks the entry FAILED and forwards the original message
// to the dead-letter sink. A redelivered entry that is already terminal
// cannot transition again; it goes straight to the sink instead of
// looping forever.
func (p *Processor) finishFailed(ctx context.Context, entry *domain.CountEvent, payload []byte, cause error) error {
	logrus.Errorf("failed to process event %s after all retries: %v", entry.EventID, cause)

	if _, err := p.machine.Trigger(entry.Status, SetFailed, entry); err != nil {
		logrus.Errorf("cannot mark event %s failed from status %s: %v", entry.EventID, entry.Status, err)
		_ = p.deadSink.Send(ctx, payload, cause)
		return nil
	}
	if err := p.events.SetStatus(ctx, entry.EventID, entry.Status, entry.RetryCount); err != nil {
		return err
	}

	_ = p.deadSink.Send(ctx, payload, cause)
	return nil
}

func parseIntent(payload []byte) (domain.DeltaIntent, error) {
	var intent domain.DeltaIntent
	if err := json.Unmarshal(payload, &intent); err != nil {
		return domain.DeltaIntent{}, err
	}
	if intent.EventID == "" {
		return domain.DeltaIntent{}, errors.New("delta intent missing event_id")
	}
	if intent.Delta != 1 && intent.Delta != -1 {
		return domain.DeltaIntent{}, fmt.Errorf("delta intent %s has invalid delta %d", intent.EventID, intent.Delta)
	}
	return intent, nil
}
