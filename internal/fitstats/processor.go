package fitstats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fittrack/backend/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// IncrementProcessor applies (userID, deltas) increments to the metric
// store with read-modify-write safety.
//
// The store exposes only get/set/update, no server-side atomic add and
// no compare-and-swap, so two concurrent increments for the same user
// could both read the same "old" totals and one would overwrite the
// other's effect (the classic lost update). The processor therefore
// serializes the whole read-modify-write cycle per user with a keyed
// mutex; increments for different users run fully in parallel. This
// assumes a single writer process owning the store, which holds here:
// this service is the only writer of the totals columns.
type IncrementProcessor struct {
	store        Store
	storeTimeout time.Duration

	mutex     sync.Mutex
	userLocks map[string]*sync.Mutex
}

func NewIncrementProcessor(store Store, storeTimeout time.Duration) *IncrementProcessor {
	return &IncrementProcessor{
		store:        store,
		storeTimeout: storeTimeout,
		userLocks:    make(map[string]*sync.Mutex),
	}
}

// Apply adds the given deltas to the user's running totals and returns
// the new totals. Deltas must be non-negative (ErrInvalidInput), the
// user record must exist (ErrUserNotFound); store timeouts surface as
// ErrStoreUnavailable and are safe for the caller to retry with
// backoff, because the per-user serialization above rules out
// double-application through interleaved read-modify-write cycles.
func (p *IncrementProcessor) Apply(ctx context.Context, userID string, deltas Totals) (_ *Totals, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "processor.fitstats.apply")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidInput)
	}
	if deltas.HasNegative() {
		return nil, fmt.Errorf("%w: negative delta", ErrInvalidInput)
	}

	lock := p.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	readCtx, readCancel := context.WithTimeout(ctx, p.storeTimeout)
	defer readCancel()

	record, err := p.store.Get(readCtx, userID)
	if err != nil {
		return nil, classifyStoreErr(err)
	}

	newTotals := record.Totals.Add(deltas)

	// once the write is issued it runs to completion or failure, a
	// cancelled request must not leave it half-applied
	writeCtx, writeCancel := context.WithTimeout(context.WithoutCancel(ctx), p.storeTimeout)
	defer writeCancel()

	if err := p.store.UpdateTotals(writeCtx, userID, newTotals); err != nil {
		return nil, classifyStoreErr(err)
	}

	return &newTotals, nil
}

func (p *IncrementProcessor) lockFor(userID string) *sync.Mutex {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	lock, ok := p.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		p.userLocks[userID] = lock
	}
	return lock
}

// classifyStoreErr keeps the domain sentinels as-is and treats
// everything else (timeouts, broken connections) as transient.
func classifyStoreErr(err error) error {
	if errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrUserExists) ||
		errors.Is(err, ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
}
