package history

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/lingo/internal/core/translation"
)

// Op is a background store operation started by a View.
type Op struct {
	done    chan struct{}
	records []translation.Record
	err     error
}

func finishedOp(err error) *Op {
	op := &Op{done: make(chan struct{}), err: err}
	close(op.done)
	return op
}

// Done is closed when the store operation has finished.
func (o *Op) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the operation finishes and returns the partition as the
// store left it.
func (o *Op) Wait() ([]translation.Record, error) {
	<-o.done
	return o.records, o.err
}

// View is one screen's in-memory copy of a partition. Mutations are applied
// to the snapshot right away and then written through the Store in the
// background, one at a time in the order they were issued. When the most
// recently issued operation succeeds the snapshot is replaced by whatever the
// store returned. A failed operation leaves the optimistic snapshot in place.
type View struct {
	store     *Store
	partition Partition
	log       zerolog.Logger

	mu      sync.Mutex
	records []translation.Record
	issued  uint64
	tail    <-chan struct{}
}

// NewView creates an empty view; call Refresh to load it.
func NewView(store *Store, p Partition) *View {
	return &View{
		store:     store,
		partition: p,
		log:       store.log.With().Str("view", string(p)).Logger(),
		records:   []translation.Record{},
	}
}

func (v *View) Partition() Partition {
	return v.partition
}

// Refresh replaces the snapshot with the stored partition.
func (v *View) Refresh(ctx context.Context) []translation.Record {
	records := v.store.List(ctx, v.partition)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.records = records
	return slices.Clone(records)
}

// Records returns a copy of the current snapshot.
func (v *View) Records() []translation.Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.records)
}

// OptimisticAppend shows r at the head of the snapshot and appends it to the
// store in the background.
func (v *View) OptimisticAppend(ctx context.Context, r translation.Record) *Op {
	if r.ID == "" {
		r.ID = translation.NewID()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if err := r.Validate(); err != nil {
		return finishedOp(err)
	}

	limit := v.store.Limit(v.partition)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.records = prepend(v.records, r, limit)
	return v.enqueue(ctx, func(ctx context.Context) ([]translation.Record, error) {
		return v.store.Append(ctx, v.partition, r, limit)
	})
}

// OptimisticRemove drops id from the snapshot and removes it from the store
// in the background.
func (v *View) OptimisticRemove(ctx context.Context, id string) *Op {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.records = without(v.records, id)
	return v.enqueue(ctx, func(ctx context.Context) ([]translation.Record, error) {
		return v.store.Remove(ctx, v.partition, id)
	})
}

// enqueue must be called with v.mu held.
func (v *View) enqueue(ctx context.Context, run func(context.Context) ([]translation.Record, error)) *Op {
	v.issued++
	seq := v.issued
	prev := v.tail

	op := &Op{done: make(chan struct{})}
	v.tail = op.done

	// queued writes run to completion even if the caller's ctx is cancelled
	ctx = context.WithoutCancel(ctx)

	go func() {
		defer close(op.done)

		if prev != nil {
			<-prev
		}

		records, err := run(ctx)
		op.records, op.err = records, err
		if err != nil {
			v.log.Warn().Err(err).Msg("history update failed, keeping local state")
			return
		}

		v.mu.Lock()
		defer v.mu.Unlock()
		if seq == v.issued {
			v.records = slices.Clone(records)
		}
	}()

	return op
}
