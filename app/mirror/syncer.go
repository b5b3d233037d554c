package mirror

import (
	"context"
	"errors"
	"time"

	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/pkg/logger"
	"github.com/gamevault/storefront/pkg/metrics"
	"github.com/gamevault/storefront/pkg/workerpool"
)

const (
	opUpsert = "upsert"
	opDelete = "delete"

	resultOK       = "ok"
	resultError    = "error"
	resultDropped  = "dropped"
	resultDisabled = "disabled"
)

// DefaultTimeout bounds a single mirror write.
const DefaultTimeout = 5 * time.Second

// Syncer forwards committed catalog changes to a Store on a worker pool.
// A Syncer with a nil Store is disabled and only counts what it skips.
type Syncer struct {
	store   Store
	pool    *workerpool.Pool
	images  URLResolver
	timeout time.Duration
}

// NewSyncer builds a Syncer. With a nil pool jobs run on the calling
// goroutine.
func NewSyncer(store Store, pool *workerpool.Pool, images URLResolver, timeout time.Duration) *Syncer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Syncer{store: store, pool: pool, images: images, timeout: timeout}
}

// Enabled reports whether a document store is configured.
func (s *Syncer) Enabled() bool { return s != nil && s.store != nil }

// ProductSaved mirrors a created or updated product.
func (s *Syncer) ProductSaved(ctx context.Context, p models.Product) {
	id, doc := p.Key(), NewDocument(p, s.images)
	s.dispatch(ctx, opUpsert, id, func(ctx context.Context) error {
		return s.store.Upsert(ctx, id, doc)
	})
}

// ProductDeleted removes a deleted product from the mirror.
func (s *Syncer) ProductDeleted(ctx context.Context, p models.Product) {
	id := p.Key()
	s.dispatch(ctx, opDelete, id, func(ctx context.Context) error {
		return s.store.Delete(ctx, id)
	})
}

func (s *Syncer) dispatch(ctx context.Context, op, id string, write func(context.Context) error) {
	log := logger.WithCtx(ctx)
	if !s.Enabled() {
		metrics.MirrorOps.WithLabelValues(op, resultDisabled).Inc()
		log.Debug("mirror disabled, skipping", "op", op, "product_id", id)
		return
	}

	// The job outlives the request that triggered it.
	base := context.WithoutCancel(ctx)
	job := func() {
		jobCtx, cancel := context.WithTimeout(base, s.timeout)
		defer cancel()
		s.record(jobCtx, op, id, write(jobCtx))
	}

	if s.pool == nil {
		job()
		return
	}
	if err := s.pool.Submit(job); err != nil {
		metrics.MirrorOps.WithLabelValues(op, resultDropped).Inc()
		log.Warn("mirror job dropped", "op", op, "product_id", id, "error", err)
	}
}

func (s *Syncer) record(ctx context.Context, op, id string, err error) {
	if err != nil {
		metrics.MirrorOps.WithLabelValues(op, resultError).Inc()
		logger.WithCtx(ctx).Error("mirror write failed", "op", op, "product_id", id, "error", err)
		return
	}
	metrics.MirrorOps.WithLabelValues(op, resultOK).Inc()
}

// Resync upserts every product on the calling goroutine and returns the
// joined errors of the writes that failed.
func (s *Syncer) Resync(ctx context.Context, products []models.Product) (int, error) {
	if !s.Enabled() {
		return 0, errors.New("mirror: no document store configured")
	}

	var errs []error
	synced := 0
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		writeCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.store.Upsert(writeCtx, p.Key(), NewDocument(p, s.images))
		cancel()

		s.record(ctx, opUpsert, p.Key(), err)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		synced++
	}
	return synced, errors.Join(errs...)
}
