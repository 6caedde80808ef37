package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"chefmenu/pkg/domain"
)

const maxIDAttempts = 5

// IDGenerator returns a fresh dish identifier.
type IDGenerator func() string

// NewUUID is the default IDGenerator: a random (v4) UUID string.
func NewUUID() string { return uuid.NewString() }

// Option customizes a Repository.
type Option func(*Repository)

// WithLogger sets the structured logger.
func WithLogger(l Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(r *Repository) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithIDGenerator overrides how new dish ids are minted.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Repository) {
		if g != nil {
			r.newID = g
		}
	}
}

// WithSeed overrides the list written by Initialize when the store is empty.
func WithSeed(dishes []domain.Dish) Option {
	return func(r *Repository) {
		r.seed = append([]domain.Dish(nil), dishes...)
	}
}

// Repository owns the canonical dish list. Every mutation reads the full list
// from the RecordStore, computes the new list and writes it back in full.
//
// Mutations on one Repository are serialized; separate processes sharing a
// store still race with last-writer-wins semantics. The repository never
// consults login state: authorization belongs to the caller.
type Repository struct {
	store   *RecordStore
	mu      sync.Mutex
	newID   IDGenerator
	seed    []domain.Dish
	logger  Logger
	metrics MetricsRecorder
}

// NewRepository constructs a repository over store.
func NewRepository(store *RecordStore, opts ...Option) *Repository {
	r := &Repository{
		store:   store,
		newID:   NewUUID,
		seed:    SeedDishes(),
		logger:  noopLogger{},
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the underlying record store.
func (r *Repository) Store() *RecordStore { return r.store }

// Initialize writes the seed list when the store has never been written and
// returns it; otherwise it returns the stored list untouched, even when that
// list is empty.
func (r *Repository) Initialize(ctx context.Context) (dishes []domain.Dish, err error) {
	defer r.observe("initialize", time.Now(), &err, func() int { return len(dishes) })
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	stored, found, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if found {
		return stored, nil
	}
	seed := append([]domain.Dish(nil), r.seed...)
	if err = r.store.Save(ctx, seed); err != nil {
		return nil, err
	}
	r.logger.Info("seeded dish store", "dishes", len(seed), "driver", r.store.Driver())
	return seed, nil
}

// List returns every dish, or only those whose course matches filter when
// filter is non-empty. The filter accepts the same aliases as dish input.
func (r *Repository) List(ctx context.Context, filter string) (dishes []domain.Dish, err error) {
	defer r.observe("list", time.Now(), &err, func() int { return -1 })
	var course domain.Course
	if filter != "" {
		c, ok := domain.ParseCourse(filter)
		if !ok {
			return nil, domain.ValidationError{Field: "course", Reason: "unknown course " + filter}
		}
		course = c
	}
	all, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterByCourse(all, course), nil
}

// Get returns the dish with id.
func (r *Repository) Get(ctx context.Context, id string) (dish domain.Dish, err error) {
	defer r.observe("get", time.Now(), &err, func() int { return -1 })
	all, err := r.load(ctx)
	if err != nil {
		return domain.Dish{}, err
	}
	idx := domain.IndexOf(all, id)
	if idx < 0 {
		return domain.Dish{}, domain.NotFoundError{ID: id}
	}
	return all[idx], nil
}

// Create validates fields, assigns a fresh id and appends the dish. It
// returns the created dish and the updated list.
func (r *Repository) Create(ctx context.Context, fields domain.Fields) (created domain.Dish, dishes []domain.Dish, err error) {
	defer r.observe("create", time.Now(), &err, func() int { return len(dishes) })
	normalized, err := fields.Normalize()
	if err != nil {
		return domain.Dish{}, nil, err
	}
	if err = ctx.Err(); err != nil {
		return domain.Dish{}, nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	dishes, err = r.load(ctx)
	if err != nil {
		return domain.Dish{}, nil, err
	}
	id, err := r.uniqueID(dishes)
	if err != nil {
		return domain.Dish{}, nil, err
	}
	created = domain.Dish{ID: id}.Apply(normalized)
	dishes = append(dishes, created)
	if err = r.store.Save(ctx, dishes); err != nil {
		return domain.Dish{}, nil, err
	}
	r.logger.Info("dish created", "id", created.ID, "name", created.Name, "course", created.Course)
	return created, dishes, nil
}

// Update replaces every non-id field of the dish with id, keeping its
// position. A missing id yields domain.NotFoundError and no write.
func (r *Repository) Update(ctx context.Context, id string, fields domain.Fields) (updated domain.Dish, dishes []domain.Dish, err error) {
	defer r.observe("update", time.Now(), &err, func() int { return len(dishes) })
	normalized, err := fields.Normalize()
	if err != nil {
		return domain.Dish{}, nil, err
	}
	if err = ctx.Err(); err != nil {
		return domain.Dish{}, nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	dishes, err = r.load(ctx)
	if err != nil {
		return domain.Dish{}, nil, err
	}
	idx := domain.IndexOf(dishes, id)
	if idx < 0 {
		return domain.Dish{}, nil, domain.NotFoundError{ID: id}
	}
	updated = dishes[idx].Apply(normalized)
	dishes[idx] = updated
	if err = r.store.Save(ctx, dishes); err != nil {
		return domain.Dish{}, nil, err
	}
	r.logger.Info("dish updated", "id", id)
	return updated, dishes, nil
}

// Remove deletes the dish with id and returns the remaining list. Removing an
// unknown id is a no-op and does not write.
func (r *Repository) Remove(ctx context.Context, id string) (dishes []domain.Dish, err error) {
	defer r.observe("remove", time.Now(), &err, func() int { return len(dishes) })
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	dishes, err = r.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := domain.IndexOf(dishes, id)
	if idx < 0 {
		r.logger.Debug("remove of unknown dish ignored", "id", id)
		return dishes, nil
	}
	dishes = append(dishes[:idx], dishes[idx+1:]...)
	if err = r.store.Save(ctx, dishes); err != nil {
		return nil, err
	}
	r.logger.Info("dish removed", "id", id)
	return dishes, nil
}

// AveragePrice returns the mean price of dishes rounded to two decimals.
func (r *Repository) AveragePrice(dishes []domain.Dish) (avg float64, err error) {
	defer r.observe("average_price", time.Now(), &err, func() int { return -1 })
	return domain.AveragePrice(dishes)
}

// load reads the list, treating an absent value as empty.
func (r *Repository) load(ctx context.Context) ([]domain.Dish, error) {
	dishes, found, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return []domain.Dish{}, nil
	}
	return dishes, nil
}

func (r *Repository) uniqueID(existing []domain.Dish) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := r.newID()
		if id != "" && domain.IndexOf(existing, id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique dish id after %d attempts", maxIDAttempts)
}

// observe records the outcome of an operation. count returns the list size to
// publish, or a negative number to leave the gauge untouched.
func (r *Repository) observe(op string, start time.Time, errp *error, count func() int) {
	err := *errp
	outcome := outcomeOf(err)
	r.metrics.ObserveOperation(op, outcome, time.Since(start))
	if err == nil {
		if n := count(); n >= 0 {
			r.metrics.SetDishCount(n)
		}
		return
	}
	switch outcome {
	case "persistence", "error":
		r.logger.Error("dish operation failed", "op", op, "outcome", outcome, "error", err)
	default:
		r.logger.Warn("dish operation rejected", "op", op, "outcome", outcome, "error", err)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsValidation(err):
		return "validation"
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsParse(err):
		return "parse"
	case domain.IsPersistence(err):
		return "persistence"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
