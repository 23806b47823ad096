package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"daytrack/internal/amqp"
	"daytrack/internal/cache"
	"daytrack/internal/core"
	"daytrack/internal/log"
	"daytrack/internal/storage"
)

// EventPublisher receives a notification after every successful mutation
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, msg *amqp.RecordEventMessage) error
}

// RecordService gates mutations with the uniqueness check and serves
// month summaries over the stored collection
type RecordService struct {
	// serializes check-then-write so two creates cannot both pass the check,
	// and summary fills so a fill never lands after a mutation's purge
	mu        sync.Mutex
	store     storage.RecordStore
	events    EventPublisher
	summaries cache.Cache[core.MonthlySummary]
	logger    *log.Logger
}

// NewRecordService wires a store with optional events and summary cache;
// both may be nil.
func NewRecordService(store storage.RecordStore, events EventPublisher, summaries cache.Cache[core.MonthlySummary], logger *log.Logger) *RecordService {
	if logger == nil {
		logger = log.Discard()
	}
	return &RecordService{
		store:     store,
		events:    events,
		summaries: summaries,
		logger:    logger.WithComponent(log.ComponentRecord),
	}
}

// List returns the stored records, restricted to month when it is not empty
func (s *RecordService) List(ctx context.Context, month string) ([]core.DailyRecord, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if month != "" {
		records = core.FilterMonth(records, month)
	}
	s.logger.DebugContext(ctx, "Records listed",
		append(log.NewFields().WithMonth(month).WithOperation(log.OpList).ToSlice(), log.FieldEntries, len(records))...)
	return records, nil
}

func (s *RecordService) Get(ctx context.Context, id string) (core.DailyRecord, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return core.DailyRecord{}, err
	}
	s.logger.DebugContext(ctx, "Record read",
		log.NewFields().WithRecord(r.ID, r.Date).WithOperation(log.OpRead).ToSlice()...)
	return r, nil
}

// Check reports whether a record for date could be created now
func (s *RecordService) Check(ctx context.Context, date string) error {
	records, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	return core.CheckUniqueness(date, records)
}

// Create stores a new record. A duplicate date is rejected before the
// store is asked to write anything.
func (s *RecordService) Create(ctx context.Context, r core.DailyRecord) (core.DailyRecord, error) {
	date, err := core.NormalizeDate(r.Date)
	if err != nil {
		return core.DailyRecord{}, err
	}
	r.Date = date

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.List(ctx)
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("list records: %w", err)
	}
	if err := core.CheckUniqueness(r.Date, records); err != nil {
		s.logger.WarnContext(ctx, "Rejected duplicate record",
			log.NewFields().WithRecord("", r.Date).WithOperation(log.OpValidate).ToSlice()...)
		return core.DailyRecord{}, err
	}

	created, err := s.store.Create(ctx, r)
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("save record: %w", err)
	}
	s.logger.InfoContext(ctx, "Record created",
		log.NewFields().WithRecord(created.ID, created.Date).WithOperation(log.OpCreate).ToSlice()...)

	s.changed(ctx, amqp.NewRecordEventMessage(amqp.RecordCreated, created.ID, created.Date, created.Month()))
	return created, nil
}

// Update replaces the editable fields of record id. ID and CreatedAt are
// kept; the new date must not collide with another record.
func (s *RecordService) Update(ctx context.Context, id string, r core.DailyRecord) (core.DailyRecord, error) {
	date, err := core.NormalizeDate(r.Date)
	if err != nil {
		return core.DailyRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return core.DailyRecord{}, err
	}
	r.ID = existing.ID
	r.CreatedAt = existing.CreatedAt
	r.Date = date

	records, err := s.store.List(ctx)
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("list records: %w", err)
	}
	if err := core.CheckUniquenessExcept(r.Date, records, r.ID); err != nil {
		return core.DailyRecord{}, err
	}

	updated, err := s.store.Update(ctx, r)
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("update record: %w", err)
	}
	s.logger.InfoContext(ctx, "Record updated",
		log.NewFields().WithRecord(updated.ID, updated.Date).WithOperation(log.OpUpdate).ToSlice()...)

	s.changed(ctx, amqp.NewRecordEventMessage(amqp.RecordUpdated, updated.ID, updated.Date, updated.Month()).
		WithPreviousMonth(existing.Month()))
	return updated, nil
}

func (s *RecordService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.logger.InfoContext(ctx, "Record deleted",
		log.NewFields().WithRecord(existing.ID, existing.Date).WithOperation(log.OpDelete).ToSlice()...)

	s.changed(ctx, amqp.NewRecordEventMessage(amqp.RecordDeleted, existing.ID, existing.Date, existing.Month()))
	return nil
}

// MonthSummary summarizes the stored records for month. Callers get their
// own copy of RecentActivity.
func (s *RecordService) MonthSummary(ctx context.Context, month string) (core.MonthlySummary, error) {
	if summary, ok := s.cachedSummary(month); ok {
		return summary, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// a concurrent caller may have filled it while we waited
	if summary, ok := s.cachedSummary(month); ok {
		return summary, nil
	}
	records, err := s.store.List(ctx)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("list records: %w", err)
	}
	summary := core.Summarize(records, month)
	if s.summaries != nil {
		cached := summary
		cached.RecentActivity = slices.Clone(summary.RecentActivity)
		s.summaries.Set(month, cached)
	}
	s.logger.DebugContext(ctx, "Month summarized",
		append(log.NewFields().WithMonth(month).WithOperation(log.OpSummarize).ToSlice(), log.FieldEntries, summary.EntryCount)...)
	return summary, nil
}

func (s *RecordService) cachedSummary(month string) (core.MonthlySummary, bool) {
	if s.summaries == nil {
		return core.MonthlySummary{}, false
	}
	summary, ok := s.summaries.Get(month)
	if !ok {
		return core.MonthlySummary{}, false
	}
	summary.RecentActivity = slices.Clone(summary.RecentActivity)
	return summary, true
}

func (s *RecordService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.events.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}
	return errors.Join(errs...)
}

// changed drops cached summaries and publishes the event. A record can
// move between months on update, so the whole cache goes.
func (s *RecordService) changed(ctx context.Context, msg *amqp.RecordEventMessage) {
	if s.summaries != nil {
		s.summaries.Purge()
	}
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordEvent(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish record event",
			log.NewFields().WithRecord(msg.RecordID, msg.Date).WithOperation(log.OpPublish).WithError(err).ToSlice()...)
	}
}
