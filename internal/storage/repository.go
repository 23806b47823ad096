package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"daytrack/internal/core"
	"daytrack/internal/log"

	_ "modernc.org/sqlite"
)

const recordColumns = `id, date, rise_time, sleep_time, fajr, dhuhr, asr, maghrib, isha,
	scripture_pages, expense, note, created_at`

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

var _ RecordStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage),
		now:    time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]core.DailyRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM daily_records ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []core.DailyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.DailyRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM daily_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DailyRecord{}, ErrNotFound
	}
	return rec, err
}

func (r *SQLiteRepository) Create(ctx context.Context, rec core.DailyRecord) (core.DailyRecord, error) {
	if err := rec.Validate(); err != nil {
		return core.DailyRecord{}, err
	}
	now := r.now().UTC()
	rec.ID = uuid.NewString()
	rec.CreatedAt = now

	p := prayerInts(rec.Prayers)
	_, err := r.db.ExecContext(ctx, `INSERT INTO daily_records (`+recordColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Date, rec.RiseTime, rec.SleepTime,
		p[core.Fajr], p[core.Dhuhr], p[core.Asr], p[core.Maghrib], p[core.Isha],
		string(rec.ScripturePages), string(rec.Expense), rec.Note,
		formatTime(now), formatTime(now))
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("insert record: %w", err)
	}

	r.logger.InfoContext(ctx, "Record saved to SQLite", log.FieldRecordID, rec.ID, log.FieldDate, rec.Date)
	return rec, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, rec core.DailyRecord) (core.DailyRecord, error) {
	if err := rec.Validate(); err != nil {
		return core.DailyRecord{}, err
	}
	p := prayerInts(rec.Prayers)
	res, err := r.db.ExecContext(ctx, `UPDATE daily_records SET
		date = ?, rise_time = ?, sleep_time = ?,
		fajr = ?, dhuhr = ?, asr = ?, maghrib = ?, isha = ?,
		scripture_pages = ?, expense = ?, note = ?, updated_at = ?
		WHERE id = ?`,
		rec.Date, rec.RiseTime, rec.SleepTime,
		p[core.Fajr], p[core.Dhuhr], p[core.Asr], p[core.Maghrib], p[core.Isha],
		string(rec.ScripturePages), string(rec.Expense), rec.Note,
		formatTime(r.now().UTC()), rec.ID)
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("update record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.DailyRecord{}, ErrNotFound
	}
	r.logger.InfoContext(ctx, "Record updated in SQLite", log.FieldRecordID, rec.ID, log.FieldDate, rec.Date)
	return r.Get(ctx, rec.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM daily_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	r.logger.InfoContext(ctx, "Record deleted from SQLite", log.FieldRecordID, id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (core.DailyRecord, error) {
	var (
		rec       core.DailyRecord
		p         [core.PrayerCount]int64
		pages     string
		expense   string
		createdAt string
	)
	err := s.Scan(&rec.ID, &rec.Date, &rec.RiseTime, &rec.SleepTime,
		&p[core.Fajr], &p[core.Dhuhr], &p[core.Asr], &p[core.Maghrib], &p[core.Isha],
		&pages, &expense, &rec.Note, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan record: %w", err)
	}
	for i, v := range p {
		rec.Prayers[i] = v != 0
	}
	rec.ScripturePages = core.EnteredNumber(pages)
	rec.Expense = core.EnteredNumber(expense)
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return rec, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	return rec, nil
}

func prayerInts(p core.Prayers) [core.PrayerCount]int {
	var out [core.PrayerCount]int
	for i, done := range p {
		if done {
			out[i] = 1
		}
	}
	return out
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
