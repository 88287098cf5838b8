package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/openclass/portal-service/internal/models"
)

// LedgerRepository is the transactional document store behind the
// evaluation ledger: one JSONB document per student, mutated through a
// row-locking read-modify-write that callers pass a mutation closure to.
type LedgerRepository interface {
	GetRecord(ctx context.Context, studentID string) (*models.EvaluationRecord, error)
	UpdateRecord(ctx context.Context, studentID string, fn func(record *models.EvaluationRecord) error) error
	BatchCommit(ctx context.Context, records []models.EvaluationRecord) error
	ScanAll(ctx context.Context) ([]models.EvaluationRecord, error)
	Ping(ctx context.Context) error
}

type ledgerRepository struct {
	*PostgresRepository
	retryCount int
}

func NewLedgerRepository(db *sql.DB, retryCount int, logger zerolog.Logger) LedgerRepository {
	if retryCount < 1 {
		retryCount = 3
	}
	return &ledgerRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
		retryCount:         retryCount,
	}
}

func (r *ledgerRepository) GetRecord(ctx context.Context, studentID string) (*models.EvaluationRecord, error) {
	query := `SELECT doc FROM evaluation_records WHERE student_id = $1`

	var doc []byte
	err := r.db.QueryRowContext(ctx, query, studentID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return models.DecodeRecord(studentID, doc)
}

// UpdateRecord runs fn against the current record (an empty one when no
// row exists yet) and commits the result atomically. The row is locked
// for the duration of the transaction, so concurrent writers for the
// same student serialize; lock and insert races are retried.
func (r *ledgerRepository) UpdateRecord(ctx context.Context, studentID string, fn func(record *models.EvaluationRecord) error) error {
	var lastErr error

	for attempt := 0; attempt <= r.retryCount; attempt++ {
		if attempt > 0 {
			r.logger.Warn().
				Str("student_id", studentID).
				Int("attempt", attempt).
				Msg("Retrying ledger transaction")
			time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
		}

		err := r.updateOnce(ctx, studentID, fn)
		if err == nil {
			return nil
		}
		if !isRetryableTxError(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("ledger transaction failed after %d attempts: %w", r.retryCount+1, lastErr)
}

func (r *ledgerRepository) updateOnce(ctx context.Context, studentID string, fn func(record *models.EvaluationRecord) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var doc []byte
	err = tx.QueryRowContext(ctx,
		`SELECT doc FROM evaluation_records WHERE student_id = $1 FOR UPDATE`,
		studentID,
	).Scan(&doc)

	var record *models.EvaluationRecord
	rowExists := true
	switch {
	case err == sql.ErrNoRows:
		// Lazy creation: first partial score for this student.
		rowExists = false
		record = &models.EvaluationRecord{StudentID: studentID}
	case err != nil:
		return fmt.Errorf("failed to read ledger record: %w", err)
	default:
		record, err = models.DecodeRecord(studentID, doc)
		if err != nil {
			return fmt.Errorf("failed to decode ledger record: %w", err)
		}
	}

	if err := fn(record); err != nil {
		return err
	}

	record.UpdatedAt = time.Now()
	newDoc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode ledger record: %w", err)
	}

	if rowExists {
		_, err = tx.ExecContext(ctx, `
			UPDATE evaluation_records
			SET doc = $2, updated_at = $3
			WHERE student_id = $1
		`, studentID, newDoc, record.UpdatedAt)
	} else {
		// Plain insert, no upsert: when two transactions race to create
		// the same row, the loser must fail with a unique violation so
		// the retry loop re-runs against the winner's committed record
		// instead of blindly overwriting it.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO evaluation_records (student_id, doc, updated_at)
			VALUES ($1, $2, $3)
		`, studentID, newDoc, record.UpdatedAt)
	}
	if err != nil {
		return fmt.Errorf("failed to write ledger record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}

	return nil
}

// BatchCommit writes every staged record in one transaction. Writes are
// plain sets, not read-modify-writes: a record changed by a concurrent
// single-student transaction after the caller's scan snapshot is
// overwritten. Accepted for the rare administrative bulk operations
// that use this path.
func (r *ledgerRepository) BatchCommit(ctx context.Context, records []models.EvaluationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO evaluation_records (student_id, doc, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id) DO UPDATE
		SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i := range records {
		records[i].UpdatedAt = now
		doc, err := json.Marshal(&records[i])
		if err != nil {
			return fmt.Errorf("failed to encode record for %s: %w", records[i].StudentID, err)
		}
		if _, err := stmt.ExecContext(ctx, records[i].StudentID, doc, now); err != nil {
			return fmt.Errorf("failed to stage record for %s: %w", records[i].StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	r.logger.Info().Int("records", len(records)).Msg("Ledger batch committed")
	return nil
}

func (r *ledgerRepository) ScanAll(ctx context.Context) ([]models.EvaluationRecord, error) {
	query := `SELECT student_id, doc FROM evaluation_records ORDER BY student_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.EvaluationRecord
	for rows.Next() {
		var studentID string
		var doc []byte
		if err := rows.Scan(&studentID, &doc); err != nil {
			return nil, err
		}

		record, err := models.DecodeRecord(studentID, doc)
		if err != nil {
			return nil, fmt.Errorf("failed to decode record for %s: %w", studentID, err)
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

func (r *ledgerRepository) Ping(ctx context.Context) error {
	return r.PostgresRepository.Ping(ctx)
}

// isRetryableTxError reports whether the transaction hit a
// serialization failure, a deadlock, or a concurrent-insert race.
func isRetryableTxError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "40001", "40P01", "23505":
			return true
		}
	}
	return false
}
