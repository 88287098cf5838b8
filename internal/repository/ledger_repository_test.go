package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/openclass/portal-service/internal/models"
)

// scriptedConn plays the losing side of a create race: the first
// insert fails with a unique violation because a concurrent writer
// committed the row in between, and the retry's select then sees the
// winner's document.
type scriptedConn struct {
	winnerDoc    []byte
	committedDoc []byte
	inserts      int
	updates      int
	finalDoc     []byte
}

func (c *scriptedConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *scriptedConn) Close() error              { return nil }
func (c *scriptedConn) Begin() (driver.Tx, error) { return scriptedTx{}, nil }
func (c *scriptedConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return scriptedTx{}, nil
}

func (c *scriptedConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.HasPrefix(strings.TrimSpace(query), "SELECT") {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	if c.committedDoc == nil {
		return &docRows{}, nil
	}
	return &docRows{docs: [][]byte{c.committedDoc}}, nil
}

func (c *scriptedConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if strings.HasPrefix(strings.TrimSpace(query), "INSERT") {
		c.inserts++
		// The concurrent writer wins the race just before our insert.
		c.committedDoc = c.winnerDoc
		return nil, &pq.Error{Code: "23505"}
	}
	c.updates++
	c.finalDoc = args[1].Value.([]byte)
	return driver.RowsAffected(1), nil
}

type scriptedTx struct{}

func (scriptedTx) Commit() error   { return nil }
func (scriptedTx) Rollback() error { return nil }

type scriptedConnector struct{ conn *scriptedConn }

func (c *scriptedConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c *scriptedConnector) Driver() driver.Driver                        { return scriptedDriver{c} }

type scriptedDriver struct{ c *scriptedConnector }

func (d scriptedDriver) Open(string) (driver.Conn, error) { return d.c.conn, nil }

type docRows struct {
	docs [][]byte
	i    int
}

func (r *docRows) Columns() []string { return []string{"doc"} }
func (r *docRows) Close() error      { return nil }
func (r *docRows) Next(dest []driver.Value) error {
	if r.i >= len(r.docs) {
		return io.EOF
	}
	dest[0] = r.docs[r.i]
	r.i++
	return nil
}

func TestUpdateRecord_CreateRaceKeepsBothEntries(t *testing.T) {
	winner := models.EvaluationRecord{
		StudentID: "stu-1",
		PartialScores: []models.PartialScore{
			{ID: "ps-1", Name: "Quiz 1", Score: 80, Date: "2026-08-29"},
		},
	}
	winner.Recalculate()
	winnerDoc, err := json.Marshal(&winner)
	if err != nil {
		t.Fatal(err)
	}

	conn := &scriptedConn{winnerDoc: winnerDoc}
	db := sql.OpenDB(&scriptedConnector{conn: conn})
	defer db.Close()

	repo := NewLedgerRepository(db, 3, zerolog.Nop())
	err = repo.UpdateRecord(context.Background(), "stu-1", func(record *models.EvaluationRecord) error {
		record.Append(models.PartialScore{ID: "ps-2", Name: "Quiz 2", Score: 90, Date: "2026-08-29"})
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}

	if conn.inserts != 1 {
		t.Errorf("inserts = %d, want 1", conn.inserts)
	}
	if conn.updates != 1 {
		t.Errorf("updates = %d, want 1", conn.updates)
	}

	var final models.EvaluationRecord
	if err := json.Unmarshal(conn.finalDoc, &final); err != nil {
		t.Fatalf("decode final doc: %v", err)
	}
	if len(final.PartialScores) != 2 {
		t.Fatalf("partial scores = %d, want 2 (the winner's entry must survive)", len(final.PartialScores))
	}
	if final.TotalScore != 85 {
		t.Errorf("total = %v, want 85", final.TotalScore)
	}
}

func TestIsRetryableTxError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"serialization failure", &pq.Error{Code: "40001"}, true},
		{"deadlock detected", &pq.Error{Code: "40P01"}, true},
		{"unique violation from a create race", &pq.Error{Code: "23505"}, true},
		{
			"wrapped unique violation, as the write path returns it",
			fmt.Errorf("failed to write ledger record: %w", &pq.Error{Code: "23505"}),
			true,
		},
		{"foreign key violation", &pq.Error{Code: "23503"}, false},
		{"syntax error", &pq.Error{Code: "42601"}, false},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableTxError(tt.err); got != tt.retryable {
				t.Errorf("isRetryableTxError(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}
