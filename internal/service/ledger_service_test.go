package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/openclass/portal-service/internal/models"
)

// fakeLedgerRepo mirrors the store contract in memory: lazy record
// synthesis on update, whole-record sets on batch commit.
type fakeLedgerRepo struct {
	mu      sync.Mutex
	records map[string]models.EvaluationRecord
	commits int
	failAll bool
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{records: make(map[string]models.EvaluationRecord)}
}

func (f *fakeLedgerRepo) GetRecord(_ context.Context, studentID string) (*models.EvaluationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("store unavailable")
	}
	rec, ok := f.records[studentID]
	if !ok {
		return nil, nil
	}
	cp := rec
	cp.PartialScores = append([]models.PartialScore(nil), rec.PartialScores...)
	return &cp, nil
}

func (f *fakeLedgerRepo) UpdateRecord(_ context.Context, studentID string, fn func(record *models.EvaluationRecord) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("store unavailable")
	}
	rec, ok := f.records[studentID]
	if !ok {
		rec = models.EvaluationRecord{StudentID: studentID}
	}
	if err := fn(&rec); err != nil {
		return err
	}
	f.records[studentID] = rec
	f.commits++
	return nil
}

func (f *fakeLedgerRepo) BatchCommit(_ context.Context, records []models.EvaluationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("store unavailable")
	}
	for _, rec := range records {
		f.records[rec.StudentID] = rec
		f.commits++
	}
	return nil
}

func (f *fakeLedgerRepo) ScanAll(_ context.Context) ([]models.EvaluationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("store unavailable")
	}
	var out []models.EvaluationRecord
	for _, rec := range f.records {
		cp := rec
		cp.PartialScores = append([]models.PartialScore(nil), rec.PartialScores...)
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeLedgerRepo) Ping(_ context.Context) error { return nil }

func TestLedgerService_AddPartialScore(t *testing.T) {
	Convey("Given a ledger service over an empty store", t, func() {
		repo := newFakeLedgerRepo()
		svc := NewLedgerService(repo, zerolog.Nop())
		ctx := context.Background()

		Convey("When adding a first score for an unknown student", func() {
			entry, err := svc.AddPartialScore(ctx, "a@x.com", "Quiz1", 80, nil)

			Convey("Then the record is created lazily with the right total", func() {
				So(err, ShouldBeNil)
				So(entry.ID, ShouldNotBeEmpty)

				rec, err := svc.GetRecord(ctx, "a@x.com")
				So(err, ShouldBeNil)
				So(rec.TotalScore, ShouldEqual, 80)
				So(len(rec.PartialScores), ShouldEqual, 1)
			})
		})

		Convey("When adding two scores", func() {
			_, err := svc.AddPartialScore(ctx, "a@x.com", "Quiz1", 80, nil)
			So(err, ShouldBeNil)
			_, err = svc.AddPartialScore(ctx, "a@x.com", "Quiz2", 90, nil)
			So(err, ShouldBeNil)

			Convey("Then the total is the rounded mean", func() {
				rec, err := svc.GetRecord(ctx, "a@x.com")
				So(err, ShouldBeNil)
				So(rec.TotalScore, ShouldEqual, 85)
			})

			Convey("And the entries have distinct ids", func() {
				rec, _ := svc.GetRecord(ctx, "a@x.com")
				So(rec.PartialScores[0].ID, ShouldNotEqual, rec.PartialScores[1].ID)
			})
		})

		Convey("When adding an out-of-range score", func() {
			_, err := svc.AddPartialScore(ctx, "a@x.com", "Bonus", 150, nil)
			So(err, ShouldBeNil)
			_, err = svc.AddPartialScore(ctx, "b@x.com", "Penalty", -10, nil)
			So(err, ShouldBeNil)

			Convey("Then the stored values are clamped, not rejected", func() {
				recA, _ := svc.GetRecord(ctx, "a@x.com")
				So(recA.PartialScores[0].Score, ShouldEqual, 100)

				recB, _ := svc.GetRecord(ctx, "b@x.com")
				So(recB.PartialScores[0].Score, ShouldEqual, 0)
			})
		})

		Convey("When the name is empty", func() {
			_, err := svc.AddPartialScore(ctx, "a@x.com", "  ", 50, nil)

			Convey("Then the call is rejected before any store mutation", func() {
				So(err, ShouldEqual, ErrNameRequired)
				So(repo.commits, ShouldEqual, 0)
			})
		})

		Convey("When the store fails", func() {
			repo.failAll = true
			_, err := svc.AddPartialScore(ctx, "a@x.com", "Quiz1", 80, nil)

			Convey("Then the failure is surfaced", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLedgerService_DeletePartialScore(t *testing.T) {
	Convey("Given a student with two partial scores", t, func() {
		repo := newFakeLedgerRepo()
		svc := NewLedgerService(repo, zerolog.Nop())
		ctx := context.Background()

		e1, _ := svc.AddPartialScore(ctx, "a@x.com", "Quiz1", 80, nil)
		e2, _ := svc.AddPartialScore(ctx, "a@x.com", "Quiz2", 90, nil)

		Convey("When deleting one entry", func() {
			err := svc.DeletePartialScore(ctx, "a@x.com", e1.ID)

			Convey("Then the total reflects the remaining entry", func() {
				So(err, ShouldBeNil)
				rec, _ := svc.GetRecord(ctx, "a@x.com")
				So(rec.TotalScore, ShouldEqual, 90)
				So(len(rec.PartialScores), ShouldEqual, 1)
				So(rec.PartialScores[0].Name, ShouldEqual, "Quiz2")
			})
		})

		Convey("When deleting the last remaining entry", func() {
			So(svc.DeletePartialScore(ctx, "a@x.com", e1.ID), ShouldBeNil)
			So(svc.DeletePartialScore(ctx, "a@x.com", e2.ID), ShouldBeNil)

			Convey("Then the total resets to exactly zero", func() {
				rec, _ := svc.GetRecord(ctx, "a@x.com")
				So(rec.TotalScore, ShouldEqual, 0)
				So(len(rec.PartialScores), ShouldEqual, 0)
			})
		})

		Convey("When the student has no record", func() {
			err := svc.DeletePartialScore(ctx, "nobody@x.com", e1.ID)
			So(err, ShouldEqual, ErrRecordNotFound)
		})

		Convey("When no entry matches the id", func() {
			err := svc.DeletePartialScore(ctx, "a@x.com", "missing-id")
			So(err, ShouldEqual, ErrPartialScoreNotFound)
		})
	})
}

func TestLedgerService_DeleteByNameFromAll(t *testing.T) {
	Convey("Given three students, two of which have a Quiz1 entry", t, func() {
		repo := newFakeLedgerRepo()
		svc := NewLedgerService(repo, zerolog.Nop())
		ctx := context.Background()

		svc.AddPartialScore(ctx, "a@x.com", "Quiz1", 80, nil)
		svc.AddPartialScore(ctx, "a@x.com", "Final", 90, nil)
		svc.AddPartialScore(ctx, "b@x.com", "Quiz1", 70, nil)
		svc.AddPartialScore(ctx, "c@x.com", "Final", 95, nil)
		commitsBefore := repo.commits

		Convey("When deleting Quiz1 from all records", func() {
			count, err := svc.DeletePartialScoreByNameFromAll(ctx, "Quiz1")

			Convey("Then exactly the two matching records are updated", func() {
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 2)
				So(repo.commits-commitsBefore, ShouldEqual, 2)

				recA, _ := svc.GetRecord(ctx, "a@x.com")
				So(recA.TotalScore, ShouldEqual, 90)

				recB, _ := svc.GetRecord(ctx, "b@x.com")
				So(recB.TotalScore, ShouldEqual, 0)
				So(len(recB.PartialScores), ShouldEqual, 0)

				recC, _ := svc.GetRecord(ctx, "c@x.com")
				So(recC.TotalScore, ShouldEqual, 95)
			})
		})

		Convey("When no record matches the name", func() {
			count, err := svc.DeletePartialScoreByNameFromAll(ctx, "Midterm")

			Convey("Then nothing is written", func() {
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 0)
				So(repo.commits, ShouldEqual, commitsBefore)
			})
		})
	})
}
