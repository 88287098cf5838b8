package service

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

func TestImportService_ImportScores(t *testing.T) {
	Convey("Given an import service over an empty ledger", t, func() {
		repo := newFakeLedgerRepo()
		ledger := NewLedgerService(repo, zerolog.Nop())
		svc := NewImportService(ledger, zerolog.Nop())
		ctx := context.Background()

		Convey("When the file mixes well-formed and malformed rows", func() {
			input := strings.Join([]string{
				"email,name,score",
				"a@x.com,Quiz1,80",
				"b@x.com,Quiz1,70",
				"c@x.com,Quiz1,notanumber",
				"d@x.com,Quiz1,90",
				"e@x.com,,85",
				"f@x.com,Quiz1,60",
				"g@x.com,Quiz1,100",
			}, "\n")

			summary, err := svc.ImportScores(ctx, strings.NewReader(input))

			Convey("Then good rows are applied and bad rows are counted", func() {
				So(err, ShouldBeNil)
				So(summary.SuccessCount, ShouldEqual, 5)
				So(summary.ErrorCount, ShouldEqual, 2)
				So(summary.FailedLines, ShouldResemble, []int{4, 6})
				So(repo.commits, ShouldEqual, 5)
			})

			Convey("And the applied rows reach the ledger", func() {
				rec, err := ledger.GetRecord(ctx, "a@x.com")
				So(err, ShouldBeNil)
				So(rec.TotalScore, ShouldEqual, 80)

				_, err = ledger.GetRecord(ctx, "c@x.com")
				So(err, ShouldEqual, ErrRecordNotFound)
			})
		})

		Convey("When the file contains empty lines", func() {
			input := "email,name,score\na@x.com,Quiz1,80\n\n\nb@x.com,Quiz1,90\n"

			summary, err := svc.ImportScores(ctx, strings.NewReader(input))

			Convey("Then they are skipped without counting as errors", func() {
				So(err, ShouldBeNil)
				So(summary.SuccessCount, ShouldEqual, 2)
				So(summary.ErrorCount, ShouldEqual, 0)
			})
		})

		Convey("When the header columns appear in a different order", func() {
			input := "score,email,name\n80,a@x.com,Quiz1\n"

			summary, err := svc.ImportScores(ctx, strings.NewReader(input))

			So(err, ShouldBeNil)
			So(summary.SuccessCount, ShouldEqual, 1)

			rec, _ := ledger.GetRecord(ctx, "a@x.com")
			So(rec.PartialScores[0].Score, ShouldEqual, 80)
		})

		Convey("When a required column is missing from the header", func() {
			input := "email,title,score\na@x.com,Quiz1,80\n"

			_, err := svc.ImportScores(ctx, strings.NewReader(input))

			So(err, ShouldEqual, ErrImportHeader)
		})

		Convey("When column names differ only by case", func() {
			input := "Email,Name,Score\na@x.com,Quiz1,80\n"

			_, err := svc.ImportScores(ctx, strings.NewReader(input))

			Convey("Then the header is rejected, matching is case-sensitive", func() {
				So(err, ShouldEqual, ErrImportHeader)
			})
		})

		Convey("When a row has fewer columns than the header", func() {
			input := "email,name,score\na@x.com,Quiz1\nb@x.com,Quiz1,90\n"

			summary, err := svc.ImportScores(ctx, strings.NewReader(input))

			So(err, ShouldBeNil)
			So(summary.SuccessCount, ShouldEqual, 1)
			So(summary.ErrorCount, ShouldEqual, 1)
			So(summary.FailedLines, ShouldResemble, []int{2})
		})

		Convey("When the input is empty", func() {
			_, err := svc.ImportScores(ctx, strings.NewReader(""))

			So(err, ShouldNotBeNil)
		})
	})
}
