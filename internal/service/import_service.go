package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openclass/portal-service/internal/models"
)

// Column names are matched case-sensitively against the CSV header.
const (
	importColumnEmail = "email"
	importColumnName  = "name"
	importColumnScore = "score"
)

var ErrImportHeader = errors.New("import header must contain email, name and score columns")

type ImportService interface {
	ImportScores(ctx context.Context, r io.Reader) (*models.ImportSummary, error)
}

type importService struct {
	ledger LedgerService
	logger zerolog.Logger
}

func NewImportService(ledger LedgerService, logger zerolog.Logger) ImportService {
	return &importService{
		ledger: ledger,
		logger: logger,
	}
}

// ImportScores replays each CSV row through the ledger as one partial
// score. Rows are applied sequentially in file order; a bad row is
// counted and skipped without touching the ledger, and never aborts
// the rest of the file.
func (s *importService) ImportScores(ctx context.Context, r io.Reader) (*models.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read import header: %w", err)
	}

	emailIdx, nameIdx, scoreIdx := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case importColumnEmail:
			emailIdx = i
		case importColumnName:
			nameIdx = i
		case importColumnScore:
			scoreIdx = i
		}
	}
	if emailIdx < 0 || nameIdx < 0 || scoreIdx < 0 {
		return nil, ErrImportHeader
	}

	summary := &models.ImportSummary{}
	line := 1
	for {
		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.rowFailed(summary, line, "malformed csv row")
			continue
		}
		if isEmptyRow(row) {
			continue
		}

		email, name, rawScore, ok := pickColumns(row, emailIdx, nameIdx, scoreIdx)
		if !ok || email == "" || name == "" {
			s.rowFailed(summary, line, "missing required field")
			continue
		}

		score, err := strconv.ParseFloat(rawScore, 64)
		if err != nil {
			s.rowFailed(summary, line, "non-numeric score")
			continue
		}

		if _, err := s.ledger.AddPartialScore(ctx, email, name, score, nil); err != nil {
			s.rowFailed(summary, line, err.Error())
			continue
		}
		summary.SuccessCount++
	}

	s.logger.Info().
		Int("success_count", summary.SuccessCount).
		Int("error_count", summary.ErrorCount).
		Msg("Bulk score import finished")

	return summary, nil
}

func (s *importService) rowFailed(summary *models.ImportSummary, line int, reason string) {
	summary.ErrorCount++
	summary.FailedLines = append(summary.FailedLines, line)
	s.logger.Warn().Int("line", line).Str("reason", reason).Msg("Import row skipped")
}

func pickColumns(row []string, emailIdx, nameIdx, scoreIdx int) (email, name, score string, ok bool) {
	max := emailIdx
	if nameIdx > max {
		max = nameIdx
	}
	if scoreIdx > max {
		max = scoreIdx
	}
	if len(row) <= max {
		return "", "", "", false
	}
	return strings.TrimSpace(row[emailIdx]), strings.TrimSpace(row[nameIdx]), strings.TrimSpace(row[scoreIdx]), true
}

func isEmptyRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
