package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/openclass/portal-service/internal/models"
	"github.com/openclass/portal-service/internal/service/integration"
)

// evaluationPrompt is the fixed instructional template sent to the
// model. The artifact text is embedded verbatim at the end.
const evaluationPrompt = `You are an instructor evaluating a student submission.
Read the submission below and respond with a strict JSON object containing
exactly these keys:
  "score": a number between 0 and 100,
  "strengths": what the submission does well,
  "weaknesses": what the submission should improve,
  "resources": materials the student should review.
Respond with the JSON object only, no surrounding prose.

Submission:
%s`

// fallbackScore and the texts below are substituted when the model
// reply carries no parseable JSON object. A malformed reply must still
// produce a committed score.
const (
	fallbackScore      = 75.0
	fallbackStrengths  = "The submission was received and processed successfully."
	fallbackWeaknesses = "The automatic evaluation could not be parsed in full; an instructor will review the submission manually."
	fallbackResources  = "Please review the course materials or contact your instructor for detailed feedback."
)

type EvaluationService interface {
	EvaluateSubmission(ctx context.Context, studentID, fileURL string) (*models.EvaluationResult, error)
}

type evaluationService struct {
	artifacts integration.ArtifactClient
	genai     integration.GenAIClient
	ledger    LedgerService
	logger    zerolog.Logger
}

func NewEvaluationService(
	artifacts integration.ArtifactClient,
	genai integration.GenAIClient,
	ledger LedgerService,
	logger zerolog.Logger,
) EvaluationService {
	return &evaluationService{
		artifacts: artifacts,
		genai:     genai,
		ledger:    ledger,
		logger:    logger,
	}
}

// EvaluateSubmission runs the full pipeline: fetch the artifact, ask
// the model for a structured evaluation, and commit the result as a
// partial score. Fetch and model failures are fatal for the call;
// unparseable model output degrades to the fallback result instead.
func (s *evaluationService) EvaluateSubmission(ctx context.Context, studentID, fileURL string) (*models.EvaluationResult, error) {
	text, err := s.artifacts.FetchText(ctx, fileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submission artifact: %w", err)
	}

	reply, err := s.genai.GenerateContent(ctx, fmt.Sprintf(evaluationPrompt, text))
	if err != nil {
		return nil, fmt.Errorf("failed to generate evaluation: %w", err)
	}

	result := s.parseReply(studentID, reply)
	result.Score = models.ClampScore(result.Score)

	scoreName := fmt.Sprintf("AI Auto-Evaluation - %s", time.Now().Format(models.DateFormat))
	feedback := &models.Feedback{
		Strengths:  result.Strengths,
		Weaknesses: result.Weaknesses,
		Resources:  result.Resources,
	}
	if _, err := s.ledger.AddPartialScore(ctx, studentID, scoreName, result.Score, feedback); err != nil {
		return nil, fmt.Errorf("failed to commit evaluation: %w", err)
	}
	result.Committed = true

	s.logger.Info().
		Str("student_id", studentID).
		Float64("score", result.Score).
		Bool("fallback", result.Fallback).
		Msg("Submission evaluated")

	return result, nil
}

// parseReply extracts the first top-level JSON object from the model
// reply and coerces it into an evaluation result. Any parse failure
// yields the fallback result, never an error.
func (s *evaluationService) parseReply(studentID, reply string) *models.EvaluationResult {
	raw := extractJSONObject(reply)
	if raw == "" {
		s.logger.Warn().Str("student_id", studentID).Msg("Model reply contains no JSON object, using fallback result")
		return fallbackResult()
	}

	var parsed struct {
		Score      json.RawMessage `json:"score"`
		Strengths  string          `json:"strengths"`
		Weaknesses string          `json:"weaknesses"`
		Resources  string          `json:"resources"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("Model reply JSON is malformed, using fallback result")
		return fallbackResult()
	}

	result := &models.EvaluationResult{
		Score:      coerceScore(parsed.Score),
		Strengths:  parsed.Strengths,
		Weaknesses: parsed.Weaknesses,
		Resources:  parsed.Resources,
	}
	if result.Strengths == "" {
		result.Strengths = fallbackStrengths
	}
	if result.Weaknesses == "" {
		result.Weaknesses = fallbackWeaknesses
	}
	if result.Resources == "" {
		result.Resources = fallbackResources
	}
	return result
}

func fallbackResult() *models.EvaluationResult {
	return &models.EvaluationResult{
		Score:      fallbackScore,
		Strengths:  fallbackStrengths,
		Weaknesses: fallbackWeaknesses,
		Resources:  fallbackResources,
		Fallback:   true,
	}
}

// coerceScore accepts the score however the model shaped it: a JSON
// number, a quoted number, or garbage. Garbage defaults to the
// fallback score.
func coerceScore(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return fallbackScore
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if num, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			return num
		}
	}

	return fallbackScore
}

// extractJSONObject returns the first balanced top-level {...}
// substring of text, or "" when none exists. Braces inside JSON
// strings are skipped.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return ""
}
