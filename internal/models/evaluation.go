package models

import (
	"encoding/json"
	"math"
	"time"
)

const (
	MinScore = 0.0
	MaxScore = 100.0

	// DateFormat is the calendar-date form stored on partial scores.
	DateFormat = "2006-01-02"
)

// Feedback is the structured payload attached to AI-generated partial
// scores. Manually entered scores carry no feedback.
type Feedback struct {
	Strengths  string `json:"strengths"`
	Weaknesses string `json:"weaknesses"`
	Resources  string `json:"resources"`
}

// PartialScore is one named, dated evaluation event. Entries are
// immutable once created and only removed as a whole.
type PartialScore struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Score    float64   `json:"score"`
	Feedback *Feedback `json:"feedback,omitempty"`
	Date     string    `json:"date"`
}

// EvaluationRecord is the per-student ledger document: the list of
// partial scores plus the derived total. TotalScore is never set by
// callers; it is recomputed on every mutation.
type EvaluationRecord struct {
	StudentID     string         `json:"student_id"`
	TotalScore    float64        `json:"total_score"`
	PartialScores []PartialScore `json:"partial_scores"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ClampScore forces a score into the [0,100] range. Out-of-range input
// is rejected at the API boundary; this second clamp tolerates float
// noise from upstream ingestion paths.
func ClampScore(score float64) float64 {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Round2 rounds half-up to two decimal places.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// Recalculate recomputes TotalScore as the capped, rounded mean of all
// partial scores. An empty list yields exactly 0.
func (r *EvaluationRecord) Recalculate() {
	if len(r.PartialScores) == 0 {
		r.TotalScore = 0
		return
	}

	var sum float64
	for _, ps := range r.PartialScores {
		sum += ps.Score
	}

	mean := sum / float64(len(r.PartialScores))
	if mean > MaxScore {
		mean = MaxScore
	}
	r.TotalScore = Round2(mean)
}

// Append adds a partial score entry and recomputes the total.
func (r *EvaluationRecord) Append(ps PartialScore) {
	r.PartialScores = append(r.PartialScores, ps)
	r.Recalculate()
}

// RemoveByID deletes exactly the entry with the given id and recomputes
// the total. Returns false when no entry matches.
func (r *EvaluationRecord) RemoveByID(id string) bool {
	for i, ps := range r.PartialScores {
		if ps.ID == id {
			r.PartialScores = append(r.PartialScores[:i], r.PartialScores[i+1:]...)
			r.Recalculate()
			return true
		}
	}
	return false
}

// RemoveByName deletes every entry with the given name and recomputes
// the total. Returns the number of removed entries.
func (r *EvaluationRecord) RemoveByName(name string) int {
	kept := r.PartialScores[:0]
	removed := 0
	for _, ps := range r.PartialScores {
		if ps.Name == name {
			removed++
			continue
		}
		kept = append(kept, ps)
	}
	if removed == 0 {
		return 0
	}
	r.PartialScores = kept
	r.Recalculate()
	return removed
}

// legacyRecord is the pre-aggregation document shape: one flat score
// with free-text feedback. Still present in long-lived deployments.
type legacyRecord struct {
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

// DecodeRecord normalizes a stored ledger document into the aggregated
// shape. Legacy single-score documents become a record with one
// "Imported Score" entry so the aggregation invariant holds for every
// record the store returns.
func DecodeRecord(studentID string, doc []byte) (*EvaluationRecord, error) {
	var probe struct {
		PartialScores *json.RawMessage `json:"partial_scores"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil {
		return nil, err
	}

	if probe.PartialScores == nil {
		var legacy legacyRecord
		if err := json.Unmarshal(doc, &legacy); err != nil {
			return nil, err
		}

		record := &EvaluationRecord{StudentID: studentID}
		if legacy.Score != nil {
			ps := PartialScore{
				ID:    "legacy-" + studentID,
				Name:  "Imported Score",
				Score: ClampScore(*legacy.Score),
				Date:  time.Now().Format(DateFormat),
			}
			if legacy.Feedback != "" {
				ps.Feedback = &Feedback{Strengths: legacy.Feedback}
			}
			record.Append(ps)
		}
		return record, nil
	}

	record := &EvaluationRecord{}
	if err := json.Unmarshal(doc, record); err != nil {
		return nil, err
	}
	record.StudentID = studentID
	return record, nil
}
