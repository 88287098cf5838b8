package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/openclass/portal-service/internal/models"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.LectureFeedback) error
	GetByLectureID(ctx context.Context, lectureID string) ([]models.LectureFeedback, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.LectureFeedback, int, error)
}

type feedbackRepository struct {
	*PostgresRepository
}

func NewFeedbackRepository(db *sql.DB, logger zerolog.Logger) FeedbackRepository {
	return &feedbackRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.LectureFeedback) error {
	var sections []byte
	if feedback.Sections != nil {
		var err error
		sections, err = json.Marshal(feedback.Sections)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO lecture_feedback (id, lecture_id, student_email, text, sections, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		feedback.ID,
		feedback.LectureID,
		feedback.StudentEmail,
		feedback.Text,
		sections,
		feedback.CreatedAt,
	)

	return err
}

func (r *feedbackRepository) GetByLectureID(ctx context.Context, lectureID string) ([]models.LectureFeedback, error) {
	query := `
		SELECT id, lecture_id, student_email, text, sections, created_at
		FROM lecture_feedback
		WHERE lecture_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, lectureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFeedback(rows)
}

func (r *feedbackRepository) GetAll(ctx context.Context, limit, offset int) ([]models.LectureFeedback, int, error) {
	countQuery := `SELECT COUNT(*) FROM lecture_feedback`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, lecture_id, student_email, text, sections, created_at
		FROM lecture_feedback
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	feedback, err := scanFeedback(rows)
	if err != nil {
		return nil, 0, err
	}

	return feedback, total, nil
}

func scanFeedback(rows *sql.Rows) ([]models.LectureFeedback, error) {
	var items []models.LectureFeedback
	for rows.Next() {
		var item models.LectureFeedback
		var sections []byte
		err := rows.Scan(
			&item.ID,
			&item.LectureID,
			&item.StudentEmail,
			&item.Text,
			&sections,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if len(sections) > 0 {
			item.Sections = &models.Sections{}
			if err := json.Unmarshal(sections, item.Sections); err != nil {
				return nil, err
			}
		}

		items = append(items, item)
	}
	return items, rows.Err()
}
