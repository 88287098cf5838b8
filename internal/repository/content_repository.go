package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/openclass/portal-service/internal/models"
)

type ContentRepository interface {
	CreateLecture(ctx context.Context, lecture *models.Lecture) error
	GetLectureByID(ctx context.Context, id string) (*models.Lecture, error)
	GetAllLectures(ctx context.Context) ([]models.Lecture, error)
	UpdateLecture(ctx context.Context, lecture *models.Lecture) error
	DeleteLecture(ctx context.Context, id string) error

	CreateMaterial(ctx context.Context, material *models.Material) error
	GetMaterialByID(ctx context.Context, id string) (*models.Material, error)
	GetAllMaterials(ctx context.Context) ([]models.Material, error)
	UpdateMaterial(ctx context.Context, material *models.Material) error
	DeleteMaterial(ctx context.Context, id string) error
}

type contentRepository struct {
	*PostgresRepository
}

func NewContentRepository(db *sql.DB, logger zerolog.Logger) ContentRepository {
	return &contentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *contentRepository) CreateLecture(ctx context.Context, lecture *models.Lecture) error {
	query := `
		INSERT INTO lectures (id, title, description, video_url, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		lecture.ID,
		lecture.Title,
		lecture.Description,
		lecture.VideoURL,
		lecture.Date,
		lecture.CreatedAt,
		lecture.UpdatedAt,
	)

	return err
}

func (r *contentRepository) GetLectureByID(ctx context.Context, id string) (*models.Lecture, error) {
	query := `
		SELECT id, title, description, video_url, date, created_at, updated_at
		FROM lectures
		WHERE id = $1
	`

	lecture := &models.Lecture{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lecture.ID,
		&lecture.Title,
		&lecture.Description,
		&lecture.VideoURL,
		&lecture.Date,
		&lecture.CreatedAt,
		&lecture.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return lecture, err
}

func (r *contentRepository) GetAllLectures(ctx context.Context) ([]models.Lecture, error) {
	query := `
		SELECT id, title, description, video_url, date, created_at, updated_at
		FROM lectures
		ORDER BY date DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lectures []models.Lecture
	for rows.Next() {
		var lecture models.Lecture
		err := rows.Scan(
			&lecture.ID,
			&lecture.Title,
			&lecture.Description,
			&lecture.VideoURL,
			&lecture.Date,
			&lecture.CreatedAt,
			&lecture.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		lectures = append(lectures, lecture)
	}

	return lectures, rows.Err()
}

func (r *contentRepository) UpdateLecture(ctx context.Context, lecture *models.Lecture) error {
	query := `
		UPDATE lectures
		SET title = $1, description = $2, video_url = $3, date = $4, updated_at = $5
		WHERE id = $6
	`

	_, err := r.db.ExecContext(ctx, query,
		lecture.Title,
		lecture.Description,
		lecture.VideoURL,
		lecture.Date,
		lecture.UpdatedAt,
		lecture.ID,
	)

	return err
}

func (r *contentRepository) DeleteLecture(ctx context.Context, id string) error {
	query := `DELETE FROM lectures WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *contentRepository) CreateMaterial(ctx context.Context, material *models.Material) error {
	query := `
		INSERT INTO materials (id, title, description, file_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		material.ID,
		material.Title,
		material.Description,
		material.FileURL,
		material.CreatedAt,
		material.UpdatedAt,
	)

	return err
}

func (r *contentRepository) GetMaterialByID(ctx context.Context, id string) (*models.Material, error) {
	query := `
		SELECT id, title, description, file_url, created_at, updated_at
		FROM materials
		WHERE id = $1
	`

	material := &models.Material{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&material.ID,
		&material.Title,
		&material.Description,
		&material.FileURL,
		&material.CreatedAt,
		&material.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return material, err
}

func (r *contentRepository) GetAllMaterials(ctx context.Context) ([]models.Material, error) {
	query := `
		SELECT id, title, description, file_url, created_at, updated_at
		FROM materials
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []models.Material
	for rows.Next() {
		var material models.Material
		err := rows.Scan(
			&material.ID,
			&material.Title,
			&material.Description,
			&material.FileURL,
			&material.CreatedAt,
			&material.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		materials = append(materials, material)
	}

	return materials, rows.Err()
}

func (r *contentRepository) UpdateMaterial(ctx context.Context, material *models.Material) error {
	query := `
		UPDATE materials
		SET title = $1, description = $2, file_url = $3, updated_at = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(ctx, query,
		material.Title,
		material.Description,
		material.FileURL,
		material.UpdatedAt,
		material.ID,
	)

	return err
}

func (r *contentRepository) DeleteMaterial(ctx context.Context, id string) error {
	query := `DELETE FROM materials WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
