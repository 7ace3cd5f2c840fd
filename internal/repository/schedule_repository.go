package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"examdesk/internal/models"
)

var ErrScheduleNotFound = errors.New("schedule file not found")

type ScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

func (r *ScheduleRepository) Create(ctx context.Context, file models.ScheduleFile) error {
	const query = `
		INSERT INTO schedule_files (
			id, filename, object_key, size_bytes, content_type, uploaded_by, uploaded_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW()
		)
		ON CONFLICT (filename)
		DO UPDATE SET
			object_key = EXCLUDED.object_key,
			size_bytes = EXCLUDED.size_bytes,
			content_type = EXCLUDED.content_type,
			uploaded_by = EXCLUDED.uploaded_by,
			uploaded_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		file.ID,
		file.Filename,
		file.ObjectKey,
		file.SizeBytes,
		file.ContentType,
		file.UploadedBy,
	)
	return err
}

func (r *ScheduleRepository) GetByFilename(ctx context.Context, filename string) (models.ScheduleFile, error) {
	const query = `
		SELECT id, filename, object_key, size_bytes, content_type, uploaded_by, uploaded_at
		FROM schedule_files
		WHERE filename = $1
	`

	row := r.pool.QueryRow(ctx, query, filename)
	var file models.ScheduleFile
	if err := row.Scan(
		&file.ID,
		&file.Filename,
		&file.ObjectKey,
		&file.SizeBytes,
		&file.ContentType,
		&file.UploadedBy,
		&file.UploadedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ScheduleFile{}, ErrScheduleNotFound
		}
		return models.ScheduleFile{}, err
	}
	return file, nil
}

func (r *ScheduleRepository) List(ctx context.Context) ([]models.ScheduleFile, error) {
	const query = `
		SELECT id, filename, object_key, size_bytes, content_type, uploaded_by, uploaded_at
		FROM schedule_files
		ORDER BY uploaded_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.ScheduleFile
	for rows.Next() {
		var file models.ScheduleFile
		if err := rows.Scan(
			&file.ID,
			&file.Filename,
			&file.ObjectKey,
			&file.SizeBytes,
			&file.ContentType,
			&file.UploadedBy,
			&file.UploadedAt,
		); err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}
