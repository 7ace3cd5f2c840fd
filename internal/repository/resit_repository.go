package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"examdesk/internal/models"
)

var (
	ErrResitExamNotFound = errors.New("resit exam not found")
	ErrAlreadyRegistered = errors.New("already registered for resit")
)

type ResitRepository struct {
	pool *pgxpool.Pool
}

func NewResitRepository(pool *pgxpool.Pool) *ResitRepository {
	return &ResitRepository{pool: pool}
}

const resitColumns = `id, course_id, course_code, course_name, instructor_id, exam_date, location, allowed_materials, deadline, created_at, updated_at`

func (r *ResitRepository) UpsertExam(ctx context.Context, exam models.ResitExam) error {
	const query = `
		INSERT INTO resit_exams (
			id, course_id, course_code, course_name, instructor_id, exam_date, location, allowed_materials, deadline, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
		ON CONFLICT (course_id)
		DO UPDATE SET
			exam_date = EXCLUDED.exam_date,
			location = EXCLUDED.location,
			allowed_materials = EXCLUDED.allowed_materials,
			deadline = EXCLUDED.deadline,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		exam.ID,
		exam.CourseID,
		exam.CourseCode,
		exam.CourseName,
		exam.InstructorID,
		exam.ExamDate,
		exam.Location,
		exam.AllowedMaterials,
		exam.Deadline,
	)
	return err
}

func (r *ResitRepository) GetExamByCourse(ctx context.Context, courseID string) (models.ResitExam, error) {
	const query = `
		SELECT ` + resitColumns + `
		FROM resit_exams
		WHERE course_id = $1
	`

	row := r.pool.QueryRow(ctx, query, courseID)
	var exam models.ResitExam
	if err := scanResitExam(row, &exam); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ResitExam{}, ErrResitExamNotFound
		}
		return models.ResitExam{}, err
	}
	return exam, nil
}

// ListExamsForStudent returns the resit exams the student is registered for.
func (r *ResitRepository) ListExamsForStudent(ctx context.Context, studentID string) ([]models.ResitExam, error) {
	const query = `
		SELECT e.id, e.course_id, e.course_code, e.course_name, e.instructor_id,
		       e.exam_date, e.location, e.allowed_materials, e.deadline, e.created_at, e.updated_at
		FROM resit_exams e
		JOIN resit_registrations reg ON reg.resit_exam_id = e.id
		WHERE reg.student_id = $1
		ORDER BY e.exam_date
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []models.ResitExam
	for rows.Next() {
		var exam models.ResitExam
		if err := scanResitExam(rows, &exam); err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}
	return exams, rows.Err()
}

func (r *ResitRepository) CreateRegistration(ctx context.Context, reg models.ResitRegistration) error {
	const query = `
		INSERT INTO resit_registrations (
			id, resit_exam_id, course_id, student_id, status, registered_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW()
		)
		ON CONFLICT (resit_exam_id, student_id) DO NOTHING
	`

	cmd, err := r.pool.Exec(ctx, query,
		reg.ID,
		reg.ResitExamID,
		reg.CourseID,
		reg.StudentID,
		reg.Status,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlreadyRegistered
	}
	return nil
}

func (r *ResitRepository) ListRegistrationsByCourse(ctx context.Context, courseID string) ([]models.ResitRegistration, error) {
	const query = `
		SELECT reg.id, reg.resit_exam_id, reg.course_id, reg.student_id,
		       u.name, u.email, reg.status, reg.registered_at
		FROM resit_registrations reg
		JOIN users u ON u.id = reg.student_id
		WHERE reg.course_id = $1
		ORDER BY reg.registered_at
	`

	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []models.ResitRegistration
	for rows.Next() {
		var reg models.ResitRegistration
		if err := rows.Scan(
			&reg.ID,
			&reg.ResitExamID,
			&reg.CourseID,
			&reg.StudentID,
			&reg.StudentName,
			&reg.StudentEmail,
			&reg.Status,
			&reg.RegisteredAt,
		); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// RegisteredCourseIDs returns course ids the student already holds a resit
// registration for. Used by the eligibility filter.
func (r *ResitRepository) RegisteredCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	const query = `
		SELECT course_id FROM resit_registrations WHERE student_id = $1
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ResitRepository) RegistrationCounts(ctx context.Context, instructorID string) (map[string]int, error) {
	const query = `
		SELECT e.course_id, COUNT(reg.id)
		FROM resit_exams e
		LEFT JOIN resit_registrations reg ON reg.resit_exam_id = e.id
		WHERE e.instructor_id = $1
		GROUP BY e.course_id
	`

	rows, err := r.pool.Query(ctx, query, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var courseID string
		var count int
		if err := rows.Scan(&courseID, &count); err != nil {
			return nil, err
		}
		counts[courseID] = count
	}
	return counts, rows.Err()
}

// CloseRegistrationsPastDeadline flips open registrations to closed once the
// exam's declaration deadline has passed.
func (r *ResitRepository) CloseRegistrationsPastDeadline(ctx context.Context) (int64, error) {
	const query = `
		UPDATE resit_registrations reg
		SET status = 'closed'
		FROM resit_exams e
		WHERE reg.resit_exam_id = e.id
		  AND reg.status = 'registered'
		  AND e.deadline < NOW()
	`

	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanResitExam(row pgx.Row, exam *models.ResitExam) error {
	return row.Scan(
		&exam.ID,
		&exam.CourseID,
		&exam.CourseCode,
		&exam.CourseName,
		&exam.InstructorID,
		&exam.ExamDate,
		&exam.Location,
		&exam.AllowedMaterials,
		&exam.Deadline,
		&exam.CreatedAt,
		&exam.UpdatedAt,
	)
}
