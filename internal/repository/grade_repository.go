package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"examdesk/internal/models"
)

var ErrGradeNotFound = errors.New("grade not found")

type GradeRepository struct {
	pool *pgxpool.Pool
}

func NewGradeRepository(pool *pgxpool.Pool) *GradeRepository {
	return &GradeRepository{pool: pool}
}

const gradeColumns = `id, student_id, course_id, course_code, course_name, semester, instructor_id, grade, created_at, updated_at`

func (r *GradeRepository) Upsert(ctx context.Context, grade models.Grade) error {
	const query = `
		INSERT INTO grades (
			id, student_id, course_id, course_code, course_name, semester, instructor_id, grade, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
		ON CONFLICT (student_id, course_id)
		DO UPDATE SET
			course_code = EXCLUDED.course_code,
			course_name = EXCLUDED.course_name,
			semester = EXCLUDED.semester,
			instructor_id = EXCLUDED.instructor_id,
			grade = EXCLUDED.grade,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		grade.ID,
		grade.StudentID,
		grade.CourseID,
		grade.CourseCode,
		grade.CourseName,
		grade.Semester,
		grade.InstructorID,
		grade.Grade,
	)
	return err
}

func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	const query = `
		SELECT ` + gradeColumns + `
		FROM grades
		WHERE student_id = $1
		ORDER BY semester, course_code
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGrades(rows)
}

func (r *GradeRepository) GetByStudentAndCourse(ctx context.Context, studentID string, courseID string) (models.Grade, error) {
	const query = `
		SELECT ` + gradeColumns + `
		FROM grades
		WHERE student_id = $1 AND course_id = $2
	`

	row := r.pool.QueryRow(ctx, query, studentID, courseID)
	var grade models.Grade
	if err := scanGrade(row, &grade); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Grade{}, ErrGradeNotFound
		}
		return models.Grade{}, err
	}
	return grade, nil
}

// CourseAggregates returns, per course graded by the instructor, the enrolled
// student count and how many of them reached the pass threshold. Ownership
// comes from the instructor_id each submitted grade carries.
func (r *GradeRepository) CourseAggregates(ctx context.Context, instructorID string, passThreshold float64) ([]models.CourseResitStats, error) {
	const query = `
		SELECT course_id,
		       course_code,
		       course_name,
		       COUNT(*) AS total_students,
		       COUNT(*) FILTER (WHERE grade >= $2) AS passed
		FROM grades
		WHERE instructor_id = $1
		GROUP BY course_id, course_code, course_name
		ORDER BY course_code
	`

	rows, err := r.pool.Query(ctx, query, instructorID, passThreshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.CourseResitStats
	for rows.Next() {
		var s models.CourseResitStats
		var passed int
		if err := rows.Scan(&s.CourseID, &s.CourseCode, &s.CourseName, &s.TotalStudents, &passed); err != nil {
			return nil, err
		}
		if s.TotalStudents > 0 {
			s.PassRate = float64(passed) / float64(s.TotalStudents) * 100
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func scanGrades(rows pgx.Rows) ([]models.Grade, error) {
	var grades []models.Grade
	for rows.Next() {
		var grade models.Grade
		if err := scanGrade(rows, &grade); err != nil {
			return nil, err
		}
		grades = append(grades, grade)
	}
	return grades, rows.Err()
}

func scanGrade(row pgx.Row, grade *models.Grade) error {
	return row.Scan(
		&grade.ID,
		&grade.StudentID,
		&grade.CourseID,
		&grade.CourseCode,
		&grade.CourseName,
		&grade.Semester,
		&grade.InstructorID,
		&grade.Grade,
		&grade.CreatedAt,
		&grade.UpdatedAt,
	)
}
