package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"examdesk/internal/config"
	"examdesk/internal/ids"
	"examdesk/internal/models"
	"examdesk/internal/repository"
)

var ErrInvalidGrade = errors.New("grade must be between 0 and 100")

type GradeService struct {
	grades *repository.GradeRepository
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewGradeService(grades *repository.GradeRepository, cfg *config.AppConfig, log zerolog.Logger) *GradeService {
	return &GradeService{
		grades: grades,
		cfg:    cfg,
		log:    log,
	}
}

func (s *GradeService) ListForStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	return s.grades.ListByStudent(ctx, studentID)
}

type SubmitGradeInput struct {
	CourseID   string
	CourseCode string
	CourseName string
	Semester   string
	StudentID  string
	Grade      float64
}

func (s *GradeService) Submit(ctx context.Context, instructorID string, input SubmitGradeInput) (models.Grade, error) {
	if input.Grade < 0 || input.Grade > 100 {
		return models.Grade{}, ErrInvalidGrade
	}
	if input.CourseID == "" || input.StudentID == "" {
		return models.Grade{}, fmt.Errorf("course and student required")
	}

	grade := models.Grade{
		ID:           ids.New(),
		StudentID:    input.StudentID,
		CourseID:     input.CourseID,
		CourseCode:   input.CourseCode,
		CourseName:   input.CourseName,
		Semester:     input.Semester,
		InstructorID: instructorID,
		Grade:        input.Grade,
	}

	if err := s.grades.Upsert(ctx, grade); err != nil {
		return models.Grade{}, err
	}

	s.log.Info().
		Str("instructor_id", instructorID).
		Str("course_id", input.CourseID).
		Str("student_id", input.StudentID).
		Float64("grade", input.Grade).
		Msg("grade submitted")

	return grade, nil
}

// GPA is the plain mean of numeric grades, two decimals of precision left to
// the caller.
func GPA(grades []models.Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g.Grade
	}
	return sum / float64(len(grades))
}

func PassRate(grades []models.Grade, passThreshold float64) float64 {
	if len(grades) == 0 {
		return 0
	}
	passed := 0
	for _, g := range grades {
		if g.Grade >= passThreshold {
			passed++
		}
	}
	return float64(passed) / float64(len(grades)) * 100
}

// WeightedPassRate averages per-course pass rates weighted by enrolled student
// counts, matching the instructor dashboard aggregate.
func WeightedPassRate(stats []models.CourseResitStats) float64 {
	var totalWeight float64
	var weightedSum float64
	for _, s := range stats {
		totalWeight += float64(s.TotalStudents)
		weightedSum += s.PassRate * float64(s.TotalStudents)
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}
