package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"examdesk/internal/config"
	"examdesk/internal/ids"
	"examdesk/internal/models"
	"examdesk/internal/repository"
)

var (
	ErrNotEligible    = errors.New("course not eligible for resit")
	ErrDeadlinePassed = errors.New("resit declaration deadline has passed")
)

type ResitService struct {
	resits *repository.ResitRepository
	grades *repository.GradeRepository
	cache  *redis.Client
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewResitService(
	resits *repository.ResitRepository,
	grades *repository.GradeRepository,
	cache *redis.Client,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *ResitService {
	return &ResitService{
		resits: resits,
		grades: grades,
		cache:  cache,
		cfg:    cfg,
		log:    log,
	}
}

func (s *ResitService) ExamsForStudent(ctx context.Context, studentID string) ([]models.ResitExam, error) {
	return s.resits.ListExamsForStudent(ctx, studentID)
}

// EligibleCourses filters the student's grades down to failing courses with no
// existing resit registration.
func (s *ResitService) EligibleCourses(ctx context.Context, studentID string) ([]models.Grade, error) {
	grades, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	registered, err := s.resits.RegisteredCourseIDs(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return FilterEligible(grades, registered, s.cfg.Exam.PassThreshold), nil
}

func FilterEligible(grades []models.Grade, registeredCourseIDs []string, passThreshold float64) []models.Grade {
	registered := make(map[string]struct{}, len(registeredCourseIDs))
	for _, id := range registeredCourseIDs {
		registered[id] = struct{}{}
	}

	eligible := make([]models.Grade, 0)
	for _, g := range grades {
		if g.Grade >= passThreshold {
			continue
		}
		if _, ok := registered[g.CourseID]; ok {
			continue
		}
		eligible = append(eligible, g)
	}
	return eligible
}

func (s *ResitService) Declare(ctx context.Context, studentID string, courseID string) (models.ResitRegistration, error) {
	grade, err := s.grades.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrGradeNotFound) {
			return models.ResitRegistration{}, ErrNotEligible
		}
		return models.ResitRegistration{}, err
	}
	if grade.Grade >= s.cfg.Exam.PassThreshold {
		return models.ResitRegistration{}, ErrNotEligible
	}

	exam, err := s.resits.GetExamByCourse(ctx, courseID)
	if err != nil {
		return models.ResitRegistration{}, err
	}
	if !exam.Deadline.IsZero() && time.Now().After(exam.Deadline) {
		return models.ResitRegistration{}, ErrDeadlinePassed
	}

	reg := models.ResitRegistration{
		ID:          ids.New(),
		ResitExamID: exam.ID,
		CourseID:    courseID,
		StudentID:   studentID,
		Status:      models.RegistrationOpen,
	}
	if err := s.resits.CreateRegistration(ctx, reg); err != nil {
		return models.ResitRegistration{}, err
	}

	s.log.Info().Str("student_id", studentID).Str("course_id", courseID).Msg("resit declared")
	return reg, nil
}

type ResitDetailsInput struct {
	CourseID         string
	CourseCode       string
	CourseName       string
	ExamDate         time.Time
	Location         string
	AllowedMaterials string
	Deadline         time.Time
}

func (s *ResitService) UpsertDetails(ctx context.Context, instructorID string, input ResitDetailsInput) (models.ResitExam, error) {
	if input.CourseID == "" {
		return models.ResitExam{}, fmt.Errorf("course required")
	}
	if input.ExamDate.IsZero() || input.Location == "" {
		return models.ResitExam{}, fmt.Errorf("exam date and location required")
	}

	exam := models.ResitExam{
		ID:               ids.New(),
		CourseID:         input.CourseID,
		CourseCode:       input.CourseCode,
		CourseName:       input.CourseName,
		InstructorID:     instructorID,
		ExamDate:         input.ExamDate,
		Location:         input.Location,
		AllowedMaterials: input.AllowedMaterials,
		Deadline:         input.Deadline,
	}
	if err := s.resits.UpsertExam(ctx, exam); err != nil {
		return models.ResitExam{}, err
	}

	// Aggregates include registration counts; drop the cached copy.
	s.invalidateStats(ctx, instructorID)

	return exam, nil
}

func (s *ResitService) Registrations(ctx context.Context, courseID string) ([]models.ResitRegistration, error) {
	return s.resits.ListRegistrationsByCourse(ctx, courseID)
}

// Stats serves the instructor dashboard; aggregates are cached briefly in
// redis since every dashboard load asks for them.
func (s *ResitService) Stats(ctx context.Context, instructorID string) ([]models.CourseResitStats, error) {
	cacheKey := statsCacheKey(instructorID)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []models.CourseResitStats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	stats, err := s.grades.CourseAggregates(ctx, instructorID, s.cfg.Exam.PassThreshold)
	if err != nil {
		return nil, err
	}

	counts, err := s.resits.RegistrationCounts(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].Registered = counts[stats[i].CourseID]
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.cfg.Exam.StatsCacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("stats cache set failed")
			}
		}
	}

	return stats, nil
}

func (s *ResitService) invalidateStats(ctx context.Context, instructorID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey(instructorID)).Err(); err != nil {
		s.log.Warn().Err(err).Msg("stats cache invalidate failed")
	}
}

func statsCacheKey(instructorID string) string {
	return "resit:stats:" + instructorID
}
