package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"examdesk/internal/ids"
	"examdesk/internal/models"
)

// testPool connects to the database named by EXAMDESK_TEST_POSTGRES_DSN, or
// skips. Schema is expected to be in place.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("EXAMDESK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("EXAMDESK_TEST_POSTGRES_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("database unreachable: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestCourseAggregatesScopedToInstructor(t *testing.T) {
	pool := testPool(t)
	repo := NewGradeRepository(pool)
	ctx := context.Background()

	instructor := ids.New()
	other := ids.New()
	courseID := ids.New()
	otherCourse := ids.New()

	seed := []models.Grade{
		{ID: ids.New(), StudentID: ids.New(), CourseID: courseID, CourseCode: "MATH101", CourseName: "Calculus", InstructorID: instructor, Grade: 70},
		{ID: ids.New(), StudentID: ids.New(), CourseID: courseID, CourseCode: "MATH101", CourseName: "Calculus", InstructorID: instructor, Grade: 40},
		{ID: ids.New(), StudentID: ids.New(), CourseID: otherCourse, CourseCode: "PHYS101", CourseName: "Mechanics", InstructorID: other, Grade: 90},
	}
	for _, g := range seed {
		if err := repo.Upsert(ctx, g); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	t.Cleanup(func() {
		for _, id := range []string{courseID, otherCourse} {
			_, _ = pool.Exec(context.Background(), `DELETE FROM grades WHERE course_id = $1`, id)
		}
	})

	stats, err := repo.CourseAggregates(ctx, instructor, 55)
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}

	// Only the instructor's own submissions count; no side table required.
	if len(stats) != 1 {
		t.Fatalf("expected 1 course, got %d", len(stats))
	}
	if stats[0].CourseID != courseID {
		t.Fatalf("expected %s, got %s", courseID, stats[0].CourseID)
	}
	if stats[0].TotalStudents != 2 {
		t.Fatalf("expected 2 students, got %d", stats[0].TotalStudents)
	}
	if stats[0].PassRate != 50 {
		t.Fatalf("expected 50%% pass rate, got %v", stats[0].PassRate)
	}
}
