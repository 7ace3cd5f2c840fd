package service

import (
	"math"
	"testing"

	"examdesk/internal/models"
)

func TestGPA(t *testing.T) {
	if got := GPA(nil); got != 0 {
		t.Fatalf("expected 0 for empty grades, got %v", got)
	}

	grades := []models.Grade{
		{Grade: 80},
		{Grade: 60},
		{Grade: 40},
	}
	if got := GPA(grades); got != 60 {
		t.Fatalf("expected 60, got %v", got)
	}
}

func TestPassRate(t *testing.T) {
	grades := []models.Grade{
		{Grade: 80},
		{Grade: 55},
		{Grade: 54.9},
		{Grade: 10},
	}
	if got := PassRate(grades, 55); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	if got := PassRate(nil, 55); got != 0 {
		t.Fatalf("expected 0 for empty grades, got %v", got)
	}
}

func TestWeightedPassRate(t *testing.T) {
	stats := []models.CourseResitStats{
		{TotalStudents: 10, PassRate: 90},
		{TotalStudents: 30, PassRate: 50},
	}
	want := (90.0*10 + 50.0*30) / 40
	if got := WeightedPassRate(stats); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if got := WeightedPassRate(nil); got != 0 {
		t.Fatalf("expected 0 for no courses, got %v", got)
	}
}
