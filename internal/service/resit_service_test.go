package service

import (
	"testing"

	"examdesk/internal/models"
)

func TestFilterEligible(t *testing.T) {
	grades := []models.Grade{
		{CourseID: "c1", Grade: 40},
		{CourseID: "c2", Grade: 55},
		{CourseID: "c3", Grade: 54},
		{CourseID: "c4", Grade: 90},
	}

	eligible := FilterEligible(grades, []string{"c3"}, 55)
	if len(eligible) != 1 {
		t.Fatalf("expected 1 eligible course, got %d", len(eligible))
	}
	if eligible[0].CourseID != "c1" {
		t.Fatalf("expected c1, got %s", eligible[0].CourseID)
	}
}

func TestFilterEligibleNoGrades(t *testing.T) {
	if got := FilterEligible(nil, nil, 55); len(got) != 0 {
		t.Fatalf("expected empty, got %d", len(got))
	}
}

func TestFilterEligibleAllRegistered(t *testing.T) {
	grades := []models.Grade{
		{CourseID: "c1", Grade: 10},
		{CourseID: "c2", Grade: 20},
	}
	if got := FilterEligible(grades, []string{"c1", "c2"}, 55); len(got) != 0 {
		t.Fatalf("expected empty, got %d", len(got))
	}
}
