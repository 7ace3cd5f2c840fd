package models

import "time"

type Grade struct {
	ID           string
	StudentID    string
	CourseID     string
	CourseCode   string
	CourseName   string
	Semester     string
	InstructorID string
	Grade        float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ResitExam struct {
	ID               string
	CourseID         string
	CourseCode       string
	CourseName       string
	InstructorID     string
	ExamDate         time.Time
	Location         string
	AllowedMaterials string
	Deadline         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type RegistrationStatus string

const (
	RegistrationOpen   RegistrationStatus = "registered"
	RegistrationClosed RegistrationStatus = "closed"
)

type ResitRegistration struct {
	ID           string
	ResitExamID  string
	CourseID     string
	StudentID    string
	StudentName  string
	StudentEmail string
	Status       RegistrationStatus
	RegisteredAt time.Time
}

// CourseResitStats is the per-course aggregate behind the instructor dashboard.
type CourseResitStats struct {
	CourseID      string
	CourseCode    string
	CourseName    string
	TotalStudents int
	Registered    int
	PassRate      float64
}

type ScheduleFile struct {
	ID          string
	Filename    string
	ObjectKey   string
	SizeBytes   int64
	ContentType string
	UploadedBy  string
	UploadedAt  time.Time
}
