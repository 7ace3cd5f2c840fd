package api

import "time"

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleSecretary  Role = "secretary"
	RoleNone       Role = ""
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Grade struct {
	ID         string  `json:"id"`
	CourseID   string  `json:"courseId"`
	CourseCode string  `json:"courseCode"`
	CourseName string  `json:"courseName"`
	Semester   string  `json:"semester"`
	Grade      float64 `json:"grade"`
}

type ResitExam struct {
	ID               string    `json:"id"`
	CourseID         string    `json:"courseId"`
	CourseCode       string    `json:"courseCode"`
	CourseName       string    `json:"courseName"`
	ExamDate         time.Time `json:"examDate"`
	Location         string    `json:"location"`
	AllowedMaterials string    `json:"allowedMaterials"`
	Deadline         time.Time `json:"deadline"`
}

type ResitDetails struct {
	CourseID         string `json:"courseId"`
	CourseCode       string `json:"courseCode"`
	CourseName       string `json:"courseName"`
	ExamDate         string `json:"examDate"`
	Location         string `json:"location"`
	AllowedMaterials string `json:"allowedMaterials"`
	Deadline         string `json:"deadline"`
}

type Registration struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"studentId"`
	StudentName  string    `json:"studentName"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registrationDate"`
}

type CourseStats struct {
	CourseID      string  `json:"courseId"`
	CourseCode    string  `json:"courseCode"`
	CourseName    string  `json:"courseName"`
	TotalStudents int     `json:"totalStudents"`
	Registered    int     `json:"registered"`
	PassRate      float64 `json:"passRate"`
}

type ResitStats struct {
	Courses     []CourseStats `json:"courses"`
	AvgPassRate float64       `json:"avgPassRate"`
}

type SubmitGradeInput struct {
	CourseID   string  `json:"courseId"`
	CourseCode string  `json:"courseCode,omitempty"`
	CourseName string  `json:"courseName,omitempty"`
	Semester   string  `json:"semester,omitempty"`
	StudentID  string  `json:"studentId"`
	Grade      float64 `json:"grade"`
}

type ScheduleFile struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedBy string    `json:"uploadedBy"`
	UploadDate time.Time `json:"uploadDate"`
}
