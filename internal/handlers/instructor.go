package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"examdesk/internal/service"
)

type courseStatsResponse struct {
	CourseID      string  `json:"courseId"`
	CourseCode    string  `json:"courseCode"`
	CourseName    string  `json:"courseName"`
	TotalStudents int     `json:"totalStudents"`
	Registered    int     `json:"registered"`
	PassRate      float64 `json:"passRate"`
}

type resitStatsResponse struct {
	Courses     []courseStatsResponse `json:"courses"`
	AvgPassRate float64               `json:"avgPassRate"`
}

func (h HandlerSet) ResitStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.resitService.Stats(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	courses := make([]courseStatsResponse, 0, len(stats))
	for _, s := range stats {
		courses = append(courses, courseStatsResponse{
			CourseID:      s.CourseID,
			CourseCode:    s.CourseCode,
			CourseName:    s.CourseName,
			TotalStudents: s.TotalStudents,
			Registered:    s.Registered,
			PassRate:      s.PassRate,
		})
	}

	c.JSON(http.StatusOK, resitStatsResponse{
		Courses:     courses,
		AvgPassRate: service.WeightedPassRate(stats),
	})
}

type submitGradeRequest struct {
	CourseID   string  `json:"courseId" binding:"required"`
	CourseCode string  `json:"courseCode"`
	CourseName string  `json:"courseName"`
	Semester   string  `json:"semester"`
	StudentID  string  `json:"studentId" binding:"required"`
	Grade      float64 `json:"grade"`
}

func (h HandlerSet) SubmitGrade(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req submitGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grade, err := h.gradeService.Submit(c.Request.Context(), user.ID, service.SubmitGradeInput{
		CourseID:   req.CourseID,
		CourseCode: req.CourseCode,
		CourseName: req.CourseName,
		Semester:   req.Semester,
		StudentID:  req.StudentID,
		Grade:      req.Grade,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidGrade) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toGradeResponse(grade))
}

type resitDetailsRequest struct {
	CourseID         string `json:"courseId" binding:"required"`
	CourseCode       string `json:"courseCode"`
	CourseName       string `json:"courseName"`
	ExamDate         string `json:"examDate" binding:"required"`
	Location         string `json:"location" binding:"required"`
	AllowedMaterials string `json:"allowedMaterials"`
	Deadline         string `json:"deadline"`
}

func (h HandlerSet) ResitDetails(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req resitDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	examDate, err := parseDate(req.ExamDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid examDate"})
		return
	}
	var deadline time.Time
	if req.Deadline != "" {
		deadline, err = parseDate(req.Deadline)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline"})
			return
		}
	}

	exam, err := h.resitService.UpsertDetails(c.Request.Context(), user.ID, service.ResitDetailsInput{
		CourseID:         req.CourseID,
		CourseCode:       req.CourseCode,
		CourseName:       req.CourseName,
		ExamDate:         examDate,
		Location:         req.Location,
		AllowedMaterials: req.AllowedMaterials,
		Deadline:         deadline,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toResitExamResponse(exam))
}

type registrationResponse struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"studentId"`
	StudentName  string    `json:"studentName"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registrationDate"`
}

func (h HandlerSet) ResitRegistrations(c *gin.Context) {
	courseID := c.Param("courseId")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "courseId required"})
		return
	}

	regs, err := h.resitService.Registrations(c.Request.Context(), courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]registrationResponse, 0, len(regs))
	for _, reg := range regs {
		resp = append(resp, registrationResponse{
			ID:           reg.ID,
			StudentID:    reg.StudentID,
			StudentName:  reg.StudentName,
			Email:        reg.StudentEmail,
			Status:       string(reg.Status),
			RegisteredAt: reg.RegisteredAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// parseDate accepts both date-only and RFC3339 payloads; the form clients send
// yyyy-mm-dd.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
