package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"examdesk/internal/models"
	"examdesk/internal/repository"
	"examdesk/internal/service"
)

type gradeResponse struct {
	ID         string  `json:"id"`
	CourseID   string  `json:"courseId"`
	CourseCode string  `json:"courseCode"`
	CourseName string  `json:"courseName"`
	Semester   string  `json:"semester"`
	Grade      float64 `json:"grade"`
}

func (h HandlerSet) MyGrades(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	grades, err := h.gradeService.ListForStudent(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]gradeResponse, 0, len(grades))
	for _, g := range grades {
		resp = append(resp, toGradeResponse(g))
	}
	c.JSON(http.StatusOK, resp)
}

// EligibleResits lists the failing courses the student may still declare a
// resit for.
func (h HandlerSet) EligibleResits(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	grades, err := h.resitService.EligibleCourses(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]gradeResponse, 0, len(grades))
	for _, g := range grades {
		resp = append(resp, toGradeResponse(g))
	}
	c.JSON(http.StatusOK, resp)
}

type resitExamResponse struct {
	ID               string    `json:"id"`
	CourseID         string    `json:"courseId"`
	CourseCode       string    `json:"courseCode"`
	CourseName       string    `json:"courseName"`
	ExamDate         time.Time `json:"examDate"`
	Location         string    `json:"location"`
	AllowedMaterials string    `json:"allowedMaterials"`
	Deadline         time.Time `json:"deadline"`
}

func (h HandlerSet) MyResitExams(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	exams, err := h.resitService.ExamsForStudent(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]resitExamResponse, 0, len(exams))
	for _, exam := range exams {
		resp = append(resp, toResitExamResponse(exam))
	}
	c.JSON(http.StatusOK, resp)
}

type declareResitRequest struct {
	CourseID string `json:"courseId" binding:"required"`
}

func (h HandlerSet) DeclareResit(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req declareResitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reg, err := h.resitService.Declare(c.Request.Context(), user.ID, req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotEligible),
			errors.Is(err, service.ErrDeadlinePassed),
			errors.Is(err, repository.ErrAlreadyRegistered):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrResitExamNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":           reg.ID,
		"courseId":     reg.CourseID,
		"status":       reg.Status,
		"registeredAt": reg.RegisteredAt,
	})
}

func (h HandlerSet) DownloadSchedule(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename required"})
		return
	}

	file, reader, err := h.scheduleService.Open(c.Request.Context(), filename)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Header("Content-Type", file.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.log.Warn().Err(err).Str("filename", file.Filename).Msg("schedule stream interrupted")
	}
}

func toGradeResponse(g models.Grade) gradeResponse {
	return gradeResponse{
		ID:         g.ID,
		CourseID:   g.CourseID,
		CourseCode: g.CourseCode,
		CourseName: g.CourseName,
		Semester:   g.Semester,
		Grade:      g.Grade,
	}
}

func toResitExamResponse(exam models.ResitExam) resitExamResponse {
	return resitExamResponse{
		ID:               exam.ID,
		CourseID:         exam.CourseID,
		CourseCode:       exam.CourseCode,
		CourseName:       exam.CourseName,
		ExamDate:         exam.ExamDate,
		Location:         exam.Location,
		AllowedMaterials: exam.AllowedMaterials,
		Deadline:         exam.Deadline,
	}
}
