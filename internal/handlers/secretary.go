package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"examdesk/internal/models"
	"examdesk/internal/service"
)

type scheduleFileResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedBy string    `json:"uploadedBy"`
	UploadDate time.Time `json:"uploadDate"`
}

func (h HandlerSet) UploadSchedule(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	uploaded, err := h.scheduleService.Upload(c.Request.Context(), service.UploadScheduleInput{
		UploadedBy: user.ID,
		File:       file,
		Header:     header,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUnsupportedFile):
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, toScheduleFileResponse(uploaded))
}

func (h HandlerSet) ListSchedules(c *gin.Context) {
	files, err := h.scheduleService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]scheduleFileResponse, 0, len(files))
	for _, file := range files {
		resp = append(resp, toScheduleFileResponse(file))
	}
	c.JSON(http.StatusOK, resp)
}

func toScheduleFileResponse(file models.ScheduleFile) scheduleFileResponse {
	return scheduleFileResponse{
		ID:         file.ID,
		Filename:   file.Filename,
		SizeBytes:  file.SizeBytes,
		UploadedBy: file.UploadedBy,
		UploadDate: file.UploadedAt,
	}
}
