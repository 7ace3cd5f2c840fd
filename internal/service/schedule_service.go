package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"examdesk/internal/config"
	"examdesk/internal/ids"
	"examdesk/internal/models"
	"examdesk/internal/repository"
	"examdesk/internal/sniffer"
	"examdesk/internal/storage"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds upload limit")
	ErrUnsupportedFile = errors.New("unsupported schedule file type")
)

type ScheduleService struct {
	schedules *repository.ScheduleRepository
	store     *storage.ObjectStore
	cfg       *config.AppConfig
	log       zerolog.Logger
}

func NewScheduleService(
	schedules *repository.ScheduleRepository,
	store *storage.ObjectStore,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *ScheduleService {
	return &ScheduleService{
		schedules: schedules,
		store:     store,
		cfg:       cfg,
		log:       log,
	}
}

type UploadScheduleInput struct {
	UploadedBy string
	File       multipart.File
	Header     *multipart.FileHeader
}

func (s *ScheduleService) Upload(ctx context.Context, input UploadScheduleInput) (models.ScheduleFile, error) {
	if input.File == nil || input.Header == nil {
		return models.ScheduleFile{}, errors.New("invalid file payload")
	}
	if input.Header.Size > s.cfg.Security.MaxUploadSize {
		return models.ScheduleFile{}, ErrFileTooLarge
	}

	result, head, err := sniffer.Detect(input.File)
	if err != nil {
		if errors.Is(err, sniffer.ErrUnknownType) {
			return models.ScheduleFile{}, ErrUnsupportedFile
		}
		return models.ScheduleFile{}, fmt.Errorf("detect file type: %w", err)
	}

	filename := sanitizeFilename(input.Header.Filename)
	objectKey := ids.New() + "/" + filename

	reader := io.MultiReader(bytes.NewReader(head), input.File)
	if err := s.store.PutSchedule(ctx, objectKey, reader, input.Header.Size, result.MIME); err != nil {
		return models.ScheduleFile{}, err
	}

	file := models.ScheduleFile{
		ID:          ids.New(),
		Filename:    filename,
		ObjectKey:   objectKey,
		SizeBytes:   input.Header.Size,
		ContentType: result.MIME,
		UploadedBy:  input.UploadedBy,
	}
	if err := s.schedules.Create(ctx, file); err != nil {
		// Object without a row is unreachable; best effort cleanup.
		if rmErr := s.store.RemoveSchedule(ctx, objectKey); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("object_key", objectKey).Msg("orphan cleanup failed")
		}
		return models.ScheduleFile{}, err
	}

	s.log.Info().Str("filename", filename).Int64("size", file.SizeBytes).Msg("schedule uploaded")
	return file, nil
}

func (s *ScheduleService) List(ctx context.Context) ([]models.ScheduleFile, error) {
	return s.schedules.List(ctx)
}

// Open returns the stored file metadata and a reader over its content.
func (s *ScheduleService) Open(ctx context.Context, filename string) (models.ScheduleFile, io.ReadCloser, error) {
	file, err := s.schedules.GetByFilename(ctx, sanitizeFilename(filename))
	if err != nil {
		return models.ScheduleFile{}, nil, err
	}

	reader, err := s.store.GetSchedule(ctx, file.ObjectKey)
	if err != nil {
		return models.ScheduleFile{}, nil, err
	}
	return file, reader, nil
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSpace(name)
}
