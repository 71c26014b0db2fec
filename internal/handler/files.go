package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/file-intake/internal/domain"
	"github.com/file-intake/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileService is the part of the intake service used by the file handlers.
type FileService interface {
	Upload(ctx context.Context, in service.UploadInput) (service.UploadResult, error)
	Recent(ctx context.Context, count int, order domain.SortOrder) ([]domain.FileRecord, error)
	Get(ctx context.Context, id string) (domain.FileRecord, error)
}

// FilesHandler handles the /api/v1/files endpoints.
type FilesHandler struct {
	files       FileService
	maxFileSize int64
	logger      *zap.Logger
}

// NewFilesHandler creates a new FilesHandler.
func NewFilesHandler(files FileService, maxFileSize int64, logger *zap.Logger) *FilesHandler {
	return &FilesHandler{
		files:       files,
		maxFileSize: maxFileSize,
		logger:      logger.Named("files_handler"),
	}
}

// Upload processes POST /api/v1/files requests.
func (h *FilesHandler) Upload(c *gin.Context) {
	logger := h.logger.With(zap.String("request_id", c.GetString(ctxRequestID)))

	email := strings.TrimSpace(c.GetHeader(headerUserEmail))
	if email == "" {
		c.JSON(http.StatusUnauthorized, domain.UploadResponse{
			Success: false,
			Error:   "Missing " + headerUserEmail + " header",
		})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		logger.Debug("upload without file", zap.Error(err))
		c.JSON(http.StatusBadRequest, domain.UploadResponse{
			Success: false,
			Error:   domain.MsgNoFileSelected,
		})
		return
	}

	if header.Size > h.maxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, domain.UploadResponse{
			Success: false,
			Error:   domain.MsgFileTooLarge,
		})
		return
	}

	f, err := header.Open()
	if err != nil {
		logger.Error("failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, domain.UploadResponse{
			Success: false,
			Error:   (&domain.UploadError{Err: err}).Error(),
		})
		return
	}
	defer f.Close()

	// Read one byte past the limit so the service can reject oversize parts.
	data, err := io.ReadAll(io.LimitReader(f, h.maxFileSize+1))
	if err != nil {
		logger.Error("failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, domain.UploadResponse{
			Success: false,
			Error:   (&domain.UploadError{Err: err}).Error(),
		})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	res, err := h.files.Upload(c.Request.Context(), service.UploadInput{
		OwnerEmail:  email,
		FirstName:   strings.TrimSpace(c.GetHeader(headerFirstName)),
		LastName:    strings.TrimSpace(c.GetHeader(headerLastName)),
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		status := uploadStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Error("upload failed", zap.String("file", header.Filename), zap.Error(err))
		} else {
			logger.Info("upload rejected", zap.String("file", header.Filename), zap.Error(err))
		}
		c.JSON(status, domain.UploadResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, domain.UploadResponse{
		Success:   true,
		File:      res.File,
		Duplicate: res.Duplicate,
	})
}

func uploadStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrUserRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnreadablePDF):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// List processes GET /api/v1/files requests.
func (h *FilesHandler) List(c *gin.Context) {
	count := 0
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "count must be a non-negative integer",
			})
			return
		}
		count = n
	}
	order := domain.ParseSortOrder(c.Query("sort"))

	files, err := h.files.Recent(c.Request.Context(), count, order)
	if err != nil {
		h.logger.Error("listing files failed",
			zap.String("request_id", c.GetString(ctxRequestID)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Could not load recent files",
		})
		return
	}

	if files == nil {
		files = []domain.FileRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"files":   files,
	})
}

// Get processes GET /api/v1/files/:id requests.
func (h *FilesHandler) Get(c *gin.Context) {
	file, ok := h.loadFile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"file":    file,
	})
}

// loadFile writes the error response itself and reports false when the file
// could not be loaded.
func (h *FilesHandler) loadFile(c *gin.Context) (domain.FileRecord, bool) {
	file, err := h.files.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "File not found",
			})
			return domain.FileRecord{}, false
		}
		h.logger.Error("loading file failed",
			zap.String("request_id", c.GetString(ctxRequestID)),
			zap.String("file_id", c.Param("id")),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Could not load file",
		})
		return domain.FileRecord{}, false
	}
	return file, true
}
