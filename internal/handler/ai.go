package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/file-intake/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AIProcessor runs one AI request end to end and never fails.
type AIProcessor interface {
	Process(ctx context.Context, text string, intent domain.QueryIntent) domain.AIOutcome
}

// AIHandler handles AI processing requests.
type AIHandler struct {
	processor AIProcessor
	files     *FilesHandler
	logger    *zap.Logger
}

// NewAIHandler creates a new AIHandler. files is used to resolve stored
// documents for POST /api/v1/files/:id/ai.
func NewAIHandler(processor AIProcessor, files *FilesHandler, logger *zap.Logger) *AIHandler {
	return &AIHandler{
		processor: processor,
		files:     files,
		logger:    logger.Named("ai_handler"),
	}
}

// ProcessText processes POST /api/v1/ai/process requests.
func (h *AIHandler) ProcessText(c *gin.Context) {
	var req domain.ProcessTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	h.respond(c, req.Text, req.Intent, "")
}

// ProcessFile processes POST /api/v1/files/:id/ai requests over the stored
// text of a file.
func (h *AIHandler) ProcessFile(c *gin.Context) {
	var req domain.ProcessFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	file, ok := h.files.loadFile(c)
	if !ok {
		return
	}

	h.respond(c, file.FileText, req.Intent, file.ID)
}

// respond runs the processor and writes 200 on success, 422 otherwise. An
// unrecognized intent name is passed through as IntentUnknown so the
// processor reports it with its own message.
func (h *AIHandler) respond(c *gin.Context, text, intentName, fileID string) {
	logger := h.logger.With(zap.String("request_id", c.GetString(ctxRequestID)))

	intent, _ := domain.ParseQueryIntent(intentName)
	outcome := h.processor.Process(c.Request.Context(), text, intent)

	resp := domain.AIProcessResponse{
		Success:     outcome.Succeeded,
		Response:    outcome.ResponseText,
		Error:       outcome.ErrorMessage,
		Intent:      intent.String(),
		FileID:      fileID,
		ProcessedAt: time.Now().UTC(),
	}

	status := http.StatusOK
	if !outcome.Succeeded {
		status = http.StatusUnprocessableEntity
		logger.Info("ai processing failed",
			zap.String("intent", intent.String()),
			zap.String("file_id", fileID),
			zap.String("error", outcome.ErrorMessage),
		)
	}

	c.JSON(status, resp)
}
