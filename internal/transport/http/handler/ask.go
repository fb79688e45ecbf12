package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"answerbridge/internal/ai"
	"answerbridge/internal/app"
	"answerbridge/internal/extract"
	"answerbridge/internal/transport/http/middleware"
	"answerbridge/internal/transport/http/response"
)

type Asker interface {
	Ask(ctx context.Context, input app.AskInput) (*app.AskResult, error)
}

type AskHandler struct {
	asker     Asker
	maxUpload int64
	logger    *slog.Logger
}

func NewAskHandler(asker Asker, maxUpload int64, logger *slog.Logger) *AskHandler {
	if maxUpload <= 0 {
		maxUpload = extract.DefaultMaxArchiveBytes
	}
	return &AskHandler{asker: asker, maxUpload: maxUpload, logger: logger}
}

// Ask accepts a form with a required "question" field and an optional
// "file" upload. Every outcome is answered with 200 {"answer": ...}.
func (h *AskHandler) Ask(c *gin.Context) {
	question, ok := c.GetPostForm("question")
	if !ok {
		response.Error(c, http.StatusUnprocessableEntity, "question field is required")
		return
	}

	upload, err := h.readUpload(c)
	if err != nil {
		h.logger.Warn("read upload failed",
			slog.String("request_id", middleware.GetRequestID(c)),
			slog.Any("error", err),
		)
		response.Error(c, http.StatusBadRequest, "invalid file upload")
		return
	}

	result, err := h.asker.Ask(c.Request.Context(), app.AskInput{
		RequestID: middleware.GetRequestID(c),
		Question:  question,
		Upload:    upload,
	})
	if err != nil {
		response.Warning(c, displayMessage(err))
		return
	}
	response.Answer(c, result.Answer)
}

func (h *AskHandler) readUpload(c *gin.Context) (*app.Upload, error) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fh.Filename == "" && fh.Size == 0 {
		return nil, nil
	}

	data, err := readLimited(fh, h.maxUpload)
	if err != nil {
		return nil, err
	}
	return &app.Upload{Filename: fh.Filename, Data: data}, nil
}

// readLimited reads at most limit+1 bytes so an oversized upload is still
// reported as too large by the extractor without being held in memory.
func readLimited(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload failed: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload failed: %w", err)
	}
	return data, nil
}

func displayMessage(err error) string {
	var extractErr *extract.Error
	if errors.As(err, &extractErr) {
		return extractErr.Message()
	}
	var remoteErr *ai.RemoteCallError
	if errors.As(err, &remoteErr) {
		return remoteErr.Message()
	}
	return "Unexpected error: " + err.Error()
}
