package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/agrofount/backoffice/internal/event"
	"github.com/agrofount/backoffice/pkg/config"
	"github.com/agrofount/backoffice/pkg/logger"
	"github.com/agrofount/backoffice/pkg/messaging"
	"github.com/agrofount/backoffice/prometheus"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// uploadSessionHeader carries the client-chosen session key that scopes
// progress events to the page that started the upload
const uploadSessionHeader = "X-Upload-Session"

var upload config.UploadConfig

// InitUpload sets the destination directory and size cap for uploads
func InitUpload(cfg config.UploadConfig) {
	upload = cfg
}

// progressWriter reports write progress as a percentage of the expected
// total. Repeated writes landing on the same percentage emit one event.
type progressWriter struct {
	name    string
	session string
	total   int64
	written int64
	last    int
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))

	pct := 100
	if w.total > 0 {
		pct = int(w.written * 100 / w.total)
		if pct > 100 {
			pct = 100
		}
	}
	if pct != w.last {
		w.last = pct
		ev := event.Progress{Name: w.name, Percentage: pct}
		event.Default.Publish(w.session, ev)
		// Mirror to the broker for consumers outside this process; a
		// down broker must not fail the upload
		_ = messaging.Publish(context.Background(), messaging.KeyUploadProgress, echo.Map{
			"session":    w.session,
			"name":       ev.Name,
			"percentage": ev.Percentage,
		})
	}
	return len(p), nil
}

// UploadFile stores a multipart file and streams progress events to the
// session named in the X-Upload-Session header
func UploadFile(c echo.Context) error {
	log := logger.FromEcho(c)

	session := c.Request().Header.Get(uploadSessionHeader)
	if session == "" {
		return validationFailed(c, []string{"X-Upload-Session header is required"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return validationFailed(c, []string{"file is required"})
	}
	if upload.MaxSizeBytes > 0 && fileHeader.Size > upload.MaxSizeBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{
			"message": fmt.Sprintf("file exceeds the %d byte limit", upload.MaxSizeBytes),
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to read uploaded file"})
	}
	defer src.Close()

	if err := os.MkdirAll(upload.Dir, 0o755); err != nil {
		log.Error("Failed to create upload directory", zap.String("dir", upload.Dir), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to store file"})
	}

	// Randomized prefix keeps same-named uploads from clobbering each other
	name := uuid.New().String()[:8] + "-" + filepath.Base(fileHeader.Filename)
	dst, err := os.Create(filepath.Join(upload.Dir, name))
	if err != nil {
		log.Error("Failed to create destination file", zap.String("name", name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to store file"})
	}
	defer dst.Close()

	prometheus.ActiveUploadsGauge.Inc()
	defer prometheus.ActiveUploadsGauge.Dec()

	pw := &progressWriter{
		name:    fileHeader.Filename,
		session: session,
		total:   fileHeader.Size,
		last:    -1,
	}
	if _, err := io.Copy(io.MultiWriter(dst, pw), src); err != nil {
		log.Error("Failed to write uploaded file", zap.String("name", name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to store file"})
	}

	// Guarantee a terminal event even for zero-byte files
	if pw.last != 100 {
		event.Default.Publish(session, event.Progress{Name: fileHeader.Filename, Percentage: 100})
	}

	log.Info("File uploaded",
		zap.String("session", session),
		zap.String("file", fileHeader.Filename),
		zap.Int64("size", fileHeader.Size))
	return c.JSON(http.StatusCreated, echo.Map{
		"name": fileHeader.Filename,
		"url":  "/uploads/" + name,
		"size": fileHeader.Size,
	})
}

// UploadProgress streams progress events for one session as
// server-sent events until the client disconnects
func UploadProgress(c echo.Context) error {
	session := c.Param("session")
	if session == "" {
		return validationFailed(c, []string{"session is required"})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	events, cancel := event.Default.Subscribe(session)
	defer cancel()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-events:
			if !ok {
				return nil
			}
			body, err := json.Marshal(p)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "data: %s\n\n", body); err != nil {
				return nil
			}
			res.Flush()
			if p.Percentage >= 100 {
				return nil
			}
		}
	}
}
