package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/agrofount/backoffice/internal/event"
	"github.com/agrofount/backoffice/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(ch <-chan event.Progress, timeout time.Duration) []event.Progress {
	var events []event.Progress
	for {
		select {
		case p := <-ch:
			events = append(events, p)
			if p.Percentage >= 100 {
				return events
			}
		case <-time.After(timeout):
			return events
		}
	}
}

func TestProgressWriterEmitsMonotonicPercentages(t *testing.T) {
	ch, cancel := event.Default.Subscribe("session-w")
	defer cancel()

	w := &progressWriter{name: "feed.csv", session: "session-w", total: 100, last: -1}
	for i := 0; i < 4; i++ {
		_, err := w.Write(make([]byte, 25))
		require.NoError(t, err)
	}

	events := drain(ch, time.Second)
	require.NotEmpty(t, events)

	last := -1
	for _, p := range events {
		assert.Equal(t, "feed.csv", p.Name)
		assert.Greater(t, p.Percentage, last)
		last = p.Percentage
	}
	assert.Equal(t, 100, last)
}

func uploadRequest(t *testing.T, session, filename string, size int) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.Copy(fw, bytes.NewReader(make([]byte, size)))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	if session != "" {
		req.Header.Set(uploadSessionHeader, session)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestUploadFileStoresAndReportsProgress(t *testing.T) {
	InitUpload(config.UploadConfig{Dir: t.TempDir(), MaxSizeBytes: 1 << 20})

	ch, cancel := event.Default.Subscribe("session-u")
	defer cancel()

	c, rec := uploadRequest(t, "session-u", "price-list.csv", 2048)
	require.NoError(t, UploadFile(c))
	requireStatus(t, rec, http.StatusCreated)

	var resp struct {
		Name string `json:"name"`
		URL  string `json:"url"`
		Size int64  `json:"size"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "price-list.csv", resp.Name)
	assert.Equal(t, int64(2048), resp.Size)

	events := drain(ch, time.Second)
	require.NotEmpty(t, events)
	assert.Equal(t, 100, events[len(events)-1].Percentage)
}

func TestUploadFileRequiresSessionHeader(t *testing.T) {
	InitUpload(config.UploadConfig{Dir: t.TempDir(), MaxSizeBytes: 1 << 20})

	c, rec := uploadRequest(t, "", "price-list.csv", 128)
	require.NoError(t, UploadFile(c))
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestUploadFileEnforcesSizeCap(t *testing.T) {
	dir := t.TempDir()
	InitUpload(config.UploadConfig{Dir: dir, MaxSizeBytes: 512})

	c, rec := uploadRequest(t, "session-u", "big.bin", 1024)
	require.NoError(t, UploadFile(c))
	requireStatus(t, rec, http.StatusRequestEntityTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected upload must not be stored")
}
