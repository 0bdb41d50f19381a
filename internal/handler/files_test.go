package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filesRouter(maxUploadBytes int64) *gin.Engine {
	h := NewFilesHandler(maxUploadBytes)

	router := gin.New()
	router.POST("/upload", h.Upload)
	router.GET("/download", h.Download)
	return router
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUpload(t *testing.T) {
	router := filesRouter(1 << 20)

	body, contentType := multipartBody(t, "sample.txt", "hello upload")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeJSON(t, w.Body)
	assert.Equal(t, "sample.txt", data["filename"])
	assert.Equal(t, float64(len("hello upload")), data["size_bytes"])
}

func TestUploadMissingFileField(t *testing.T) {
	router := filesRouter(1 << 20)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("no multipart"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"file_field_required"}`, w.Body.String())
}

func TestUploadTooLarge(t *testing.T) {
	router := filesRouter(64)

	body, contentType := multipartBody(t, "big.bin", strings.Repeat("x", 4096))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"upload_too_large"}`, w.Body.String())
}

func TestDownloadDefaultSize(t *testing.T) {
	router := filesRouter(1 << 20)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=sample_1024.bin`, w.Header().Get("Content-Disposition"))
	assert.Len(t, w.Body.Bytes(), 1024)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("0123456789abcdef")))
}

func TestDownloadSizeClamping(t *testing.T) {
	router := filesRouter(1 << 20)

	tests := []struct {
		query    string
		expected int
	}{
		{"size=1", 1},
		{"size=0", 1},
		{"size=-5", 1},
		{"size=100", 100},
		{"size=99999999", maxDownloadSize},
		{"size=bogus", 1024},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download?"+tt.query, nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, w.Body.Bytes(), tt.expected, "query %q", tt.query)
	}
}
