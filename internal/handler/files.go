package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	downloadPattern = "0123456789abcdef"
	maxDownloadSize = 1 << 20 // 1 MiB
)

// FilesHandler exercises multipart upload and streamed download.
type FilesHandler struct {
	maxUploadBytes int64
}

func NewFilesHandler(maxUploadBytes int64) *FilesHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &FilesHandler{maxUploadBytes: maxUploadBytes}
}

// Upload handles POST /upload
func (h *FilesHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	file, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		// The multipart reader does not always preserve the typed error.
		if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload_too_large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_field_required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename":     file.Filename,
		"content_type": file.Header.Get("Content-Type"),
		"size_bytes":   file.Size,
	})
}

// Download handles GET /download
func (h *FilesHandler) Download(c *gin.Context) {
	size := 1024
	if sizeStr := c.Query("size"); sizeStr != "" {
		if n, err := strconv.Atoi(sizeStr); err == nil {
			size = n
		}
	}

	if size < 1 {
		size = 1
	}
	if size > maxDownloadSize {
		size = maxDownloadSize
	}

	data := bytes.Repeat([]byte(downloadPattern), size/len(downloadPattern)+1)[:size]

	c.DataFromReader(
		http.StatusOK,
		int64(size),
		"application/octet-stream",
		bytes.NewReader(data),
		map[string]string{
			"Content-Disposition": fmt.Sprintf(`attachment; filename=sample_%d.bin`, size),
		},
	)
}
