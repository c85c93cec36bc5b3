package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skin-wellness-navigator/internal/clinical"
	"github.com/skin-wellness-navigator/internal/domain"
	"github.com/skin-wellness-navigator/internal/history"
)

// handleAnalyze accepts a multipart image upload and returns the full
// analysis. Overload is checked before any upload processing.
func (s *Server) handleAnalyze(c *gin.Context) {
	if err := s.deps.Monitor.Check(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":       "Server is currently overloaded. Please try again later.",
			"retry_after": s.deps.Config.Health.RetryAfterSeconds,
		})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}

	if !s.allowedExtension(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type"})
		return
	}

	maxSize := s.deps.Config.Upload.MaxSizeBytes
	if fileHeader.Size > maxSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": domain.NewPayloadTooLargeError(maxSize).Message,
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.internalError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		s.internalError(c, err)
		return
	}
	if int64(len(data)) > maxSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": domain.NewPayloadTooLargeError(maxSize).Message,
		})
		return
	}

	response, err := s.deps.Analyzer.Analyze(c.Request.Context(), data, mimeType(fileHeader.Filename))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image content"})
			return
		}
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) handleHealth(c *gin.Context) {
	snapshot := s.deps.Monitor.Snapshot(c.Request.Context())

	status := "ok"
	code := http.StatusOK
	if snapshot.Overloaded {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    s.deps.Monitor.Uptime().String(),
		"resources": snapshot,
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.deps.Store == nil {
		c.JSON(http.StatusOK, gin.H{"count": 0, "analyses": []any{}})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := s.deps.Store.Recent(c.Request.Context(), limit)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if entries == nil {
		entries = []*history.Entry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(entries),
		"analyses": entries,
	})
}

func (s *Server) handleClinicalSummary(c *gin.Context) {
	c.JSON(http.StatusOK, clinical.Summarize(s.deps.Dataset))
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.deps.Logger.WithError(err).WithField(
		"correlation_id", c.GetString("correlation_id"),
	).Error("Request failed")

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"details": err.Error(),
	})
}

func (s *Server) allowedExtension(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range s.deps.Config.Upload.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func mimeType(filename string) string {
	switch strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".") {
	case "png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
