package handlers

import (
	"errors"
	"net/http"

	"callback-registry-api/internal/registry"

	"github.com/gin-gonic/gin"
)

// DispatchCallback serves every request under the registry mount prefix:
// it resolves the path to a registered callback, invokes it and renders
// the resulting response mapping.
func DispatchCallback(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := &registry.Request{
			Path:  c.Request.URL.Path,
			Query: c.Request.URL.Query(),
			Fields: registry.Fields{
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"remoteAddr": c.ClientIP(),
			},
		}

		resp, err := reg.Dispatch(req)
		if err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"error": "Callback not found",
				})
				return
			}
			var cbErr *registry.CallbackError
			if errors.As(err, &cbErr) {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":  "Callback execution failed",
					"key":    cbErr.Key,
					"detail": cbErr.Err.Error(),
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Dispatch failed",
			})
			return
		}

		renderResponse(c, resp)
	}
}

// renderResponse maps the callback's response fields onto the HTTP reply:
// location redirects, content with an optional type, else the mapping as
// JSON.
func renderResponse(c *gin.Context, resp registry.Fields) {
	status := http.StatusOK
	if s, ok := fieldAsInt(resp["status"]); ok && s >= 100 {
		status = s
	}

	if loc, ok := resp["location"].(string); ok && loc != "" {
		if status < 300 || status > 399 {
			status = http.StatusFound
		}
		c.Redirect(status, loc)
		return
	}

	if content, ok := resp["content"].(string); ok {
		contentType := "text/plain; charset=utf-8"
		if t, ok := resp["type"].(string); ok && t != "" {
			contentType = t
		}
		c.Data(status, contentType, []byte(content))
		return
	}

	c.JSON(status, resp)
}

func fieldAsInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}
