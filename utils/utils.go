package utils

import (
	"Wordspy/utils/logger"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger logs information about each request
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		latency := time.Since(startTime)
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			logger.Warningf("[HTTP] %s %s %d %s", c.Request.Method, c.Request.URL.Path, status, latency)
			return
		}
		logger.Debugf("[HTTP] %s %s %d %s", c.Request.Method, c.Request.URL.Path, status, latency)
	}
}

// ErrorHandler handles global errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		for _, err := range c.Errors {
			logger.Criticalf("[HTTP-ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err.Err)
		}
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": c.Errors.Last().Error()})
		}
	}
}
