// Package logger builds the process logger and carries a request-scoped
// child of it through gin handlers.
package logger

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ginKey = "logger"

// New returns a JSON production logger, or a console development logger.
func New(isProduction bool) (*zap.Logger, error) {
	if isProduction {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Set stores l on the gin context for later handlers.
func Set(c *gin.Context, l *zap.Logger) {
	c.Set(ginKey, l)
}

// From returns the request logger, or a no-op logger when none was set.
func From(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(ginKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}
