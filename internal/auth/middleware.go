package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Sphe667/ViewLab/internal/logger"
	"github.com/Sphe667/ViewLab/internal/pkg/apperror"
	"github.com/Sphe667/ViewLab/internal/pkg/response"
)

var (
	ErrMissingToken = apperror.New(http.StatusUnauthorized, "missing Authorization header")
	ErrBadScheme    = apperror.New(http.StatusUnauthorized, "invalid Authorization header format")
	ErrInvalidToken = apperror.New(http.StatusUnauthorized, "invalid or expired token")
)

// AuthRequired resolves "Authorization: Bearer <token>" to a student id and
// stores it for GetStudentID. Requests without a valid token stop here.
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abort(c, err)
			return
		}

		studentID, err := jwtManager.ParseAndValidate(token)
		if err != nil {
			logger.From(c).Debug("token rejected", zap.Error(err))
			abort(c, ErrInvalidToken)
			return
		}

		c.Set(studentIDKey, studentID)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", ErrBadScheme
	}
	return strings.TrimSpace(token), nil
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}
