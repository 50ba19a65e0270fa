package auth

import "github.com/gin-gonic/gin"

const studentIDKey = "studentID"

// GetStudentID returns the authenticated student's id, or 0 when the request
// carries no verified identity.
func GetStudentID(c *gin.Context) int64 {
	if v, ok := c.Get(studentIDKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
