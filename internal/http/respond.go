package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adilzhan/taskgate/internal/log"
)

// ServiceResponse is the envelope every endpoint answers with.
type ServiceResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ResponseObject any    `json:"responseObject"`
	StatusCode     int    `json:"statusCode"`
}

func respond(c *gin.Context, code int, message string, obj any) {
	c.JSON(code, ServiceResponse{
		Success:        code < 400,
		Message:        message,
		ResponseObject: obj,
		StatusCode:     code,
	})
}

func fail(c *gin.Context, code int, message string) {
	respond(c, code, message, nil)
}

// failInternal logs the underlying error server-side and answers with
// a generic message; error detail never reaches the caller.
func failInternal(c *gin.Context, op string, err error) {
	log.WithDD(c.Request.Context(), log.L()).Error(op, zap.Error(err))
	fail(c, 500, "Something went wrong")
}
