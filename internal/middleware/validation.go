package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lecturealert/internal/app/models/dto"
)

// BindJSON decodes the request body into obj. Malformed bodies get a 400
// and false; field rules are checked later by the session provider.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid request format").
			WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return false
	}
	return true
}
