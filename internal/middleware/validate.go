package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// BindJSON decodes and validates a request body into dst, replying with a
// 400 validation error response and returning false if either step fails.
// Handlers call this instead of gin's c.ShouldBindJSON directly so every
// route reports validation failures the same shape.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindWith(dst, binding.JSON); err != nil {
		c.JSON(400, gin.H{"status": "error", "code": "validation_error", "message": err.Error()})
		c.Abort()
		return false
	}
	if err := validate.Struct(dst); err != nil {
		c.JSON(400, gin.H{"status": "error", "code": "validation_error", "message": err.Error()})
		c.Abort()
		return false
	}
	return true
}
