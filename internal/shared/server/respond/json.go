package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON renders payload as JSON under the given status code.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK is shorthand for a 200 JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}
