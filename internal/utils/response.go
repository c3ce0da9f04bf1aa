package utils

import "github.com/gin-gonic/gin"

// JSON writes a success payload merged with {"success": true}. The storefront
// webapp depends on this exact envelope, so handlers never deviate from it.
func JSON(c *gin.Context, code int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(code, body)
}

// Error writes the failure envelope {"success": false, "error": message}.
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}
