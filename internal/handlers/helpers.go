package handlers

import "github.com/gin-gonic/gin"

// currentUserEmail reads the authenticated user's email set by the auth
// middleware. Empty outside authenticated routes.
func currentUserEmail(c *gin.Context) string {
	if email, ok := c.Get("email"); ok {
		if str, ok := email.(string); ok {
			return str
		}
	}
	return ""
}
