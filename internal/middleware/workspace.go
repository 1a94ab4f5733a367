package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Request headers that steer provider selection.
const (
	HeaderWorkspaceID = "X-Workspace-Id"
	HeaderProvider    = "X-Provider"
	HeaderModel       = "X-Model"
)

// ContextKeyWorkspaceID holds the caller's workspace in the Gin context.
const ContextKeyWorkspaceID = "workspace_id"

// Workspace copies the X-Workspace-Id header into the Gin context.
func Workspace() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader(HeaderWorkspaceID)); id != "" {
			c.Set(ContextKeyWorkspaceID, id)
		}
		c.Next()
	}
}

// GetWorkspaceID returns the workspace set by Workspace, or "".
func GetWorkspaceID(c *gin.Context) string {
	return c.GetString(ContextKeyWorkspaceID)
}
