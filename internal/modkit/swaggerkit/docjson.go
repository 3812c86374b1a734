//go:build swag

package swaggerkit

// generated docs register themselves with swag on init
import _ "devquest/internal/services/api/docs"
