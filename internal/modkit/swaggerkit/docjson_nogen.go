//go:build !swag

package swaggerkit

import "github.com/swaggo/swag/v2"

// skeleton stands in for generated docs so the UI still loads
type skeleton struct{}

func (skeleton) ReadDoc() string {
	return `{"swagger":"2.0","info":{"title":"devquest API","version":"0.0.0"},"paths":{}}`
}

func init() { swag.Register(swag.Name, skeleton{}) }
