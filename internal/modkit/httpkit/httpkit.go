// Package httpkit is the handler surface modules build routes with
// modules import this instead of internal/platform/net/http
package httpkit

import (
	"net/http"
	"strings"

	phttp "devquest/internal/platform/net/http"
)

type (
	// Router is the platform mount seam
	Router = phttp.Router

	// Envelope is the response body, referenced by swagger annotations
	Envelope = phttp.Envelope

	// Response lets a handler pick its own status
	Response = phttp.Response
)

// Created wraps data in a 201
func Created(data any) Response { return phttp.Created(data) }

// NoContent is a bodiless 204
func NoContent() Response { return phttp.NoContent() }

// Get mounts a body-less GET handler
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.Call(h))
}

// PostJSON mounts a POST handler that receives a decoded, validated T
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSON(h))
}

// MountAPI opens /api/{version} on r with mw applied, then calls mount
func MountAPI(r Router, version string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route("/api/"+strings.Trim(version, "/"), func(api Router) {
		if len(mw) > 0 {
			api.Use(mw...)
		}
		mount(api)
	})
}
