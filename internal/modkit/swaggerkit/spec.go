package swaggerkit

import "strings"

const errorRef = "#/components/schemas/ErrorResponse"

// decorate lifts the generated swagger 2 doc to the OAS3 shape the UI
// renders and gives every operation the shared 400 and 500 envelopes
func decorate(spec map[string]any, base string) {
	if v, _ := spec["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		spec["openapi"] = "3.0.3"
	}
	delete(spec, "swagger")
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": base}}
	}

	comps := child(spec, "components")
	schemas := child(comps, "schemas")
	if _, ok := schemas["ErrorResponse"]; !ok {
		schemas["ErrorResponse"] = errorSchema()
	}

	defaults := map[string]any{
		"400": errorResponse("Bad Request", 400, "validation", "user_id is a required field"),
		"500": errorResponse("Internal Server Error", 500, "panic", "panic recovered"),
	}
	paths, _ := spec["paths"].(map[string]any)
	for _, p := range paths {
		ops, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, o := range ops {
			op, ok := o.(map[string]any)
			if !ok {
				continue
			}
			resps := child(op, "responses")
			for status, r := range defaults {
				if _, ok := resps[status]; !ok {
					resps[status] = r
				}
			}
		}
	}
}

func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

func errorSchema() map[string]any {
	str := map[string]any{"type": "string"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer"},
			"status":      str,
			"code":        str,
			"error":       str,
			"field":       str,
			"request_id":  str,
		},
		"required": []any{"status_code", "status", "code", "error"},
	}
}

func errorResponse(status string, code int, errCode, msg string) map[string]any {
	return map[string]any{
		"description": status,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": errorRef},
				"example": map[string]any{
					"status_code": code,
					"status":      status,
					"code":        errCode,
					"error":       msg,
				},
			},
		},
	}
}
