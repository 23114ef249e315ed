package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mrmbilling/royalty-ledger/docs"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec represents an OpenAPI 3.0 spec structure
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

const (
	swagger2RefPrefix = "#/definitions/"
	openAPI3RefPrefix = "#/components/schemas/"
)

// rewriteRefs copies a swag schema tree, pointing $ref at components/schemas
func rewriteRefs(node interface{}) interface{} {
	switch v := node.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				out[key] = openAPI3RefPrefix + strings.TrimPrefix(ref, swagger2RefPrefix)
				continue
			}
			out[key] = rewriteRefs(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = rewriteRefs(item)
		}
		return out
	default:
		return node
	}
}

// paramSchemaFields are the Swagger 2.0 parameter keys that move under "schema" in OpenAPI 3
var paramSchemaFields = []string{"type", "format", "enum", "default", "minimum", "maximum", "items"}

func convertParameter(param map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			out[field] = val
		}
	}
	schema := make(map[string]interface{})
	for _, field := range paramSchemaFields {
		if val, ok := param[field]; ok {
			schema[field] = rewriteRefs(val)
		}
	}
	if len(schema) > 0 {
		out["schema"] = schema
	}
	return out
}

// formDataSchema folds formData parameters into one multipart object schema.
// File fields become binary strings.
func formDataSchema(params []map[string]interface{}) map[string]interface{} {
	props := make(map[string]interface{})
	var required []interface{}
	for _, p := range params {
		name, _ := p["name"].(string)
		prop := map[string]interface{}{"type": p["type"]}
		if p["type"] == "file" {
			prop = map[string]interface{}{"type": "string", "format": "binary"}
		}
		if desc, ok := p["description"]; ok {
			prop["description"] = desc
		}
		props[name] = prop
		if req, _ := p["required"].(bool); req {
			required = append(required, name)
		}
	}
	schema := map[string]interface{}{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func firstString(v interface{}, fallback string) string {
	if list, ok := v.([]interface{}); ok && len(list) > 0 {
		if s, ok := list[0].(string); ok {
			return s
		}
	}
	return fallback
}

// convertOperation moves body and formData parameters into requestBody and
// wraps response schemas in the media type the operation produces.
func convertOperation(op map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(op))
	for key, value := range op {
		switch key {
		case "parameters", "responses", "consumes", "produces":
		default:
			out[key] = rewriteRefs(value)
		}
	}

	var params []interface{}
	var formData []map[string]interface{}
	rawParams, _ := op["parameters"].([]interface{})
	for _, raw := range rawParams {
		param, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		switch param["in"] {
		case "body":
			required, _ := param["required"].(bool)
			out["requestBody"] = map[string]interface{}{
				"required": required,
				"content": map[string]interface{}{
					firstString(op["consumes"], echo.MIMEApplicationJSON): map[string]interface{}{
						"schema": rewriteRefs(param["schema"]),
					},
				},
			}
		case "formData":
			formData = append(formData, param)
		default:
			params = append(params, convertParameter(param))
		}
	}
	if len(formData) > 0 {
		out["requestBody"] = map[string]interface{}{
			"required": true,
			"content": map[string]interface{}{
				echo.MIMEMultipartForm: map[string]interface{}{"schema": formDataSchema(formData)},
			},
		}
	}
	if len(params) > 0 {
		out["parameters"] = params
	}

	produces := firstString(op["produces"], echo.MIMEApplicationJSON)
	responses := make(map[string]interface{})
	rawResponses, _ := op["responses"].(map[string]interface{})
	for code, raw := range rawResponses {
		resp, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		converted := map[string]interface{}{"description": resp["description"]}
		if schema, ok := resp["schema"]; ok {
			mediaType := produces
			if !strings.HasPrefix(code, "2") {
				mediaType = "application/problem+json"
			}
			converted["content"] = map[string]interface{}{
				mediaType: map[string]interface{}{"schema": rewriteRefs(schema)},
			}
		}
		responses[code] = converted
	}
	out["responses"] = responses
	return out
}

func convertPaths(paths map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(paths))
	for path, raw := range paths {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		methods := make(map[string]interface{}, len(item))
		for method, op := range item {
			if opMap, ok := op.(map[string]interface{}); ok {
				methods[method] = convertOperation(opMap)
			} else {
				methods[method] = op
			}
		}
		out[path] = methods
	}
	return out
}

// OpenAPI3Handler serves the swag output converted to OpenAPI 3.0, listing servers as the API bases
func OpenAPI3Handler(servers []Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return NewInternalError(c, "Failed to read swagger doc")
		}

		var swagger2 map[string]interface{}
		if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
			return NewInternalError(c, "Failed to parse swagger doc")
		}

		info, _ := swagger2["info"].(map[string]interface{})
		paths, _ := swagger2["paths"].(map[string]interface{})

		components := make(map[string]interface{})
		if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
			components["securitySchemes"] = secDefs
		}
		if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
			components["schemas"] = rewriteRefs(definitions)
		}

		return c.JSON(http.StatusOK, OpenAPI3Spec{
			OpenAPI:    "3.0.3",
			Info:       info,
			Servers:    servers,
			Paths:      convertPaths(paths),
			Components: components,
		})
	}
}

// APIServers lists the local server and, when set, the public one
func APIServers(port, publicURL string) []Server {
	servers := []Server{{URL: "http://localhost:" + port + "/api/v1", Description: "Local Development"}}
	if publicURL != "" {
		servers = append(servers, Server{URL: publicURL + "/api/v1", Description: "Production"})
	}
	return servers
}
