package handlers

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/livaro/home/backend/api/internal/record"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON built from the kinds
func RegisterSwagger(r gin.IRouter, kinds []record.Kind) {
	doc := OpenAPI(kinds)
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})
	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, doc)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>LIVARO Home API - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// OpenAPI describes the create/list endpoints of every kind plus the
// service endpoints.
func OpenAPI(kinds []record.Kind) gin.H {
	paths := gin.H{
		"/":       gin.H{"get": gin.H{"summary": "Service banner", "responses": gin.H{"200": gin.H{"description": "name and status"}}}},
		"/health": gin.H{"get": gin.H{"summary": "Liveness check", "responses": gin.H{"200": gin.H{"description": "healthy"}}}},
		"/ready":  gin.H{"get": gin.H{"summary": "Readiness check", "responses": gin.H{"200": gin.H{"description": "ready"}, "503": gin.H{"description": "not ready"}}}},
		"/test":   gin.H{"get": gin.H{"summary": "Database diagnostic", "responses": gin.H{"200": gin.H{"description": "status report"}}}},
	}
	schemas := gin.H{}
	for _, k := range kinds {
		schemas[k.Name] = schemaOf(k.New())
		ref := gin.H{"$ref": "#/components/schemas/" + k.Name}

		params := []gin.H{{
			"name": "limit", "in": "query",
			"schema": gin.H{"type": "integer", "minimum": 1, "default": 50},
		}}
		for _, p := range k.Params {
			s := gin.H{"type": "string"}
			if p.Email {
				s["format"] = "email"
			}
			params = append(params, gin.H{"name": p.Name, "in": "query", "schema": s})
		}

		paths["/"+k.Path] = gin.H{
			"post": gin.H{
				"summary":     "Create " + k.Name,
				"requestBody": gin.H{"required": true, "content": gin.H{"application/json": gin.H{"schema": ref}}},
				"responses": gin.H{
					"200": gin.H{"description": k.Message, "content": gin.H{"application/json": gin.H{"schema": gin.H{
						"type":       "object",
						"properties": gin.H{"id": gin.H{"type": "string"}, "message": gin.H{"type": "string"}},
					}}}},
					"422": gin.H{"description": "validation error"},
					"500": gin.H{"description": "storage error"},
				},
			},
			"get": gin.H{
				"summary":    "List " + k.Name,
				"parameters": params,
				"responses": gin.H{
					"200": gin.H{"description": "stored documents", "content": gin.H{"application/json": gin.H{"schema": gin.H{"type": "array", "items": gin.H{"type": "object"}}}}},
					"422": gin.H{"description": "invalid query parameter"},
					"500": gin.H{"description": "storage error"},
				},
			},
		}
	}
	return gin.H{
		"openapi":    "3.0.0",
		"info":       gin.H{"title": "LIVARO Home API", "version": "1.0.0"},
		"paths":      paths,
		"components": gin.H{"schemas": schemas},
	}
}

var timeType = reflect.TypeOf(record.Timestamp{})

// schemaOf derives an object schema from a record's json and binding tags.
func schemaOf(rec record.Record) gin.H {
	t := reflect.TypeOf(rec)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	props := gin.H{}
	var required []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		ft := f.Type
		nullable := ft.Kind() == reflect.Ptr
		if nullable {
			ft = ft.Elem()
		}
		p := gin.H{}
		switch {
		case ft == timeType:
			p["type"], p["format"] = "string", "date-time"
		case ft.Kind() == reflect.String:
			p["type"] = "string"
		case ft.Kind() == reflect.Bool:
			p["type"] = "boolean"
		case ft.Kind() == reflect.Float64:
			p["type"] = "number"
		case ft.Kind() == reflect.Slice:
			p["type"], p["items"] = "array", gin.H{"type": "string"}
		}
		if nullable {
			p["nullable"] = true
		}
		for _, rule := range strings.Split(f.Tag.Get("binding"), ",") {
			switch rule {
			case "required":
				required = append(required, name)
			case "email":
				p["format"] = "email"
			case "gte=0":
				p["minimum"] = 0
			}
		}
		props[name] = p
	}
	s := gin.H{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}
