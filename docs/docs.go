// Package docs registers an OpenAPI document with swaggo's runtime spec
// registry, the same way `swag init` would wire a generated one. Swagger UI
// reads it back through ginSwagger.WrapHandler. The registered document
// carries only the info block, host and base path; its paths object is
// empty. The full hand-maintained document is swagger.json/swagger.yaml,
// served as files by handlers.DocsHandler.
package docs

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/swaggo/swag"
)

var doc = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {}
}`

// SwaggerInfo holds the exported Swagger spec metadata, populated at
// build time by swag-style tooling or, as here, by hand.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Code Runner API",
	Description:      "Runs untrusted code in single-use Docker containers and returns its JSON output.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  doc,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

type swaggerSpec struct {
	*swag.Spec
}

// ReadDoc renders the template above into the final spec document.
func (s *swaggerSpec) ReadDoc() string {
	t, err := template.New("swagger_info").Funcs(template.FuncMap{
		"marshal": func(v interface{}) string {
			encoded, _ := json.Marshal(v)
			return string(encoded)
		},
		"escape": func(v interface{}) string {
			return strings.ReplaceAll(v.(string), `"`, `\"`)
		},
	}).Parse(s.SwaggerTemplate)
	if err != nil {
		return s.SwaggerTemplate
	}

	var tpl bytes.Buffer
	if err := t.Execute(&tpl, s.Spec); err != nil {
		return s.SwaggerTemplate
	}

	return tpl.String()
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), &swaggerSpec{SwaggerInfo})
}
