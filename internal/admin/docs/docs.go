// Package docs holds the hand-authored swagger spec for the admin side-car.
// In the teacher repo this file is generated by `swag init`; here it is
// written by hand since there is no build step invoking swag, but it follows
// the same swaggo/swag registration shape so ginSwagger.WrapHandler finds it.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{.Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "tags": ["system"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/stats": {
            "get": {
                "tags": ["system"],
                "summary": "Server statistics",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger spec metadata, in the shape swag init
// generates and ginSwagger.WrapHandler looks up via swag.Register.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "rootdnsd admin API",
	Description:      "Liveness and statistics endpoints for the recursive resolver.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
