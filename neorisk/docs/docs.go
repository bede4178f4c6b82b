// Package docs registers the Swagger description of the NeoRisk API with
// swag so http-swagger can serve it under /swagger/.
//
//	@title			NeoRisk Monitor API
//	@version		1.0
//	@description	Newborn risk screening backend: multi-classifier predictions,
//	@description	consensus, prediction history and model performance.
//	@license.name	MIT
//	@BasePath		/
//	@schemes		http
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/predictions": {
            "post": {
                "tags": ["Predictions"],
                "summary": "Run the selected classifiers and compute the consensus",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/PredictionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Prediction, risk factors and recommendations"},
                    "400": {"description": "Invalid measurements or no model selected", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/api/history": {
            "get": {
                "tags": ["History"],
                "summary": "Filtered, sorted and paginated prediction history",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "from", "type": "string", "format": "date"},
                    {"in": "query", "name": "to", "type": "string", "format": "date"},
                    {"in": "query", "name": "consensus", "type": "string", "enum": ["All", "Healthy", "At Risk"]},
                    {"in": "query", "name": "model", "type": "string", "enum": ["All", "decision_tree", "random_forest", "knn", "naive_bayes"]},
                    {"in": "query", "name": "sortBy", "type": "string", "enum": ["date", "name", "confidence", "age"]},
                    {"in": "query", "name": "sortOrder", "type": "string", "enum": ["asc", "desc"]},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "pageSize", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "One page of history"},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete the whole history",
                "responses": {"200": {"description": "Number of deleted entries"}}
            }
        },
        "/api/history/{id}": {
            "delete": {
                "tags": ["History"],
                "summary": "Delete one history entry",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Deleted"},
                    "404": {"description": "Unknown id", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/api/history/stats": {
            "get": {"tags": ["History"], "summary": "History summary statistics", "responses": {"200": {"description": "Totals, average confidence, most used model and trend"}}}
        },
        "/api/history/export": {
            "get": {
                "tags": ["History"],
                "summary": "Export the filtered history",
                "produces": ["application/json", "text/csv"],
                "parameters": [{"in": "query", "name": "format", "type": "string", "enum": ["json", "csv"]}],
                "responses": {"200": {"description": "Attachment"}}
            }
        },
        "/api/admin/seed": {
            "post": {
                "tags": ["Admin"],
                "summary": "Store generated sample entries",
                "parameters": [{"in": "query", "name": "count", "type": "integer"}],
                "responses": {"201": {"description": "Number of stored entries"}}
            }
        },
        "/api/dashboard": {
            "get": {"tags": ["Dashboard"], "summary": "Dashboard headline statistics", "responses": {"200": {"description": "Dashboard statistics"}}}
        },
        "/api/models": {
            "get": {"tags": ["Models"], "summary": "Catalogue of deployed classifiers", "responses": {"200": {"description": "Model list"}}}
        },
        "/api/models/performance": {
            "get": {
                "tags": ["Models"],
                "summary": "Per-model performance",
                "parameters": [
                    {"in": "query", "name": "sortBy", "type": "string", "enum": ["accuracy", "speed", "f1score", "precision", "recall"]},
                    {"in": "query", "name": "asc", "type": "boolean"}
                ],
                "responses": {"200": {"description": "Model performance list"}}
            }
        },
        "/api/models/comparison": {
            "get": {"tags": ["Models"], "summary": "Leading model per metric", "responses": {"200": {"description": "Comparison"}}}
        },
        "/api/validation-rules": {
            "get": {"tags": ["Predictions"], "summary": "Accepted range of every measurement", "responses": {"200": {"description": "Rules"}}}
        },
        "/healthz": {
            "get": {"tags": ["System"], "summary": "Backend and classifier health", "responses": {"200": {"description": "Serving"}, "503": {"description": "Shutting down"}}}
        }
    },
    "definitions": {
        "Error": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "integer"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "PredictionRequest": {
            "type": "object",
            "properties": {
                "baby_name": {"type": "string"},
                "data": {"type": "object"},
                "models": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "NeoRisk Monitor API",
	Description:      "Newborn risk screening backend: multi-classifier predictions, consensus, prediction history and model performance.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
