// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "description": "Roles other than \"user\" can be requested only while SIGNUP_ALLOW_PRIVILEGED_ROLES is enabled; otherwise the request is rejected with 403.",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.signupRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/auth/signin": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.signinRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userInfoResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/auth/user": {
            "get": {
                "security": [{"CookieAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userInfoResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/auth/username": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["auth"],
                "summary": "Current username",
                "responses": {"200": {"description": "OK", "schema": {"type": "string"}}}
            }
        },
        "/api/auth/signout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign out",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}}}
            }
        },
        "/api/admin/users/{userId}/roles": {
            "put": {
                "security": [{"CookieAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Assign roles",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "userId", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.assignRolesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userInfoResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/public/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "List categories",
                "parameters": [
                    {"type": "integer", "name": "pageNumber", "in": "query"},
                    {"type": "integer", "name": "pageSize", "in": "query"},
                    {"type": "string", "name": "sortBy", "in": "query"},
                    {"type": "string", "name": "sortOrder", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/public/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "parameters": [
                    {"type": "integer", "name": "pageNumber", "in": "query"},
                    {"type": "integer", "name": "pageSize", "in": "query"},
                    {"type": "string", "name": "sortBy", "in": "query"},
                    {"type": "string", "name": "sortOrder", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/carts/users/cart": {
            "get": {
                "security": [{"CookieAuth": []}],
                "produces": ["application/json"],
                "tags": ["carts"],
                "summary": "Get the caller's cart",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.cartResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/health": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/health/ready": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        }
    },
    "definitions": {
        "handler.signupRequest": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "username": {"type": "string", "maxLength": 20, "minLength": 3},
                "email": {"type": "string", "maxLength": 50},
                "password": {"type": "string", "maxLength": 40},
                "role": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.signinRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.assignRolesRequest": {
            "type": "object",
            "properties": {"roles": {"type": "array", "items": {"type": "string"}}}
        },
        "handler.userInfoResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.messageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "status": {"type": "boolean"}}
        },
        "handler.cartProductResponse": {
            "type": "object",
            "properties": {
                "productId": {"type": "integer"},
                "productName": {"type": "string"},
                "image": {"type": "string"},
                "quantity": {"type": "integer"},
                "price": {"type": "number"},
                "discount": {"type": "number"},
                "specialPrice": {"type": "number"}
            }
        },
        "handler.cartResponse": {
            "type": "object",
            "properties": {
                "cartId": {"type": "integer"},
                "totalPrice": {"type": "number"},
                "products": {"type": "array", "items": {"$ref": "#/definitions/handler.cartProductResponse"}}
            }
        }
    },
    "securityDefinitions": {
        "CookieAuth": {"type": "apiKey", "name": "ecomJwt", "in": "cookie"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "E-commerce backend: cookie-based JWT auth, role-based access, catalog and carts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
