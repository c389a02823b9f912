// Package openapi 注册 Swagger 文档，供 /swagger/*any 使用
package openapi

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/comments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["评论"],
                "summary": "发表评论",
                "parameters": [
                    {"description": "评论内容", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CommentCreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "发表成功", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "内容无效", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "电影或用户不存在", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "重复内容", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "发表过于频繁", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/comments/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["评论"],
                "summary": "更新评论",
                "parameters": [
                    {"type": "integer", "description": "评论ID", "name": "id", "in": "path", "required": true},
                    {"description": "可选字段", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CommentUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "更新成功", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "无权限", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "评论不存在", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["评论"],
                "summary": "删除评论（顶层评论连同回复一起删除）",
                "parameters": [
                    {"type": "integer", "description": "评论ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "删除成功", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "无权限", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "评论不存在", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/comments/{id}/replies": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["评论"],
                "summary": "回复评论",
                "parameters": [
                    {"type": "integer", "description": "父评论ID", "name": "id", "in": "path", "required": true},
                    {"description": "回复内容", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CommentReplyRequest"}}
                ],
                "responses": {
                    "201": {"description": "回复成功", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "内容无效或不能回复回复", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "父评论不存在", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/comments/{id}/vote": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["评论"],
                "summary": "评论投票",
                "parameters": [
                    {"type": "integer", "description": "评论ID", "name": "id", "in": "path", "required": true},
                    {"description": "投票类型", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CommentVoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "投票成功", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "不能给自己投票", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "评论不存在", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/comments/movie/{movie_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["评论"],
                "summary": "获取电影评论",
                "parameters": [
                    {"type": "integer", "description": "电影ID", "name": "movie_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "获取成功", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/comments/movie/{movie_id}/count": {
            "get": {
                "produces": ["application/json"],
                "tags": ["评论"],
                "summary": "获取电影评论数",
                "parameters": [
                    {"type": "integer", "description": "电影ID", "name": "movie_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "获取成功", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/comments/recent": {
            "get": {
                "produces": ["application/json"],
                "tags": ["评论"],
                "summary": "全站最新评论",
                "parameters": [
                    {"type": "integer", "default": 10, "description": "数量（1-50）", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "获取成功", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/comments/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["搜索"],
                "summary": "搜索评论",
                "parameters": [
                    {"type": "string", "description": "搜索关键词", "name": "q", "in": "query"},
                    {"type": "integer", "description": "电影ID", "name": "movie_id", "in": "query"},
                    {"type": "integer", "default": 1, "description": "页码", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "description": "每页数量", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "搜索成功", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "请求参数无效", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.CommentCreateRequest": {
            "type": "object",
            "required": ["movie_id"],
            "properties": {
                "movie_id": {"type": "integer"},
                "content": {"type": "string"},
                "is_spoiler": {"type": "boolean"}
            }
        },
        "dto.CommentReplyRequest": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "is_spoiler": {"type": "boolean"}
            }
        },
        "dto.CommentUpdateRequest": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "is_spoiler": {"type": "boolean"}
            }
        },
        "dto.CommentVoteRequest": {
            "type": "object",
            "required": ["vote_type"],
            "properties": {
                "vote_type": {"type": "string", "enum": ["UPVOTE", "DOWNVOTE"]}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "response.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/response.ErrorInfo"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "输入格式: Bearer {token}",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "127.0.0.1:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Cinema-Go Comment API",
	Description:      "电影评论服务 API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
