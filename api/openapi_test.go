package api

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 嵌入的 OpenAPI 文档必须始终可解析且通过校验
func TestOpenAPISpecValid(t *testing.T) {
	data, err := OpenAPIFS.ReadFile("openapi/openapi.yaml")
	require.NoError(t, err)

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	// 核心路由必须都在文档里
	for _, path := range []string{
		"/api/v1/auth/signup",
		"/api/v1/auth/login",
		"/api/v1/auth/logout",
		"/api/v1/auth/me",
		"/api/v1/proposals",
		"/api/v1/proposals/{id}",
		"/api/v1/proposals/{id}/comments",
		"/api/v1/comments/{id}",
		"/api/v1/proposals/report",
		"/api/v1/proposals/report/export",
	} {
		assert.NotNil(t, doc.Paths.Find(path), "path %s missing from spec", path)
	}

	// 动作分发端点同时挂 GET/POST/PUT
	proposals := doc.Paths.Find("/api/v1/proposals")
	require.NotNil(t, proposals)
	assert.NotNil(t, proposals.Get)
	assert.NotNil(t, proposals.Post)
	assert.NotNil(t, proposals.Put)
}
