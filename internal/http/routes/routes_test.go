package routes

import (
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_StubsBuildOpenAPI(t *testing.T) {
	_, api := humatest.New(t, NewHumaConfig("test", "http://127.0.0.1:9124"))
	Register(api, StubHandlers())

	oapi := api.OpenAPI()
	assert.Equal(t, "saveconnectd API", oapi.Info.Title)
	assert.Equal(t, "test", oapi.Info.Version)
	require.Len(t, oapi.Servers, 1)
	assert.Equal(t, "http://127.0.0.1:9124", oapi.Servers[0].URL)

	paths := []string{
		"/api/v1/health",
		"/api/v1/version",
		"/api/v1/accessories",
		"/api/v1/accessories/{id}",
		"/api/v1/accessories/{id}/switches/{switch}",
		"/api/v1/accessories/{id}/poll",
		"/api/v1/logging/level",
	}
	for _, p := range paths {
		assert.Contains(t, oapi.Paths, p)
	}

	sw := oapi.Paths["/api/v1/accessories/{id}/switches/{switch}"].Put
	require.NotNil(t, sw)
	assert.Equal(t, "setSwitch", sw.OperationID)
	del := oapi.Paths["/api/v1/accessories/{id}"].Delete
	require.NotNil(t, del)
	assert.Equal(t, http.StatusNoContent, del.DefaultStatus)
}

func TestRegister_LiveHandlers(t *testing.T) {
	_, api := humatest.New(t, NewHumaConfig("test", ""))
	Register(api, StubHandlers())

	resp := api.Get("/api/v1/health")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"ok"`)

	// Switch names outside the enum are rejected before the handler runs.
	resp = api.Put("/api/v1/accessories/x/switches/turbo", map[string]any{"on": true})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestNewHumaConfig_NoBaseURL(t *testing.T) {
	cfg := NewHumaConfig("1.0.0", "")
	assert.Empty(t, cfg.Servers)
	assert.Nil(t, cfg.CreateHooks)
	assert.Len(t, cfg.Tags, 2)
}
