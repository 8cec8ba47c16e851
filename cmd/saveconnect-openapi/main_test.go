package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGenerate_JSON(t *testing.T) {
	data, err := generate("http://ventilation.local:9124", false)
	require.NoError(t, err)

	var doc struct {
		Info struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "saveconnectd API", doc.Info.Title)
	assert.Equal(t, version, doc.Info.Version)
	require.Len(t, doc.Servers, 1)
	assert.Equal(t, "http://ventilation.local:9124", doc.Servers[0].URL)

	assert.Contains(t, doc.Paths, "/api/v1/accessories")
	assert.Contains(t, doc.Paths["/api/v1/accessories/{id}/switches/{switch}"], "put")
	assert.Contains(t, doc.Paths["/api/v1/accessories/{id}/poll"], "post")
	assert.Contains(t, doc.Paths["/api/v1/accessories/{id}"], "delete")
	assert.Contains(t, doc.Paths["/api/v1/logging/level"], "put")
	assert.NotContains(t, doc.Paths, "/healthz", "hidden routes stay out of the document")
}

func TestGenerate_YAML(t *testing.T) {
	data, err := generate("", true)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Contains(t, doc, "openapi")
	assert.Contains(t, doc, "paths")
}
