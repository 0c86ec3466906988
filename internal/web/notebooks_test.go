package web

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNotebookWorkflow walks the notebooks collection through the full API:
// create two notebooks, attach entries to one, then read everything back.
func TestNotebookWorkflow(t *testing.T) {
	handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/notebooks",
		`{"uuid":"NB1","title":"Daily"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var daily map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &daily))
	assert.Equal(t, float64(1), daily["id"])
	assert.NotNil(t, daily["created"])

	rec = doJSON(t, handler, http.MethodPost, "/api/notebooks",
		`{"uuid":"NB2","title":"Travel","description":"Trips and plans"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, body := range []string{
		`{"uuid":"U1","hash":"H1","text":"Monday.","notebook":1}`,
		`{"uuid":"U2","hash":"H2","text":"Tuesday.","notebook":1}`,
		`{"uuid":"U3","hash":"H3","text":"Flight booked.","notebook":2}`,
	} {
		rec = doJSON(t, handler, http.MethodPost, "/api/entries", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/notebooks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var notebooks []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notebooks))
	require.Len(t, notebooks, 2)
	assert.Equal(t, "Daily", notebooks[0]["title"])
	assert.Equal(t, "Travel", notebooks[1]["title"])

	rec = doJSON(t, handler, http.MethodGet, "/api/entries?notebook=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Flight booked.", entries[0]["text"])
}

// TestNotebookPatch renames a notebook and verifies the edit stamp.
func TestNotebookPatch(t *testing.T) {
	handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/notebooks",
		`{"uuid":"NB1","title":"Scratch"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPatch, "/api/notebooks/1",
		`{"title":"Archive"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Archive", got["title"])
	assert.NotNil(t, got["edited"])
}
