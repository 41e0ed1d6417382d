package dnd5e

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebaseTransport(t *testing.T) {
	var gotPath string
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer mirror.Close()

	transport, err := newRebaseTransport(mirror.URL+"/srd/", nil)
	require.NoError(t, err)
	client := &http.Client{Transport: transport}

	resp, err := client.Get(DefaultBaseURL + "/equipment/longsword")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "/srd/equipment/longsword", gotPath)
}

func TestRebaseTransport_LeavesOtherHostsAlone(t *testing.T) {
	var hits int
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer other.Close()

	transport, err := newRebaseTransport("http://127.0.0.1:1/api", nil)
	require.NoError(t, err)
	client := &http.Client{Transport: transport}

	resp, err := client.Get(other.URL + "/api/classes")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 1, hits)
}
