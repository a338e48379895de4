package main

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/DonovanMods/modlist-installer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCmd_AllReachable(t *testing.T) {
	resetFlags(t)
	srv := modServer(t, map[string][]byte{"/a.zip": {}, "/b.zip": {}})
	saveModlist(t,
		domain.ModDescriptor{Name: "A", DownloadURL: srv.URL + "/a.zip"},
		domain.ModDescriptor{Name: "B", DownloadURL: srv.URL + "/b.zip"},
	)

	out, err := execute(t, validateCmd)
	require.NoError(t, err)

	u, _ := url.Parse(srv.URL)
	assert.Contains(t, out, u.Hostname()+" (2):")
	assert.Contains(t, out, "All 2 download links are reachable.")
}

func TestValidateCmd_ReportsFailures(t *testing.T) {
	resetFlags(t)
	srv := modServer(t, map[string][]byte{"/a.zip": {}})
	saveModlist(t,
		domain.ModDescriptor{Name: "A", DownloadURL: srv.URL + "/a.zip"},
		domain.ModDescriptor{Name: "Missing", DownloadURL: srv.URL + "/gone.zip"},
		domain.ModDescriptor{Name: "Blank"},
	)

	out, err := execute(t, validateCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 download links failed validation")
	assert.Contains(t, out, "Failed (2):")
	assert.Contains(t, out, "Missing: HTTP 404")
	assert.Contains(t, out, "Blank: No download URL")
}

func TestValidateCmd_JSON(t *testing.T) {
	resetFlags(t)
	jsonOutput = true
	srv := modServer(t, map[string][]byte{"/a.zip": {}})
	saveModlist(t,
		domain.ModDescriptor{Name: "A", DownloadURL: srv.URL + "/a.zip"},
		domain.ModDescriptor{Name: "Blank"},
	)

	out, err := execute(t, validateCmd)
	require.NoError(t, err)

	var got validateJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	u, _ := url.Parse(srv.URL)
	assert.Equal(t, []string{"A"}, got.Other[u.Hostname()])
	require.Len(t, got.Failed, 1)
	assert.Equal(t, "Blank", got.Failed[0].Name)
}
