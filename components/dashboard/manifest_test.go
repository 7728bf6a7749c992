package dashboard

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
version: 1
name: lab
categories:
  - key: CSPMExclusiveDashboard
    label: CSPM
    tab: "1"
    schema:
      type: object
      properties:
        connected:
          type: number
          minimum: 0
    widgets:
      - name: cloud Accounts
        payload:
          connected: 3
          notConnected: 1
  - key: TicketDashboard
    label: Ticket
    widgets: []
`

func TestDecodeManifest(t *testing.T) {
	doc, err := DecodeManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)
	require.Len(t, doc.Categories, 2)

	cspm := doc.Categories[0]
	assert.Equal(t, CategoryCSPM, cspm.Key)
	assert.Equal(t, "1", cspm.Tab)
	require.Len(t, cspm.Widgets, 1)
	assert.Equal(t, "cloud Accounts", cspm.Widgets[0].Name)
	assert.Equal(t, 3, cspm.Widgets[0].Entry["connected"])

	state := doc.State()
	assert.Equal(t, []CategoryKey{CategoryCSPM, CategoryTicket}, state.Categories())
	assert.Equal(t, ConnectivityPayload{Connected: 3, NotConnected: 1}, DecodePayload(CategoryCSPM, cspm.Widgets[0].Entry))
}

func TestDecodeManifestRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"unknown field":     "version: 1\ncategories:\n  - key: A\n    colour: red\n",
		"bad version":       "version: 9\ncategories:\n  - key: A\n",
		"no categories":     "version: 1\n",
		"missing key":       "version: 1\ncategories:\n  - label: A\n",
		"duplicate key":     "version: 1\ncategories:\n  - key: A\n  - key: A\n",
		"duplicate widgets": "version: 1\ncategories:\n  - key: A\n    widgets:\n      - name: w\n      - name: w\n",
		"empty":             "",
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeManifest(strings.NewReader(payload))
			require.Error(t, err)
		})
	}
}

func TestRegistryLoadManifestDocument(t *testing.T) {
	doc, err := DecodeManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)
	registry := NewEmptyRegistry()
	require.NoError(t, registry.LoadManifestDocument(doc))

	defs := registry.Categories()
	require.Len(t, defs, 2)
	assert.Equal(t, "CSPM", defs[0].Label)
	assert.Equal(t, "2", defs[1].Tab, "missing tabs default to the position")
	assert.NotEmpty(t, defs[0].Schema)
}

func TestManifestRoundTrip(t *testing.T) {
	state, err := DefaultState().AddWidget(CategoryTicket, "open tickets", WidgetEntry{"description": "queue"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeManifest(&buf, NewManifest(state, NewRegistry())))
	decoded, err := DecodeManifest(&buf)
	require.NoError(t, err)

	assert.True(t, decoded.State().Equal(state))
	assert.Equal(t, "Image", decoded.Categories[2].Label)
}

func TestReadAndWriteManifestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, WriteManifest(path, DefaultManifest()))

	registry := NewEmptyRegistry()
	doc, err := registry.LoadManifestFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)
	assert.True(t, doc.State().Equal(DefaultState()))
	assert.Len(t, registry.Categories(), 4)

	_, err = ReadManifest(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
