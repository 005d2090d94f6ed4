package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
)

// stubSource is a fixed SnapshotSource for handler tests.
type stubSource struct {
	snapshot domain.Snapshot
}

func (s *stubSource) Snapshot() domain.Snapshot   { return s.snapshot }
func (s *stubSource) SavedNetworkCount() int      { return s.snapshot.SavedNetworks }
func (s *stubSource) SavedSubscriptionCount() int { return s.snapshot.SavedSubscriptions }

func testSnapshot() domain.Snapshot {
	connected := domain.EntryInfo{
		Key:            "home,PSK",
		Title:          "home",
		Security:       domain.SecurityPSK,
		Level:          3,
		ConnectedState: domain.StateConnected,
		Saved:          true,
	}
	return domain.Snapshot{
		Connected: &connected,
		Visible: []domain.EntryInfo{
			{Key: "cafe,PSK", Title: "cafe", Security: domain.SecurityPSK, Level: 2,
				ConnectedState: domain.StateDisconnected},
		},
		SavedNetworks:      3,
		SavedSubscriptions: 1,
	}
}

func TestHandleEntries(t *testing.T) {
	server := NewServer(":0", &stubSource{snapshot: testSnapshot()}, nil)
	ts := httptest.NewServer(server.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/entries")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap domain.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	require.NotNil(t, snap.Connected)
	assert.Equal(t, "home,PSK", snap.Connected.Key)
	require.Len(t, snap.Visible, 1)
	assert.Equal(t, "cafe,PSK", snap.Visible[0].Key)
}

func TestHandleCounts(t *testing.T) {
	server := NewServer(":0", &stubSource{snapshot: testSnapshot()}, nil)
	ts := httptest.NewServer(server.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/counts")
	require.NoError(t, err)
	defer resp.Body.Close()

	var counts map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&counts))
	assert.Equal(t, 3, counts["saved_networks"])
	assert.Equal(t, 1, counts["saved_subscriptions"])
}

func TestHandleEntries_MethodNotAllowed(t *testing.T) {
	server := NewServer(":0", &stubSource{snapshot: testSnapshot()}, nil)
	ts := httptest.NewServer(server.routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/entries", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

// memConfigStore is an in-memory ports.ConfigStore for backup endpoint tests.
type memConfigStore struct {
	standard  []domain.Config
	passpoint []domain.PasspointConfig
}

func (m *memConfigStore) SaveStandardConfigs(configs []domain.Config) error {
	m.standard = configs
	return nil
}

func (m *memConfigStore) SavePasspointConfigs(configs []domain.PasspointConfig) error {
	m.passpoint = configs
	return nil
}

func (m *memConfigStore) LoadStandardConfigs() ([]domain.Config, error) { return m.standard, nil }
func (m *memConfigStore) LoadPasspointConfigs() ([]domain.PasspointConfig, error) {
	return m.passpoint, nil
}

func TestBackupNetworks_ExportImportRoundTrip(t *testing.T) {
	store := &memConfigStore{standard: []domain.Config{
		{NetworkID: 1, SSID: "home", Security: domain.SecurityPSK, Proxy: domain.ProxyNone},
	}}
	server := NewServer(":0", &stubSource{snapshot: testSnapshot()}, store)
	ts := httptest.NewServer(server.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/backup/networks")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml", resp.Header.Get("Content-Type"))
	doc, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	// Importing the exported document restores the same set.
	store.standard = nil
	resp, err = http.Post(ts.URL+"/api/backup/networks", "application/xml", bytes.NewReader(doc))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result["imported"])
	require.Len(t, store.standard, 1)
	assert.Equal(t, "home", store.standard[0].SSID)
}

func TestBackupNetworks_MalformedImportRejected(t *testing.T) {
	store := &memConfigStore{}
	server := NewServer(":0", &stubSource{snapshot: testSnapshot()}, store)
	ts := httptest.NewServer(server.routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/backup/networks", "application/xml",
		strings.NewReader("<NotABackup/>"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, store.standard)
}

func TestBackupSubscriptions_ExportImportRoundTrip(t *testing.T) {
	store := &memConfigStore{passpoint: []domain.PasspointConfig{
		{FQDN: "hotspot.example.com", FriendlyName: "Example Hotspot"},
	}}
	server := NewServer(":0", &stubSource{snapshot: testSnapshot()}, store)
	ts := httptest.NewServer(server.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/backup/subscriptions")
	require.NoError(t, err)
	doc, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	store.passpoint = nil
	resp, err = http.Post(ts.URL+"/api/backup/subscriptions", "application/xml", bytes.NewReader(doc))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, store.passpoint, 1)
	assert.Equal(t, "hotspot.example.com", store.passpoint[0].FQDN)
}

func TestBackupEndpointsDisabledWithoutStore(t *testing.T) {
	server := NewServer(":0", &stubSource{snapshot: testSnapshot()}, nil)
	ts := httptest.NewServer(server.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/backup/networks")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpointWired(t *testing.T) {
	server := NewServer(":0", &stubSource{snapshot: testSnapshot()}, nil)
	ts := httptest.NewServer(server.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
