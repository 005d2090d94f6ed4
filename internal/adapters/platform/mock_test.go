package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
	"github.com/lcalzada-xor/wifitrack/internal/core/ports"
)

var _ ports.NetworkPlatform = (*Simulator)(nil)

func TestSimulator_ScanResultsCoverEveryAP(t *testing.T) {
	sim := NewSimulator(42, nil)

	scans := sim.ScanResults()
	require.Len(t, scans, len(simSSIDs))
	for _, o := range scans {
		assert.True(t, o.Valid(), "observation for %q must be valid", o.SSID)
	}
}

func TestSimulator_Reproducible(t *testing.T) {
	a := NewSimulator(7, nil)
	b := NewSimulator(7, nil)

	sa := a.ScanResults()
	sb := b.ScanResults()
	require.Equal(t, len(sa), len(sb))
	for i := range sa {
		assert.Equal(t, sa[i].BSSID, sb[i].BSSID)
		assert.Equal(t, sa[i].RSSI, sb[i].RSSI)
	}
}

func TestSimulator_WifiDisabledSilencesRadio(t *testing.T) {
	sim := NewSimulator(42, nil)
	sim.Connect(1, -52)
	require.NotNil(t, sim.ConnectionInfo())

	sim.SetWifiEnabled(false)

	assert.False(t, sim.WifiEnabled())
	assert.Empty(t, sim.ScanResults())
	assert.Nil(t, sim.ConnectionInfo())
	assert.Equal(t, domain.NetworkStateDisconnected, sim.ActiveNetworkState())
}

func TestSimulator_ConnectOnlyToSavedNetworks(t *testing.T) {
	sim := NewSimulator(42, nil)

	sim.Connect(99, -52)
	assert.Nil(t, sim.ConnectionInfo())

	sim.Connect(1, -52)
	info := sim.ConnectionInfo()
	require.NotNil(t, info)
	assert.Equal(t, "HomeNetwork", info.SSID)
	assert.Equal(t, domain.NetworkStateConnected, sim.ActiveNetworkState())
	assert.NotEmpty(t, sim.LinkProperties().Addresses)

	sim.Disconnect()
	assert.Nil(t, sim.ConnectionInfo())
	assert.Empty(t, sim.LinkProperties().Addresses)
}

func TestSimulator_PasspointMatching(t *testing.T) {
	sim := NewSimulator(42, nil)

	matches := sim.MatchingPasspointConfigs(sim.ScanResults())
	require.Len(t, matches, 1)
	assert.Equal(t, "hotspot.example.com", matches[0].Config.FQDN)
	assert.NotEmpty(t, matches[0].Home)
	assert.Empty(t, matches[0].Roaming)

	// Nothing from a Passpoint AP in the batch, nothing matched.
	assert.Empty(t, sim.MatchingPasspointConfigs(nil))
}
