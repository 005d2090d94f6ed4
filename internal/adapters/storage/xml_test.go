package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
)

func TestNetworkList_RoundTrip(t *testing.T) {
	configs := []domain.Config{
		{NetworkID: 12, SSID: "cafe", Security: domain.SecurityPSK, Proxy: domain.ProxyNone},
		{NetworkID: 3, SSID: "office", Security: domain.SecurityEAP, Hidden: true, Proxy: domain.ProxyPAC},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteNetworkList(&buf, configs))

	parsed, err := ReadNetworkList(&buf)
	require.NoError(t, err)
	assert.Equal(t, configs, parsed)
}

func TestNetworkList_DefaultProxyNormalizedToNone(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNetworkList(&buf, []domain.Config{
		{NetworkID: 1, SSID: "cafe", Security: domain.SecurityPSK},
	}))

	parsed, err := ReadNetworkList(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, domain.ProxyNone, parsed[0].Proxy)
}

func TestReadNetworkList_UnknownProxySkipsRecordOnly(t *testing.T) {
	doc := `<NetworkList>
 <Network>
  <WifiConfiguration>
   <string name="SSID">good</string>
   <string name="Security">PSK</string>
   <int name="NetworkID" value="1" />
  </WifiConfiguration>
  <IpConfiguration>
   <string name="ProxySettings">NONE</string>
  </IpConfiguration>
 </Network>
 <Network>
  <WifiConfiguration>
   <string name="SSID">bad</string>
   <string name="Security">PSK</string>
   <int name="NetworkID" value="2" />
  </WifiConfiguration>
  <IpConfiguration>
   <string name="ProxySettings">FANCY_NEW_MODE</string>
  </IpConfiguration>
 </Network>
 <Network>
  <WifiConfiguration>
   <string name="SSID">also-good</string>
   <string name="Security">SAE</string>
   <int name="NetworkID" value="3" />
  </WifiConfiguration>
 </Network>
</NetworkList>`

	parsed, err := ReadNetworkList(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "good", parsed[0].SSID)
	assert.Equal(t, "also-good", parsed[1].SSID)
}

func TestReadNetworkList_RecordWithoutSSIDSkipped(t *testing.T) {
	doc := `<NetworkList>
 <Network>
  <WifiConfiguration>
   <string name="Security">PSK</string>
  </WifiConfiguration>
 </Network>
</NetworkList>`

	parsed, err := ReadNetworkList(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestReadNetworkList_MissingHeaderFails(t *testing.T) {
	_, err := ReadNetworkList(strings.NewReader(`<SomethingElse></SomethingElse>`))
	assert.Error(t, err)
}

func TestReadNetworkList_MalformedDocumentFails(t *testing.T) {
	_, err := ReadNetworkList(strings.NewReader(`<NetworkList><Network>`))
	assert.Error(t, err)
}

func TestSubscriptionList_RoundTrip(t *testing.T) {
	subs := []domain.PasspointConfig{
		{FQDN: "hotspot.example.com", FriendlyName: "Example Hotspot"},
		{FQDN: "roam.example.net"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSubscriptionList(&buf, subs))

	parsed, err := ReadSubscriptionList(&buf)
	require.NoError(t, err)
	assert.Equal(t, subs, parsed)
}

func TestReadSubscriptionList_RecordWithoutFQDNSkipped(t *testing.T) {
	doc := `<SubscriptionList>
 <PasspointConfiguration>
  <string name="FriendlyName">nameless</string>
 </PasspointConfiguration>
 <PasspointConfiguration>
  <string name="FQDN">hotspot.example.com</string>
 </PasspointConfiguration>
</SubscriptionList>`

	parsed, err := ReadSubscriptionList(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "hotspot.example.com", parsed[0].FQDN)
}
