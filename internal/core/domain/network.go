package domain

import "time"

// SecurityType identifies the security family advertised by a network or
// stored in a saved configuration.
type SecurityType string

const (
	SecurityOpen   SecurityType = "OPEN"
	SecurityOWE    SecurityType = "OWE" // Enhanced Open
	SecurityWEP    SecurityType = "WEP"
	SecurityPSK    SecurityType = "PSK" // WPA/WPA2 Personal
	SecuritySAE    SecurityType = "SAE" // WPA3 Personal
	SecurityEAP    SecurityType = "EAP" // WPA2 Enterprise
	SecuritySuiteB SecurityType = "EAP_SUITE_B"
)

// Connection states exposed on entries.
const (
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateConnected    = "connected"
)

// LevelUnreachable is the signal level of an entry with no recent scan and no
// active connection. Such entries are evicted from the cache.
const LevelUnreachable = -1

// Observation is a single scan result: one physical BSS seen once.
type Observation struct {
	SSID       string         `json:"ssid"`
	BSSID      string         `json:"bssid"`
	Securities []SecurityType `json:"securities"` // all families advertised (transition modes list several)
	Frequency  int            `json:"freq"` // MHz
	RSSI       int            `json:"rssi"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Valid reports whether the observation carries enough identity to track.
func (o Observation) Valid() bool {
	return o.SSID != "" && o.BSSID != "" && !o.Timestamp.IsZero()
}

// ProxySettings mirrors the proxy mode stored alongside a saved configuration.
type ProxySettings string

const (
	ProxyNone       ProxySettings = "NONE"
	ProxyStatic     ProxySettings = "STATIC"
	ProxyPAC        ProxySettings = "PAC"
	ProxyUnassigned ProxySettings = "UNASSIGNED"
)

// KnownProxySettings reports whether p is one of the recognized proxy modes.
func KnownProxySettings(p ProxySettings) bool {
	switch p {
	case ProxyNone, ProxyStatic, ProxyPAC, ProxyUnassigned:
		return true
	}
	return false
}

// Config is a saved standard-network configuration.
type Config struct {
	NetworkID int           `json:"network_id"`
	SSID      string        `json:"ssid"`
	Security  SecurityType  `json:"security"`
	Hidden    bool          `json:"hidden"`
	Proxy     ProxySettings `json:"proxy,omitempty"`
}

// PasspointConfig is a saved Passpoint (Hotspot 2.0) subscription.
type PasspointConfig struct {
	FQDN         string `json:"fqdn"`
	FriendlyName string `json:"friendly_name"`
}

// PasspointMatch pairs a saved Passpoint configuration with the scan
// observations the platform matched against it.
type PasspointMatch struct {
	Config  PasspointConfig
	Home    []Observation
	Roaming []Observation
}

// ConfigChangeReason qualifies a single-configuration change notification.
type ConfigChangeReason int

const (
	ConfigAdded ConfigChangeReason = iota
	ConfigRemoved
	ConfigChanged
)

// NetworkState is the platform's view of the active network.
type NetworkState string

const (
	NetworkStateDisconnected NetworkState = "DISCONNECTED"
	NetworkStateConnecting   NetworkState = "CONNECTING"
	NetworkStateConnected    NetworkState = "CONNECTED"
)

// ConnectionInfo is the live connection tuple pushed to entries.
type ConnectionInfo struct {
	NetworkID     int    `json:"network_id"`
	SSID          string `json:"ssid"`
	BSSID         string `json:"bssid"`
	RSSI          int    `json:"rssi"`
	IsPasspoint   bool   `json:"is_passpoint"`
	PasspointFQDN string `json:"passpoint_fqdn,omitempty"`
}

// LinkProperties describes the L3 state of the connected network.
type LinkProperties struct {
	InterfaceName string   `json:"iface"`
	Addresses     []string `json:"addresses,omitempty"`
	DNSServers    []string `json:"dns,omitempty"`
}

// SecurityCapabilities are the platform feature flags that drive the
// single-security tie-break when a beacon advertises several families.
type SecurityCapabilities struct {
	SAE          bool
	SuiteB       bool
	EnhancedOpen bool
}

// EntryInfo is the consumer-visible read model of one entry. Snapshot
// accessors hand out copies of these, never live cache records.
type EntryInfo struct {
	Key            string       `json:"key"`
	Title          string       `json:"title"`
	Security       SecurityType `json:"security"`
	Level          int          `json:"level"`
	ConnectedState string       `json:"connected_state"`
	Saved          bool         `json:"saved"`
	Passpoint      bool         `json:"passpoint"`
	Frequency      int          `json:"freq,omitempty"`
	Summary        string       `json:"summary,omitempty"`
	LinkAddresses  []string     `json:"link_addresses,omitempty"`
}

// Snapshot is the published, self-consistent view of the tracker state.
type Snapshot struct {
	Connected          *EntryInfo  `json:"connected,omitempty"`
	Visible            []EntryInfo `json:"visible"`
	SavedNetworks      int         `json:"saved_networks"`
	SavedSubscriptions int         `json:"saved_subscriptions"`
}
