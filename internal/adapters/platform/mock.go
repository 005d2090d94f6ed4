package platform

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
)

// SSIDs used by the simulated environment.
var simSSIDs = []string{
	"HomeNetwork", "NETGEAR-5G", "CoffeeShop_Free", "Office-Network",
	"Guest-WiFi", "TP-Link_2.4GHz", "Xfinity", "Apartment_5G",
}

var simSecurities = [][]domain.SecurityType{
	{domain.SecurityPSK, domain.SecuritySAE}, // WPA2/WPA3 transition
	{domain.SecuritySAE},
	{domain.SecurityOpen},
	{domain.SecurityEAP},
	{domain.SecurityPSK},
	{domain.SecurityPSK},
	{domain.SecurityOpen, domain.SecurityOWE},
	{domain.SecuritySAE},
}

type simNetwork struct {
	ssid          string
	bssid         string
	securities    []domain.SecurityType
	frequency     int
	baseRSSI      int
	passpointFQDN string // non-empty for Passpoint-capable APs
}

// TrackerNotifier is the slice of the tracker surface the simulator drives.
type TrackerNotifier interface {
	NotifyScanResults(succeeded bool)
	NotifyNetworkStateChanged()
	NotifyLinkPropertiesChanged()
}

// Simulator implements ports.NetworkPlatform with a virtual radio
// environment: a fixed set of APs with jittered signal, a couple of saved
// networks, one Passpoint subscription and periodic connect/disconnect churn.
type Simulator struct {
	mu sync.Mutex

	rand     *rand.Rand
	networks []simNetwork
	configs  []domain.Config
	ppConfig []domain.PasspointConfig

	wifiEnabled bool
	connection  *domain.ConnectionInfo
	state       domain.NetworkState
	clock       func() time.Time
}

// NewSimulator builds the virtual environment. A fixed seed keeps runs
// reproducible; clock may be nil.
func NewSimulator(seed int64, clock func() time.Time) *Simulator {
	if clock == nil {
		clock = time.Now
	}
	s := &Simulator{
		rand:        rand.New(rand.NewSource(seed)),
		wifiEnabled: true,
		state:       domain.NetworkStateDisconnected,
		clock:       clock,
	}
	for i, ssid := range simSSIDs {
		n := simNetwork{
			ssid:       ssid,
			bssid:      fmt.Sprintf("00:1E:BD:%02X:%02X:%02X", i, s.rand.Intn(256), s.rand.Intn(256)),
			securities: simSecurities[i],
			frequency:  2412 + 5*s.rand.Intn(11),
			baseRSSI:   -45 - s.rand.Intn(40),
		}
		if i%2 == 1 {
			n.frequency = 5180 + 20*s.rand.Intn(8)
		}
		s.networks = append(s.networks, n)
	}
	// One of the enterprise APs doubles as a Passpoint access point.
	s.networks[3].passpointFQDN = "hotspot.example.com"

	s.configs = []domain.Config{
		{NetworkID: 1, SSID: "HomeNetwork", Security: domain.SecurityPSK, Proxy: domain.ProxyNone},
		{NetworkID: 2, SSID: "Office-Network", Security: domain.SecurityEAP, Proxy: domain.ProxyStatic},
	}
	s.ppConfig = []domain.PasspointConfig{
		{FQDN: "hotspot.example.com", FriendlyName: "Example Hotspot"},
	}
	return s
}

func (s *Simulator) WifiEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wifiEnabled
}

// SetWifiEnabled flips the simulated radio.
func (s *Simulator) SetWifiEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wifiEnabled = enabled
	if !enabled {
		s.connection = nil
		s.state = domain.NetworkStateDisconnected
	}
}

// ScanResults returns one jittered observation per visible AP.
func (s *Simulator) ScanResults() []domain.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.wifiEnabled {
		return nil
	}
	now := s.clock()
	out := make([]domain.Observation, 0, len(s.networks))
	for _, n := range s.networks {
		out = append(out, domain.Observation{
			SSID:       n.ssid,
			BSSID:      n.bssid,
			Securities: n.securities,
			Frequency:  n.frequency,
			RSSI:       n.baseRSSI + s.rand.Intn(11) - 5,
			Timestamp:  now,
		})
	}
	return out
}

func (s *Simulator) SavedStandardConfigs() []domain.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Config(nil), s.configs...)
}

func (s *Simulator) SavedPasspointConfigs() []domain.PasspointConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PasspointConfig(nil), s.ppConfig...)
}

// MatchingPasspointConfigs matches observations from Passpoint-capable APs
// against the saved subscriptions, all as home networks.
func (s *Simulator) MatchingPasspointConfigs(observations []domain.Observation) []domain.PasspointMatch {
	s.mu.Lock()
	defer s.mu.Unlock()

	fqdnBySSID := make(map[string]string)
	for _, n := range s.networks {
		if n.passpointFQDN != "" {
			fqdnBySSID[n.ssid] = n.passpointFQDN
		}
	}

	homeByFQDN := make(map[string][]domain.Observation)
	for _, o := range observations {
		if fqdn, ok := fqdnBySSID[o.SSID]; ok {
			homeByFQDN[fqdn] = append(homeByFQDN[fqdn], o)
		}
	}

	var matches []domain.PasspointMatch
	for _, cfg := range s.ppConfig {
		if home, ok := homeByFQDN[cfg.FQDN]; ok {
			matches = append(matches, domain.PasspointMatch{Config: cfg, Home: home})
		}
	}
	return matches
}

func (s *Simulator) ConnectionInfo() *domain.ConnectionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connection == nil {
		return nil
	}
	c := *s.connection
	return &c
}

func (s *Simulator) ActiveNetworkState() domain.NetworkState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Simulator) LinkProperties() domain.LinkProperties {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connection == nil {
		return domain.LinkProperties{}
	}
	return domain.LinkProperties{
		InterfaceName: "wlan0",
		Addresses:     []string{"192.168.1.42/24"},
		DNSServers:    []string{"192.168.1.1"},
	}
}

// TriggerScan is a no-op: the simulator environment is always "fresh" and the
// driver loop delivers scan-available notifications on its own schedule.
func (s *Simulator) TriggerScan() error { return nil }

func (s *Simulator) SupportsSAE() bool          { return true }
func (s *Simulator) SupportsSuiteB() bool       { return false }
func (s *Simulator) SupportsEnhancedOpen() bool { return true }

// Connect simulates attaching to a saved network.
func (s *Simulator) Connect(networkID int, rssi int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cfg := range s.configs {
		if cfg.NetworkID == networkID {
			s.connection = &domain.ConnectionInfo{
				NetworkID: networkID,
				SSID:      cfg.SSID,
				RSSI:      rssi,
			}
			s.state = domain.NetworkStateConnected
			return
		}
	}
}

// Disconnect simulates dropping the active connection.
func (s *Simulator) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connection = nil
	s.state = domain.NetworkStateDisconnected
}

// Run drives the tracker with periodic scan notifications and occasional
// connection churn until the context ends.
func (s *Simulator) Run(ctx context.Context, tracker TrackerNotifier, scanInterval time.Duration) {
	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()

	cycles := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cycles++
			// Kick the radio, then report availability the way a real
			// supplicant event stream would. Every fifth cycle the scan
			// "fails" to exercise the widened age window; every eighth the
			// connection flips.
			_ = s.TriggerScan()
			tracker.NotifyScanResults(cycles%5 != 0)
			if cycles%8 == 0 {
				s.mu.Lock()
				connected := s.connection != nil
				s.mu.Unlock()
				if connected {
					s.Disconnect()
				} else {
					s.Connect(1, -52)
				}
				tracker.NotifyNetworkStateChanged()
				if !connected {
					tracker.NotifyLinkPropertiesChanged()
				}
			}
		}
	}
}
