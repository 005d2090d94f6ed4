package presentation

import (
	"fmt"

	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
)

// RSSI endpoints for the linear signal-level interpolation.
const (
	minRSSI = -100
	maxRSSI = -55
)

// Presenter is the default EntryPresentation implementation: five signal
// buckets interpolated linearly between minRSSI and maxRSSI, and short
// human-readable summaries.
type Presenter struct {
	maxLevel int
}

// New creates a presenter with the default five-bucket scale.
func New() *Presenter {
	return &Presenter{maxLevel: 4}
}

// SignalLevel buckets an RSSI into [0, MaxSignalLevel].
func (p *Presenter) SignalLevel(rssi int) int {
	if rssi <= minRSSI {
		return 0
	}
	if rssi >= maxRSSI {
		return p.maxLevel
	}
	inputRange := float64(maxRSSI - minRSSI)
	outputRange := float64(p.maxLevel)
	return int(float64(rssi-minRSSI) * outputRange / inputRange)
}

// MaxSignalLevel returns the top bucket index.
func (p *Presenter) MaxSignalLevel() int { return p.maxLevel }

// Summary formats the one-line status shown under an entry title.
func (p *Presenter) Summary(info domain.EntryInfo) string {
	switch info.ConnectedState {
	case domain.StateConnected:
		return "Connected"
	case domain.StateConnecting:
		return "Connecting..."
	}
	if info.Passpoint {
		return "Available via Passpoint"
	}
	if info.Saved {
		return fmt.Sprintf("Saved (%s)", securityLabel(info.Security))
	}
	return securityLabel(info.Security)
}

func securityLabel(s domain.SecurityType) string {
	switch s {
	case domain.SecurityOpen:
		return "Open"
	case domain.SecurityOWE:
		return "Enhanced Open"
	case domain.SecurityWEP:
		return "WEP"
	case domain.SecurityPSK:
		return "WPA/WPA2"
	case domain.SecuritySAE:
		return "WPA3"
	case domain.SecurityEAP:
		return "Enterprise"
	case domain.SecuritySuiteB:
		return "Enterprise (Suite-B)"
	}
	return string(s)
}
