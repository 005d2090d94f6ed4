package ports

import "github.com/lcalzada-xor/wifitrack/internal/core/domain"

// NetworkPlatform abstracts the underlying wireless stack. All methods are
// synchronous and fast; the tracker only calls them from its worker goroutine.
type NetworkPlatform interface {
	WifiEnabled() bool
	ScanResults() []domain.Observation
	SavedStandardConfigs() []domain.Config
	SavedPasspointConfigs() []domain.PasspointConfig
	// MatchingPasspointConfigs groups observations per saved Passpoint
	// credential into home and roaming sets. Matching is the platform's job;
	// the tracker never derives Passpoint grouping locally.
	MatchingPasspointConfigs(observations []domain.Observation) []domain.PasspointMatch
	ConnectionInfo() *domain.ConnectionInfo
	ActiveNetworkState() domain.NetworkState
	LinkProperties() domain.LinkProperties
	// TriggerScan asks the platform to start a scan cycle. Results arrive
	// later through a scan-results-available notification.
	TriggerScan() error

	// Capability flags affecting the security tie-break.
	SupportsSAE() bool
	SupportsSuiteB() bool
	SupportsEnhancedOpen() bool
}

// EntryPresentation scores signal quality and formats display strings for
// entries. Kept out of the core so products can restyle without touching
// reconciliation logic.
type EntryPresentation interface {
	// SignalLevel buckets an RSSI into [0, MaxSignalLevel].
	SignalLevel(rssi int) int
	MaxSignalLevel() int
	Summary(info domain.EntryInfo) string
}

// TrackerCallback receives change notifications from the tracker. Callbacks
// run on the tracker's listener goroutine, in FIFO order, never while the
// snapshot lock is held.
type TrackerCallback interface {
	OnEntriesChanged()
	OnSavedNetworkCountChanged()
	OnSavedSubscriptionCountChanged()
}

// ConfigStore persists the latest saved-configuration sets so counts survive
// a restart before the platform answers.
type ConfigStore interface {
	SaveStandardConfigs(configs []domain.Config) error
	SavePasspointConfigs(configs []domain.PasspointConfig) error
	LoadStandardConfigs() ([]domain.Config, error)
	LoadPasspointConfigs() ([]domain.PasspointConfig, error)
}
