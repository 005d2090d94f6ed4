package tracker

import (
	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
	"github.com/lcalzada-xor/wifitrack/internal/core/ports"
)

// Entry is the shared read/update surface of the two cache record variants.
// Records are owned by the EntryCache and mutated only on the worker
// goroutine; consumers see value copies via Info().
type Entry interface {
	Key() string
	Title() string
	Level() int
	ConnectedState() string
	Saved() bool
	UpdateConnectionInfo(info *domain.ConnectionInfo, state domain.NetworkState)
	UpdateLinkProperties(lp domain.LinkProperties)
	Info() domain.EntryInfo
}

func connectedStateFor(state domain.NetworkState) string {
	switch state {
	case domain.NetworkStateConnected:
		return domain.StateConnected
	case domain.NetworkStateConnecting:
		return domain.StateConnecting
	}
	return domain.StateDisconnected
}

func bestRSSI(observations []domain.Observation) (int, bool) {
	if len(observations) == 0 {
		return 0, false
	}
	best := observations[0].RSSI
	for _, o := range observations[1:] {
		if o.RSSI > best {
			best = o.RSSI
		}
	}
	return best, true
}

// StandardEntry is the cache record for a regular access-point network.
type StandardEntry struct {
	key      string
	ssid     string
	security domain.SecurityType

	observations []domain.Observation
	config       *domain.Config

	connectedState string
	connectionRSSI int
	linkProps      *domain.LinkProperties

	pres ports.EntryPresentation
}

// NewStandardEntry creates a record from a scan-observation group.
func NewStandardEntry(key, ssid string, security domain.SecurityType, observations []domain.Observation, pres ports.EntryPresentation) *StandardEntry {
	return &StandardEntry{
		key:            key,
		ssid:           ssid,
		security:       security,
		observations:   observations,
		connectedState: domain.StateDisconnected,
		pres:           pres,
	}
}

// NewStandardEntryFromConfig creates a synthetic record directly from a saved
// configuration, used when a connection is established before any scan
// observation resolves to this key. Scan fields are backfilled by the next
// reconcile pass.
func NewStandardEntryFromConfig(cfg domain.Config, pres ports.EntryPresentation) *StandardEntry {
	c := cfg
	return &StandardEntry{
		key:            domain.ConfigKey(cfg),
		ssid:           cfg.SSID,
		security:       cfg.Security,
		config:         &c,
		connectedState: domain.StateDisconnected,
		pres:           pres,
	}
}

func (e *StandardEntry) Key() string   { return e.key }
func (e *StandardEntry) Title() string { return e.ssid }
func (e *StandardEntry) Saved() bool   { return e.config != nil }

func (e *StandardEntry) ConnectedState() string { return e.connectedState }

// Level derives the signal bucket: connection RSSI while connected, best
// recent observation otherwise, LevelUnreachable when neither exists.
func (e *StandardEntry) Level() int {
	if e.connectedState != domain.StateDisconnected {
		return e.pres.SignalLevel(e.connectionRSSI)
	}
	if rssi, ok := bestRSSI(e.observations); ok {
		return e.pres.SignalLevel(rssi)
	}
	return domain.LevelUnreachable
}

// UpdateScanResultInfo replaces the observation set. nil clears it.
func (e *StandardEntry) UpdateScanResultInfo(observations []domain.Observation) {
	e.observations = observations
}

// UpdateConfig attaches or detaches the saved configuration. Detaching does
// not touch scan or connection state.
func (e *StandardEntry) UpdateConfig(cfg *domain.Config) {
	if cfg == nil {
		e.config = nil
		return
	}
	c := *cfg
	e.config = &c
}

// UpdateConnectionInfo transitions the connected state if the live connection
// tuple names this record's saved network id, and resets to disconnected
// otherwise. Scan and config state are never altered here.
func (e *StandardEntry) UpdateConnectionInfo(info *domain.ConnectionInfo, state domain.NetworkState) {
	if info != nil && !info.IsPasspoint && e.config != nil && e.config.NetworkID == info.NetworkID {
		e.connectedState = connectedStateFor(state)
		e.connectionRSSI = info.RSSI
	} else {
		e.connectedState = domain.StateDisconnected
	}
	if e.connectedState == domain.StateDisconnected {
		e.linkProps = nil
	}
}

func (e *StandardEntry) UpdateLinkProperties(lp domain.LinkProperties) {
	e.linkProps = &lp
}

// Info builds the consumer-visible value copy of this record.
func (e *StandardEntry) Info() domain.EntryInfo {
	info := domain.EntryInfo{
		Key:            e.key,
		Title:          e.ssid,
		Security:       e.security,
		Level:          e.Level(),
		ConnectedState: e.connectedState,
		Saved:          e.config != nil,
	}
	if len(e.observations) > 0 {
		info.Frequency = e.observations[0].Frequency
	}
	if e.linkProps != nil {
		info.LinkAddresses = append([]string(nil), e.linkProps.Addresses...)
	}
	info.Summary = e.pres.Summary(info)
	return info
}

// PasspointEntry is the cache record for a federated (Hotspot 2.0) network,
// keyed by subscription FQDN rather than SSID+security.
type PasspointEntry struct {
	key    string
	config domain.PasspointConfig

	homeScans    []domain.Observation
	roamingScans []domain.Observation

	connectedState string
	connectionRSSI int
	linkProps      *domain.LinkProperties

	pres ports.EntryPresentation
}

// NewPasspointEntry creates a record for a saved subscription. Passpoint
// records only exist for saved credentials, so the config is mandatory.
func NewPasspointEntry(cfg domain.PasspointConfig, pres ports.EntryPresentation) *PasspointEntry {
	return &PasspointEntry{
		key:            domain.PasspointKey(cfg.FQDN),
		config:         cfg,
		connectedState: domain.StateDisconnected,
		pres:           pres,
	}
}

func (e *PasspointEntry) Key() string { return e.key }

func (e *PasspointEntry) Title() string {
	if e.config.FriendlyName != "" {
		return e.config.FriendlyName
	}
	return e.config.FQDN
}

// Saved is always true for Passpoint records: they exist only for saved
// subscriptions.
func (e *PasspointEntry) Saved() bool { return true }

func (e *PasspointEntry) ConnectedState() string { return e.connectedState }

func (e *PasspointEntry) Level() int {
	if e.connectedState != domain.StateDisconnected {
		return e.pres.SignalLevel(e.connectionRSSI)
	}
	// Home scans outrank roaming scans when both are present.
	if rssi, ok := bestRSSI(e.homeScans); ok {
		return e.pres.SignalLevel(rssi)
	}
	if rssi, ok := bestRSSI(e.roamingScans); ok {
		return e.pres.SignalLevel(rssi)
	}
	return domain.LevelUnreachable
}

// UpdateScanResultInfo replaces both matched observation sets.
func (e *PasspointEntry) UpdateScanResultInfo(home, roaming []domain.Observation) {
	e.homeScans = home
	e.roamingScans = roaming
}

// UpdatePasspointConfig refreshes the subscription data (friendly name etc.).
func (e *PasspointEntry) UpdatePasspointConfig(cfg domain.PasspointConfig) {
	e.config = cfg
}

func (e *PasspointEntry) UpdateConnectionInfo(info *domain.ConnectionInfo, state domain.NetworkState) {
	if info != nil && info.IsPasspoint && info.PasspointFQDN == e.config.FQDN {
		e.connectedState = connectedStateFor(state)
		e.connectionRSSI = info.RSSI
	} else {
		e.connectedState = domain.StateDisconnected
	}
	if e.connectedState == domain.StateDisconnected {
		e.linkProps = nil
	}
}

func (e *PasspointEntry) UpdateLinkProperties(lp domain.LinkProperties) {
	e.linkProps = &lp
}

func (e *PasspointEntry) Info() domain.EntryInfo {
	info := domain.EntryInfo{
		Key:            e.key,
		Title:          e.Title(),
		Security:       domain.SecurityEAP,
		Level:          e.Level(),
		ConnectedState: e.connectedState,
		Saved:          true,
		Passpoint:      true,
	}
	if len(e.homeScans) > 0 {
		info.Frequency = e.homeScans[0].Frequency
	} else if len(e.roamingScans) > 0 {
		info.Frequency = e.roamingScans[0].Frequency
	}
	if e.linkProps != nil {
		info.LinkAddresses = append([]string(nil), e.linkProps.Addresses...)
	}
	info.Summary = e.pres.Summary(info)
	return info
}
