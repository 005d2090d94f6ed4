package tracker

import (
	"sort"

	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
	"github.com/lcalzada-xor/wifitrack/internal/core/ports"
)

// securityRank orders security families from most to least capable for the
// single-security tie-break.
var securityRank = []domain.SecurityType{
	domain.SecuritySuiteB,
	domain.SecuritySAE,
	domain.SecurityEAP,
	domain.SecurityPSK,
	domain.SecurityOWE,
	domain.SecurityWEP,
	domain.SecurityOpen,
}

// EntryCache owns the per-identity records for both entry kinds plus the
// saved-configuration indexes. It is not safe for concurrent use; the tracker
// worker goroutine is its only caller.
type EntryCache struct {
	standard  map[string]*StandardEntry
	passpoint map[string]*PasspointEntry

	configs          map[string]domain.Config
	passpointConfigs map[string]domain.PasspointConfig

	pres ports.EntryPresentation
}

// NewEntryCache creates an empty cache.
func NewEntryCache(pres ports.EntryPresentation) *EntryCache {
	return &EntryCache{
		standard:         make(map[string]*StandardEntry),
		passpoint:        make(map[string]*PasspointEntry),
		configs:          make(map[string]domain.Config),
		passpointConfigs: make(map[string]domain.PasspointConfig),
		pres:             pres,
	}
}

type scanGroup struct {
	ssid         string
	security     domain.SecurityType
	observations []domain.Observation
}

func securitySupported(s domain.SecurityType, caps domain.SecurityCapabilities) bool {
	switch s {
	case domain.SecuritySAE:
		return caps.SAE
	case domain.SecuritySuiteB:
		return caps.SuiteB
	case domain.SecurityOWE:
		return caps.EnhancedOpen
	}
	return true
}

// chooseSecurity resolves an ambiguous broadcast (transition modes advertise
// several families) to a single security type: the most capable
// platform-supported family advertised, falling back to the configured type
// when nothing advertised is supported, then to the most capable advertised
// family outright.
func (c *EntryCache) chooseSecurity(ssid string, advertised map[domain.SecurityType]bool, caps domain.SecurityCapabilities) domain.SecurityType {
	for _, s := range securityRank {
		if advertised[s] && securitySupported(s, caps) {
			return s
		}
	}
	for _, s := range securityRank {
		if _, ok := c.configs[domain.StandardKey(ssid, s)]; ok {
			return s
		}
	}
	for _, s := range securityRank {
		if advertised[s] {
			return s
		}
	}
	return domain.SecurityOpen
}

// groupStandardScans buckets observations by entry key, resolving one
// security interpretation per SSID.
func (c *EntryCache) groupStandardScans(observations []domain.Observation, caps domain.SecurityCapabilities) map[string]scanGroup {
	bySSID := make(map[string][]domain.Observation)
	for _, o := range observations {
		if !o.Valid() {
			continue
		}
		bySSID[o.SSID] = append(bySSID[o.SSID], o)
	}

	groups := make(map[string]scanGroup, len(bySSID))
	for ssid, obs := range bySSID {
		advertised := make(map[domain.SecurityType]bool)
		for _, o := range obs {
			if len(o.Securities) == 0 {
				advertised[domain.SecurityOpen] = true
			}
			for _, s := range o.Securities {
				advertised[s] = true
			}
		}
		security := c.chooseSecurity(ssid, advertised, caps)
		key := domain.StandardKey(ssid, security)
		if key == "" {
			continue
		}
		groups[key] = scanGroup{ssid: ssid, security: security, observations: obs}
	}
	return groups
}

// ReconcileStandardScans replaces every standard record's observation set
// with the fresh groups, refreshes config attachments, evicts records that
// became unreachable, and creates records for unconsumed groups. Connection
// state is never touched here. Returns the number of evicted records.
func (c *EntryCache) ReconcileStandardScans(observations []domain.Observation, caps domain.SecurityCapabilities) int {
	groups := c.groupStandardScans(observations, caps)

	evicted := 0
	for key, entry := range c.standard {
		if group, ok := groups[key]; ok {
			entry.UpdateScanResultInfo(group.observations)
			delete(groups, key)
		} else {
			entry.UpdateScanResultInfo(nil)
		}
		if cfg, ok := c.configs[key]; ok {
			entry.UpdateConfig(&cfg)
		} else {
			entry.UpdateConfig(nil)
		}
		if entry.Level() == domain.LevelUnreachable {
			delete(c.standard, key)
			evicted++
		}
	}

	for key, group := range groups {
		entry := NewStandardEntry(key, group.ssid, group.security, group.observations, c.pres)
		if cfg, ok := c.configs[key]; ok {
			entry.UpdateConfig(&cfg)
		}
		c.standard[key] = entry
	}
	return evicted
}

// ReconcilePasspointScans applies the platform's per-credential matching.
// Records exist only for saved subscriptions; unmatched records lose their
// scans and are evicted once unreachable. Returns the number of evictions.
func (c *EntryCache) ReconcilePasspointScans(matches []domain.PasspointMatch) int {
	matched := make(map[string]bool, len(matches))
	for _, m := range matches {
		key := domain.PasspointKey(m.Config.FQDN)
		cfg, ok := c.passpointConfigs[key]
		if !ok {
			// Platform returned a credential we have no subscription for.
			continue
		}
		entry, ok := c.passpoint[key]
		if !ok {
			entry = NewPasspointEntry(cfg, c.pres)
			c.passpoint[key] = entry
		}
		entry.UpdateScanResultInfo(m.Home, m.Roaming)
		matched[key] = true
	}

	evicted := 0
	for key, entry := range c.passpoint {
		if !matched[key] {
			entry.UpdateScanResultInfo(nil, nil)
		}
		if entry.Level() == domain.LevelUnreachable {
			delete(c.passpoint, key)
			evicted++
		}
	}
	return evicted
}

// ReconcileStandardConfigs rebuilds the configuration index and re-attaches
// or detaches each record's config. Never creates or removes records: a
// reachable network stays visible after its credentials are forgotten.
func (c *EntryCache) ReconcileStandardConfigs(configs []domain.Config) {
	c.configs = make(map[string]domain.Config, len(configs))
	for _, cfg := range configs {
		key := domain.ConfigKey(cfg)
		if key == "" {
			continue
		}
		c.configs[key] = cfg
	}

	for key, entry := range c.standard {
		if cfg, ok := c.configs[key]; ok {
			entry.UpdateConfig(&cfg)
		} else {
			entry.UpdateConfig(nil)
		}
	}
}

// ReconcileSingleStandardConfig applies a one-configuration delta without
// rebuilding the whole index.
func (c *EntryCache) ReconcileSingleStandardConfig(cfg domain.Config, reason domain.ConfigChangeReason) {
	key := domain.ConfigKey(cfg)
	if key == "" {
		return
	}
	if reason == domain.ConfigRemoved {
		delete(c.configs, key)
	} else {
		c.configs[key] = cfg
	}
	if entry, ok := c.standard[key]; ok {
		if current, ok := c.configs[key]; ok {
			entry.UpdateConfig(&current)
		} else {
			entry.UpdateConfig(nil)
		}
	}
}

// ReconcilePasspointConfigs rebuilds the subscription index. Records whose
// subscription disappeared are removed outright: a Passpoint record cannot
// outlive its credential.
func (c *EntryCache) ReconcilePasspointConfigs(configs []domain.PasspointConfig) {
	c.passpointConfigs = make(map[string]domain.PasspointConfig, len(configs))
	for _, cfg := range configs {
		key := domain.PasspointKey(cfg.FQDN)
		if key == "" {
			continue
		}
		c.passpointConfigs[key] = cfg
	}

	for key, entry := range c.passpoint {
		if cfg, ok := c.passpointConfigs[key]; ok {
			entry.UpdatePasspointConfig(cfg)
		} else {
			delete(c.passpoint, key)
		}
	}
}

// ReconcileConnectionInfo pushes the live connection tuple to every record.
// Each record decides for itself whether the tuple names its identity. A
// record left disconnected with no recent scans behind it (a synthetic
// connected record after the disconnect, typically) is unreachable and is
// evicted here rather than lingering until the next scan pass. Returns the
// number of evicted records.
func (c *EntryCache) ReconcileConnectionInfo(info *domain.ConnectionInfo, state domain.NetworkState) int {
	for _, entry := range c.standard {
		entry.UpdateConnectionInfo(info, state)
	}
	for _, entry := range c.passpoint {
		entry.UpdateConnectionInfo(info, state)
	}

	evicted := 0
	for key, entry := range c.standard {
		if entry.ConnectedState() == domain.StateDisconnected && entry.Level() == domain.LevelUnreachable {
			delete(c.standard, key)
			evicted++
		}
	}
	for key, entry := range c.passpoint {
		if entry.ConnectedState() == domain.StateDisconnected && entry.Level() == domain.LevelUnreachable {
			delete(c.passpoint, key)
			evicted++
		}
	}
	return evicted
}

// EnsureConnectedStandardEntry creates a synthetic record from the saved
// configuration matching the connected network id when the connection arrived
// before any scan observation. No-op if a record already exists.
func (c *EntryCache) EnsureConnectedStandardEntry(info *domain.ConnectionInfo, state domain.NetworkState) {
	if info == nil || info.IsPasspoint {
		return
	}
	for key, cfg := range c.configs {
		if cfg.NetworkID != info.NetworkID {
			continue
		}
		if _, ok := c.standard[key]; ok {
			return
		}
		entry := NewStandardEntryFromConfig(cfg, c.pres)
		entry.UpdateConnectionInfo(info, state)
		c.standard[key] = entry
		return
	}
}

// EnsureConnectedPasspointEntry is the Passpoint counterpart, matched by FQDN.
func (c *EntryCache) EnsureConnectedPasspointEntry(info *domain.ConnectionInfo, state domain.NetworkState) {
	if info == nil || !info.IsPasspoint {
		return
	}
	key := domain.PasspointKey(info.PasspointFQDN)
	cfg, ok := c.passpointConfigs[key]
	if !ok {
		return
	}
	if _, ok := c.passpoint[key]; ok {
		return
	}
	entry := NewPasspointEntry(cfg, c.pres)
	entry.UpdateConnectionInfo(info, state)
	c.passpoint[key] = entry
}

// UpdateConnectedLinkProperties forwards link properties to the record that
// is currently in the connected state, if any.
func (c *EntryCache) UpdateConnectedLinkProperties(lp domain.LinkProperties) {
	if entry := c.connectedEntry(); entry != nil && entry.ConnectedState() == domain.StateConnected {
		entry.UpdateLinkProperties(lp)
	}
}

// connectedEntry returns the record in a connecting or connected state,
// checking the standard cache before the Passpoint cache. Iteration order is
// made deterministic so repeated snapshot builds agree.
func (c *EntryCache) connectedEntry() Entry {
	for _, key := range sortedKeys(c.standard) {
		entry := c.standard[key]
		if s := entry.ConnectedState(); s == domain.StateConnected || s == domain.StateConnecting {
			return entry
		}
	}
	for _, key := range sortedKeys(c.passpoint) {
		entry := c.passpoint[key]
		if s := entry.ConnectedState(); s == domain.StateConnected || s == domain.StateConnecting {
			return entry
		}
	}
	return nil
}

// ConnectedInfo returns a value copy of the connected record, or nil.
func (c *EntryCache) ConnectedInfo() *domain.EntryInfo {
	entry := c.connectedEntry()
	if entry == nil {
		return nil
	}
	info := entry.Info()
	return &info
}

// VisibleInfos returns value copies of every disconnected record from both
// caches, sorted by descending level with the entry key as the stable
// tie-break.
func (c *EntryCache) VisibleInfos() []domain.EntryInfo {
	infos := make([]domain.EntryInfo, 0, len(c.standard)+len(c.passpoint))
	for _, entry := range c.standard {
		if entry.ConnectedState() == domain.StateDisconnected {
			infos = append(infos, entry.Info())
		}
	}
	for _, entry := range c.passpoint {
		if entry.ConnectedState() == domain.StateDisconnected {
			infos = append(infos, entry.Info())
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Level != infos[j].Level {
			return infos[i].Level > infos[j].Level
		}
		return infos[i].Key < infos[j].Key
	})
	return infos
}

// SavedNetworkCount is the number of saved standard configurations.
func (c *EntryCache) SavedNetworkCount() int { return len(c.configs) }

// SavedSubscriptionCount is the number of saved Passpoint subscriptions.
func (c *EntryCache) SavedSubscriptionCount() int { return len(c.passpointConfigs) }

// SavedStandardConfigs returns a copy of the configuration index values.
func (c *EntryCache) SavedStandardConfigs() []domain.Config {
	out := make([]domain.Config, 0, len(c.configs))
	for _, key := range sortedKeys(c.configs) {
		out = append(out, c.configs[key])
	}
	return out
}

// SavedPasspointConfigs returns a copy of the subscription index values.
func (c *EntryCache) SavedPasspointConfigs() []domain.PasspointConfig {
	out := make([]domain.PasspointConfig, 0, len(c.passpointConfigs))
	for _, key := range sortedKeys(c.passpointConfigs) {
		out = append(out, c.passpointConfigs[key])
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
