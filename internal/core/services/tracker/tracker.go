package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
	"github.com/lcalzada-xor/wifitrack/internal/core/ports"
	"github.com/lcalzada-xor/wifitrack/internal/telemetry"
)

const (
	defaultEventQueueSize    = 64
	defaultListenerQueueSize = 128
)

type eventKind int

const (
	eventStart eventKind = iota
	eventWifiStateChanged
	eventScanResults
	eventConfigsChanged
	eventNetworkStateChanged
	eventLinkPropertiesChanged
)

var eventTriggers = map[eventKind]string{
	eventStart:                 "start",
	eventWifiStateChanged:      "wifi_state",
	eventScanResults:           "scan_results",
	eventConfigsChanged:        "configs_changed",
	eventNetworkStateChanged:   "network_state",
	eventLinkPropertiesChanged: "link_properties",
}

type event struct {
	kind          eventKind
	scanSucceeded bool
	config        *domain.Config
	reason        domain.ConfigChangeReason
}

// ConfigSink receives copies of the saved-configuration sets after each
// config reconciliation. Implementations must not block.
type ConfigSink func(configs []domain.Config, passpoint []domain.PasspointConfig)

// Tracker reconciles scan results, saved configurations and connection state
// into one published snapshot. All cache mutation happens on a single worker
// goroutine fed by an event queue; the snapshot is the only cross-goroutine
// state and sits behind its own mutex.
type Tracker struct {
	platform ports.NetworkPlatform
	pres     ports.EntryPresentation
	clock    func() time.Time

	maxScanAge   time.Duration
	scanInterval time.Duration

	cache    *EntryCache
	updater  *ScanResultUpdater
	events   chan event
	notifier *notifier
	listener ports.TrackerCallback
	sink     ConfigSink
	tracer   trace.Tracer

	// Worker-owned state: last notified counts and the outcome of the most
	// recent scan cycle (drives the widened age window until a scan succeeds).
	lastSavedNetworks      int
	lastSavedSubscriptions int
	lastScanSucceeded      bool
	started                bool

	mu       sync.Mutex
	snapshot domain.Snapshot
}

// New creates a tracker. clock may be nil (time.Now). The listener may be
// nil; SetListener must then be called before Start.
func New(platform ports.NetworkPlatform, pres ports.EntryPresentation, maxScanAge, scanInterval time.Duration, clock func() time.Time) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{
		platform:               platform,
		pres:                   pres,
		clock:                  clock,
		maxScanAge:             maxScanAge,
		scanInterval:           scanInterval,
		cache:                  NewEntryCache(pres),
		updater:                NewScanResultUpdater(maxScanAge+scanInterval, clock),
		events:                 make(chan event, defaultEventQueueSize),
		notifier:               newNotifier(defaultListenerQueueSize),
		tracer:                 otel.Tracer("wifitrack/tracker"),
		lastSavedNetworks:      -1,
		lastSavedSubscriptions: -1,
		lastScanSucceeded:      true,
	}
}

// SetListener registers the change callback. Must be called before Start.
func (t *Tracker) SetListener(listener ports.TrackerCallback) { t.listener = listener }

// SetConfigSink registers the persistence sink. Must be called before Start.
func (t *Tracker) SetConfigSink(sink ConfigSink) { t.sink = sink }

// PrimeCounts seeds the published saved counts from a local store so consumers
// see plausible numbers before the first platform round trip. Only valid
// before Start.
func (t *Tracker) PrimeCounts(savedNetworks, savedSubscriptions int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot.SavedNetworks = savedNetworks
	t.snapshot.SavedSubscriptions = savedSubscriptions
}

// Start launches the worker and listener goroutines and enqueues the start-up
// cycle.
func (t *Tracker) Start(ctx context.Context) {
	if t.started {
		return
	}
	t.started = true
	t.notifier.start(ctx)
	go t.run(ctx)
	t.enqueue(event{kind: eventStart, scanSucceeded: true})
}

// NotifyWifiStateChanged signals a wifi-subsystem enable/disable transition.
func (t *Tracker) NotifyWifiStateChanged() {
	t.enqueue(event{kind: eventWifiStateChanged, scanSucceeded: true})
}

// NotifyScanResults signals that a scan cycle finished. succeeded=false keeps
// the previous observations alive for one extra interval.
func (t *Tracker) NotifyScanResults(succeeded bool) {
	t.enqueue(event{kind: eventScanResults, scanSucceeded: succeeded})
}

// NotifyConfigsChanged signals a saved-configuration change. config may name
// the single changed configuration for a delta update; nil forces a full
// reconcile.
func (t *Tracker) NotifyConfigsChanged(config *domain.Config, reason domain.ConfigChangeReason) {
	t.enqueue(event{kind: eventConfigsChanged, config: config, reason: reason})
}

// NotifyNetworkStateChanged signals a connection-state transition.
func (t *Tracker) NotifyNetworkStateChanged() {
	t.enqueue(event{kind: eventNetworkStateChanged})
}

// NotifyLinkPropertiesChanged signals an L3 change on the active network.
func (t *Tracker) NotifyLinkPropertiesChanged() {
	t.enqueue(event{kind: eventLinkPropertiesChanged})
}

func (t *Tracker) enqueue(ev event) {
	select {
	case t.events <- ev:
	default:
		slog.Warn("event queue full, dropping event", "trigger", eventTriggers[ev.kind])
		telemetry.EventsDropped.WithLabelValues("queue_full").Inc()
	}
}

func (t *Tracker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-t.events:
			t.handle(ctx, ev)
		}
	}
}

func (t *Tracker) handle(ctx context.Context, ev event) {
	trigger := eventTriggers[ev.kind]
	_, span := t.tracer.Start(ctx, "tracker.reconcile",
		trace.WithAttributes(attribute.String("trigger", trigger)))
	defer span.End()
	telemetry.ReconcileCycles.WithLabelValues(trigger).Inc()

	switch ev.kind {
	case eventStart:
		t.handleStart()
	case eventWifiStateChanged:
		t.conditionallyUpdateScanResults(true)
		t.publish()
	case eventScanResults:
		t.conditionallyUpdateScanResults(ev.scanSucceeded)
		t.publish()
	case eventConfigsChanged:
		t.handleConfigsChanged(ev.config, ev.reason)
	case eventNetworkStateChanged:
		t.handleNetworkStateChanged()
	case eventLinkPropertiesChanged:
		t.cache.UpdateConnectedLinkProperties(t.platform.LinkProperties())
		t.publish()
	}
}

// handleStart primes every cache from the platform in one pass: configs,
// scans, connection info, synthetic connected entries, link properties.
func (t *Tracker) handleStart() {
	t.cache.ReconcileStandardConfigs(t.platform.SavedStandardConfigs())
	t.cache.ReconcilePasspointConfigs(t.platform.SavedPasspointConfigs())
	t.updater.Update(t.platform.ScanResults())
	t.conditionallyUpdateScanResults(true)

	info := t.platform.ConnectionInfo()
	state := t.platform.ActiveNetworkState()
	if err := validConnection(info); err != nil {
		slog.Warn("dropping connection info at start", "error", err)
		telemetry.EventsDropped.WithLabelValues("invalid_payload").Inc()
	} else {
		evicted := t.cache.ReconcileConnectionInfo(info, state)
		telemetry.EntriesEvicted.Add(float64(evicted))
		t.cache.EnsureConnectedStandardEntry(info, state)
		t.cache.EnsureConnectedPasspointEntry(info, state)
		t.cache.UpdateConnectedLinkProperties(t.platform.LinkProperties())
	}

	t.flushConfigs()
	t.publish()
}

// conditionallyUpdateScanResults feeds both caches from the scan updater. A
// disabled wifi subsystem reconciles against the empty set, evicting every
// non-connected record. A failed scan widens the age window by one scan
// interval so a single bad cycle does not clear the list.
func (t *Tracker) conditionallyUpdateScanResults(lastScanSucceeded bool) {
	t.lastScanSucceeded = lastScanSucceeded
	if !t.platform.WifiEnabled() {
		evicted := t.cache.ReconcileStandardScans(nil, t.capabilities())
		evicted += t.cache.ReconcilePasspointScans(nil)
		telemetry.EntriesEvicted.Add(float64(evicted))
		return
	}

	if lastScanSucceeded {
		t.updater.Update(t.platform.ScanResults())
	}

	results := t.updater.Results(t.scanAgeWindow())
	evicted := t.cache.ReconcileStandardScans(results, t.capabilities())
	evicted += t.cache.ReconcilePasspointScans(t.platform.MatchingPasspointConfigs(results))
	telemetry.EntriesEvicted.Add(float64(evicted))
}

// scanAgeWindow is the effective observation age window: one extra scan
// interval while the latest scan cycle failed, so cycles between scans
// (config churn included) never undo the failed-scan grace.
func (t *Tracker) scanAgeWindow() time.Duration {
	window := t.maxScanAge
	if !t.lastScanSucceeded {
		window += t.scanInterval
	}
	return window
}

func (t *Tracker) handleConfigsChanged(config *domain.Config, reason domain.ConfigChangeReason) {
	if config != nil {
		if domain.ConfigKey(*config) == "" {
			slog.Warn("dropping malformed config change event", "network_id", config.NetworkID)
			telemetry.EventsDropped.WithLabelValues("invalid_payload").Inc()
			return
		}
		t.cache.ReconcileSingleStandardConfig(*config, reason)
	} else {
		t.cache.ReconcileStandardConfigs(t.platform.SavedStandardConfigs())
	}
	// Config changes can flip the security tie-break, so scan grouping is
	// re-derived from the cached observations.
	t.cache.ReconcilePasspointConfigs(t.platform.SavedPasspointConfigs())
	results := t.updater.Results(t.scanAgeWindow())
	evicted := t.cache.ReconcileStandardScans(results, t.capabilities())
	evicted += t.cache.ReconcilePasspointScans(t.platform.MatchingPasspointConfigs(results))
	telemetry.EntriesEvicted.Add(float64(evicted))

	t.flushConfigs()
	t.publish()
}

func (t *Tracker) handleNetworkStateChanged() {
	info := t.platform.ConnectionInfo()
	if err := validConnection(info); err != nil {
		slog.Warn("dropping network state event", "error", err)
		telemetry.EventsDropped.WithLabelValues("invalid_payload").Inc()
		return
	}
	state := t.platform.ActiveNetworkState()
	evicted := t.cache.ReconcileConnectionInfo(info, state)
	telemetry.EntriesEvicted.Add(float64(evicted))
	t.cache.EnsureConnectedStandardEntry(info, state)
	t.cache.EnsureConnectedPasspointEntry(info, state)
	t.publish()
}

func validConnection(info *domain.ConnectionInfo) error {
	if info == nil {
		return nil // no active connection is a valid payload
	}
	if info.IsPasspoint && info.PasspointFQDN == "" {
		return errEmptyFQDN
	}
	if !info.IsPasspoint && info.NetworkID < 0 {
		return errBadNetworkID
	}
	return nil
}

func (t *Tracker) capabilities() domain.SecurityCapabilities {
	return domain.SecurityCapabilities{
		SAE:          t.platform.SupportsSAE(),
		SuiteB:       t.platform.SupportsSuiteB(),
		EnhancedOpen: t.platform.SupportsEnhancedOpen(),
	}
}

// flushConfigs hands copies of the saved-config sets to the persistence sink.
func (t *Tracker) flushConfigs() {
	if t.sink != nil {
		t.sink(t.cache.SavedStandardConfigs(), t.cache.SavedPasspointConfigs())
	}
}

// publish rebuilds the snapshot under the lock, then posts change callbacks
// to the listener goroutine after the lock is released. Count callbacks fire
// only when the counts actually moved; multiple causes inside one cycle
// coalesce into a single set of callbacks.
func (t *Tracker) publish() {
	connected := t.cache.ConnectedInfo()
	visible := t.cache.VisibleInfos()
	savedNetworks := t.cache.SavedNetworkCount()
	savedSubscriptions := t.cache.SavedSubscriptionCount()

	t.mu.Lock()
	t.snapshot = domain.Snapshot{
		Connected:          connected,
		Visible:            visible,
		SavedNetworks:      savedNetworks,
		SavedSubscriptions: savedSubscriptions,
	}
	t.mu.Unlock()

	telemetry.VisibleEntries.Set(float64(len(visible)))

	if t.listener == nil {
		return
	}
	listener := t.listener
	t.notifier.post(listener.OnEntriesChanged)
	if savedNetworks != t.lastSavedNetworks {
		t.lastSavedNetworks = savedNetworks
		t.notifier.post(listener.OnSavedNetworkCountChanged)
	}
	if savedSubscriptions != t.lastSavedSubscriptions {
		t.lastSavedSubscriptions = savedSubscriptions
		t.notifier.post(listener.OnSavedSubscriptionCountChanged)
	}
}

// ConnectedEntry returns a copy of the latest published connected entry, or
// nil. Safe from any goroutine.
func (t *Tracker) ConnectedEntry() *domain.EntryInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.snapshot.Connected == nil {
		return nil
	}
	info := copyEntryInfo(*t.snapshot.Connected)
	return &info
}

// VisibleEntries returns a defensive copy of the latest published sorted
// list. Safe from any goroutine.
func (t *Tracker) VisibleEntries() []domain.EntryInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.EntryInfo, len(t.snapshot.Visible))
	for i, info := range t.snapshot.Visible {
		out[i] = copyEntryInfo(info)
	}
	return out
}

// SavedNetworkCount returns the latest published saved-network count.
func (t *Tracker) SavedNetworkCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot.SavedNetworks
}

// SavedSubscriptionCount returns the latest published subscription count.
func (t *Tracker) SavedSubscriptionCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot.SavedSubscriptions
}

// Snapshot returns a deep copy of the whole published snapshot.
func (t *Tracker) Snapshot() domain.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := domain.Snapshot{
		SavedNetworks:      t.snapshot.SavedNetworks,
		SavedSubscriptions: t.snapshot.SavedSubscriptions,
		Visible:            make([]domain.EntryInfo, len(t.snapshot.Visible)),
	}
	if t.snapshot.Connected != nil {
		info := copyEntryInfo(*t.snapshot.Connected)
		snap.Connected = &info
	}
	for i, info := range t.snapshot.Visible {
		snap.Visible[i] = copyEntryInfo(info)
	}
	return snap
}

func copyEntryInfo(info domain.EntryInfo) domain.EntryInfo {
	out := info
	if info.LinkAddresses != nil {
		out.LinkAddresses = append([]string(nil), info.LinkAddresses...)
	}
	return out
}
