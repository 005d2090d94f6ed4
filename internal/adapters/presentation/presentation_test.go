package presentation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
)

func TestSignalLevel_Bounds(t *testing.T) {
	p := New()

	assert.Equal(t, 0, p.SignalLevel(-120))
	assert.Equal(t, 0, p.SignalLevel(minRSSI))
	assert.Equal(t, p.MaxSignalLevel(), p.SignalLevel(maxRSSI))
	assert.Equal(t, p.MaxSignalLevel(), p.SignalLevel(-30))
}

func TestSignalLevel_Monotonic(t *testing.T) {
	p := New()
	prev := -1
	for rssi := -110; rssi <= -40; rssi++ {
		level := p.SignalLevel(rssi)
		assert.GreaterOrEqual(t, level, prev, "level must not drop as rssi improves (rssi=%d)", rssi)
		assert.GreaterOrEqual(t, level, 0)
		assert.LessOrEqual(t, level, p.MaxSignalLevel())
		prev = level
	}
}

func TestSummary(t *testing.T) {
	p := New()

	assert.Equal(t, "Connected", p.Summary(domain.EntryInfo{
		ConnectedState: domain.StateConnected,
	}))
	assert.Equal(t, "Connecting...", p.Summary(domain.EntryInfo{
		ConnectedState: domain.StateConnecting,
	}))
	assert.Equal(t, "Available via Passpoint", p.Summary(domain.EntryInfo{
		ConnectedState: domain.StateDisconnected,
		Passpoint:      true,
	}))
	assert.Equal(t, "Saved (WPA/WPA2)", p.Summary(domain.EntryInfo{
		ConnectedState: domain.StateDisconnected,
		Saved:          true,
		Security:       domain.SecurityPSK,
	}))
	assert.Equal(t, "WPA3", p.Summary(domain.EntryInfo{
		ConnectedState: domain.StateDisconnected,
		Security:       domain.SecuritySAE,
	}))
	assert.Equal(t, "Open", p.Summary(domain.EntryInfo{
		ConnectedState: domain.StateDisconnected,
		Security:       domain.SecurityOpen,
	}))
}
