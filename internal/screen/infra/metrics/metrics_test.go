package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-callscreen/internal/screen/domain"
)

// value returns the value of the metric called name whose labels include
// every pair in labels.
func value(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func TestScreening_ObserveDecision(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewScreening(reg)

	m.ObserveDecision(domain.BlockDecision{Blocked: true, Reason: domain.ReasonPrefix})
	m.ObserveDecision(domain.BlockDecision{Blocked: true, Reason: domain.ReasonPrefix})
	m.ObserveDecision(domain.BlockDecision{Blocked: false, Reason: domain.ReasonPrivate})

	assert.Equal(t, 2.0, value(t, reg, "callscreen_screen_decisions_total", map[string]string{"reason": "prefix", "blocked": "1"}))
	assert.Equal(t, 1.0, value(t, reg, "callscreen_screen_decisions_total", map[string]string{"reason": "private", "blocked": "0"}))
}

func TestScreening_ObserveTermination(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewScreening(reg)

	m.ObserveTermination(nil)
	m.ObserveTermination(errors.New("failed"))
	m.ObserveTermination(errors.New("failed again"))

	assert.Equal(t, 1.0, value(t, reg, "callscreen_screen_terminations_total", map[string]string{"success": "1"}))
	assert.Equal(t, 2.0, value(t, reg, "callscreen_screen_terminations_total", map[string]string{"success": "0"}))
}

func TestScreening_ObserveSettings(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewScreening(reg)

	m.ObserveSettings(domain.NewRuleSettings(domain.RuleSettingsOptions{
		Enabled:         true,
		BlockPrivate:    true,
		BlockedNumbers:  []string{"1", "2", "3"},
		BlockedPrefixes: []string{"44"},
	}))

	assert.Equal(t, 1.0, value(t, reg, "callscreen_settings_flag", map[string]string{"flag": "enabled"}))
	assert.Equal(t, 0.0, value(t, reg, "callscreen_settings_flag", map[string]string{"flag": "block_all"}))
	assert.Equal(t, 0.0, value(t, reg, "callscreen_settings_flag", map[string]string{"flag": "block_unknown"}))
	assert.Equal(t, 1.0, value(t, reg, "callscreen_settings_flag", map[string]string{"flag": "block_private"}))
	assert.Equal(t, 3.0, value(t, reg, "callscreen_settings_list_entries", map[string]string{"list": "numbers"}))
	assert.Equal(t, 1.0, value(t, reg, "callscreen_settings_list_entries", map[string]string{"list": "prefixes"}))
	assert.Greater(t, value(t, reg, "callscreen_settings_updated_time", nil), 0.0)
}

func TestScreening_SetContacts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewScreening(reg)
	m.SetContacts(42)
	assert.Equal(t, 42.0, value(t, reg, "callscreen_contacts_entries", nil))
}

func TestNewScreening_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewScreening(reg)
	assert.Panics(t, func() { NewScreening(reg) })
}
