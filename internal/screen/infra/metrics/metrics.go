// Package metrics contains the prometheus metrics exported by the call
// screening daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/haukened/rr-callscreen/internal/screen/domain"
)

const (
	namespace = "callscreen"

	subsystemScreen   = "screen"
	subsystemSettings = "settings"
	subsystemContacts = "contacts"
)

// Screening records decisions, terminations and settings changes. It
// implements screener.Recorder.
type Screening struct {
	decisions    *prometheus.CounterVec
	terminations *prometheus.CounterVec
	settingsFlag *prometheus.GaugeVec
	settingsList *prometheus.GaugeVec
	updatedTime  prometheus.Gauge
	contacts     prometheus.Gauge
}

// NewScreening registers the screening metrics with reg.
func NewScreening(reg prometheus.Registerer) *Screening {
	f := promauto.With(reg)
	return &Screening{
		// decisions is a counter of screened calls labeled by the deciding
		// rule and by whether the call was blocked ("1") or allowed ("0").
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name:      "decisions_total",
			Subsystem: subsystemScreen,
			Namespace: namespace,
			Help:      "The number of screened calls by reason and outcome.",
		}, []string{"reason", "blocked"}),
		terminations: f.NewCounterVec(prometheus.CounterOpts{
			Name:      "terminations_total",
			Subsystem: subsystemScreen,
			Namespace: namespace,
			Help:      "The number of call termination attempts. 1 means success.",
		}, []string{"success"}),
		settingsFlag: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:      "flag",
			Subsystem: subsystemSettings,
			Namespace: namespace,
			Help:      "Active rule flags. 1 means on.",
		}, []string{"flag"}),
		settingsList: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:      "list_entries",
			Subsystem: subsystemSettings,
			Namespace: namespace,
			Help:      "The number of entries in the active blocked lists.",
		}, []string{"list"}),
		updatedTime: f.NewGauge(prometheus.GaugeOpts{
			Name:      "updated_time",
			Subsystem: subsystemSettings,
			Namespace: namespace,
			Help:      "Time when the settings were last replaced.",
		}),
		contacts: f.NewGauge(prometheus.GaugeOpts{
			Name:      "entries",
			Subsystem: subsystemContacts,
			Namespace: namespace,
			Help:      "The number of contacts in the lookup index.",
		}),
	}
}

// ObserveDecision counts one screened call.
func (m *Screening) ObserveDecision(d domain.BlockDecision) {
	m.decisions.WithLabelValues(d.Reason.String(), boolString(d.Blocked)).Inc()
}

// ObserveTermination counts one termination attempt.
func (m *Screening) ObserveTermination(err error) {
	m.terminations.WithLabelValues(boolString(err == nil)).Inc()
}

// ObserveSettings publishes the shape of the active snapshot.
func (m *Screening) ObserveSettings(s domain.RuleSettings) {
	setFlag(m.settingsFlag.WithLabelValues("enabled"), s.Enabled())
	setFlag(m.settingsFlag.WithLabelValues("block_all"), s.BlockAll())
	setFlag(m.settingsFlag.WithLabelValues("block_unknown"), s.BlockUnknown())
	setFlag(m.settingsFlag.WithLabelValues("block_private"), s.BlockPrivate())
	m.settingsList.WithLabelValues("numbers").Set(float64(len(s.BlockedNumbers())))
	m.settingsList.WithLabelValues("prefixes").Set(float64(len(s.BlockedPrefixes())))
	m.updatedTime.SetToCurrentTime()
}

// SetContacts publishes the size of the contact index.
func (m *Screening) SetContacts(n uint64) {
	m.contacts.Set(float64(n))
}

func setFlag(g prometheus.Gauge, on bool) {
	if on {
		g.Set(1)
	} else {
		g.Set(0)
	}
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
