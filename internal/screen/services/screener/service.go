package screener

import (
	"context"

	"github.com/haukened/rr-callscreen/internal/screen/common/clock"
	"github.com/haukened/rr-callscreen/internal/screen/common/log"
	"github.com/haukened/rr-callscreen/internal/screen/domain"
)

// Service sits between the platform call-event source and the Engine. It
// owns everything the Engine must not do: logging, telemetry, and handing
// blocked calls to the terminator.
type Service struct {
	clock      clock.Clock
	engine     *Engine
	logger     log.Logger
	recorder   Recorder
	terminator CallTerminator
}

type ServiceOptions struct {
	Clock      clock.Clock
	Engine     *Engine
	Logger     log.Logger
	Recorder   Recorder
	Terminator CallTerminator
}

func NewService(opts ServiceOptions) *Service {
	s := &Service{
		clock:      opts.Clock,
		engine:     opts.Engine,
		logger:     opts.Logger,
		recorder:   opts.Recorder,
		terminator: opts.Terminator,
	}
	if s.clock == nil {
		s.clock = clock.RealClock{}
	}
	if s.logger == nil {
		s.logger = log.NewNoopLogger()
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	return s
}

// NewCall stamps caller with the service clock.
func (s *Service) NewCall(caller domain.CallerID) domain.IncomingCall {
	return domain.NewIncomingCall(caller, s.clock.Now())
}

// Screen decides a single call and, when it is blocked, asks the terminator
// to end it. A termination failure is logged and returned in the result.
func (s *Service) Screen(ctx context.Context, call domain.IncomingCall) domain.ScreenResult {
	fields := map[string]any{"caller_id": call.Caller.String()}
	s.logger.Debug(fields, "Incoming call")

	dec := s.engine.Decide(call.Caller)
	s.recorder.ObserveDecision(dec)

	res := domain.ScreenResult{Call: call, Decision: dec}
	if !dec.Blocked {
		s.logger.Debug(decisionFields(call, dec), "Allowing call")
		return res
	}

	s.logger.Info(decisionFields(call, dec), "Blocking call")
	if s.terminator == nil {
		s.logger.Warn(fields, "No call terminator configured, call not ended")
		return res
	}

	err := s.terminator.Terminate(ctx, call)
	s.recorder.ObserveTermination(err)
	if err != nil {
		f := decisionFields(call, dec)
		f["error"] = err.Error()
		s.logger.Error(f, "Error blocking call")
		res.Err = err
		return res
	}
	res.Terminated = true
	return res
}

// UpdateSettings swaps the engine snapshot and logs the new configuration.
func (s *Service) UpdateSettings(settings domain.RuleSettings) {
	s.engine.UpdateSettings(settings)
	s.recorder.ObserveSettings(settings)
	s.logger.Info(settings.Fields(), "Settings updated")
}

// Settings returns the active snapshot.
func (s *Service) Settings() domain.RuleSettings {
	return s.engine.Settings()
}

func decisionFields(call domain.IncomingCall, dec domain.BlockDecision) map[string]any {
	f := map[string]any{
		"caller_id": call.Caller.String(),
		"reason":    dec.Reason.String(),
	}
	if dec.MatchedRule != "" {
		f["rule"] = dec.MatchedRule
	}
	return f
}
