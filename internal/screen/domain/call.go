package domain

import "time"

// IncomingCall is a single call event handed over by the platform.
// It has no persistent identity and is screened once.
type IncomingCall struct {
	Caller     CallerID
	ReceivedAt time.Time
}

// NewIncomingCall constructs an IncomingCall.
func NewIncomingCall(caller CallerID, receivedAt time.Time) IncomingCall {
	return IncomingCall{Caller: caller, ReceivedAt: receivedAt}
}
