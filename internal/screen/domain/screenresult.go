package domain

// ScreenResult reports what happened to one screened call.
type ScreenResult struct {
	Call       IncomingCall
	Decision   BlockDecision
	Terminated bool  // the terminator accepted the call for termination
	Err        error // termination failure, nil when allowed or terminated
}
