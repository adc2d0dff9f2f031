package draft

// LeaveGuard intercepts attempts to leave the page hosting a dirty form.
// There is one "warn before leaving" hook at a time in the host UI, so the
// manager acquires the guard when the form becomes dirty and releases it the
// moment it is clean again.
type LeaveGuard interface {
	Register(reason string)
	Deregister()
}

// NoopLeaveGuard is used when the host supplies no guard.
type NoopLeaveGuard struct{}

func (NoopLeaveGuard) Register(reason string) {}
func (NoopLeaveGuard) Deregister()            {}

// LogLeaveGuard records guard transitions; useful for portal sessions where
// the actual interception happens client-side.
type LogLeaveGuard struct{}

func (LogLeaveGuard) Register(reason string) {
	draftLogger.Debug().Str("reason", reason).Msg("Leave guard registered")
}

func (LogLeaveGuard) Deregister() {
	draftLogger.Debug().Msg("Leave guard deregistered")
}
