package app

import "time"

// Outcome labels reported through Telemetry.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
	OutcomeRestored = "restored"
	OutcomeAbsent   = "absent"
	OutcomeCorrupt  = "corrupt"
	OutcomeStale    = "stale"
)

// Telemetry receives counters from the session and dashboard flows.
type Telemetry interface {
	LoginAttempt(outcome string)
	Refresh(outcome string, elapsed time.Duration)
	Restore(outcome string)
	ConsolesActive(n int)
}

type NopTelemetry struct{}

func (NopTelemetry) LoginAttempt(string)           {}
func (NopTelemetry) Refresh(string, time.Duration) {}
func (NopTelemetry) Restore(string)                {}
func (NopTelemetry) ConsolesActive(int)            {}
