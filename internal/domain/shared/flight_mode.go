package shared

// FlightMode is the engine mode the next departure uses. Routines fly
// CRUISE except probes, which have no tank and always BURN.
type FlightMode string

const (
	FlightModeCruise  FlightMode = "CRUISE"
	FlightModeDrift   FlightMode = "DRIFT"
	FlightModeBurn    FlightMode = "BURN"
	FlightModeStealth FlightMode = "STEALTH"
)
