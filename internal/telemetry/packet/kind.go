package packet

import "fmt"

// Kind is the packet id carried in the header.
type Kind uint8

const (
	KindMotion Kind = iota
	KindSession
	KindLapData
	KindEvent
	KindParticipants
	KindCarSetups
	KindCarTelemetry
	KindCarStatus
	KindFinalClassification
	KindLobbyInfo
	KindCarDamage
	KindSessionHistory
	KindTyreSets
	KindMotionEx
	KindTimeTrial
	KindLapPositions

	numKinds
)

// kindNames double as file prefixes and table names.
var kindNames = [numKinds]string{
	KindMotion:              "motion",
	KindSession:             "session",
	KindLapData:             "lap_data",
	KindEvent:               "event",
	KindParticipants:        "participants",
	KindCarSetups:           "car_setups",
	KindCarTelemetry:        "telemetry",
	KindCarStatus:           "car_status",
	KindFinalClassification: "final_classification",
	KindLobbyInfo:           "lobby_info",
	KindCarDamage:           "car_damage",
	KindSessionHistory:      "session_history",
	KindTyreSets:            "tyre_sets",
	KindMotionEx:            "motion_ex",
	KindTimeTrial:           "time_trial",
	KindLapPositions:        "lap_positions",
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("kind_%d", uint8(k))
}

// Valid reports whether k is a packet id defined by the protocol.
func (k Kind) Valid() bool {
	return k < numKinds
}

// ParseKind maps a kind name (as returned by String) back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Kinds returns every kind that has a body decoder, in packet id order.
func Kinds() []Kind {
	var out []Kind
	for k := Kind(0); k < numKinds; k++ {
		if _, ok := layouts[Format2025][k]; ok {
			out = append(out, k)
		}
	}
	return out
}
