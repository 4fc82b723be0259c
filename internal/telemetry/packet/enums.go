package packet

import "fmt"

// PitStatus is LapData's pit lane state.
type PitStatus uint8

const (
	PitNone PitStatus = iota
	PitPitting
	PitInPitArea
)

func (s PitStatus) String() string {
	switch s {
	case PitNone:
		return "none"
	case PitPitting:
		return "pitting"
	case PitInPitArea:
		return "in_pit_area"
	}
	return fmt.Sprintf("pit_status_%d", uint8(s))
}

// ResultStatus is a car's classification state in LapData and FinalClassification.
type ResultStatus uint8

const (
	ResultInvalid ResultStatus = iota
	ResultInactive
	ResultActive
	ResultFinished
	ResultDidNotFinish
	ResultDisqualified
	ResultNotClassified
	ResultRetired
)

var resultNames = [...]string{"invalid", "inactive", "active", "finished", "dnf", "dsq", "not_classified", "retired"}

func (s ResultStatus) String() string {
	if int(s) < len(resultNames) {
		return resultNames[s]
	}
	return fmt.Sprintf("result_status_%d", uint8(s))
}

// Retired reports whether the status ends a car's race early.
func (s ResultStatus) Retired() bool {
	return s == ResultDidNotFinish || s == ResultRetired
}

// SafetyCarStatus is the Session packet's neutralisation state.
type SafetyCarStatus uint8

const (
	SafetyCarNone SafetyCarStatus = iota
	SafetyCarFull
	SafetyCarVirtual
	SafetyCarFormationLap
)

func (s SafetyCarStatus) String() string {
	switch s {
	case SafetyCarNone:
		return "none"
	case SafetyCarFull:
		return "SC"
	case SafetyCarVirtual:
		return "VSC"
	case SafetyCarFormationLap:
		return "formation_lap"
	}
	return fmt.Sprintf("safety_car_%d", uint8(s))
}

// ActualCompound is the tyre compound id under the actual (C0-C6) numbering.
type ActualCompound uint8

// VisualCompound is the tyre compound id under the visual (soft/medium/hard) numbering.
type VisualCompound uint8

var actualNames = map[ActualCompound]string{
	16: "C5", 17: "C4", 18: "C3", 19: "C2", 20: "C1", 21: "C0", 22: "C6",
	7: "inter", 8: "wet", 9: "dry", 10: "wet", 11: "super_soft", 12: "soft", 13: "medium", 14: "hard", 15: "wet",
}

var visualNames = map[VisualCompound]string{
	16: "soft", 17: "medium", 18: "hard", 7: "inter", 8: "wet",
	15: "wet", 19: "super_soft", 20: "soft", 21: "medium", 22: "hard",
}

func (c ActualCompound) String() string {
	if n, ok := actualNames[c]; ok {
		return n
	}
	return fmt.Sprintf("actual_%d", uint8(c))
}

func (c VisualCompound) String() string {
	if n, ok := visualNames[c]; ok {
		return n
	}
	return fmt.Sprintf("visual_%d", uint8(c))
}
