package packet

// Wire records whose layout differs from the body type they decode into.

type carDamage2024 struct {
	TyresWear            [4]float32
	TyresDamage          [4]uint8
	BrakesDamage         [4]uint8
	FrontLeftWingDamage  uint8
	FrontRightWingDamage uint8
	RearWingDamage       uint8
	FloorDamage          uint8
	DiffuserDamage       uint8
	SidepodDamage        uint8
	DRSFault             uint8
	ERSFault             uint8
	GearBoxDamage        uint8
	EngineDamage         uint8
	_                    [6]byte
	EngineBlown          uint8
	EngineSeized         uint8
}

func (w *carDamage2024) body() *CarDamage {
	return &CarDamage{
		TyresWear:            w.TyresWear,
		TyresDamage:          w.TyresDamage,
		BrakesDamage:         w.BrakesDamage,
		FrontLeftWingDamage:  w.FrontLeftWingDamage,
		FrontRightWingDamage: w.FrontRightWingDamage,
		RearWingDamage:       w.RearWingDamage,
		FloorDamage:          w.FloorDamage,
		DiffuserDamage:       w.DiffuserDamage,
		SidepodDamage:        w.SidepodDamage,
		DRSFault:             w.DRSFault,
		ERSFault:             w.ERSFault,
		GearBoxDamage:        w.GearBoxDamage,
		EngineDamage:         w.EngineDamage,
		EngineBlown:          w.EngineBlown,
		EngineSeized:         w.EngineSeized,
	}
}

type finalClassification2024 struct {
	Position          uint8
	NumLaps           uint8
	GridPosition      uint8
	Points            uint8
	NumPitStops       uint8
	ResultStatus      ResultStatus
	BestLapTimeMS     uint32
	TotalRaceTime     float64
	PenaltiesTime     uint8
	NumPenalties      uint8
	NumTyreStints     uint8
	TyreStintsActual  [8]uint8
	TyreStintsVisual  [8]uint8
	TyreStintsEndLaps [8]uint8
}

func (w *finalClassification2024) body() *FinalClassification {
	return &FinalClassification{
		Position:          w.Position,
		NumLaps:           w.NumLaps,
		GridPosition:      w.GridPosition,
		Points:            w.Points,
		NumPitStops:       w.NumPitStops,
		ResultStatus:      w.ResultStatus,
		BestLapTimeMS:     w.BestLapTimeMS,
		TotalRaceTime:     w.TotalRaceTime,
		PenaltiesTime:     w.PenaltiesTime,
		NumPenalties:      w.NumPenalties,
		NumTyreStints:     w.NumTyreStints,
		TyreStintsActual:  w.TyreStintsActual,
		TyreStintsVisual:  w.TyreStintsVisual,
		TyreStintsEndLaps: w.TyreStintsEndLaps,
	}
}

type participant2024 struct {
	AIControlled    uint8
	DriverID        uint8
	NetworkID       uint8
	TeamID          uint8
	MyTeam          uint8
	RaceNumber      uint8
	Nationality     uint8
	Name            [48]byte
	YourTelemetry   uint8
	ShowOnlineNames uint8
	TechLevel       uint16
	Platform        uint8
}

func (w *participant2024) body() *Participant {
	return &Participant{
		AIControlled:    w.AIControlled,
		DriverID:        w.DriverID,
		NetworkID:       w.NetworkID,
		TeamID:          w.TeamID,
		MyTeam:          w.MyTeam,
		RaceNumber:      w.RaceNumber,
		Nationality:     w.Nationality,
		Name:            decodeText(w.Name[:]),
		YourTelemetry:   w.YourTelemetry,
		ShowOnlineNames: w.ShowOnlineNames,
		TechLevel:       w.TechLevel,
		Platform:        w.Platform,
	}
}

// participant2025 shortens the name and appends livery colours.
type participant2025 struct {
	AIControlled    uint8
	DriverID        uint8
	NetworkID       uint8
	TeamID          uint8
	MyTeam          uint8
	RaceNumber      uint8
	Nationality     uint8
	Name            [32]byte
	YourTelemetry   uint8
	ShowOnlineNames uint8
	TechLevel       uint16
	Platform        uint8
	_               [13]byte // livery colour count and four RGB colours
}

func (w *participant2025) body() *Participant {
	p := (&participant2024{
		AIControlled:    w.AIControlled,
		DriverID:        w.DriverID,
		NetworkID:       w.NetworkID,
		TeamID:          w.TeamID,
		MyTeam:          w.MyTeam,
		RaceNumber:      w.RaceNumber,
		Nationality:     w.Nationality,
		YourTelemetry:   w.YourTelemetry,
		ShowOnlineNames: w.ShowOnlineNames,
		TechLevel:       w.TechLevel,
		Platform:        w.Platform,
	}).body()
	p.Name = decodeText(w.Name[:])
	return p
}

type eventWire struct {
	Code   [4]byte
	Detail [2]uint8
}

func (w *eventWire) body() *Event {
	return &Event{Code: decodeText(w.Code[:]), Detail0: w.Detail[0], Detail1: w.Detail[1]}
}
