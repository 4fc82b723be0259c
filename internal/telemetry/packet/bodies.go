package packet

// Body is one decoded record of a packet. Every variant is a plain struct
// whose exported fields carry `col` tags naming their output columns.
type Body interface {
	Kind() Kind
}

// Motion is one car's world-space motion state.
type Motion struct {
	WorldPositionX     float32  `col:"world_position_x"`
	WorldPositionY     float32  `col:"world_position_y"`
	WorldPositionZ     float32  `col:"world_position_z"`
	WorldVelocityX     float32  `col:"world_velocity_x"`
	WorldVelocityY     float32  `col:"world_velocity_y"`
	WorldVelocityZ     float32  `col:"world_velocity_z"`
	_                  [12]byte // normalised forward/right direction vectors
	GForceLateral      float32  `col:"g_force_lateral"`
	GForceLongitudinal float32  `col:"g_force_longitudinal"`
	GForceVertical     float32  `col:"g_force_vertical"`
	Yaw                float32  `col:"yaw"`
	Pitch              float32  `col:"pitch"`
	Roll               float32  `col:"roll"`
}

// LapData is one car's lap timing and race state.
type LapData struct {
	LastLapTimeMS          uint32       `col:"last_lap_time_ms"`
	CurrentLapTimeMS       uint32       `col:"current_lap_time_ms"`
	Sector1TimeMSPart      uint16       `col:"sector1_time_ms"`
	Sector1TimeMinutesPart uint8        `col:"sector1_time_minutes"`
	Sector2TimeMSPart      uint16       `col:"sector2_time_ms"`
	Sector2TimeMinutesPart uint8        `col:"sector2_time_minutes"`
	_                      [6]byte      // delta to car in front and to race leader
	LapDistance            float32      `col:"lap_distance"`
	TotalDistance          float32      `col:"total_distance"`
	SafetyCarDelta         float32      `col:"safety_car_delta"`
	CarPosition            uint8        `col:"car_position"`
	CurrentLapNum          uint8        `col:"current_lap_num"`
	PitStatus              PitStatus    `col:"pit_status"`
	NumPitStops            uint8        `col:"num_pit_stops"`
	Sector                 uint8        `col:"sector"`
	CurrentLapInvalid      uint8        `col:"current_lap_invalid"`
	Penalties              uint8        `col:"penalties"`
	TotalWarnings          uint8        `col:"total_warnings"`
	CornerCuttingWarnings  uint8        `col:"corner_cutting_warnings"`
	_                      [2]byte      // unserved drive-through and stop-go counts
	GridPosition           uint8        `col:"grid_position"`
	DriverStatus           uint8        `col:"driver_status"`
	ResultStatus           ResultStatus `col:"result_status"`
	PitLaneTimerActive     uint8        `col:"pit_lane_timer_active"`
	PitLaneTimeInLaneMS    uint16       `col:"pit_lane_time_in_lane_ms"`
	PitStopTimerMS         uint16       `col:"pit_stop_timer_ms"`
	_                      [1]byte      // pit stop should serve penalty
	SpeedTrapFastestSpeed  float32      `col:"speed_trap_fastest_speed"`
	SpeedTrapFastestLap    uint8        `col:"speed_trap_fastest_lap"`
}

// CarTelemetry is one car's driver inputs and component temperatures.
type CarTelemetry struct {
	Speed                   uint16     `col:"speed"`
	Throttle                float32    `col:"throttle"`
	Steer                   float32    `col:"steer"`
	Brake                   float32    `col:"brake"`
	Clutch                  uint8      `col:"clutch"`
	Gear                    int8       `col:"gear"`
	EngineRPM               uint16     `col:"engine_rpm"`
	DRS                     uint8      `col:"drs"`
	RevLightsPercent        uint8      `col:"rev_lights_percent"`
	_                       [2]byte    // rev lights bit value
	BrakesTemperature       [4]uint16  `col:"brakes_temperature,wheels"`
	TyresSurfaceTemperature [4]uint8   `col:"tyres_surface_temperature,wheels"`
	TyresInnerTemperature   [4]uint8   `col:"tyres_inner_temperature,wheels"`
	EngineTemperature       uint16     `col:"engine_temperature"`
	TyresPressure           [4]float32 `col:"tyres_pressure,wheels"`
	SurfaceType             [4]uint8   `col:"surface_type,wheels"`
}

// CarStatus is one car's fuel, tyre and energy state.
type CarStatus struct {
	TractionControl         uint8          `col:"traction_control"`
	AntiLockBrakes          uint8          `col:"anti_lock_brakes"`
	FuelMix                 uint8          `col:"fuel_mix"`
	FrontBrakeBias          uint8          `col:"front_brake_bias"`
	PitLimiterStatus        uint8          `col:"pit_limiter_status"`
	FuelInTank              float32        `col:"fuel_in_tank"`
	FuelCapacity            float32        `col:"fuel_capacity"`
	FuelRemainingLaps       float32        `col:"fuel_remaining_laps"`
	MaxRPM                  uint16         `col:"max_rpm"`
	IdleRPM                 uint16         `col:"idle_rpm"`
	MaxGears                uint8          `col:"max_gears"`
	DRSAllowed              uint8          `col:"drs_allowed"`
	DRSActivationDistance   uint16         `col:"drs_activation_distance"`
	ActualTyreCompound      ActualCompound `col:"actual_tyre_compound"`
	VisualTyreCompound      VisualCompound `col:"visual_tyre_compound"`
	TyresAgeLaps            uint8          `col:"tyres_age_laps"`
	VehicleFIAFlags         int8           `col:"vehicle_fia_flags"`
	EnginePowerICE          float32        `col:"engine_power_ice"`
	EnginePowerMGUK         float32        `col:"engine_power_mguk"`
	ERSStoreEnergy          float32        `col:"ers_store_energy"`
	ERSDeployMode           uint8          `col:"ers_deploy_mode"`
	ERSHarvestedThisLapMGUK float32        `col:"ers_harvested_this_lap_mguk"`
	ERSHarvestedThisLapMGUH float32        `col:"ers_harvested_this_lap_mguh"`
	ERSDeployedThisLap      float32        `col:"ers_deployed_this_lap"`
	NetworkPaused           uint8          `col:"network_paused"`
}

// CarDamage is one car's wear and damage state. TyreBlisters is zero for
// 2024 packets, which do not carry it.
type CarDamage struct {
	TyresWear            [4]float32 `col:"tyres_wear,wheels"`
	TyresDamage          [4]uint8   `col:"tyres_damage,wheels"`
	BrakesDamage         [4]uint8   `col:"brakes_damage,wheels"`
	TyreBlisters         [4]uint8   `col:"tyre_blisters,wheels"`
	FrontLeftWingDamage  uint8      `col:"front_left_wing_damage"`
	FrontRightWingDamage uint8      `col:"front_right_wing_damage"`
	RearWingDamage       uint8      `col:"rear_wing_damage"`
	FloorDamage          uint8      `col:"floor_damage"`
	DiffuserDamage       uint8      `col:"diffuser_damage"`
	SidepodDamage        uint8      `col:"sidepod_damage"`
	DRSFault             uint8      `col:"drs_fault"`
	ERSFault             uint8      `col:"ers_fault"`
	GearBoxDamage        uint8      `col:"gear_box_damage"`
	EngineDamage         uint8      `col:"engine_damage"`
	_                    [6]byte    // power unit component wear
	EngineBlown          uint8      `col:"engine_blown"`
	EngineSeized         uint8      `col:"engine_seized"`
}

// CarSetup is one car's setup sheet.
type CarSetup struct {
	FrontWing              uint8   `col:"front_wing"`
	RearWing               uint8   `col:"rear_wing"`
	OnThrottle             uint8   `col:"on_throttle"`
	OffThrottle            uint8   `col:"off_throttle"`
	FrontCamber            float32 `col:"front_camber"`
	RearCamber             float32 `col:"rear_camber"`
	FrontToe               float32 `col:"front_toe"`
	RearToe                float32 `col:"rear_toe"`
	FrontSuspension        uint8   `col:"front_suspension"`
	RearSuspension         uint8   `col:"rear_suspension"`
	FrontAntiRollBar       uint8   `col:"front_anti_roll_bar"`
	RearAntiRollBar        uint8   `col:"rear_anti_roll_bar"`
	FrontSuspensionHeight  uint8   `col:"front_suspension_height"`
	RearSuspensionHeight   uint8   `col:"rear_suspension_height"`
	BrakePressure          uint8   `col:"brake_pressure"`
	BrakeBias              uint8   `col:"brake_bias"`
	EngineBraking          uint8   `col:"engine_braking"`
	RearLeftTyrePressure   float32 `col:"rear_left_tyre_pressure"`
	RearRightTyrePressure  float32 `col:"rear_right_tyre_pressure"`
	FrontLeftTyrePressure  float32 `col:"front_left_tyre_pressure"`
	FrontRightTyrePressure float32 `col:"front_right_tyre_pressure"`
	Ballast                uint8   `col:"ballast"`
	FuelLoad               float32 `col:"fuel_load"`
}

// FinalClassification is one car's end-of-session result. ResultReason is
// zero for 2024 packets.
type FinalClassification struct {
	Position          uint8        `col:"position"`
	NumLaps           uint8        `col:"num_laps"`
	GridPosition      uint8        `col:"grid_position"`
	Points            uint8        `col:"points"`
	NumPitStops       uint8        `col:"num_pit_stops"`
	ResultStatus      ResultStatus `col:"result_status"`
	ResultReason      uint8        `col:"result_reason"`
	BestLapTimeMS     uint32       `col:"best_lap_time_ms"`
	TotalRaceTime     float64      `col:"total_race_time"`
	PenaltiesTime     uint8        `col:"penalties_time"`
	NumPenalties      uint8        `col:"num_penalties"`
	NumTyreStints     uint8        `col:"num_tyre_stints"`
	TyreStintsActual  [8]uint8     `col:"tyre_stints_actual"`
	TyreStintsVisual  [8]uint8     `col:"tyre_stints_visual"`
	TyreStintsEndLaps [8]uint8     `col:"tyre_stints_end_laps"`
}

// Participant is one car's driver identity.
type Participant struct {
	AIControlled    uint8  `col:"ai_controlled"`
	DriverID        uint8  `col:"driver_id"`
	NetworkID       uint8  `col:"network_id"`
	TeamID          uint8  `col:"team_id"`
	MyTeam          uint8  `col:"my_team"`
	RaceNumber      uint8  `col:"race_number"`
	Nationality     uint8  `col:"nationality"`
	Name            string `col:"name"`
	YourTelemetry   uint8  `col:"your_telemetry"`
	ShowOnlineNames uint8  `col:"show_online_names"`
	TechLevel       uint16 `col:"tech_level"`
	Platform        uint8  `col:"platform"`
}

// Session is the leading, fixed part of the Session packet.
type Session struct {
	Weather             uint8           `col:"weather"`
	TrackTemperature    int8            `col:"track_temperature"`
	AirTemperature      int8            `col:"air_temperature"`
	TotalLaps           uint8           `col:"total_laps"`
	TrackLength         uint16          `col:"track_length"`
	SessionType         uint8           `col:"session_type"`
	TrackID             int8            `col:"track_id"`
	Formula             uint8           `col:"formula"`
	SessionTimeLeft     uint16          `col:"session_time_left"`
	SessionDuration     uint16          `col:"session_duration"`
	PitSpeedLimit       uint8           `col:"pit_speed_limit"`
	GamePaused          uint8           `col:"game_paused"`
	IsSpectating        uint8           `col:"is_spectating"`
	SpectatorCarIndex   uint8           `col:"spectator_car_index"`
	SliProNativeSupport uint8           `col:"sli_pro_native_support"`
	NumMarshalZones     uint8           `col:"num_marshal_zones"`
	_                   [105]byte       // 21 marshal zones of (f32 start, i8 flag)
	SafetyCarStatus     SafetyCarStatus `col:"safety_car_status"`
	NetworkGame         uint8           `col:"network_game"`
}

// MotionEx is the player car's extended physics state.
type MotionEx struct {
	SuspensionPosition     [4]float32 `col:"suspension_position,wheels"`
	SuspensionVelocity     [4]float32 `col:"suspension_velocity,wheels"`
	SuspensionAcceleration [4]float32 `col:"suspension_acceleration,wheels"`
	WheelSpeed             [4]float32 `col:"wheel_speed,wheels"`
	WheelSlipRatio         [4]float32 `col:"wheel_slip_ratio,wheels"`
	WheelSlipAngle         [4]float32 `col:"wheel_slip_angle,wheels"`
	WheelLatForce          [4]float32 `col:"wheel_lat_force,wheels"`
	WheelLongForce         [4]float32 `col:"wheel_long_force,wheels"`
	HeightOfCOGAboveGround float32    `col:"height_of_cog_above_ground"`
	LocalVelocityX         float32    `col:"local_velocity_x"`
	LocalVelocityY         float32    `col:"local_velocity_y"`
	LocalVelocityZ         float32    `col:"local_velocity_z"`
	AngularVelocityX       float32    `col:"angular_velocity_x"`
	AngularVelocityY       float32    `col:"angular_velocity_y"`
	AngularVelocityZ       float32    `col:"angular_velocity_z"`
	AngularAccelerationX   float32    `col:"angular_acceleration_x"`
	AngularAccelerationY   float32    `col:"angular_acceleration_y"`
	AngularAccelerationZ   float32    `col:"angular_acceleration_z"`
	FrontWheelsAngle       float32    `col:"front_wheels_angle"`
}

// Event is a session event. Code is the four-letter event code; the two
// detail bytes are the start of the event's detail block, which for most
// car-specific events begins with the vehicle index.
type Event struct {
	Code    string `col:"event_code"`
	Detail0 uint8  `col:"detail0"`
	Detail1 uint8  `col:"detail1"`
}

func (*Motion) Kind() Kind              { return KindMotion }
func (*LapData) Kind() Kind             { return KindLapData }
func (*CarTelemetry) Kind() Kind        { return KindCarTelemetry }
func (*CarStatus) Kind() Kind           { return KindCarStatus }
func (*CarDamage) Kind() Kind           { return KindCarDamage }
func (*CarSetup) Kind() Kind            { return KindCarSetups }
func (*FinalClassification) Kind() Kind { return KindFinalClassification }
func (*Participant) Kind() Kind         { return KindParticipants }
func (*Session) Kind() Kind             { return KindSession }
func (*MotionEx) Kind() Kind            { return KindMotionEx }
func (*Event) Kind() Kind               { return KindEvent }
