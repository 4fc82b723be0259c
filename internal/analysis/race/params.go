package race

import (
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/samber/lo"

	"github.com/banshee-data/pitwall/internal/analysis/strategy"
	"github.com/banshee-data/pitwall/internal/kv"
	"github.com/banshee-data/pitwall/internal/telemetry/lookup"
)

// Pit lane defaults in seconds, used when no stop was observed.
const (
	defaultPitInLap  = 5.0
	defaultPitOutLap = 15.0
)

// Groups returns the simulator parameter groups in file order.
func (r *Report) Groups() []kv.Group {
	return []kv.Group{
		{Section: "RACE_PARS", Key: "race_pars", Value: r.raceParams()},
		{Section: "TRACK_PARS", Key: "track_pars", Value: r.trackParams()},
		{Section: "CAR_PARS", Key: "car_pars", Value: r.carParams()},
		{Section: "TIRESET_PARS", Key: "tireset_pars", Value: r.tiresetParams()},
		{Section: "DRIVER_PARS", Key: "driver_pars", Value: r.driverParams()},
		{Section: "MONTE_CARLO_PARS", Key: "monte_carlo_pars", Value: r.monteCarloParams()},
		{Section: "EVENT_PARS", Key: "event_pars", Value: r.eventParams()},
		{Section: "VSE_PARS", Key: "vse_pars", Value: r.vseParams()},
	}
}

func (r *Report) raceParams() *kv.Map {
	initials := lo.Map(r.Drivers, func(d Driver, _ int) string { return d.Initials })
	return kv.New().
		Set("season", r.Options.Season).
		Set("tot_no_laps", r.TotalLaps()).
		Set("min_t_dist", kv.Float(0.5)).
		Set("min_t_dist_sc", kv.Float(0.8)).
		Set("t_duel", kv.Float(0.3)).
		Set("t_overtake_loser", kv.Float(0.3)).
		Set("use_drs", true).
		Set("drs_window", kv.Float(1.0)).
		Set("drs_allow_lap", 3).
		Set("drs_sc_delay", 2).
		Set("participants", initials)
}

// allLapTimes pools every car's valid lap times.
func (r *Report) allLapTimes() []float64 {
	var all []float64
	for _, idx := range r.CarIndices() {
		all = append(all, r.Cars[idx].LapTimes...)
	}
	return all
}

func (r *Report) trackParams() *kv.Map {
	m := kv.New().Set("name", r.Session.TrackName)
	laps := r.allLapTimes()
	if len(laps) == 0 {
		return m
	}
	sort.Float64s(laps)
	tq := laps[0]
	fastest := laps[:max(1, len(laps)/10)]
	gap := lo.Mean(fastest) - tq

	m.Set("t_q", kv.Round(tq, 3)).
		Set("t_gap_racepace", kv.Round(max(0.5, gap), 3)).
		Set("t_lap_sens_mass", kv.Float(0.03)).
		Set("t_pit_tirechange_min", kv.Float(2.0))
	r.setPitDriveTimes(m)
	return m.
		Set("pits_aft_finishline", true).
		Set("t_loss_pergridpos", kv.Round(tq*0.0015, 3)).
		Set("t_loss_firstlap", kv.Round(tq*0.025, 3)).
		Set("t_gap_overtake", kv.Float(1.2)).
		Set("t_gap_overtake_vel", kv.Float(-0.035)).
		Set("t_drseffect", kv.Float(-0.5)).
		Set("mult_t_lap_sc", kv.Float(1.6)).
		Set("mult_t_lap_fcy", kv.Float(1.4))
}

// setPitDriveTimes adds pit lane losses from the median observed stop, with
// caution variants scaled from it.
func (r *Report) setPitDriveTimes(m *kv.Map) {
	var in, out []float64
	for _, idx := range r.CarIndices() {
		for _, s := range r.Cars[idx].PitStops {
			in = append(in, s.InLapLoss)
			out = append(out, s.OutLapLoss)
		}
	}
	if len(in) == 0 {
		m.Set("t_pitdrive_inlap", kv.Float(defaultPitInLap)).
			Set("t_pitdrive_outlap", kv.Float(defaultPitOutLap)).
			Set("t_pitdrive_inlap_fcy", kv.Float(2.5)).
			Set("t_pitdrive_outlap_fcy", kv.Float(12.0)).
			Set("t_pitdrive_inlap_sc", kv.Float(0.5)).
			Set("t_pitdrive_outlap_sc", kv.Float(11.0))
		return
	}
	inLap, outLap := median(in), median(out)
	m.Set("t_pitdrive_inlap", kv.Round(inLap, 3)).
		Set("t_pitdrive_outlap", kv.Round(outLap, 3)).
		Set("t_pitdrive_inlap_fcy", kv.Round(inLap*0.5, 3)).
		Set("t_pitdrive_outlap_fcy", kv.Round(outLap*0.8, 3)).
		Set("t_pitdrive_inlap_sc", kv.Round(inLap*0.1, 3)).
		Set("t_pitdrive_outlap_sc", kv.Round(outLap*0.73, 3))
}

// carParams has one entry per team. The tyre change add-on is drawn from a
// seeded generator in car order, so the same data gives the same file.
func (r *Report) carParams() *kv.Map {
	rng := rand.New(rand.NewPCG(r.Options.CarSeed, r.Options.CarSeed))
	m := kv.New()
	for _, d := range r.Drivers {
		if _, ok := m.Get(d.Team); ok {
			continue
		}
		m.Set(d.Team, kv.New().
			Set("drivetype", "combustion").
			Set("manufacturer", d.Team).
			Set("t_car", kv.Float(0)).
			Set("m_fuel", kv.Float(110)).
			Set("b_fuel_perlap", kv.Float(1.6)).
			Set("energy", nil).
			Set("energy_perlap", nil).
			Set("mult_consumption_sc", kv.Float(0.25)).
			Set("mult_consumption_fcy", kv.Float(0.5)).
			Set("auto_consumption_adjust", true).
			Set("t_pit_tirechange_add", kv.Round(0.4+rng.Float64()*0.8, 3)).
			Set("t_pit_refuel_perkg", nil).
			Set("t_pit_charge_perkwh", nil).
			Set("color", lookup.TeamColor(d.Team)))
	}
	return m
}

func tiresetBase() *kv.Map {
	return kv.New().
		Set("tire_deg_model", "lin").
		Set("mult_tiredeg_sc", kv.Float(0.25)).
		Set("mult_tiredeg_fcy", kv.Float(0.5)).
		Set("t_add_coldtires", kv.Float(1.0))
}

func coefficients(k0, k1, k1q, k2q kv.Float) *kv.Map {
	return kv.New().Set("k_0", k0).Set("k_1_lin", k1).Set("k_1_quad", k1q).Set("k_2_quad", k2q)
}

// tiresetParams lists fitted coefficients per driver and compound. With no
// degradation data at all every driver gets the default dry set.
func (r *Report) tiresetParams() *kv.Map {
	m := kv.New()
	var withData []int
	for _, idx := range r.CarIndices() {
		if len(r.Cars[idx].Points) > 0 {
			withData = append(withData, idx)
		}
	}
	if len(withData) == 0 {
		for _, d := range r.Drivers {
			m.Set(d.Initials, tiresetBase().
				Set("A3", coefficients(0.0, 0.08, 0.078, 0.0001)).
				Set("A4", coefficients(0.2, 0.10, 0.095, 0.0005)).
				Set("A6", coefficients(0.5, 0.06, 0.055, 0.0003)))
		}
		return m
	}
	for _, idx := range withData {
		c := r.Cars[idx]
		t := tiresetBase()
		compounds := lo.Keys(c.Models)
		sort.Strings(compounds)
		for _, comp := range compounds {
			fit := c.Models[comp]
			t.Set(comp, coefficients(
				kv.Round(fit.K0, 4),
				kv.Round(fit.K1Lin, 4),
				kv.Round(fit.K1Quad, 4),
				kv.Round(fit.K2Quad, 6),
			))
		}
		m.Set(r.Initials(idx), t)
	}
	return m
}

func (r *Report) driverParams() *kv.Map {
	m := kv.New()
	for _, d := range r.Drivers {
		tDriver := 0.0
		var real strategy.Plan
		if c, ok := r.Cars[d.CarIndex]; ok {
			if len(c.LapTimes) > 0 {
				tDriver = lo.Mean(c.LapTimes) - slices.Min(c.LapTimes)
			}
			real = c.Real
		}
		if len(real) == 0 {
			real = strategy.Plan{{Compound: "A4"}}
		}
		m.Set(d.Initials, kv.New().
			Set("carno", d.RaceNumber).
			Set("name", d.Name).
			Set("initials", d.Initials).
			Set("team", d.Team).
			Set("t_driver", kv.Round(max(0, tDriver), 3)).
			Set("strategy_info", real).
			Set("p_grid", d.CarIndex+1).
			Set("t_teamorder", kv.Float(0)).
			Set("vel_max", kv.Float(330)))
	}
	return m
}

// monteCarloParams uses the driver with the fastest lap as reference.
func (r *Report) monteCarloParams() *kv.Map {
	ref := "HAM"
	best, found := 0.0, false
	for _, idx := range r.CarIndices() {
		laps := r.Cars[idx].LapTimes
		if len(laps) == 0 {
			continue
		}
		if lap := slices.Min(laps); !found || lap < best {
			best, found = lap, true
			ref = r.Initials(idx)
		}
	}
	return kv.New().
		Set("min_dist_sc", kv.Float(1.5)).
		Set("min_dist_vsc", kv.Float(1.5)).
		Set("ref_driver", ref)
}

func (r *Report) eventParams() *kv.Map {
	phases := make([][]any, 0, len(r.FCY))
	for _, p := range r.FCY {
		phases = append(phases, []any{
			kv.Round(r.progress.At(p.Start), 3),
			kv.Round(r.progress.At(p.End), 3),
			p.Type,
			nil,
			nil,
		})
	}
	retired := make([][]any, 0, len(r.Retirements))
	if r.Options.EmitRetirements {
		for _, ret := range r.Retirements {
			retired = append(retired, []any{r.Initials(ret.CarIndex), kv.Round(r.progress.At(ret.Timestamp), 3)})
		}
	}
	return kv.New().
		Set("fcy_data", kv.New().Set("phases", phases).Set("domain", "progress")).
		Set("retire_data", kv.New().Set("retirements", retired).Set("domain", "progress"))
}

func (r *Report) vseParams() *kv.Map {
	dry := lo.Filter(r.Available, func(c string, _ int) bool { return lookup.IsDry(c) })
	base, real, vseType := kv.New(), kv.New(), kv.New()
	for _, d := range r.Drivers {
		plan := strategy.DefaultPlan(r.TotalLaps())
		actual := plan
		if c, ok := r.Cars[d.CarIndex]; ok {
			if c.Optimal.Plan != nil {
				plan = c.Optimal.Plan
			}
			if len(c.Real) > 0 {
				actual = c.Real
			}
		}
		base.Set(d.Initials, plan)
		real.Set(d.Initials, actual)
		vseType.Set(d.Initials, "supervised")
	}
	return kv.New().
		Set("available_compounds", r.Available).
		Set("param_dry_compounds", dry).
		Set("location_cat", 2).
		Set("base_strategy", base).
		Set("real_strategy", real).
		Set("vse_type", vseType)
}
