package race

import (
	"sort"

	"github.com/banshee-data/pitwall/internal/analysis/dataset"
	"github.com/banshee-data/pitwall/internal/telemetry/lookup"
)

// unsetID marks an unassigned team or driver slot.
const unsetID = 255

// sessionInfo reads the first session row.
func sessionInfo(d *dataset.Dataset) SessionInfo {
	if len(d.Sessions) == 0 {
		return SessionInfo{TrackID: -1, TrackName: lookup.Track(-1)}
	}
	s := d.Sessions[0]
	return SessionInfo{
		Found:         true,
		TrackID:       s.TrackID,
		TrackName:     lookup.Track(s.TrackID),
		TotalLaps:     s.TotalLaps,
		TrackLength:   s.TrackLength,
		SessionType:   s.SessionType,
		Formula:       s.Formula,
		PitSpeedLimit: s.PitSpeedLimit,
	}
}

// participants takes the latest row per car and drops unassigned slots.
func participants(d *dataset.Dataset) []Driver {
	latest := make(map[int]dataset.Participant)
	for _, p := range d.Participants {
		latest[p.CarIndex] = p
	}
	var out []Driver
	for idx, p := range latest {
		if p.TeamID == unsetID || p.DriverID == unsetID {
			continue
		}
		name := lookup.Driver(p.DriverID, idx)
		out = append(out, Driver{
			CarIndex:   idx,
			Name:       name,
			Initials:   lookup.Initials(name, idx),
			Team:       lookup.Team(p.TeamID),
			TeamID:     p.TeamID,
			DriverID:   p.DriverID,
			RaceNumber: p.RaceNumber,
			AI:         p.AIControlled != 0,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CarIndex < out[j].CarIndex })
	return out
}
