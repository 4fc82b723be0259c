// Package lookup maps protocol ids to display names and simulator keys.
// Unknown ids map to deterministic placeholders rather than errors.
package lookup

import (
	"fmt"
	"strings"
)

// CompoundScheme selects which CarStatus compound field analytics reads.
type CompoundScheme string

const (
	SchemeVisual CompoundScheme = "visual"
	SchemeActual CompoundScheme = "actual"
)

// ParseScheme accepts "visual" or "actual".
func ParseScheme(s string) (CompoundScheme, error) {
	switch CompoundScheme(strings.ToLower(s)) {
	case SchemeVisual:
		return SchemeVisual, nil
	case SchemeActual:
		return SchemeActual, nil
	}
	return "", fmt.Errorf("unknown compound scheme %q (want visual or actual)", s)
}

// Column is the CarStatus column holding compounds for this scheme.
func (s CompoundScheme) Column() string {
	if s == SchemeActual {
		return "actual_tyre_compound"
	}
	return "visual_tyre_compound"
}

// Simulator keys: dry compounds are A<n>, wet compounds I and W.
var visualCompounds = map[int]string{16: "A3", 17: "A4", 18: "A6", 7: "I", 8: "W"}

// Actual C<n> compounds keep their number as A<n>.
var actualCompounds = map[int]string{
	16: "A5", 17: "A4", 18: "A3", 19: "A2", 20: "A1", 21: "A0", 22: "A6", 7: "I", 8: "W",
}

// Compound returns the simulator key for a compound id under scheme.
func Compound(scheme CompoundScheme, id int) string {
	table := visualCompounds
	if scheme == SchemeActual {
		table = actualCompounds
	}
	if name, ok := table[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown_%d", id)
}

// IsDry reports whether a simulator compound key is a slick.
func IsDry(compound string) bool {
	return strings.HasPrefix(compound, "A")
}

var teams = map[int]string{
	0: "Mercedes", 1: "Ferrari", 2: "RedBull", 3: "Williams", 4: "AstonMartin",
	5: "Alpine", 6: "RB", 7: "Haas", 8: "McLaren", 9: "Sauber",
}

var teamColors = map[string]string{
	"Mercedes": "#00D2BE", "Ferrari": "#DC0000", "RedBull": "#1E41FF", "Williams": "#005AFF",
	"AstonMartin": "#006F62", "Alpine": "#0090FF", "RB": "#2B4562", "Haas": "#B6BABD",
	"McLaren": "#FF8700", "Sauber": "#00E701",
}

// Team returns the team name for a team id.
func Team(id int) string {
	if name, ok := teams[id]; ok {
		return name
	}
	return fmt.Sprintf("Team_%d", id)
}

// TeamColor returns the livery colour used in car parameters.
func TeamColor(team string) string {
	if c, ok := teamColors[team]; ok {
		return c
	}
	return "#FFFFFF"
}

var tracks = map[int]string{
	0: "Melbourne", 2: "Shanghai", 3: "Bahrain", 4: "Catalunya", 5: "Monaco", 6: "Montreal",
	7: "Silverstone", 9: "Hungaroring", 10: "Spa", 11: "Monza", 12: "Singapore", 13: "Suzuka",
	14: "AbuDhabi", 15: "Texas", 16: "Brazil", 17: "Austria", 19: "Mexico", 20: "Baku",
	26: "Zandvoort", 27: "Imola", 29: "Jeddah", 30: "Miami", 31: "LasVegas", 32: "Losail",
}

// Track returns the circuit name for a track id.
func Track(id int) string {
	if name, ok := tracks[id]; ok {
		return name
	}
	return "Unknown"
}

var drivers = map[int]string{
	0: "Carlos Sainz", 2: "Daniel Ricciardo", 3: "Fernando Alonso", 4: "Felipe Massa",
	7: "Lewis Hamilton", 9: "Max Verstappen", 10: "Nico Hülkenburg", 11: "Kevin Magnussen",
	14: "Sergio Pérez", 15: "Valtteri Bottas", 17: "Esteban Ocon", 19: "Lance Stroll",
	20: "Arron Barnes", 21: "Martin Giles", 22: "Alex Murray", 23: "Lucas Roth",
	24: "Igor Correia", 25: "Sophie Levasseur", 26: "Jonas Schiffer", 27: "Alain Forest",
	28: "Jay Letourneau", 29: "Esto Saari", 30: "Yasar Atiyeh", 31: "Callisto Calabresi",
	32: "Naota Izumi", 33: "Howard Clarke", 34: "Lars Kaufmann", 35: "Marie Laursen",
	36: "Flavio Nieves", 38: "Klimek Michalski", 39: "Santiago Moreno", 40: "Benjamin Coppens",
	41: "Noah Visser", 50: "George Russell", 54: "Lando Norris", 58: "Charles Leclerc",
	59: "Pierre Gasly", 62: "Alexander Albon", 70: "Rashid Nair", 71: "Jack Tremblay",
	77: "Ayrton Senna", 80: "Guanyu Zhou", 83: "Juan Manuel Correa", 90: "Michael Schumacher",
	94: "Yuki Tsunoda", 102: "Aidan Jackson", 109: "Jenson Button", 110: "David Coulthard",
	112: "Oscar Piastri", 113: "Liam Lawson", 116: "Richard Verschoor", 123: "Enzo Fittipaldi",
	125: "Mark Webber", 126: "Jacques Villeneuve", 127: "Callie Mayer", 132: "Logan Sargeant",
	136: "Jack Doohan", 137: "Amaury Cordeel", 138: "Dennis Hauger", 145: "Zane Maloney",
	146: "Victor Martins", 147: "Oliver Bearman", 148: "Jak Crawford", 149: "Isack Hadjar",
	152: "Roman Stanek", 153: "Kush Maini", 156: "Brendon Leigh", 157: "David Tonizza",
	158: "Jarno Opmeer", 159: "Lucas Blakeley", 160: "Paul Aron", 161: "Gabriel Bortoleto",
	162: "Franco Colapinto", 163: "Taylor Barnard", 164: "Joshua Dürksen", 165: "Andrea-Kimi Antonelli",
	166: "Ritomo Miyata", 167: "Rafael Villagómez", 168: "Zak O'Sullivan", 169: "Pepe Marti",
	170: "Sonny Hayes", 171: "Joshua Pearce", 172: "Callum Voisin", 173: "Matias Zagazeta",
	174: "Nikola Tsolov", 175: "Tim Tramnitz", 185: "Luca Cortez",
}

// Driver returns the driver name for a driver id, falling back to a
// placeholder built from the car index.
func Driver(id, carIndex int) string {
	if name, ok := drivers[id]; ok {
		return name
	}
	return fmt.Sprintf("Driver_%d", carIndex)
}

// Initials derives the three-letter code used as the simulator's driver key:
// the first three letters of the upper-cased surname, or of the only word.
func Initials(name string, carIndex int) string {
	parts := strings.Fields(strings.ToUpper(name))
	if len(parts) == 0 {
		return fmt.Sprintf("DR%d", carIndex)
	}
	last := []rune(parts[len(parts)-1])
	if len(last) > 3 {
		last = last[:3]
	}
	return string(last)
}
