package lookup

import "testing"

func TestCompound(t *testing.T) {
	tests := []struct {
		scheme CompoundScheme
		id     int
		want   string
	}{
		{SchemeVisual, 16, "A3"},
		{SchemeVisual, 17, "A4"},
		{SchemeVisual, 18, "A6"},
		{SchemeVisual, 7, "I"},
		{SchemeVisual, 99, "Unknown_99"},
		{SchemeActual, 18, "A3"},
		{SchemeActual, 22, "A6"},
		{SchemeActual, 8, "W"},
		{SchemeActual, 0, "Unknown_0"},
	}
	for _, tt := range tests {
		if got := Compound(tt.scheme, tt.id); got != tt.want {
			t.Errorf("Compound(%s, %d) = %q, want %q", tt.scheme, tt.id, got, tt.want)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	if got := Team(42); got != "Team_42" {
		t.Errorf("Team(42) = %q", got)
	}
	if got := Track(1); got != "Unknown" {
		t.Errorf("Track(1) = %q", got)
	}
	if got := Driver(250, 7); got != "Driver_7" {
		t.Errorf("Driver(250, 7) = %q", got)
	}
	if got := TeamColor("Team_42"); got != "#FFFFFF" {
		t.Errorf("TeamColor = %q", got)
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		car  int
		want string
	}{
		{"Max Verstappen", 0, "VER"},
		{"Andrea-Kimi Antonelli", 1, "ANT"},
		{"Nico Hülkenburg", 2, "HÜL"},
		{"Driver_5", 5, "DRI"},
		{"", 9, "DR9"},
		{"Al", 3, "AL"},
	}
	for _, tt := range tests {
		if got := Initials(tt.name, tt.car); got != tt.want {
			t.Errorf("Initials(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParseScheme(t *testing.T) {
	if s, err := ParseScheme("Actual"); err != nil || s != SchemeActual {
		t.Fatalf("ParseScheme(Actual) = %v, %v", s, err)
	}
	if _, err := ParseScheme("both"); err == nil {
		t.Fatal("expected error")
	}
	if SchemeVisual.Column() != "visual_tyre_compound" {
		t.Fatal("visual column")
	}
}
