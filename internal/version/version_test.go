package version

import "testing"

func TestString(t *testing.T) {
	origV, origSHA, origTime := Version, GitSHA, BuildTime
	defer func() { Version, GitSHA, BuildTime = origV, origSHA, origTime }()

	Version, GitSHA, BuildTime = "v0.3.1", "0123456789abcdef", "2026-10-15T08:00:00Z"
	want := "v0.3.1 (commit 0123456, built 2026-10-15T08:00:00Z)"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	GitSHA = "abc"
	if got := String(); got != "v0.3.1 (commit abc, built 2026-10-15T08:00:00Z)" {
		t.Errorf("short sha not kept: %q", got)
	}
}
