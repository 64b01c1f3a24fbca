package bounty

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRewardScheduleByPosition(t *testing.T) {
	schedule := NewRewardSchedule(1000, 500, 200, 50)
	want := map[Severity]uint64{
		SeverityCritical: 1000,
		SeverityHigh:     500,
		SeverityMedium:   200,
		SeverityLow:      50,
	}
	for severity, amount := range want {
		got, err := schedule.Reward(severity)
		if err != nil || got != amount {
			t.Fatalf("Reward(%s) = %d, %v, want %d", severity, got, err, amount)
		}
	}
	if _, err := schedule.Reward(Severity(9)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Reward(9) error = %v", err)
	}
	if schedule.String() != "critical=1000 high=500 medium=200 low=50" {
		t.Fatalf("String() = %q", schedule.String())
	}
}

func TestLoadRewardScheduleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewards.toml")
	content := `
[rewards]
critical = 1000
high = 500
medium = 200
low = 50
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write schedule: %v", err)
	}

	schedule, err := LoadRewardScheduleFile(path)
	if err != nil {
		t.Fatalf("LoadRewardScheduleFile() error = %v", err)
	}
	if schedule != NewRewardSchedule(1000, 500, 200, 50) {
		t.Fatalf("schedule = %v", schedule)
	}
}

func TestParseRewardScheduleRequiresEveryTier(t *testing.T) {
	_, err := ParseRewardSchedule([]byte("[rewards]\ncritical = 1\nhigh = 2\nlow = 4\n"))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("missing tier error = %v", err)
	}
	if _, err := ParseRewardSchedule([]byte("[rewards]\ncritical = -1\nhigh = 2\nmedium = 3\nlow = 4\n")); err == nil {
		t.Fatalf("negative reward accepted")
	}
}

func TestParseSeverity(t *testing.T) {
	got, err := ParseSeverity(" High ")
	if err != nil || got != SeverityHigh {
		t.Fatalf("ParseSeverity() = %v, %v", got, err)
	}
	if _, err := ParseSeverity("info"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("ParseSeverity(info) error = %v", err)
	}
}
