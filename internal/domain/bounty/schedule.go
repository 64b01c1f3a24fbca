package bounty

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// RewardSchedule holds one reward per severity, indexed by Severity.
type RewardSchedule [severityCount]uint64

func NewRewardSchedule(critical, high, medium, low uint64) RewardSchedule {
	return RewardSchedule{critical, high, medium, low}
}

func (r RewardSchedule) Reward(severity Severity) (uint64, error) {
	if !severity.Valid() {
		return 0, fmt.Errorf("%w: severity %d", ErrInvalidArgument, uint8(severity))
	}
	return r[severity], nil
}

func (r RewardSchedule) String() string {
	parts := make([]string, 0, severityCount)
	for _, severity := range Severities() {
		parts = append(parts, fmt.Sprintf("%s=%d", severity, r[severity]))
	}
	return strings.Join(parts, " ")
}

type scheduleFile struct {
	Rewards struct {
		Critical *uint64 `toml:"critical"`
		High     *uint64 `toml:"high"`
		Medium   *uint64 `toml:"medium"`
		Low      *uint64 `toml:"low"`
	} `toml:"rewards"`
}

// LoadRewardScheduleFile reads a [rewards] table with all four tiers set.
func LoadRewardScheduleFile(path string) (RewardSchedule, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return RewardSchedule{}, errors.New("schedule file is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return RewardSchedule{}, err
	}
	return ParseRewardSchedule(raw)
}

func ParseRewardSchedule(raw []byte) (RewardSchedule, error) {
	var file scheduleFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return RewardSchedule{}, fmt.Errorf("%w: decode reward schedule: %v", ErrInvalidArgument, err)
	}

	tiers := []*uint64{file.Rewards.Critical, file.Rewards.High, file.Rewards.Medium, file.Rewards.Low}
	var schedule RewardSchedule
	for i, value := range tiers {
		if value == nil {
			return RewardSchedule{}, fmt.Errorf("%w: rewards.%s is required", ErrInvalidArgument, Severity(i))
		}
		schedule[i] = *value
	}
	return schedule, nil
}
