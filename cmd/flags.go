package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	domainbounty "bountyvault/internal/domain/bounty"
)

func requireCallerFlag() (string, error) {
	caller := strings.TrimSpace(callerName)
	if caller == "" {
		return "", fmt.Errorf("%w: --caller is required", domainbounty.ErrInvalidArgument)
	}
	return caller, nil
}

func addressFlag(cmd *cobra.Command, name string) (domainbounty.Address, error) {
	raw, _ := cmd.Flags().GetString(name)
	if strings.TrimSpace(raw) == "" {
		return domainbounty.Address{}, fmt.Errorf("%w: --%s is required", domainbounty.ErrInvalidArgument, name)
	}
	return domainbounty.ParseAddress(raw)
}

func optionalAddressFlag(cmd *cobra.Command, name string) (*domainbounty.Address, error) {
	raw, _ := cmd.Flags().GetString(name)
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	address, err := domainbounty.ParseAddress(raw)
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func addScheduleFlags(cmd *cobra.Command) {
	cmd.Flags().String("schedule-file", "", "TOML file with critical/high/medium/low rewards")
	cmd.Flags().Uint64("critical", 0, "Reward for critical reports")
	cmd.Flags().Uint64("high", 0, "Reward for high reports")
	cmd.Flags().Uint64("medium", 0, "Reward for medium reports")
	cmd.Flags().Uint64("low", 0, "Reward for low reports")
}

// scheduleFromFlags prefers --schedule-file and falls back to the
// per-severity flags.
func scheduleFromFlags(cmd *cobra.Command) (domainbounty.RewardSchedule, error) {
	if path, _ := cmd.Flags().GetString("schedule-file"); strings.TrimSpace(path) != "" {
		return domainbounty.LoadRewardScheduleFile(path)
	}
	critical, _ := cmd.Flags().GetUint64("critical")
	high, _ := cmd.Flags().GetUint64("high")
	medium, _ := cmd.Flags().GetUint64("medium")
	low, _ := cmd.Flags().GetUint64("low")
	return domainbounty.NewRewardSchedule(critical, high, medium, low), nil
}
