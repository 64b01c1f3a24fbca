package cmd

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"bountyvault/internal/errs"
	"bountyvault/internal/usecase/console"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the terminal console for reviewing vaults and reports",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		caller, err := requireCallerFlag()
		if err != nil {
			return err
		}
		team, _ := cmd.Flags().GetString("team")
		reason, _ := cmd.Flags().GetString("reject-reason")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")

		model := console.NewVaultModel(cmd.Context(), deps.Service, console.Options{
			Caller:          caller,
			Team:            team,
			RejectReason:    reason,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run console")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().String("team", "", "Only vaults owned by this team")
	consoleCmd.Flags().String("reject-reason", "", "Reason recorded on reports rejected from the console")
	consoleCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
}
