package cli

import (
	"context"
	"fmt"

	"github.com/fieldforge/jobsync/internal/health"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check local data health and optionally repair it",
	Long: `Inspect the local database and session for missing pieces (cached
user, cached company, stale session) and report the recovery step
that would fix them. With --repair the step is executed.`,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().Bool("repair", false, "Execute the recommended recovery action")
}

func runHealth(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	ctx := context.Background()

	state, action, err := c.Health.PerformHealthCheck(ctx)
	if err != nil {
		return err
	}

	if state == health.StateHealthy {
		fmt.Println("✅ Local data is healthy.")
	} else {
		fmt.Printf("⚠️  State: %s\n", state)
	}
	if action == health.ActionNone {
		return nil
	}
	fmt.Printf("   Recommended action: %s\n", action)

	repair, _ := cmd.Flags().GetBool("repair")
	if !repair {
		fmt.Println("   Run with --repair to execute it.")
		return nil
	}

	fmt.Println("🔄 Repairing...")
	outcome, err := c.Health.ExecuteRecoveryAction(ctx, action)
	if err != nil {
		return err
	}
	if outcome == health.OutcomeTerminal {
		fmt.Println("🚪 Session cleared, log in again to continue.")
		return nil
	}
	fmt.Println("✅ Recovery complete.")
	return nil
}
