package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldforge/jobsync/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push pending local changes to the backend",
	Long: `Push every unsynced local change to the backend, highest priority
first, and refresh company reference data.

Commands:
  jobsync sync               # Sync now
  jobsync sync watch         # Keep syncing in the background`,
	RunE: runSync,
}

var syncWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the background sync loop in the foreground",
	RunE:  runSyncWatch,
}

func init() {
	syncCmd.AddCommand(syncWatchCmd)

	syncCmd.Flags().Bool("images", false, "Also retry queued image uploads")
	syncWatchCmd.Flags().Duration("for", 0, "Stop after this duration (0 = until interrupted)")
}

func runSync(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	ctx := context.Background()
	if !c.API.Online(ctx) {
		fmt.Println("🔴 Backend unreachable, changes stay queued locally.")
		return nil
	}

	fmt.Println("🔄 Syncing...")
	result, err := c.Sync.FlushDirty(ctx)
	if err != nil {
		return err
	}

	if result.Failed > 0 {
		fmt.Printf("⚠️  Pushed %d changes, %d failed and will retry.\n", result.Pushed, result.Failed)
	} else if result.Pushed > 0 {
		fmt.Printf("✅ Pushed %d changes.\n", result.Pushed)
	} else {
		fmt.Println("✅ Already up to date.")
	}

	if err := c.Sync.SyncCompanyTeamMembers(ctx, c.Session.CompanyID); err != nil {
		fmt.Printf("⚠️  Team roster refresh failed: %v\n", err)
	}

	if retryImages, _ := cmd.Flags().GetBool("images"); retryImages {
		if err := c.Images.Resume(ctx); err != nil {
			fmt.Printf("⚠️  Image queue resume failed: %v\n", err)
		} else {
			fmt.Println("🖼  Image uploads requeued.")
		}
	}

	now := time.Now().UTC()
	c.Session.LastFullSync = &now
	if err := c.Sessions.Save(c.Session); err != nil {
		return err
	}
	return nil
}

func runSyncWatch(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	c.StartSweeper()
	c.Sweeper.SetOnFlush(func(result sync.FlushResult) {
		if result.Failed > 0 {
			fmt.Printf("⚠️  Swept %d changes, %d failed and will retry.\n", result.Pushed, result.Failed)
		} else if result.Pushed > 0 {
			fmt.Printf("✅ Swept %d changes.\n", result.Pushed)
		}
	})
	// Clear whatever accumulated before the watch started instead of
	// waiting out a full interval.
	c.Sweeper.TriggerSoon()

	fmt.Println("👀 Background sync running, Ctrl-C to stop.")

	d, _ := cmd.Flags().GetDuration("for")
	if d > 0 {
		time.Sleep(d)
		return nil
	}
	select {}
}
