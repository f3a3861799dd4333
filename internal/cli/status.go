package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session and sync status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	ctx := context.Background()

	fmt.Println("JobSync status")
	fmt.Printf("  Server:   %s\n", c.Session.ServerURL)
	if c.Session.IsAuthenticated() {
		fmt.Printf("  User:     %s\n", c.Session.UserID)
		fmt.Printf("  Company:  %s\n", c.Session.CompanyID)
	} else {
		fmt.Println("  User:     (not logged in)")
	}
	if c.Session.LastFullSync != nil {
		fmt.Printf("  Last sync: %s\n", c.Session.LastFullSync.Local().Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("  Last sync: never")
	}

	if c.API.Online(ctx) {
		fmt.Println("  Backend:  🟢 online")
	} else {
		fmt.Println("  Backend:  🔴 offline")
	}

	if !c.Session.IsAuthenticated() {
		return nil
	}

	projects, err := c.Store.DirtyProjects(ctx, c.Session.CompanyID)
	if err != nil {
		return err
	}
	tasks, err := c.Store.DirtyTasks(ctx, c.Session.CompanyID)
	if err != nil {
		return err
	}
	events, err := c.Store.DirtyEvents(ctx, c.Session.CompanyID)
	if err != nil {
		return err
	}
	uploads, err := c.Images.PendingUploads(ctx)
	if err != nil {
		return err
	}

	pending := len(projects) + len(tasks) + len(events)
	if pending == 0 && len(uploads) == 0 {
		fmt.Println("  Pending:  ✅ everything synced")
		return nil
	}

	fmt.Printf("  Pending:  %d projects, %d tasks, %d events awaiting sync\n",
		len(projects), len(tasks), len(events))
	if len(uploads) > 0 {
		fmt.Printf("  Images:   %d uploads queued\n", len(uploads))
	}
	return nil
}
