package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fieldforge/jobsync/internal/model"
	"github.com/fieldforge/jobsync/internal/sync"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long: `Manage projects for your company.

Commands:
  jobsync project list
  jobsync project add "Kitchen remodel"
  jobsync project status <id> in_progress
  jobsync project notes <id> "Waiting on permit"
  jobsync project dates <id> --start 2026-09-07 --end 2026-09-12
  jobsync project team <id> <member-id> [member-id...]
  jobsync project schedule <id> --start 2026-09-07 --end 2026-09-12`,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE:  runProjectList,
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectAdd,
}

var projectStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change a project's status",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectStatus,
}

var projectNotesCmd = &cobra.Command{
	Use:   "notes <id> <notes>",
	Short: "Replace a project's notes",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectNotes,
}

var projectDatesCmd = &cobra.Command{
	Use:   "dates <id>",
	Short: "Set, derive or clear a project's date range",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDates,
}

var projectTeamCmd = &cobra.Command{
	Use:   "team <id> <member-id>...",
	Short: "Replace a project's team",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runProjectTeam,
}

var projectScheduleCmd = &cobra.Command{
	Use:   "schedule <id>",
	Short: "Put a project on the calendar",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectSchedule,
}

func init() {
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectStatusCmd)
	projectCmd.AddCommand(projectNotesCmd)
	projectCmd.AddCommand(projectDatesCmd)
	projectCmd.AddCommand(projectTeamCmd)
	projectCmd.AddCommand(projectScheduleCmd)

	projectAddCmd.Flags().String("client", "", "Client id to attach")

	projectStatusCmd.Flags().Bool("now", false, "Push immediately instead of waiting for the next sync")

	projectDatesCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	projectDatesCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	projectDatesCmd.Flags().Bool("clear", false, "Clear the date range")

	projectScheduleCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	projectScheduleCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	projectScheduleCmd.Flags().String("title", "", "Calendar title (defaults to the project name)")
	projectScheduleCmd.Flags().String("members", "", "Comma-separated member ids")
}

func parseDay(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t.UTC(), nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	projects, err := c.Store.ListProjects(context.Background(), c.Session.CompanyID)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No projects yet. Create one with 'jobsync project add'.")
		return nil
	}

	for _, p := range projects {
		marker := " "
		if p.NeedsSync {
			marker = "*"
		}
		window := ""
		if p.StartDate != nil && p.EndDate != nil {
			window = fmt.Sprintf("  %s → %s",
				p.StartDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"))
		}
		fmt.Printf("%s %-36s  %-12s %s%s\n", marker, p.ID, p.Status, p.Name, window)
	}
	fmt.Println("\n* = pending sync")
	return nil
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	ctx := context.Background()

	p := model.NewProject(uuid.NewString(), c.Session.CompanyID, args[0])
	p.ClientID, _ = cmd.Flags().GetString("client")

	if err := c.Store.SaveProject(ctx, &p); err != nil {
		return err
	}
	fmt.Printf("✅ Project created: %s\n", p.ID)

	if c.API.Online(ctx) {
		if _, err := c.Sync.FlushDirty(ctx); err == nil {
			fmt.Println("☁️  Synced to backend.")
		}
	} else {
		fmt.Println("📴 Offline, will sync later.")
	}
	return nil
}

func runProjectStatus(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("now")
	if err := c.Sync.UpdateProjectStatus(context.Background(), args[0], args[1], force); err != nil {
		return err
	}
	fmt.Printf("✅ Status set to %s.\n", args[1])
	return nil
}

func runProjectNotes(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	if !c.Sync.UpdateProjectNotes(context.Background(), args[0], args[1]) {
		return fmt.Errorf("failed to save notes for project %s", args[0])
	}
	fmt.Println("✅ Notes saved.")
	return nil
}

func runProjectDates(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	clear, _ := cmd.Flags().GetBool("clear")
	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")

	var start, end *time.Time
	if !clear && startStr != "" {
		s, err := parseDay(startStr)
		if err != nil {
			return err
		}
		e, err := parseDay(endStr)
		if err != nil {
			return err
		}
		start, end = &s, &e
	}

	if err := c.Sync.UpdateProjectDates(context.Background(), args[0], start, end, clear); err != nil {
		return err
	}
	switch {
	case clear:
		fmt.Println("✅ Dates cleared.")
	case start != nil:
		fmt.Println("✅ Dates set.")
	default:
		fmt.Println("✅ Dates derived from scheduled tasks.")
	}
	return nil
}

func runProjectTeam(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	err = c.Sync.UpdateTeamMembers(context.Background(), model.OwnerProject, args[0], args[1:])
	var partial *sync.PartialError
	if errors.As(err, &partial) {
		fmt.Printf("⚠️  Team saved locally, %d remote updates pending retry.\n", len(partial.Legs))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println("✅ Team updated.")
	return nil
}

func runProjectSchedule(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	ctx := context.Background()

	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")
	if startStr == "" || endStr == "" {
		return fmt.Errorf("--start and --end are required")
	}
	start, err := parseDay(startStr)
	if err != nil {
		return err
	}
	end, err := parseDay(endStr)
	if err != nil {
		return err
	}

	p, err := c.Store.GetProject(ctx, args[0])
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		title = p.Name
	}
	membersFlag, _ := cmd.Flags().GetString("members")
	members := p.Members
	if membersFlag != "" {
		members = strings.Split(membersFlag, ",")
	}

	ev, err := c.Sync.ScheduleEvent(ctx, sync.EventDescriptor{
		EventID:   p.EventID,
		Title:     title,
		ProjectID: p.ID,
		Start:     start,
		End:       end,
		MemberIDs: members,
	})
	if err != nil {
		return err
	}
	fmt.Printf("📅 Scheduled %s → %s (%d days).\n",
		ev.StartDate.Format("2006-01-02"), ev.EndDate.Format("2006-01-02"), ev.Duration)
	return nil
}
