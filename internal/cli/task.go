package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fieldforge/jobsync/internal/model"
	"github.com/fieldforge/jobsync/internal/sync"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks within a project",
	Long: `Manage the tasks of a project.

Commands:
  jobsync task list <project-id>
  jobsync task add <project-id> "Rough plumbing" --type plumbing
  jobsync task status <id> completed
  jobsync task notes <id> "Inspector signed off"
  jobsync task team <id> <member-id> [member-id...]
  jobsync task schedule <id> --start 2026-09-07 --end 2026-09-08
  jobsync task delete <id>`,
}

var taskListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List a project's tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskList,
}

var taskAddCmd = &cobra.Command{
	Use:   "add <project-id> <name>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskAdd,
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change a task's status",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskStatus,
}

var taskNotesCmd = &cobra.Command{
	Use:   "notes <id> <notes>",
	Short: "Replace a task's notes",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskNotes,
}

var taskTeamCmd = &cobra.Command{
	Use:   "team <id> <member-id>...",
	Short: "Replace a task's team",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTaskTeam,
}

var taskScheduleCmd = &cobra.Command{
	Use:   "schedule <id>",
	Short: "Put a task on the calendar",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskSchedule,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task and its schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

func init() {
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskStatusCmd)
	taskCmd.AddCommand(taskNotesCmd)
	taskCmd.AddCommand(taskTeamCmd)
	taskCmd.AddCommand(taskScheduleCmd)
	taskCmd.AddCommand(taskDeleteCmd)

	taskAddCmd.Flags().String("type", "", "Task type from the company catalog")

	taskStatusCmd.Flags().Bool("now", false, "Push immediately instead of waiting for the next sync")

	taskScheduleCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	taskScheduleCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	taskScheduleCmd.Flags().String("title", "", "Calendar title (defaults to the task name)")
	taskScheduleCmd.Flags().String("members", "", "Comma-separated member ids")
}

func runTaskList(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	tasks, err := c.Store.ListProjectTasks(context.Background(), args[0])
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks in this project.")
		return nil
	}

	for _, t := range tasks {
		marker := " "
		if t.NeedsSync {
			marker = "*"
		}
		kind := t.TaskType
		if kind == "" {
			kind = "-"
		}
		fmt.Printf("%s %-36s  %-12s %-12s %s\n", marker, t.ID, t.Status, kind, t.Name)
	}
	fmt.Println("\n* = pending sync")
	return nil
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	ctx := context.Background()

	// The parent has to exist locally before a task can hang off it.
	if _, err := c.Store.GetProject(ctx, args[0]); err != nil {
		return fmt.Errorf("project %s: %w", args[0], err)
	}

	t := model.NewProjectTask(uuid.NewString(), c.Session.CompanyID, args[0], args[1])
	t.TaskType, _ = cmd.Flags().GetString("type")

	if err := c.Store.SaveTask(ctx, &t); err != nil {
		return err
	}
	fmt.Printf("✅ Task created: %s\n", t.ID)

	if c.API.Online(ctx) {
		if _, err := c.Sync.FlushDirty(ctx); err == nil {
			fmt.Println("☁️  Synced to backend.")
		}
	} else {
		fmt.Println("📴 Offline, will sync later.")
	}
	return nil
}

func runTaskStatus(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("now")
	if err := c.Sync.UpdateTaskStatus(context.Background(), args[0], args[1], force); err != nil {
		return err
	}
	fmt.Printf("✅ Status set to %s.\n", args[1])
	return nil
}

func runTaskNotes(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	if !c.Sync.UpdateTaskNotes(context.Background(), args[0], args[1]) {
		return fmt.Errorf("failed to save notes for task %s", args[0])
	}
	fmt.Println("✅ Notes saved.")
	return nil
}

func runTaskTeam(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	err = c.Sync.UpdateTeamMembers(context.Background(), model.OwnerTask, args[0], args[1:])
	var partial *sync.PartialError
	if errors.As(err, &partial) {
		fmt.Printf("⚠️  Team saved locally, %d remote updates pending retry.\n", len(partial.Legs))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println("✅ Team updated (task, schedule and project roster).")
	return nil
}

func runTaskSchedule(cmd *cobra.Command, args []string) error {
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

	t, err := c.Store.GetTask(ctx, args[0])
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		title = t.Name
	}
	membersFlag, _ := cmd.Flags().GetString("members")
	members := t.Members
	if membersFlag != "" {
		members = strings.Split(membersFlag, ",")
	}

	ev, err := c.Sync.ScheduleEvent(ctx, sync.EventDescriptor{
		EventID:   t.EventID,
		Title:     title,
		ProjectID: t.ProjectID,
		TaskID:    t.ID,
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

func runTaskDelete(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	if err := c.Sync.DeleteTask(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Println("🗑  Task deleted.")
	return nil
}
