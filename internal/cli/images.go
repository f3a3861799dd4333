package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fieldforge/jobsync/internal/imagesync"
	"github.com/fieldforge/jobsync/internal/model"
	"github.com/spf13/cobra"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Manage the image upload queue",
	Long: `Attach photos to projects and tasks and inspect the upload queue.

Commands:
  jobsync images add project <id> photo1.jpg photo2.jpg
  jobsync images add task <id> photo.jpg
  jobsync images pending
  jobsync images clear`,
}

var imagesAddCmd = &cobra.Command{
	Use:   "add <project|task> <id> <file>...",
	Short: "Attach images to a project or task",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runImagesAdd,
}

var imagesPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List queued uploads",
	RunE:  runImagesPending,
}

var imagesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every queued upload",
	RunE:  runImagesClear,
}

func init() {
	imagesCmd.AddCommand(imagesAddCmd)
	imagesCmd.AddCommand(imagesPendingCmd)
	imagesCmd.AddCommand(imagesClearCmd)
}

func runImagesAdd(cmd *cobra.Command, args []string) error {
	ownerType := args[0]
	if ownerType != model.OwnerProject && ownerType != model.OwnerTask {
		return fmt.Errorf("owner must be %q or %q", model.OwnerProject, model.OwnerTask)
	}

	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := requireAuth(c); err != nil {
		return err
	}

	var images []imagesync.Image
	for _, path := range args[2:] {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		images = append(images, imagesync.Image{
			Name: filepath.Base(path),
			Data: data,
		})
	}

	paths, err := c.Images.SaveImages(context.Background(), images, ownerType, args[1])
	if err != nil {
		return err
	}

	fmt.Printf("✅ %d image(s) attached and queued for upload.\n", len(paths))
	return nil
}

func runImagesPending(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	uploads, err := c.Images.PendingUploads(context.Background())
	if err != nil {
		return err
	}
	if len(uploads) == 0 {
		fmt.Println("✅ No uploads queued.")
		return nil
	}

	for _, u := range uploads {
		fmt.Printf("%-8s %-36s  %8d bytes  attempts=%d  %s\n",
			u.OwnerType, u.OwnerID, u.SizeBytes, u.Attempts, filepath.Base(u.LocalPath))
	}
	fmt.Printf("\n%d upload(s) queued. Run 'jobsync sync --images' to retry.\n", len(uploads))
	return nil
}

func runImagesClear(cmd *cobra.Command, args []string) error {
	c, err := openController()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	if err := c.Images.ClearAllPendingUploads(context.Background()); err != nil {
		return err
	}
	fmt.Println("🗑  Upload queue cleared.")
	return nil
}
