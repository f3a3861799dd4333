package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// maxUploadBytes caps a single image upload.
const maxUploadBytes = 20 << 20

// handleImageUpload stores an uploaded image and attaches its URL to
// the owning project or task.
func (s *Server) handleImageUpload(c echo.Context) error {
	companyID := c.Get("company_id").(string)

	ownerType := c.FormValue("owner_type")
	ownerID := c.FormValue("owner_id")
	if ownerType != "project" && ownerType != "task" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "owner_type must be project or task"})
	}
	if ownerID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "owner_id required"})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "image file required"})
	}
	if file.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "image too large"})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid upload"})
	}
	defer src.Close()

	name := uuid.NewString() + "-" + filepath.Base(file.Filename)
	dst, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		c.Logger().Error("upload error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		c.Logger().Error("upload error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	url := "/uploads/" + name

	table := "projects"
	if ownerType == "task" {
		table = "tasks"
	}
	res, err := s.db.Exec(
		fmt.Sprintf(`UPDATE %s SET image_urls = array_append(image_urls, $1), updated_at = NOW()
			WHERE id = $2 AND company_id = $3`, table),
		url, ownerID, companyID,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "owner not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
