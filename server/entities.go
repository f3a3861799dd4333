package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Clients send field updates keyed by backend field names. Each entity
// has a fixed translation from those names to its columns; unknown
// keys are rejected so a typo never silently drops a field.

type fieldColumn struct {
	key string
	col string
}

var projectFieldColumns = []fieldColumn{
	{"Name", "name"},
	{"Status", "status"},
	{"Notes", "notes"},
	{"Client", "client_id"},
	{"Team Members", "team_member_ids"},
	{"Start Date", "start_date"},
	{"End Date", "end_date"},
}

var taskFieldColumns = []fieldColumn{
	{"Name", "name"},
	{"Task Type", "task_type"},
	{"Status", "status"},
	{"Notes", "notes"},
	{"Team Members", "team_member_ids"},
}

var eventFieldColumns = []fieldColumn{
	{"Title", "title"},
	{"Color", "color"},
	{"Start Date", "start_date"},
	{"End Date", "end_date"},
	{"Duration", "duration"},
	{"Team Members", "team_member_ids"},
}

// columnValue coerces a JSON field value into something the column
// accepts. Dates arrive as RFC3339 strings or explicit nulls.
func columnValue(col string, val any) (any, error) {
	switch col {
	case "start_date", "end_date":
		if val == nil {
			return nil, nil
		}
		str, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("expected date string for %s", col)
		}
		t, err := time.Parse(time.RFC3339, str)
		if err != nil {
			return nil, fmt.Errorf("invalid date for %s: %w", col, err)
		}
		return t.UTC(), nil
	case "duration":
		n, ok := val.(float64)
		if !ok {
			return nil, fmt.Errorf("expected number for %s", col)
		}
		return int(n), nil
	default:
		if val == nil {
			return "", nil
		}
		str, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("expected string for %s", col)
		}
		return str, nil
	}
}

// applyFields runs a field-map PATCH against one row, scoped to the
// caller's company.
func (s *Server) applyFields(c echo.Context, table string, columns []fieldColumn) error {
	id := c.Param("id")
	companyID := c.Get("company_id").(string)

	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	known := make(map[string]bool, len(columns))
	for _, fc := range columns {
		known[fc.key] = true
	}
	for key := range fields {
		if !known[key] {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown field: " + key})
		}
	}

	var sets []string
	var args []any
	for _, fc := range columns {
		val, ok := fields[fc.key]
		if !ok {
			continue
		}
		v, err := columnValue(fc.col, val)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", fc.col, len(args)+1))
		args = append(args, v)
	}
	if len(sets) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no fields to update"})
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND company_id = $%d",
		table, strings.Join(sets, ", "), len(args)+1, len(args)+2)
	args = append(args, id, companyID)

	res, err := s.db.Exec(query, args...)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProjectFields(c echo.Context) error {
	return s.applyFields(c, "projects", projectFieldColumns)
}

func (s *Server) handleTaskFields(c echo.Context) error {
	return s.applyFields(c, "tasks", taskFieldColumns)
}

func (s *Server) handleEventFields(c echo.Context) error {
	return s.applyFields(c, "events", eventFieldColumns)
}

// fieldString pulls an optional string field from a create payload.
func fieldString(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldDate(fields map[string]any, key string) (any, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, nil
	}
	str, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected date string for %s", key)
	}
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return nil, fmt.Errorf("invalid date for %s: %w", key, err)
	}
	return t.UTC(), nil
}

func (s *Server) handleProjectCreate(c echo.Context) error {
	companyID := c.Get("company_id").(string)

	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	name := fieldString(fields, "Name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name is required"})
	}
	status := fieldString(fields, "Status")
	if status == "" {
		status = "pending"
	}
	start, err := fieldDate(fields, "Start Date")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	end, err := fieldDate(fields, "End Date")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var id string
	err = s.db.QueryRow(`
		INSERT INTO projects (company_id, client_id, name, status, notes, start_date, end_date, team_member_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		companyID, fieldString(fields, "Client"), name, status,
		fieldString(fields, "Notes"), start, end, fieldString(fields, "Team Members"),
	).Scan(&id)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleTaskCreate(c echo.Context) error {
	companyID := c.Get("company_id").(string)

	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	name := fieldString(fields, "Name")
	projectID := fieldString(fields, "Project")
	if name == "" || projectID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name and Project are required"})
	}
	status := fieldString(fields, "Status")
	if status == "" {
		status = "pending"
	}

	var id string
	err := s.db.QueryRow(`
		INSERT INTO tasks (company_id, project_id, name, task_type, status, notes, team_member_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		companyID, projectID, name, fieldString(fields, "Task Type"),
		status, fieldString(fields, "Notes"), fieldString(fields, "Team Members"),
	).Scan(&id)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleEventCreate(c echo.Context) error {
	companyID := c.Get("company_id").(string)

	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	start, err := fieldDate(fields, "Start Date")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	end, err := fieldDate(fields, "End Date")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	duration := 0
	if n, ok := fields["Duration"].(float64); ok {
		duration = int(n)
	}

	// Project and task ids are optional; empty strings become NULLs
	// so the FK-free columns stay clean.
	var projectID, taskID any
	if v := fieldString(fields, "Project"); v != "" {
		projectID = v
	}
	if v := fieldString(fields, "Task"); v != "" {
		taskID = v
	}

	color := fieldString(fields, "Color")
	if color == "" {
		color = "#4ECDC4"
	}

	var id string
	err = s.db.QueryRow(`
		INSERT INTO events (company_id, project_id, task_id, title, color, start_date, end_date, duration, team_member_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		companyID, projectID, taskID, fieldString(fields, "Title"), color,
		start, end, duration, fieldString(fields, "Team Members"),
	).Scan(&id)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

// deleteRow removes one company-scoped row.
func (s *Server) deleteRow(c echo.Context, table string) error {
	id := c.Param("id")
	companyID := c.Get("company_id").(string)

	res, err := s.db.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND company_id = $2", table),
		id, companyID,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTaskDelete(c echo.Context) error {
	// Drop the task's calendar events first so nothing dangles.
	if _, err := s.db.Exec(
		`DELETE FROM events WHERE task_id = $1 AND company_id = $2`,
		c.Param("id"), c.Get("company_id").(string),
	); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return s.deleteRow(c, "tasks")
}

func (s *Server) handleEventDelete(c echo.Context) error {
	return s.deleteRow(c, "events")
}
