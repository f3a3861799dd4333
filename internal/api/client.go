package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/fieldforge/jobsync/internal/logger"
	"github.com/fieldforge/jobsync/internal/model"
)

// Client is the stateless request/response mapper between entity
// operations and backend calls. It holds no entity state of its own.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an API client for one backend.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken swaps the bearer token after login/refresh.
func (c *Client) SetToken(token string) {
	c.token = token
}

// SetBaseURL repoints the client at a different backend.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// Online reports whether the backend is currently reachable.
func (c *Client) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("HTTP request failed",
			logger.F("method", method),
			logger.F("path", path),
			logger.F("error", err))
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		logger.Error("Backend returned error",
			logger.F("method", method),
			logger.F("path", path),
			logger.F("status", resp.StatusCode),
			logger.F("response", string(respBody)))
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

type createdResponse struct {
	ID string `json:"id"`
}

// UpdateProjectFields applies a field-map update to a project.
func (c *Client) UpdateProjectFields(ctx context.Context, projectID string, fields Fields) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/projects/"+projectID+"/fields", fields, nil)
}

// CreateProject pushes a never-synced project and returns its backend ID.
func (c *Client) CreateProject(ctx context.Context, create ProjectCreate) (string, error) {
	var out createdResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects", create.FieldMap(), &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpdateTaskFields applies a field-map update to a task.
func (c *Client) UpdateTaskFields(ctx context.Context, taskID string, fields Fields) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/tasks/"+taskID+"/fields", fields, nil)
}

// CreateTask pushes a never-synced task and returns its backend ID.
func (c *Client) CreateTask(ctx context.Context, create TaskCreate) (string, error) {
	var out createdResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/tasks", create.FieldMap(), &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// DeleteTask removes a task remotely. Local removal happens only after
// this succeeds.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/tasks/"+taskID, nil, nil)
}

// CreateCalendarEvent creates a remote event and returns its backend ID.
func (c *Client) CreateCalendarEvent(ctx context.Context, create EventCreate) (string, error) {
	var out createdResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/events", create.FieldMap(), &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpdateCalendarEvent applies a field-map update to a calendar event.
func (c *Client) UpdateCalendarEvent(ctx context.Context, eventID string, fields Fields) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/events/"+eventID+"/fields", fields, nil)
}

// DeleteCalendarEvent removes a calendar event remotely.
func (c *Client) DeleteCalendarEvent(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/events/"+eventID, nil, nil)
}

// FetchCompany pulls the tenant record.
func (c *Client) FetchCompany(ctx context.Context, companyID string) (*model.Company, error) {
	var company model.Company
	if err := c.do(ctx, http.MethodGet, "/api/v1/companies/"+companyID, nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// FetchCompanyUsers pulls the full team roster for a company.
func (c *Client) FetchCompanyUsers(ctx context.Context, companyID string) ([]model.User, error) {
	var out struct {
		Users []model.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/companies/"+companyID+"/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// FetchCompanyTaskTypes pulls the company's task-type list.
func (c *Client) FetchCompanyTaskTypes(ctx context.Context, companyID string) ([]string, error) {
	var out struct {
		TaskTypes []string `json:"task_types"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/companies/"+companyID+"/task-types", nil, &out); err != nil {
		return nil, err
	}
	return out.TaskTypes, nil
}

// FetchUser pulls a single user record.
func (c *Client) FetchUser(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/"+userID, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UploadImage sends image bytes for an owning entity and returns the
// remote URL.
func (c *Client) UploadImage(ctx context.Context, ownerType, ownerID, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("owner_type", ownerType); err != nil {
		return "", err
	}
	if err := w.WriteField("owner_id", ownerID); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/images", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Image upload failed", logger.F("owner", ownerID), logger.F("error", err))
		return "", fmt.Errorf("upload failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server error (%d): %s", resp.StatusCode, string(respBody))
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.URL, nil
}
