package sync

import (
	"context"

	"github.com/fieldforge/jobsync/internal/api"
	"github.com/fieldforge/jobsync/internal/model"
)

// Remote is the backend surface the sync manager depends on.
// *api.Client satisfies it; tests substitute a fake.
type Remote interface {
	Online(ctx context.Context) bool

	UpdateProjectFields(ctx context.Context, projectID string, fields api.Fields) error
	CreateProject(ctx context.Context, create api.ProjectCreate) (string, error)

	UpdateTaskFields(ctx context.Context, taskID string, fields api.Fields) error
	CreateTask(ctx context.Context, create api.TaskCreate) (string, error)
	DeleteTask(ctx context.Context, taskID string) error

	CreateCalendarEvent(ctx context.Context, create api.EventCreate) (string, error)
	UpdateCalendarEvent(ctx context.Context, eventID string, fields api.Fields) error
	DeleteCalendarEvent(ctx context.Context, eventID string) error

	FetchCompany(ctx context.Context, companyID string) (*model.Company, error)
	FetchCompanyUsers(ctx context.Context, companyID string) ([]model.User, error)
	FetchCompanyTaskTypes(ctx context.Context, companyID string) ([]string, error)
	FetchUser(ctx context.Context, userID string) (*model.User, error)
}
