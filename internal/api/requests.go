package api

import (
	"time"

	"github.com/fieldforge/jobsync/internal/model"
)

// The backend takes field updates as a dictionary of its own field
// names rather than typed request bodies. Internally everything is a
// typed struct; the string-keyed form is generated only here, at
// serialization time.

// Fields is the wire form of a field-based update.
type Fields map[string]any

// wireDate formats a timestamp the way the backend expects:
// ISO-8601, UTC, no fractional seconds.
func wireDate(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func wireDatePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return wireDate(*t)
}

// StatusUpdate changes an entity's status.
type StatusUpdate struct {
	Status string
}

func (u StatusUpdate) FieldMap() Fields {
	return Fields{"Status": u.Status}
}

// NotesUpdate replaces an entity's free-text notes.
type NotesUpdate struct {
	Notes string
}

func (u NotesUpdate) FieldMap() Fields {
	return Fields{"Notes": u.Notes}
}

// TeamMembersUpdate replaces an entity's team roster.
type TeamMembersUpdate struct {
	MemberIDs []string
}

func (u TeamMembersUpdate) FieldMap() Fields {
	return Fields{"Team Members": model.JoinMemberIDs(u.MemberIDs)}
}

// DateRangeUpdate sets or clears a project's displayed date range.
// When Clear is true both dates go out as explicit nulls.
type DateRangeUpdate struct {
	Start *time.Time
	End   *time.Time
	Clear bool
}

func (u DateRangeUpdate) FieldMap() Fields {
	if u.Clear {
		return Fields{"Start Date": nil, "End Date": nil}
	}
	return Fields{
		"Start Date": wireDatePtr(u.Start),
		"End Date":   wireDatePtr(u.End),
	}
}

// EventWindowUpdate sets or clears a calendar event's window. Dates
// and duration always travel together.
type EventWindowUpdate struct {
	Start    *time.Time
	End      *time.Time
	Duration int
}

func (u EventWindowUpdate) FieldMap() Fields {
	return Fields{
		"Start Date": wireDatePtr(u.Start),
		"End Date":   wireDatePtr(u.End),
		"Duration":   u.Duration,
	}
}

// EventCreate is the payload for creating a calendar event linked to a
// project or task.
type EventCreate struct {
	Title     string
	Color     string
	CompanyID string
	ProjectID string
	TaskID    string
	Start     *time.Time
	End       *time.Time
	Duration  int
	MemberIDs []string
}

func (c EventCreate) FieldMap() Fields {
	return Fields{
		"Title":        c.Title,
		"Color":        c.Color,
		"Company":      c.CompanyID,
		"Project":      c.ProjectID,
		"Task":         c.TaskID,
		"Start Date":   wireDatePtr(c.Start),
		"End Date":     wireDatePtr(c.End),
		"Duration":     c.Duration,
		"Team Members": model.JoinMemberIDs(c.MemberIDs),
	}
}

// ProjectCreate is the payload for a project's first push.
type ProjectCreate struct {
	Name      string
	Status    string
	Notes     string
	CompanyID string
	ClientID  string
	MemberIDs []string
	Start     *time.Time
	End       *time.Time
}

func (c ProjectCreate) FieldMap() Fields {
	return Fields{
		"Name":         c.Name,
		"Status":       c.Status,
		"Notes":        c.Notes,
		"Company":      c.CompanyID,
		"Client":       c.ClientID,
		"Team Members": model.JoinMemberIDs(c.MemberIDs),
		"Start Date":   wireDatePtr(c.Start),
		"End Date":     wireDatePtr(c.End),
	}
}

// TaskCreate is the payload for a task's first push.
type TaskCreate struct {
	Name      string
	TaskType  string
	Status    string
	Notes     string
	CompanyID string
	ProjectID string
	MemberIDs []string
}

func (c TaskCreate) FieldMap() Fields {
	return Fields{
		"Name":         c.Name,
		"Task Type":    c.TaskType,
		"Status":       c.Status,
		"Notes":        c.Notes,
		"Company":      c.CompanyID,
		"Project":      c.ProjectID,
		"Team Members": model.JoinMemberIDs(c.MemberIDs),
	}
}
