package model

import "time"

// CalendarEvent is a scheduled window attached to a project or a task.
// Exactly one of ProjectID/TaskID identifies the owner; task-level
// events also carry the project for backend scoping.
type CalendarEvent struct {
	SyncEnvelope

	Title     string     `json:"title"`
	Color     string     `json:"color"`
	ProjectID string     `json:"project_id,omitempty"`
	TaskID    string     `json:"task_id,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Duration  int        `json:"duration"` // inclusive days; 0 when unscheduled

	// Dual team representation, kept identical by SetMembers.
	Members      []string `json:"members"`
	MemberIDList string   `json:"member_id_list"`
}

// DurationDays returns the inclusive day count of a window.
func DurationDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

// SetWindow sets both dates and recomputes the duration.
func (ev *CalendarEvent) SetWindow(start, end time.Time) {
	s, e := start, end
	ev.StartDate = &s
	ev.EndDate = &e
	ev.Duration = DurationDays(start, end)
	ev.MarkDirty()
}

// ClearWindow removes the schedule. Dates and duration are cleared
// together; a half-cleared window is never persisted.
func (ev *CalendarEvent) ClearWindow() {
	ev.StartDate = nil
	ev.EndDate = nil
	ev.Duration = 0
	ev.MarkDirty()
}

// Scheduled reports whether the event has a complete window.
func (ev *CalendarEvent) Scheduled() bool {
	return ev.StartDate != nil && ev.EndDate != nil
}

// SetMembers updates both team representations together.
func (ev *CalendarEvent) SetMembers(ids []string) {
	ev.Members = NormalizeMemberIDs(ids)
	ev.MemberIDList = JoinMemberIDs(ids)
	ev.MarkDirty()
}

// NewCalendarEvent creates an unscheduled event owned by a project or task.
func NewCalendarEvent(id, companyID, title string) CalendarEvent {
	return CalendarEvent{
		SyncEnvelope: SyncEnvelope{
			ID:           id,
			CompanyID:    companyID,
			NeedsSync:    true,
			SyncPriority: PriorityNormal,
		},
		Title:   title,
		Color:   "#4ECDC4",
		Members: []string{},
	}
}
