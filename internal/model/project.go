package model

import "time"

// Project statuses as the backend spells them.
const (
	StatusPending    = "pending"
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Project is a job for a client: a set of tasks, an optional
// project-level schedule and a team roster.
type Project struct {
	SyncEnvelope

	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Notes     string     `json:"notes"`
	ClientID  string     `json:"client_id,omitempty"`
	EventID   string     `json:"event_id,omitempty"` // primary calendar event, when scheduled at project granularity
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	ImageURLs []string `json:"image_urls,omitempty"`

	// Dual team representation, kept identical by SetMembers.
	Members      []string `json:"members"`
	MemberIDList string   `json:"member_id_list"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProject creates a local project that has never been pushed.
func NewProject(id, companyID, name string) Project {
	now := time.Now().UTC()
	return Project{
		SyncEnvelope: SyncEnvelope{
			ID:           id,
			CompanyID:    companyID,
			NeedsSync:    true,
			SyncPriority: PriorityNormal,
		},
		Name:      name,
		Status:    StatusPending,
		Members:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetMembers updates both team representations together.
func (p *Project) SetMembers(ids []string) {
	p.Members = NormalizeMemberIDs(ids)
	p.MemberIDList = JoinMemberIDs(ids)
	p.MarkDirty()
}

// SetDates sets the displayed date range.
func (p *Project) SetDates(start, end time.Time) {
	s, e := start, end
	p.StartDate = &s
	p.EndDate = &e
	p.MarkDirty()
}

// ClearDates nulls the displayed date range.
func (p *Project) ClearDates() {
	p.StartDate = nil
	p.EndDate = nil
	p.MarkDirty()
}

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
