package model

import "time"

// ProjectTask is a unit of work inside a project. It may carry its own
// schedule (an owned CalendarEvent) and its own team roster.
type ProjectTask struct {
	SyncEnvelope

	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	TaskType  string `json:"task_type,omitempty"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
	EventID   string `json:"event_id,omitempty"` // owned calendar event, when scheduled

	ImageURLs []string `json:"image_urls,omitempty"`

	// Dual team representation, kept identical by SetMembers.
	Members      []string `json:"members"`
	MemberIDList string   `json:"member_id_list"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProjectTask creates a local task that has never been pushed.
func NewProjectTask(id, companyID, projectID, name string) ProjectTask {
	now := time.Now().UTC()
	return ProjectTask{
		SyncEnvelope: SyncEnvelope{
			ID:           id,
			CompanyID:    companyID,
			NeedsSync:    true,
			SyncPriority: PriorityNormal,
		},
		ProjectID: projectID,
		Name:      name,
		Status:    StatusPending,
		Members:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetMembers updates both team representations together.
func (t *ProjectTask) SetMembers(ids []string) {
	t.Members = NormalizeMemberIDs(ids)
	t.MemberIDList = JoinMemberIDs(ids)
	t.MarkDirty()
}
