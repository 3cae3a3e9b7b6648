package entity

import "time"

type Project struct {
	ID          string
	Name        string
	Key         string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Team struct {
	ID        string
	ProjectID string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TeamMember struct {
	TeamID    string
	UserID    string
	Role      TeamRole
	CreatedAt time.Time
}

// WorkItemType classifies a work item. EPIC and FEATURE creation requires an
// elevated global role; the check is enforced server-side.
type WorkItemType string

const (
	ItemEpic    WorkItemType = "EPIC"
	ItemFeature WorkItemType = "FEATURE"
	ItemStory   WorkItemType = "STORY"
	ItemTask    WorkItemType = "TASK"
	ItemBug     WorkItemType = "BUG"
)

func (t WorkItemType) Valid() bool {
	switch t {
	case ItemEpic, ItemFeature, ItemStory, ItemTask, ItemBug:
		return true
	}
	return false
}

// RequiresElevatedRole reports whether creating an item of this type needs
// ADMIN or SCRUM_MASTER.
func (t WorkItemType) RequiresElevatedRole() bool {
	return t == ItemEpic || t == ItemFeature
}

type WorkItemStatus string

const (
	StatusTodo       WorkItemStatus = "TODO"
	StatusInProgress WorkItemStatus = "IN_PROGRESS"
	StatusInReview   WorkItemStatus = "IN_REVIEW"
	StatusDone       WorkItemStatus = "DONE"
)

func (s WorkItemStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusDone:
		return true
	}
	return false
}

type WorkItem struct {
	ID          string
	ProjectID   string
	Type        WorkItemType
	Title       string
	Description string
	Status      WorkItemStatus
	Priority    int
	AssigneeID  *string
	ReporterID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
