package domain

import "time"

// Sentiment is the overall tone a manager assigns to a piece of feedback.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Tag is a label attached to feedback.
type Tag struct {
	ID   int64  `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Feedback is a single piece of structured feedback from a manager to an employee.
type Feedback struct {
	ID               int64      `json:"id"                        yaml:"id"           validate:"required"`
	ManagerID        int64      `json:"manager_id"                yaml:"manager_id"`
	EmployeeID       int64      `json:"employee_id"               yaml:"employee_id"`
	Strengths        string     `json:"strengths"                 yaml:"strengths"`
	Improvements     string     `json:"improvements"              yaml:"improvements"`
	Sentiment        Sentiment  `json:"sentiment"                 yaml:"sentiment"    validate:"required,oneof=positive neutral negative"`
	Acknowledged     bool       `json:"acknowledged"              yaml:"acknowledged"`
	AcknowledgedAt   *time.Time `json:"acknowledged_at,omitempty" yaml:"acknowledged_at,omitempty"`
	Comment          string     `json:"comment,omitempty"         yaml:"comment,omitempty"`
	Tags             []Tag      `json:"tags,omitempty"            yaml:"tags,omitempty"`
	// Anonymous feedback is shown to every employee, not just its recipient.
	Anonymous        bool       `json:"anonymous"                 yaml:"anonymous"`
	VisibleToManager bool       `json:"visible_to_manager"        yaml:"visible_to_manager"`
	CreatedAt        time.Time  `json:"created_at"                yaml:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"      yaml:"updated_at,omitempty"`
	Manager          *User      `json:"manager,omitempty"         yaml:"manager,omitempty"`
	Employee         *User      `json:"employee,omitempty"        yaml:"employee,omitempty"`
}

// FeedbackInput carries the fields for creating or updating feedback.
type FeedbackInput struct {
	EmployeeID       int64     `json:"employee_id,omitempty"`
	Strengths        string    `json:"strengths"                    validate:"required"`
	Improvements     string    `json:"improvements"                 validate:"required"`
	Sentiment        Sentiment `json:"sentiment"                    validate:"required,oneof=positive neutral negative"`
	Tags             []string  `json:"tags,omitempty"`
	Anonymous        bool      `json:"anonymous,omitempty"`
	VisibleToManager bool      `json:"visible_to_manager,omitempty"`
}

// HasTags reports whether fb carries every tag in names.
func (fb *Feedback) HasTags(names []string) bool {
	for _, want := range names {
		found := false
		for _, t := range fb.Tags {
			if t.Name == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// DashboardStats mirrors GET /feedback/dashboard/stats.
type DashboardStats struct {
	Total        int `json:"total_feedback"        yaml:"total_feedback"`
	Positive     int `json:"positive_feedback"     yaml:"positive_feedback"`
	Neutral      int `json:"neutral_feedback"      yaml:"neutral_feedback"`
	Negative     int `json:"negative_feedback"     yaml:"negative_feedback"`
	Acknowledged int `json:"acknowledged_feedback" yaml:"acknowledged_feedback"`
}

const (
	RequestPending   = "pending"
	RequestCompleted = "completed"
)

// FeedbackRequest is an employee's request for feedback from a manager.
type FeedbackRequest struct {
	ID          int64      `json:"id"                     yaml:"id"     validate:"required"`
	EmployeeID  int64      `json:"employee_id"            yaml:"employee_id"`
	ManagerID   int64      `json:"manager_id"             yaml:"manager_id"`
	Status      string     `json:"status"                 yaml:"status" validate:"required,oneof=pending completed"`
	CreatedAt   time.Time  `json:"created_at"             yaml:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Employee    *User      `json:"employee,omitempty"     yaml:"employee,omitempty"`
	Manager     *User      `json:"manager,omitempty"      yaml:"manager,omitempty"`
}
