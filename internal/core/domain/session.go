package domain

// Phase is the bootstrap state of the session.
type Phase string

const (
	PhasePending  Phase = "pending"
	PhaseResolved Phase = "resolved"
)

// Snapshot is a read-only copy of the session state handed to consumers.
type Snapshot struct {
	User  *User `json:"user,omitempty"`
	Phase Phase `json:"phase"`
}

// Authenticated reports whether a validated user is present.
func (s Snapshot) Authenticated() bool {
	return s.User != nil
}

// Resolved reports whether the initial credential check has completed.
func (s Snapshot) Resolved() bool {
	return s.Phase == PhaseResolved
}
