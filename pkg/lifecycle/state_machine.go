package lifecycle

// Status is an item's position in the handover lifecycle.
type Status string

const (
	StatusActive          Status = "active"
	StatusPendingHandover Status = "pending_handover"
	StatusHandedOver      Status = "handed_over"
)

// StateMachine enforces item status transitions
type StateMachine struct {
	allowedTransitions map[Status][]Status
}

// NewStateMachine creates a new state machine with allowed transitions
func NewStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[Status][]Status{
			StatusActive:          {StatusPendingHandover},
			StatusPendingHandover: {StatusHandedOver},
			StatusHandedOver:      {}, // terminal, nothing leaves handed_over
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to Status) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from Status) []Status {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []Status{}
	}
	return allowed
}

// IsTerminal reports whether no transition leaves the given status.
func (sm *StateMachine) IsTerminal(s Status) bool {
	return len(sm.allowedTransitions[s]) == 0
}

// ValidStatus reports whether s is one of the known item statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusPendingHandover, StatusHandedOver:
		return true
	}
	return false
}
