package events

import "time"

const LeaveDecisionTopic = "hr.leave.decision.v1"

// LeaveDecisionRecordedEvent is published for every ledger entry, feeding the
// reporting and history views downstream.
type LeaveDecisionRecordedEvent struct {
	EventType      string    `json:"event_type"`
	LeaveRequestID string    `json:"leave_request_id"`
	Reference      string    `json:"reference"`
	EmployeeID     string    `json:"employee_id"`
	ActorID        string    `json:"actor_id"`
	DecisionType   string    `json:"decision_type"`
	RequestStatus  string    `json:"request_status"`
	OccurredAt     time.Time `json:"occurred_at"`
}
