package models

import (
	"time"

	id "certifier/pkg/domain"
)

// EventType names a lifecycle event published after a record changes.
type EventType string

const (
	EventIssued      EventType = "certificate.issued"
	EventIssueFailed EventType = "certificate.issue_failed"
	EventNotPassing  EventType = "certificate.notpassing"
	EventRestricted  EventType = "certificate.restricted"
	EventRegenerated EventType = "certificate.regenerated"
	EventCallback    EventType = "certificate.callback_applied"
	EventReconciled  EventType = "certificate.reconciled"
)

// LifecycleEvent is the payload published on the lifecycle topic.
type LifecycleEvent struct {
	Type        EventType    `json:"type"`
	LearnerID   id.LearnerID `json:"-"`
	CourseID    CourseID     `json:"course_id"`
	Status      Status       `json:"status"`
	ExternalKey string       `json:"external_key,omitempty"`
	Grade       float64      `json:"grade"`
	Reason      string       `json:"reason,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// NewLifecycleEvent snapshots a record after a transition.
func NewLifecycleEvent(eventType EventType, record *Record, now time.Time) LifecycleEvent {
	return LifecycleEvent{
		Type:        eventType,
		LearnerID:   record.LearnerID,
		CourseID:    record.CourseID,
		Status:      record.Status,
		ExternalKey: record.ExternalKey,
		Grade:       record.Grade,
		Reason:      record.ErrorReason,
		OccurredAt:  now,
	}
}

// PartitionKey keeps one certificate's events ordered on a single partition.
func (e LifecycleEvent) PartitionKey() string {
	return e.LearnerID.String() + ":" + e.CourseID.String()
}
