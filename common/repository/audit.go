// Package repository persists the job audit log: an append-only
// record of state transitions and breakpoint hits, kept for post-hoc
// operator review and never read back into a running job (spec.md
// §1's "does not persist workspace state across runs" is about
// resuming a run from saved workspace values, not about this log).
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lyzr/sequencer/common/db"
)

// EventType categorizes one audit row.
type EventType string

const (
	EventStateChange   EventType = "state_change"
	EventBreakpointHit EventType = "breakpoint_hit"
)

// AuditEvent is one row of the job_audit_event table.
type AuditEvent struct {
	ID        uuid.UUID
	JobID     string
	Type      EventType
	Detail    string
	CreatedAt time.Time
}

// JobAuditRepository records and retrieves AuditEvents.
type JobAuditRepository struct {
	db *db.DB
}

// NewJobAuditRepository builds a JobAuditRepository backed by database.
func NewJobAuditRepository(database *db.DB) *JobAuditRepository {
	return &JobAuditRepository{db: database}
}

// RecordStateChange appends a state-transition event for jobID.
func (r *JobAuditRepository) RecordStateChange(ctx context.Context, jobID, state string) error {
	return r.insert(ctx, jobID, EventStateChange, state)
}

// RecordBreakpointHit appends a breakpoint-set-or-cleared event for
// jobID, naming the instruction the breakpoint sits on.
func (r *JobAuditRepository) RecordBreakpointHit(ctx context.Context, jobID, instructionID string, set bool) error {
	detail := fmt.Sprintf("instruction=%s set=%t", instructionID, set)
	return r.insert(ctx, jobID, EventBreakpointHit, detail)
}

func (r *JobAuditRepository) insert(ctx context.Context, jobID string, typ EventType, detail string) error {
	query := `
		INSERT INTO job_audit_event (id, job_id, event_type, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, uuid.New(), jobID, string(typ), detail, time.Now())
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByJob retrieves jobID's audit trail, oldest first, capped at
// limit rows.
func (r *JobAuditRepository) ListByJob(ctx context.Context, jobID string, limit int) ([]*AuditEvent, error) {
	query := `
		SELECT id, job_id, event_type, detail, created_at
		FROM job_audit_event
		WHERE job_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, jobID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []*AuditEvent
	for rows.Next() {
		e := &AuditEvent{}
		var typ string
		if err := rows.Scan(&e.ID, &e.JobID, &typ, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Type = EventType(typ)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
