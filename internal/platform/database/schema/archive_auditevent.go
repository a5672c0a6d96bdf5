package schema

// ArchiveAuditEventTable represents the 'archive.audit_event' table.
type ArchiveAuditEventTable struct {
	Table     string
	ID        string
	EventType string
	Payload   string
	CreatedAt string
}

// ArchiveAuditEvent is the schema definition for archive.audit_event.
var ArchiveAuditEvent = ArchiveAuditEventTable{
	Table:     "archive.audit_event",
	ID:        "id",
	EventType: "event_type",
	Payload:   "payload",
	CreatedAt: "created_at",
}

func (t ArchiveAuditEventTable) Columns() []string {
	return []string{t.ID, t.EventType, t.Payload, t.CreatedAt}
}
