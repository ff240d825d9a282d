package models

import "time"

// Audit actions recorded after successful mutations.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLogout         = "LOGOUT"
	AuditActionAccountCreate  = "ACCOUNT_CREATE"
	AuditActionAccountUpdate  = "ACCOUNT_UPDATE"
	AuditActionAccountDelete  = "ACCOUNT_DELETE"
	AuditActionStatusToggle   = "STATUS_TOGGLE"
	AuditActionSessionCreate  = "SESSION_CREATE"
	AuditActionTransition     = "SESSION_TRANSITION"
	AuditActionSessionDelete  = "SESSION_DELETE"
	AuditActionInventoryWrite = "INVENTORY_WRITE"
	AuditActionEmergency      = "EMERGENCY_UPDATE"
	AuditActionModeration     = "MODERATION"
	AuditActionReportRequest  = "REPORT_REQUEST"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	ActorID    *string   `db:"actor_id" json:"actor_id,omitempty"`
	ActorRole  *Role     `db:"actor_role" json:"actor_role,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
