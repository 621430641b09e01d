package models

import "time"

// EntityKind names a domain table. Kinds key the dependency registry, the
// constraint maps and the export gatherers.
type EntityKind string

const (
	KindLevel             EntityKind = "level"
	KindClass             EntityKind = "class"
	KindDepartment        EntityKind = "department"
	KindStaffRole         EntityKind = "staff role"
	KindStaffDepartment   EntityKind = "staff department"
	KindStaff             EntityKind = "staff"
	KindGuardian          EntityKind = "guardian"
	KindStudent           EntityKind = "student"
	KindSubject           EntityKind = "subject"
	KindGrade             EntityKind = "grade"
	KindTotalGrade        EntityKind = "total grade"
	KindSubjectEducator   EntityKind = "subject educator"
	KindAccessLevelChange EntityKind = "access level change"
)

// ArchiveReason enumerates why an entity left the active view.
type ArchiveReason string

const (
	ArchiveReasonAdministrative ArchiveReason = "ADMINISTRATIVE"
	ArchiveReasonGraduated      ArchiveReason = "GRADUATED"
	ArchiveReasonTransferred    ArchiveReason = "TRANSFERRED"
	ArchiveReasonWithdrawn      ArchiveReason = "WITHDRAWN"
	ArchiveReasonError          ArchiveReason = "ERROR"
)

// Valid reports whether the reason is one of the enumerated values.
func (r ArchiveReason) Valid() bool {
	switch r {
	case ArchiveReasonAdministrative, ArchiveReasonGraduated, ArchiveReasonTransferred,
		ArchiveReasonWithdrawn, ArchiveReasonError:
		return true
	}
	return false
}

// Lifecycle is the envelope every domain entity embeds. The three archive
// fields are set and cleared together: is_archived is true exactly when all
// of archived_at, archived_by and archive_reason are non-null.
type Lifecycle struct {
	ID             string         `db:"id" json:"id"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	CreatedBy      string         `db:"created_by" json:"created_by"`
	LastModifiedAt time.Time      `db:"last_modified_at" json:"last_modified_at"`
	LastModifiedBy string         `db:"last_modified_by" json:"last_modified_by"`
	IsArchived     bool           `db:"is_archived" json:"is_archived"`
	ArchivedAt     *time.Time     `db:"archived_at" json:"archived_at"`
	ArchivedBy     *string        `db:"archived_by" json:"archived_by"`
	ArchiveReason  *ArchiveReason `db:"archive_reason" json:"archive_reason"`
	IsExported     bool           `db:"is_exported" json:"-"`
}

// Envelope returns the embedded lifecycle fields.
func (l *Lifecycle) Envelope() *Lifecycle { return l }

// MarkCreated stamps creation and modification attribution.
func (l *Lifecycle) MarkCreated(id, actor string, now time.Time) {
	l.ID = id
	l.CreatedAt = now
	l.CreatedBy = actor
	l.LastModifiedAt = now
	l.LastModifiedBy = actor
}

// MarkModified stamps modification attribution.
func (l *Lifecycle) MarkModified(actor string, now time.Time) {
	l.LastModifiedAt = now
	l.LastModifiedBy = actor
}

// MarkArchived sets the archive triple and modification attribution.
func (l *Lifecycle) MarkArchived(actor string, reason ArchiveReason, now time.Time) {
	l.IsArchived = true
	l.ArchivedAt = &now
	l.ArchivedBy = &actor
	l.ArchiveReason = &reason
	l.MarkModified(actor, now)
}

// ClearArchive restores the entity into the active view, clearing all three
// archive fields so the envelope invariant holds.
func (l *Lifecycle) ClearArchive(actor string, now time.Time) {
	l.IsArchived = false
	l.ArchivedAt = nil
	l.ArchivedBy = nil
	l.ArchiveReason = nil
	l.MarkModified(actor, now)
}
