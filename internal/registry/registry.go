// Package registry declares, per entity kind, everything the lifecycle engine
// needs to know statically: the backing table, the filter and sort whitelists,
// the related collections with their archive/delete policies, and the store
// constraint names mapped back to fields and referenced entities.
package registry

import (
	"fmt"
	"sort"

	"github.com/noah-isme/sims-api/internal/models"
)

// Policy decides how a related collection gates archive and delete.
type Policy string

const (
	// BlockArchive forbids archiving the parent while any active child exists.
	BlockArchive Policy = "BLOCK_ARCHIVE"
	// CascadeDelete removes the children inside the parent's delete transaction.
	CascadeDelete Policy = "CASCADE_DELETE"
	// NullifyDelete relies on the store setting the child FK to NULL; the FK
	// must be declared ON DELETE SET NULL.
	NullifyDelete Policy = "NULLIFY_DELETE"
)

// Relation is one declared related collection of a parent entity.
type Relation struct {
	Name        string
	ChildTable  string
	FKColumn    string
	DisplayName string
	Policy      Policy
}

// FKTarget resolves a store FK constraint back to the referenced entity. The
// Attribute names the column on the in-flight entity carrying the missing id.
type FKTarget struct {
	Entity      models.EntityKind
	Attribute   string
	DisplayName string
}

// Table is the static declaration for one entity kind.
type Table struct {
	Kind        models.EntityKind
	Name        string
	DisplayName string

	// Columns beyond the lifecycle envelope, in insert order.
	Columns []string

	// Searchable columns matched case-insensitively by the free-text term.
	Searchable []string
	// Orderable columns allowed in order_by.
	Orderable []string
	// Filterable maps exposed filter keys to columns for exact matching.
	Filterable map[string]string

	Relations []Relation

	// UniqueConstraints maps store constraint names to the offending field.
	UniqueConstraints map[string]string
	// FKConstraints maps store constraint names to referenced entities.
	FKConstraints map[string]FKTarget
}

// EnvelopeColumns are shared by every lifecycle table, in insert order.
var EnvelopeColumns = []string{
	"id", "created_at", "created_by", "last_modified_at", "last_modified_by",
	"is_archived", "archived_at", "archived_by", "archive_reason", "is_exported",
}

var tables = map[models.EntityKind]Table{
	models.KindLevel: {
		Kind:        models.KindLevel,
		Name:        "levels",
		DisplayName: "Level",
		Columns:     []string{"name", "description", "rank_order"},
		Searchable:  []string{"name", "description"},
		Orderable:   []string{"name", "rank_order", "created_at", "last_modified_at"},
		Filterable:  map[string]string{"name": "name", "order": "rank_order"},
		Relations: []Relation{
			{Name: "classes", ChildTable: "classes", FKColumn: "level_id", DisplayName: "classes", Policy: BlockArchive},
			{Name: "students", ChildTable: "students", FKColumn: "level_id", DisplayName: "students", Policy: BlockArchive},
			{Name: "subjects", ChildTable: "subjects", FKColumn: "level_id", DisplayName: "subjects", Policy: BlockArchive},
		},
		UniqueConstraints: map[string]string{
			"levels_name_key": "name",
		},
	},
	models.KindClass: {
		Kind:        models.KindClass,
		Name:        "classes",
		DisplayName: "Class",
		Columns:     []string{"code", "level_id", "rank_order"},
		Searchable:  []string{"code"},
		Orderable:   []string{"code", "rank_order", "created_at", "last_modified_at"},
		Filterable:  map[string]string{"code": "code", "level_id": "level_id"},
		Relations: []Relation{
			{Name: "students", ChildTable: "students", FKColumn: "class_id", DisplayName: "students", Policy: BlockArchive},
		},
		UniqueConstraints: map[string]string{
			"classes_code_key":                "code",
			"classes_level_id_rank_order_key": "order",
		},
		FKConstraints: map[string]FKTarget{
			"classes_level_id_fkey": {Entity: models.KindLevel, Attribute: "level_id", DisplayName: "Level"},
		},
	},
	models.KindDepartment: {
		Kind:        models.KindDepartment,
		Name:        "departments",
		DisplayName: "Department",
		Columns:     []string{"name", "description", "code"},
		Searchable:  []string{"name", "description", "code"},
		Orderable:   []string{"name", "code", "created_at", "last_modified_at"},
		Filterable:  map[string]string{"name": "name", "code": "code"},
		Relations: []Relation{
			{Name: "students", ChildTable: "students", FKColumn: "department_id", DisplayName: "students", Policy: NullifyDelete},
		},
		UniqueConstraints: map[string]string{
			"departments_name_key": "name",
			"departments_code_key": "code",
		},
	},
	models.KindStaffRole: {
		Kind:        models.KindStaffRole,
		Name:        "staff_roles",
		DisplayName: "Staff Role",
		Columns:     []string{"name", "description"},
		Searchable:  []string{"name", "description"},
		Orderable:   []string{"name", "created_at", "last_modified_at"},
		Filterable:  map[string]string{"name": "name"},
		Relations: []Relation{
			{Name: "staff", ChildTable: "staff", FKColumn: "role_id", DisplayName: "staff members", Policy: BlockArchive},
		},
		UniqueConstraints: map[string]string{
			"staff_roles_name_key": "name",
		},
	},
	models.KindStaffDepartment: {
		Kind:        models.KindStaffDepartment,
		Name:        "staff_departments",
		DisplayName: "Staff Department",
		Columns:     []string{"name", "description"},
		Searchable:  []string{"name", "description"},
		Orderable:   []string{"name", "created_at", "last_modified_at"},
		Filterable:  map[string]string{"name": "name"},
		Relations: []Relation{
			{Name: "staff", ChildTable: "staff", FKColumn: "department_id", DisplayName: "staff members", Policy: BlockArchive},
		},
		UniqueConstraints: map[string]string{
			"staff_departments_name_key": "name",
		},
	},
	models.KindStaff: {
		Kind:        models.KindStaff,
		Name:        "staff",
		DisplayName: "Staff",
		Columns: []string{
			"staff_kind", "name", "email", "phone", "role_id", "department_id",
			"access_level", "password_hash", "date_joined",
		},
		Searchable: []string{"name", "email"},
		Orderable:  []string{"name", "email", "date_joined", "created_at", "last_modified_at"},
		Filterable: map[string]string{
			"staff_kind": "staff_kind", "email": "email",
			"role_id": "role_id", "department_id": "department_id",
		},
		Relations: []Relation{
			{Name: "subject_educators", ChildTable: "subject_educators", FKColumn: "educator_id", DisplayName: "subject assignments", Policy: NullifyDelete},
			{Name: "access_level_changes", ChildTable: "access_level_changes", FKColumn: "staff_id", DisplayName: "access level changes", Policy: NullifyDelete},
			{Name: "grades", ChildTable: "grades", FKColumn: "educator_id", DisplayName: "grades", Policy: NullifyDelete},
		},
		UniqueConstraints: map[string]string{
			"staff_email_key": "email",
		},
		FKConstraints: map[string]FKTarget{
			"staff_role_id_fkey":       {Entity: models.KindStaffRole, Attribute: "role_id", DisplayName: "Staff Role"},
			"staff_department_id_fkey": {Entity: models.KindStaffDepartment, Attribute: "department_id", DisplayName: "Staff Department"},
		},
	},
	models.KindGuardian: {
		Kind:        models.KindGuardian,
		Name:        "guardians",
		DisplayName: "Guardian",
		Columns:     []string{"name", "email", "phone", "address", "gender", "password_hash"},
		Searchable:  []string{"name", "email", "phone"},
		Orderable:   []string{"name", "email", "created_at", "last_modified_at"},
		Filterable:  map[string]string{"email": "email", "gender": "gender"},
		Relations: []Relation{
			{Name: "students", ChildTable: "students", FKColumn: "guardian_id", DisplayName: "students", Policy: BlockArchive},
		},
		UniqueConstraints: map[string]string{
			"guardians_email_key": "email",
			"guardians_phone_key": "phone",
		},
	},
	models.KindStudent: {
		Kind:        models.KindStudent,
		Name:        "students",
		DisplayName: "Student",
		Columns: []string{
			"name", "email", "student_number", "guardian_id", "level_id", "class_id",
			"department_id", "date_of_birth", "session_start_year", "password_hash",
		},
		Searchable: []string{"name", "email", "student_number"},
		Orderable:  []string{"name", "student_number", "session_start_year", "created_at", "last_modified_at"},
		Filterable: map[string]string{
			"level_id": "level_id", "class_id": "class_id",
			"guardian_id": "guardian_id", "department_id": "department_id",
			"session_start_year": "session_start_year",
		},
		Relations: []Relation{
			{Name: "grades", ChildTable: "grades", FKColumn: "student_id", DisplayName: "grades", Policy: CascadeDelete},
			{Name: "total_grades", ChildTable: "total_grades", FKColumn: "student_id", DisplayName: "total grades", Policy: CascadeDelete},
		},
		UniqueConstraints: map[string]string{
			"students_student_number_key": "student_number",
			"students_email_key":          "email",
		},
		FKConstraints: map[string]FKTarget{
			"students_guardian_id_fkey":   {Entity: models.KindGuardian, Attribute: "guardian_id", DisplayName: "Guardian"},
			"students_level_id_fkey":      {Entity: models.KindLevel, Attribute: "level_id", DisplayName: "Level"},
			"students_class_id_fkey":      {Entity: models.KindClass, Attribute: "class_id", DisplayName: "Class"},
			"students_department_id_fkey": {Entity: models.KindDepartment, Attribute: "department_id", DisplayName: "Department"},
		},
	},
	models.KindSubject: {
		Kind:        models.KindSubject,
		Name:        "subjects",
		DisplayName: "Subject",
		Columns:     []string{"name", "code", "level_id"},
		Searchable:  []string{"name", "code"},
		Orderable:   []string{"name", "code", "created_at", "last_modified_at"},
		Filterable:  map[string]string{"code": "code", "level_id": "level_id"},
		Relations: []Relation{
			{Name: "grades", ChildTable: "grades", FKColumn: "subject_id", DisplayName: "grades", Policy: BlockArchive},
			{Name: "subject_educators", ChildTable: "subject_educators", FKColumn: "subject_id", DisplayName: "educator assignments", Policy: BlockArchive},
		},
		UniqueConstraints: map[string]string{
			"subjects_code_key": "code",
		},
		FKConstraints: map[string]FKTarget{
			"subjects_level_id_fkey": {Entity: models.KindLevel, Attribute: "level_id", DisplayName: "Level"},
		},
	},
	models.KindGrade: {
		Kind:        models.KindGrade,
		Name:        "grades",
		DisplayName: "Grade",
		Columns:     []string{"student_id", "subject_id", "educator_id", "score", "weight", "term", "session"},
		Searchable:  []string{"session"},
		Orderable:   []string{"score", "term", "session", "created_at", "last_modified_at"},
		Filterable: map[string]string{
			"student_id": "student_id", "subject_id": "subject_id",
			"educator_id": "educator_id", "term": "term", "session": "session",
		},
		UniqueConstraints: map[string]string{},
		FKConstraints: map[string]FKTarget{
			"grades_student_id_fkey":  {Entity: models.KindStudent, Attribute: "student_id", DisplayName: "Student"},
			"grades_subject_id_fkey":  {Entity: models.KindSubject, Attribute: "subject_id", DisplayName: "Subject"},
			"grades_educator_id_fkey": {Entity: models.KindStaff, Attribute: "educator_id", DisplayName: "Educator"},
		},
	},
	models.KindTotalGrade: {
		Kind:        models.KindTotalGrade,
		Name:        "total_grades",
		DisplayName: "Total Grade",
		Columns:     []string{"student_id", "subject_id", "total", "term", "session"},
		Searchable:  []string{"session"},
		Orderable:   []string{"total", "term", "session", "created_at", "last_modified_at"},
		Filterable: map[string]string{
			"student_id": "student_id", "subject_id": "subject_id",
			"term": "term", "session": "session",
		},
		UniqueConstraints: map[string]string{
			"total_grades_student_subject_session_term_key": "student_id",
		},
		FKConstraints: map[string]FKTarget{
			"total_grades_student_id_fkey": {Entity: models.KindStudent, Attribute: "student_id", DisplayName: "Student"},
			"total_grades_subject_id_fkey": {Entity: models.KindSubject, Attribute: "subject_id", DisplayName: "Subject"},
		},
	},
	models.KindSubjectEducator: {
		Kind:        models.KindSubjectEducator,
		Name:        "subject_educators",
		DisplayName: "Subject Educator",
		Columns:     []string{"subject_id", "educator_id", "level_id", "session", "term"},
		Searchable:  []string{"session"},
		Orderable:   []string{"session", "term", "created_at", "last_modified_at"},
		Filterable: map[string]string{
			"subject_id": "subject_id", "educator_id": "educator_id",
			"level_id": "level_id", "session": "session", "term": "term",
		},
		UniqueConstraints: map[string]string{
			"subject_educators_assignment_key": "educator_id",
		},
		FKConstraints: map[string]FKTarget{
			"subject_educators_subject_id_fkey":  {Entity: models.KindSubject, Attribute: "subject_id", DisplayName: "Subject"},
			"subject_educators_educator_id_fkey": {Entity: models.KindStaff, Attribute: "educator_id", DisplayName: "Educator"},
			"subject_educators_level_id_fkey":    {Entity: models.KindLevel, Attribute: "level_id", DisplayName: "Level"},
		},
	},
	models.KindAccessLevelChange: {
		Kind:        models.KindAccessLevelChange,
		Name:        "access_level_changes",
		DisplayName: "Access Level Change",
		Columns:     []string{"staff_id", "changed_by_id", "previous_level", "new_level", "reason"},
		Searchable:  []string{"reason"},
		Orderable:   []string{"new_level", "created_at", "last_modified_at"},
		Filterable:  map[string]string{"staff_id": "staff_id", "changed_by_id": "changed_by_id"},
		FKConstraints: map[string]FKTarget{
			"access_level_changes_staff_id_fkey":      {Entity: models.KindStaff, Attribute: "staff_id", DisplayName: "Staff"},
			"access_level_changes_changed_by_id_fkey": {Entity: models.KindStaff, Attribute: "changed_by_id", DisplayName: "Staff"},
		},
	},
}

// Lookup returns the table declaration for a kind.
func Lookup(kind models.EntityKind) (Table, bool) {
	t, ok := tables[kind]
	return t, ok
}

// MustLookup panics on unknown kinds; wiring bugs should fail at startup.
func MustLookup(kind models.EntityKind) Table {
	t, ok := tables[kind]
	if !ok {
		panic(fmt.Sprintf("registry: unknown entity kind %q", kind))
	}
	return t
}

// Blocking returns the relations that gate archiving for a kind.
func (t Table) Blocking() []Relation {
	return t.byPolicy(BlockArchive)
}

// CascadeChildren returns the relations removed inside a cascade delete.
func (t Table) CascadeChildren() []Relation {
	return t.byPolicy(CascadeDelete)
}

// NullifyChildren returns the relations expected to SET NULL on delete.
func (t Table) NullifyChildren() []Relation {
	return t.byPolicy(NullifyDelete)
}

// References returns the declared foreign-key targets in attribute order.
func (t Table) References() []FKTarget {
	out := make([]FKTarget, 0, len(t.FKConstraints))
	for _, target := range t.FKConstraints {
		out = append(out, target)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Attribute < out[j].Attribute })
	return out
}

func (t Table) byPolicy(p Policy) []Relation {
	out := make([]Relation, 0, len(t.Relations))
	for _, rel := range t.Relations {
		if rel.Policy == p {
			out = append(out, rel)
		}
	}
	return out
}

// OrderableColumn returns the whitelisted sort column, defaulting to created_at.
func (t Table) OrderableColumn(requested string) string {
	for _, col := range t.Orderable {
		if col == requested {
			return col
		}
	}
	return "created_at"
}

// AllColumns returns the envelope columns followed by the entity columns.
func (t Table) AllColumns() []string {
	out := make([]string, 0, len(EnvelopeColumns)+len(t.Columns))
	out = append(out, EnvelopeColumns...)
	out = append(out, t.Columns...)
	return out
}
