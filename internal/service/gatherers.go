package service

// The gatherers assemble one export.Dataset per entity kind: the entity's own
// fields as the main table, its related collections as sections. Registered
// once at wiring time; a kind without a gatherer fails export with a typed
// error rather than an empty document.

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/internal/repository"
	"github.com/noah-isme/sims-api/pkg/export"
)

// RegisterGatherers installs a gatherer for every entity kind.
func RegisterGatherers(svc *ExportService, repos *Repos) {
	svc.Register(models.KindLevel, levelGatherer(repos))
	svc.Register(models.KindClass, classGatherer(repos))
	svc.Register(models.KindDepartment, departmentGatherer(repos))
	svc.Register(models.KindStaffRole, staffRoleGatherer(repos))
	svc.Register(models.KindStaffDepartment, staffDepartmentGatherer(repos))
	svc.Register(models.KindStaff, staffGatherer(repos))
	svc.Register(models.KindGuardian, guardianGatherer(repos))
	svc.Register(models.KindStudent, studentGatherer(repos))
	svc.Register(models.KindSubject, subjectGatherer(repos))
	svc.Register(models.KindGrade, gradeGatherer(repos))
	svc.Register(models.KindTotalGrade, totalGradeGatherer(repos))
	svc.Register(models.KindSubjectEducator, subjectEducatorGatherer(repos))
	svc.Register(models.KindAccessLevelChange, accessLevelChangeGatherer(repos))
}

func fetchEither[T any, P repository.Entity[T]](ctx context.Context, repo *repository.Lifecycle[T, P], id string) (P, error) {
	entity, err := repo.GetActive(ctx, id)
	if err == nil {
		return entity, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return repo.GetArchived(ctx, id)
}

func relatedSection[T any, P repository.Entity[T]](
	ctx context.Context,
	repo *repository.Lifecycle[T, P],
	name, filterKey, id string,
	headers []string,
	row func(T) map[string]string,
) (export.Section, error) {
	items, _, err := repo.ListActive(ctx, models.ListQuery{
		Filters: map[string]string{filterKey: id},
		Limit:   models.MaxLimit,
	})
	if err != nil {
		return export.Section{}, err
	}
	section := export.Section{Name: name, Headers: headers}
	for _, item := range items {
		section.Rows = append(section.Rows, row(item))
	}
	return section, nil
}

func levelGatherer(repos *Repos) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		level, err := fetchEither(ctx, repos.Levels, id)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{
			Title:   "Level " + level.Name,
			Headers: []string{"id", "name", "description", "order"},
			Rows: []map[string]string{{
				"id": level.ID, "name": level.Name,
				"description": level.Description, "order": strconv.Itoa(level.Order),
			}},
		}
		classes, err := relatedSection(ctx, repos.Classes, "Classes", "level_id", id,
			[]string{"id", "code", "order"},
			func(c models.Class) map[string]string {
				return map[string]string{"id": c.ID, "code": c.Code, "order": strconv.Itoa(c.Order)}
			})
		if err != nil {
			return export.Dataset{}, err
		}
		students, err := relatedSection(ctx, repos.Students, "Students", "level_id", id,
			[]string{"id", "student_number", "name"},
			func(s models.Student) map[string]string {
				return map[string]string{"id": s.ID, "student_number": s.StudentNumber, "name": s.Name}
			})
		if err != nil {
			return export.Dataset{}, err
		}
		subjects, err := relatedSection(ctx, repos.Subjects, "Subjects", "level_id", id,
			[]string{"id", "name", "code"},
			func(s models.Subject) map[string]string {
				return map[string]string{"id": s.ID, "name": s.Name, "code": s.Code}
			})
		if err != nil {
			return export.Dataset{}, err
		}
		data.Sections = []export.Section{classes, students, subjects}
		return data, nil
	}
}

func classGatherer(repos *Repos) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		class, err := fetchEither(ctx, repos.Classes, id)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{
			Title:   "Class " + class.Code,
			Headers: []string{"id", "code", "level_id", "order"},
			Rows: []map[string]string{{
				"id": class.ID, "code": class.Code,
				"level_id": class.LevelID, "order": strconv.Itoa(class.Order),
			}},
		}
		students, err := relatedSection(ctx, repos.Students, "Students", "class_id", id,
			[]string{"id", "student_number", "name"},
			func(s models.Student) map[string]string {
				return map[string]string{"id": s.ID, "student_number": s.StudentNumber, "name": s.Name}
			})
		if err != nil {
			return export.Dataset{}, err
		}
		data.Sections = []export.Section{students}
		return data, nil
	}
}

func departmentGatherer(repos *Repos) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		department, err := fetchEither(ctx, repos.Departments, id)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{
			Title:   "Department " + department.Name,
			Headers: []string{"id", "name", "description", "code"},
			Rows: []map[string]string{{
				"id": department.ID, "name": department.Name,
				"description": department.Description, "code": department.Code,
			}},
		}
		students, err := relatedSection(ctx, repos.Students, "Students", "department_id", id,
			[]string{"id", "student_number", "name"},
			func(s models.Student) map[string]string {
				return map[string]string{"id": s.ID, "student_number": s.StudentNumber, "name": s.Name}
			})
		if err != nil {
			return export.Dataset{}, err
		}
		data.Sections = []export.Section{students}
		return data, nil
	}
}

func staffRoleGatherer(repos *Repos) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		role, err := fetchEither(ctx, repos.StaffRoles, id)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{
			Title:   "Staff Role " + role.Name,
			Headers: []string{"id", "name", "description"},
			Rows: []map[string]string{{
				"id": role.ID, "name": role.Name, "description": role.Description,
			}},
		}
		members, err := relatedSection(ctx, repos.Staff, "Staff Members", "role_id", id,
			[]string{"id", "name", "email"},
			func(m models.Staff) map[string]string {
				return map[string]string{"id": m.ID, "name": m.Name, "email": m.Email}
			})
		if err != nil {
			return export.Dataset{}, err
		}
		data.Sections = []export.Section{members}
		return data, nil
	}
}

func staffDepartmentGatherer(repos *Repos) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		department, err := fetchEither(ctx, repos.StaffDepartments, id)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{
			Title:   "Staff Department " + department.Name,
			Headers: []string{"id", "name", "description"},
			Rows: []map[string]string{{
				"id": department.ID, "name": department.Name, "description": department.Description,
			}},
		}
		members, err := relatedSection(ctx, repos.Staff, "Staff Members", "department_id", id,
			[]string{"id", "name", "email"},
			func(m models.Staff) map[string]string {
				return map[string]string{"id": m.ID, "name": m.Name, "email": m.Email}
			})
		if err != nil {
			return export.Dataset{}, err
		}
		data.Sections = []export.Section{members}
		return data, nil
	}
}

func staffGatherer(repos *Repos) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		member, err := fetchEither(ctx, repos.Staff, id)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{
			Title:   "Staff " + member.Name,
			Headers: []string{"id", "staff_kind", "name", "email", "phone", "access_level", "date_joined"},
			Rows: []map[string]string{{
				"id": member.ID, "staff_kind": string(member.StaffKind),
				"name": member.Name, "email": member.Email, "phone": member.Phone,
				"access_level": strconv.Itoa(member.AccessLevel),
				"date_joined":  member.DateJoined.Format(time.DateOnly),
			}},
		}
		assignments, err := relatedSection(ctx, repos.SubjectEducators, "Subject Assignments", "educator_id", id,
			[]string{"id", "subject_id", "session", "term"},
			func(a models.SubjectEducator) map[string]string {
				return map[string]string{"id": a.ID, "subject_id": a.SubjectID, "session": a.Session, "term": string(a.Term)}
			})
		if err != nil {
			return export.Dataset{}, err
		}
		changes, err := relatedSection(ctx, repos.AccessLevelChanges, "Access Level Changes", "staff_id", id,
			[]string{"id", "previous_level", "new_level", "reason"},
			func(c models.AccessLevelChange) map[string]string {
				return map[string]string{
					"id":             c.ID,
					"previous_level": strconv.Itoa(c.PreviousLevel),
					"new_level":      strconv.Itoa(c.NewLevel),
					"reason":         c.Reason,
				}
			})
		if err != nil {
			return export.Dataset{}, err
		}
		data.Sections = []export.Section{assignments, changes}
		return data, nil
	}
}

func guardianGatherer(repos *Repos) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		guardian, err := fetchEither(ctx, repos.Guardians, id)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{
			Title:   "Guardian " + guardian.Name,
			Headers: []string{"id", "name", "email", "phone", "address", "gender"},
			Rows: []map[string]string{{
				"id": guardian.ID, "name": guardian.Name, "email": guardian.Email,
				"phone": guardian.Phone, "address": guardian.Address, "gender": guardian.Gender,
			}},
		}
		students, err := relatedSection(ctx, repos.Students, "Students", "guardian_id", id,
			[]string{"id", "student_number", "name"},
			func(s models.Student) map[string]string {
				return map[string]string{"id": s.ID, "student_number": s.StudentNumber, "name": s.Name}
			})
		if err != nil {
			return export.Dataset{}, err
		}
		data.Sections = []export.Section{students}
		return data, nil
	}
}

func studentGatherer(repos *Repos) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		student, err := fetchEither(ctx, repos.Students, id)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{
			Title:   "Student " + student.Name,
			Headers: []string{"id", "student_number", "name", "email", "level_id", "class_id", "date_of_birth", "session_start_year"},
			Rows: []map[string]string{{
				"id": student.ID, "student_number": student.StudentNumber,
				"name": student.Name, "email": student.Email,
				"level_id": student.LevelID, "class_id": student.ClassID,
				"date_of_birth":      student.DateOfBirth.Format(time.DateOnly),
				"session_start_year": strconv.Itoa(student.SessionStartYear),
			}},
		}
		grades, err := relatedSection(ctx, repos.Grades, "Grades", "student_id", id,
			[]string{"id", "subject_id", "score", "weight", "term", "session"},
			func(g models.Grade) map[string]string {
				return map[string]string{
					"id": g.ID, "subject_id": g.SubjectID,
					"score":  strconv.FormatFloat(g.Score, 'f', 2, 64),
					"weight": strconv.Itoa(g.Weight),
					"term":   string(g.Term), "session": g.Session,
				}
			})
		if err != nil {
			return export.Dataset{}, err
		}
		totals, err := relatedSection(ctx, repos.TotalGrades, "Total Grades", "student_id", id,
			[]string{"id", "subject_id", "total", "term", "session"},
			func(t models.TotalGrade) map[string]string {
				return map[string]string{
					"id": t.ID, "subject_id": t.SubjectID,
					"total": strconv.FormatFloat(t.Total, 'f', 2, 64),
					"term":  string(t.Term), "session": t.Session,
				}
			})
		if err != nil {
			return export.Dataset{}, err
		}
		data.Sections = []export.Section{grades, totals}
		return data, nil
	}
}

func subjectGatherer(repos *Repos) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		subject, err := fetchEither(ctx, repos.Subjects, id)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{
			Title:   "Subject " + subject.Name,
			Headers: []string{"id", "name", "code", "level_id"},
			Rows: []map[string]string{{
				"id": subject.ID, "name": subject.Name,
				"code": subject.Code, "level_id": subject.LevelID,
			}},
		}
		grades, err := relatedSection(ctx, repos.Grades, "Grades", "subject_id", id,
			[]string{"id", "student_id", "score", "term", "session"},
			func(g models.Grade) map[string]string {
				return map[string]string{
					"id": g.ID, "student_id": g.StudentID,
					"score": strconv.FormatFloat(g.Score, 'f', 2, 64),
					"term":  string(g.Term), "session": g.Session,
				}
			})
		if err != nil {
			return export.Dataset{}, err
		}
		assignments, err := relatedSection(ctx, repos.SubjectEducators, "Educator Assignments", "subject_id", id,
			[]string{"id", "educator_id", "session", "term"},
			func(a models.SubjectEducator) map[string]string {
				row := map[string]string{"id": a.ID, "session": a.Session, "term": string(a.Term)}
				if a.EducatorID != nil {
					row["educator_id"] = *a.EducatorID
				}
				return row
			})
		if err != nil {
			return export.Dataset{}, err
		}
		data.Sections = []export.Section{grades, assignments}
		return data, nil
	}
}

func gradeGatherer(repos *Repos) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		grade, err := fetchEither(ctx, repos.Grades, id)
		if err != nil {
			return export.Dataset{}, err
		}
		row := map[string]string{
			"id": grade.ID, "student_id": grade.StudentID, "subject_id": grade.SubjectID,
			"score":  strconv.FormatFloat(grade.Score, 'f', 2, 64),
			"weight": strconv.Itoa(grade.Weight),
			"term":   string(grade.Term), "session": grade.Session,
		}
		if grade.EducatorID != nil {
			row["educator_id"] = *grade.EducatorID
		}
		return export.Dataset{
			Title:   "Grade " + grade.ID,
			Headers: []string{"id", "student_id", "subject_id", "educator_id", "score", "weight", "term", "session"},
			Rows:    []map[string]string{row},
		}, nil
	}
}

func totalGradeGatherer(repos *Repos) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		total, err := fetchEither(ctx, repos.TotalGrades, id)
		if err != nil {
			return export.Dataset{}, err
		}
		return export.Dataset{
			Title:   "Total Grade " + total.ID,
			Headers: []string{"id", "student_id", "subject_id", "total", "term", "session"},
			Rows: []map[string]string{{
				"id": total.ID, "student_id": total.StudentID, "subject_id": total.SubjectID,
				"total": strconv.FormatFloat(total.Total, 'f', 2, 64),
				"term":  string(total.Term), "session": total.Session,
			}},
		}, nil
	}
}

func subjectEducatorGatherer(repos *Repos) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		assignment, err := fetchEither(ctx, repos.SubjectEducators, id)
		if err != nil {
			return export.Dataset{}, err
		}
		row := map[string]string{
			"id": assignment.ID, "subject_id": assignment.SubjectID,
			"level_id": assignment.LevelID, "session": assignment.Session,
			"term": string(assignment.Term),
		}
		if assignment.EducatorID != nil {
			row["educator_id"] = *assignment.EducatorID
		}
		return export.Dataset{
			Title:   "Subject Educator " + assignment.ID,
			Headers: []string{"id", "subject_id", "educator_id", "level_id", "session", "term"},
			Rows:    []map[string]string{row},
		}, nil
	}
}

func accessLevelChangeGatherer(repos *Repos) Gatherer {
	return func(ctx context.Context, id string) (export.Dataset, error) {
		change, err := fetchEither(ctx, repos.AccessLevelChanges, id)
		if err != nil {
			return export.Dataset{}, err
		}
		row := map[string]string{
			"id":             change.ID,
			"previous_level": strconv.Itoa(change.PreviousLevel),
			"new_level":      strconv.Itoa(change.NewLevel),
			"reason":         change.Reason,
			"created_at":     change.CreatedAt.Format(time.RFC3339),
		}
		if change.StaffID != nil {
			row["staff_id"] = *change.StaffID
		}
		if change.ChangedByID != nil {
			row["changed_by_id"] = *change.ChangedByID
		}
		return export.Dataset{
			Title:   "Access Level Change " + change.ID,
			Headers: []string{"id", "staff_id", "changed_by_id", "previous_level", "new_level", "reason", "created_at"},
			Rows:    []map[string]string{row},
		}, nil
	}
}
