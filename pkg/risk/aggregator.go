package risk

import (
	"time"

	"github.com/agrosafe/farmguard/models"
)

// dueSoonWindow is how far ahead an open maintenance task starts counting
// as a risk, and how far past due it escalates to critical.
const dueSoonWindow = 7 * 24 * time.Hour

// Aggregate scans the three feeds and derives the unified risk register.
// Category order is fixed (equipment, then checklists, then maintenance)
// and input order is preserved within each category, so identical inputs
// and reference time produce identical output.
//
// Records whose dates cannot be parsed are dropped from the register and
// reported in the skipped slice; a bad row never aborts aggregation.
func Aggregate(equipment []models.Equipment, checklists []models.CompletedChecklist, tasks []models.MaintenanceTask, now time.Time) ([]Entry, []Skipped) {
	entries := make([]Entry, 0, len(equipment)+len(checklists)+len(tasks))
	var skipped []Skipped

	for _, eq := range equipment {
		severity, ok := outcomeSeverity(eq.Status)
		if !ok {
			continue
		}
		date, err := parseOptionalDate(eq.LastInspection)
		if err != nil {
			skipped = append(skipped, Skipped{
				SourceID: eq.ID.String(),
				Category: CategoryEquipment,
				Reason:   "unparsable last_inspection: " + eq.LastInspection,
			})
			continue
		}
		entries = append(entries, Entry{
			ID:       "equipment-" + eq.ID.String(),
			Category: CategoryEquipment,
			Title:    eq.MakeModel,
			Type:     eq.Type,
			Severity: severity,
			Status:   eq.Status,
			Date:     date,
			Notes:    deref(eq.Notes),
		})
	}

	for _, cl := range checklists {
		severity, ok := outcomeSeverity(cl.Status)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			ID:       "checklist-" + cl.ID.String(),
			Category: CategoryChecklist,
			Title:    cl.EquipmentName,
			Type:     "Safety Checklist",
			Severity: severity,
			Status:   cl.Status,
			Date:     cl.CompletedAt.Time(),
			Notes:    deref(cl.Notes),
		})
	}

	for _, task := range tasks {
		if task.Status == models.TaskStatusCompleted {
			continue
		}
		due, err := models.ParseFlexTime(task.DueDate)
		if err != nil {
			skipped = append(skipped, Skipped{
				SourceID: task.ID.String(),
				Category: CategoryMaintenance,
				Reason:   "unparsable due_date: " + task.DueDate,
			})
			continue
		}
		severity, ok := dueSeverity(due, now)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			ID:       "maintenance-" + task.ID.String(),
			Category: CategoryMaintenance,
			Title:    task.Title,
			Type:     "Maintenance Task",
			Severity: severity,
			Status:   task.Status,
			Date:     due,
			Notes:    deref(task.Description),
		})
	}

	return entries, skipped
}

// outcomeSeverity maps an inspection outcome to a register severity.
// Passing outcomes produce no entry.
func outcomeSeverity(status string) (string, bool) {
	switch status {
	case models.StatusFailed:
		return SeverityCritical, true
	case models.StatusNeedsMaintenance:
		return SeverityHigh, true
	default:
		return "", false
	}
}

// dueSeverity classifies an open task by how its due date sits relative
// to now. Tasks due more than a week out are not yet risks. A task due
// exactly now is medium; one a week or more overdue is critical.
func dueSeverity(due, now time.Time) (string, bool) {
	if due.After(now.Add(dueSoonWindow)) {
		return "", false
	}
	switch {
	case due.Before(now.Add(-dueSoonWindow)):
		return SeverityCritical, true
	case due.Before(now):
		return SeverityHigh, true
	default:
		return SeverityMedium, true
	}
}

// parseOptionalDate treats an empty date as unset rather than malformed;
// a failed equipment check without a recorded inspection date is still a
// risk worth listing.
func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return models.ParseFlexTime(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
