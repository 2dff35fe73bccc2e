package models

import (
	"strconv"
	"time"
)

// FieldChange is one entry of an entity diff. Created snapshots populate New
// only, Deleted snapshots populate Old only, and updates carry both sides.
// Primary keys are never part of a diff.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old,omitempty"`
	New   string `json:"new,omitempty"`
}

type fieldValue struct {
	name  string
	value string
}

func claimFields(c Claim) []fieldValue {
	return []fieldValue{
		{"LecturerID", formatUint(c.LecturerID)},
		{"ModuleID", formatUint(c.ModuleID)},
		{"ClaimDate", c.ClaimDate.Format("2006-01-02")},
		{"HoursWorked", c.HoursWorked.String()},
		{"TotalAmount", c.TotalAmount.String()},
		{"Description", c.Description},
		{"Status", c.Status},
		{"SubmittedAt", c.SubmittedAt.Format(time.RFC3339)},
		{"ApprovedBy", formatUintPtr(c.ApprovedBy)},
		{"ApprovedAt", formatTimePtr(c.ApprovedAt)},
	}
}

func moduleFields(m Module) []fieldValue {
	return []fieldValue{
		{"Code", m.Code},
		{"Name", m.Name},
		{"HourlyRate", m.HourlyRate.String()},
		{"IsActive", strconv.FormatBool(m.IsActive)},
	}
}

func documentFields(d SupportingDocument) []fieldValue {
	return []fieldValue{
		{"ClaimID", formatUint(d.ClaimID)},
		{"FileName", d.FileName},
		{"FilePath", d.FilePath},
		{"FileSize", strconv.FormatInt(d.FileSize, 10)},
		{"UploadedAt", d.UploadedAt.Format(time.RFC3339)},
	}
}

func userFields(u User) []fieldValue {
	return []fieldValue{
		{"Username", u.Username},
		{"Email", u.Email},
		{"Role", u.Role},
		{"FullName", u.FullName},
		{"IsActive", strconv.FormatBool(u.IsActive)},
	}
}

// ClaimCreated snapshots a new claim for a Created audit entry.
func ClaimCreated(c Claim) []FieldChange { return created(claimFields(c)) }

// ClaimDeleted snapshots a claim for a Deleted audit entry.
func ClaimDeleted(c Claim) []FieldChange { return deleted(claimFields(c)) }

// DiffClaims returns the changed fields between two versions of a claim.
func DiffClaims(old, updated Claim) []FieldChange {
	return diff(claimFields(old), claimFields(updated))
}

// ModuleCreated snapshots a new module for a Created audit entry.
func ModuleCreated(m Module) []FieldChange { return created(moduleFields(m)) }

// DocumentCreated snapshots a new supporting document for a Created audit entry.
func DocumentCreated(d SupportingDocument) []FieldChange { return created(documentFields(d)) }

// DocumentDeleted snapshots a supporting document for a Deleted audit entry.
func DocumentDeleted(d SupportingDocument) []FieldChange { return deleted(documentFields(d)) }

// UserCreated snapshots a new user for a Created audit entry. The password
// hash is deliberately absent from user snapshots.
func UserCreated(u User) []FieldChange { return created(userFields(u)) }

func created(fields []fieldValue) []FieldChange {
	changes := make([]FieldChange, 0, len(fields))
	for _, f := range fields {
		changes = append(changes, FieldChange{Field: f.name, New: f.value})
	}
	return changes
}

func deleted(fields []fieldValue) []FieldChange {
	changes := make([]FieldChange, 0, len(fields))
	for _, f := range fields {
		changes = append(changes, FieldChange{Field: f.name, Old: f.value})
	}
	return changes
}

func diff(old, updated []fieldValue) []FieldChange {
	changes := make([]FieldChange, 0, len(updated))
	for i, f := range updated {
		if old[i].value == f.value {
			continue
		}
		changes = append(changes, FieldChange{Field: f.name, Old: old[i].value, New: f.value})
	}
	return changes
}

func formatUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func formatUintPtr(v *uint) string {
	if v == nil {
		return ""
	}
	return formatUint(*v)
}

func formatTimePtr(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(time.RFC3339)
}
