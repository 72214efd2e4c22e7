// =============================================================================
// Order Consolidation - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - sources
//   - groups
//   - normalize
//   - dedup
//   - store
//   - view
//
// =============================================================================

package types

import (
	"fmt"
	"time"
)

// =============================================================================
// CANONICAL FIELDS
// =============================================================================

// Field is the name of a column in the common order schema.
type Field string

const (
	FieldDate         Field = "date"
	FieldOrderID      Field = "order_id"
	FieldGroupCode    Field = "group_code"
	FieldCompany      Field = "company"
	FieldGroupName    Field = "group_name"
	FieldSourceSystem Field = "source_system"
)

// StoreFields is the column order of the Consolidated Store and the raw export.
var StoreFields = []Field{
	FieldDate,
	FieldOrderID,
	FieldCompany,
	FieldGroupName,
	FieldSourceSystem,
}

// KnownField reports whether f is part of the common schema.
func KnownField(f Field) bool {
	switch f {
	case FieldDate, FieldOrderID, FieldGroupCode, FieldCompany, FieldGroupName, FieldSourceSystem:
		return true
	}
	return false
}

// =============================================================================
// ORDER TYPES
// =============================================================================

// RawRow is a row read from a source file before normalization.
// All values are the raw cell text.
type RawRow struct {
	Date      string
	OrderID   string
	GroupCode string
	Company   string
	GroupName string

	// File and Row identify where the row came from, for diagnostics.
	File string
	Row  int
}

// Set assigns the value of a canonical field. Unknown fields are ignored.
func (r *RawRow) Set(f Field, value string) {
	switch f {
	case FieldDate:
		r.Date = value
	case FieldOrderID:
		r.OrderID = value
	case FieldGroupCode:
		r.GroupCode = value
	case FieldCompany:
		r.Company = value
	case FieldGroupName:
		r.GroupName = value
	}
}

// OrderRecord is one normalized order.
type OrderRecord struct {
	// Date is the calendar date of the order, at midnight UTC.
	Date time.Time

	// OrderID uniquely identifies the order. It is an opaque, trimmed string.
	OrderID string

	// Company is the billing company.
	Company string

	// GroupName is the resolved group label. The empty string means absent.
	GroupName string

	// SourceSystem is the name of the system the record came from.
	SourceSystem string
}

// HasGroup reports whether the record carries a group name.
func (r OrderRecord) HasGroup() bool {
	return r.GroupName != ""
}

// Entity returns the consolidation entity: the group name, falling back to company.
func (r OrderRecord) Entity() string {
	if r.HasGroup() {
		return r.GroupName
	}
	return r.Company
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// Level is the severity of a diagnostic.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Diagnostic is an operator-facing message about a source load or store update.
// Diagnostics are advisory and never alter the data.
type Diagnostic struct {
	Level   Level
	Source  string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Level, d.Source, d.Message)
}

// Infof builds an informational diagnostic.
func Infof(source, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Level: LevelInfo, Source: source, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning diagnostic.
func Warnf(source, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Level: LevelWarn, Source: source, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds an error diagnostic.
func Errorf(source, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Level: LevelError, Source: source, Message: fmt.Sprintf(format, args...)}
}
