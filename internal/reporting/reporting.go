// Package reporting serves the tenant dashboard: read-only aggregates over the CRM
// database, always filtered to a single center.
package reporting

import (
	"context"
	"time"
)

// Source runs the raw dashboard queries. Every method takes the tenant id as its first
// argument and must return only rows belonging to that center.
type Source interface {
	Counts(ctx context.Context, centerID int64) (*Counts, error)
	EnrollmentsByMonth(ctx context.Context, centerID int64, months int) ([]MonthCount, error)
	PaymentsByMonth(ctx context.Context, centerID int64, months int) ([]MonthTotal, error)
	StudentsByStatus(ctx context.Context, centerID int64) ([]StatusCount, error)
	UpcomingTests(ctx context.Context, centerID int64, limit int) ([]ScheduledItem, error)
	PendingAssignments(ctx context.Context, centerID int64, limit int) ([]ScheduledItem, error)
	RecentActivity(ctx context.Context, centerID int64, limit int) ([]ActivityRecord, error)
}

// Counts holds the scalar aggregates behind the KPI cards and the overview funnel.
type Counts struct {
	TotalStudents    int64
	ActiveStudents   int64
	ActiveClasses    int64
	PayingStudents   int64
	IndebtedStudents int64
	MonthlyRevenue   float64
	OutstandingDebt  float64
}

type MonthCount struct {
	Month time.Time
	Count int64
}

type MonthTotal struct {
	Month time.Time
	Total float64
}

type StatusCount struct {
	Status string
	Count  int64
}

// ScheduledItem is an upcoming test or, when none are scheduled, a pending assignment.
type ScheduledItem struct {
	Title       string
	Subtitle    string
	At          time.Time
	DurationMin *int32
	Students    *int64
}

type ActivityRecord struct {
	Type      string
	Name      string
	Ref       *string
	Amount    *float64
	CreatedAt time.Time
}

// Response payloads.

type Stats struct {
	TotalStudents   int64   `json:"totalStudents"`
	ActiveClasses   int64   `json:"activeClasses"`
	MonthlyRevenue  float64 `json:"monthlyRevenue"`
	OutstandingDebt float64 `json:"outstandingDebt"`
}

type EnrollmentPoint struct {
	Month    string `json:"month"`
	Students int64  `json:"students"`
}

type PaymentPoint struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

type StatusSlice struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
	Color string `json:"color"`
}

type OverviewStep struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

type UpcomingEvent struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Time        string `json:"time"`
	Date        string `json:"date"`
	DurationMin *int32 `json:"durationMin,omitempty"`
	Students    *int64 `json:"students,omitempty"`
}

type Activity struct {
	Type   string   `json:"type"`
	Name   string   `json:"name"`
	Ref    *string  `json:"ref"`
	Amount *float64 `json:"amount"`
	Time   string   `json:"time"`
}
