package reporting

import (
	"context"
	"time"
)

const (
	enrollmentMonths = 6
	paymentMonths    = 8
	upcomingLimit    = 4
	activityLimit    = 5
)

// Service shapes Source rows into dashboard payloads.
type Service struct {
	source Source
	now    func() time.Time
}

func NewService(source Source) *Service {
	return &Service{
		source: source,
		now:    time.Now,
	}
}

func (s *Service) Stats(ctx context.Context, centerID int64) (*Stats, error) {
	counts, err := s.source.Counts(ctx, centerID)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalStudents:   counts.ActiveStudents,
		ActiveClasses:   counts.ActiveClasses,
		MonthlyRevenue:  counts.MonthlyRevenue,
		OutstandingDebt: counts.OutstandingDebt,
	}, nil
}

func (s *Service) EnrollmentTrend(ctx context.Context, centerID int64) ([]EnrollmentPoint, error) {
	rows, err := s.source.EnrollmentsByMonth(ctx, centerID, enrollmentMonths)
	if err != nil {
		return nil, err
	}

	points := make([]EnrollmentPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, EnrollmentPoint{Month: MonthLabel(r.Month), Students: r.Count})
	}
	return points, nil
}

func (s *Service) PaymentsTrend(ctx context.Context, centerID int64) ([]PaymentPoint, error) {
	rows, err := s.source.PaymentsByMonth(ctx, centerID, paymentMonths)
	if err != nil {
		return nil, err
	}

	points := make([]PaymentPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, PaymentPoint{Month: MonthLabel(r.Month), Total: r.Total})
	}
	return points, nil
}

func (s *Service) StudentStatus(ctx context.Context, centerID int64) ([]StatusSlice, error) {
	rows, err := s.source.StudentsByStatus(ctx, centerID)
	if err != nil {
		return nil, err
	}

	slices := make([]StatusSlice, 0, len(rows))
	for _, r := range rows {
		slices = append(slices, StatusSlice{Name: r.Status, Value: r.Count, Color: StatusColor(r.Status)})
	}
	return slices, nil
}

// StudentOverview is the funnel: total, active, with a completed payment, with open debt.
func (s *Service) StudentOverview(ctx context.Context, centerID int64) ([]OverviewStep, error) {
	counts, err := s.source.Counts(ctx, centerID)
	if err != nil {
		return nil, err
	}
	return []OverviewStep{
		{Label: "Total Students", Value: counts.TotalStudents},
		{Label: "Active", Value: counts.ActiveStudents},
		{Label: "Paid Fees", Value: counts.PayingStudents},
		{Label: "With Debts", Value: counts.IndebtedStudents},
	}, nil
}

// Upcoming lists the next active tests, or pending assignments when no test is scheduled.
func (s *Service) Upcoming(ctx context.Context, centerID int64) ([]UpcomingEvent, error) {
	items, err := s.source.UpcomingTests(ctx, centerID, upcomingLimit)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		items, err = s.source.PendingAssignments(ctx, centerID, upcomingLimit)
		if err != nil {
			return nil, err
		}
		for i := range items {
			if items[i].Subtitle == "" {
				items[i].Subtitle = "Assignment"
			}
			if items[i].Students == nil {
				var zero int64
				items[i].Students = &zero
			}
		}
	}

	now := s.now()
	events := make([]UpcomingEvent, 0, len(items))
	for i, item := range items {
		at := item.At.In(now.Location())
		events = append(events, UpcomingEvent{
			ID:          i + 1,
			Title:       item.Title,
			Subtitle:    item.Subtitle,
			Time:        ClockTime(at),
			Date:        DayLabel(at, now),
			DurationMin: item.DurationMin,
			Students:    item.Students,
		})
	}
	return events, nil
}

func (s *Service) RecentActivity(ctx context.Context, centerID int64) ([]Activity, error) {
	rows, err := s.source.RecentActivity(ctx, centerID, activityLimit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	activity := make([]Activity, 0, len(rows))
	for _, r := range rows {
		activity = append(activity, Activity{
			Type:   r.Type,
			Name:   r.Name,
			Ref:    r.Ref,
			Amount: r.Amount,
			Time:   RelativeTime(r.CreatedAt, now),
		})
	}
	return activity, nil
}
