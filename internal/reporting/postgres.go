package reporting

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// PostgresSource reads dashboard data straight from the CRM tables. Payments and debts
// are attributed to a center through their student.
type PostgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

var _ Source = (*PostgresSource)(nil)

const (
	queryActiveStudents = `SELECT COUNT(*) FROM students WHERE center_id = $1 AND status = 'Active'`
	queryTotalStudents  = `SELECT COUNT(*) FROM students WHERE center_id = $1`
	queryClasses        = `SELECT COUNT(*) FROM classes WHERE center_id = $1`
	queryMonthlyRevenue = `
		SELECT COALESCE(SUM(p.amount), 0)::float8
		FROM payments p
		JOIN students s ON s.student_id = p.student_id
		WHERE s.center_id = $1
		  AND p.payment_status = 'Completed'
		  AND DATE_TRUNC('month', p.payment_date) = DATE_TRUNC('month', CURRENT_DATE)`
	queryOutstandingDebt = `
		SELECT COALESCE(SUM(d.balance), 0)::float8
		FROM debts d
		JOIN students s ON s.student_id = d.student_id
		WHERE s.center_id = $1 AND d.balance > 0`
	queryPayingStudents = `
		SELECT COUNT(DISTINCT p.student_id)
		FROM payments p
		JOIN students s ON s.student_id = p.student_id
		WHERE s.center_id = $1 AND p.payment_status = 'Completed'`
	queryIndebtedStudents = `
		SELECT COUNT(DISTINCT d.student_id)
		FROM debts d
		JOIN students s ON s.student_id = d.student_id
		WHERE s.center_id = $1 AND d.balance > 0`
)

// Counts runs the scalar aggregates concurrently; each query takes its own pool connection.
func (s *PostgresSource) Counts(ctx context.Context, centerID int64) (*Counts, error) {
	var counts Counts

	g, gCtx := errgroup.WithContext(ctx)
	scalar := func(name, query string, dest any) {
		g.Go(func() error {
			if err := s.pool.QueryRow(gCtx, query, centerID).Scan(dest); err != nil {
				return fmt.Errorf("querying %s: %w", name, err)
			}
			return nil
		})
	}

	scalar("active students", queryActiveStudents, &counts.ActiveStudents)
	scalar("total students", queryTotalStudents, &counts.TotalStudents)
	scalar("classes", queryClasses, &counts.ActiveClasses)
	scalar("monthly revenue", queryMonthlyRevenue, &counts.MonthlyRevenue)
	scalar("outstanding debt", queryOutstandingDebt, &counts.OutstandingDebt)
	scalar("paying students", queryPayingStudents, &counts.PayingStudents)
	scalar("indebted students", queryIndebtedStudents, &counts.IndebtedStudents)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &counts, nil
}

// EnrollmentsByMonth counts new students per month, covering the current month and the
// months-1 before it. Months without enrollments are omitted.
func (s *PostgresSource) EnrollmentsByMonth(ctx context.Context, centerID int64, months int) ([]MonthCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DATE_TRUNC('month', created_at) AS month_start, COUNT(*)
		FROM students
		WHERE center_id = $1
		  AND created_at >= DATE_TRUNC('month', NOW()) - make_interval(months => $2)
		GROUP BY month_start
		ORDER BY month_start`, centerID, months-1)
	if err != nil {
		return nil, fmt.Errorf("querying enrollment trend: %w", err)
	}

	points, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (MonthCount, error) {
		var p MonthCount
		err := row.Scan(&p.Month, &p.Count)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning enrollment trend: %w", err)
	}
	return points, nil
}

// PaymentsByMonth sums completed payments per month over the same kind of window.
func (s *PostgresSource) PaymentsByMonth(ctx context.Context, centerID int64, months int) ([]MonthTotal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DATE_TRUNC('month', p.payment_date) AS month_start, ROUND(SUM(p.amount)::numeric, 2)::float8
		FROM payments p
		JOIN students s ON s.student_id = p.student_id
		WHERE s.center_id = $1
		  AND p.payment_status = 'Completed'
		  AND p.payment_date >= DATE_TRUNC('month', NOW()) - make_interval(months => $2)
		GROUP BY month_start
		ORDER BY month_start`, centerID, months-1)
	if err != nil {
		return nil, fmt.Errorf("querying payments trend: %w", err)
	}

	points, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (MonthTotal, error) {
		var p MonthTotal
		err := row.Scan(&p.Month, &p.Total)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning payments trend: %w", err)
	}
	return points, nil
}

// StudentsByStatus groups on the text form of the status; the CRM column is an enum.
func (s *PostgresSource) StudentsByStatus(ctx context.Context, centerID int64) ([]StatusCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(status::text, '') AS status_label, COUNT(*)
		FROM students
		WHERE center_id = $1
		GROUP BY status_label
		ORDER BY status_label`, centerID)
	if err != nil {
		return nil, fmt.Errorf("querying student status: %w", err)
	}

	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (StatusCount, error) {
		var c StatusCount
		err := row.Scan(&c.Status, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning student status: %w", err)
	}
	return counts, nil
}

func (s *PostgresSource) UpcomingTests(ctx context.Context, centerID int64, limit int) ([]ScheduledItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT test_name, COALESCE(test_type::text, ''), start_date, duration_minutes
		FROM tests
		WHERE center_id = $1 AND is_active = TRUE AND start_date >= NOW()
		ORDER BY start_date
		LIMIT $2`, centerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming tests: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ScheduledItem, error) {
		var item ScheduledItem
		err := row.Scan(&item.Title, &item.Subtitle, &item.At, &item.DurationMin)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning upcoming tests: %w", err)
	}
	return items, nil
}

// PendingAssignments belong to a center through their class.
func (s *PostgresSource) PendingAssignments(ctx context.Context, centerID int64, limit int) ([]ScheduledItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			a.assignment_title,
			COALESCE(c.class_name, ''),
			a.due_date,
			(SELECT COUNT(*) FROM students st WHERE st.class_id = a.class_id AND st.status = 'Active')
		FROM assignments a
		JOIN classes c ON c.class_id = a.class_id
		WHERE c.center_id = $1 AND a.due_date >= NOW() AND a.status = 'Pending'
		ORDER BY a.due_date
		LIMIT $2`, centerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying pending assignments: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ScheduledItem, error) {
		var (
			item     ScheduledItem
			students int64
		)
		err := row.Scan(&item.Title, &item.Subtitle, &item.At, &students)
		item.Students = &students
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning pending assignments: %w", err)
	}
	return items, nil
}

// RecentActivity merges the newest enrollments and completed payments, newest first.
func (s *PostgresSource) RecentActivity(ctx context.Context, centerID int64, limit int) ([]ActivityRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT type, name, ref, amount, created_at FROM (
			SELECT
				'enrollment' AS type,
				CONCAT_WS(' ', s.first_name, s.last_name) AS name,
				s.enrollment_number::text AS ref,
				NULL::float8 AS amount,
				s.created_at
			FROM students s
			WHERE s.center_id = $1
			ORDER BY s.created_at DESC
			LIMIT $2
		) enrollments
		UNION ALL
		SELECT type, name, ref, amount, created_at FROM (
			SELECT
				'payment' AS type,
				CONCAT_WS(' ', st.first_name, st.last_name) AS name,
				p.receipt_number::text AS ref,
				p.amount::float8 AS amount,
				p.created_at
			FROM payments p
			JOIN students st ON st.student_id = p.student_id
			WHERE st.center_id = $1 AND p.payment_status = 'Completed'
			ORDER BY p.created_at DESC
			LIMIT $2
		) payments_data
		ORDER BY created_at DESC
		LIMIT $2`, centerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent activity: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ActivityRecord, error) {
		var r ActivityRecord
		err := row.Scan(&r.Type, &r.Name, &r.Ref, &r.Amount, &r.CreatedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning recent activity: %w", err)
	}
	return records, nil
}
