package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobBuckets groups a driver's jobs for the driver app home screen.
type JobBuckets struct {
	Today     []*JobListItem
	Upcoming  []*JobListItem
	Completed []*JobListItem
}

type DriverJobQueries interface {
	ListJobs(ctx context.Context, driverID uuid.UUID, now time.Time) (*JobBuckets, error)
}

type DriverJobRepo interface {
	FindByDriver(ctx context.Context, driverID uuid.UUID) ([]*JobListItem, error)
}

type driverJobQueriesImpl struct {
	repo DriverJobRepo
}

func NewDriverJobQueries(repo DriverJobRepo) DriverJobQueries {
	return &driverJobQueriesImpl{repo: repo}
}

func (q *driverJobQueriesImpl) ListJobs(ctx context.Context, driverID uuid.UUID, now time.Time) (*JobBuckets, error) {
	jobs, err := q.repo.FindByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return BucketJobs(jobs, now), nil
}

// BucketJobs sorts jobs into today / upcoming / completed as a pure filter
// over status and start day in the caller's location. Terminal jobs
// (completed or cancelled) always land in completed; today holds jobs
// starting on the current date. The one exception is an in-progress job
// running past midnight: it stays on the today list until the driver closes
// it. Any other job with a past start day drops out of the list.
func BucketJobs(jobs []*JobListItem, now time.Time) *JobBuckets {
	buckets := &JobBuckets{}
	year, month, day := now.Date()
	startOfDay := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	for _, job := range jobs {
		switch {
		case job.Status == "completed" || job.Status == "cancelled":
			buckets.Completed = append(buckets.Completed, job)
		case !job.StartTime.Before(endOfDay):
			buckets.Upcoming = append(buckets.Upcoming, job)
		case !job.StartTime.Before(startOfDay):
			buckets.Today = append(buckets.Today, job)
		case job.Status == "in_progress":
			buckets.Today = append(buckets.Today, job)
		}
	}

	return buckets
}
