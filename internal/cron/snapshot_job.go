package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"stocktally-backend/internal/history"
	"stocktally-backend/pkg/enums"
	"stocktally-backend/pkg/logger"
)

// SnapshotJobParams configure the daily snapshot batch job.
type SnapshotJobParams struct {
	Logger    *logger.Logger
	Users     snapshotUserSource
	Snapshots snapshotWriter
}

type snapshotUserSource interface {
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type snapshotWriter interface {
	CreateUserSnapshots(ctx context.Context, userID uuid.UUID, snapshotType enums.SnapshotType) (*history.SnapshotBatchResult, error)
}

// NewSnapshotJob builds the job that snapshots every user's inventory.
func NewSnapshotJob(params SnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user source required")
	}
	if params.Snapshots == nil {
		return nil, fmt.Errorf("snapshot writer required")
	}
	return &snapshotJob{
		logg:      params.Logger,
		users:     params.Users,
		snapshots: params.Snapshots,
	}, nil
}

type snapshotJob struct {
	logg      *logger.Logger
	users     snapshotUserSource
	snapshots snapshotWriter
}

func (j *snapshotJob) Name() string { return "daily-item-snapshots" }

// Run snapshots each user in turn. One user's failure never aborts the
// batch; failures are aggregated and reported together.
func (j *snapshotJob) Run(ctx context.Context) error {
	userIDs, err := j.users.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var errs error
	var snapshotted, failed int
	for _, userID := range userIDs {
		result, err := j.snapshots.CreateUserSnapshots(ctx, userID, enums.SnapshotTypeAuto)
		if err != nil {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("user %s: %w", userID, err))
			j.logg.Error(j.logg.WithField(ctx, "user_id", userID.String()), "user snapshot failed", err)
			continue
		}
		snapshotted += result.SnapshotCount
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"users":        len(userIDs),
		"users_failed": failed,
		"snapshots":    snapshotted,
	})
	j.logg.Info(logCtx, "daily snapshot batch complete")

	if errs != nil {
		return fmt.Errorf("snapshot batch: %w", errs)
	}
	return nil
}
