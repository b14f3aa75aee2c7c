package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tharunkumardeveloper/truthlensai/internal/domain/entity"
)

var ErrRunNotFound = errors.New("analysis run not found")

type RunRepository struct {
	pool *pgxpool.Pool
}

func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

func (r *RunRepository) Create(ctx context.Context, run *entity.AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs (
			id, user_id, media_key, media_kind, display_name, status,
			frame_count, verdict, confidence, report_keys, archive_key,
			attempt, max_attempts, error_message, created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	_, err := r.pool.Exec(ctx, query,
		run.ID, run.UserID, run.MediaKey, string(run.Kind), run.DisplayName, string(run.Status),
		run.FrameCount, run.Verdict, run.Confidence, reportKeys(run), run.ArchiveKey,
		run.Attempt, run.MaxAttempts, run.ErrorMessage,
		run.CreatedAt, run.UpdatedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *RunRepository) Update(ctx context.Context, run *entity.AnalysisRun) error {
	query := `
		UPDATE analysis_runs SET
			status=$2, media_kind=$3, display_name=$4, frame_count=$5, verdict=$6,
			confidence=$7, report_keys=$8, archive_key=$9, attempt=$10,
			error_message=$11, updated_at=$12, completed_at=$13
		WHERE id=$1`

	tag, err := r.pool.Exec(ctx, query,
		run.ID, string(run.Status), string(run.Kind), run.DisplayName, run.FrameCount, run.Verdict,
		run.Confidence, reportKeys(run), run.ArchiveKey, run.Attempt,
		run.ErrorMessage, run.UpdatedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update run %s: %w", run.ID, ErrRunNotFound)
	}
	return nil
}

func (r *RunRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisRun, error) {
	query := `
		SELECT id, user_id, media_key, media_kind, display_name, status,
			frame_count, verdict, confidence, report_keys, archive_key,
			attempt, max_attempts, error_message, created_at, updated_at, completed_at
		FROM analysis_runs WHERE id=$1`

	run := &entity.AnalysisRun{}
	var kind, status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.UserID, &run.MediaKey, &kind, &run.DisplayName, &status,
		&run.FrameCount, &run.Verdict, &run.Confidence, &run.ReportKeys, &run.ArchiveKey,
		&run.Attempt, &run.MaxAttempts, &run.ErrorMessage,
		&run.CreatedAt, &run.UpdatedAt, &run.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("find run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find run by id: %w", err)
	}
	run.Kind = entity.MediaKind(kind)
	run.Status = entity.RunStatus(status)
	return run, nil
}

func reportKeys(run *entity.AnalysisRun) []string {
	if run.ReportKeys == nil {
		return []string{}
	}
	return run.ReportKeys
}
