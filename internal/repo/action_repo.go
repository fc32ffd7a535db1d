package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Hive/internal/domain"
)

// ActionRepo — репозиторий для работы с действиями кампаний.
//
// Захват действия (Claim) — compare-and-set по статусу: гонка между
// двумя сканерами или сканером и ручным запуском разрешается на уровне
// БД, проигравший получает ErrRaceLost и ничего не отправляет.
type ActionRepo struct {
	pool *pgxpool.Pool
}

// NewActionRepo создаёт новый ActionRepo.
func NewActionRepo(pool *pgxpool.Pool) *ActionRepo {
	return &ActionRepo{pool: pool}
}

// Create создаёт действие кампании и продвигает updated_at кампании —
// одна транзакция, инвариант владения.
func (r *ActionRepo) Create(ctx context.Context, action *domain.CampaignAction) error {
	detailsJSON, err := json.Marshal(action.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO campaign_actions (id, campaign_id, type, status, scheduled_for,
		                              recur_cron, platform, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.Exec(ctx, query,
		action.ID,
		action.CampaignID,
		action.Type,
		action.Status,
		action.ScheduledFor,
		nullString(action.RecurCron),
		nullString(action.Platform),
		detailsJSON,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert campaign action: %w", err)
	}

	if err := touchCampaign(ctx, tx, action.CampaignID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID возвращает действие по ID.
func (r *ActionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CampaignAction, error) {
	query := `
		SELECT id, campaign_id, type, status, scheduled_for, recur_cron,
		       platform, details, results, error, completed_at
		FROM campaign_actions
		WHERE id = $1
	`
	return scanAction(r.pool.QueryRow(ctx, query, id))
}

// ListByCampaign возвращает действия кампании.
func (r *ActionRepo) ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit, offset int) ([]domain.CampaignAction, error) {
	query := `
		SELECT id, campaign_id, type, status, scheduled_for, recur_cron,
		       platform, details, results, error, completed_at
		FROM campaign_actions
		WHERE campaign_id = $1
		ORDER BY scheduled_for ASC NULLS LAST
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, campaignID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list campaign actions: %w", err)
	}
	defer rows.Close()

	return collectActions(rows)
}

// ListDue возвращает pending-действия с истекшим scheduled_for.
func (r *ActionRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.CampaignAction, error) {
	query := `
		SELECT id, campaign_id, type, status, scheduled_for, recur_cron,
		       platform, details, results, error, completed_at
		FROM campaign_actions
		WHERE status = 'pending'
		  AND scheduled_for IS NOT NULL
		  AND scheduled_for <= $1
		ORDER BY scheduled_for ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due actions: %w", err)
	}
	defer rows.Close()

	return collectActions(rows)
}

// Claim атомарно переводит действие pending → in-progress.
//
// 0 затронутых строк означает, что действие либо удалено (ErrNotFound),
// либо уже захвачено другим актором (ErrRaceLost). Захват выполняется
// ДО отправки задачи в очередь — обратный порядок создаёт гонку
// двойного исполнения.
func (r *ActionRepo) Claim(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE campaign_actions
		SET status = 'in-progress'
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return fmt.Errorf("claim action: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.raceOrNotFound(ctx, id)
	}
	return nil
}

// Complete переводит действие in-progress → completed и записывает результаты.
func (r *ActionRepo) Complete(ctx context.Context, id uuid.UUID, results map[string]any) error {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE campaign_actions
		SET status = 'completed', results = $2, completed_at = NOW()
		WHERE id = $1 AND status = 'in-progress'
	`, id, resultsJSON)
	if err != nil {
		return fmt.Errorf("complete action: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.raceOrNotFound(ctx, id)
	}
	return nil
}

// Fail переводит действие in-progress → failed с текстом ошибки.
// failed — терминальный статус: действие не переисполняется.
func (r *ActionRepo) Fail(ctx context.Context, id uuid.UUID, errMsg string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE campaign_actions
		SET status = 'failed', error = $2, completed_at = NOW()
		WHERE id = $1 AND status = 'in-progress'
	`, id, errMsg)
	if err != nil {
		return fmt.Errorf("fail action: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.raceOrNotFound(ctx, id)
	}
	return nil
}

// --- Helpers ---

func (r *ActionRepo) raceOrNotFound(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM campaign_actions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check action exists: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrRaceLost
}

func collectActions(rows pgx.Rows) ([]domain.CampaignAction, error) {
	var actions []domain.CampaignAction
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, *action)
	}
	return actions, rows.Err()
}

func scanAction(row pgx.Row) (*domain.CampaignAction, error) {
	var a domain.CampaignAction
	var recurCron, platform, actionErr *string
	var detailsJSON, resultsJSON []byte

	err := row.Scan(
		&a.ID,
		&a.CampaignID,
		&a.Type,
		&a.Status,
		&a.ScheduledFor,
		&recurCron,
		&platform,
		&detailsJSON,
		&resultsJSON,
		&actionErr,
		&a.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan campaign action: %w", err)
	}

	if recurCron != nil {
		a.RecurCron = *recurCron
	}
	if platform != nil {
		a.Platform = *platform
	}
	if actionErr != nil {
		a.Error = *actionErr
	}
	if detailsJSON != nil {
		if err := json.Unmarshal(detailsJSON, &a.Details); err != nil {
			return nil, fmt.Errorf("unmarshal details: %w", err)
		}
	}
	if resultsJSON != nil {
		if err := json.Unmarshal(resultsJSON, &a.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}

	return &a, nil
}
