package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Hive/internal/domain"
)

// CampaignRepo — репозиторий для работы с кампаниями.
type CampaignRepo struct {
	pool *pgxpool.Pool
}

// NewCampaignRepo создаёт новый CampaignRepo.
func NewCampaignRepo(pool *pgxpool.Pool) *CampaignRepo {
	return &CampaignRepo{pool: pool}
}

// Create создаёт кампанию вместе со строками платформ.
func (r *CampaignRepo) Create(ctx context.Context, campaign *domain.Campaign) error {
	tagsJSON, err := json.Marshal(campaign.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO campaigns (id, name, description, type, status, start_date,
		                       end_date, budget, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.Exec(ctx, query,
		campaign.ID,
		campaign.Name,
		nullString(campaign.Description),
		campaign.Type,
		campaign.Status,
		campaign.StartDate,
		campaign.EndDate,
		campaign.Budget,
		tagsJSON,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert campaign: %w", err)
	}

	if err := replacePlatforms(ctx, tx, campaign.ID, campaign.Platforms); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID возвращает кампанию по ID вместе с платформами.
func (r *CampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	query := `
		SELECT id, name, description, type, status, start_date, end_date,
		       budget, tags, created_at, updated_at
		FROM campaigns
		WHERE id = $1
	`
	campaign, err := scanCampaign(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	platforms, err := r.listPlatforms(ctx, id)
	if err != nil {
		return nil, err
	}
	campaign.Platforms = platforms

	return campaign, nil
}

// CampaignFilter — параметры фильтрации списка кампаний.
type CampaignFilter struct {
	Status   []string
	Type     []string
	Platform []string
	Search   string
	Limit    int
	Offset   int
}

// List возвращает список кампаний с фильтрацией и пагинацией.
func (r *CampaignRepo) List(ctx context.Context, filter CampaignFilter) ([]domain.Campaign, error) {
	query := `
		SELECT DISTINCT c.id, c.name, c.description, c.type, c.status, c.start_date,
		       c.end_date, c.budget, c.tags, c.created_at, c.updated_at
		FROM campaigns c
		LEFT JOIN campaign_platforms cp ON cp.campaign_id = c.id
		WHERE ($1::text[] IS NULL OR c.status = ANY($1))
		  AND ($2::text[] IS NULL OR c.type = ANY($2))
		  AND ($3::text[] IS NULL OR cp.platform = ANY($3))
		  AND ($4::text IS NULL OR c.name ILIKE $4 OR c.description ILIKE $4)
		ORDER BY c.created_at DESC
		LIMIT $5 OFFSET $6
	`
	rows, err := r.pool.Query(ctx, query,
		nullStrings(filter.Status),
		nullStrings(filter.Type),
		nullStrings(filter.Platform),
		nullString(likePattern(filter.Search)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *campaign)
	}
	return campaigns, rows.Err()
}

// Update обновляет кампанию и заменяет набор платформ, если он передан.
func (r *CampaignRepo) Update(ctx context.Context, campaign *domain.Campaign, replacePlatformSet bool) error {
	tagsJSON, err := json.Marshal(campaign.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE campaigns
		SET name = $2, description = $3, type = $4, status = $5, start_date = $6,
		    end_date = $7, budget = $8, tags = $9, updated_at = NOW()
		WHERE id = $1
	`
	result, err := tx.Exec(ctx, query,
		campaign.ID,
		campaign.Name,
		nullString(campaign.Description),
		campaign.Type,
		campaign.Status,
		campaign.StartDate,
		campaign.EndDate,
		campaign.Budget,
		tagsJSON,
	)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	if replacePlatformSet {
		if _, err := tx.Exec(ctx, `DELETE FROM campaign_platforms WHERE campaign_id = $1`, campaign.ID); err != nil {
			return fmt.Errorf("delete campaign platforms: %w", err)
		}
		if err := replacePlatforms(ctx, tx, campaign.ID, campaign.Platforms); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SetStatus переводит кампанию в новый статус. Compare-and-set по текущему
// статусу: конкурентный переход возвращает ErrRaceLost.
func (r *CampaignRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to domain.CampaignStatus) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE campaigns
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return fmt.Errorf("update campaign status: %w", err)
	}
	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM campaigns WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check campaign exists: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrRaceLost
	}
	return nil
}

// Delete удаляет кампанию вместе с действиями, метриками и платформами.
func (r *CampaignRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, q := range []string{
		`DELETE FROM campaign_actions WHERE campaign_id = $1`,
		`DELETE FROM campaign_metrics WHERE campaign_id = $1`,
		`DELETE FROM campaign_platforms WHERE campaign_id = $1`,
	} {
		if _, err := tx.Exec(ctx, q, id); err != nil {
			return fmt.Errorf("cascade delete: %w", err)
		}
	}

	result, err := tx.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// AddMetric добавляет метрику кампании и продвигает updated_at кампании —
// одна транзакция, инвариант владения.
func (r *CampaignRepo) AddMetric(ctx context.Context, metric *domain.CampaignMetric) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO campaign_metrics (id, campaign_id, name, value, target, change)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		metric.ID,
		metric.CampaignID,
		metric.Name,
		metric.Value,
		metric.Target,
		metric.Change,
	)
	if err != nil {
		return fmt.Errorf("insert campaign metric: %w", err)
	}

	if err := touchCampaign(ctx, tx, metric.CampaignID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ReplaceMetrics заменяет набор метрик кампании свежими наблюдениями.
// Используется задачей campaign.refresh_metrics.
func (r *CampaignRepo) ReplaceMetrics(ctx context.Context, campaignID uuid.UUID, metrics []domain.CampaignMetric) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM campaign_metrics WHERE campaign_id = $1`, campaignID); err != nil {
		return fmt.Errorf("delete campaign metrics: %w", err)
	}

	for i := range metrics {
		m := &metrics[i]
		_, err := tx.Exec(ctx, `
			INSERT INTO campaign_metrics (id, campaign_id, name, value, target, change)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, m.ID, m.CampaignID, m.Name, m.Value, m.Target, m.Change)
		if err != nil {
			return fmt.Errorf("insert campaign metric: %w", err)
		}
	}

	if err := touchCampaign(ctx, tx, campaignID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListMetrics возвращает метрики кампании.
func (r *CampaignRepo) ListMetrics(ctx context.Context, campaignID uuid.UUID) ([]domain.CampaignMetric, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, campaign_id, name, value, target, change
		FROM campaign_metrics
		WHERE campaign_id = $1
		ORDER BY name ASC
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list campaign metrics: %w", err)
	}
	defer rows.Close()

	var metrics []domain.CampaignMetric
	for rows.Next() {
		var m domain.CampaignMetric
		if err := rows.Scan(&m.ID, &m.CampaignID, &m.Name, &m.Value, &m.Target, &m.Change); err != nil {
			return nil, fmt.Errorf("scan campaign metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// --- Helpers ---

func (r *CampaignRepo) listPlatforms(ctx context.Context, campaignID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT platform FROM campaign_platforms WHERE campaign_id = $1 ORDER BY platform
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list campaign platforms: %w", err)
	}
	defer rows.Close()

	var platforms []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan platform: %w", err)
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

func replacePlatforms(ctx context.Context, tx pgx.Tx, campaignID uuid.UUID, platforms []string) error {
	for _, p := range platforms {
		_, err := tx.Exec(ctx, `
			INSERT INTO campaign_platforms (id, campaign_id, platform)
			VALUES ($1, $2, $3)
		`, uuid.New(), campaignID, p)
		if err != nil {
			return fmt.Errorf("insert campaign platform: %w", err)
		}
	}
	return nil
}

// touchCampaign продвигает updated_at кампании-владельца.
func touchCampaign(ctx context.Context, tx pgx.Tx, campaignID uuid.UUID) error {
	result, err := tx.Exec(ctx, `UPDATE campaigns SET updated_at = NOW() WHERE id = $1`, campaignID)
	if err != nil {
		return fmt.Errorf("touch campaign: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	var description *string
	var tagsJSON []byte

	err := row.Scan(
		&c.ID,
		&c.Name,
		&description,
		&c.Type,
		&c.Status,
		&c.StartDate,
		&c.EndDate,
		&c.Budget,
		&tagsJSON,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan campaign: %w", err)
	}

	if description != nil {
		c.Description = *description
	}
	if tagsJSON != nil {
		if err := json.Unmarshal(tagsJSON, &c.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}

	return &c, nil
}
