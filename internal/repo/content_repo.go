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

// ContentRepo — репозиторий для работы с контентом.
type ContentRepo struct {
	pool *pgxpool.Pool
}

// NewContentRepo создаёт новый ContentRepo.
func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

// Create создаёт запись контента.
func (r *ContentRepo) Create(ctx context.Context, content *domain.Content) error {
	metadataJSON, err := json.Marshal(content.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := `
		INSERT INTO contents (id, type, title, description, content, media_url,
		                      platform, campaign_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.pool.Exec(ctx, query,
		content.ID,
		content.Type,
		nullString(content.Title),
		nullString(content.Description),
		nullString(content.Body),
		nullString(content.MediaURL),
		nullString(content.Platform),
		nullUUID(content.CampaignID),
		metadataJSON,
		content.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert content: %w", err)
	}
	return nil
}

// GetByID возвращает контент по ID.
func (r *ContentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Content, error) {
	query := `
		SELECT id, type, title, description, content, media_url, platform,
		       campaign_id, metadata, created_at
		FROM contents
		WHERE id = $1
	`
	return scanContent(r.pool.QueryRow(ctx, query, id))
}

// ContentFilter — параметры фильтрации списка контента.
type ContentFilter struct {
	Type       []string
	CampaignID *uuid.UUID
	Limit      int
	Offset     int
}

// List возвращает список контента.
func (r *ContentRepo) List(ctx context.Context, filter ContentFilter) ([]domain.Content, error) {
	query := `
		SELECT id, type, title, description, content, media_url, platform,
		       campaign_id, metadata, created_at
		FROM contents
		WHERE ($1::text[] IS NULL OR type = ANY($1))
		  AND ($2::uuid IS NULL OR campaign_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullStrings(filter.Type),
		nullUUID(filter.CampaignID),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	defer rows.Close()

	var contents []domain.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		contents = append(contents, *content)
	}
	return contents, rows.Err()
}

// CompleteGeneration записывает результат генерации: body/media_url и
// metadata.status = completed. Compare-and-set по metadata.status —
// повторная доставка задачи на уже завершённый контент не перезапишет
// результат (ErrRaceLost, обрабатывается как no-op).
func (r *ContentRepo) CompleteGeneration(ctx context.Context, id uuid.UUID, body, mediaURL string, metadata domain.ContentMetadata) error {
	metadata.Status = domain.ContentStatusCompleted
	now := time.Now().UTC()
	metadata.GeneratedAt = &now
	metadata.Error = ""

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE contents
		SET content = $2, media_url = $3, metadata = $4
		WHERE id = $1 AND metadata->>'status' = 'processing'
	`, id, nullString(body), nullString(mediaURL), metadataJSON)
	if err != nil {
		return fmt.Errorf("complete generation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.raceOrNotFound(ctx, id)
	}
	return nil
}

// FailGeneration переводит metadata.status в error с текстом ошибки.
// Терминальный след на сущности: polling-клиенты видят исход.
func (r *ContentRepo) FailGeneration(ctx context.Context, id uuid.UUID, errMsg string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE contents
		SET metadata = jsonb_set(jsonb_set(metadata, '{status}', '"error"'), '{error}', to_jsonb($2::text))
		WHERE id = $1 AND metadata->>'status' = 'processing'
	`, id, errMsg)
	if err != nil {
		return fmt.Errorf("fail generation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.raceOrNotFound(ctx, id)
	}
	return nil
}

// Delete удаляет запись контента.
func (r *ContentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM contents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

func (r *ContentRepo) raceOrNotFound(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM contents WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check content exists: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrRaceLost
}

func scanContent(row pgx.Row) (*domain.Content, error) {
	var c domain.Content
	var title, description, body, mediaURL, platform *string
	var metadataJSON []byte

	err := row.Scan(
		&c.ID,
		&c.Type,
		&title,
		&description,
		&body,
		&mediaURL,
		&platform,
		&c.CampaignID,
		&metadataJSON,
		&c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan content: %w", err)
	}

	if title != nil {
		c.Title = *title
	}
	if description != nil {
		c.Description = *description
	}
	if body != nil {
		c.Body = *body
	}
	if mediaURL != nil {
		c.MediaURL = *mediaURL
	}
	if platform != nil {
		c.Platform = *platform
	}
	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}

	return &c, nil
}
