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

// BotRepo — репозиторий для работы с ботами.
type BotRepo struct {
	pool *pgxpool.Pool
}

// NewBotRepo создаёт новый BotRepo.
func NewBotRepo(pool *pgxpool.Pool) *BotRepo {
	return &BotRepo{pool: pool}
}

// Create создаёт нового бота.
func (r *BotRepo) Create(ctx context.Context, bot *domain.Bot) error {
	configJSON, err := json.Marshal(bot.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	query := `
		INSERT INTO bots (id, name, type, platform, status, health, proxy_status,
		                  description, avatar, config, last_active, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.pool.Exec(ctx, query,
		bot.ID,
		bot.Name,
		bot.Type,
		bot.Platform,
		bot.Status,
		bot.Health,
		bot.ProxyStatus,
		nullString(bot.Description),
		nullString(bot.Avatar),
		configJSON,
		bot.LastActive,
		bot.Version,
		bot.CreatedAt,
		bot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert bot: %w", err)
	}
	return nil
}

// GetByID возвращает бота по ID.
func (r *BotRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bot, error) {
	query := `
		SELECT id, name, type, platform, status, health, proxy_status,
		       description, avatar, config, last_active, version, created_at, updated_at
		FROM bots
		WHERE id = $1
	`
	return scanBot(r.pool.QueryRow(ctx, query, id))
}

// BotFilter — параметры фильтрации списка ботов.
type BotFilter struct {
	Status   []string
	Type     []string
	Platform []string
	Health   []string
	Search   string
	Limit    int
	Offset   int
}

// List возвращает список ботов с фильтрацией и пагинацией.
func (r *BotRepo) List(ctx context.Context, filter BotFilter) ([]domain.Bot, error) {
	query := `
		SELECT id, name, type, platform, status, health, proxy_status,
		       description, avatar, config, last_active, version, created_at, updated_at
		FROM bots
		WHERE ($1::text[] IS NULL OR status = ANY($1))
		  AND ($2::text[] IS NULL OR type = ANY($2))
		  AND ($3::text[] IS NULL OR platform = ANY($3))
		  AND ($4::text[] IS NULL OR health = ANY($4))
		  AND ($5::text IS NULL OR name ILIKE $5 OR description ILIKE $5)
		ORDER BY created_at DESC
		LIMIT $6 OFFSET $7
	`
	rows, err := r.pool.Query(ctx, query,
		nullStrings(filter.Status),
		nullStrings(filter.Type),
		nullStrings(filter.Platform),
		nullStrings(filter.Health),
		nullString(likePattern(filter.Search)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list bots: %w", err)
	}
	defer rows.Close()

	var bots []domain.Bot
	for rows.Next() {
		bot, err := scanBot(rows)
		if err != nil {
			return nil, err
		}
		bots = append(bots, *bot)
	}
	return bots, rows.Err()
}

// Update обновляет бота. Compare-and-set по полю version:
// если запись была изменена конкурентно, возвращает ErrRaceLost.
func (r *BotRepo) Update(ctx context.Context, bot *domain.Bot) error {
	configJSON, err := json.Marshal(bot.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	query := `
		UPDATE bots
		SET name = $2, type = $3, platform = $4, status = $5, health = $6,
		    proxy_status = $7, description = $8, avatar = $9, config = $10,
		    last_active = $11, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $12
	`
	result, err := r.pool.Exec(ctx, query,
		bot.ID,
		bot.Name,
		bot.Type,
		bot.Platform,
		bot.Status,
		bot.Health,
		bot.ProxyStatus,
		nullString(bot.Description),
		nullString(bot.Avatar),
		configJSON,
		bot.LastActive,
		bot.Version,
	)
	if err != nil {
		return fmt.Errorf("update bot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.raceOrNotFound(ctx, bot.ID)
	}
	return nil
}

// SetStatus переводит бота в новый статус и пишет запись BotActivity —
// одна транзакция, один эффективный переход, одна запись журнала.
//
// Compare-and-set по текущему статусу: если бот уже не в статусе from
// (конкурентный переход по более позднему событию), возвращает ErrRaceLost
// и не пишет ничего.
func (r *BotRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to domain.BotStatus) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE bots
		SET status = $3, last_active = NOW(), version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return fmt.Errorf("update bot status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.raceOrNotFound(ctx, id)
	}

	activity := domain.StatusChangeActivity(id, to)
	if err := insertActivity(ctx, tx, &activity); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SetHealth обновляет health бота и пишет запись журнала о проверке.
func (r *BotRepo) SetHealth(ctx context.Context, id uuid.UUID, health domain.BotHealth) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE bots
		SET health = $2, last_active = NOW(), version = version + 1, updated_at = NOW()
		WHERE id = $1
	`, id, health)
	if err != nil {
		return fmt.Errorf("update bot health: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	activity := domain.BotActivity{
		ID:          uuid.New(),
		BotID:       id,
		Type:        "health_check",
		Description: "Health check result: " + string(health),
		Timestamp:   time.Now().UTC(),
	}
	if err := insertActivity(ctx, tx, &activity); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Delete удаляет бота вместе с его действиями и журналом активности.
func (r *BotRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM bot_activities WHERE bot_id = $1`, id); err != nil {
		return fmt.Errorf("delete bot activities: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM bot_actions WHERE bot_id = $1`, id); err != nil {
		return fmt.Errorf("delete bot actions: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM bots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// CreateAction создаёт действие бота.
func (r *BotRepo) CreateAction(ctx context.Context, action *domain.BotAction) error {
	detailsJSON, err := json.Marshal(action.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	query := `
		INSERT INTO bot_actions (id, bot_id, type, status, target, details, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		action.ID,
		action.BotID,
		action.Type,
		action.Status,
		nullString(action.Target),
		detailsJSON,
		action.StartedAt,
		action.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bot action: %w", err)
	}
	return nil
}

// FinishAction переводит действие бота в терминальный статус.
func (r *BotRepo) FinishAction(ctx context.Context, id uuid.UUID, status domain.ActionStatus) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE bot_actions
		SET status = $2, completed_at = NOW()
		WHERE id = $1 AND status NOT IN ('completed', 'failed')
	`, id, status)
	if err != nil {
		return fmt.Errorf("finish bot action: %w", err)
	}
	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bot_actions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check bot action exists: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrRaceLost
	}
	return nil
}

// ListActions возвращает действия бота с пагинацией.
func (r *BotRepo) ListActions(ctx context.Context, botID uuid.UUID, limit, offset int) ([]domain.BotAction, error) {
	query := `
		SELECT id, bot_id, type, status, target, details, started_at, completed_at
		FROM bot_actions
		WHERE bot_id = $1
		ORDER BY started_at DESC NULLS LAST
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, botID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bot actions: %w", err)
	}
	defer rows.Close()

	var actions []domain.BotAction
	for rows.Next() {
		var a domain.BotAction
		var target *string
		var detailsJSON []byte

		if err := rows.Scan(&a.ID, &a.BotID, &a.Type, &a.Status, &target, &detailsJSON, &a.StartedAt, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan bot action: %w", err)
		}
		if target != nil {
			a.Target = *target
		}
		if detailsJSON != nil {
			if err := json.Unmarshal(detailsJSON, &a.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details: %w", err)
			}
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// ListActivities возвращает журнал активности бота, новые записи первыми.
func (r *BotRepo) ListActivities(ctx context.Context, botID uuid.UUID, limit, offset int) ([]domain.BotActivity, error) {
	query := `
		SELECT id, bot_id, type, description, details, timestamp
		FROM bot_activities
		WHERE bot_id = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, botID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bot activities: %w", err)
	}
	defer rows.Close()

	var activities []domain.BotActivity
	for rows.Next() {
		var a domain.BotActivity
		var detailsJSON []byte

		if err := rows.Scan(&a.ID, &a.BotID, &a.Type, &a.Description, &detailsJSON, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scan bot activity: %w", err)
		}
		if detailsJSON != nil {
			if err := json.Unmarshal(detailsJSON, &a.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details: %w", err)
			}
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// --- Helpers ---

// raceOrNotFound различает "запись исчезла" и "запись изменена конкурентно".
func (r *BotRepo) raceOrNotFound(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bots WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check bot exists: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrRaceLost
}

func insertActivity(ctx context.Context, tx pgx.Tx, activity *domain.BotActivity) error {
	detailsJSON, err := json.Marshal(activity.Details)
	if err != nil {
		return fmt.Errorf("marshal activity details: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bot_activities (id, bot_id, type, description, details, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		activity.ID,
		activity.BotID,
		activity.Type,
		activity.Description,
		detailsJSON,
		activity.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert bot activity: %w", err)
	}
	return nil
}

func scanBot(row pgx.Row) (*domain.Bot, error) {
	var bot domain.Bot
	var description, avatar *string
	var configJSON []byte

	err := row.Scan(
		&bot.ID,
		&bot.Name,
		&bot.Type,
		&bot.Platform,
		&bot.Status,
		&bot.Health,
		&bot.ProxyStatus,
		&description,
		&avatar,
		&configJSON,
		&bot.LastActive,
		&bot.Version,
		&bot.CreatedAt,
		&bot.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan bot: %w", err)
	}

	if description != nil {
		bot.Description = *description
	}
	if avatar != nil {
		bot.Avatar = *avatar
	}
	if configJSON != nil {
		if err := json.Unmarshal(configJSON, &bot.Config); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	return &bot, nil
}

// likePattern оборачивает поисковую строку в %...% для ILIKE.
func likePattern(search string) string {
	if search == "" {
		return ""
	}
	return "%" + search + "%"
}
