package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shaiso/Hive/internal/domain"
	"github.com/shaiso/Hive/internal/genai"
	"github.com/shaiso/Hive/internal/task"
)

// Handler — обработчик одного вида задачи.
//
// Execute выполняет задачу. Fail вызывается ровно один раз, когда
// задача признана проваленной (fatal-ошибка или исчерпание попыток),
// и фиксирует провал в состоянии сущности.
type Handler interface {
	Execute(ctx context.Context, args []any) error
	Fail(ctx context.Context, args []any, cause error) error
}

// BotStore — операции над ботами, нужные обработчикам.
// Реализуется *repo.BotRepo.
type BotStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bot, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to domain.BotStatus) error
	SetHealth(ctx context.Context, id uuid.UUID, health domain.BotHealth) error
	FinishAction(ctx context.Context, id uuid.UUID, status domain.ActionStatus) error
}

// CampaignStore — операции над кампаниями.
// Реализуется *repo.CampaignRepo.
type CampaignStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	ReplaceMetrics(ctx context.Context, campaignID uuid.UUID, metrics []domain.CampaignMetric) error
}

// ActionStore — операции над действиями кампаний.
// Реализуется *repo.ActionRepo.
type ActionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CampaignAction, error)
	ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit, offset int) ([]domain.CampaignAction, error)
	Create(ctx context.Context, action *domain.CampaignAction) error
	Claim(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID, results map[string]any) error
	Fail(ctx context.Context, id uuid.UUID, errMsg string) error
}

// ContentStore — операции над контентом.
// Реализуется *repo.ContentRepo.
type ContentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Content, error)
	CompleteGeneration(ctx context.Context, id uuid.UUID, body, mediaURL string, metadata domain.ContentMetadata) error
	FailGeneration(ctx context.Context, id uuid.UUID, errMsg string) error
}

// Dispatcher — отправка дочерних задач из обработчиков.
// Реализуется *task.Dispatcher.
type Dispatcher interface {
	Submit(ctx context.Context, kind task.Kind, args ...any) (task.Handle, error)
}

// Registry — реестр обработчиков по виду задачи.
type Registry struct {
	handlers map[task.Kind]Handler
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[task.Kind]Handler)}
}

// Register добавляет обработчик для вида задачи.
func (r *Registry) Register(kind task.Kind, h Handler) {
	r.handlers[kind] = h
}

// Get возвращает обработчик для вида задачи.
func (r *Registry) Get(kind task.Kind) (Handler, error) {
	h, ok := r.handlers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingHandler, kind)
	}
	return h, nil
}

// Validate проверяет, что каждый вид задачи из каталога имеет
// обработчик. Вызывается при старте воркера: неполный реестр —
// ошибка конфигурации, а не сюрприз в рантайме.
func (r *Registry) Validate() error {
	for _, kind := range task.Catalog() {
		if _, ok := r.handlers[kind]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingHandler, kind)
		}
	}
	return nil
}

// HandlerSet — зависимости стандартного набора обработчиков.
type HandlerSet struct {
	Bots       BotStore
	Campaigns  CampaignStore
	Actions    ActionStore
	Contents   ContentStore
	Generator  genai.Generator
	Dispatcher Dispatcher
	Logger     *slog.Logger
}

// NewDefaultRegistry создаёт реестр с обработчиками всех задач каталога.
func NewDefaultRegistry(s HandlerSet) *Registry {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	generate := NewContentGenerateHandler(s.Contents, s.Generator, logger)

	r := NewRegistry()
	r.Register(task.KindBotStart, NewBotStartHandler(s.Bots, logger))
	r.Register(task.KindBotStop, NewBotStopHandler(s.Bots, logger))
	r.Register(task.KindBotExecuteAction, NewBotExecuteActionHandler(s.Bots, logger))
	r.Register(task.KindBotHealthCheck, NewBotHealthCheckHandler(s.Bots, logger))
	r.Register(task.KindCampaignProcess, NewCampaignProcessHandler(s.Campaigns, s.Actions, s.Dispatcher, logger))
	r.Register(task.KindCampaignExecuteAction, NewCampaignExecuteActionHandler(s.Actions, logger))
	r.Register(task.KindCampaignRefreshMetrics, NewCampaignRefreshMetricsHandler(s.Campaigns, s.Actions, logger))
	r.Register(task.KindContentGenerateText, generate)
	r.Register(task.KindContentGenerateImage, generate)
	r.Register(task.KindContentGenerateAudio, generate)
	return r
}

// argUUID разбирает позиционный аргумент как UUID.
func argUUID(args []any, i int) (uuid.UUID, error) {
	s, err := argString(args, i)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: arg %d: %v", ErrBadArgs, i, err)
	}
	return id, nil
}

// argString разбирает позиционный аргумент как строку.
func argString(args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%w: missing arg %d", ErrBadArgs, i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: arg %d is %T, want string", ErrBadArgs, i, args[i])
	}
	return s, nil
}
