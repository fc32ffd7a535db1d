package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Hive/internal/domain"
	"github.com/shaiso/Hive/internal/repo"
	"github.com/shaiso/Hive/internal/task"
)

// fakeBotStore — in-memory реализация BotStore.
type fakeBotStore struct {
	bots      map[uuid.UUID]*domain.Bot
	finished  map[uuid.UUID]domain.ActionStatus
	finishErr error
}

func newFakeBotStore(bots ...*domain.Bot) *fakeBotStore {
	s := &fakeBotStore{
		bots:     make(map[uuid.UUID]*domain.Bot),
		finished: make(map[uuid.UUID]domain.ActionStatus),
	}
	for _, b := range bots {
		s.bots[b.ID] = b
	}
	return s
}

func (s *fakeBotStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Bot, error) {
	bot, ok := s.bots[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *bot
	return &copied, nil
}

func (s *fakeBotStore) SetStatus(_ context.Context, id uuid.UUID, from, to domain.BotStatus) error {
	bot, ok := s.bots[id]
	if !ok {
		return repo.ErrNotFound
	}
	if bot.Status != from {
		return repo.ErrRaceLost
	}
	bot.Status = to
	return nil
}

func (s *fakeBotStore) SetHealth(_ context.Context, id uuid.UUID, health domain.BotHealth) error {
	bot, ok := s.bots[id]
	if !ok {
		return repo.ErrNotFound
	}
	bot.Health = health
	return nil
}

func (s *fakeBotStore) FinishAction(_ context.Context, id uuid.UUID, status domain.ActionStatus) error {
	if s.finishErr != nil {
		return s.finishErr
	}
	s.finished[id] = status
	return nil
}

// fakeActionStore — in-memory реализация ActionStore.
type fakeActionStore struct {
	actions map[uuid.UUID]*domain.CampaignAction
	created []domain.CampaignAction
}

func newFakeActionStore(actions ...*domain.CampaignAction) *fakeActionStore {
	s := &fakeActionStore{actions: make(map[uuid.UUID]*domain.CampaignAction)}
	for _, a := range actions {
		s.actions[a.ID] = a
	}
	return s
}

func (s *fakeActionStore) GetByID(_ context.Context, id uuid.UUID) (*domain.CampaignAction, error) {
	a, ok := s.actions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *fakeActionStore) ListByCampaign(_ context.Context, campaignID uuid.UUID, _, _ int) ([]domain.CampaignAction, error) {
	var out []domain.CampaignAction
	for _, a := range s.actions {
		if a.CampaignID == campaignID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeActionStore) Create(_ context.Context, action *domain.CampaignAction) error {
	copied := *action
	s.actions[action.ID] = &copied
	s.created = append(s.created, copied)
	return nil
}

func (s *fakeActionStore) Claim(_ context.Context, id uuid.UUID) error {
	a, ok := s.actions[id]
	if !ok {
		return repo.ErrNotFound
	}
	if a.Status != domain.ActionStatusPending {
		return repo.ErrRaceLost
	}
	a.Status = domain.ActionStatusInProgress
	return nil
}

func (s *fakeActionStore) Complete(_ context.Context, id uuid.UUID, results map[string]any) error {
	a, ok := s.actions[id]
	if !ok {
		return repo.ErrNotFound
	}
	if a.Status != domain.ActionStatusInProgress {
		return repo.ErrRaceLost
	}
	a.Status = domain.ActionStatusCompleted
	a.Results = results
	return nil
}

func (s *fakeActionStore) Fail(_ context.Context, id uuid.UUID, errMsg string) error {
	a, ok := s.actions[id]
	if !ok {
		return repo.ErrNotFound
	}
	if a.Status.IsTerminal() {
		return repo.ErrRaceLost
	}
	a.Status = domain.ActionStatusFailed
	a.Error = errMsg
	return nil
}

// fakeCampaignStore — in-memory реализация CampaignStore.
type fakeCampaignStore struct {
	campaigns map[uuid.UUID]*domain.Campaign
	metrics   map[uuid.UUID][]domain.CampaignMetric
}

func newFakeCampaignStore(campaigns ...*domain.Campaign) *fakeCampaignStore {
	s := &fakeCampaignStore{
		campaigns: make(map[uuid.UUID]*domain.Campaign),
		metrics:   make(map[uuid.UUID][]domain.CampaignMetric),
	}
	for _, c := range campaigns {
		s.campaigns[c.ID] = c
	}
	return s
}

func (s *fakeCampaignStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Campaign, error) {
	c, ok := s.campaigns[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *fakeCampaignStore) ReplaceMetrics(_ context.Context, campaignID uuid.UUID, metrics []domain.CampaignMetric) error {
	if _, ok := s.campaigns[campaignID]; !ok {
		return repo.ErrNotFound
	}
	s.metrics[campaignID] = metrics
	return nil
}

// fakeContentStore — in-memory реализация ContentStore.
type fakeContentStore struct {
	contents map[uuid.UUID]*domain.Content
}

func newFakeContentStore(contents ...*domain.Content) *fakeContentStore {
	s := &fakeContentStore{contents: make(map[uuid.UUID]*domain.Content)}
	for _, c := range contents {
		s.contents[c.ID] = c
	}
	return s
}

func (s *fakeContentStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Content, error) {
	c, ok := s.contents[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *fakeContentStore) CompleteGeneration(_ context.Context, id uuid.UUID, body, mediaURL string, metadata domain.ContentMetadata) error {
	c, ok := s.contents[id]
	if !ok {
		return repo.ErrNotFound
	}
	if c.Metadata.Status != domain.ContentStatusProcessing {
		return repo.ErrRaceLost
	}
	now := time.Now().UTC()
	c.Body = body
	c.MediaURL = mediaURL
	c.Metadata = metadata
	c.Metadata.Status = domain.ContentStatusCompleted
	c.Metadata.GeneratedAt = &now
	return nil
}

func (s *fakeContentStore) FailGeneration(_ context.Context, id uuid.UUID, errMsg string) error {
	c, ok := s.contents[id]
	if !ok {
		return repo.ErrNotFound
	}
	if c.Metadata.Status != domain.ContentStatusProcessing {
		return repo.ErrRaceLost
	}
	c.Metadata.Status = domain.ContentStatusError
	c.Metadata.Error = errMsg
	return nil
}

// fakeDispatcher записывает отправленные задачи.
type fakeDispatcher struct {
	submitted []submittedTask
	err       error
}

type submittedTask struct {
	kind task.Kind
	args []any
}

func (f *fakeDispatcher) Submit(_ context.Context, kind task.Kind, args ...any) (task.Handle, error) {
	if f.err != nil {
		return task.Handle{}, f.err
	}
	f.submitted = append(f.submitted, submittedTask{kind: kind, args: args})
	return task.Handle{ID: uuid.New().String(), Kind: kind}, nil
}

func args(ids ...uuid.UUID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func TestBotStart(t *testing.T) {
	bot := &domain.Bot{ID: uuid.New(), Status: domain.BotStatusIdle}
	store := newFakeBotStore(bot)
	h := NewBotStartHandler(store, discardLogger())

	if err := h.Execute(context.Background(), args(bot.ID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if bot.Status != domain.BotStatusRunning {
		t.Errorf("bot status = %s, want running", bot.Status)
	}
}

func TestBotStartIdempotent(t *testing.T) {
	bot := &domain.Bot{ID: uuid.New(), Status: domain.BotStatusRunning}
	store := newFakeBotStore(bot)
	h := NewBotStartHandler(store, discardLogger())

	// Дубликат доставки: бот уже running, no-op без ошибки.
	if err := h.Execute(context.Background(), args(bot.ID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if bot.Status != domain.BotStatusRunning {
		t.Errorf("bot status = %s, want running", bot.Status)
	}
}

func TestBotStartMissing(t *testing.T) {
	h := NewBotStartHandler(newFakeBotStore(), discardLogger())

	err := h.Execute(context.Background(), args(uuid.New()))
	if !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("Execute() error = %v, want ErrNotFound", err)
	}
	if !isFatal(err) {
		t.Error("missing bot must be fatal")
	}
}

func TestBotStartInvalidTransition(t *testing.T) {
	bot := &domain.Bot{ID: uuid.New(), Status: domain.BotStatusPaused}
	store := newFakeBotStore(bot)
	h := NewBotStartHandler(store, discardLogger())

	err := h.Execute(context.Background(), args(bot.ID))
	var transition *domain.TransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("Execute() error = %v, want TransitionError", err)
	}
	if !isBenign(err) {
		t.Error("invalid transition must be benign: the bot moved on")
	}
	if bot.Status != domain.BotStatusPaused {
		t.Errorf("bot status = %s, want unchanged paused", bot.Status)
	}
}

// Повторная доставка bot.start после того, как бот был приостановлен,
// не должна ни ронять бота в error, ни уходить в retry.
func TestBotStartDuplicateOnPausedBot(t *testing.T) {
	bot := &domain.Bot{ID: uuid.New(), Status: domain.BotStatusPaused}
	store := newFakeBotStore(bot)
	pub := &fakeRetryPublisher{}
	w := newTestWorker(NewBotStartHandler(store, discardLogger()), pub)

	if err := w.handle(context.Background(), delivery(task.KindBotStart, 2, bot.ID.String())); err != nil {
		t.Fatalf("handle() error = %v", err)
	}

	if bot.Status != domain.BotStatusPaused {
		t.Errorf("bot status = %s, want paused", bot.Status)
	}
	if len(pub.published) != 0 {
		t.Errorf("published %d retries, want 0", len(pub.published))
	}
}

func TestBotStartFailFaults(t *testing.T) {
	bot := &domain.Bot{ID: uuid.New(), Status: domain.BotStatusIdle}
	store := newFakeBotStore(bot)
	h := NewBotStartHandler(store, discardLogger())

	if err := h.Fail(context.Background(), args(bot.ID), errors.New("boom")); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if bot.Status != domain.BotStatusError {
		t.Errorf("bot status = %s, want error", bot.Status)
	}
}

func TestBotStop(t *testing.T) {
	bot := &domain.Bot{ID: uuid.New(), Status: domain.BotStatusRunning}
	store := newFakeBotStore(bot)
	h := NewBotStopHandler(store, discardLogger())

	if err := h.Execute(context.Background(), args(bot.ID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if bot.Status != domain.BotStatusIdle {
		t.Errorf("bot status = %s, want idle", bot.Status)
	}
}

func TestBotExecuteAction(t *testing.T) {
	bot := &domain.Bot{ID: uuid.New(), Status: domain.BotStatusRunning}
	store := newFakeBotStore(bot)
	h := NewBotExecuteActionHandler(store, discardLogger())

	actionID := uuid.New()
	if err := h.Execute(context.Background(), args(bot.ID, actionID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := store.finished[actionID]; got != domain.ActionStatusCompleted {
		t.Errorf("action status = %s, want completed", got)
	}
}

// Действие могло быть удалено вместе с ботом между доставками:
// репозиторий сообщает об этом ErrNotFound, а не проигранной гонкой.
func TestBotExecuteActionGone(t *testing.T) {
	bot := &domain.Bot{ID: uuid.New(), Status: domain.BotStatusRunning}
	store := newFakeBotStore(bot)
	store.finishErr = repo.ErrNotFound
	h := NewBotExecuteActionHandler(store, discardLogger())

	err := h.Execute(context.Background(), args(bot.ID, uuid.New()))
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("Execute() error = %v, want ErrNotFound", err)
	}
	if !isFatal(err) || isBenign(err) {
		t.Error("missing action must be fatal, not benign")
	}
}

func TestBotExecuteActionNotRunning(t *testing.T) {
	bot := &domain.Bot{ID: uuid.New(), Status: domain.BotStatusIdle}
	store := newFakeBotStore(bot)
	h := NewBotExecuteActionHandler(store, discardLogger())

	err := h.Execute(context.Background(), args(bot.ID, uuid.New()))
	if !errors.Is(err, ErrBotNotRunning) {
		t.Fatalf("Execute() error = %v, want ErrBotNotRunning", err)
	}
	// Бот может быть в процессе запуска — ошибка retryable.
	if isFatal(err) {
		t.Error("ErrBotNotRunning must not be fatal")
	}
}

func TestBotHealthCheck(t *testing.T) {
	recent := time.Now().UTC().Add(-time.Minute)
	bot := &domain.Bot{
		ID:         uuid.New(),
		Status:     domain.BotStatusRunning,
		Health:     domain.BotHealthUnknown,
		LastActive: &recent,
	}
	store := newFakeBotStore(bot)
	h := NewBotHealthCheckHandler(store, discardLogger())

	if err := h.Execute(context.Background(), args(bot.ID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if bot.Health != domain.BotHealthHealthy {
		t.Errorf("bot health = %s, want healthy", bot.Health)
	}
}

func TestCampaignProcess(t *testing.T) {
	campaign := &domain.Campaign{ID: uuid.New(), Status: domain.CampaignStatusActive}
	later := time.Now().Add(time.Hour)
	immediate := &domain.CampaignAction{ID: uuid.New(), CampaignID: campaign.ID, Status: domain.ActionStatusPending}
	scheduled := &domain.CampaignAction{ID: uuid.New(), CampaignID: campaign.ID, Status: domain.ActionStatusPending, ScheduledFor: &later}

	campaigns := newFakeCampaignStore(campaign)
	actions := newFakeActionStore(immediate, scheduled)
	dispatcher := &fakeDispatcher{}
	h := NewCampaignProcessHandler(campaigns, actions, dispatcher, discardLogger())

	if err := h.Execute(context.Background(), args(campaign.ID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// Немедленное действие захвачено и отправлено, запланированное
	// оставлено сканеру; плюс пересчёт метрик.
	if immediate.Status != domain.ActionStatusInProgress {
		t.Errorf("immediate action status = %s, want in-progress", immediate.Status)
	}
	if scheduled.Status != domain.ActionStatusPending {
		t.Errorf("scheduled action status = %s, want pending", scheduled.Status)
	}

	var executes, refreshes int
	for _, s := range dispatcher.submitted {
		switch s.kind {
		case task.KindCampaignExecuteAction:
			executes++
		case task.KindCampaignRefreshMetrics:
			refreshes++
		}
	}
	if executes != 1 {
		t.Errorf("execute_action submits = %d, want 1", executes)
	}
	if refreshes != 1 {
		t.Errorf("refresh_metrics submits = %d, want 1", refreshes)
	}
}

func TestCampaignProcessInactive(t *testing.T) {
	campaign := &domain.Campaign{ID: uuid.New(), Status: domain.CampaignStatusPaused}
	action := &domain.CampaignAction{ID: uuid.New(), CampaignID: campaign.ID, Status: domain.ActionStatusPending}

	dispatcher := &fakeDispatcher{}
	h := NewCampaignProcessHandler(newFakeCampaignStore(campaign), newFakeActionStore(action), dispatcher, discardLogger())

	if err := h.Execute(context.Background(), args(campaign.ID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(dispatcher.submitted) != 0 {
		t.Errorf("submitted %d tasks for paused campaign, want 0", len(dispatcher.submitted))
	}
}

func TestCampaignExecuteAction(t *testing.T) {
	campaignID := uuid.New()
	action := &domain.CampaignAction{
		ID:         uuid.New(),
		CampaignID: campaignID,
		Type:       "publish_post",
		Status:     domain.ActionStatusInProgress,
	}
	actions := newFakeActionStore(action)
	h := NewCampaignExecuteActionHandler(actions, discardLogger())

	if err := h.Execute(context.Background(), args(campaignID, action.ID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if action.Status != domain.ActionStatusCompleted {
		t.Errorf("action status = %s, want completed", action.Status)
	}
	if action.Results["action_type"] != "publish_post" {
		t.Errorf("results = %v, want action_type recorded", action.Results)
	}
	if len(actions.created) != 0 {
		t.Errorf("created %d recurrences without recur_cron, want 0", len(actions.created))
	}
}

func TestCampaignExecuteActionDuplicate(t *testing.T) {
	campaignID := uuid.New()
	action := &domain.CampaignAction{
		ID:         uuid.New(),
		CampaignID: campaignID,
		Status:     domain.ActionStatusCompleted,
	}
	h := NewCampaignExecuteActionHandler(newFakeActionStore(action), discardLogger())

	// Дубликат доставки по завершённому действию — no-op.
	if err := h.Execute(context.Background(), args(campaignID, action.ID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if action.Status != domain.ActionStatusCompleted {
		t.Errorf("action status = %s, want completed", action.Status)
	}
}

func TestCampaignExecuteActionRecurring(t *testing.T) {
	campaignID := uuid.New()
	now := time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC)
	action := &domain.CampaignAction{
		ID:         uuid.New(),
		CampaignID: campaignID,
		Type:       "publish_post",
		Status:     domain.ActionStatusInProgress,
		RecurCron:  "0 12 * * *",
	}
	actions := newFakeActionStore(action)
	h := NewCampaignExecuteActionHandler(actions, discardLogger())
	h.now = func() time.Time { return now }

	if err := h.Execute(context.Background(), args(campaignID, action.ID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(actions.created) != 1 {
		t.Fatalf("created %d next occurrences, want 1", len(actions.created))
	}
	next := actions.created[0]
	if next.Status != domain.ActionStatusPending {
		t.Errorf("next status = %s, want pending", next.Status)
	}
	want := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if next.ScheduledFor == nil || !next.ScheduledFor.Equal(want) {
		t.Errorf("next scheduled_for = %v, want %v", next.ScheduledFor, want)
	}
	if next.RecurCron != action.RecurCron {
		t.Errorf("next recur_cron = %q, want %q", next.RecurCron, action.RecurCron)
	}
}

func TestCampaignExecuteActionFail(t *testing.T) {
	campaignID := uuid.New()
	action := &domain.CampaignAction{
		ID:         uuid.New(),
		CampaignID: campaignID,
		Status:     domain.ActionStatusInProgress,
	}
	actions := newFakeActionStore(action)
	h := NewCampaignExecuteActionHandler(actions, discardLogger())

	if err := h.Fail(context.Background(), args(campaignID, action.ID), errors.New("platform rejected")); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if action.Status != domain.ActionStatusFailed {
		t.Errorf("action status = %s, want failed", action.Status)
	}
	if action.Error != "platform rejected" {
		t.Errorf("action error = %q", action.Error)
	}
}

func TestCampaignRefreshMetrics(t *testing.T) {
	campaign := &domain.Campaign{ID: uuid.New(), Status: domain.CampaignStatusActive}
	completed := &domain.CampaignAction{ID: uuid.New(), CampaignID: campaign.ID, Status: domain.ActionStatusCompleted}
	failed := &domain.CampaignAction{ID: uuid.New(), CampaignID: campaign.ID, Status: domain.ActionStatusFailed}
	pending := &domain.CampaignAction{ID: uuid.New(), CampaignID: campaign.ID, Status: domain.ActionStatusPending}

	campaigns := newFakeCampaignStore(campaign)
	h := NewCampaignRefreshMetricsHandler(campaigns, newFakeActionStore(completed, failed, pending), discardLogger())

	if err := h.Execute(context.Background(), args(campaign.ID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	byName := make(map[string]float64)
	for _, m := range campaigns.metrics[campaign.ID] {
		byName[m.Name] = m.Value
	}

	if byName["actions_total"] != 3 {
		t.Errorf("actions_total = %v, want 3", byName["actions_total"])
	}
	if byName["actions_completed"] != 1 {
		t.Errorf("actions_completed = %v, want 1", byName["actions_completed"])
	}
	if byName["actions_failed"] != 1 {
		t.Errorf("actions_failed = %v, want 1", byName["actions_failed"])
	}
	if byName["impressions"] != impressionsPerAction {
		t.Errorf("impressions = %v, want %d", byName["impressions"], impressionsPerAction)
	}
}

func TestContentGenerateText(t *testing.T) {
	content := &domain.Content{
		ID:          uuid.New(),
		Type:        domain.ContentTypeText,
		Description: "spring collection teaser",
		Metadata:    domain.ContentMetadata{Status: domain.ContentStatusProcessing},
	}
	store := newFakeContentStore(content)
	h := NewContentGenerateHandler(store, genaiMock{}, discardLogger())

	if err := h.Execute(context.Background(), args(content.ID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if content.Metadata.Status != domain.ContentStatusCompleted {
		t.Errorf("metadata status = %s, want completed", content.Metadata.Status)
	}
	if content.Body == "" {
		t.Error("body is empty after text generation")
	}
	if content.Metadata.GeneratedAt == nil {
		t.Error("generated_at is nil")
	}
}

func TestContentGenerateImage(t *testing.T) {
	content := &domain.Content{
		ID:       uuid.New(),
		Type:     domain.ContentTypeImage,
		Metadata: domain.ContentMetadata{Status: domain.ContentStatusProcessing},
	}
	store := newFakeContentStore(content)
	h := NewContentGenerateHandler(store, genaiMock{}, discardLogger())

	if err := h.Execute(context.Background(), args(content.ID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if content.MediaURL == "" {
		t.Error("media_url is empty after image generation")
	}
	if content.Body != "" {
		t.Errorf("body = %q, want empty for image", content.Body)
	}
}

func TestContentGenerateDuplicate(t *testing.T) {
	content := &domain.Content{
		ID:       uuid.New(),
		Type:     domain.ContentTypeText,
		Body:     "already generated",
		Metadata: domain.ContentMetadata{Status: domain.ContentStatusCompleted},
	}
	store := newFakeContentStore(content)
	h := NewContentGenerateHandler(store, genaiMock{}, discardLogger())

	// Дубликат доставки: генерация завершена, контент не перезаписывается.
	if err := h.Execute(context.Background(), args(content.ID)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if content.Body != "already generated" {
		t.Errorf("body = %q, want untouched", content.Body)
	}
}

func TestContentGenerateRetryThenSucceed(t *testing.T) {
	content := &domain.Content{
		ID:          uuid.New(),
		Type:        domain.ContentTypeText,
		Description: "prompt",
		Metadata:    domain.ContentMetadata{Status: domain.ContentStatusProcessing},
	}
	store := newFakeContentStore(content)
	gen := &flakyGenerator{failures: 1}
	h := NewContentGenerateHandler(store, gen, discardLogger())

	// Первая попытка падает, статус генерации остаётся processing.
	if err := h.Execute(context.Background(), args(content.ID)); err == nil {
		t.Fatal("Execute() error = nil, want generation error")
	}
	if content.Metadata.Status != domain.ContentStatusProcessing {
		t.Errorf("metadata status = %s, want processing after retryable failure", content.Metadata.Status)
	}

	// Повторная попытка успешна.
	if err := h.Execute(context.Background(), args(content.ID)); err != nil {
		t.Fatalf("Execute() retry error = %v", err)
	}
	if content.Metadata.Status != domain.ContentStatusCompleted {
		t.Errorf("metadata status = %s, want completed", content.Metadata.Status)
	}
}

func TestContentGenerateFail(t *testing.T) {
	content := &domain.Content{
		ID:       uuid.New(),
		Type:     domain.ContentTypeText,
		Metadata: domain.ContentMetadata{Status: domain.ContentStatusProcessing},
	}
	store := newFakeContentStore(content)
	h := NewContentGenerateHandler(store, genaiMock{}, discardLogger())

	if err := h.Fail(context.Background(), args(content.ID), errors.New("provider quota exceeded")); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if content.Metadata.Status != domain.ContentStatusError {
		t.Errorf("metadata status = %s, want error", content.Metadata.Status)
	}
	if content.Metadata.Error != "provider quota exceeded" {
		t.Errorf("metadata error = %q", content.Metadata.Error)
	}
}

// genaiMock — минимальный генератор для тестов обработчиков.
type genaiMock struct{}

func (genaiMock) GenerateText(_ context.Context, prompt string, _ map[string]any) (string, error) {
	return "text about " + prompt, nil
}

func (genaiMock) GenerateImage(_ context.Context, _ string, _ map[string]any) (string, error) {
	return "https://placehold.co/1024x1024", nil
}

func (genaiMock) GenerateAudio(_ context.Context, _ string, _ map[string]any) (string, error) {
	return "https://example.com/generated-audio.mp3", nil
}

// flakyGenerator падает заданное число раз, затем работает.
type flakyGenerator struct {
	failures int
	calls    int
}

func (g *flakyGenerator) GenerateText(_ context.Context, prompt string, _ map[string]any) (string, error) {
	g.calls++
	if g.calls <= g.failures {
		return "", errors.New("provider timeout")
	}
	return "text about " + prompt, nil
}

func (g *flakyGenerator) GenerateImage(_ context.Context, _ string, _ map[string]any) (string, error) {
	return "", errors.New("not used")
}

func (g *flakyGenerator) GenerateAudio(_ context.Context, _ string, _ map[string]any) (string, error) {
	return "", errors.New("not used")
}
