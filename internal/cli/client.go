package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// BotResponse — бот из API.
type BotResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Platform    string         `json:"platform"`
	Status      string         `json:"status"`
	Health      string         `json:"health"`
	ProxyStatus string         `json:"proxy_status"`
	Description string         `json:"description,omitempty"`
	Avatar      string         `json:"avatar,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
	LastActive  string         `json:"last_active,omitempty"`
	Version     int            `json:"version"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// BotActionResponse — действие бота из API.
type BotActionResponse struct {
	ID          string         `json:"id"`
	BotID       string         `json:"bot_id"`
	Type        string         `json:"type"`
	Status      string         `json:"status"`
	Target      string         `json:"target,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	StartedAt   string         `json:"started_at,omitempty"`
	CompletedAt string         `json:"completed_at,omitempty"`
}

// BotActivityResponse — запись журнала активности бота из API.
type BotActivityResponse struct {
	ID          string         `json:"id"`
	BotID       string         `json:"bot_id"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

// CampaignResponse — кампания из API.
type CampaignResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	Status      string   `json:"status"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// CampaignActionResponse — действие кампании из API.
type CampaignActionResponse struct {
	ID           string         `json:"id"`
	CampaignID   string         `json:"campaign_id"`
	Type         string         `json:"type"`
	Status       string         `json:"status"`
	ScheduledFor string         `json:"scheduled_for,omitempty"`
	RecurCron    string         `json:"recur_cron,omitempty"`
	Platform     string         `json:"platform,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	Results      map[string]any `json:"results,omitempty"`
	Error        string         `json:"error,omitempty"`
	CompletedAt  string         `json:"completed_at,omitempty"`
}

// CampaignMetricResponse — метрика кампании из API.
type CampaignMetricResponse struct {
	ID         string   `json:"id"`
	CampaignID string   `json:"campaign_id"`
	Name       string   `json:"name"`
	Value      float64  `json:"value"`
	Target     *float64 `json:"target,omitempty"`
	Change     *float64 `json:"change,omitempty"`
}

// ContentResponse — контент из API.
type ContentResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Body        string          `json:"content,omitempty"`
	MediaURL    string          `json:"media_url,omitempty"`
	Platform    string          `json:"platform,omitempty"`
	CampaignID  string          `json:"campaign_id,omitempty"`
	Metadata    ContentMetadata `json:"metadata"`
	CreatedAt   string          `json:"created_at"`
}

// ContentMetadata — метаданные генерации контента из API.
type ContentMetadata struct {
	Status      string         `json:"status,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Error       string         `json:"error,omitempty"`
	GeneratedAt string         `json:"generated_at,omitempty"`
}

// TaskSubmittedResponse — поставленная в очередь задача из API.
type TaskSubmittedResponse struct {
	TaskID string `json:"task_id"`
	Kind   string `json:"kind"`
	Queue  string `json:"queue"`
}

// BotLifecycleResponse — результат start/stop. Либо задача поставлена
// (TaskID заполнен), либо переход идемпотентен и вернулся текущий бот.
type BotLifecycleResponse struct {
	TaskID string `json:"task_id,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Queue  string `json:"queue,omitempty"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
}

// BotActionSubmittedResponse — созданное действие бота и задача.
type BotActionSubmittedResponse struct {
	Action BotActionResponse     `json:"action"`
	Task   TaskSubmittedResponse `json:"task"`
}

// CampaignActionSubmittedResponse — действие кампании и задача.
type CampaignActionSubmittedResponse struct {
	Action CampaignActionResponse `json:"action"`
	Task   TaskSubmittedResponse  `json:"task"`
}

// GenerationSubmittedResponse — placeholder контента и задача генерации.
type GenerationSubmittedResponse struct {
	Content ContentResponse       `json:"content"`
	Task    TaskSubmittedResponse `json:"task"`
}

// --- Request types ---

// CreateBotRequest — создание бота.
type CreateBotRequest struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Platform    string         `json:"platform"`
	Description string         `json:"description,omitempty"`
	Avatar      string         `json:"avatar,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
}

// UpdateBotRequest — обновление бота. Version обязателен.
type UpdateBotRequest struct {
	Name        *string `json:"name,omitempty"`
	Type        *string `json:"type,omitempty"`
	Platform    *string `json:"platform,omitempty"`
	Description *string `json:"description,omitempty"`
	Version     int     `json:"version"`
}

// CreateBotActionRequest — выполнение действия ботом.
type CreateBotActionRequest struct {
	Type    string         `json:"type"`
	Target  string         `json:"target,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// CreateCampaignRequest — создание кампании.
type CreateCampaignRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	StartDate   *string  `json:"start_date,omitempty"`
	EndDate     *string  `json:"end_date,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
}

// UpdateCampaignRequest — обновление кампании.
type UpdateCampaignRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Type        *string   `json:"type,omitempty"`
	Budget      *float64  `json:"budget,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Platforms   *[]string `json:"platforms,omitempty"`
}

// CreateCampaignActionRequest — создание действия кампании.
type CreateCampaignActionRequest struct {
	Type         string         `json:"type"`
	ScheduledFor *string        `json:"scheduled_for,omitempty"`
	RecurCron    string         `json:"recur_cron,omitempty"`
	Platform     string         `json:"platform,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// AddCampaignMetricRequest — добавление метрики кампании.
type AddCampaignMetricRequest struct {
	Name   string   `json:"name"`
	Value  float64  `json:"value"`
	Target *float64 `json:"target,omitempty"`
}

// GenerateContentRequest — генерация контента.
type GenerateContentRequest struct {
	Prompt     string         `json:"prompt"`
	Platform   string         `json:"platform,omitempty"`
	CampaignID string         `json:"campaign_id,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// ListBotsOpts — параметры фильтрации ботов.
type ListBotsOpts struct {
	Status   string
	Platform string
	Health   string
	Search   string
	Limit    int
}

// ListCampaignsOpts — параметры фильтрации кампаний.
type ListCampaignsOpts struct {
	Status string
	Type   string
	Limit  int
}

// ListContentOpts — параметры фильтрации контента.
type ListContentOpts struct {
	Type       string
	CampaignID string
	Limit      int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Hive API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Bots ---

// ListBots возвращает список ботов с фильтрацией.
func (c *Client) ListBots(opts ListBotsOpts) ([]BotResponse, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Platform != "" {
		params.Set("platform", opts.Platform)
	}
	if opts.Health != "" {
		params.Set("health", opts.Health)
	}
	if opts.Search != "" {
		params.Set("search", opts.Search)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var bots []BotResponse
	err := c.list("/api/v1/bots", params, &bots)
	return bots, err
}

// CreateBot создаёт нового бота.
func (c *Client) CreateBot(req CreateBotRequest) (*BotResponse, error) {
	var bot BotResponse
	err := c.post("/api/v1/bots", req, &bot)
	return &bot, err
}

// GetBot возвращает бота по ID.
func (c *Client) GetBot(id string) (*BotResponse, error) {
	var bot BotResponse
	err := c.get("/api/v1/bots/"+id, &bot)
	return &bot, err
}

// UpdateBot обновляет бота.
func (c *Client) UpdateBot(id string, req UpdateBotRequest) (*BotResponse, error) {
	var bot BotResponse
	err := c.put("/api/v1/bots/"+id, req, &bot)
	return &bot, err
}

// DeleteBot удаляет бота.
func (c *Client) DeleteBot(id string) error {
	return c.delete("/api/v1/bots/" + id)
}

// StartBot ставит задачу запуска бота.
func (c *Client) StartBot(id string) (*BotLifecycleResponse, error) {
	var resp BotLifecycleResponse
	err := c.post("/api/v1/bots/"+id+"/start", nil, &resp)
	return &resp, err
}

// StopBot ставит задачу остановки бота.
func (c *Client) StopBot(id string) (*BotLifecycleResponse, error) {
	var resp BotLifecycleResponse
	err := c.post("/api/v1/bots/"+id+"/stop", nil, &resp)
	return &resp, err
}

// PauseBot приостанавливает бота.
func (c *Client) PauseBot(id string) (*BotResponse, error) {
	var bot BotResponse
	err := c.post("/api/v1/bots/"+id+"/pause", nil, &bot)
	return &bot, err
}

// ResumeBot возобновляет бота.
func (c *Client) ResumeBot(id string) (*BotResponse, error) {
	var bot BotResponse
	err := c.post("/api/v1/bots/"+id+"/resume", nil, &bot)
	return &bot, err
}

// ResetBot сбрасывает бота из error в idle.
func (c *Client) ResetBot(id string) (*BotResponse, error) {
	var bot BotResponse
	err := c.post("/api/v1/bots/"+id+"/reset", nil, &bot)
	return &bot, err
}

// CheckBotHealth ставит задачу проверки здоровья.
func (c *Client) CheckBotHealth(id string) (*TaskSubmittedResponse, error) {
	var resp TaskSubmittedResponse
	err := c.post("/api/v1/bots/"+id+"/health-check", nil, &resp)
	return &resp, err
}

// ListBotActions возвращает действия бота.
func (c *Client) ListBotActions(botID string) ([]BotActionResponse, error) {
	var actions []BotActionResponse
	err := c.list("/api/v1/bots/"+botID+"/actions", nil, &actions)
	return actions, err
}

// CreateBotAction создаёт действие и ставит задачу его выполнения.
func (c *Client) CreateBotAction(botID string, req CreateBotActionRequest) (*BotActionSubmittedResponse, error) {
	var resp BotActionSubmittedResponse
	err := c.post("/api/v1/bots/"+botID+"/actions", req, &resp)
	return &resp, err
}

// ListBotActivities возвращает журнал активности бота.
func (c *Client) ListBotActivities(botID string) ([]BotActivityResponse, error) {
	var activities []BotActivityResponse
	err := c.list("/api/v1/bots/"+botID+"/activities", nil, &activities)
	return activities, err
}

// --- Campaigns ---

// ListCampaigns возвращает список кампаний с фильтрацией.
func (c *Client) ListCampaigns(opts ListCampaignsOpts) ([]CampaignResponse, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Type != "" {
		params.Set("type", opts.Type)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var campaigns []CampaignResponse
	err := c.list("/api/v1/campaigns", params, &campaigns)
	return campaigns, err
}

// CreateCampaign создаёт кампанию в статусе draft.
func (c *Client) CreateCampaign(req CreateCampaignRequest) (*CampaignResponse, error) {
	var campaign CampaignResponse
	err := c.post("/api/v1/campaigns", req, &campaign)
	return &campaign, err
}

// GetCampaign возвращает кампанию по ID.
func (c *Client) GetCampaign(id string) (*CampaignResponse, error) {
	var campaign CampaignResponse
	err := c.get("/api/v1/campaigns/"+id, &campaign)
	return &campaign, err
}

// UpdateCampaign обновляет кампанию.
func (c *Client) UpdateCampaign(id string, req UpdateCampaignRequest) (*CampaignResponse, error) {
	var campaign CampaignResponse
	err := c.put("/api/v1/campaigns/"+id, req, &campaign)
	return &campaign, err
}

// DeleteCampaign удаляет кампанию.
func (c *Client) DeleteCampaign(id string) error {
	return c.delete("/api/v1/campaigns/" + id)
}

// SetCampaignStatus переводит кампанию в новый статус.
func (c *Client) SetCampaignStatus(id, status string) (*CampaignResponse, error) {
	body := map[string]string{"status": status}
	var campaign CampaignResponse
	err := c.put("/api/v1/campaigns/"+id+"/status", body, &campaign)
	return &campaign, err
}

// ListCampaignActions возвращает действия кампании.
func (c *Client) ListCampaignActions(campaignID string) ([]CampaignActionResponse, error) {
	var actions []CampaignActionResponse
	err := c.list("/api/v1/campaigns/"+campaignID+"/actions", nil, &actions)
	return actions, err
}

// CreateCampaignAction создаёт действие кампании.
func (c *Client) CreateCampaignAction(campaignID string, req CreateCampaignActionRequest) (*CampaignActionResponse, error) {
	var action CampaignActionResponse
	err := c.post("/api/v1/campaigns/"+campaignID+"/actions", req, &action)
	return &action, err
}

// ExecuteCampaignAction немедленно ставит задачу выполнения действия.
func (c *Client) ExecuteCampaignAction(campaignID, actionID string) (*CampaignActionSubmittedResponse, error) {
	var resp CampaignActionSubmittedResponse
	err := c.post("/api/v1/campaigns/"+campaignID+"/actions/"+actionID+"/execute", nil, &resp)
	return &resp, err
}

// ListCampaignMetrics возвращает метрики кампании.
func (c *Client) ListCampaignMetrics(campaignID string) ([]CampaignMetricResponse, error) {
	var metrics []CampaignMetricResponse
	err := c.list("/api/v1/campaigns/"+campaignID+"/metrics", nil, &metrics)
	return metrics, err
}

// AddCampaignMetric добавляет метрику кампании.
func (c *Client) AddCampaignMetric(campaignID string, req AddCampaignMetricRequest) (*CampaignMetricResponse, error) {
	var metric CampaignMetricResponse
	err := c.post("/api/v1/campaigns/"+campaignID+"/metrics", req, &metric)
	return &metric, err
}

// RefreshCampaignMetrics ставит задачу пересчёта метрик.
func (c *Client) RefreshCampaignMetrics(campaignID string) (*TaskSubmittedResponse, error) {
	var resp TaskSubmittedResponse
	err := c.post("/api/v1/campaigns/"+campaignID+"/metrics/refresh", nil, &resp)
	return &resp, err
}

// --- Content ---

// ListContent возвращает список контента с фильтрацией.
func (c *Client) ListContent(opts ListContentOpts) ([]ContentResponse, error) {
	params := url.Values{}
	if opts.Type != "" {
		params.Set("type", opts.Type)
	}
	if opts.CampaignID != "" {
		params.Set("campaign_id", opts.CampaignID)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var contents []ContentResponse
	err := c.list("/api/v1/content", params, &contents)
	return contents, err
}

// GetContent возвращает контент по ID.
func (c *Client) GetContent(id string) (*ContentResponse, error) {
	var content ContentResponse
	err := c.get("/api/v1/content/"+id, &content)
	return &content, err
}

// DeleteContent удаляет контент.
func (c *Client) DeleteContent(id string) error {
	return c.delete("/api/v1/content/" + id)
}

// GenerateContent ставит задачу генерации контента заданного типа.
// ctype — text, image или audio.
func (c *Client) GenerateContent(ctype string, req GenerateContentRequest) (*GenerationSubmittedResponse, error) {
	var resp GenerationSubmittedResponse
	err := c.post("/api/v1/content/generate/"+ctype, req, &resp)
	return &resp, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
