package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shaiso/Hive/internal/domain"
	"github.com/shaiso/Hive/internal/genai"
	"github.com/shaiso/Hive/internal/repo"
)

// ContentGenerateHandler выполняет content.generate_text,
// content.generate_image и content.generate_audio. Args: [content_id].
//
// Тип генерации определяется типом записи контента в БД, поэтому все
// три вида задач обслуживаются одним обработчиком. Повторная доставка
// по уже завершённой генерации — no-op.
type ContentGenerateHandler struct {
	contents  ContentStore
	generator genai.Generator
	logger    *slog.Logger
}

// NewContentGenerateHandler создаёт обработчик задач генерации контента.
func NewContentGenerateHandler(contents ContentStore, generator genai.Generator, logger *slog.Logger) *ContentGenerateHandler {
	return &ContentGenerateHandler{
		contents:  contents,
		generator: generator,
		logger:    logger,
	}
}

func (h *ContentGenerateHandler) Execute(ctx context.Context, args []any) error {
	id, err := argUUID(args, 0)
	if err != nil {
		return err
	}

	content, err := h.contents.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get content: %w", err)
	}

	if content.Metadata.Status != domain.ContentStatusProcessing {
		h.logger.Debug("generation already finished",
			"content_id", id,
			"status", content.Metadata.Status,
		)
		return nil
	}

	body, mediaURL, err := h.generate(ctx, content)
	if err != nil {
		return fmt.Errorf("generate %s: %w", content.Type, err)
	}

	if err := h.contents.CompleteGeneration(ctx, id, body, mediaURL, content.Metadata); err != nil {
		return fmt.Errorf("complete generation: %w", err)
	}

	h.logger.Info("content generated", "content_id", id, "type", content.Type)
	return nil
}

// generate вызывает генератор в зависимости от типа контента.
func (h *ContentGenerateHandler) generate(ctx context.Context, content *domain.Content) (body, mediaURL string, err error) {
	prompt := content.Description
	params := content.Metadata.Parameters

	switch content.Type {
	case domain.ContentTypeText:
		body, err = h.generator.GenerateText(ctx, prompt, params)
	case domain.ContentTypeImage:
		mediaURL, err = h.generator.GenerateImage(ctx, prompt, params)
	case domain.ContentTypeAudio:
		mediaURL, err = h.generator.GenerateAudio(ctx, prompt, params)
	default:
		err = fmt.Errorf("%w: content type %q", ErrBadArgs, content.Type)
	}
	return body, mediaURL, err
}

func (h *ContentGenerateHandler) Fail(ctx context.Context, args []any, cause error) error {
	id, err := argUUID(args, 0)
	if err != nil {
		return err
	}

	if err := h.contents.FailGeneration(ctx, id, cause.Error()); err != nil {
		if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrRaceLost) {
			return nil
		}
		return err
	}
	return nil
}
