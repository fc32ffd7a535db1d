package genai

import "context"

// Generator генерирует контент по текстовому prompt.
//
// GenerateText возвращает сгенерированный текст, GenerateImage и
// GenerateAudio — URL сгенерированного медиа. params — произвольные
// параметры генерации (max_length, size, voice и т.п.), конкретная
// реализация интерпретирует известные ей ключи и игнорирует остальные.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, params map[string]any) (string, error)
	GenerateImage(ctx context.Context, prompt string, params map[string]any) (string, error)
	GenerateAudio(ctx context.Context, prompt string, params map[string]any) (string, error)
}
