package genai

import (
	"context"
	"fmt"
	"strings"
)

// Значения параметров по умолчанию.
const (
	defaultMaxLength = 500
	defaultImageSize = "1024x1024"
)

// lorem — заготовка для генерации текста.
const lorem = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. " +
	"Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua. " +
	"Ut enim ad minim veniam, quis nostrud exercitation ullamco laboris."

// MockGenerator — детерминированная заглушка генерации.
// Не обращается к внешним сервисам, результат зависит только от
// prompt и params.
type MockGenerator struct{}

// NewMockGenerator создаёт MockGenerator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateText возвращает placeholder-текст по prompt.
// Учитывает params["max_length"] — максимальную длину результата в символах.
func (g *MockGenerator) GenerateText(ctx context.Context, prompt string, params map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	maxLength := intParam(params, "max_length", defaultMaxLength)

	var b strings.Builder
	fmt.Fprintf(&b, "Generated content about: %s. ", prompt)
	for b.Len() < maxLength {
		b.WriteString(lorem)
		b.WriteString(" ")
	}

	text := strings.TrimSpace(b.String())
	if len(text) > maxLength {
		text = text[:maxLength]
	}
	return text, nil
}

// GenerateImage возвращает placeholder-URL изображения.
// Учитывает params["size"] в формате "ШИРИНАxВЫСОТА".
func (g *MockGenerator) GenerateImage(ctx context.Context, prompt string, params map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	size := stringParam(params, "size", defaultImageSize)
	return "https://placehold.co/" + size, nil
}

// GenerateAudio возвращает placeholder-URL аудиофайла.
func (g *MockGenerator) GenerateAudio(ctx context.Context, prompt string, params map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return "https://example.com/generated-audio.mp3", nil
}

// intParam читает целочисленный параметр.
// JSON-числа приходят как float64.
func intParam(params map[string]any, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return fallback
}

// stringParam читает строковый параметр.
func stringParam(params map[string]any, key string, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
