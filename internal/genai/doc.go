// Package genai предоставляет генерацию контента (текст, изображения,
// аудио) за интерфейсом Generator.
//
// Единственная реализация — MockGenerator: детерминированная заглушка,
// возвращающая placeholder-контент без обращения к внешним провайдерам.
// Воркеры зависят только от интерфейса, подключение реального провайдера
// не затрагивает остальной код.
package genai
