// Package scanner реализует сканер запланированных действий кампаний.
//
// Scanner периодически находит pending-действия с истекшим
// scheduled_for, атомарно захватывает их (pending → in-progress)
// и отправляет задачу campaign.execute_action.
//
// Порядок строго claim → dispatch: действие переходит в in-progress
// до публикации задачи, поэтому конкурирующий экземпляр сканера не
// отправит его повторно — его claim проиграет гонку CAS и будет
// пропущен как штатная ситуация.
//
// Использование:
//
//	scan := scanner.New(scanner.Config{
//	    Actions:    actionRepo,
//	    Dispatcher: dispatcher,
//	    Logger:     logger,
//	})
//
//	// Вызывается каждый тик (обычно раз в 30 секунд)
//	if err := scan.Tick(ctx); err != nil {
//	    logger.Error("scanner tick failed", "error", err)
//	}
//
// Leader Election:
//
// Scanner не реализует leader election самостоятельно.
// Это делается в main.go через pg_try_advisory_lock.
// Метод Tick() вызывается только лидером.
package scanner
