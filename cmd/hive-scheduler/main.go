// Hive Scheduler — периодический сканер отложенных действий кампаний.
//
// Scheduler:
//   - Раз в интервал выбирает pending-действия со scheduled_for <= now
//   - Атомарно захватывает каждое (pending → in-progress)
//   - Ставит задачу campaign.execute_action
//
// Среди экземпляров тикает только лидер: лидерство держится
// на advisory lock в Postgres, при падении лидера lock
// освобождается и его подхватывает другой экземпляр.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Hive/internal/mq"
	"github.com/shaiso/Hive/internal/repo"
	"github.com/shaiso/Hive/internal/scanner"
	"github.com/shaiso/Hive/internal/task"
	"github.com/shaiso/Hive/internal/telemetry"
)

const scanLockKey int64 = 815101

// poolSource адаптирует пул к scanner.ConnSource: лидерство должно
// держаться на выделенном соединении, а не на случайном из пула.
type poolSource struct {
	pool *pgxpool.Pool
}

func (s poolSource) Acquire(ctx context.Context) (scanner.LockConn, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting hive-scheduler")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	actionRepo := repo.NewActionRepo(pool)

	// RabbitMQ
	mqConn, err := mq.NewConnection(mq.URL(), logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	dispatcher := task.NewDispatcher(mq.NewPublisher(mqConn, logger), logger)

	scan := scanner.New(scanner.Config{
		Actions:    actionRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	interval := 30 * time.Second
	if v := os.Getenv("SCAN_INTERVAL"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			interval = time.Duration(sec) * time.Second
		}
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// scanner loop
	go func() {
		tk := time.NewTicker(interval)
		defer tk.Stop()

		leader := scanner.NewLeaderLock(poolSource{pool}, scanLockKey, logger)
		defer leader.Release()

		for {
			select {
			case <-tk.C:
				if !leader.Held(ctx) {
					// не лидер — пропускаем тик
					continue
				}

				if err := scan.Tick(ctx); err != nil {
					logger.Error("scan tick", "error", err)
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	port := ":8081"
	if v := os.Getenv("SCHED_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("hive-scheduler stopped")
}
