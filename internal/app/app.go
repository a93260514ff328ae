// Package app はアプリケーションの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/karteflow/internal/calendar"
	"github.com/hitoshi/karteflow/internal/config"
	"github.com/hitoshi/karteflow/internal/directory"
	"github.com/hitoshi/karteflow/internal/export"
	"github.com/hitoshi/karteflow/internal/handler"
	"github.com/hitoshi/karteflow/internal/logger"
	"github.com/hitoshi/karteflow/internal/metrics"
	"github.com/hitoshi/karteflow/internal/middleware"
	"github.com/hitoshi/karteflow/internal/repository"
	"github.com/hitoshi/karteflow/internal/security"
	"github.com/hitoshi/karteflow/internal/seed"
	"github.com/hitoshi/karteflow/internal/session"
	"github.com/hitoshi/karteflow/internal/workflow"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandSeed:
		return runSeed(cfg)
	default:
		return runServe(cfg)
	}
}

// openRepositories はSurrealDBに接続してリポジトリ一式を返す。
func openRepositories(ctx context.Context, cfg *config.Config) (
	*repository.SurrealDocumentRepo,
	*repository.SurrealPatientRepo,
	*repository.SurrealAppointmentRepo,
	error,
) {
	db, err := repository.OpenSurreal(ctx,
		cfg.SurrealURL, cfg.SurrealNS, cfg.SurrealDB,
		cfg.SurrealUser, cfg.SurrealPass,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	slog.Info("database connection established")

	return repository.NewSurrealDocumentRepo(db),
		repository.NewSurrealPatientRepo(db),
		repository.NewSurrealAppointmentRepo(db),
		nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer connectCancel()

	// 1. リポジトリの初期化
	docRepo, patientRepo, apptRepo, err := openRepositories(connectCtx, cfg)
	if err != nil {
		return err
	}

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. ドメインサービスの初期化
	directoryService := directory.NewService(patientRepo)
	calendarService := calendar.NewService(apptRepo, directoryService)

	sanitizer := security.NewContentSanitizer()
	renderer := export.NewRenderer(cfg.HospitalName, cfg.HospitalAddress)
	workflowService := workflow.NewService(docRepo, directoryService, sanitizer, renderer, collector)

	sessionManager := session.NewManager()

	// 4. 初回スナップショット読込。失敗しても起動は継続し、
	//    空のスナップショットから定期再読込で回復する。
	refreshers := []handler.Refresher{directoryService, calendarService, workflowService}
	refreshAll(connectCtx, refreshers, collector)

	// 5. ルーターの構築
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.DocCreateRate = rate.Limit(float64(cfg.RateLimitDocCreate) / 60.0)
	rateLimiterCfg.DocCreateBurst = cfg.RateLimitDocCreate

	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		SessionFinder:     sessionManager,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),
		HTTPMetrics:       collector,

		SessionManager: sessionManager,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		DirectoryService: directoryService,
		CalendarService:  calendarService,
		WorkflowService:  workflowService,

		Refreshers: refreshers,
	}

	router := handler.NewRouter(deps)

	// /metrics はセッション不要のためルーターの外に配置する
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	mux.Handle("/", router)

	// 6. 定期スナップショット再読込
	refreshCtx, refreshCancel := context.WithCancel(context.Background())
	defer refreshCancel()
	go refreshLoop(refreshCtx, refreshers, collector, cfg.RefreshInterval)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// refreshAll は全サービスのスナップショットを再読込する。
// 読み込みに失敗したサービスは直前のスナップショットを保持して継続する。
func refreshAll(ctx context.Context, refreshers []handler.Refresher, collector *metrics.Collector) {
	start := time.Now()
	for _, ref := range refreshers {
		if err := ref.Refresh(ctx); err != nil {
			slog.Warn("snapshot refresh failed", slog.String("error", err.Error()))
		}
	}
	collector.RecordRefreshLatency(time.Since(start))
}

// refreshLoop は設定された間隔でスナップショット再読込を繰り返す。
func refreshLoop(ctx context.Context, refreshers []handler.Refresher, collector *metrics.Collector, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refreshAll(ctx, refreshers, collector)
		}
	}
}

// runSeed はサンプルデータ投入を実行する。
func runSeed(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, patientRepo, apptRepo, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}

	seeder := seed.NewSeeder(patientRepo, apptRepo)
	if err := seeder.Run(ctx); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	slog.Info("seed completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
