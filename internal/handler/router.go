package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/karteflow/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 任意の横断要素。nilの場合は適用しない。
	Logger      *slog.Logger
	HTTPMetrics middleware.HTTPStatusRecorder

	// 認証
	SessionManager SessionManagerInterface
	AuthConfig     AuthHandlerConfig

	// 患者名簿
	DirectoryService DirectoryServiceInterface

	// 予約カレンダー
	CalendarService CalendarServiceInterface

	// 文書ワークフロー
	WorkflowService WorkflowServiceInterface

	// 再読込対象サービス
	Refreshers []Refresher
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Session → RateLimit(General)
//
// 認証ルート（/auth/*）とヘルスチェックはセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.SessionManager, deps.AuthConfig)
	patientHandler := NewPatientHandler(deps.DirectoryService)
	scheduleHandler := NewScheduleHandler(deps.CalendarService)
	documentHandler := NewDocumentHandler(deps.WorkflowService)
	systemHandler := NewSystemHandler(deps.Refreshers...)

	// --- 認証不要のルート ---

	r.Get("/health", systemHandler.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 患者名簿
		r.Get("/api/patients", patientHandler.List)

		// 予約カレンダー
		r.Route("/api/schedule", func(r chi.Router) {
			r.Get("/", scheduleHandler.Day)
			r.Get("/shift", scheduleHandler.Shift)
		})

		// 文書ワークフロー
		r.Route("/api/documents", func(r chi.Router) {
			// 作成系には文書作成専用レート制限を追加
			r.With(deps.RateLimiter.DocumentCreationMiddleware()).Post("/", documentHandler.Create)
			r.With(deps.RateLimiter.DocumentCreationMiddleware()).Post("/complete", documentHandler.CompleteOnCreate)

			r.Get("/", documentHandler.List)
			r.Get("/mine", documentHandler.Mine)

			r.Route("/{id}", func(r chi.Router) {
				r.Post("/forward", documentHandler.Forward)
				r.Post("/sendback", documentHandler.SendBack)
				r.Post("/complete", documentHandler.Complete)
				r.Post("/export", documentHandler.Export)
			})
		})

		// スナップショット再読込
		r.Post("/api/refresh", systemHandler.Refresh)
	})

	return r
}
