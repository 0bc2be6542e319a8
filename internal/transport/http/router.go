package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/savina-m/comments-engine/internal/service"
	"github.com/savina-m/comments-engine/internal/transport/http/handlers"
	"github.com/savina-m/comments-engine/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger    *slog.Logger
	Timeout   time.Duration
	JWTSecret string
	BasePath  string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Зависимости хендлеров.
	h := handlers.New(svc)

	// Регистрация маршрутов.
	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, opts.JWTSecret)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, opts.JWTSecret)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
// Чтение дерева публично; всё, что меняет состояние или персонально
// (уведомления), требует Bearer-токен.
func registerRoutes(r chi.Router, h *handlers.Handlers, jwtSecret string) {
	// публичное чтение
	r.Get("/comments", h.ListTopLevel)
	r.Get("/comments/{id}/replies", h.ListReplies)

	// защищённые операции
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.AuthBearer(jwtSecret))

		pr.Post("/comments", h.CreateComment)
		pr.Patch("/comments/{id}", h.UpdateComment)
		pr.Delete("/comments/{id}", h.DeleteComment)
		pr.Post("/comments/{id}/restore", h.RestoreComment)

		pr.Get("/notifications", h.ListNotifications)
		pr.Patch("/notifications/{id}/read", h.MarkNotificationRead)
	})
}
