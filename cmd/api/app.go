package main

import (
	"context"
	"net/http"
	"time"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/httpx"
	"bookreview/internal/platform/postgres"
	"bookreview/internal/rating"
	"bookreview/internal/review"
	"bookreview/internal/user"

	"go.uber.org/zap"
)

type handlers struct {
	users   *user.HTTPHandler
	auth    *auth.HTTPHandler
	books   *book.HTTPHandler
	reviews *review.HTTPHandler
	ratings *rating.HTTPHandler
}

type app struct {
	handler http.Handler
	limiter *httpx.RateLimiter
	ratings *rating.Aggregator
}

func newApp(cfg *config.Config, pg *postgres.DB, log *zap.Logger) *app {
	bookRepo := book.NewPostgresRepo(pg, cfg.DBTimeout)
	aggregator := rating.NewAggregator(rating.NewPostgresRepo(pg, cfg.DBTimeout), log)
	reviewService := review.NewService(review.NewPostgresRepo(pg, cfg.DBTimeout), bookRepo, aggregator, pg)
	bookService := book.NewService(bookRepo, reviewService, pg)
	userService := user.NewService(user.NewPostgresRepo(pg, cfg.DBTimeout))
	authService := auth.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, userService)

	h := handlers{
		users:   user.NewHTTPHandler(userService),
		auth:    auth.NewHTTPHandler(authService),
		books:   book.NewHTTPHandler(bookService),
		reviews: review.NewHTTPHandler(reviewService),
		ratings: rating.NewHTTPHandler(aggregator),
	}

	ready := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return pg.Pool().Ping(ctx)
	}

	limiter := httpx.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies...)
	handler := httpx.Chain(newRouter(h, cfg.JWTSecret, ready),
		httpx.RequestIDMiddleware(log),
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.Env == "production"),
		httpx.CORSMiddleware(cfg.CORSOrigins),
		limiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)

	return &app{handler: handler, limiter: limiter, ratings: aggregator}
}

func newRouter(h handlers, jwtSecret string, ready func(context.Context) error) *http.ServeMux {
	router := http.NewServeMux()
	protected := httpx.AuthMiddleware(jwtSecret)
	authed := func(fn http.HandlerFunc) http.Handler { return protected(fn) }

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := ready(r.Context()); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("POST /v1/users/register", h.users.Register)
	router.HandleFunc("POST /v1/users/login", h.auth.Login)
	router.Handle("GET /v1/me", authed(h.users.Me))
	router.Handle("GET /v1/me/books", authed(h.books.ListMine))
	router.HandleFunc("GET /v1/users/{id}/reviews", h.reviews.ListByUser)
	router.HandleFunc("GET /v1/users/{id}/books", h.books.ListByOwner)

	router.HandleFunc("GET /v1/books", h.books.List)
	router.Handle("POST /v1/books", authed(h.books.Create))
	router.HandleFunc("GET /v1/books/{id}", h.books.Get)
	router.Handle("PUT /v1/books/{id}", authed(h.books.Update))
	router.Handle("DELETE /v1/books/{id}", authed(h.books.Delete))
	router.HandleFunc("GET /v1/books/{id}/reviews", h.reviews.ListByBook)
	router.HandleFunc("GET /v1/books/{id}/rating", h.ratings.Get)

	router.Handle("POST /v1/reviews", authed(h.reviews.Create))
	router.HandleFunc("GET /v1/reviews/{id}", h.reviews.Get)
	router.Handle("PUT /v1/reviews/{id}", authed(h.reviews.Update))
	router.Handle("DELETE /v1/reviews/{id}", authed(h.reviews.Delete))

	return router
}
