// PaiChe 乘务排班引擎服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/paiche/paiche/internal/config"
	"github.com/paiche/paiche/internal/database"
	"github.com/paiche/paiche/internal/handler"
	"github.com/paiche/paiche/internal/metrics"
	"github.com/paiche/paiche/internal/repository"
	"github.com/paiche/paiche/internal/rulecache"
	"github.com/paiche/paiche/pkg/engine"
	"github.com/paiche/paiche/pkg/engine/constraint"
	"github.com/paiche/paiche/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	// 打印版本信息
	fmt.Printf("PaiChe 乘务排班引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// 数据库连接：失败且未标记必需时降级为独立模式，
	// 输入全部来自请求体，不做持久化
	var db *database.DB
	if d, err := database.New(&cfg.Database); err != nil {
		if cfg.Database.Required {
			logger.Error().Err(err).Msg("数据库连接失败")
			os.Exit(1)
		}
		logger.Warn().Err(err).Msg("数据库不可用，以独立模式启动")
	} else {
		db = d
		defer db.Close()
	}

	registry := constraint.NewRegistry()
	engineOpts := engine.Options{
		Rotation:    handler.DefaultRotation(cfg.Engine.OddDayTeam, cfg.Engine.EvenDayTeam),
		SettleDelay: cfg.Engine.SettleDelay,
	}

	shiftHandler := handler.NewShiftHandler(registry, engineOpts, cfg.Engine.DefaultTimeout)
	var ruleHandler *handler.RuleHandler

	if db != nil {
		ruleRepo := repository.NewRuleRepository(db)
		cache := rulecache.New(ruleRepo, cfg.Rules.CacheTTL)
		shiftRepo := repository.NewShiftRepository(db)
		historyRepo := repository.NewHistoryRepository(db)
		vacationRepo := repository.NewVacationRepository(db)

		shiftHandler.WithRepositories(cache, shiftRepo, historyRepo, vacationRepo)
		ruleHandler = handler.NewRuleHandler(registry, ruleRepo, cache)
	} else {
		ruleHandler = handler.NewRuleHandler(registry, nil, nil)
	}

	// 创建 HTTP 服务器
	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		dbStatus := "standalone"
		if db != nil {
			dbStatus = "ok"
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Health(ctx); err != nil {
				dbStatus = "down"
			}
			metrics.SetDBConnections(db.Stats().OpenConnections, db.Stats().Idle, db.Stats().InUse)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"%s","service":"paiche","database":"%s"}`, status, dbStatus)
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "PaiChe 乘务排班引擎 API v1",
			"endpoints": {
				"shifts": {
					"generate": "POST /api/v1/shifts/generate",
					"validate": "POST /api/v1/shifts/validate",
					"stats": "POST /api/v1/shifts/stats"
				},
				"rules": {
					"library": "GET /api/v1/rules/library",
					"list": "GET /api/v1/rules",
					"create": "POST /api/v1/rules",
					"detail": "GET/PUT/DELETE /api/v1/rules/{id}"
				}
			}
		}`))
	})

	// 排班生成 API
	mux.HandleFunc("/api/v1/shifts/generate", shiftHandler.Generate)

	// 排班验证 API
	mux.HandleFunc("/api/v1/shifts/validate", shiftHandler.Validate)

	// 排班统计 API - 负载与公平性分析
	mux.HandleFunc("/api/v1/shifts/stats", shiftHandler.Stats)

	// 规则定义库 API - 返回引擎支持的所有规则类型及参数定义
	mux.HandleFunc("/api/v1/rules/library", ruleHandler.Library)

	// 规则管理 API
	mux.HandleFunc("/api/v1/rules", ruleHandler.Collection)
	mux.HandleFunc("/api/v1/rules/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/rules/library" {
			ruleHandler.Library(w, r)
			return
		}
		ruleHandler.Item(w, r)
	})

	// ========================================
	// 监控端点
	// ========================================

	// Prometheus 指标端点（可通过 METRICS_ENABLED 关闭）
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// ========================================
	// 中间件
	// ========================================

	// 中间件执行顺序：requestID -> rateLimit -> cors -> logging -> handler
	limiter := NewRateLimiter(float64(cfg.API.RateLimit))
	chain := requestIDMiddleware(rateLimitMiddleware(limiter, corsMiddleware(cfg.API.CORS, loggingMiddleware(mux))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      chain,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("env", cfg.App.Env).
			Bool("standalone", db == nil).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// requestIDMiddleware 请求ID追踪中间件
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 尝试从请求头获取 Request ID，没有则生成新的
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// 设置响应头
		w.Header().Set("X-Request-ID", requestID)

		// 将 Request ID 存储到 context 中
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware 日志中间件
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 获取 Request ID
		requestID, _ := r.Context().Value("request_id").(string)

		// 包装ResponseWriter以捕获状态码
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("请求处理")

		// 记录Prometheus指标
		metrics.RecordRequestMetrics(r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

// responseWriter 包装ResponseWriter以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RateLimiter 简单的令牌桶限流器
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // 每秒添加的令牌数
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter 创建限流器
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // 允许突发流量
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// rateLimitMiddleware 限流中间件，速率来自 API_RATE_LIMIT
func rateLimitMiddleware(limiter *RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "请求过于频繁，请稍后重试",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware CORS中间件，放行来源取自 API_CORS_ORIGINS
func corsMiddleware(cors config.CORSConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cors.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		if origin := allowedOrigin(cors.Origins, r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Set("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowedOrigin 返回应写入响应头的来源，不放行时返回空串
func allowedOrigin(origins []string, requestOrigin string) string {
	for _, o := range origins {
		if o == "*" {
			return "*"
		}
		if requestOrigin != "" && o == requestOrigin {
			return requestOrigin
		}
	}
	return ""
}
