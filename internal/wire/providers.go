// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"fmt"
	"time"

	"prompt-deck-api/internal/application/deck"
	"prompt-deck-api/internal/application/identity"
	"prompt-deck-api/internal/application/workspace"
	"prompt-deck-api/internal/config"
	"prompt-deck-api/internal/domain/repository"
	"prompt-deck-api/internal/infrastructure/imagegen"
	"prompt-deck-api/internal/infrastructure/persistence/memory"
	"prompt-deck-api/internal/infrastructure/persistence/redis"
	"prompt-deck-api/internal/interfaces/http/handler"
	"prompt-deck-api/internal/interfaces/http/middleware"
	"prompt-deck-api/internal/interfaces/http/router"
	"prompt-deck-api/internal/workflow/chain"
	workflowport "prompt-deck-api/internal/workflow/port"
	workflowprompt "prompt-deck-api/internal/workflow/prompt"
	"prompt-deck-api/pkg/logger"
)

const imageCachePrefix = "deck:image:"

// App 应用根对象
type App struct {
	Router     *router.Router
	Workspaces *workspace.Registry
}

// ProvideRedisClient 提供 Redis 客户端，未启用时返回 nil
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRateLimiter Redis 不可用时返回 nil，中间件随之放行
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideIdentityRepository 按配置选择登记表后端
func ProvideIdentityRepository(cfg *config.Config, client *redis.Client) (repository.IdentityRepository, error) {
	switch cfg.Identity.Backend {
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("identity backend redis requires cache.redis.enabled")
		}
		return redis.NewIdentityRepository(client, cfg.Identity.KeyPrefix), nil
	case "", "memory":
		return memory.NewIdentityRepository(), nil
	default:
		return nil, fmt.Errorf("unknown identity backend: %s", cfg.Identity.Backend)
	}
}

// ProvideIdentityService 提供身份登记服务
func ProvideIdentityService(cfg *config.Config, repo repository.IdentityRepository) *identity.Service {
	return identity.NewService(repo, cfg.Identity.AddressSuffix, cfg.Identity.BcryptCost)
}

// ProvideDeckSkeletonChain 提供骨架生成链
func ProvideDeckSkeletonChain(factory workflowport.ChatModelFactory) *chain.DeckSkeletonChain {
	return chain.NewDeckSkeletonChain(factory, workflowprompt.NewRegistry())
}

// ProvideContentGenerator 提供结构化内容生成器
func ProvideContentGenerator(cfg *config.Config, c *chain.DeckSkeletonChain) deck.ContentGenerator {
	return deck.NewSkeletonGenerator(c, cfg.LLM.DefaultProvider, cfg.Generation.ContentTimeout)
}

// ProvideImageSynthesizer 提供带兜底的图片合成器，Redis 可用时启用缓存
func ProvideImageSynthesizer(cfg *config.Config, client *redis.Client) deck.ImageSynthesizer {
	opts := []deck.SynthesizerOption{deck.WithTimeout(cfg.Generation.ImageTimeout)}
	if client != nil && cfg.Image.CacheTTL > 0 {
		opts = append(opts, deck.WithCache(redis.NewCache(client, imageCachePrefix), cfg.Image.CacheTTL))
	}
	return deck.NewFallbackSynthesizer(imagegen.NewClient(&cfg.Image), cfg.Image.FallbackURL, opts...)
}

// ProvideOrchestrator 提供生成编排器
func ProvideOrchestrator(cfg *config.Config, content deck.ContentGenerator, images deck.ImageSynthesizer) *deck.Orchestrator {
	return deck.NewOrchestrator(content, images, deck.Limits{
		MinSlides: cfg.Generation.MinSlides,
		MaxSlides: cfg.Generation.MaxSlides,
	})
}

// ProvideWorkspaceRegistry 提供工作区注册表并启动空闲清理
func ProvideWorkspaceRegistry(ctx context.Context, cfg *config.Config, orchestrator *deck.Orchestrator) (*workspace.Registry, func()) {
	registry := workspace.NewRegistry(ctx, workspace.Deps{
		Generator: orchestrator,
		Limits: deck.Limits{
			MinSlides: cfg.Generation.MinSlides,
			MaxSlides: cfg.Generation.MaxSlides,
		},
		FreeMaxSlides: cfg.Generation.FreeMaxSlides,
	}, workspace.Options{
		IdleTTL:         cfg.Workspace.IdleTTL,
		JanitorInterval: cfg.Workspace.JanitorInterval,
		MaxWorkspaces:   cfg.Workspace.MaxWorkspaces,
	})

	janitorCtx, stop := context.WithCancel(ctx)
	go registry.Run(janitorCtx)

	cleanup := func() {
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := registry.Shutdown(shutdownCtx); err != nil {
			logger.Warn(ctx, "workspace shutdown incomplete", "error", err.Error())
		}
	}
	return registry, cleanup
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, client *redis.Client, svc *identity.Service) *handler.HealthHandler {
	checks := map[string]handler.Pinger{
		"identity": handler.PingFunc(svc.Ping),
	}
	if client != nil {
		checks["redis"] = client
	}
	return handler.NewHealthHandler(cfg.App.Version, checks)
}
