//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"prompt-deck-api/internal/config"
	"prompt-deck-api/internal/infrastructure/llm"
	"prompt-deck-api/internal/interfaces/http/handler"
	"prompt-deck-api/internal/interfaces/http/router"
	workflowport "prompt-deck-api/internal/workflow/port"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		RedisSet,
		IdentitySet,
		DeckSet,
		RouterSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// RedisSet Redis 提供者集合，未启用时提供 nil
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	ProvideRateLimiter,
)

// IdentitySet 身份登记提供者集合
var IdentitySet = wire.NewSet(
	ProvideIdentityRepository,
	ProvideIdentityService,
)

// DeckSet 生成链路提供者集合
var DeckSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	ProvideDeckSkeletonChain,
	ProvideContentGenerator,
	ProvideImageSynthesizer,
	ProvideOrchestrator,
	ProvideWorkspaceRegistry,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewWorkspaceHandler,
	handler.NewIdentityHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
