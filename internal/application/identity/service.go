// Package identity 提供本地身份登记与会话
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prompt-deck-api/internal/domain/entity"
	"prompt-deck-api/internal/domain/repository"
	"prompt-deck-api/pkg/logger"
	"prompt-deck-api/pkg/metrics"
)

// DefaultAddressSuffix 默认地址后缀
const DefaultAddressSuffix = "pragyanai.com"

// Service 身份登记服务
type Service struct {
	repo       repository.IdentityRepository
	suffix     string
	bcryptCost int
}

// NewService 创建身份登记服务
func NewService(repo repository.IdentityRepository, suffix string, bcryptCost int) *Service {
	if strings.TrimSpace(suffix) == "" {
		suffix = DefaultAddressSuffix
	}
	return &Service{repo: repo, suffix: suffix, bcryptCost: bcryptCost}
}

// Register 登记新身份，三个字段均必填
// 登记不会自动建立会话
func (s *Service) Register(ctx context.Context, username, password, dob string) (*entity.Identity, error) {
	normalized := entity.NormalizeUsername(username)
	switch {
	case normalized == "":
		return nil, fmt.Errorf("%w: username is required", entity.ErrInvalidRequest)
	case password == "":
		return nil, fmt.Errorf("%w: password is required", entity.ErrInvalidRequest)
	case strings.TrimSpace(dob) == "":
		return nil, fmt.Errorf("%w: date of birth is required", entity.ErrInvalidRequest)
	}

	id := entity.NewIdentity(normalized, s.suffix, strings.TrimSpace(dob))
	if err := id.SetPassword(password, s.bcryptCost); err != nil {
		metrics.IdentityOperationsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.Create(ctx, id); err != nil {
		if errors.Is(err, entity.ErrDuplicateUsername) {
			metrics.IdentityOperationsTotal.WithLabelValues("register", "duplicate").Inc()
			return nil, err
		}
		metrics.IdentityOperationsTotal.WithLabelValues("register", "error").Inc()
		logger.Error(ctx, "failed to register identity", err, "username", normalized)
		return nil, err
	}

	metrics.IdentityOperationsTotal.WithLabelValues("register", "success").Inc()
	logger.Info(ctx, "identity registered", "address", id.Address)
	return id, nil
}

// Authenticate 校验用户名密码
// 用户不存在与密码错误均返回 entity.ErrInvalidCredentials
func (s *Service) Authenticate(ctx context.Context, username, password string) (*entity.Identity, error) {
	normalized := entity.NormalizeUsername(username)
	if normalized == "" || password == "" {
		metrics.IdentityOperationsTotal.WithLabelValues("authenticate", "rejected").Inc()
		return nil, entity.ErrInvalidCredentials
	}

	id, err := s.repo.GetByUsername(ctx, normalized)
	if err != nil {
		if errors.Is(err, entity.ErrIdentityNotFound) {
			metrics.IdentityOperationsTotal.WithLabelValues("authenticate", "rejected").Inc()
			return nil, entity.ErrInvalidCredentials
		}
		metrics.IdentityOperationsTotal.WithLabelValues("authenticate", "error").Inc()
		logger.Error(ctx, "failed to load identity", err, "username", normalized)
		return nil, err
	}
	if !id.CheckPassword(password) {
		metrics.IdentityOperationsTotal.WithLabelValues("authenticate", "rejected").Inc()
		return nil, entity.ErrInvalidCredentials
	}

	metrics.IdentityOperationsTotal.WithLabelValues("authenticate", "success").Inc()
	return id, nil
}

// Ping 检查登记表后端
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
