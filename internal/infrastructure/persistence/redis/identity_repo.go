package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"prompt-deck-api/internal/domain/entity"
	"prompt-deck-api/internal/domain/repository"
)

// createIdentityScript 键不存在时写入整条记录，保证登记的原子性
var createIdentityScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

// IdentityRepository 基于 Redis Hash 的身份登记表，每个身份一个 Hash
type IdentityRepository struct {
	client *Client
	prefix string
}

var _ repository.IdentityRepository = (*IdentityRepository)(nil)

// NewIdentityRepository 创建身份登记表
func NewIdentityRepository(client *Client, prefix string) *IdentityRepository {
	return &IdentityRepository{client: client, prefix: prefix}
}

func (r *IdentityRepository) key(username string) string {
	return r.prefix + username
}

// Create 登记新身份
func (r *IdentityRepository) Create(ctx context.Context, identity *entity.Identity) error {
	ctx, span := tracer.Start(ctx, "identity.Create",
		trace.WithAttributes(attribute.String("identity.username", identity.Username)))
	defer span.End()

	created, err := createIdentityScript.Run(ctx, r.client.rdb, []string{r.key(identity.Username)},
		"username", identity.Username,
		"address", identity.Address,
		"password_hash", identity.PasswordHash,
		"dob", identity.DOB,
		"registered_at", identity.RegisteredAt.UTC().Format(time.RFC3339Nano),
	).Int()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("create identity: %w", err)
	}
	if created == 0 {
		return entity.ErrDuplicateUsername
	}
	return nil
}

// GetByUsername 根据规范化用户名获取身份
func (r *IdentityRepository) GetByUsername(ctx context.Context, username string) (*entity.Identity, error) {
	ctx, span := tracer.Start(ctx, "identity.GetByUsername",
		trace.WithAttributes(attribute.String("identity.username", username)))
	defer span.End()

	fields, err := r.client.rdb.HGetAll(ctx, r.key(username)).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get identity: %w", err)
	}
	if len(fields) == 0 {
		return nil, entity.ErrIdentityNotFound
	}

	registeredAt, err := time.Parse(time.RFC3339Nano, fields["registered_at"])
	if err != nil {
		return nil, fmt.Errorf("parse registered_at for %s: %w", username, err)
	}
	return &entity.Identity{
		Username:     fields["username"],
		Address:      fields["address"],
		PasswordHash: fields["password_hash"],
		DOB:          fields["dob"],
		RegisteredAt: registeredAt,
	}, nil
}

// Ping 检查后端可用性
func (r *IdentityRepository) Ping(ctx context.Context) error {
	return r.client.HealthCheck(ctx)
}
