package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quickchat/internal/relay"
)

const (
	presenceIdentityPrefix = "presence:identity:" // identity -> session id
	presenceSessionPrefix  = "presence:session:"  // session id -> identity
)

// redisPresenceStore 是 relay.PresenceStore 接口的 Redis 实现，供需要跨进程
// 共享在线状态的部署替换默认的内存实现。单进程部署不需要它。
type redisPresenceStore struct {
	client *redis.Client
}

// NewRedisPresenceStore 创建一个新的基于 Redis 的 PresenceStore。
func NewRedisPresenceStore(client *redis.Client) relay.PresenceStore {
	return &redisPresenceStore{client: client}
}

func (r *redisPresenceStore) Set(ctx context.Context, identity, sessionID string) error {
	// 与内存实现保持一致：覆盖旧会话时清掉它的反向映射，
	// 避免旧连接断开时误发下线事件。
	old, err := r.client.Get(ctx, presenceIdentityPrefix+identity).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("读取身份 %s 的旧会话失败: %w", identity, err)
	}

	pipe := r.client.TxPipeline()
	if old != "" && old != sessionID {
		pipe.Del(ctx, presenceSessionPrefix+old)
	}
	pipe.Set(ctx, presenceIdentityPrefix+identity, sessionID, 0)
	pipe.Set(ctx, presenceSessionPrefix+sessionID, identity, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("写入身份 %s 的在线状态失败: %w", identity, err)
	}
	return nil
}

func (r *redisPresenceStore) SessionFor(ctx context.Context, identity string) (string, error) {
	sid, err := r.client.Get(ctx, presenceIdentityPrefix+identity).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("读取身份 %s 的会话失败: %w", identity, err)
	}
	return sid, nil
}

func (r *redisPresenceStore) IdentityFor(ctx context.Context, sessionID string) (string, error) {
	identity, err := r.client.Get(ctx, presenceSessionPrefix+sessionID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("读取会话 %s 的身份失败: %w", sessionID, err)
	}
	return identity, nil
}

func (r *redisPresenceStore) RemoveBySession(ctx context.Context, sessionID string) (string, error) {
	identity, err := r.client.Get(ctx, presenceSessionPrefix+sessionID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("读取会话 %s 的身份失败: %w", sessionID, err)
	}

	// 只有正向映射仍指向本会话时才清除它，身份可能已在新会话上重新上线。
	owner, err := r.client.Get(ctx, presenceIdentityPrefix+identity).Result()
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("读取身份 %s 的会话失败: %w", identity, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, presenceSessionPrefix+sessionID)
	if owner == sessionID {
		pipe.Del(ctx, presenceIdentityPrefix+identity)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("清理会话 %s 的在线状态失败: %w", sessionID, err)
	}
	return identity, nil
}
