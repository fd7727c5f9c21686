package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chanreadmin/billingbackend/internal/logic"
	"github.com/chanreadmin/billingbackend/internal/provider"
)

// releaseScript deletes the lock key only when the stored token is ours, so a
// pass that outlived its TTL cannot release a lock some other pass now holds.
const releaseScript = `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`

// RedisRepairGuard is a distributed single-flight lock over repair scopes.
// One key per scope, SET NX with a TTL; the TTL bounds how long a crashed
// pass can block the next one.
type RedisRepairGuard struct {
	redisClient *redis.Client
	namespace   provider.RedisNamespace
	ttl         time.Duration
	script      *redis.Script
	tokens      map[string]string
	logger      *zap.Logger
}

// NewRedisRepairGuard creates a new RedisRepairGuard. A guard instance is
// owned by one repair pass at a time and is not safe for concurrent Acquire
// calls on the same scope.
func NewRedisRepairGuard(redisClient *redis.Client, ns provider.RedisNamespace, ttl time.Duration, logger *zap.Logger) *RedisRepairGuard {
	return &RedisRepairGuard{
		redisClient: redisClient,
		namespace:   ns,
		ttl:         ttl,
		script:      redis.NewScript(releaseScript),
		tokens:      make(map[string]string),
		logger:      logger.Named("RepairGuard"),
	}
}

func (g *RedisRepairGuard) key(scope string) string {
	return fmt.Sprintf("%srepair_lock:%s", g.namespace, scope)
}

// Acquire takes the scope's lock or fails fast with ErrRepairInProgress when
// another pass holds it. It never waits.
func (g *RedisRepairGuard) Acquire(ctx context.Context, scope string) error {
	token := uuid.NewString()
	ok, err := g.redisClient.SetNX(ctx, g.key(scope), token, g.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire repair lock for scope %s: %w", scope, err)
	}
	if !ok {
		return fmt.Errorf("scope %s: %w", scope, logic.ErrRepairInProgress)
	}
	g.tokens[scope] = token
	g.logger.Debug("repair lock acquired", zap.String("scope", scope))
	return nil
}

// Release gives the scope's lock back if this guard still holds it.
func (g *RedisRepairGuard) Release(ctx context.Context, scope string) error {
	token, ok := g.tokens[scope]
	if !ok {
		return nil
	}
	delete(g.tokens, scope)

	deleted, err := g.script.Run(ctx, g.redisClient, []string{g.key(scope)}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release repair lock for scope %s: %w", scope, err)
	}
	if deleted == 0 {
		// The TTL expired and someone else may hold the scope now.
		g.logger.Warn("repair lock expired before release", zap.String("scope", scope))
	}
	return nil
}
