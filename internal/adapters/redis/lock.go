package redisad

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"hotel_catalog/internal/domain"
)

var _ domain.Locker = (*Locker)(nil)

// release deletes the key only while it still carries our token, so an
// expired lock taken over by another owner is left alone.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct{ c redis.UniversalClient }

func New(addr, pass string, db int) *Locker {
	return &Locker{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

// NewWithClient wraps an existing client, e.g. one pointed at miniredis.
func NewWithClient(c redis.UniversalClient) *Locker { return &Locker{c: c} }

func (l *Locker) Ping(ctx context.Context) error { return l.c.Ping(ctx).Err() }

func (l *Locker) Close() error { return l.c.Close() }

// TryLock takes key with SET NX PX. It returns domain.ErrLocked when the key
// is already held.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	token := uuid.NewString()
	ok, err := l.c.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrLocked
	}
	unlock := func(ctx context.Context) error {
		if err := release.Run(ctx, l.c, []string{key}, token).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("redis unlock %s: %w", key, err)
		}
		return nil
	}
	return unlock, nil
}
