// Package cache puts a redis read-through cache in front of a UserRepository.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/entity"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/repository"
	vo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/valueobject"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/pkg/helpers"
)

const userKeyPrefix = "user:record:"

// RecordStore is the key/value side of the cache.
type RecordStore interface {
	Get(ctx context.Context, key string) (entity.Record, bool, error)
	Set(ctx context.Context, key string, rec entity.Record, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisStore keeps records as JSON strings.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Get(ctx context.Context, key string) (entity.Record, bool, error) {
	var rec entity.Record
	ok, err := helpers.RedisGetJSON(ctx, s.rdb, key, &rec)
	return rec, ok, err
}

func (s *RedisStore) Set(ctx context.Context, key string, rec entity.Record, ttl time.Duration) error {
	return helpers.RedisSetJSON(ctx, s.rdb, key, rec, ttl)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return helpers.RedisDel(ctx, s.rdb, key)
}

// UserRepository caches FindByID. Cache errors are logged and the call falls
// through to the wrapped repository.
//
// Writes bump a per-id generation; a read-through only keeps what it cached
// if no write for that id happened while it was loading. Writers in other
// processes are only bounded by the TTL.
type UserRepository struct {
	repository.UserRepository
	store RecordStore
	ttl   time.Duration
	log   logrus.FieldLogger

	mu  sync.Mutex
	gen map[string]uint64
}

func NewUserRepository(next repository.UserRepository, store RecordStore, ttl time.Duration, log logrus.FieldLogger) *UserRepository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &UserRepository{
		UserRepository: next,
		store:          store,
		ttl:            ttl,
		log:            log.WithField("component", "user_cache"),
		gen:            make(map[string]uint64),
	}
}

func key(id string) string { return userKeyPrefix + id }

func (r *UserRepository) FindByID(ctx context.Context, id vo.UserID) (*entity.User, error) {
	rec, ok, err := r.store.Get(ctx, key(id.Value()))
	if err != nil {
		r.log.WithError(err).WithField("user_id", id.Value()).Warn("cache read failed")
	}
	if ok {
		if u, err := entity.Reconstitute(rec); err == nil {
			return u, nil
		}
		r.forget(ctx, id.Value())
	}

	before := r.generation(id.Value())
	u, err := r.UserRepository.FindByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}
	if r.generation(id.Value()) != before {
		return u, nil
	}
	r.remember(ctx, u)
	if r.generation(id.Value()) != before {
		// a write raced the cache fill
		r.forget(ctx, id.Value())
	}
	return u, nil
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	r.bump(u.ID().Value())
	saved, err := r.UserRepository.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	r.remember(ctx, saved)
	return saved, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) (*entity.User, error) {
	r.bump(u.ID().Value())
	updated, err := r.UserRepository.Update(ctx, u)
	r.forget(ctx, u.ID().Value())
	return updated, err
}

func (r *UserRepository) Delete(ctx context.Context, id vo.UserID) error {
	r.bump(id.Value())
	err := r.UserRepository.Delete(ctx, id)
	r.forget(ctx, id.Value())
	return err
}

func (r *UserRepository) generation(id string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen[id]
}

func (r *UserRepository) bump(id string) {
	r.mu.Lock()
	r.gen[id]++
	r.mu.Unlock()
}

func (r *UserRepository) remember(ctx context.Context, u *entity.User) {
	if err := r.store.Set(ctx, key(u.ID().Value()), u.ToPersistence(), r.ttl); err != nil {
		r.log.WithError(err).WithField("user_id", u.ID().Value()).Warn("cache write failed")
	}
}

func (r *UserRepository) forget(ctx context.Context, id string) {
	if err := r.store.Delete(ctx, key(id)); err != nil {
		r.log.WithError(err).WithField("user_id", id).Warn("cache invalidate failed")
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)
