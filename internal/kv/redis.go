package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound возвращается, когда ключ отсутствует или истёк.
var ErrNotFound = errors.New("kv: ключ не найден")

// Store описывает минимальный контракт key-value хранилища с TTL,
// на котором живёт всё состояние движка верификации и refresh токенов.
// Клиент передаётся явно при создании сервисов, без глобального синглтона.
type Store interface {
	// Get возвращает значение ключа или ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// SetEX записывает значение с временем жизни (SET key value EX ttl).
	SetEX(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX записывает значение только если ключ отсутствует (SET ... NX).
	// Возвращает true, если запись произошла.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Del удаляет ключи. Отсутствующий ключ не является ошибкой.
	Del(ctx context.Context, keys ...string) error
	// TTL возвращает оставшееся время жизни ключа или ErrNotFound.
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// RedisStore реализует Store поверх Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore подключается к Redis и проверяет соединение.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("kv: не удалось подключиться к redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close закрывает соединение с Redis.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kv: get %s: %w", key, err)
	}
	return val, nil
}

func (s *RedisStore) SetEX(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("kv: setnx %s: %w", key, err)
	}
	return ok, nil
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("kv: del: %w", err)
	}
	return nil
}

func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("kv: ttl %s: %w", key, err)
	}
	// Redis возвращает отрицательное значение для отсутствующего ключа
	// и ключа без TTL; все наши ключи создаются с TTL.
	if ttl < 0 {
		return 0, ErrNotFound
	}
	return ttl, nil
}
