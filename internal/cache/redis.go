// Package cache guarda resultados de búsqueda de talleres cercanos en Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"roadside-assist-service/internal/model"
)

const nearbyKeyPrefix = "nearby:"

type RedisNearbyCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisNearbyCache(client *redis.Client, ttl time.Duration) *RedisNearbyCache {
	return &RedisNearbyCache{client: client, ttl: ttl}
}

// Get devuelve (nil, false, nil) cuando la clave no existe.
func (r *RedisNearbyCache) Get(ctx context.Context, cell string) ([]model.Garage, bool, error) {
	raw, err := r.client.Get(ctx, nearbyKeyPrefix+cell).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var garages []model.Garage
	if err := json.Unmarshal(raw, &garages); err != nil {
		return nil, false, err
	}
	return garages, true, nil
}

func (r *RedisNearbyCache) Set(ctx context.Context, cell string, garages []model.Garage) error {
	raw, err := json.Marshal(garages)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, nearbyKeyPrefix+cell, raw, r.ttl).Err()
}

// Invalidate borra todas las entradas (después de un seed).
func (r *RedisNearbyCache) Invalidate(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, nearbyKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
