// Package settings persists the single global settings row and pushes
// change events to connected clients. Writes go to Postgres first; only
// after the row commits is the update published on a Redis channel,
// where each API instance relays it to its SSE subscribers.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"techvisit-backend/internal/models"
)

const settingsKey = "global_config"

// Store reads and writes the global settings row and fans out updates.
type Store struct {
	pool    *pgxpool.Pool
	rdb     *redis.Client
	channel string
}

// New connects to Redis and returns a Store. Redis is optional: with an
// empty addr the store still persists settings, it just cannot push
// updates to other instances.
func New(pool *pgxpool.Pool, addr, password string, db int, channel string) (*Store, error) {
	s := &Store{pool: pool, channel: channel}

	if addr == "" {
		log.Printf("[settings] REDIS_ADDR not set, realtime settings push disabled")
		return s, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	s.rdb = rdb
	return s, nil
}

// Close releases the Redis connection.
func (s *Store) Close() {
	if s.rdb != nil {
		s.rdb.Close()
	}
}

// Get returns the current settings, or defaults when no row exists yet.
func (s *Store) Get(ctx context.Context) (*models.Settings, error) {
	var (
		out       models.Settings
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT logo_data, logo_size, COALESCE(notify_phone, ''), updated_at
		 FROM settings WHERE key = $1`, settingsKey,
	).Scan(&out.LogoData, &out.LogoSize, &out.NotifyPhone, &updatedAt)

	if err == pgx.ErrNoRows {
		return &models.Settings{LogoSize: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}

	out.UpdatedAt = updatedAt.Format(time.RFC3339)
	return &out, nil
}

// Update applies a partial write on top of the current row and upserts
// the result. The merged settings are published after the commit, so
// subscribers never observe a value that wasn't durably stored.
func (s *Store) Update(ctx context.Context, req *models.UpdateSettingsRequest) (*models.Settings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.LogoData != nil {
		current.LogoData = req.LogoData
	}
	if req.LogoSize != nil {
		current.LogoSize = *req.LogoSize
	}
	if req.NotifyPhone != nil {
		current.NotifyPhone = *req.NotifyPhone
	}

	now := time.Now()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO settings (key, logo_data, logo_size, notify_phone, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (key) DO UPDATE SET
		   logo_data = EXCLUDED.logo_data,
		   logo_size = EXCLUDED.logo_size,
		   notify_phone = EXCLUDED.notify_phone,
		   updated_at = EXCLUDED.updated_at`,
		settingsKey, current.LogoData, current.LogoSize, current.NotifyPhone, now)
	if err != nil {
		return nil, fmt.Errorf("upsert settings: %w", err)
	}
	current.UpdatedAt = now.Format(time.RFC3339)

	s.publish(ctx, current)
	return current, nil
}

// publish broadcasts the committed settings. Publish failures are logged,
// not returned: the write already succeeded and clients will catch up on
// their next GET.
func (s *Store) publish(ctx context.Context, settings *models.Settings) {
	if s.rdb == nil {
		return
	}

	update := models.SettingsUpdate{
		EventID:  uuid.NewString(),
		LogoData: settings.LogoData,
		LogoSize: settings.LogoSize,
	}
	payload, err := json.Marshal(update)
	if err != nil {
		log.Printf("[settings] marshal update: %v", err)
		return
	}

	if err := s.rdb.Publish(ctx, s.channel, payload).Err(); err != nil {
		log.Printf("[settings] publish update: %v", err)
	}
}

// Subscribe delivers settings updates until ctx is cancelled. Returns a
// nil channel when Redis is not configured.
func (s *Store) Subscribe(ctx context.Context) <-chan models.SettingsUpdate {
	if s.rdb == nil {
		return nil
	}

	sub := s.rdb.Subscribe(ctx, s.channel)
	out := make(chan models.SettingsUpdate, 8)

	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var update models.SettingsUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
					log.Printf("[settings] bad update payload: %v", err)
					continue
				}
				select {
				case out <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
