package presence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// rosterKey is the redis hash of online support agents (id -> name).
const rosterKey = "supportline:support:online"

// Agent is one online support agent.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Roster tracks which support agents are connected, backed by redis so
// the dashboard survives server restarts. It deliberately does not
// carry any room state; routing stays in-process.
type Roster struct {
	client *redis.Client
	log    *zerolog.Logger
}

// NewRoster connects to redis. Connectivity problems are logged, not
// fatal; the roster degrades to failing writes that the hub ignores.
func NewRoster(addr, password string, db int, logger *zerolog.Logger) *Roster {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", addr).Msg("unable to reach redis")
	} else {
		logger.Info().Str("addr", addr).Msg("connected to redis")
	}

	return &Roster{client: client, log: logger}
}

// SupportOnline records an agent coming on duty.
func (r *Roster) SupportOnline(ctx context.Context, id, name string) error {
	if err := r.client.HSet(ctx, rosterKey, id, name).Err(); err != nil {
		return fmt.Errorf("roster hset: %w", err)
	}
	return nil
}

// SupportOffline records an agent going off duty.
func (r *Roster) SupportOffline(ctx context.Context, id string) error {
	if err := r.client.HDel(ctx, rosterKey, id).Err(); err != nil {
		return fmt.Errorf("roster hdel: %w", err)
	}
	return nil
}

// Online returns all agents currently on duty.
func (r *Roster) Online(ctx context.Context) ([]Agent, error) {
	entries, err := r.client.HGetAll(ctx, rosterKey).Result()
	if err != nil {
		return nil, fmt.Errorf("roster hgetall: %w", err)
	}

	agents := make([]Agent, 0, len(entries))
	for id, name := range entries {
		agents = append(agents, Agent{ID: id, Name: name})
	}
	return agents, nil
}

// Close closes the redis client.
func (r *Roster) Close() error {
	return r.client.Close()
}
