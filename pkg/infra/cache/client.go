package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	SnapshotKeyPattern = "run:%s:snapshot"

	SnapshotTTLName = "snapshot"

	defaultLocalTTL = 5 * time.Minute
	writeTimeout    = 2 * time.Second
)

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	RedisClient() *redis.Client
	CreateTTLMap(name string, ttl time.Duration) *TTLMap
	GetTTLMap(name string) *TTLMap

	GetSnapshot(ctx context.Context, runID string) (*simulation.Snapshot, error)
	SaveSnapshot(ctx context.Context, snapshot simulation.Snapshot, expiration time.Duration) error
	ClearAllTTLMaps()
}

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	// TLSConfig enables TLS when set.
	TLSConfig *tls.Config
}

type client struct {
	redisClient *redis.Client
	ttlMaps     map[string]*TTLMap
}

func NewClient(config Config, logger *logrus.Logger) (Client, error) {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	}
	if config.TLSConfig != nil {
		options.TLSConfig = config.TLSConfig
	}
	redisClient := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"host":  config.Host,
			"port":  config.Port,
			"error": err.Error(),
		}).Error("failed to connect to redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": config.Host,
		"port": config.Port,
	}).Info("redis connected successfully")

	return NewClientWithRedis(redisClient), nil
}

// NewClientWithRedis wraps an existing connection without pinging it.
func NewClientWithRedis(redisClient *redis.Client) Client {
	c := &client{
		redisClient: redisClient,
		ttlMaps:     make(map[string]*TTLMap),
	}
	c.CreateTTLMap(SnapshotTTLName, defaultLocalTTL)
	return c
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	return c.redisClient.Get(ctx, key).Result()
}

func (c *client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.redisClient.Set(ctx, key, value, expiration).Err()
}

func (c *client) Delete(ctx context.Context, key string) error {
	return c.redisClient.Del(ctx, key).Err()
}

func (c *client) RedisClient() *redis.Client {
	return c.redisClient
}

// CreateTTLMap must be called during setup; maps are not added concurrently.
func (c *client) CreateTTLMap(name string, ttl time.Duration) *TTLMap {
	ttlMap := NewTTLMap(ttl)
	c.ttlMaps[name] = ttlMap
	return ttlMap
}

func (c *client) GetTTLMap(name string) *TTLMap {
	return c.ttlMaps[name]
}

func (c *client) ClearAllTTLMaps() {
	for _, ttlMap := range c.ttlMaps {
		ttlMap.Clear()
	}
}

func (c *client) SaveSnapshot(ctx context.Context, snapshot simulation.Snapshot, expiration time.Duration) error {
	if snapshot.RunID == "" {
		return errors.New("snapshot has no run id")
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.Set(ctx, fmt.Sprintf(SnapshotKeyPattern, snapshot.RunID), string(data), expiration); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	c.GetTTLMap(SnapshotTTLName).Set(snapshot.RunID, snapshot.Clone())
	return nil
}

func (c *client) GetSnapshot(ctx context.Context, runID string) (*simulation.Snapshot, error) {
	if value, ok := c.GetTTLMap(SnapshotTTLName).Get(runID); ok {
		if snapshot, ok := value.(simulation.Snapshot); ok {
			out := snapshot.Clone()
			return &out, nil
		}
	}

	res, err := c.Get(ctx, fmt.Sprintf(SnapshotKeyPattern, runID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, simulation.ErrRunNotFound
		}
		return nil, err
	}
	snapshot := new(simulation.Snapshot)
	if err := json.Unmarshal([]byte(res), snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	c.GetTTLMap(SnapshotTTLName).Set(runID, snapshot.Clone())
	return snapshot, nil
}
