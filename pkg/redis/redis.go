package redis

import (
	"GutAssistant/internal/entity"
	"context"
	"errors"
	"fmt"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"os"
	"strconv"
	"time"
)

const overrideKeyPrefix = "gut-assistant:override:"

var ErrCacheMiss = errors.New("override not cached")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// setIfNewer stores version and payload in the override hash unless the hash
// already holds an equal or newer version. Versions compare as strings.
var setIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and current >= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'payload', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
else
	redis.call('PERSIST', KEYS[1])
end
return 1
`)

// OverrideVersion orders cached overrides the way feedback_overrides orders
// its rows: by update time at microsecond precision, then by record ID.
func OverrideVersion(updatedAt time.Time, recordID string) string {
	micros := updatedAt.Round(time.Microsecond).UnixMicro()
	if micros < 0 {
		micros = 0
	}
	return fmt.Sprintf("%019d:%s", micros, recordID)
}

// IRedis caches the override index by message signature. Each entry carries
// the version of the row it was read from, and SetOverride never replaces a
// newer entry with an older one. It reports whether the entry was written.
type IRedis interface {
	SetOverride(ctx context.Context, signature string, payload entity.ResponsePayload, version string, expiration time.Duration) (bool, error)
	GetOverride(ctx context.Context, signature string) (entity.ResponsePayload, error)
	DeleteOverride(ctx context.Context, signature string) error
	Ping(ctx context.Context) error
	Close() error
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func NewFromClient(client *redis.Client) IRedis {
	return &redisClient{client: client}
}

func overrideKey(signature string) string {
	return overrideKeyPrefix + signature
}

func (r *redisClient) SetOverride(ctx context.Context, signature string, payload entity.ResponsePayload, version string, expiration time.Duration) (bool, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}

	logrus.Debug(fmt.Sprintf("Caching override for signature %q at version %s with expiration %v", signature, version, expiration))
	written, err := setIfNewer.Run(ctx, r.client, []string{overrideKey(signature)}, version, data, expiration.Milliseconds()).Int()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error caching override for signature %q: %v", signature, err))
		return false, err
	}
	if written == 0 {
		logrus.Debug(fmt.Sprintf("Kept newer cached override for signature %q", signature))
	}
	return written == 1, nil
}

func (r *redisClient) GetOverride(ctx context.Context, signature string) (entity.ResponsePayload, error) {
	val, err := r.client.HGet(ctx, overrideKey(signature), "payload").Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.ResponsePayload{}, ErrCacheMiss
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading override for signature %q: %v", signature, err))
		return entity.ResponsePayload{}, err
	}

	var payload entity.ResponsePayload
	if err := json.Unmarshal(val, &payload); err != nil {
		logrus.Error(fmt.Sprintf("Corrupt cached override for signature %q: %v", signature, err))
		return entity.ResponsePayload{}, err
	}
	if payload.Recommendations == nil {
		payload.Recommendations = []string{}
	}
	return payload, nil
}

func (r *redisClient) DeleteOverride(ctx context.Context, signature string) error {
	result, err := r.client.Del(ctx, overrideKey(signature)).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error deleting override for signature %q: %v", signature, err))
		return err
	}
	logrus.Debug(fmt.Sprintf("Deleted %d cached override(s) for signature %q", result, signature))
	return nil
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
