package redisrepo

import (
	"context"

	apperrors "github.com/jrsteele09/go-mindcare-client/internal/errors"
	"github.com/jrsteele09/go-mindcare-client/sessions"
	"github.com/jrsteele09/go-mindcare-client/token"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ sessions.Repo = (*Repo)(nil)

// Repo stores the session as one Redis hash so that several processes
// sharing a login see the same record. Writes run in MULTI/EXEC and can
// never interleave between the token and user fields.
type Repo struct {
	client redis.UniversalClient
	key    string
}

func New(client redis.UniversalClient, key string) *Repo {
	return &Repo{client: client, key: key}
}

// NewFromAddr dials a standalone Redis and pings it
func NewFromAddr(ctx context.Context, addr, password string, db int, key string) (*Repo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "[redisrepo.NewFromAddr] ping %s", addr)
	}
	return New(client, key), nil
}

func (r *Repo) Load(ctx context.Context) (*sessions.Record, error) {
	entries, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, errors.Wrap(err, "[redisrepo.Load] hgetall")
	}
	record, ok, err := sessions.DecodeEntries(entries)
	if err != nil {
		return nil, errors.Wrap(err, "[redisrepo.Load]")
	}
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return record, nil
}

// Save replaces the hash. When the token carries a readable exp the hash
// expires with it.
func (r *Repo) Save(ctx context.Context, record sessions.Record) error {
	entries, err := sessions.EncodeEntries(record)
	if err != nil {
		return errors.Wrap(err, "[redisrepo.Save]")
	}

	claims, decodeErr := token.Decode(record.Token)

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		pipe.HSet(ctx, r.key, entries)
		if decodeErr == nil {
			pipe.ExpireAt(ctx, r.key, claims.ExpiresAt)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "[redisrepo.Save] exec")
	}
	return nil
}

func (r *Repo) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return errors.Wrap(err, "[redisrepo.Clear] del")
	}
	return nil
}

// Close releases the underlying client
func (r *Repo) Close() error {
	return r.client.Close()
}
