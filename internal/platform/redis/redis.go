package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/ar0311/identity-docstore/internal/docstore"
	"github.com/ar0311/identity-docstore/internal/redact"
	rdb "github.com/redis/go-redis/v9"
)

// DriverName is the docstore driver name registered by this package.
const DriverName = "redis"

// DefaultPrefix namespaces keys when the config leaves Prefix empty.
const DefaultPrefix = "idstore:"

const (
	fieldData    = "data"
	fieldVersion = "version"

	// maxCommitAttempts bounds retries when a watched key changes between
	// the version check and EXEC.
	maxCommitAttempts = 8

	pingTimeout = 5 * time.Second
)

func init() {
	docstore.Register(DriverName, docstore.DriverFunc(Open))
}

// Backend implements docstore.Backend on Redis.
type Backend struct {
	client *rdb.Client
	prefix string
	logger *slog.Logger
}

var _ docstore.Backend = (*Backend)(nil)

// Open connects using cfg.DSN as a redis:// URL when set, otherwise
// cfg.Addr and cfg.DB.
func Open(ctx context.Context, cfg docstore.Config) (docstore.Backend, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	var opts *rdb.Options
	switch {
	case cfg.DSN != "":
		parsed, err := rdb.ParseURL(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url %s: %s", redact.DSN(cfg.DSN), redact.Error(err))
		}
		opts = parsed
	case cfg.Addr != "":
		opts = &rdb.Options{Addr: cfg.Addr, DB: cfg.DB}
	default:
		return nil, errors.New("redis: addr or DSN is required")
	}
	if cfg.MaxOpenConns > 0 {
		opts.PoolSize = cfg.MaxOpenConns
	}

	client := rdb.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}

	log.Info("connected to redis",
		slog.String("addr", opts.Addr),
		slog.Int("db", opts.DB))

	return New(client, cfg.Prefix, log), nil
}

// New wraps an existing client. The backend owns client and closes it on
// Close.
func New(client *rdb.Client, prefix string, log *slog.Logger) *Backend {
	if client == nil {
		panic("redis: nil client")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if log == nil {
		log = slog.Default()
	}
	return &Backend{
		client: client,
		prefix: prefix,
		logger: log.With(slog.String("component", "redisdoc")),
	}
}

func (b *Backend) docKey(collection, id string) string {
	return b.prefix + "doc:" + collection + ":" + id
}

func (b *Backend) collectionKey(collection string) string {
	return b.prefix + "col:" + collection
}

// Get implements docstore.Backend.
func (b *Backend) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	vals, err := b.client.HMGet(ctx, b.docKey(collection, id), fieldData, fieldVersion).Result()
	if err != nil {
		return docstore.Document{}, fmt.Errorf("failed to get document: %w", err)
	}
	return decode(collection, id, vals)
}

// List implements docstore.Backend. Documents come back ordered by id.
func (b *Backend) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	ids, err := b.client.SMembers(ctx, b.collectionKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)

	cmds := make([]*rdb.SliceCmd, len(ids))
	_, err = b.client.Pipelined(ctx, func(pipe rdb.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HMGet(ctx, b.docKey(collection, id), fieldData, fieldVersion)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	docs := make([]docstore.Document, 0, len(ids))
	for i, id := range ids {
		doc, err := decode(collection, id, cmds[i].Val())
		if errors.Is(err, docstore.ErrNotFound) {
			// Deleted between SMEMBERS and HMGET.
			continue
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Commit implements docstore.Backend.
func (b *Backend) Commit(ctx context.Context, ops []docstore.Op) ([]int64, error) {
	versions := make([]int64, len(ops))
	if len(ops) == 0 {
		return versions, nil
	}

	keys := make([]string, len(ops))
	for i, op := range ops {
		keys[i] = b.docKey(op.Collection, op.ID)
	}

	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		err := b.client.Watch(ctx, func(tx *rdb.Tx) error {
			return b.apply(ctx, tx, ops, keys, versions)
		}, keys...)
		if !errors.Is(err, rdb.TxFailedErr) {
			if err != nil {
				return nil, err
			}
			return versions, nil
		}
		b.logger.Debug("watched document changed, retrying commit",
			slog.Int("attempt", attempt),
			slog.Int("ops", len(ops)))
	}
	return nil, fmt.Errorf("%w: commit retried %d times", docstore.ErrConcurrency, maxCommitAttempts)
}

// apply checks every expected version, then queues all writes in one
// MULTI/EXEC. EXEC fails with TxFailedErr if a watched key changed.
func (b *Backend) apply(ctx context.Context, tx *rdb.Tx, ops []docstore.Op, keys []string, versions []int64) error {
	for i, op := range ops {
		actual, err := currentVersion(ctx, tx, keys[i])
		if err != nil {
			return err
		}
		if actual != op.ExpectedVersion {
			return &docstore.ConflictError{
				Collection: op.Collection,
				ID:         op.ID,
				Expected:   op.ExpectedVersion,
				Actual:     actual,
			}
		}
		switch op.Kind {
		case docstore.OpPut:
			versions[i] = op.ExpectedVersion + 1
		case docstore.OpDelete:
			versions[i] = 0
		default:
			return fmt.Errorf("unknown op kind %d for %s/%s", op.Kind, op.Collection, op.ID)
		}
	}

	_, err := tx.TxPipelined(ctx, func(pipe rdb.Pipeliner) error {
		for i, op := range ops {
			switch op.Kind {
			case docstore.OpPut:
				pipe.HSet(ctx, keys[i], fieldData, op.Data, fieldVersion, versions[i])
				pipe.SAdd(ctx, b.collectionKey(op.Collection), op.ID)
			case docstore.OpDelete:
				pipe.Del(ctx, keys[i])
				pipe.SRem(ctx, b.collectionKey(op.Collection), op.ID)
			}
		}
		return nil
	})
	return err
}

func currentVersion(ctx context.Context, tx *rdb.Tx, key string) (int64, error) {
	v, err := tx.HGet(ctx, key, fieldVersion).Int64()
	if errors.Is(err, rdb.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read document version: %w", err)
	}
	return v, nil
}

// decode turns an HMGET reply for data and version into a document.
func decode(collection, id string, vals []any) (docstore.Document, error) {
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return docstore.Document{}, fmt.Errorf("%w: %s/%s", docstore.ErrNotFound, collection, id)
	}
	data, ok := vals[0].(string)
	if !ok {
		return docstore.Document{}, fmt.Errorf("unexpected data type %T for %s/%s", vals[0], collection, id)
	}
	raw, ok := vals[1].(string)
	if !ok {
		return docstore.Document{}, fmt.Errorf("unexpected version type %T for %s/%s", vals[1], collection, id)
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("invalid version %q for %s/%s: %w", raw, collection, id, err)
	}
	return docstore.Document{
		Collection: collection,
		ID:         id,
		Data:       []byte(data),
		Version:    version,
	}, nil
}

// Close implements docstore.Backend.
func (b *Backend) Close() error {
	return b.client.Close()
}
