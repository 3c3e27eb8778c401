package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
)

// Store is the document store handle shared by the repositories. While the
// network is disabled reads are answered from the cache and writes fail
// with domain.ErrOffline.
type Store struct {
	db      *mongo.Database
	cache   ports.DocumentCache
	network atomic.Bool
	log     zerolog.Logger
}

// NewStore wraps db. cache may be nil, in which case offline reads fail.
func NewStore(db *mongo.Database, cache ports.DocumentCache, log zerolog.Logger) *Store {
	s := &Store{db: db, cache: cache, log: log.With().Str("component", "document_store").Logger()}
	s.network.Store(true)
	return s
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *Store) EnableNetwork(context.Context) error {
	if !s.network.Swap(true) {
		s.log.Info().Msg("network enabled, reading from the primary")
	}
	return nil
}

func (s *Store) DisableNetwork(context.Context) error {
	if s.network.Swap(false) {
		s.log.Warn().Msg("network disabled, serving reads from cache")
	}
	return nil
}

// NetworkEnabled reports the current mode.
func (s *Store) NetworkEnabled() bool { return s.network.Load() }

func (s *Store) writable() error {
	if !s.network.Load() {
		return domain.ErrOffline
	}
	return nil
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func docKey(coll, id string) string {
	return "doc:" + coll + ":" + id
}

func queryKey(coll string, filter bson.M, shape string) string {
	return fmt.Sprintf("query:%s:%v:%s", coll, filter, shape)
}

func (s *Store) remember(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, v); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache write skipped")
	}
}

func (s *Store) forget(ctx context.Context, coll, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, docKey(coll, id)); err != nil {
		s.log.Debug().Err(err).Str("collection", coll).Str("id", id).Msg("cache invalidation skipped")
	}
}

func fromCache[T any](ctx context.Context, s *Store, key string) (T, error) {
	var v T
	if s.cache == nil {
		return v, domain.ErrOffline
	}
	if err := s.cache.Get(ctx, key, &v); err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return v, domain.ErrOffline
		}
		return v, fmt.Errorf("read cache: %w", err)
	}
	return v, nil
}

// findByID loads one document by _id, mapping a miss to notFound.
func findByID[T any](ctx context.Context, s *Store, coll, id string, notFound error) (*T, error) {
	key := docKey(coll, id)
	if !s.network.Load() {
		v, err := fromCache[T](ctx, s, key)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var v T
	if err := s.collection(coll).FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, fmt.Errorf("find %s %s: %w", coll, id, err)
	}
	s.remember(ctx, key, &v)
	return &v, nil
}

// findOne loads the first document matching filter. Offline it fails.
func findOne[T any](ctx context.Context, s *Store, coll string, filter bson.M, notFound error) (*T, error) {
	if err := s.writable(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var v T
	if err := s.collection(coll).FindOne(ctx, filter).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, fmt.Errorf("find %s: %w", coll, err)
	}
	return &v, nil
}

// findMany runs a query. Online results are cached under the filter and
// shape (sort and limit) so the same list can be served offline.
func findMany[T any](ctx context.Context, s *Store, coll string, filter bson.M, opts *options.FindOptions, shape string) ([]*T, error) {
	key := queryKey(coll, filter, shape)
	if !s.network.Load() {
		return fromCache[[]*T](ctx, s, key)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := s.collection(coll).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", coll, err)
	}
	out := make([]*T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll, err)
	}
	s.remember(ctx, key, out)
	return out, nil
}

// insert writes a new document, mapping duplicate keys to dup.
func (s *Store) insert(ctx context.Context, coll string, doc any, dup error) error {
	if err := s.writable(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.collection(coll).InsertOne(ctx, doc); err != nil {
		if dup != nil && mongo.IsDuplicateKeyError(err) {
			return dup
		}
		return fmt.Errorf("insert %s: %w", coll, err)
	}
	return nil
}

// updateByID applies update to the document with id, returning notFound when
// nothing matched.
func (s *Store) updateByID(ctx context.Context, coll, id string, update bson.M, notFound error) error {
	if err := s.writable(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.collection(coll).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", coll, id, err)
	}
	s.forget(ctx, coll, id)
	if res.MatchedCount == 0 {
		return notFound
	}
	return nil
}

// deleteByID removes the document with id, returning notFound when nothing
// was deleted.
func (s *Store) deleteByID(ctx context.Context, coll, id string, notFound error) error {
	if err := s.writable(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", coll, id, err)
	}
	s.forget(ctx, coll, id)
	if res.DeletedCount == 0 {
		return notFound
	}
	return nil
}

func setFields(fields map[string]any) bson.M {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	return bson.M{"$set": set}
}

func ensureIndexes(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("ensure %s indexes: %w", coll.Name(), err)
	}
	return nil
}
