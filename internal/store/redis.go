package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/FloraSpot/FloraSpot-Back/internal/errs"
)

// Redis : document store sur Redis.
// Chaque document est une chaîne JSON sous "doc:{path}" ; chaque collection
// tient un sorted set "col:{collection}" scoré par created_at (epoch millis),
// ce qui rend la pagination décroissante en un seul ZREVRANGEBYSCORE.
// Les champs d'égalité déclarés tiennent des sets secondaires
// "idx:{collection}:{field}:{value}" pour Query.
type Redis struct {
	client  *redis.Client
	indexed map[string][]string // collection -> champs indexés en égalité
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		client: client,
		indexed: map[string][]string{
			"posts": {"user_id"},
		},
	}
}

func docKey(path string) string       { return "doc:" + path }
func colKey(collection string) string { return "col:" + collection }
func idxKey(collection, field, value string) string {
	return fmt.Sprintf("idx:%s:%s:%s", collection, field, value)
}

func (r *Redis) Get(ctx context.Context, path string, out interface{}) error {
	data, err := r.client.Get(ctx, docKey(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return errs.E(errs.NotFound, "store.Get", "document absent : "+path, nil)
	}
	if err != nil {
		return errs.E(errs.StoreUnavailable, "store.Get", "lecture Redis échouée", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errs.E(errs.StoreUnavailable, "store.Get", "document illisible", err)
	}
	return nil
}

func (r *Redis) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	max := "+inf"
	if opts.Before > 0 {
		// Borne haute exclusive : page strictement plus ancienne que le curseur
		max = fmt.Sprintf("(%d", opts.Before)
	}
	count := int64(-1)
	if opts.Limit > 0 {
		count = int64(opts.Limit)
	}

	paths, err := r.client.ZRevRangeByScore(ctx, colKey(collection), &redis.ZRangeBy{
		Min:    "-inf",
		Max:    max,
		Offset: 0,
		Count:  count,
	}).Result()
	if err != nil {
		return nil, errs.E(errs.StoreUnavailable, "store.List", "lecture Redis échouée", err)
	}
	return r.fetchAll(ctx, "store.List", paths)
}

func (r *Redis) Query(ctx context.Context, collection, field, value string) ([]Document, error) {
	paths, err := r.client.SMembers(ctx, idxKey(collection, field, value)).Result()
	if err != nil {
		return nil, errs.E(errs.StoreUnavailable, "store.Query", "lecture Redis échouée", err)
	}
	return r.fetchAll(ctx, "store.Query", paths)
}

func (r *Redis) fetchAll(ctx context.Context, op string, paths []string) ([]Document, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = docKey(p)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errs.E(errs.StoreUnavailable, op, "lecture Redis échouée", err)
	}

	docs := make([]Document, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// Index orphelin : le document a expiré ou a été supprimé entre-temps
			continue
		}
		docs = append(docs, Document{Path: paths[i], Data: json.RawMessage(s)})
	}
	return docs, nil
}

func (r *Redis) Write(ctx context.Context, path string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errs.E(errs.StoreUnavailable, "store.Write", "document non sérialisable", err)
	}
	collection := collectionOf(path)

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, docKey(path), data, 0)
	pipe.ZAdd(ctx, colKey(collection), redis.Z{
		Score:  float64(createdAtOf(data)),
		Member: path,
	})
	for _, field := range r.indexed[collection] {
		if v := stringField(data, field); v != "" {
			pipe.SAdd(ctx, idxKey(collection, field, v), path)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errs.E(errs.StoreUnavailable, "store.Write", "écriture Redis échouée", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, path string) error {
	collection := collectionOf(path)

	// Relire le document pour nettoyer les index secondaires
	old, err := r.client.Get(ctx, docKey(path)).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return errs.E(errs.StoreUnavailable, "store.Delete", "lecture Redis échouée", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, docKey(path))
	pipe.ZRem(ctx, colKey(collection), path)
	if old != nil {
		for _, field := range r.indexed[collection] {
			if v := stringField(old, field); v != "" {
				pipe.SRem(ctx, idxKey(collection, field, v), path)
			}
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errs.E(errs.StoreUnavailable, "store.Delete", "suppression Redis échouée", err)
	}
	return nil
}

func (r *Redis) Count(ctx context.Context, collection string) (int64, error) {
	n, err := r.client.ZCard(ctx, colKey(collection)).Result()
	if err != nil {
		return 0, errs.E(errs.StoreUnavailable, "store.Count", "lecture Redis échouée", err)
	}
	return n, nil
}

func stringField(data []byte, field string) string {
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return ""
	}
	s, _ := fields[field].(string)
	return s
}
