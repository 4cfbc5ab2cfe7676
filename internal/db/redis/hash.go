package redis

import (
	"context"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
)

// revField is the store-managed document revision. It never leaves this
// package: readers see documents without it.
const revField = "__rev"

// upsertScript atomically writes document fields and bumps the revision.
var upsertScript = rueidis.NewLuaScript(`
if #ARGV > 0 then
  redis.call('HSET', KEYS[1], unpack(ARGV))
end
return redis.call('HINCRBY', KEYS[1], '__rev', 1)
`)

// casScript writes fields only when the revision still matches ARGV[1].
var casScript = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return redis.error_reply('DOC_NOT_FOUND')
end
local rev = redis.call('HGET', KEYS[1], '__rev')
if not rev then rev = '0' end
if rev ~= ARGV[1] then
  return redis.error_reply('REVISION_MISMATCH')
end
redis.call('HSET', KEYS[1], unpack(ARGV, 2))
return redis.call('HINCRBY', KEYS[1], '__rev', 1)
`)

// HSet writes the given fields and bumps the document revision.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	args := flattenFields(fields)
	if err := upsertScript.Exec(ctx, s.client, []string{key}, args).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HSetMulti writes many documents, reporting per-document outcomes. A failed
// document does not fail the batch.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) []db.DocResult {
	results := make([]db.DocResult, len(items))
	for i, item := range items {
		results[i].Key = item.Key
		if err := s.HSet(ctx, item.Key, item.Fields); err != nil {
			results[i].Err = err
		}
	}
	return results
}

// HSetCAS writes fields only if the document revision still equals expectedRev.
func (s *Store) HSetCAS(ctx context.Context, key string, expectedRev int64, fields map[string]string) error {
	args := append([]string{strconv.FormatInt(expectedRev, 10)}, flattenFields(fields)...)
	err := casScript.Exec(ctx, s.client, []string{key}, args).Error()
	if err != nil {
		switch {
		case isRedisErr(err, "REVISION_MISMATCH"):
			return db.ErrRevisionMismatch
		case isRedisErr(err, "DOC_NOT_FOUND"):
			return db.ErrKeyNotFound
		}
		return &db.Error{Op: db.OpHSetCAS, Err: err}
	}
	return nil
}

// GetRevision returns the current document revision. A document written but
// never revised reports 0.
func (s *Store) GetRevision(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Hget().Key(key).Field(revField).Build()
	rev, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			exists, eErr := s.Exists(ctx, key)
			if eErr != nil {
				return 0, eErr
			}
			if !exists {
				return 0, db.ErrKeyNotFound
			}
			return 0, nil
		}
		return 0, &db.Error{Op: db.OpGetRevision, Err: err}
	}
	return rev, nil
}

// HGetAll returns all document fields, hiding the revision.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	if len(m) == 0 {
		return nil, db.ErrKeyNotFound
	}
	delete(m, revField)
	return m, nil
}

// Del removes a document.
func (s *Store) Del(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(key).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists reports whether a document is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	cmd := s.b().Exists().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return n > 0, nil
}

func flattenFields(fields map[string]string) []string {
	args := make([]string, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
