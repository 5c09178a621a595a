// Package community implements the bulletin board: creating and listing posts
// through the document store, with an optional search index whose results
// may be cached.
package community

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"lumina-health-api/cache"
	"lumina-health-api/models"
)

// DefaultLimit is the list size when the caller does not give one.
const DefaultLimit = 20

// MaxSearchSize caps the number of search hits requested from the index.
const MaxSearchSize = 100

const searchKeyPrefix = "communitypost:search:"

// ErrSearchDisabled is returned by Search when no index is configured.
var ErrSearchDisabled = errors.New("search is not configured")

type Repo interface {
	Create(ctx context.Context, post models.CommunityPost) (string, error)
	List(ctx context.Context, limit int) ([]models.PostView, error)
}

// Cache is satisfied by *cache.RedisCache. Get reports a miss with cache.ErrMiss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, val string) error
	Del(ctx context.Context, key string) error
	DelPrefix(ctx context.Context, prefix string) error
}

// Index is satisfied by *search.ES.
type Index interface {
	IndexPost(ctx context.Context, id string, post models.CommunityPost) error
	SearchPosts(ctx context.Context, q string, size int) ([]models.PostView, error)
}

type Service struct {
	repo  Repo
	cache Cache
	index Index
	log   *zap.Logger
}

type Option func(*Service)

func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

func WithIndex(i Index) Option { return func(s *Service) { s.index = i } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

func NewService(repo Repo, opts ...Option) *Service {
	s := &Service{repo: repo, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create stores a validated post and returns its id. Search cache
// invalidation and indexing happen after the write and never fail the call.
func (s *Service) Create(ctx context.Context, req models.CreatePostReq) (string, error) {
	post := req.Document()
	id, err := s.repo.Create(ctx, post)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.DelPrefix(ctx, searchKeyPrefix); err != nil {
			s.log.Warn("invalidate post search cache", zap.Error(err))
		}
	}
	if s.index != nil {
		if err := s.index.IndexPost(ctx, id, post); err != nil {
			s.log.Warn("index post", zap.String("id", id), zap.Error(err))
		}
	}
	return id, nil
}

// List returns up to limit posts. It always reads the store, so a store
// failure is reported rather than masked.
func (s *Service) List(ctx context.Context, limit int) ([]models.PostView, error) {
	return s.repo.List(ctx, limit)
}

// Search returns up to limit posts matching q in title or content, best match
// first. Results are cached aside when a cache is configured.
func (s *Service) Search(ctx context.Context, q string, limit int) ([]models.PostView, error) {
	if s.index == nil {
		return nil, ErrSearchDisabled
	}
	if limit == 0 {
		return []models.PostView{}, nil
	}
	limit = min(limit, MaxSearchSize)

	key := searchKeyPrefix + strconv.Itoa(limit) + ":" + q
	if s.cache != nil {
		val, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var posts []models.PostView
			if jsonErr := json.Unmarshal([]byte(val), &posts); jsonErr == nil {
				return posts, nil
			}
			if err := s.cache.Del(ctx, key); err != nil {
				s.log.Warn("drop corrupt search cache entry", zap.String("key", key), zap.Error(err))
			}
		case !errors.Is(err, cache.ErrMiss):
			s.log.Warn("read post search cache", zap.String("key", key), zap.Error(err))
		}
	}

	posts, err := s.index.SearchPosts(ctx, q, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		b, _ := json.Marshal(posts)
		if err := s.cache.Set(ctx, key, string(b)); err != nil {
			s.log.Warn("write post search cache", zap.String("key", key), zap.Error(err))
		}
	}
	return posts, nil
}
