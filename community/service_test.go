package community

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumina-health-api/cache"
	"lumina-health-api/models"
	"lumina-health-api/repository"
)

type fakeCache struct {
	data      map[string]string
	getErr    error
	prefixErr error
	dels      []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]string{}} }

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	v, ok := c.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key, val string) error {
	c.data[key] = val
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.data, key)
	return nil
}

func (c *fakeCache) DelPrefix(_ context.Context, prefix string) error {
	if c.prefixErr != nil {
		return c.prefixErr
	}
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

type fakeIndex struct {
	indexed  map[string]models.CommunityPost
	err      error
	searches int
}

func (f *fakeIndex) IndexPost(_ context.Context, id string, post models.CommunityPost) error {
	if f.err != nil {
		return f.err
	}
	f.indexed[id] = post
	return nil
}

func (f *fakeIndex) SearchPosts(_ context.Context, q string, size int) ([]models.PostView, error) {
	f.searches++
	var out []models.PostView
	for id, p := range f.indexed {
		if strings.Contains(p.Title, q) && len(out) < size {
			out = append(out, p.View(id))
		}
	}
	return out, nil
}

type failingRepo struct{ err error }

func (f failingRepo) Create(context.Context, models.CommunityPost) (string, error) { return "", f.err }

func (f failingRepo) List(context.Context, int) ([]models.PostView, error) { return nil, f.err }

func ptr(s string) *string { return &s }

func hello() models.CreatePostReq {
	return models.CreatePostReq{Title: "Hello", Content: "First post", Author: ptr("alice")}
}

func TestCreateThenList(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore("test")
	svc := NewService(repository.NewPostRepo(store))

	id, err := svc.Create(ctx, hello())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	posts, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.PostView{
		ID: id, Title: "Hello", Content: "First post", Author: "alice", Tags: []string{}, Likes: 0,
	}, posts[0])
}

func TestCreateKeepsTags(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repository.NewPostRepo(repository.NewMemoryStore("test")))

	req := hello()
	req.Tags = []string{"sleep", "sleep", "calm"}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	posts, err := svc.List(ctx, DefaultLimit)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, []string{"sleep", "sleep", "calm"}, posts[0].Tags)
}

func TestStorageErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := &repository.StorageError{Op: "insert", Collection: "communitypost", Err: errors.New("no reachable servers")}
	svc := NewService(failingRepo{err: boom})

	_, err := svc.Create(ctx, hello())
	assert.ErrorIs(t, err, boom)

	_, err = svc.List(ctx, 5)
	assert.ErrorIs(t, err, boom)
}

// switchRepo delegates to a PostRepo until down is set.
type switchRepo struct {
	*repository.PostRepo
	down error
}

func (r *switchRepo) List(ctx context.Context, limit int) ([]models.PostView, error) {
	if r.down != nil {
		return nil, r.down
	}
	return r.PostRepo.List(ctx, limit)
}

func TestListAlwaysReadsStore(t *testing.T) {
	ctx := context.Background()
	c := newFakeCache()
	repo := &switchRepo{PostRepo: repository.NewPostRepo(repository.NewMemoryStore("test"))}
	idx := &fakeIndex{indexed: map[string]models.CommunityPost{}}
	svc := NewService(repo, WithCache(c), WithIndex(idx))

	_, err := svc.Create(ctx, hello())
	require.NoError(t, err)
	posts, err := svc.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Empty(t, c.data, "lists are never cached")

	t.Run("failed invalidation does not hide new posts", func(t *testing.T) {
		c.prefixErr = errors.New("redis down")
		t.Cleanup(func() { c.prefixErr = nil })

		id, err := svc.Create(ctx, hello())
		require.NoError(t, err)
		posts, err := svc.List(ctx, 5)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, id, posts[1].ID)
	})

	t.Run("store outage is reported", func(t *testing.T) {
		repo.down = &repository.StorageError{Op: "find", Collection: "communitypost", Err: errors.New("no reachable servers")}
		t.Cleanup(func() { repo.down = nil })

		posts, err := svc.List(ctx, 5)
		var se *repository.StorageError
		require.ErrorAs(t, err, &se)
		assert.Nil(t, posts)
	})
}

func TestSearchCache(t *testing.T) {
	ctx := context.Background()
	c := newFakeCache()
	idx := &fakeIndex{indexed: map[string]models.CommunityPost{}}
	svc := NewService(repository.NewPostRepo(repository.NewMemoryStore("test")), WithCache(c), WithIndex(idx))

	_, err := svc.Create(ctx, hello())
	require.NoError(t, err)

	posts, err := svc.Search(ctx, "Hello", 5)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	key := searchKeyPrefix + "5:Hello"
	assert.Contains(t, c.data, key)

	t.Run("hit skips the index", func(t *testing.T) {
		before := idx.searches
		posts, err := svc.Search(ctx, "Hello", 5)
		require.NoError(t, err)
		assert.Len(t, posts, 1)
		assert.Equal(t, before, idx.searches)
	})

	t.Run("corrupt entry is dropped", func(t *testing.T) {
		c.data[key] = "{not json"
		before := idx.searches
		posts, err := svc.Search(ctx, "Hello", 5)
		require.NoError(t, err)
		assert.Len(t, posts, 1)
		assert.Equal(t, before+1, idx.searches)
		assert.Contains(t, c.dels, key)
	})

	t.Run("create invalidates", func(t *testing.T) {
		_, err := svc.Create(ctx, hello())
		require.NoError(t, err)
		assert.Empty(t, c.data)

		posts, err := svc.Search(ctx, "Hello", 5)
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("cache failure falls back to index", func(t *testing.T) {
		c.getErr = errors.New("redis down")
		t.Cleanup(func() { c.getErr = nil })
		posts, err := svc.Search(ctx, "Hello", 5)
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("size is capped", func(t *testing.T) {
		_, err := svc.Search(ctx, "Hello", MaxSearchSize*10)
		require.NoError(t, err)
		assert.Contains(t, c.data, searchKeyPrefix+"100:Hello")
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		svc := NewService(repository.NewPostRepo(repository.NewMemoryStore("test")))
		_, err := svc.Search(ctx, "Hello", 5)
		assert.ErrorIs(t, err, ErrSearchDisabled)
	})

	t.Run("created posts are indexed", func(t *testing.T) {
		idx := &fakeIndex{indexed: map[string]models.CommunityPost{}}
		svc := NewService(repository.NewPostRepo(repository.NewMemoryStore("test")), WithIndex(idx))

		id, err := svc.Create(ctx, hello())
		require.NoError(t, err)

		posts, err := svc.Search(ctx, "Hello", 5)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, id, posts[0].ID)

		posts, err = svc.Search(ctx, "Hello", 0)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("index failure does not fail create", func(t *testing.T) {
		idx := &fakeIndex{indexed: map[string]models.CommunityPost{}, err: errors.New("es down")}
		store := repository.NewMemoryStore("test")
		svc := NewService(repository.NewPostRepo(store), WithIndex(idx))

		_, err := svc.Create(ctx, hello())
		require.NoError(t, err)
		assert.Equal(t, 1, store.Count(models.CommunityPostCollection))
	})
}
