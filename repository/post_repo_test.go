package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumina-health-api/models"
)

func TestPostRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("test")
	repo := NewPostRepo(s)

	author := "alice"
	id, err := repo.Create(ctx, models.CreatePostReq{Title: "Hello", Content: "First post", Author: &author}.Document())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	posts, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, models.PostView{
		ID: id, Title: "Hello", Content: "First post", Author: "alice", Tags: []string{}, Likes: 0,
	}, posts[0])

	b, err := json.Marshal(posts[0])
	require.NoError(t, err)
	assert.NotContains(t, string(b), "_id")
}

func TestPostRepoListFillsDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("test")
	// A document written without tags or likes.
	_, err := s.Insert(ctx, models.CommunityPostCollection, map[string]any{
		"title": "t", "content": "c", "author": "bob",
	})
	require.NoError(t, err)

	posts, err := NewPostRepo(s).List(ctx, 20)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, []string{}, posts[0].Tags)
	assert.Zero(t, posts[0].Likes)
}

func TestPostRepoListLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepo(NewMemoryStore("test"))
	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, models.CommunityPost{Title: "t", Content: "c", Author: "a", Tags: []string{}})
		require.NoError(t, err)
	}

	for _, n := range []int{0, 1, 3, 5, 10} {
		posts, err := repo.List(ctx, n)
		require.NoError(t, err)
		assert.Len(t, posts, min(n, 5), "limit %d", n)
	}
}
