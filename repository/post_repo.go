package repository

import (
	"context"

	"lumina-health-api/models"
)

// PostRepo stores community posts through a generic Store.
type PostRepo struct {
	Store Store
}

func NewPostRepo(s Store) *PostRepo { return &PostRepo{Store: s} }

// Create inserts the post and returns its id.
func (r *PostRepo) Create(ctx context.Context, post models.CommunityPost) (string, error) {
	return CreateDocument(ctx, r.Store, models.CommunityPostCollection, post)
}

// List returns up to limit posts in insertion order, each carrying its id as
// a string.
func (r *PostRepo) List(ctx context.Context, limit int) ([]models.PostView, error) {
	docs, err := GetDocuments[models.CommunityPost](ctx, r.Store, models.CommunityPostCollection, Filter{}, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.PostView, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Data.View(d.ID.String()))
	}
	return out, nil
}
