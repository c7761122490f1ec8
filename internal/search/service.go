package search

import (
	"context"
	"log"
)

type postIndexer interface {
	IndexPosts([]PostRecord) error
	DeletePost(string) error
}

// Service is the facade that tries Meilisearch first and falls back to the
// local searcher (Postgres FTS or the in-memory index).
type Service struct {
	meili    *Meili
	fallback Searcher
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, fallback Searcher) *Service {
	return &Service{meili: meili, fallback: fallback}
}

func (s *Service) Search(ctx context.Context, q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back: %v", err)
	}

	if s.fallback == nil {
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	results, total, err := s.fallback.Search(ctx, q)
	if err != nil {
		log.Printf("search: fallback error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexPost indexes a post. The local index is updated inline, Meilisearch
// fire-and-forget.
func (s *Service) IndexPost(post PostRecord) {
	if local, ok := s.fallback.(postIndexer); ok {
		_ = local.IndexPosts([]PostRecord{post})
	}
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexPosts([]PostRecord{post}); err != nil {
			log.Printf("search: index post %s: %v", post.ID, err)
		}
	}()
}

// DeletePost removes a post from the search indexes.
func (s *Service) DeletePost(id string) {
	if local, ok := s.fallback.(postIndexer); ok {
		_ = local.DeletePost(id)
	}
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeletePost(id); err != nil {
			log.Printf("search: delete post %s: %v", id, err)
		}
	}()
}

// Reindex pushes a full post set into every index. Called at bootstrap.
func (s *Service) Reindex(posts []PostRecord) {
	if local, ok := s.fallback.(postIndexer); ok {
		_ = local.IndexPosts(posts)
	}
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	if err := s.meili.IndexPosts(posts); err != nil {
		log.Printf("search: reindex posts: %v", err)
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
