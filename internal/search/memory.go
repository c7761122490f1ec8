package search

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Memory is a case-insensitive substring index used when neither
// Meilisearch nor Postgres is available.
type Memory struct {
	mu    sync.RWMutex
	posts map[string]PostRecord
}

func NewMemory() *Memory {
	return &Memory{posts: make(map[string]PostRecord)}
}

func (m *Memory) IndexPosts(posts []PostRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range posts {
		m.posts[p.ID] = p
	}
	return nil
}

func (m *Memory) DeletePost(id string) error {
	m.mu.Lock()
	delete(m.posts, id)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Search(_ context.Context, q Query) ([]Result, int, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	if needle == "" {
		return nil, 0, nil
	}

	m.mu.RLock()
	var matches []Result
	for _, p := range m.posts {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		haystack := strings.ToLower(p.Title + " " + p.Category + " " + p.Description)
		if !strings.Contains(haystack, needle) {
			continue
		}
		id, err := strconv.ParseInt(p.ID, 10, 64)
		if err != nil {
			continue
		}
		matches = append(matches, Result{ID: id, Title: p.Title, Category: p.Category, Snippet: p.Description})
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].ID > matches[j].ID })
	total := len(matches)
	start := q.offset()
	if start > total {
		start = total
	}
	end := start + q.limit()
	if end > total {
		end = total
	}
	return matches[start:end], total, nil
}
