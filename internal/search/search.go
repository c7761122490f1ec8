package search

import "context"

// Result is a single post hit returned to the caller.
type Result struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Snippet  string `json:"snippet"`
}

// Query describes a search request.
type Query struct {
	Text     string
	Category string // empty = all categories
	Limit    int
	Offset   int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search over posts.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, int, error)
}

// PostRecord is the data we index for a post.
type PostRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (q Query) limit() int {
	if q.Limit <= 0 || q.Limit > 100 {
		return 20
	}
	return q.Limit
}

func (q Query) offset() int {
	if q.Offset < 0 {
		return 0
	}
	return q.Offset
}
