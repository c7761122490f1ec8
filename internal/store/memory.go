package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore keeps everything in process. It backs local development when no
// DATABASE_URL is configured and the service tests.
//
// mu guards the maps themselves; each post carries its own lock so likes and
// comments on different posts never contend.
type MemoryStore struct {
	mu        sync.RWMutex
	posts     map[int64]*postEntry
	profile   Profile
	journey   map[int64]JourneyEntry
	documents map[int64]Document
	follows   map[int64]FollowRequest
	contacts  map[int64]ContactMessage
	blocked   map[string]time.Time

	postSeq    atomic.Int64
	commentSeq atomic.Int64
	journeySeq atomic.Int64
	docSeq     atomic.Int64
	followSeq  atomic.Int64
	contactSeq atomic.Int64

	now func() time.Time
}

type postEntry struct {
	mu       sync.Mutex
	post     Post
	comments []Comment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts:     make(map[int64]*postEntry),
		journey:   make(map[int64]JourneyEntry),
		documents: make(map[int64]Document),
		follows:   make(map[int64]FollowRequest),
		contacts:  make(map[int64]ContactMessage),
		blocked:   make(map[string]time.Time),
		now:       time.Now,
	}
}

func (s *MemoryStore) ListPosts(context.Context) ([]Post, error) {
	s.mu.RLock()
	items := make([]Post, 0, len(s.posts))
	for _, entry := range s.posts {
		entry.mu.Lock()
		items = append(items, entry.post)
		entry.mu.Unlock()
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (s *MemoryStore) GetPost(_ context.Context, postID int64) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.posts[postID]
	if !ok {
		return Post{}, ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.post, nil
}

func (s *MemoryStore) InsertPost(_ context.Context, post Post) (Post, error) {
	post.ID = s.postSeq.Add(1)
	post.Likes = 0
	post.CreatedAt = s.now()

	s.mu.Lock()
	s.posts[post.ID] = &postEntry{post: post}
	s.mu.Unlock()
	return post, nil
}

func (s *MemoryStore) UpdatePost(_ context.Context, postID int64, patch PostPatch) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.posts[postID]
	if !ok {
		return Post{}, ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	patch.apply(&entry.post)
	return entry.post, nil
}

func (s *MemoryStore) DeletePost(_ context.Context, postID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return ErrNotFound
	}
	delete(s.posts, postID)
	return nil
}

func (s *MemoryStore) IncrementLikes(_ context.Context, postID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.posts[postID]
	if !ok {
		return 0, ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.post.Likes++
	return entry.post.Likes, nil
}

func (s *MemoryStore) InsertComment(_ context.Context, comment Comment) (Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.posts[comment.PostID]
	if !ok {
		return Comment{}, ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	comment.ID = s.commentSeq.Add(1)
	comment.Position = len(entry.comments)
	comment.CreatedAt = s.now()
	entry.comments = append(entry.comments, comment)
	return comment, nil
}

func (s *MemoryStore) ListComments(_ context.Context, postID int64) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.posts[postID]
	if !ok {
		return nil, ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	items := make([]Comment, len(entry.comments))
	copy(items, entry.comments)
	return items, nil
}

func (s *MemoryStore) GetProfile(context.Context) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile, nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, profile Profile) (Profile, error) {
	profile.UpdatedAt = s.now()
	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
	return profile, nil
}

func (s *MemoryStore) ListJourney(context.Context) ([]JourneyEntry, error) {
	s.mu.RLock()
	items := make([]JourneyEntry, 0, len(s.journey))
	for _, item := range s.journey {
		items = append(items, item)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].Year != items[j].Year {
			return items[i].Year > items[j].Year
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (s *MemoryStore) InsertJourney(_ context.Context, entry JourneyEntry) (JourneyEntry, error) {
	entry.ID = s.journeySeq.Add(1)
	entry.CreatedAt = s.now()
	s.mu.Lock()
	s.journey[entry.ID] = entry
	s.mu.Unlock()
	return entry, nil
}

func (s *MemoryStore) DeleteJourney(_ context.Context, entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.journey[entryID]; !ok {
		return ErrNotFound
	}
	delete(s.journey, entryID)
	return nil
}

func (s *MemoryStore) ListDocuments(context.Context) ([]Document, error) {
	s.mu.RLock()
	items := make([]Document, 0, len(s.documents))
	for _, item := range s.documents {
		items = append(items, item)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, nil
}

func (s *MemoryStore) InsertDocument(_ context.Context, doc Document) (Document, error) {
	doc.ID = s.docSeq.Add(1)
	doc.CreatedAt = s.now()
	s.mu.Lock()
	s.documents[doc.ID] = doc
	s.mu.Unlock()
	return doc, nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, documentID int64) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	delete(s.documents, documentID)
	return doc, nil
}

func (s *MemoryStore) InsertFollow(_ context.Context, follow FollowRequest) (FollowRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.follows {
		if strings.EqualFold(existing.Email, follow.Email) {
			return FollowRequest{}, ErrConflict
		}
	}
	follow.ID = s.followSeq.Add(1)
	follow.CreatedAt = s.now()
	s.follows[follow.ID] = follow
	return follow, nil
}

func (s *MemoryStore) ListFollows(context.Context) ([]FollowRequest, error) {
	s.mu.RLock()
	items := make([]FollowRequest, 0, len(s.follows))
	for _, item := range s.follows {
		items = append(items, item)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, nil
}

func (s *MemoryStore) DeleteFollow(_ context.Context, followID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.follows[followID]; !ok {
		return ErrNotFound
	}
	delete(s.follows, followID)
	return nil
}

func (s *MemoryStore) InsertContact(_ context.Context, msg ContactMessage) (ContactMessage, error) {
	msg.ID = s.contactSeq.Add(1)
	msg.CreatedAt = s.now()
	s.mu.Lock()
	s.contacts[msg.ID] = msg
	s.mu.Unlock()
	return msg, nil
}

func (s *MemoryStore) ListContacts(context.Context) ([]ContactMessage, error) {
	s.mu.RLock()
	items := make([]ContactMessage, 0, len(s.contacts))
	for _, item := range s.contacts {
		items = append(items, item)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, nil
}

func (s *MemoryStore) DeleteContact(_ context.Context, contactID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[contactID]; !ok {
		return ErrNotFound
	}
	delete(s.contacts, contactID)
	return nil
}

func (s *MemoryStore) Block(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocked[name]; !ok {
		s.blocked[name] = s.now()
	}
	return nil
}

func (s *MemoryStore) Unblock(_ context.Context, name string) error {
	s.mu.Lock()
	delete(s.blocked, name)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) IsBlocked(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blocked[name]
	return ok, nil
}

func (s *MemoryStore) ListBlocked(context.Context) ([]BlockEntry, error) {
	s.mu.RLock()
	items := make([]BlockEntry, 0, len(s.blocked))
	for name, at := range s.blocked {
		items = append(items, BlockEntry{Name: name, BlockedAt: at})
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].BlockedAt.Equal(items[j].BlockedAt) {
			return items[i].BlockedAt.After(items[j].BlockedAt)
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
