package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"portfolio/api/internal/assistant"
	"portfolio/api/internal/auth"
	"portfolio/api/internal/identity"
	"portfolio/api/internal/media"
	"portfolio/api/internal/search"
	"portfolio/api/internal/store"
)

const (
	defaultCategory  = "General"
	maxTitleLength   = 200
	maxCommentLength = 2000
	maxMessageLength = 5000
	maxPromptLength  = 4000
)

type PostInput struct {
	Title       string
	Category    string
	Description string
	ImageURL    string
}

// PostUpdate is a partial update; nil fields are left unchanged.
type PostUpdate struct {
	Title       *string
	Category    *string
	Description *string
	ImageURL    *string
}

type ProfileInput struct {
	Name     string
	Bio      string
	SubBio   string
	ImageURL string
}

type JourneyInput struct {
	Year        string
	Title       string
	Description string
}

type DocumentUpload struct {
	Title       string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type contentStore interface {
	ListPosts(context.Context) ([]store.Post, error)
	GetPost(context.Context, int64) (store.Post, error)
	InsertPost(context.Context, store.Post) (store.Post, error)
	UpdatePost(context.Context, int64, store.PostPatch) (store.Post, error)
	DeletePost(context.Context, int64) error
	IncrementLikes(context.Context, int64) (int64, error)
	InsertComment(context.Context, store.Comment) (store.Comment, error)
	ListComments(context.Context, int64) ([]store.Comment, error)
	GetProfile(context.Context) (store.Profile, error)
	SaveProfile(context.Context, store.Profile) (store.Profile, error)
	ListJourney(context.Context) ([]store.JourneyEntry, error)
	InsertJourney(context.Context, store.JourneyEntry) (store.JourneyEntry, error)
	DeleteJourney(context.Context, int64) error
	ListDocuments(context.Context) ([]store.Document, error)
	InsertDocument(context.Context, store.Document) (store.Document, error)
	DeleteDocument(context.Context, int64) (store.Document, error)
	InsertFollow(context.Context, store.FollowRequest) (store.FollowRequest, error)
	ListFollows(context.Context) ([]store.FollowRequest, error)
	DeleteFollow(context.Context, int64) error
	InsertContact(context.Context, store.ContactMessage) (store.ContactMessage, error)
	ListContacts(context.Context) ([]store.ContactMessage, error)
	DeleteContact(context.Context, int64) error
	Ping(context.Context) error
}

type moderationStore interface {
	Block(context.Context, string) error
	Unblock(context.Context, string) error
	IsBlocked(context.Context, string) (bool, error)
	ListBlocked(context.Context) ([]store.BlockEntry, error)
	Ping(context.Context) error
}

type postSearcher interface {
	Search(context.Context, search.Query) search.Response
	IndexPost(search.PostRecord)
	DeletePost(string)
	Reindex([]search.PostRecord)
}

type notifier interface {
	IsConfigured() bool
	NotifyContact(name, email, message string) error
	NotifyFollow(name, email string) error
}

// Deps wires the service to its collaborators. Content, Moderation and Gate
// are required; the rest fall back to disabled implementations.
type Deps struct {
	Gate       *auth.Gate
	Content    contentStore
	Moderation moderationStore
	Search     postSearcher
	Media      media.Storage
	Notifier   notifier
	Assistant  assistant.Client
}

type Service struct {
	gate       *auth.Gate
	content    contentStore
	moderation moderationStore
	search     postSearcher
	media      media.Storage
	notifier   notifier
	assistant  assistant.Client
	// notify runs a notification; tests replace it to run inline.
	notify func(func())
}

func New(deps Deps) *Service {
	svc := &Service{
		gate:       deps.Gate,
		content:    deps.Content,
		moderation: deps.Moderation,
		search:     deps.Search,
		media:      deps.Media,
		notifier:   deps.Notifier,
		assistant:  deps.Assistant,
		notify:     func(fn func()) { go fn() },
	}
	if svc.search == nil {
		svc.search = search.NewService(nil, search.NewMemory())
	}
	if svc.media == nil {
		svc.media = media.Disabled{}
	}
	return svc
}

// Bootstrap pushes every existing post into the search indexes.
func (s *Service) Bootstrap(ctx context.Context) error {
	posts, err := s.content.ListPosts(ctx)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	records := make([]search.PostRecord, 0, len(posts))
	for _, post := range posts {
		records = append(records, postRecord(post))
	}
	s.search.Reindex(records)
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.content.Ping(ctx)
}

func (s *Service) PingModeration(ctx context.Context) error {
	return s.moderation.Ping(ctx)
}

// AdminLogin checks a secret without side effects.
func (s *Service) AdminLogin(secret string) bool {
	return s.gate.Authorize(secret)
}

func (s *Service) authorize(secret string) error {
	if !s.gate.Authorize(secret) {
		return UnauthorizedError()
	}
	return nil
}

// Posts

func (s *Service) ListPosts(ctx context.Context) ([]store.Post, error) {
	posts, err := s.content.ListPosts(ctx)
	if err != nil {
		return nil, storeError(err, "posts")
	}
	return posts, nil
}

func (s *Service) GetPost(ctx context.Context, postID int64) (store.Post, error) {
	post, err := s.content.GetPost(ctx, postID)
	if err != nil {
		return store.Post{}, storeError(err, "post")
	}
	return post, nil
}

func (s *Service) SearchPosts(ctx context.Context, q search.Query) (search.Response, error) {
	if strings.TrimSpace(q.Text) == "" {
		return search.Response{}, ValidationError("q is required", nil)
	}
	return s.search.Search(ctx, q), nil
}

func (s *Service) CreatePost(ctx context.Context, secret string, input PostInput) (store.Post, error) {
	if err := s.authorize(secret); err != nil {
		return store.Post{}, err
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	fieldErrors := map[string]string{}
	if title == "" {
		fieldErrors["title"] = "required"
	} else if utf8.RuneCountInString(title) > maxTitleLength {
		fieldErrors["title"] = "too long"
	}
	if description == "" {
		fieldErrors["description"] = "required"
	}
	if len(fieldErrors) > 0 {
		return store.Post{}, ValidationError("title and description are required", fieldErrors)
	}

	imageURL, uploaded, err := s.resolveImage(ctx, "posts", input.ImageURL)
	if err != nil {
		return store.Post{}, err
	}

	post, err := s.content.InsertPost(ctx, store.Post{
		Title:       title,
		Category:    normalizeCategory(input.Category),
		Description: description,
		ImageURL:    imageURL,
	})
	if err != nil {
		s.discardObject(ctx, uploaded)
		return store.Post{}, storeError(err, "post")
	}
	s.search.IndexPost(postRecord(post))
	return post, nil
}

func (s *Service) UpdatePost(ctx context.Context, secret string, postID int64, update PostUpdate) (store.Post, error) {
	if err := s.authorize(secret); err != nil {
		return store.Post{}, err
	}

	patch := store.PostPatch{}
	fieldErrors := map[string]string{}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			fieldErrors["title"] = "must not be empty"
		} else if utf8.RuneCountInString(title) > maxTitleLength {
			fieldErrors["title"] = "too long"
		}
		patch.Title = &title
	}
	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		if description == "" {
			fieldErrors["description"] = "must not be empty"
		}
		patch.Description = &description
	}
	if len(fieldErrors) > 0 {
		return store.Post{}, ValidationError("invalid post update", fieldErrors)
	}
	if update.Category != nil {
		category := normalizeCategory(*update.Category)
		patch.Category = &category
	}
	var uploaded string
	if update.ImageURL != nil {
		imageURL, key, err := s.resolveImage(ctx, "posts", *update.ImageURL)
		if err != nil {
			return store.Post{}, err
		}
		patch.ImageURL = &imageURL
		uploaded = key
	}

	post, err := s.content.UpdatePost(ctx, postID, patch)
	if err != nil {
		s.discardObject(ctx, uploaded)
		return store.Post{}, storeError(err, "post")
	}
	s.search.IndexPost(postRecord(post))
	return post, nil
}

func (s *Service) DeletePost(ctx context.Context, secret string, postID int64) error {
	if err := s.authorize(secret); err != nil {
		return err
	}
	if err := s.content.DeletePost(ctx, postID); err != nil {
		return storeError(err, "post")
	}
	s.search.DeletePost(strconv.FormatInt(postID, 10))
	return nil
}

// Profile

func (s *Service) GetProfile(ctx context.Context) (store.Profile, error) {
	profile, err := s.content.GetProfile(ctx)
	if err != nil {
		return store.Profile{}, storeError(err, "profile")
	}
	return profile, nil
}

func (s *Service) SaveProfile(ctx context.Context, secret string, input ProfileInput) (store.Profile, error) {
	if err := s.authorize(secret); err != nil {
		return store.Profile{}, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return store.Profile{}, ValidationError("name is required", map[string]string{"name": "required"})
	}
	imageURL, uploaded, err := s.resolveImage(ctx, "profile", input.ImageURL)
	if err != nil {
		return store.Profile{}, err
	}
	profile, err := s.content.SaveProfile(ctx, store.Profile{
		Name:     name,
		Bio:      strings.TrimSpace(input.Bio),
		SubBio:   strings.TrimSpace(input.SubBio),
		ImageURL: imageURL,
	})
	if err != nil {
		s.discardObject(ctx, uploaded)
		return store.Profile{}, storeError(err, "profile")
	}
	return profile, nil
}

// Journey

func (s *Service) ListJourney(ctx context.Context) ([]store.JourneyEntry, error) {
	entries, err := s.content.ListJourney(ctx)
	if err != nil {
		return nil, storeError(err, "journey")
	}
	return entries, nil
}

func (s *Service) CreateJourney(ctx context.Context, secret string, input JourneyInput) (store.JourneyEntry, error) {
	if err := s.authorize(secret); err != nil {
		return store.JourneyEntry{}, err
	}
	year := strings.TrimSpace(input.Year)
	title := strings.TrimSpace(input.Title)
	fieldErrors := map[string]string{}
	if year == "" {
		fieldErrors["year"] = "required"
	}
	if title == "" {
		fieldErrors["title"] = "required"
	}
	if len(fieldErrors) > 0 {
		return store.JourneyEntry{}, ValidationError("year and title are required", fieldErrors)
	}
	entry, err := s.content.InsertJourney(ctx, store.JourneyEntry{
		Year:        year,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
	})
	if err != nil {
		return store.JourneyEntry{}, storeError(err, "journey entry")
	}
	return entry, nil
}

func (s *Service) DeleteJourney(ctx context.Context, secret string, entryID int64) error {
	if err := s.authorize(secret); err != nil {
		return err
	}
	if err := s.content.DeleteJourney(ctx, entryID); err != nil {
		return storeError(err, "journey entry")
	}
	return nil
}

// Documents

func (s *Service) ListDocuments(ctx context.Context) ([]store.Document, error) {
	docs, err := s.content.ListDocuments(ctx)
	if err != nil {
		return nil, storeError(err, "documents")
	}
	return docs, nil
}

func (s *Service) UploadDocument(ctx context.Context, secret string, upload DocumentUpload) (store.Document, error) {
	if err := s.authorize(secret); err != nil {
		return store.Document{}, err
	}
	title := strings.TrimSpace(upload.Title)
	if title == "" {
		return store.Document{}, ValidationError("title is required", map[string]string{"title": "required"})
	}
	if upload.Body == nil {
		return store.Document{}, ValidationError("file is required", map[string]string{"file": "required"})
	}
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	obj, err := s.media.Put(ctx, "documents", upload.Filename, contentType, upload.Body, upload.Size)
	if err != nil {
		return store.Document{}, mediaError(err)
	}

	doc, err := s.content.InsertDocument(ctx, store.Document{
		Title:       title,
		FileURL:     obj.URL,
		ObjectKey:   obj.Key,
		ContentType: contentType,
	})
	if err != nil {
		s.discardObject(ctx, obj.Key)
		return store.Document{}, storeError(err, "document")
	}
	return doc, nil
}

func (s *Service) DeleteDocument(ctx context.Context, secret string, documentID int64) error {
	if err := s.authorize(secret); err != nil {
		return err
	}
	doc, err := s.content.DeleteDocument(ctx, documentID)
	if err != nil {
		return storeError(err, "document")
	}
	if doc.ObjectKey != "" {
		if err := s.media.Remove(ctx, doc.ObjectKey); err != nil {
			log.Printf("media: remove %s: %v", doc.ObjectKey, err)
		}
	}
	return nil
}

// Follow requests and contact messages

func (s *Service) SubmitFollow(ctx context.Context, name, email string) (store.FollowRequest, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	fieldErrors := map[string]string{}
	if name == "" {
		fieldErrors["name"] = "required"
	}
	if !validEmail(email) {
		fieldErrors["email"] = "invalid"
	}
	if len(fieldErrors) > 0 {
		return store.FollowRequest{}, ValidationError("name and a valid email are required", fieldErrors)
	}

	follow, err := s.content.InsertFollow(ctx, store.FollowRequest{Name: name, Email: email})
	if errors.Is(err, store.ErrConflict) {
		return store.FollowRequest{}, domainError(http.StatusConflict, "ALREADY_FOLLOWING", "This email is already following", nil)
	}
	if err != nil {
		return store.FollowRequest{}, storeError(err, "follow request")
	}

	s.sendNotification("follow", func(n notifier) error { return n.NotifyFollow(follow.Name, follow.Email) })
	return follow, nil
}

func (s *Service) SubmitContact(ctx context.Context, name, email, message string) (store.ContactMessage, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	message = strings.TrimSpace(message)
	fieldErrors := map[string]string{}
	if name == "" {
		fieldErrors["name"] = "required"
	}
	if !validEmail(email) {
		fieldErrors["email"] = "invalid"
	}
	if message == "" {
		fieldErrors["message"] = "required"
	} else if utf8.RuneCountInString(message) > maxMessageLength {
		fieldErrors["message"] = "too long"
	}
	if len(fieldErrors) > 0 {
		return store.ContactMessage{}, ValidationError("name, email and message are required", fieldErrors)
	}

	msg, err := s.content.InsertContact(ctx, store.ContactMessage{Name: name, Email: email, Message: message})
	if err != nil {
		return store.ContactMessage{}, storeError(err, "contact message")
	}

	s.sendNotification("contact", func(n notifier) error { return n.NotifyContact(msg.Name, msg.Email, msg.Message) })
	return msg, nil
}

func (s *Service) ListFollows(ctx context.Context, secret string) ([]store.FollowRequest, error) {
	if err := s.authorize(secret); err != nil {
		return nil, err
	}
	follows, err := s.content.ListFollows(ctx)
	if err != nil {
		return nil, storeError(err, "follow requests")
	}
	return follows, nil
}

func (s *Service) DeleteFollow(ctx context.Context, secret string, followID int64) error {
	if err := s.authorize(secret); err != nil {
		return err
	}
	if err := s.content.DeleteFollow(ctx, followID); err != nil {
		return storeError(err, "follow request")
	}
	return nil
}

func (s *Service) ListContacts(ctx context.Context, secret string) ([]store.ContactMessage, error) {
	if err := s.authorize(secret); err != nil {
		return nil, err
	}
	msgs, err := s.content.ListContacts(ctx)
	if err != nil {
		return nil, storeError(err, "contact messages")
	}
	return msgs, nil
}

func (s *Service) DeleteContact(ctx context.Context, secret string, contactID int64) error {
	if err := s.authorize(secret); err != nil {
		return err
	}
	if err := s.content.DeleteContact(ctx, contactID); err != nil {
		return storeError(err, "contact message")
	}
	return nil
}

// Moderation

func (s *Service) BlockVisitor(ctx context.Context, secret, name string) error {
	if err := s.authorize(secret); err != nil {
		return err
	}
	visitor, err := parseVisitor(name)
	if err != nil {
		return err
	}
	if err := s.moderation.Block(ctx, visitor.Name); err != nil {
		return storeError(err, "block")
	}
	log.Printf("moderation: blocked %q", visitor.Name)
	return nil
}

func (s *Service) UnblockVisitor(ctx context.Context, secret, name string) error {
	if err := s.authorize(secret); err != nil {
		return err
	}
	visitor, err := parseVisitor(name)
	if err != nil {
		return err
	}
	if err := s.moderation.Unblock(ctx, visitor.Name); err != nil {
		return storeError(err, "block")
	}
	log.Printf("moderation: unblocked %q", visitor.Name)
	return nil
}

func (s *Service) ListBlocked(ctx context.Context, secret string) ([]store.BlockEntry, error) {
	if err := s.authorize(secret); err != nil {
		return nil, err
	}
	entries, err := s.moderation.ListBlocked(ctx)
	if err != nil {
		return nil, storeError(err, "blocks")
	}
	return entries, nil
}

// Assistant

// Chat forwards a visitor prompt. Provider failures never surface as domain
// errors beyond a retryable TransientError.
func (s *Service) Chat(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ValidationError("prompt is required", map[string]string{"prompt": "required"})
	}
	if utf8.RuneCountInString(prompt) > maxPromptLength {
		return "", ValidationError("prompt is too long", map[string]string{"prompt": "too long"})
	}
	if s.assistant == nil {
		return "", TransientError("Assistant is unavailable")
	}
	reply, err := s.assistant.Complete(ctx, prompt)
	if err != nil {
		log.Printf("assistant: %v", err)
		return "", TransientError("Assistant is unavailable")
	}
	return reply, nil
}

// resolveImage uploads inline data URLs and passes plain URLs through. The
// returned key is empty unless an object was stored; the caller owns it until
// the record referencing it is written.
func (s *Service) resolveImage(ctx context.Context, prefix, value string) (imageURL, key string, err error) {
	value = strings.TrimSpace(value)
	if !media.IsDataURL(value) {
		return value, "", nil
	}
	contentType, data, err := media.DecodeDataURL(value)
	if err != nil {
		return "", "", mediaError(err)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", ValidationError("imageUrl must be an image", map[string]string{"imageUrl": "not an image"})
	}
	obj, err := s.media.Put(ctx, prefix, "", contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", "", mediaError(err)
	}
	return obj.URL, obj.Key, nil
}

// discardObject removes an upload whose record was never written.
func (s *Service) discardObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.media.Remove(context.WithoutCancel(ctx), key); err != nil {
		log.Printf("media: remove orphaned %s: %v", key, err)
	}
}

func (s *Service) sendNotification(kind string, send func(notifier) error) {
	if s.notifier == nil || !s.notifier.IsConfigured() {
		return
	}
	n := s.notifier
	s.notify(func() {
		if err := send(n); err != nil {
			log.Printf("email: %s notification failed: %v", kind, err)
		}
	})
}

func parseVisitor(name string) (identity.Visitor, error) {
	visitor, err := identity.Parse(name)
	if err != nil {
		return identity.Visitor{}, ValidationError(err.Error(), map[string]string{"name": err.Error()})
	}
	return visitor, nil
}

func storeError(err error, what string) error {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return NotFoundError(capitalize(what) + " not found")
	}
	return fmt.Errorf("%s: %w", what, err)
}

func mediaError(err error) error {
	switch {
	case errors.Is(err, media.ErrUnavailable):
		return domainError(http.StatusServiceUnavailable, "MEDIA_UNAVAILABLE", "Media storage is not configured", nil)
	case errors.Is(err, media.ErrTooLarge):
		return ValidationError("upload is too large", map[string]any{"maxBytes": media.MaxUploadBytes})
	case errors.Is(err, media.ErrBadDataURL):
		return ValidationError("imageUrl is not a valid data URL", map[string]string{"imageUrl": "invalid"})
	}
	return fmt.Errorf("media: %w", err)
}

func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return defaultCategory
	}
	return category
}

func validEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func capitalize(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

func postRecord(post store.Post) search.PostRecord {
	return search.PostRecord{
		ID:          strconv.FormatInt(post.ID, 10),
		Title:       post.Title,
		Category:    post.Category,
		Description: post.Description,
	}
}
