package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"portfolio/api/internal/auth"
	"portfolio/api/internal/media"
	"portfolio/api/internal/search"
	"portfolio/api/internal/store"
)

const testSecret = "s3cret"

type fakeMedia struct {
	mu      sync.Mutex
	puts    []string
	removed []string
}

func (f *fakeMedia) Put(_ context.Context, prefix, filename, contentType string, r io.Reader, _ int64) (media.Object, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return media.Object{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%s/obj-%d", prefix, len(f.puts)+1)
	f.puts = append(f.puts, key)
	return media.Object{Key: key, URL: "http://media.test/portfolio/" + key, ContentType: contentType, Size: int64(len(body))}, nil
}

func (f *fakeMedia) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, key)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	contacts []string
	follows  []string
	failWith error
}

func (f *fakeNotifier) IsConfigured() bool { return true }
func (f *fakeNotifier) NotifyContact(name, email, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts = append(f.contacts, name+"|"+email+"|"+message)
	return f.failWith
}
func (f *fakeNotifier) NotifyFollow(name, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.follows = append(f.follows, name+"|"+email)
	return f.failWith
}

type fakeAssistant struct {
	completeFn func(context.Context, string) (string, error)
}

func (f *fakeAssistant) Complete(ctx context.Context, prompt string) (string, error) {
	return f.completeFn(ctx, prompt)
}

type fakeModeration struct {
	*store.MemoryStore
	isBlockedFn func(context.Context, string) (bool, error)
	pingFn      func(context.Context) error
}

func (f *fakeModeration) IsBlocked(ctx context.Context, name string) (bool, error) {
	if f.isBlockedFn != nil {
		return f.isBlockedFn(ctx, name)
	}
	return f.MemoryStore.IsBlocked(ctx, name)
}

func (f *fakeModeration) Ping(ctx context.Context) error {
	if f.pingFn != nil {
		return f.pingFn(ctx)
	}
	return nil
}

func newTestService(deps Deps) *Service {
	if deps.Gate == nil {
		deps.Gate = auth.NewGate(testSecret, "")
	}
	mem := store.NewMemoryStore()
	if deps.Content == nil {
		deps.Content = mem
	}
	if deps.Moderation == nil {
		deps.Moderation = mem
	}
	svc := New(deps)
	svc.notify = func(fn func()) { fn() }
	return svc
}

func ptr(value string) *string {
	return &value
}

func searchQuery(text string) search.Query {
	return search.Query{Text: text}
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError %s, got %v", code, err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, domainErr.Code, domainErr.Message)
	}
}

func mustCreatePost(t *testing.T, svc *Service, title string) store.Post {
	t.Helper()
	post, err := svc.CreatePost(context.Background(), testSecret, PostInput{Title: title, Description: "v1", Category: "Tech"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	return post
}

func TestLikeScenarioWithBlocking(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(Deps{})

	post := mustCreatePost(t, svc, "Launch")
	if post.ID != 1 || post.Likes != 0 {
		t.Fatalf("expected id=1 likes=0, got id=%d likes=%d", post.ID, post.Likes)
	}

	likes, err := svc.LikePost(ctx, 1, "Ann")
	if err != nil || likes != 1 {
		t.Fatalf("first like: likes=%d err=%v", likes, err)
	}

	if err := svc.BlockVisitor(ctx, testSecret, "Ann"); err != nil {
		t.Fatalf("BlockVisitor: %v", err)
	}

	_, err = svc.LikePost(ctx, 1, "Ann")
	assertDomainCode(t, err, "BLOCKED")

	current, _ := svc.GetPost(ctx, 1)
	if current.Likes != 1 {
		t.Fatalf("blocked like changed count to %d", current.Likes)
	}

	likes, err = svc.LikePost(ctx, 1, "Ben")
	if err != nil || likes != 2 {
		t.Fatalf("Ben like: likes=%d err=%v", likes, err)
	}
}

func TestCommentScenarioKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(Deps{})
	mustCreatePost(t, svc, "Launch")

	first, err := svc.AddComment(ctx, 1, "Ann", "hello")
	if err != nil {
		t.Fatalf("AddComment Ann: %v", err)
	}
	second, err := svc.AddComment(ctx, 1, "Ben", "hi back")
	if err != nil {
		t.Fatalf("AddComment Ben: %v", err)
	}
	if first.Position != 0 || second.Position != 1 {
		t.Fatalf("positions = %d, %d", first.Position, second.Position)
	}
	if first.AuthorInitial != "A" {
		t.Fatalf("initial = %q", first.AuthorInitial)
	}

	comments, err := svc.ListComments(ctx, 1)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 2 || comments[0].Author != "Ann" || comments[1].Author != "Ben" {
		t.Fatalf("unexpected comments: %+v", comments)
	}
}

func TestBlockedVisitorCannotCommentButHistoryStays(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(Deps{})
	mustCreatePost(t, svc, "Launch")

	if _, err := svc.AddComment(ctx, 1, "Ann", "before"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if err := svc.BlockVisitor(ctx, testSecret, "Ann"); err != nil {
		t.Fatalf("BlockVisitor: %v", err)
	}

	_, err := svc.AddComment(ctx, 1, "Ann", "after")
	assertDomainCode(t, err, "BLOCKED")

	comments, _ := svc.ListComments(ctx, 1)
	if len(comments) != 1 || comments[0].Content != "before" {
		t.Fatalf("expected only the earlier comment, got %+v", comments)
	}

	// Names match exactly, so a different case is a different visitor.
	if _, err := svc.AddComment(ctx, 1, "ann", "lowercase"); err != nil {
		t.Fatalf("AddComment ann: %v", err)
	}
}

func TestUnblockRestoresEngagement(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(Deps{})
	mustCreatePost(t, svc, "Launch")

	_ = svc.BlockVisitor(ctx, testSecret, "Ann")
	_ = svc.BlockVisitor(ctx, testSecret, "Ann")
	if err := svc.UnblockVisitor(ctx, testSecret, " Ann "); err != nil {
		t.Fatalf("UnblockVisitor: %v", err)
	}

	if _, err := svc.LikePost(ctx, 1, "Ann"); err != nil {
		t.Fatalf("like after unblock: %v", err)
	}
	if _, err := svc.AddComment(ctx, 1, "Ann", "back"); err != nil {
		t.Fatalf("comment after unblock: %v", err)
	}
	blocked, _ := svc.ListBlocked(ctx, testSecret)
	if len(blocked) != 0 {
		t.Fatalf("expected empty block list, got %+v", blocked)
	}
}

func TestConcurrentLikesFromDistinctVisitors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(Deps{})
	mustCreatePost(t, svc, "Launch")

	const visitors = 150
	var wg sync.WaitGroup
	errs := make(chan error, visitors)
	for i := 0; i < visitors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.LikePost(ctx, 1, fmt.Sprintf("visitor-%d", i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("LikePost: %v", err)
	}

	post, _ := svc.GetPost(ctx, 1)
	if post.Likes != visitors {
		t.Fatalf("expected %d likes, got %d", visitors, post.Likes)
	}
}

func TestDeletePostCascadesComments(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(Deps{})
	mustCreatePost(t, svc, "Launch")
	_, _ = svc.AddComment(ctx, 1, "Ann", "hello")

	if err := svc.DeletePost(ctx, testSecret, 1); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	_, err := svc.ListComments(ctx, 1)
	assertDomainCode(t, err, "NOT_FOUND")

	err = svc.DeletePost(ctx, testSecret, 1)
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestUnauthorizedUpdateLeavesPostUnchanged(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(Deps{})
	mustCreatePost(t, svc, "Launch")

	title := "X"
	_, err := svc.UpdatePost(ctx, "wrong", 1, PostUpdate{Title: &title})
	assertDomainCode(t, err, "UNAUTHORIZED")

	post, _ := svc.GetPost(ctx, 1)
	if post.Title != "Launch" {
		t.Fatalf("title changed to %q", post.Title)
	}
}

// The service below has no stores at all; any store access would panic.
func TestAdminOperationsAuthorizeBeforeStoreAccess(t *testing.T) {
	ctx := context.Background()
	svc := New(Deps{Gate: auth.NewGate(testSecret, "")})

	title := "X"
	calls := map[string]func() error{
		"CreatePost": func() error { _, err := svc.CreatePost(ctx, "bad", PostInput{Title: "t", Description: "d"}); return err },
		"UpdatePost": func() error { _, err := svc.UpdatePost(ctx, "bad", 1, PostUpdate{Title: &title}); return err },
		"DeletePost": func() error { return svc.DeletePost(ctx, "bad", 1) },
		"SaveProfile": func() error {
			_, err := svc.SaveProfile(ctx, "bad", ProfileInput{Name: "n"})
			return err
		},
		"CreateJourney": func() error {
			_, err := svc.CreateJourney(ctx, "bad", JourneyInput{Year: "2024", Title: "t"})
			return err
		},
		"DeleteJourney": func() error { return svc.DeleteJourney(ctx, "bad", 1) },
		"UploadDocument": func() error {
			_, err := svc.UploadDocument(ctx, "bad", DocumentUpload{Title: "t", Body: strings.NewReader("x")})
			return err
		},
		"DeleteDocument": func() error { return svc.DeleteDocument(ctx, "bad", 1) },
		"ListFollows":    func() error { _, err := svc.ListFollows(ctx, "bad"); return err },
		"DeleteFollow":   func() error { return svc.DeleteFollow(ctx, "bad", 1) },
		"ListContacts":   func() error { _, err := svc.ListContacts(ctx, "bad"); return err },
		"DeleteContact":  func() error { return svc.DeleteContact(ctx, "bad", 1) },
		"BlockVisitor":   func() error { return svc.BlockVisitor(ctx, "bad", "Ann") },
		"UnblockVisitor": func() error { return svc.UnblockVisitor(ctx, "bad", "Ann") },
		"ListBlocked":    func() error { _, err := svc.ListBlocked(ctx, "bad"); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assertDomainCode(t, call(), "UNAUTHORIZED")
		})
	}
}

func TestUnconfiguredGateRejectsEverything(t *testing.T) {
	svc := newTestService(Deps{Gate: auth.NewGate("", "")})
	_, err := svc.CreatePost(context.Background(), "", PostInput{Title: "t", Description: "d"})
	assertDomainCode(t, err, "UNAUTHORIZED")
	if svc.AdminLogin("") {
		t.Fatal("empty secret must not log in")
	}
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(Deps{})

	_, err := svc.CreatePost(ctx, testSecret, PostInput{Title: "  ", Description: "d"})
	assertDomainCode(t, err, "VALIDATION_ERROR")
	_, err = svc.CreatePost(ctx, testSecret, PostInput{Title: "t"})
	assertDomainCode(t, err, "VALIDATION_ERROR")

	post, err := svc.CreatePost(ctx, testSecret, PostInput{Title: " Notes ", Description: "d"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.Title != "Notes" || post.Category != defaultCategory {
		t.Fatalf("unexpected post: %+v", post)
	}

	empty := ""
	_, err = svc.UpdatePost(ctx, testSecret, post.ID, PostUpdate{Description: &empty})
	assertDomainCode(t, err, "VALIDATION_ERROR")

	title := "Other"
	_, err = svc.UpdatePost(ctx, testSecret, 999, PostUpdate{Title: &title})
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestUpdatePostIsPartial(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(Deps{})
	post := mustCreatePost(t, svc, "Launch")
	_, _ = svc.LikePost(ctx, post.ID, "Ann")

	category := "Research"
	updated, err := svc.UpdatePost(ctx, testSecret, post.ID, PostUpdate{Category: &category})
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if updated.Title != "Launch" || updated.Description != "v1" || updated.Category != "Research" || updated.Likes != 1 {
		t.Fatalf("unexpected post after update: %+v", updated)
	}
}

func TestEngagementRequiresVisitorName(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(Deps{})
	mustCreatePost(t, svc, "Launch")

	_, err := svc.LikePost(ctx, 1, "   ")
	assertDomainCode(t, err, "VALIDATION_ERROR")
	_, err = svc.AddComment(ctx, 1, "", "hello")
	assertDomainCode(t, err, "VALIDATION_ERROR")
	_, err = svc.AddComment(ctx, 1, "Ann", "  ")
	assertDomainCode(t, err, "VALIDATION_ERROR")
	_, err = svc.AddComment(ctx, 1, "Ann", strings.Repeat("x", maxCommentLength+1))
	assertDomainCode(t, err, "VALIDATION_ERROR")

	_, err = svc.LikePost(ctx, 42, "Ann")
	assertDomainCode(t, err, "NOT_FOUND")
	_, err = svc.AddComment(ctx, 42, "Ann", "hello")
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestModerationFailureIsTransient(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	svc := newTestService(Deps{
		Content: mem,
		Moderation: &fakeModeration{
			MemoryStore: mem,
			isBlockedFn: func(context.Context, string) (bool, error) {
				return false, errors.New("redis: connection refused")
			},
		},
	})
	mustCreatePost(t, svc, "Launch")

	_, err := svc.LikePost(ctx, 1, "Ann")
	status, code, _, _ := mapError(ctx, err)
	if status != http.StatusServiceUnavailable || code != "TRANSIENT_ERROR" {
		t.Fatalf("expected transient error, got %d %s", status, code)
	}
	post, _ := svc.GetPost(ctx, 1)
	if post.Likes != 0 {
		t.Fatalf("likes changed to %d", post.Likes)
	}
}

func TestCreatePostUploadsInlineImage(t *testing.T) {
	ctx := context.Background()
	fm := &fakeMedia{}
	svc := newTestService(Deps{Media: fm})

	post, err := svc.CreatePost(ctx, testSecret, PostInput{
		Title:       "Photo",
		Description: "d",
		ImageURL:    "data:image/png;base64,aGVsbG8=",
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.ImageURL != "http://media.test/portfolio/posts/obj-1" {
		t.Fatalf("image url = %q", post.ImageURL)
	}

	plain, err := svc.CreatePost(ctx, testSecret, PostInput{Title: "Link", Description: "d", ImageURL: "https://img.example.com/a.png"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if plain.ImageURL != "https://img.example.com/a.png" || len(fm.puts) != 1 {
		t.Fatalf("plain URLs must pass through, got %q (%d uploads)", plain.ImageURL, len(fm.puts))
	}

	_, err = svc.CreatePost(ctx, testSecret, PostInput{Title: "Bad", Description: "d", ImageURL: "data:text/plain;base64,aGk="})
	assertDomainCode(t, err, "VALIDATION_ERROR")
}

func TestInlineImageWithoutMediaStorage(t *testing.T) {
	svc := newTestService(Deps{})
	_, err := svc.CreatePost(context.Background(), testSecret, PostInput{
		Title:       "Photo",
		Description: "d",
		ImageURL:    "data:image/png;base64,aGVsbG8=",
	})
	assertDomainCode(t, err, "MEDIA_UNAVAILABLE")
}

type fakeContent struct {
	*store.MemoryStore
	listPostsFn   func(context.Context) ([]store.Post, error)
	insertPostFn  func(context.Context, store.Post) (store.Post, error)
	saveProfileFn func(context.Context, store.Profile) (store.Profile, error)
}

func (f *fakeContent) ListPosts(ctx context.Context) ([]store.Post, error) {
	if f.listPostsFn != nil {
		return f.listPostsFn(ctx)
	}
	return f.MemoryStore.ListPosts(ctx)
}

func (f *fakeContent) InsertPost(ctx context.Context, post store.Post) (store.Post, error) {
	if f.insertPostFn != nil {
		return f.insertPostFn(ctx, post)
	}
	return f.MemoryStore.InsertPost(ctx, post)
}

func (f *fakeContent) SaveProfile(ctx context.Context, profile store.Profile) (store.Profile, error) {
	if f.saveProfileFn != nil {
		return f.saveProfileFn(ctx, profile)
	}
	return f.MemoryStore.SaveProfile(ctx, profile)
}

func TestInlineImageIsRemovedWhenWriteFails(t *testing.T) {
	ctx := context.Background()
	const pixel = "data:image/png;base64,aGVsbG8="
	fm := &fakeMedia{}
	content := &fakeContent{
		MemoryStore: store.NewMemoryStore(),
		insertPostFn: func(context.Context, store.Post) (store.Post, error) {
			return store.Post{}, errors.New("insert failed")
		},
		saveProfileFn: func(context.Context, store.Profile) (store.Profile, error) {
			return store.Profile{}, errors.New("upsert failed")
		},
	}
	svc := newTestService(Deps{Content: content, Media: fm})

	_, err := svc.UpdatePost(ctx, testSecret, 999, PostUpdate{ImageURL: ptr(pixel)})
	assertDomainCode(t, err, "NOT_FOUND")

	if _, err := svc.CreatePost(ctx, testSecret, PostInput{Title: "Photo", Description: "d", ImageURL: pixel}); err == nil {
		t.Fatal("CreatePost should fail when the insert fails")
	}
	if _, err := svc.SaveProfile(ctx, testSecret, ProfileInput{Name: "Deep", ImageURL: pixel}); err == nil {
		t.Fatal("SaveProfile should fail when the upsert fails")
	}

	if len(fm.puts) != 3 {
		t.Fatalf("expected 3 uploads, got %v", fm.puts)
	}
	want := []string{"posts/obj-1", "posts/obj-2", "profile/obj-3"}
	if strings.Join(fm.removed, ",") != strings.Join(want, ",") {
		t.Fatalf("removed = %v, want %v", fm.removed, want)
	}
}

func TestInlineImageIsKeptWhenWriteSucceeds(t *testing.T) {
	ctx := context.Background()
	fm := &fakeMedia{}
	svc := newTestService(Deps{Media: fm})
	post := mustCreatePost(t, svc, "Launch")

	updated, err := svc.UpdatePost(ctx, testSecret, post.ID, PostUpdate{ImageURL: ptr("data:image/png;base64,aGVsbG8=")})
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if updated.ImageURL != "http://media.test/portfolio/posts/obj-1" {
		t.Fatalf("image url = %q", updated.ImageURL)
	}
	if len(fm.removed) != 0 {
		t.Fatalf("nothing should be removed, got %v", fm.removed)
	}
}

func TestDocumentUploadAndDeleteRemovesObject(t *testing.T) {
	ctx := context.Background()
	fm := &fakeMedia{}
	svc := newTestService(Deps{Media: fm})

	doc, err := svc.UploadDocument(ctx, testSecret, DocumentUpload{
		Title:       "CV",
		Filename:    "cv.pdf",
		ContentType: "application/pdf",
		Size:        3,
		Body:        strings.NewReader("pdf"),
	})
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	if doc.ObjectKey != "documents/obj-1" || doc.FileURL == "" {
		t.Fatalf("unexpected document: %+v", doc)
	}

	if err := svc.DeleteDocument(ctx, testSecret, doc.ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if len(fm.removed) != 1 || fm.removed[0] != "documents/obj-1" {
		t.Fatalf("removed = %v", fm.removed)
	}
	assertDomainCode(t, svc.DeleteDocument(ctx, testSecret, doc.ID), "NOT_FOUND")
}

func TestFollowAndContactNotify(t *testing.T) {
	ctx := context.Background()
	fn := &fakeNotifier{}
	svc := newTestService(Deps{Notifier: fn})

	if _, err := svc.SubmitFollow(ctx, "Ada", "ada@example.com"); err != nil {
		t.Fatalf("SubmitFollow: %v", err)
	}
	_, err := svc.SubmitFollow(ctx, "Ada again", "ADA@example.com")
	assertDomainCode(t, err, "ALREADY_FOLLOWING")
	_, err = svc.SubmitFollow(ctx, "Ada", "not-an-email")
	assertDomainCode(t, err, "VALIDATION_ERROR")

	if _, err := svc.SubmitContact(ctx, "Bo", "bo@example.com", "Hello there"); err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}
	_, err = svc.SubmitContact(ctx, "Bo", "bo@example.com", " ")
	assertDomainCode(t, err, "VALIDATION_ERROR")

	if len(fn.follows) != 1 || fn.follows[0] != "Ada|ada@example.com" {
		t.Fatalf("follow notifications = %v", fn.follows)
	}
	if len(fn.contacts) != 1 || fn.contacts[0] != "Bo|bo@example.com|Hello there" {
		t.Fatalf("contact notifications = %v", fn.contacts)
	}

	follows, err := svc.ListFollows(ctx, testSecret)
	if err != nil || len(follows) != 1 {
		t.Fatalf("ListFollows: %v %v", follows, err)
	}
	if err := svc.DeleteContact(ctx, testSecret, 1); err != nil {
		t.Fatalf("DeleteContact: %v", err)
	}
}

func TestNotificationFailureDoesNotFailSubmission(t *testing.T) {
	svc := newTestService(Deps{Notifier: &fakeNotifier{failWith: errors.New("smtp down")}})
	if _, err := svc.SubmitContact(context.Background(), "Bo", "bo@example.com", "hi"); err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}
}

func TestJourneyLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(Deps{})

	_, err := svc.CreateJourney(ctx, testSecret, JourneyInput{Title: "Started"})
	assertDomainCode(t, err, "VALIDATION_ERROR")

	entry, err := svc.CreateJourney(ctx, testSecret, JourneyInput{Year: "2021", Title: "Started"})
	if err != nil {
		t.Fatalf("CreateJourney: %v", err)
	}
	entries, _ := svc.ListJourney(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if err := svc.DeleteJourney(ctx, testSecret, entry.ID); err != nil {
		t.Fatalf("DeleteJourney: %v", err)
	}
	assertDomainCode(t, svc.DeleteJourney(ctx, testSecret, entry.ID), "NOT_FOUND")
}

func TestSaveProfileIsWholesale(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(Deps{})

	if _, err := svc.SaveProfile(ctx, testSecret, ProfileInput{Name: "Sam", Bio: "builder", SubBio: "sub"}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if _, err := svc.SaveProfile(ctx, testSecret, ProfileInput{Name: "Sam"}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	profile, _ := svc.GetProfile(ctx)
	if profile.Bio != "" || profile.SubBio != "" {
		t.Fatalf("expected wholesale replace, got %+v", profile)
	}
	_, err := svc.SaveProfile(ctx, testSecret, ProfileInput{})
	assertDomainCode(t, err, "VALIDATION_ERROR")
}

func TestSearchPostsUsesIndex(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(Deps{})
	mustCreatePost(t, svc, "Launch day")
	mustCreatePost(t, svc, "Research notes")

	resp, err := svc.SearchPosts(ctx, searchQuery("research"))
	if err != nil {
		t.Fatalf("SearchPosts: %v", err)
	}
	if resp.Total != 1 || resp.Results[0].ID != 2 {
		t.Fatalf("unexpected search response: %+v", resp)
	}

	_ = svc.DeletePost(ctx, testSecret, 2)
	resp, _ = svc.SearchPosts(ctx, searchQuery("research"))
	if resp.Total != 0 {
		t.Fatalf("deleted post still indexed: %+v", resp)
	}

	_, err = svc.SearchPosts(ctx, searchQuery(" "))
	assertDomainCode(t, err, "VALIDATION_ERROR")
}

func TestBootstrapReindexesExistingPosts(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	if _, err := mem.InsertPost(ctx, store.Post{Title: "Seeded", Description: "from db", Category: "Tech"}); err != nil {
		t.Fatalf("InsertPost: %v", err)
	}
	svc := newTestService(Deps{Content: mem, Moderation: mem})

	if err := svc.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	resp, _ := svc.SearchPosts(ctx, searchQuery("seeded"))
	if resp.Total != 1 {
		t.Fatalf("expected seeded post in index, got %+v", resp)
	}
}

func TestChat(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(Deps{})
	_, err := svc.Chat(ctx, "hello")
	assertDomainCode(t, err, "TRANSIENT_ERROR")

	svc = newTestService(Deps{Assistant: &fakeAssistant{completeFn: func(_ context.Context, prompt string) (string, error) {
		return "echo: " + prompt, nil
	}}})
	reply, err := svc.Chat(ctx, "  hello ")
	if err != nil || reply != "echo: hello" {
		t.Fatalf("Chat = %q, %v", reply, err)
	}
	_, err = svc.Chat(ctx, "")
	assertDomainCode(t, err, "VALIDATION_ERROR")

	svc = newTestService(Deps{Assistant: &fakeAssistant{completeFn: func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	}}})
	_, err = svc.Chat(ctx, "hello")
	assertDomainCode(t, err, "TRANSIENT_ERROR")
}
