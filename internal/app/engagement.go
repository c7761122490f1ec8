package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"portfolio/api/internal/identity"
	"portfolio/api/internal/store"
)

// LikePost increments a post's like counter on behalf of a visitor and
// returns the new count. Blocked visitors never change the counter.
func (s *Service) LikePost(ctx context.Context, postID int64, name string) (int64, error) {
	if _, err := s.admitVisitor(ctx, name); err != nil {
		return 0, err
	}
	likes, err := s.content.IncrementLikes(ctx, postID)
	if err != nil {
		return 0, storeError(err, "post")
	}
	return likes, nil
}

// AddComment appends a comment attributed to the visitor. The initial is
// derived from the name; whatever the client sent is ignored.
func (s *Service) AddComment(ctx context.Context, postID int64, name, text string) (store.Comment, error) {
	visitor, err := s.admitVisitor(ctx, name)
	if err != nil {
		return store.Comment{}, err
	}

	content := strings.TrimSpace(text)
	if content == "" {
		return store.Comment{}, ValidationError("text is required", map[string]string{"text": "required"})
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return store.Comment{}, ValidationError("text is too long", map[string]any{"maxLength": maxCommentLength})
	}

	comment, err := s.content.InsertComment(ctx, store.Comment{
		PostID:        postID,
		Author:        visitor.Name,
		AuthorInitial: visitor.Initial,
		Content:       content,
	})
	if err != nil {
		return store.Comment{}, storeError(err, "post")
	}
	return comment, nil
}

// ListComments returns a post's comments in insertion order, including those
// written by visitors who were blocked afterwards.
func (s *Service) ListComments(ctx context.Context, postID int64) ([]store.Comment, error) {
	comments, err := s.content.ListComments(ctx, postID)
	if err != nil {
		return nil, storeError(err, "post")
	}
	return comments, nil
}

// admitVisitor validates the claimed name and rejects moderated visitors.
// The check happens at mutation time only.
func (s *Service) admitVisitor(ctx context.Context, name string) (identity.Visitor, error) {
	visitor, err := parseVisitor(name)
	if err != nil {
		return identity.Visitor{}, err
	}
	blocked, err := s.moderation.IsBlocked(ctx, visitor.Name)
	if err != nil {
		return identity.Visitor{}, storeError(err, "moderation")
	}
	if blocked {
		return identity.Visitor{}, BlockedError(visitor.Name)
	}
	return visitor, nil
}
