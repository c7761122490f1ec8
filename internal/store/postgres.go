package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const postColumns = `id, title, category, description, image_url, likes, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var post Post
	err := row.Scan(&post.ID, &post.Title, &post.Category, &post.Description, &post.ImageURL, &post.Likes, &post.CreatedAt)
	return post, err
}

func (s *PostgresStore) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	items := make([]Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetPost(ctx context.Context, postID int64) (Post, error) {
	post, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id=$1`, postID))
	if err != nil {
		return Post{}, translate(err)
	}
	return post, nil
}

func (s *PostgresStore) InsertPost(ctx context.Context, post Post) (Post, error) {
	created, err := scanPost(s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, category, description, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING `+postColumns,
		post.Title, post.Category, post.Description, post.ImageURL,
	))
	if err != nil {
		return Post{}, fmt.Errorf("insert post: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) UpdatePost(ctx context.Context, postID int64, patch PostPatch) (Post, error) {
	updated, err := scanPost(s.db.QueryRowContext(ctx, `
		UPDATE posts SET
			title = COALESCE($2::text, title),
			category = COALESCE($3::text, category),
			description = COALESCE($4::text, description),
			image_url = COALESCE($5::text, image_url)
		WHERE id=$1
		RETURNING `+postColumns,
		postID, patch.Title, patch.Category, patch.Description, patch.ImageURL,
	))
	if err != nil {
		return Post{}, translate(err)
	}
	return updated, nil
}

// DeletePost removes the post; its comments go with it through ON DELETE CASCADE.
func (s *PostgresStore) DeletePost(ctx context.Context, postID int64) error {
	return s.deleteByID(ctx, "posts", postID)
}

// IncrementLikes bumps the counter in one statement; the row lock taken by
// UPDATE serializes concurrent likes on the same post.
func (s *PostgresStore) IncrementLikes(ctx context.Context, postID int64) (int64, error) {
	var likes int64
	err := s.db.QueryRowContext(ctx, `UPDATE posts SET likes = likes + 1 WHERE id=$1 RETURNING likes`, postID).Scan(&likes)
	if err != nil {
		return 0, translate(err)
	}
	return likes, nil
}

func (s *PostgresStore) InsertComment(ctx context.Context, comment Comment) (Comment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Comment{}, fmt.Errorf("begin comment tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Locking the parent row orders concurrent inserts so positions never collide.
	var locked int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM posts WHERE id=$1 FOR UPDATE`, comment.PostID).Scan(&locked); err != nil {
		return Comment{}, translate(err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, author, author_initial, content, position)
		SELECT $1, $2, $3, $4, COALESCE(MAX(position) + 1, 0)
		FROM comments
		WHERE post_id=$1
		RETURNING id, position, created_at
	`, comment.PostID, comment.Author, comment.AuthorInitial, comment.Content).Scan(&comment.ID, &comment.Position, &comment.CreatedAt)
	if err != nil {
		return Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Comment{}, fmt.Errorf("commit comment: %w", err)
	}
	return comment, nil
}

func (s *PostgresStore) ListComments(ctx context.Context, postID int64) ([]Comment, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id=$1)`, postID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, author, author_initial, content, position, created_at
		FROM comments
		WHERE post_id=$1
		ORDER BY position ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	items := make([]Comment, 0)
	for rows.Next() {
		var item Comment
		if err := rows.Scan(&item.ID, &item.PostID, &item.Author, &item.AuthorInitial, &item.Content, &item.Position, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	err := s.db.QueryRowContext(ctx, `
		SELECT name, bio, sub_bio, image_url, updated_at FROM profile WHERE id=1
	`).Scan(&profile.Name, &profile.Bio, &profile.SubBio, &profile.ImageURL, &profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return profile, nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, profile Profile) (Profile, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO profile (id, name, bio, sub_bio, image_url, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name, bio=EXCLUDED.bio, sub_bio=EXCLUDED.sub_bio,
			image_url=EXCLUDED.image_url, updated_at=EXCLUDED.updated_at
		RETURNING updated_at
	`, profile.Name, profile.Bio, profile.SubBio, profile.ImageURL).Scan(&profile.UpdatedAt)
	if err != nil {
		return Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}

func (s *PostgresStore) ListJourney(ctx context.Context) ([]JourneyEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, year, title, description, created_at
		FROM journey_entries
		ORDER BY year DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list journey: %w", err)
	}
	defer rows.Close()

	items := make([]JourneyEntry, 0)
	for rows.Next() {
		var item JourneyEntry
		if err := rows.Scan(&item.ID, &item.Year, &item.Title, &item.Description, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journey entry: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journey: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertJourney(ctx context.Context, entry JourneyEntry) (JourneyEntry, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO journey_entries (year, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, entry.Year, entry.Title, entry.Description).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return JourneyEntry{}, fmt.Errorf("insert journey entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) DeleteJourney(ctx context.Context, entryID int64) error {
	return s.deleteByID(ctx, "journey_entries", entryID)
}

func (s *PostgresStore) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, file_url, object_key, content_type, created_at
		FROM documents
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	items := make([]Document, 0)
	for rows.Next() {
		var item Document
		if err := rows.Scan(&item.ID, &item.Title, &item.FileURL, &item.ObjectKey, &item.ContentType, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertDocument(ctx context.Context, doc Document) (Document, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO documents (title, file_url, object_key, content_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, doc.Title, doc.FileURL, doc.ObjectKey, doc.ContentType).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

// DeleteDocument returns the removed row so the caller can drop its media object.
func (s *PostgresStore) DeleteDocument(ctx context.Context, documentID int64) (Document, error) {
	var doc Document
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM documents WHERE id=$1
		RETURNING id, title, file_url, object_key, content_type, created_at
	`, documentID).Scan(&doc.ID, &doc.Title, &doc.FileURL, &doc.ObjectKey, &doc.ContentType, &doc.CreatedAt)
	if err != nil {
		return Document{}, translate(err)
	}
	return doc, nil
}

func (s *PostgresStore) InsertFollow(ctx context.Context, follow FollowRequest) (FollowRequest, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO follow_requests (name, email)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, follow.Name, follow.Email).Scan(&follow.ID, &follow.CreatedAt)
	if err != nil {
		return FollowRequest{}, translate(err)
	}
	return follow, nil
}

func (s *PostgresStore) ListFollows(ctx context.Context) ([]FollowRequest, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, created_at FROM follow_requests ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	defer rows.Close()

	items := make([]FollowRequest, 0)
	for rows.Next() {
		var item FollowRequest
		if err := rows.Scan(&item.ID, &item.Name, &item.Email, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan follow: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate follows: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) DeleteFollow(ctx context.Context, followID int64) error {
	return s.deleteByID(ctx, "follow_requests", followID)
}

func (s *PostgresStore) InsertContact(ctx context.Context, msg ContactMessage) (ContactMessage, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO contact_messages (name, email, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, msg.Name, msg.Email, msg.Message).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return ContactMessage{}, fmt.Errorf("insert contact message: %w", err)
	}
	return msg, nil
}

func (s *PostgresStore) ListContacts(ctx context.Context) ([]ContactMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, message, created_at FROM contact_messages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	items := make([]ContactMessage, 0)
	for rows.Next() {
		var item ContactMessage
		if err := rows.Scan(&item.ID, &item.Name, &item.Email, &item.Message, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact messages: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) DeleteContact(ctx context.Context, contactID int64) error {
	return s.deleteByID(ctx, "contact_messages", contactID)
}

// Block is idempotent; re-blocking keeps the original timestamp.
func (s *PostgresStore) Block(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blocked_visitors (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
	`, name)
	if err != nil {
		return fmt.Errorf("block visitor: %w", err)
	}
	return nil
}

func (s *PostgresStore) Unblock(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blocked_visitors WHERE name=$1`, name); err != nil {
		return fmt.Errorf("unblock visitor: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsBlocked(ctx context.Context, name string) (bool, error) {
	var blocked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM blocked_visitors WHERE name=$1)`, name).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("check blocked visitor: %w", err)
	}
	return blocked, nil
}

func (s *PostgresStore) ListBlocked(ctx context.Context) ([]BlockEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, blocked_at FROM blocked_visitors ORDER BY blocked_at DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list blocked visitors: %w", err)
	}
	defer rows.Close()

	items := make([]BlockEntry, 0)
	for rows.Next() {
		var item BlockEntry
		if err := rows.Scan(&item.Name, &item.BlockedAt); err != nil {
			return nil, fmt.Errorf("scan blocked visitor: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked visitors: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

// deleteByID reports ErrNotFound when no row matched, so repeated deletes are
// detectable by the caller.
func (s *PostgresStore) deleteByID(ctx context.Context, table string, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s rows: %w", table, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
