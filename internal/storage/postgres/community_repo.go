package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tanguyors/bali-pass-home/api"
)

// CommunityRepository implements community.Repository using PostgreSQL
type CommunityRepository struct {
	db *DB
}

func NewCommunityRepository(db *DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// ListPosts pages posts newest first. viewerID may be empty for anonymous
// readers, in which case nothing is liked.
func (r *CommunityRepository) ListPosts(ctx context.Context, viewerID string, limit, offset int) ([]api.Post, error) {
	var viewer *string
	if validID(viewerID) {
		viewer = &viewerID
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT p.id, p.user_id, u.display_name, p.body, p.likes_count, p.comments_count,
			EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $1::uuid),
			p.created_at
		FROM posts p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id
		LIMIT $2 OFFSET $3`, viewer, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	out := make([]api.Post, 0)
	for rows.Next() {
		var p api.Post
		if err := rows.Scan(
			&p.Id,
			&p.UserId,
			&p.AuthorName,
			&p.Body,
			&p.LikesCount,
			&p.CommentsCount,
			&p.LikedByMe,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreatePost stores the post and fills in the author's display name.
func (r *CommunityRepository) CreatePost(ctx context.Context, post *api.Post) error {
	err := r.db.Pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO posts (id, user_id, body, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING user_id
		)
		SELECT u.display_name FROM inserted JOIN users u ON u.id = inserted.user_id`,
		post.Id, post.UserId, post.Body, post.CreatedAt).Scan(&post.AuthorName)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (r *CommunityRepository) PostExists(ctx context.Context, postID string) (bool, error) {
	if !validID(postID) {
		return false, nil
	}
	var exists bool
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check post: %w", err)
	}
	return exists, nil
}

func (r *CommunityRepository) ToggleLike(ctx context.Context, userID, postID string) (bool, int, error) {
	var (
		liked bool
		count int
	)
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
		if err != nil {
			return fmt.Errorf("failed to delete like: %w", err)
		}
		delta := -1
		if tag.RowsAffected() == 0 {
			tag, err = tx.Exec(ctx,
				`INSERT INTO post_likes (user_id, post_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, postID)
			if err != nil {
				return fmt.Errorf("failed to insert like: %w", err)
			}
			liked = true
			delta = int(tag.RowsAffected())
		}
		return tx.QueryRow(ctx,
			`UPDATE posts SET likes_count = GREATEST(likes_count + $2, 0) WHERE id = $1 RETURNING likes_count`,
			postID, delta).Scan(&count)
	})
	if err != nil {
		return false, 0, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, count, nil
}

func (r *CommunityRepository) ListComments(ctx context.Context, postID string) ([]api.Comment, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT c.id, c.post_id, c.user_id, u.display_name, c.body, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at, c.id`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	out := make([]api.Comment, 0)
	for rows.Next() {
		var c api.Comment
		if err := rows.Scan(&c.Id, &c.PostId, &c.UserId, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddComment stores the comment and bumps the post's counter together.
func (r *CommunityRepository) AddComment(ctx context.Context, c *api.Comment) error {
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO comments (id, post_id, user_id, body, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			c.Id, c.PostId, c.UserId, c.Body, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE posts SET comments_count = comments_count + 1 WHERE id = $1`, c.PostId); err != nil {
			return fmt.Errorf("failed to bump comment count: %w", err)
		}
		return tx.QueryRow(ctx, `SELECT display_name FROM users WHERE id = $1`, c.UserId).Scan(&c.AuthorName)
	})
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}
