package community

import (
	"context"

	"github.com/tanguyors/bali-pass-home/api"
)

type Repository interface {
	// ListPosts returns a page of posts, newest first, with LikedByMe set for viewerID.
	ListPosts(ctx context.Context, viewerID string, limit, offset int) ([]api.Post, error)

	CreatePost(ctx context.Context, post *api.Post) error

	PostExists(ctx context.Context, postID string) (bool, error)

	// ToggleLike flips the like row and returns the new state with the
	// post's like count, atomically.
	ToggleLike(ctx context.Context, userID, postID string) (bool, int, error)

	ListComments(ctx context.Context, postID string) ([]api.Comment, error)

	// AddComment stores the comment and bumps the post's comment count in
	// one transaction.
	AddComment(ctx context.Context, c *api.Comment) error
}
