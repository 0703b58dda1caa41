package community

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tanguyors/bali-pass-home/api"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrEmptyBody    = errors.New("body is required")
)

const PageSize = 20

type ServiceInterface interface {
	ListPosts(ctx context.Context, viewerID string, page int) ([]api.Post, error)
	CreatePost(ctx context.Context, userID, body string) (*api.Post, error)
	ToggleLike(ctx context.Context, userID, postID string) (*api.LikeToggle, error)
	ListComments(ctx context.Context, postID string) ([]api.Comment, error)
	AddComment(ctx context.Context, userID, postID, body string) (*api.Comment, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) ListPosts(ctx context.Context, viewerID string, page int) ([]api.Post, error) {
	if page < 0 {
		page = 0
	}
	posts, err := s.repo.ListPosts(ctx, viewerID, PageSize, page*PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if posts == nil {
		posts = []api.Post{}
	}
	return posts, nil
}

func (s *Service) CreatePost(ctx context.Context, userID, body string) (*api.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	post := &api.Post{
		Id:        uuid.New().String(),
		UserId:    userID,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (s *Service) ToggleLike(ctx context.Context, userID, postID string) (*api.LikeToggle, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	liked, count, err := s.repo.ToggleLike(ctx, userID, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}
	return &api.LikeToggle{PostId: postID, Liked: liked, LikesCount: count}, nil
}

func (s *Service) ListComments(ctx context.Context, postID string) ([]api.Comment, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if comments == nil {
		comments = []api.Comment{}
	}
	return comments, nil
}

func (s *Service) AddComment(ctx context.Context, userID, postID, body string) (*api.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	c := &api.Comment{
		Id:        uuid.New().String(),
		PostId:    postID,
		UserId:    userID,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return c, nil
}

func (s *Service) ensurePost(ctx context.Context, postID string) error {
	ok, err := s.repo.PostExists(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to check post: %w", err)
	}
	if !ok {
		return ErrPostNotFound
	}
	return nil
}
