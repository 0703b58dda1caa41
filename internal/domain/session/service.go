package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrUserNotFound       = errors.New("user not found")
)

type ServiceInterface interface {
	SignUp(ctx context.Context, email, password, displayName string) (*api.AuthToken, error)
	SignIn(ctx context.Context, email, password string) (*api.AuthToken, error)
	SignOut(ctx context.Context, claims *Claims) error
	Authenticate(ctx context.Context, token string) (*Claims, error)
	Profile(ctx context.Context, userID string) (*api.Profile, error)
}

type Service struct {
	repo       Repository
	registry   Registry
	tokens     *Tokens
	store      *Store
	passes     PassReader
	bcryptCost int

	now func() time.Time
	log zerolog.Logger
}

func NewService(repo Repository, registry Registry, tokens *Tokens, store *Store, passes PassReader, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		registry:   registry,
		tokens:     tokens,
		store:      store,
		passes:     passes,
		bcryptCost: bcryptCost,
		now:        time.Now,
		log:        helpers.NewLogger("session"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*api.AuthToken, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &UserRecord{
		User: api.User{
			Id:          uuid.New().String(),
			Email:       normalizeEmail(email),
			DisplayName: strings.TrimSpace(displayName),
			CreatedAt:   s.now().UTC(),
		},
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return s.issue(u.User)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*api.AuthToken, error) {
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u.User)
}

func (s *Service) issue(u api.User) (*api.AuthToken, error) {
	now := s.now().UTC()
	token, claims, err := s.tokens.Issue(u.Id, now)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		s.store.Publish(Event{Type: SignedIn, UserID: u.Id, At: now})
	}
	s.log.Info().Str("event", "signed_in").Str("user_id", u.Id).Msg("Session started")
	return &api.AuthToken{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.ExpiresAt(),
		User:        u,
	}, nil
}

// SignOut revokes the token's session until it would have expired.
func (s *Service) SignOut(ctx context.Context, claims *Claims) error {
	ttl := claims.ExpiresAt().Sub(s.now())
	if err := s.registry.Revoke(ctx, claims.SessionID(), ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if s.store != nil {
		s.store.Publish(Event{Type: SignedOut, UserID: claims.UserID(), At: s.now().UTC()})
	}
	s.log.Info().Str("event", "signed_out").Str("user_id", claims.UserID()).Msg("Session revoked")
	return nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.registry.IsRevoked(ctx, claims.SessionID())
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if revoked {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

// Profile is the signed-in user with the pass they can use right now.
func (s *Service) Profile(ctx context.Context, userID string) (*api.Profile, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	p := &api.Profile{User: *u}
	if s.passes != nil {
		pass, err := s.passes.Current(ctx, userID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load current pass for profile")
		} else {
			p.CurrentPass = pass
		}
	}
	return p, nil
}
