package itineraries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tanguyors/bali-pass-home/api"
)

var (
	ErrNotFound        = errors.New("itinerary not found")
	ErrForbidden       = errors.New("itinerary belongs to another user")
	ErrInvalidDates    = errors.New("end date must not be before start date")
	ErrTooLong         = errors.New("itinerary too long")
	ErrDayNotFound     = errors.New("itinerary day not found")
	ErrOfferNotFound   = errors.New("offer not found")
	ErrPlannedNotFound = errors.New("planned offer not found")
	ErrInvalidTitle    = errors.New("title is required")
)

// MaxDays bounds the length of a trip.
const MaxDays = 60

type ServiceInterface interface {
	Create(ctx context.Context, userID string, in CreateInput) (*api.Itinerary, error)
	List(ctx context.Context, userID string) ([]api.Itinerary, error)
	Get(ctx context.Context, userID, itineraryID string) (*api.Itinerary, error)
	Delete(ctx context.Context, userID, itineraryID string) error
	UpdateDay(ctx context.Context, userID, itineraryID string, dayNumber int, cityID, notes *string) (*api.Itinerary, error)
	PlanOffer(ctx context.Context, userID, itineraryID string, dayNumber int, offerID string, notes *string) (*api.Itinerary, error)
	RemovePlannedOffer(ctx context.Context, userID, itineraryID, plannedOfferID string) error
	Share(ctx context.Context, userID, itineraryID string) (*api.ShareInfo, error)
	GetShared(ctx context.Context, token string) (*api.Itinerary, error)
}

type CreateInput struct {
	Title     string
	StartDate time.Time
	EndDate   time.Time
	CityID    *string
}

type Service struct {
	repo  Repository
	links Links
	now   func() time.Time
}

func NewService(repo Repository, links Links) *Service {
	return &Service{repo: repo, links: links, now: time.Now}
}

// Create stores a trip with one day per calendar date.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*api.Itinerary, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	start := truncateDay(in.StartDate)
	end := truncateDay(in.EndDate)
	if end.Before(start) {
		return nil, ErrInvalidDates
	}
	n := int(end.Sub(start).Hours()/24) + 1
	if n > MaxDays {
		return nil, ErrTooLong
	}

	it := &api.Itinerary{
		Id:        uuid.New().String(),
		UserId:    userID,
		Title:     title,
		StartDate: openapi_types.Date{Time: start},
		EndDate:   openapi_types.Date{Time: end},
		CreatedAt: s.now().UTC(),
		Days:      make([]api.ItineraryDay, 0, n),
	}
	for i := 0; i < n; i++ {
		it.Days = append(it.Days, api.ItineraryDay{
			Id:        uuid.New().String(),
			DayNumber: i + 1,
			Date:      openapi_types.Date{Time: start.AddDate(0, 0, i)},
			CityId:    in.CityID,
			Offers:    []api.PlannedOffer{},
		})
	}

	if err := s.repo.CreateItinerary(ctx, it); err != nil {
		return nil, fmt.Errorf("failed to create itinerary: %w", err)
	}
	return it, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) List(ctx context.Context, userID string) ([]api.Itinerary, error) {
	list, err := s.repo.ListItineraries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	if list == nil {
		list = []api.Itinerary{}
	}
	return list, nil
}

// owned loads an itinerary the user may modify.
func (s *Service) owned(ctx context.Context, userID, itineraryID string) (*api.Itinerary, error) {
	it, err := s.repo.GetItinerary(ctx, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	if it == nil {
		return nil, ErrNotFound
	}
	if it.UserId != userID {
		return nil, ErrForbidden
	}
	return it, nil
}

func (s *Service) Get(ctx context.Context, userID, itineraryID string) (*api.Itinerary, error) {
	return s.owned(ctx, userID, itineraryID)
}

func (s *Service) Delete(ctx context.Context, userID, itineraryID string) error {
	if _, err := s.owned(ctx, userID, itineraryID); err != nil {
		return err
	}
	if err := s.repo.DeleteItinerary(ctx, itineraryID); err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	return nil
}

func (s *Service) UpdateDay(ctx context.Context, userID, itineraryID string, dayNumber int, cityID, notes *string) (*api.Itinerary, error) {
	if _, err := s.owned(ctx, userID, itineraryID); err != nil {
		return nil, err
	}
	ok, err := s.repo.UpdateDay(ctx, itineraryID, dayNumber, cityID, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to update day: %w", err)
	}
	if !ok {
		return nil, ErrDayNotFound
	}
	return s.owned(ctx, userID, itineraryID)
}

// PlanOffer appends an offer to the end of a day.
func (s *Service) PlanOffer(ctx context.Context, userID, itineraryID string, dayNumber int, offerID string, notes *string) (*api.Itinerary, error) {
	if _, err := s.owned(ctx, userID, itineraryID); err != nil {
		return nil, err
	}
	exists, err := s.repo.OfferExists(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check offer: %w", err)
	}
	if !exists {
		return nil, ErrOfferNotFound
	}

	po := &api.PlannedOffer{Id: uuid.New().String(), OfferId: offerID, Notes: notes}
	ok, err := s.repo.AddPlannedOffer(ctx, itineraryID, dayNumber, po)
	if err != nil {
		return nil, fmt.Errorf("failed to plan offer: %w", err)
	}
	if !ok {
		return nil, ErrDayNotFound
	}
	return s.owned(ctx, userID, itineraryID)
}

func (s *Service) RemovePlannedOffer(ctx context.Context, userID, itineraryID, plannedOfferID string) error {
	if _, err := s.owned(ctx, userID, itineraryID); err != nil {
		return err
	}
	ok, err := s.repo.RemovePlannedOffer(ctx, itineraryID, plannedOfferID)
	if err != nil {
		return fmt.Errorf("failed to remove planned offer: %w", err)
	}
	if !ok {
		return ErrPlannedNotFound
	}
	return nil
}

// Share makes the itinerary public and returns everything a client needs to
// hand it to another app.
func (s *Service) Share(ctx context.Context, userID, itineraryID string) (*api.ShareInfo, error) {
	it, err := s.owned(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	token := ShareToken(it.Id, s.links.Salt)
	if it.ShareToken == nil || *it.ShareToken != token || !it.IsPublic {
		if err := s.repo.SetShared(ctx, it.Id, token); err != nil {
			return nil, fmt.Errorf("failed to share itinerary: %w", err)
		}
	}

	info := &api.ShareInfo{
		Token:     token,
		WebUrl:    s.links.WebURL(token),
		DeepLink:  s.links.DeepLink(token),
		ShareText: ShareText(it),
	}
	if m := s.links.StaticMapURL(it.Days); m != "" {
		info.StaticMapUrl = &m
	}
	return info, nil
}

// GetShared is the public read of a shared itinerary.
func (s *Service) GetShared(ctx context.Context, token string) (*api.Itinerary, error) {
	it, err := s.repo.GetItineraryByShareToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get shared itinerary: %w", err)
	}
	if it == nil || !it.IsPublic {
		return nil, ErrNotFound
	}
	return it, nil
}
