package offers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/geo"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
)

var (
	ErrOfferNotFound   = errors.New("offer not found")
	ErrPartnerNotFound = errors.New("partner not found")
)

// SourceLang is the language offers are authored in.
const SourceLang = "en"

// detailLoadTimeout bounds a shared offer load once it no longer follows
// any single caller.
const detailLoadTimeout = 10 * time.Second

type ServiceInterface interface {
	ListOffers(ctx context.Context, q Query) (*api.OfferPage, error)
	GetOffer(ctx context.Context, q DetailQuery) (*api.Offer, error)
	GetPartner(ctx context.Context, partnerID string, origin *geo.Point) (*api.Partner, error)
	ListCategories(ctx context.Context) ([]api.Category, error)
	ListCities(ctx context.Context) ([]api.City, error)
}

// Query is one explorer request: the filter plus who is asking and from where.
type Query struct {
	Filter
	Origin *geo.Point
	Page   int
	UserID string
}

type DetailQuery struct {
	OfferID string
	UserID  string
	Lang    string
	Origin  *geo.Point
}

type Service struct {
	repo         Repository
	favorites    FavoritesReader
	refCache     ReferenceCache
	refTTL       time.Duration
	translator   Translator
	translations TranslationCache
	stats        PartnerStats

	detail singleflight.Group
	log    zerolog.Logger
}

type Option func(*Service)

func WithReferenceCache(c ReferenceCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.refCache = c
		s.refTTL = ttl
	}
}

func WithTranslator(t Translator, cache TranslationCache) Option {
	return func(s *Service) {
		s.translator = t
		s.translations = cache
	}
}

func WithPartnerStats(stats PartnerStats) Option {
	return func(s *Service) { s.stats = stats }
}

func NewService(repo Repository, favorites FavoritesReader, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		favorites: favorites,
		refTTL:    time.Hour,
		log:       helpers.NewLogger("offers"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListOffers runs the explorer pipeline for one page.
func (s *Service) ListOffers(ctx context.Context, q Query) (*api.OfferPage, error) {
	if q.Page < 0 {
		q.Page = 0
	}

	rows, err := s.repo.ListOffers(ctx, ListParams{
		Search:       strings.TrimSpace(q.Search),
		CategoryID:   q.CategoryID,
		CityID:       q.CityID,
		SortBy:       q.SortBy,
		DefaultState: q.IsDefault(),
		Limit:        PageSize,
		Offset:       q.Page * PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	// a full raw page means there may be more, even if filtering shrinks it
	hasMore := len(rows) == PageSize

	if err := s.joinRelations(ctx, rows); err != nil {
		return nil, err
	}

	visible := rows[:0]
	for _, o := range rows {
		if o.Partner == nil || o.Partner.Status != api.PartnerApproved {
			continue
		}
		visible = append(visible, o)
	}

	if q.UserID != "" && s.favorites != nil {
		ids, err := s.favorites.FavoriteOfferIDs(ctx, q.UserID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", q.UserID).Msg("Failed to load favorites, continuing without")
		} else {
			OverlayFavorites(visible, ids)
		}
	}

	AttachDistance(visible, q.Origin)

	page := &api.OfferPage{
		Offers:  Apply(visible, q.Filter),
		Page:    q.Page,
		HasMore: hasMore,
	}
	if hasMore {
		next := q.Page + 1
		page.NextPage = &next
	}
	return page, nil
}

func (s *Service) joinRelations(ctx context.Context, rows []api.Offer) error {
	partnerIDs := make([]string, 0, len(rows))
	categoryIDs := make([]string, 0, len(rows))
	seenP := make(map[string]struct{}, len(rows))
	seenC := make(map[string]struct{}, len(rows))
	for _, o := range rows {
		if _, ok := seenP[o.PartnerId]; !ok {
			seenP[o.PartnerId] = struct{}{}
			partnerIDs = append(partnerIDs, o.PartnerId)
		}
		if o.CategoryId != nil {
			if _, ok := seenC[*o.CategoryId]; !ok {
				seenC[*o.CategoryId] = struct{}{}
				categoryIDs = append(categoryIDs, *o.CategoryId)
			}
		}
	}
	if len(partnerIDs) == 0 {
		return nil
	}

	var (
		partners   map[string]*api.Partner
		categories map[string]*api.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		partners, err = s.repo.GetPartnersByIDs(gctx, partnerIDs)
		if err != nil {
			return fmt.Errorf("failed to load partners: %w", err)
		}
		return nil
	})
	if len(categoryIDs) > 0 {
		g.Go(func() error {
			var err error
			categories, err = s.repo.GetCategoriesByIDs(gctx, categoryIDs)
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range rows {
		rows[i].Partner = partners[rows[i].PartnerId]
		if rows[i].CategoryId != nil {
			rows[i].Category = categories[*rows[i].CategoryId]
		}
	}
	return nil
}

// GetOffer returns the offer detail. Concurrent loads of the same offer share
// one database round trip that outlives any one caller; per-user fields are
// applied on a copy.
func (s *Service) GetOffer(ctx context.Context, q DetailQuery) (*api.Offer, error) {
	ch := s.detail.DoChan(q.OfferID, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), detailLoadTimeout)
		defer cancel()
		return s.loadOffer(loadCtx, q.OfferID)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	offer := *res.Val.(*api.Offer)

	offer.Distance = geo.Distance(q.Origin, partnerPoint(offer.Partner))

	if q.UserID != "" && s.favorites != nil {
		ids, err := s.favorites.FavoriteOfferIDs(ctx, q.UserID)
		if err != nil {
			s.log.Warn().Err(err).Str("offer_id", offer.Id).Msg("Failed to load favorites for offer")
		} else {
			_, offer.IsFavorite = ids[offer.Id]
		}
	}

	if q.Lang != "" && !strings.EqualFold(q.Lang, SourceLang) {
		s.translate(ctx, &offer, strings.ToLower(q.Lang))
	}
	return &offer, nil
}

func (s *Service) loadOffer(ctx context.Context, offerID string) (*api.Offer, error) {
	offer, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	if offer == nil || !offer.IsActive {
		return nil, ErrOfferNotFound
	}

	partner, err := s.repo.GetPartner(ctx, offer.PartnerId)
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	if partner == nil || partner.Status != api.PartnerApproved {
		return nil, ErrOfferNotFound
	}
	offer.Partner = partner

	if offer.CategoryId != nil {
		cats, err := s.repo.GetCategoriesByIDs(ctx, []string{*offer.CategoryId})
		if err != nil {
			return nil, fmt.Errorf("failed to get category: %w", err)
		}
		offer.Category = cats[*offer.CategoryId]
	}
	return offer, nil
}

// translate swaps the text fields for the requested language. Failures leave
// the offer in its source language.
func (s *Service) translate(ctx context.Context, offer *api.Offer, lang string) {
	if s.translator == nil {
		return
	}

	if s.translations != nil {
		if tr, err := s.translations.GetTranslation(ctx, offer.Id, lang); err != nil {
			s.log.Warn().Err(err).Str("offer_id", offer.Id).Msg("Translation cache read failed")
		} else if tr != nil {
			applyTranslation(offer, tr, lang)
			return
		}
	}

	texts := []string{offer.Title, deref(offer.ShortDescription), deref(offer.Description)}
	out, err := s.translator.Translate(ctx, texts, lang)
	if err != nil || len(out) != len(texts) {
		s.log.Warn().Err(err).Str("offer_id", offer.Id).Str("lang", lang).Msg("Translation unavailable, serving source text")
		return
	}

	tr := &Translation{Title: out[0]}
	if offer.ShortDescription != nil {
		tr.ShortDescription = &out[1]
	}
	if offer.Description != nil {
		tr.Description = &out[2]
	}
	if s.translations != nil {
		if err := s.translations.SetTranslation(ctx, offer.Id, lang, tr, 24*time.Hour); err != nil {
			s.log.Warn().Err(err).Str("offer_id", offer.Id).Msg("Translation cache write failed")
		}
	}
	applyTranslation(offer, tr, lang)
}

func applyTranslation(offer *api.Offer, tr *Translation, lang string) {
	offer.Title = tr.Title
	if tr.ShortDescription != nil {
		offer.ShortDescription = tr.ShortDescription
	}
	if tr.Description != nil {
		offer.Description = tr.Description
	}
	offer.Lang = &lang
}

// GetPartner returns an approved partner with its active offers.
func (s *Service) GetPartner(ctx context.Context, partnerID string, origin *geo.Point) (*api.Partner, error) {
	partner, err := s.repo.GetPartner(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	if partner == nil || partner.Status != api.PartnerApproved {
		return nil, ErrPartnerNotFound
	}

	offers, err := s.repo.ListOffersByPartner(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list partner offers: %w", err)
	}
	partner.Offers = offers
	partner.Distance = geo.Distance(origin, partnerPoint(partner))

	if s.stats != nil {
		n, err := s.stats.RedemptionCount(ctx, partnerID)
		if err != nil {
			s.log.Warn().Err(err).Str("partner_id", partnerID).Msg("Failed to read redemption counter")
		} else {
			partner.RedemptionCount = &n
		}
	}
	return partner, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]api.Category, error) {
	if s.refCache != nil {
		if cached, err := s.refCache.GetCategories(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.Warn().Err(err).Msg("Category cache read failed")
		}
	}
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if s.refCache != nil {
		if err := s.refCache.SetCategories(ctx, cats, s.refTTL); err != nil {
			s.log.Warn().Err(err).Msg("Category cache write failed")
		}
	}
	return cats, nil
}

func (s *Service) ListCities(ctx context.Context) ([]api.City, error) {
	if s.refCache != nil {
		if cached, err := s.refCache.GetCities(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.Warn().Err(err).Msg("City cache read failed")
		}
	}
	cities, err := s.repo.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	if s.refCache != nil {
		if err := s.refCache.SetCities(ctx, cities, s.refTTL); err != nil {
			s.log.Warn().Err(err).Msg("City cache write failed")
		}
	}
	return cities, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
