package offers

import (
	"sort"
	"strings"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/geo"
)

// PageSize is fixed; clients page with an index, not a cursor.
const PageSize = 20

// Filter is the user's current selection on the explorer screen.
type Filter struct {
	Search        string
	CategoryID    string
	CityID        string
	SortBy        api.OfferSort
	MaxDistanceKm *float64
}

// IsDefault reports the unfiltered state, where featured offers are pinned first.
func (f Filter) IsDefault() bool {
	return strings.TrimSpace(f.Search) == "" &&
		f.CategoryID == "" &&
		f.CityID == "" &&
		f.MaxDistanceKm == nil &&
		(f.SortBy == "" || f.SortBy == api.SortRelevance)
}

// Apply filters and orders already joined offers. It never mutates its input
// and applying it twice yields the same result as applying it once.
func Apply(offers []api.Offer, f Filter) []api.Offer {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]api.Offer, 0, len(offers))
	for _, o := range offers {
		if search != "" && !matchesSearch(o, search) {
			continue
		}
		if f.CategoryID != "" && categoryID(o) != f.CategoryID {
			continue
		}
		if f.CityID != "" && (o.Partner == nil || o.Partner.CityId == nil || *o.Partner.CityId != f.CityID) {
			continue
		}
		if f.MaxDistanceKm != nil && (o.Distance == nil || *o.Distance > *f.MaxDistanceKm) {
			continue
		}
		out = append(out, o)
	}

	sortOffers(out, f)
	return out
}

func matchesSearch(o api.Offer, needle string) bool {
	if strings.Contains(strings.ToLower(o.Title), needle) {
		return true
	}
	return o.ShortDescription != nil && strings.Contains(strings.ToLower(*o.ShortDescription), needle)
}

func categoryID(o api.Offer) string {
	if o.CategoryId != nil {
		return *o.CategoryId
	}
	if o.Category != nil {
		return o.Category.Id
	}
	return ""
}

func sortOffers(offers []api.Offer, f Filter) {
	switch f.SortBy {
	case api.SortDistance:
		sort.SliceStable(offers, func(i, j int) bool {
			return lessNilLast(offers[i].Distance, offers[j].Distance, func(a, b float64) bool { return a < b })
		})
	case api.SortDiscount:
		sort.SliceStable(offers, func(i, j int) bool {
			return lessNilLast(offers[i].ValueNumber, offers[j].ValueNumber, func(a, b float64) bool { return a > b })
		})
	case api.SortNewest:
		// ids stand in for recency; this is not a timestamp sort
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Id > offers[j].Id
		})
	default:
		if f.IsDefault() {
			sort.SliceStable(offers, func(i, j int) bool {
				return offers[i].IsFeatured && !offers[j].IsFeatured
			})
		}
	}
}

// lessNilLast orders present values with less and puts nil values last.
func lessNilLast(a, b *float64, less func(a, b float64) bool) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return less(*a, *b)
	}
}

// OverlayFavorites sets IsFavorite from the user's favorite ids.
func OverlayFavorites(offers []api.Offer, ids map[string]struct{}) {
	for i := range offers {
		_, offers[i].IsFavorite = ids[offers[i].Id]
	}
}

// AttachDistance computes the distance from origin to each offer's partner.
func AttachDistance(offers []api.Offer, origin *geo.Point) {
	for i := range offers {
		offers[i].Distance = geo.Distance(origin, partnerPoint(offers[i].Partner))
	}
}

func partnerPoint(p *api.Partner) *geo.Point {
	if p == nil {
		return nil
	}
	return geo.ParsePoint(p.Lat, p.Lng)
}
