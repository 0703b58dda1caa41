package postgres

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/offers"
)

func TestBuildListOffersQuery_Filters(t *testing.T) {
	query, args := buildListOffersQuery(offers.ListParams{
		Search:     " massage ",
		CategoryID: "spa",
		CityID:     "ubud",
		SortBy:     api.SortDiscount,
		Limit:      20,
		Offset:     40,
	})

	for _, want := range []string{
		"o.is_active",
		"p.status = 'approved'",
		"(o.title ILIKE $1 OR o.short_description ILIKE $1)",
		"o.category_id = $2",
		"p.city_id = $3",
		"ORDER BY o.value_number DESC NULLS LAST, o.id",
		"LIMIT $4 OFFSET $5",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}

	wantArgs := []any{"%massage%", "spa", "ubud", 20, 40}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("got args %v, want %v", args, wantArgs)
	}
}

func TestBuildListOffersQuery_Ordering(t *testing.T) {
	cases := []struct {
		params offers.ListParams
		order  string
	}{
		{offers.ListParams{DefaultState: true}, "ORDER BY o.is_featured DESC, o.created_at DESC, o.id"},
		{offers.ListParams{SortBy: api.SortNewest}, "ORDER BY o.id DESC"},
		{offers.ListParams{SortBy: api.SortDistance}, "ORDER BY o.created_at DESC, o.id"},
		{offers.ListParams{SortBy: api.SortRelevance, Search: "x"}, "ORDER BY o.created_at DESC, o.id"},
	}
	for _, tc := range cases {
		query, _ := buildListOffersQuery(tc.params)
		if !strings.Contains(query, tc.order) {
			t.Errorf("params %+v: expected %q in\n%s", tc.params, tc.order, query)
		}
	}
}

func TestBuildListOffersQuery_DefaultPaging(t *testing.T) {
	query, args := buildListOffersQuery(offers.ListParams{Offset: -5})
	if strings.Contains(query, "ILIKE") || strings.Contains(query, "category_id =") {
		t.Errorf("unexpected filters in\n%s", query)
	}
	if !reflect.DeepEqual(args, []any{offers.PageSize, 0}) {
		t.Errorf("got args %v", args)
	}
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"spa":     "%spa%",
		"50%":     `%50\%%`,
		"a_b":     `%a\_b%`,
		`back\sl`: `%back\\sl%`,
	}
	for in, want := range cases {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidID(t *testing.T) {
	if !validID("6f1c2b9e-3d4a-4c5b-9e8f-0a1b2c3d4e5f") {
		t.Error("expected uuid to be valid")
	}
	for _, id := range []string{"", "partner-1", "6f1c2b9e"} {
		if validID(id) {
			t.Errorf("expected %q to be invalid", id)
		}
	}
}
