// Package api holds the HTTP contract of the service: the embedded OpenAPI
// document, the wire models and the chi route binding for ServerInterface.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Error is the body of every non-2xx JSON response.
type Error struct {
	Error string `json:"error"`
}

type Category struct {
	Id        string  `json:"id"`
	Name      string  `json:"name"`
	Icon      *string `json:"icon,omitempty"`
	SortOrder int     `json:"sort_order"`
}

type City struct {
	Id   string   `json:"id"`
	Name string   `json:"name"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

type PartnerStatus string

const (
	PartnerPending  PartnerStatus = "pending"
	PartnerApproved PartnerStatus = "approved"
	PartnerRejected PartnerStatus = "rejected"
)

type Partner struct {
	Id              string        `json:"id"`
	Name            string        `json:"name"`
	Status          PartnerStatus `json:"status"`
	CityId          *string       `json:"city_id,omitempty"`
	Address         *string       `json:"address,omitempty"`
	Description     *string       `json:"description,omitempty"`
	Phone           *string       `json:"phone,omitempty"`
	Lat             *float64      `json:"lat,omitempty"`
	Lng             *float64      `json:"lng,omitempty"`
	Distance        *float64      `json:"distance,omitempty"`
	RedemptionCount *int64        `json:"redemption_count,omitempty"`
	Offers          []Offer       `json:"offers,omitempty"`
}

type ValueType string

const (
	ValuePercent ValueType = "percent"
	ValueAmount  ValueType = "amount"
	ValueFree    ValueType = "free"
)

// Offer is the offer view-model: the offer row joined with its partner and
// category, plus the per-request distance and favorite flag.
type Offer struct {
	Id               string    `json:"id"`
	PartnerId        string    `json:"partner_id"`
	CategoryId       *string   `json:"category_id,omitempty"`
	Title            string    `json:"title"`
	ShortDescription *string   `json:"short_description,omitempty"`
	Description      *string   `json:"description,omitempty"`
	ValueType        ValueType `json:"value_type"`
	ValueNumber      *float64  `json:"value_number,omitempty"`
	IsActive         bool      `json:"is_active"`
	IsFeatured       bool      `json:"is_featured"`
	FavoritesCount   int       `json:"favorites_count"`
	CreatedAt        time.Time `json:"created_at"`
	Lang             *string   `json:"lang,omitempty"`

	Partner    *Partner  `json:"partner,omitempty"`
	Category   *Category `json:"category,omitempty"`
	Distance   *float64  `json:"distance,omitempty"`
	IsFavorite bool      `json:"is_favorite"`
}

type OfferPage struct {
	Offers   []Offer `json:"offers"`
	Page     int     `json:"page"`
	HasMore  bool    `json:"has_more"`
	NextPage *int    `json:"next_page,omitempty"`
}

type OfferSort string

const (
	SortRelevance OfferSort = "relevance"
	SortDistance  OfferSort = "distance"
	SortDiscount  OfferSort = "discount"
	SortNewest    OfferSort = "newest"
)

type GetOffersParams struct {
	Q           *string    `form:"q,omitempty" json:"q,omitempty"`
	Category    *string    `form:"category,omitempty" json:"category,omitempty"`
	City        *string    `form:"city,omitempty" json:"city,omitempty"`
	Sort        *OfferSort `form:"sort,omitempty" json:"sort,omitempty"`
	MaxDistance *float64   `form:"max_distance,omitempty" json:"max_distance,omitempty"`
	Lat         *float64   `form:"lat,omitempty" json:"lat,omitempty"`
	Lng         *float64   `form:"lng,omitempty" json:"lng,omitempty"`
	Page        *int       `form:"page,omitempty" json:"page,omitempty"`
}

type GetOffersOfferIdParams struct {
	Lang *string  `form:"lang,omitempty" json:"lang,omitempty"`
	Lat  *float64 `form:"lat,omitempty" json:"lat,omitempty"`
	Lng  *float64 `form:"lng,omitempty" json:"lng,omitempty"`
}

type GetPartnersPartnerIdParams struct {
	Lat *float64 `form:"lat,omitempty" json:"lat,omitempty"`
	Lng *float64 `form:"lng,omitempty" json:"lng,omitempty"`
}

type FavoriteToggle struct {
	OfferId        string `json:"offer_id"`
	IsFavorite     bool   `json:"is_favorite"`
	FavoritesCount int    `json:"favorites_count"`
}

type PassType string

const (
	PassWeek      PassType = "week"
	PassFortnight PassType = "fortnight"
	PassMonth     PassType = "month"
)

type PassStatus string

const (
	PassPending   PassStatus = "pending"
	PassActive    PassStatus = "active"
	PassExpired   PassStatus = "expired"
	PassCancelled PassStatus = "cancelled"
)

// Pass is the read-only projection of a user's pass row.
type Pass struct {
	Id             string     `json:"id"`
	UserId         string     `json:"user_id"`
	Type           PassType   `json:"type"`
	Status         PassStatus `json:"status"`
	PriceIdr       int64      `json:"price_idr"`
	StartsAt       time.Time  `json:"starts_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
	RemainingLabel string     `json:"remaining_label,omitempty"`
}

type PostPassesJSONRequestBody struct {
	Type PassType `json:"type" validate:"required,oneof=week fortnight month"`
}

type ScanState string

const (
	ScanIdle                     ScanState = "idle"
	ScanAwaitingCameraPermission ScanState = "awaiting-camera-permission"
	ScanScanning                 ScanState = "scanning"
	ScanManualEntry              ScanState = "manual-entry"
	ScanDecoded                  ScanState = "decoded"
	ScanValidating               ScanState = "validating"
	ScanSuccess                  ScanState = "success"
	ScanRejected                 ScanState = "rejected"
)

type ScanSession struct {
	Id           string     `json:"id"`
	UserId       string     `json:"user_id"`
	State        ScanState  `json:"state"`
	Manual       bool       `json:"manual"`
	Code         *string    `json:"code,omitempty"`
	Partner      *Partner   `json:"partner,omitempty"`
	RejectReason *string    `json:"reject_reason,omitempty"`
	ResetAt      *time.Time `json:"reset_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type PostScanSessionsSessionIdCameraJSONRequestBody struct {
	Granted bool `json:"granted"`
}

type PostScanSessionsSessionIdManualJSONRequestBody struct {
	Code string `json:"code" validate:"required,max=512"`
}

type Redemption struct {
	Id          string    `json:"id"`
	UserId      string    `json:"user_id"`
	PassId      string    `json:"pass_id"`
	OfferId     string    `json:"offer_id"`
	PartnerId   string    `json:"partner_id"`
	RedeemedAt  time.Time `json:"redeemed_at"`
	OfferTitle  *string   `json:"offer_title,omitempty"`
	PartnerName *string   `json:"partner_name,omitempty"`
}

type PostRedemptionsJSONRequestBody struct {
	OfferId string `json:"offer_id" validate:"required,uuid"`
}

type PlannedOffer struct {
	Id          string   `json:"id"`
	OfferId     string   `json:"offer_id"`
	Position    int      `json:"position"`
	Notes       *string  `json:"notes,omitempty"`
	Title       *string  `json:"title,omitempty"`
	PartnerName *string  `json:"partner_name,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
}

type ItineraryDay struct {
	Id        string             `json:"id"`
	DayNumber int                `json:"day_number"`
	Date      openapi_types.Date `json:"date"`
	CityId    *string            `json:"city_id,omitempty"`
	Notes     *string            `json:"notes,omitempty"`
	Offers    []PlannedOffer     `json:"offers"`
}

type Itinerary struct {
	Id         string             `json:"id"`
	UserId     string             `json:"user_id"`
	Title      string             `json:"title"`
	StartDate  openapi_types.Date `json:"start_date"`
	EndDate    openapi_types.Date `json:"end_date"`
	ShareToken *string            `json:"share_token,omitempty"`
	IsPublic   bool               `json:"is_public"`
	CreatedAt  time.Time          `json:"created_at"`
	Days       []ItineraryDay     `json:"days,omitempty"`
}

type PostItinerariesJSONRequestBody struct {
	Title     string             `json:"title" validate:"required,notblank,max=120"`
	StartDate openapi_types.Date `json:"start_date"`
	EndDate   openapi_types.Date `json:"end_date"`
	CityId    *string            `json:"city_id,omitempty"`
}

type PutItinerariesItineraryIdDaysDayNumberJSONRequestBody struct {
	CityId *string `json:"city_id,omitempty"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type PostItinerariesItineraryIdDaysDayNumberOffersJSONRequestBody struct {
	OfferId string  `json:"offer_id" validate:"required,uuid"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type ShareInfo struct {
	Token        string  `json:"token"`
	WebUrl       string  `json:"web_url"`
	DeepLink     string  `json:"deep_link"`
	StaticMapUrl *string `json:"static_map_url,omitempty"`
	ShareText    string  `json:"share_text"`
}

type Post struct {
	Id            string    `json:"id"`
	UserId        string    `json:"user_id"`
	AuthorName    string    `json:"author_name"`
	Body          string    `json:"body"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	LikedByMe     bool      `json:"liked_by_me"`
	CreatedAt     time.Time `json:"created_at"`
}

type GetCommunityPostsParams struct {
	Page *int `form:"page,omitempty" json:"page,omitempty"`
}

type PostCommunityPostsJSONRequestBody struct {
	Body string `json:"body" validate:"required,notblank,max=4000"`
}

type Comment struct {
	Id         string    `json:"id"`
	PostId     string    `json:"post_id"`
	UserId     string    `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type PostCommunityPostsPostIdCommentsJSONRequestBody struct {
	Body string `json:"body" validate:"required,notblank,max=2000"`
}

type LikeToggle struct {
	PostId     string `json:"post_id"`
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likes_count"`
}

type User struct {
	Id          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type Profile struct {
	User        User  `json:"user"`
	CurrentPass *Pass `json:"current_pass,omitempty"`
}

type PostAuthSignupJSONRequestBody struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"required,notblank,max=80"`
}

type PostAuthSigninJSONRequestBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}
