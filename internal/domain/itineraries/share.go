package itineraries

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize/english"

	"github.com/tanguyors/bali-pass-home/api"
)

// Links builds the outward-facing URLs of a shared itinerary.
type Links struct {
	WebBaseURL     string
	DeepLinkScheme string
	StaticMapBase  string
	MapsAPIKey     string
	Salt           string
}

// ShareToken is a short deterministic token for itineraryID.
func ShareToken(itineraryID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(itineraryID))
	sum := h.Sum(nil)
	return base62Encode(sum[:8])
}

func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}
	if num == 0 {
		return "0"
	}

	result := make([]byte, 0, 11)
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return string(result)
}

func (l Links) WebURL(token string) string {
	return strings.TrimRight(l.WebBaseURL, "/") + "/shared/" + token
}

func (l Links) DeepLink(token string) string {
	return l.DeepLinkScheme + "://itinerary/" + token
}

// StaticMapURL returns a static map image with one numbered marker per
// located planned offer and a path in visiting order. It is empty when no
// planned offer has coordinates.
func (l Links) StaticMapURL(days []api.ItineraryDay) string {
	var points [][2]float64
	for _, d := range days {
		for _, po := range d.Offers {
			if po.Lat == nil || po.Lng == nil {
				continue
			}
			points = append(points, [2]float64{*po.Lat, *po.Lng})
		}
	}
	if len(points) == 0 || l.StaticMapBase == "" {
		return ""
	}

	overlays := make([]string, 0, len(points)+1)
	if len(points) > 1 {
		overlays = append(overlays, "path-3+0ea5e9-0.8("+url.PathEscape(encodePolyline(points))+")")
	}
	for i, p := range points {
		label := ""
		if i < 99 {
			label = fmt.Sprintf("-%d", i+1)
		}
		overlays = append(overlays, fmt.Sprintf("pin-s%s+e11d48(%.5f,%.5f)", label, p[1], p[0]))
	}

	u := strings.TrimRight(l.StaticMapBase, "/") + "/" + strings.Join(overlays, ",") + "/auto/800x500"
	if l.MapsAPIKey != "" {
		u += "?access_token=" + url.QueryEscape(l.MapsAPIKey)
	}
	return u
}

// encodePolyline encodes lat/lng pairs with precision 5.
func encodePolyline(points [][2]float64) string {
	var b strings.Builder
	var prevLat, prevLng int64
	for _, p := range points {
		lat := round5(p[0])
		lng := round5(p[1])
		writePolylineValue(&b, lat-prevLat)
		writePolylineValue(&b, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return b.String()
}

func round5(v float64) int64 {
	if v < 0 {
		return int64(v*1e5 - 0.5)
	}
	return int64(v*1e5 + 0.5)
}

func writePolylineValue(b *strings.Builder, v int64) {
	u := uint64(v << 1)
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		b.WriteByte(byte((0x20 | (u & 0x1f)) + 63))
		u >>= 5
	}
	b.WriteByte(byte(u + 63))
}

// ShareText is the message attached when the itinerary is shared.
func ShareText(it *api.Itinerary) string {
	stops := 0
	for _, d := range it.Days {
		stops += len(d.Offers)
	}
	days := len(it.Days)
	if days == 0 {
		days = int(it.EndDate.Time.Sub(it.StartDate.Time).Hours()/24) + 1
	}
	return fmt.Sprintf("%s: %s in Bali with %s, from %s to %s",
		it.Title,
		english.Plural(days, "day", ""),
		english.Plural(stops, "Bali'Pass stop", ""),
		it.StartDate.Time.Format("Jan 2"),
		it.EndDate.Time.Format("Jan 2, 2006"),
	)
}
