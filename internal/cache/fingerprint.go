package cache

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
)

// Fingerprint derives a stable cache key from a validated search request and
// the requesting user. Two requests with the same semantics always produce
// the same key; the user is included because personalized scores differ.
func Fingerprint(userID string, req *request.Request) string {
	var sb strings.Builder
	sb.Grow(256)

	sb.WriteString("u=")
	sb.WriteString(userID)

	if loc := req.Location(); loc != nil {
		sb.WriteString(";lk=")
		sb.WriteString(string(loc.Kind()))
		switch loc.Kind() {
		case request.LocationCity:
			sb.WriteString(";lc=")
			sb.WriteString(loc.City())
		case request.LocationCoordinates:
			lat, lon := loc.Coordinates()
			sb.WriteString(";la=")
			sb.WriteString(formatFloat(lat))
			sb.WriteString(";lo=")
			sb.WriteString(formatFloat(lon))
			sb.WriteString(";lr=")
			sb.WriteString(formatFloat(loc.RadiusMeters()))
		}
	}

	writeFilters(&sb, req.Filters())

	sb.WriteString(";s=")
	sb.WriteString(string(req.Sort().Field()))
	if req.Sort().Descending() {
		sb.WriteString(":desc")
	}
	sb.WriteString(";p=")
	sb.WriteString(strconv.Itoa(req.Page()))
	sb.WriteString(";n=")
	sb.WriteString(strconv.Itoa(req.Limit()))

	return strconv.FormatUint(xxhash.Sum64String(sb.String()), 16)
}

// writeFilters serializes filters canonically. Set-valued filters are sorted
// so value order never changes the key.
func writeFilters(sb *strings.Builder, f request.Filters) {
	writeOptFloat(sb, ";pmin=", f.PriceMin)
	writeOptFloat(sb, ";pmax=", f.PriceMax)
	writeOptInt(sb, ";bed=", f.BedroomsMin)
	writeOptInt(sb, ";bath=", f.BathroomsMin)
	writeSet(sb, ";pt=", f.PropertyTypes)
	writeOptFloat(sb, ";vmin=", f.VastuScoreMin)
	writeOptFloat(sb, ";cmax=", f.ClimateRiskMax)
	writeOptInt(sb, ";yb=", f.YearBuiltMin)
	writeSet(sb, ";am=", f.Amenities)
}

func writeOptFloat(sb *strings.Builder, label string, v *float64) {
	if v == nil {
		return
	}
	sb.WriteString(label)
	sb.WriteString(formatFloat(*v))
}

func writeOptInt(sb *strings.Builder, label string, v *int) {
	if v == nil {
		return
	}
	sb.WriteString(label)
	sb.WriteString(strconv.Itoa(*v))
}

func writeSet(sb *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	sb.WriteString(label)
	sb.WriteString(strings.Join(sorted, ","))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
