package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aristath/tradejournal/internal/domain"
)

// UnknownKey collects records whose key is empty
const UnknownKey = "Unbekannt"

// KeyFunc extracts the group key of a record
type KeyFunc func(domain.TradeRecord) string

// BySymbol groups by instrument
func BySymbol(r domain.TradeRecord) string { return r.Symbol }

// BySetup groups by setup name
func BySetup(r domain.TradeRecord) string { return r.Setup }

// ByLocation groups by entry location
func ByLocation(r domain.TradeRecord) string { return r.Location }

// ByEntryType groups by entry type
func ByEntryType(r domain.TradeRecord) string { return r.EntryType }

// ByWeekday groups by the English UTC weekday name of the record date
func ByWeekday(r domain.TradeRecord) string {
	t, ok := r.Time()
	if !ok {
		return ""
	}
	return t.UTC().Weekday().String()
}

// ByHour groups by the UTC hour of day, "00" to "23"
func ByHour(r domain.TradeRecord) string {
	t, ok := r.Time()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%02d", t.UTC().Hour())
}

// ByDay groups by UTC calendar day, YYYY-MM-DD
func ByDay(r domain.TradeRecord) string {
	t, ok := r.Time()
	if !ok {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// Dimensions maps breakdown names to key functions
var Dimensions = map[string]KeyFunc{
	"symbol":    BySymbol,
	"setup":     BySetup,
	"location":  ByLocation,
	"entryType": ByEntryType,
	"weekday":   ByWeekday,
	"hour":      ByHour,
	"day":       ByDay,
}

// GroupBy reduces records into buckets keyed by keyFn.
// Blank keys land in UnknownKey, so bucket counts always sum to len(records).
func GroupBy(records []domain.TradeRecord, keyFn KeyFunc) map[string]Bucket {
	buckets := make(map[string]Bucket)
	for _, r := range records {
		key := strings.TrimSpace(keyFn(r))
		if key == "" {
			key = UnknownKey
		}

		b := buckets[key]
		b.Count++
		b.TotalProfit += r.ProfitLoss
		if r.IsWin {
			b.Wins++
		}
		buckets[key] = b
	}
	return buckets
}

// NamedBucket is a Bucket with its key, ready for ordered output
type NamedBucket struct {
	Key string `json:"key"`
	Bucket
	WinRate float64 `json:"winRate"`
}

var weekdayRank = map[string]int{
	time.Monday.String():    0,
	time.Tuesday.String():   1,
	time.Wednesday.String(): 2,
	time.Thursday.String():  3,
	time.Friday.String():    4,
	time.Saturday.String():  5,
	time.Sunday.String():    6,
}

// SortedBuckets orders buckets by key. Weekday names sort Monday to Sunday
// and UnknownKey always comes last.
func SortedBuckets(buckets map[string]Bucket) []NamedBucket {
	out := make([]NamedBucket, 0, len(buckets))
	for key, b := range buckets {
		nb := NamedBucket{Key: key, Bucket: b}
		if b.Count > 0 {
			nb.WinRate = 100 * float64(b.Wins) / float64(b.Count)
		}
		out = append(out, nb)
	}

	sort.Slice(out, func(i, j int) bool {
		return keyLess(out[i].Key, out[j].Key)
	})
	return out
}

func keyLess(a, b string) bool {
	if a == UnknownKey || b == UnknownKey {
		return b == UnknownKey && a != UnknownKey
	}
	ra, aDay := weekdayRank[a]
	rb, bDay := weekdayRank[b]
	if aDay && bDay {
		return ra < rb
	}
	return a < b
}

// HeatmapCell aggregates the records of one weekday and hour
type HeatmapCell struct {
	Weekday string `json:"weekday"`
	Hour    int    `json:"hour"`
	Bucket
}

// Heatmap groups records by UTC weekday and hour. Records without a parsable
// date have no place on the grid and are left out.
func Heatmap(records []domain.TradeRecord) []HeatmapCell {
	type cellKey struct {
		day  time.Weekday
		hour int
	}

	cells := make(map[cellKey]Bucket)
	for _, r := range records {
		t, ok := r.Time()
		if !ok {
			continue
		}
		t = t.UTC()
		k := cellKey{day: t.Weekday(), hour: t.Hour()}

		b := cells[k]
		b.Count++
		b.TotalProfit += r.ProfitLoss
		if r.IsWin {
			b.Wins++
		}
		cells[k] = b
	}

	out := make([]HeatmapCell, 0, len(cells))
	for k, b := range cells {
		out = append(out, HeatmapCell{Weekday: k.day.String(), Hour: k.hour, Bucket: b})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := weekdayRank[out[i].Weekday], weekdayRank[out[j].Weekday]
		if ri != rj {
			return ri < rj
		}
		return out[i].Hour < out[j].Hour
	})
	return out
}
