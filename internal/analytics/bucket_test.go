package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBucketOfDate(t *testing.T) {
	cases := []struct {
		date string
		mode GroupBy
		want Bucket
	}{
		{"2024-01-05", GroupDay, Bucket{Key: "2024-01-05", Label: "05 janv."}},
		{"2024-01-01", GroupWeek, Bucket{Key: "2024-01-01", Label: "01 janv. → 07 janv."}},
		{"2024-01-07", GroupWeek, Bucket{Key: "2024-01-01", Label: "01 janv. → 07 janv."}},
		{"2023-12-31", GroupWeek, Bucket{Key: "2023-12-25", Label: "25 déc. → 31 déc."}},
		{"2024-02-29", GroupWeek, Bucket{Key: "2024-02-26", Label: "26 févr. → 03 mars"}},
		{"2024-02-29", GroupMonth, Bucket{Key: "2024-02", Label: "févr. 2024"}},
		{"2024-07-14", GroupMonth, Bucket{Key: "2024-07", Label: "juill. 2024"}},
		{"pas-une-date", GroupWeek, Bucket{Key: "pas-une-date", Label: "pas-une-date"}},
	}
	for _, c := range cases {
		t.Run(string(c.mode)+"/"+c.date, func(t *testing.T) {
			assert.Equal(t, c.want, BucketOfDate(c.date, c.mode, time.UTC))
		})
	}
}

func TestSameWeekSameKey(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	start := time.Date(2024, time.March, 4, 0, 0, 0, 0, loc) // Monday
	key := BucketOf(start, GroupWeek).Key
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		assert.Equal(t, key, BucketOf(d, GroupWeek).Key, d.Weekday().String())
	}
	assert.NotEqual(t, key, BucketOf(start.AddDate(0, 0, 7), GroupWeek).Key)
	assert.NotEqual(t, key, BucketOf(start.AddDate(0, 0, -1), GroupWeek).Key)
}

func TestSameMonthSameKey(t *testing.T) {
	for d := 1; d <= 31; d++ {
		day := time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, "2024-01", BucketOf(day, GroupMonth).Key)
	}
}

func TestParseModes(t *testing.T) {
	assert.Equal(t, GroupDay, ParseGroupBy(""))
	assert.Equal(t, GroupWeek, ParseGroupBy("week"))
	assert.Equal(t, GroupDay, ParseGroupBy("year"))
	assert.Equal(t, TypeAll, ParseTypeFilter("bogus"))
	assert.Equal(t, TypeIncome, ParseTypeFilter("income"))
	assert.Equal(t, SortTotalDesc, ParseCategorySort(""))
	assert.Equal(t, SortNameAsc, ParseCategorySort("name_asc"))
	assert.Equal(t, FocusNet, ParseFocus("nope"))
	assert.Equal(t, SortDateDesc, ParseTransactionSort(""))
}
