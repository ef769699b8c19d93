package archive

import (
	"log"
	"os"
	"sort"
)

// MonthBucket accumulates one month's assembled posts and downloaded media
// for the duration of a single run.
type MonthBucket struct {
	// Content maps a calendar date (YYYY-MM-DD) to the posts assembled for
	// that day, in chronological processing order.
	Content map[string][]Post
	// Media lists the month's downloaded assets in processing order.
	Media []MediaAsset
}

// Updates maps a month (YYYY-MM) to its bucket. It exists only for one run
// and is never persisted.
type Updates map[string]*MonthBucket

// Add files a post into its day and month buckets and registers its media.
func (u Updates) Add(post Post, media []MediaAsset) {
	month := post.Date[:7]
	bucket := u[month]
	if bucket == nil {
		bucket = &MonthBucket{Content: make(map[string][]Post)}
		u[month] = bucket
	}
	bucket.Content[post.Date] = append(bucket.Content[post.Date], post)
	bucket.Media = append(bucket.Media, media...)
}

// Months returns the touched months sorted ascending.
func (u Updates) Months() []string {
	months := make([]string, 0, len(u))
	for month := range u {
		months = append(months, month)
	}
	sort.Strings(months)
	return months
}

// CleanupMedia removes any remaining local temporary media files. Assets
// already consumed (and deleted) by the publisher are skipped silently.
func (u Updates) CleanupMedia() {
	for _, bucket := range u {
		for _, asset := range bucket.Media {
			if err := os.Remove(asset.LocalPath); err != nil && !os.IsNotExist(err) {
				log.Printf("[Updates] Error removing temporary file %s: %v", asset.LocalPath, err)
			}
		}
	}
}

// Dates returns the bucket's dates sorted ascending.
func (b *MonthBucket) Dates() []string {
	dates := make([]string, 0, len(b.Content))
	for date := range b.Content {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// MonthlyPosts flattens the bucket into a single slice, ascending by date
// with the within-day insertion order preserved.
func (b *MonthBucket) MonthlyPosts() []Post {
	var posts []Post
	for _, date := range b.Dates() {
		posts = append(posts, b.Content[date]...)
	}
	return posts
}

// MergeMonthlyPosts combines previously published posts with this run's
// posts for the same month: duplicates collapse by post id with the later
// occurrence winning, and the result is sorted descending by id for the
// monthly file.
func MergeMonthlyPosts(previous, current []Post) []Post {
	byID := make(map[int64]Post, len(previous)+len(current))
	for _, post := range previous {
		byID[post.ID] = post
	}
	for _, post := range current {
		byID[post.ID] = post
	}

	merged := make([]Post, 0, len(byID))
	for _, post := range byID {
		merged = append(merged, post)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ID > merged[j].ID })
	return merged
}
