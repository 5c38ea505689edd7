// Package stats вычисляет агрегаты по отзывам при чтении. Ничего не хранится денормализованно.
package stats

import (
	"sort"
	"time"

	"cinevault/internal/domain"
)

// AverageRating среднее по оценкам, 0 при отсутствии отзывов.
func AverageRating(reviews []domain.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

func ReviewCount(reviews []domain.Review) int {
	return len(reviews)
}

// LastActivity время самого позднего отзыва или nil.
func LastActivity(reviews []domain.Review) *time.Time {
	var last *time.Time
	for i := range reviews {
		t := reviews[i].CreatedAt
		if last == nil || t.After(*last) {
			last = &t
		}
	}
	return last
}

// Recent возвращает до n последних отзывов, новые первыми. При равном времени выше id идет первым.
func Recent(reviews []domain.Review, n int) []domain.Review {
	sorted := make([]domain.Review, len(reviews))
	copy(sorted, reviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ForUser собирает статистику пользователя. Отзывы должны нести связь Movie.
//
// Жанры упорядочены по числу отзывов по убыванию. При равенстве сохраняется порядок
// первого появления жанра, отзывы перед этим сортируются по (created_at, id).
func ForUser(reviews []domain.Review) domain.UserStats {
	ordered := make([]domain.Review, len(reviews))
	copy(ordered, reviews)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	type bucket struct {
		genre string
		count int
		sum   int
	}
	var buckets []*bucket
	index := make(map[string]*bucket)
	for _, r := range ordered {
		if r.Movie == nil || r.Movie.Genre == "" {
			continue
		}
		b, ok := index[r.Movie.Genre]
		if !ok {
			b = &bucket{genre: r.Movie.Genre}
			index[r.Movie.Genre] = b
			buckets = append(buckets, b)
		}
		b.count++
		b.sum += r.Rating
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].count > buckets[j].count
	})

	genres := make([]domain.GenreStat, 0, len(buckets))
	for _, b := range buckets {
		genres = append(genres, domain.GenreStat{
			Genre:         b.genre,
			Count:         b.count,
			AverageRating: float64(b.sum) / float64(b.count),
		})
	}

	return domain.UserStats{
		TotalReviews:    len(reviews),
		AverageRating:   AverageRating(reviews),
		LastActivity:    LastActivity(reviews),
		GenreStatistics: genres,
	}
}
