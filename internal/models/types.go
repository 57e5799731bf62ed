package models

import (
	"time"

	"github.com/mrwolf/hallmark-server/internal/selection"
)

// Movie is one plot with the image and title chosen for it
type Movie struct {
	Plot  string `json:"plot"`
	Image string `json:"image"`
	Title string `json:"title"`
}

// MoviesFromPicks converts selected movies for a response
func MoviesFromPicks(picks []selection.Pick) []Movie {
	movies := make([]Movie, len(picks))
	for i, p := range picks {
		movies[i] = Movie{Plot: p.Plot, Image: p.Image, Title: p.Title}
	}
	return movies
}

// MoviesResponse is returned by the movies endpoint
type MoviesResponse struct {
	Movies []Movie `json:"movies"`
}

// FeaturedBatch is a batch generated by the scheduler
type FeaturedBatch struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Movies      []Movie   `json:"movies"`
}

// FeaturedHistoryResponse is returned by the featured history endpoint
type FeaturedHistoryResponse struct {
	Batches []FeaturedBatch `json:"batches"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Lexicon string `json:"lexicon"`
	Version string `json:"version"`
}
