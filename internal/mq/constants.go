package mq

// Queue names and message definitions

// queue from the movie service to the catalog workflow
// deliver message to notify the workflow that a movie was deleted, so the
// watchlist entries referencing it can be purged
const (
	MovieDeletedQueue = "catalog.movie.deleted"
)

type MovieDeletedMessage struct {
	MovieID uint `json:"movie_id"`
}
