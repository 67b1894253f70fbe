// Package queue defines message payloads exchanged over the message broker.
package queue

// MovieEventsQueue is the durable queue carrying MovieEvent messages.
const MovieEventsQueue = "movie.events"

// Event types published on MovieEventsQueue.
const (
	MovieCreated = "movie.created"
	MovieUpdated = "movie.updated"
	MovieDeleted = "movie.deleted"
)

// MovieEvent is published after a movie is written.  It carries enough for
// downstream consumers to keep an activity log without querying the
// primary database.
type MovieEvent struct {
	Type       string `json:"type"`
	MovieID    uint   `json:"movie_id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	AuthorID   uint   `json:"author_id"`
	ActorID    uint   `json:"actor_id"`
	ActorEmail string `json:"actor_email"`
	OccurredAt string `json:"occurred_at"`
}
