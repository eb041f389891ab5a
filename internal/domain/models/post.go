package models

import "time"

// Post is one raw social-media post as fetched by a post source.
type Post struct {
	ID        string
	Subreddit string
	Title     string
	Body      string
	Permalink string
	CreatedAt time.Time
	Stickied  bool
}

// FullText returns the text used for symbol extraction and scoring.
func (p *Post) FullText() string {
	if p.Body == "" {
		return p.Title
	}
	return p.Title + " " + p.Body
}

// Source returns the source identifier used for reliability weighting.
func (p *Post) SourceID() string {
	return "reddit/r/" + p.Subreddit
}
