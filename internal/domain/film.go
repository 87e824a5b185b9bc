package domain

// Film is the read-only projection of an upstream feed entry. The feed
// describes the next release and, nested, the one after it.
type Film struct {
	ID                  int64  `json:"id"`
	Title               string `json:"title"`
	Overview            string `json:"overview,omitempty"`
	PosterURL           string `json:"poster_url,omitempty"`
	ReleaseDate         string `json:"release_date"`
	Type                string `json:"type,omitempty"`
	DaysUntil           int    `json:"days_until,omitempty"`
	VideoURL            string `json:"video_url,omitempty"`
	FollowingProduction *Film  `json:"following_production,omitempty"`
}
