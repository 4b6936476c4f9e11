// Package rec parses the structured result the external recommendation
// engine hands over at intake time. The payload is stored opaquely in
// therapy_sessions.session_data and exploded into one row per song in
// therapy_recommendations.
package rec

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/theramuse/theramuse/internal/store"
)

// Result is one full recommendation run
type Result struct {
	TotalSongs int                     `json:"total_songs"`
	SessionID  string                  `json:"session_id"`
	Categories map[string]CategoryData `json:"categories"`
}

// CategoryData holds the songs recommended for one category
type CategoryData struct {
	Songs []Song `json:"songs"`
}

// Song is one recommended track. The engine is inconsistent about
// where the video identifier lives: it may arrive as a nested object
// under "id", as a bare string, or embedded in any of several URL
// fields. VideoID() resolves them in that order.
type Song struct {
	Title       string          `json:"title"`
	Channel     string          `json:"channel"`
	Description string          `json:"description"`
	RawID       json.RawMessage `json:"id"`
	VideoIDTop  string          `json:"videoId"`
	VideoIDSnk  string          `json:"video_id"`
	URL         string          `json:"url"`
	YouTubeURL  string          `json:"youtube_url"`
	Link        string          `json:"link"`
	WebpageURL  string          `json:"webpage_url"`
	WatchURL    string          `json:"watch_url"`
}

// Parse decodes a raw engine payload
func Parse(data []byte) (*Result, error) {
	r := &Result{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("failed to parse recommendation payload: %w", err)
	}
	return r, nil
}

// VideoID resolves the video identifier from whichever shape the
// engine used, or "" when the song carries none.
func (s *Song) VideoID() string {
	// id as an object with videoId / video_id
	if len(s.RawID) > 0 {
		var obj struct {
			VideoID    string `json:"videoId"`
			VideoIDSnk string `json:"video_id"`
		}
		if err := json.Unmarshal(s.RawID, &obj); err == nil {
			if obj.VideoID != "" {
				return obj.VideoID
			}
			if obj.VideoIDSnk != "" {
				return obj.VideoIDSnk
			}
		}
	}

	// videoId at the top level
	if s.VideoIDTop != "" {
		return s.VideoIDTop
	}
	if s.VideoIDSnk != "" {
		return s.VideoIDSnk
	}

	// id as a bare string: either the ID itself or a URL
	if len(s.RawID) > 0 {
		var str string
		if err := json.Unmarshal(s.RawID, &str); err == nil && str != "" {
			if bareVideoID.MatchString(str) {
				return str
			}
			if id := ExtractVideoID(str); id != "" {
				return id
			}
		}
	}

	// URL fallbacks
	for _, u := range []string{s.URL, s.YouTubeURL, s.Link, s.WebpageURL, s.WatchURL} {
		if id := ExtractVideoID(u); id != "" {
			return id
		}
	}

	return ""
}

// SongCount returns the total number of songs, preferring the engine's
// own count and falling back to counting the categories.
func (r *Result) SongCount() int {
	if r.TotalSongs > 0 {
		return r.TotalSongs
	}
	n := 0
	for _, cat := range r.Categories {
		n += len(cat.Songs)
	}
	return n
}

// Explode flattens the payload into one store row per song, ranked
// within each category in payload order. Categories are walked in
// sorted order so repeated runs produce identical row sequences.
func (r *Result) Explode(patientID string) []*store.Recommendation {
	categories := make([]string, 0, len(r.Categories))
	for name := range r.Categories {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	var recs []*store.Recommendation
	for _, name := range categories {
		for i, song := range r.Categories[name].Songs {
			recs = append(recs, &store.Recommendation{
				PatientID: patientID,
				Category:  name,
				SongTitle: song.Title,
				VideoID:   song.VideoID(),
				Channel:   song.Channel,
				Rank:      i + 1,
			})
		}
	}
	return recs
}
