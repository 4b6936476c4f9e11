package rec

import "regexp"

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`v=([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`/embed/([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`/shorts/([A-Za-z0-9_-]{6,})`),
}

var bareVideoID = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)

// ExtractVideoID pulls a YouTube video ID out of the URL shapes the
// engine has been seen to emit. Returns "" when none matches.
func ExtractVideoID(url string) string {
	if url == "" {
		return ""
	}
	for _, pat := range videoIDPatterns {
		m := pat.FindStringSubmatch(url)
		if m == nil {
			continue
		}
		return m[1]
	}
	return ""
}

// WatchURL builds the canonical watch URL for a video ID
func WatchURL(videoID string) string {
	if videoID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + videoID
}
