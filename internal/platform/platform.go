// Package platform maps raw URL strings to coarse platform tags. The tag
// drives display only; extraction never branches on it.
package platform

import "strings"

// Platform identifies the source site of a video URL.
type Platform string

const (
	YouTube     Platform = "youtube"
	Facebook    Platform = "facebook"
	TikTok      Platform = "tiktok"
	Instagram   Platform = "instagram"
	Twitter     Platform = "twitter"
	Vimeo       Platform = "vimeo"
	Dailymotion Platform = "dailymotion"
	Generic     Platform = "generic"
)

// Classification pairs a platform tag with its display label.
type Classification struct {
	Platform Platform
	Label    string
}

const (
	waitingLabel = "Waiting for URL..."
	otherLabel   = "Other Platform"
)

// Ordered match table; first hit wins.
var matchTable = []struct {
	substrings []string
	platform   Platform
	label      string
}{
	{[]string{"youtube.com", "youtu.be"}, YouTube, "YouTube"},
	{[]string{"facebook.com", "fb.watch"}, Facebook, "Facebook"},
	{[]string{"tiktok.com"}, TikTok, "TikTok"},
	{[]string{"instagram.com"}, Instagram, "Instagram"},
	{[]string{"twitter.com", "x.com"}, Twitter, "Twitter/X"},
	{[]string{"vimeo.com"}, Vimeo, "Vimeo"},
	{[]string{"dailymotion.com"}, Dailymotion, "Dailymotion"},
}

// Classify returns the platform tag and label for a raw, possibly untrimmed
// URL string. It is pure and total over all inputs.
func Classify(raw string) Classification {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Classification{Generic, waitingLabel}
	}

	for _, entry := range matchTable {
		for _, sub := range entry.substrings {
			if strings.Contains(raw, sub) {
				return Classification{entry.platform, entry.label}
			}
		}
	}

	if strings.HasPrefix(raw, "http") {
		return Classification{Generic, otherLabel}
	}
	return Classification{Generic, waitingLabel}
}
