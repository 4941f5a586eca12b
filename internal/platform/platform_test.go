package platform

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		url      string
		platform Platform
		label    string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", YouTube, "YouTube"},
		{"https://youtu.be/dQw4w9WgXcQ", YouTube, "YouTube"},
		{"https://www.facebook.com/watch?v=2018722278279349", Facebook, "Facebook"},
		{"https://fb.watch/abc123/", Facebook, "Facebook"},
		{"https://www.tiktok.com/@tiktok/video/6584647400055377158", TikTok, "TikTok"},
		{"https://www.instagram.com/reel/Cxyz/", Instagram, "Instagram"},
		{"https://twitter.com/user/status/1234567890", Twitter, "Twitter/X"},
		{"https://x.com/user/status/1234567890", Twitter, "Twitter/X"},
		{"https://vimeo.com/123456789", Vimeo, "Vimeo"},
		{"https://www.dailymotion.com/video/x7tgad0", Dailymotion, "Dailymotion"},
		{"https://example.com/video.mp4", Generic, "Other Platform"},
		{"http://some.site/clip", Generic, "Other Platform"},
		{"not a url at all", Generic, "Waiting for URL..."},
		{"", Generic, "Waiting for URL..."},
		{"   ", Generic, "Waiting for URL..."},
		{"  https://youtu.be/xyz  ", YouTube, "YouTube"},
	}

	for _, test := range tests {
		result := Classify(test.url)
		if result.Platform != test.platform {
			t.Errorf("Classify(%q).Platform = %s, expected %s", test.url, result.Platform, test.platform)
		}
		if result.Label != test.label {
			t.Errorf("Classify(%q).Label = %s, expected %s", test.url, result.Label, test.label)
		}
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// A URL mentioning two platforms resolves to the earlier table entry.
	result := Classify("https://www.youtube.com/watch?v=abc&ref=tiktok.com")
	if result.Platform != YouTube {
		t.Errorf("expected youtube to win over tiktok, got %s", result.Platform)
	}
}
