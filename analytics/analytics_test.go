package analytics

import (
	"path/filepath"
	"testing"
	"time"
)

const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 Safari/605.1.15"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "analytics.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIsBot(t *testing.T) {
	tests := []struct {
		ua   string
		want bool
	}{
		{browserUA, false},
		{"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", true},
		{"curl/8.4.0", true},
		{"", true},
	}
	for _, tt := range tests {
		if got := IsBot(tt.ua); got != tt.want {
			t.Errorf("IsBot(%q) = %v, want %v", tt.ua, got, tt.want)
		}
	}
}

func TestVisitorIDRotatesDaily(t *testing.T) {
	d1 := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)
	d2 := d1.Add(24 * time.Hour)
	a := VisitorID("salt", "203.0.113.1", browserUA, d1)
	if a != VisitorID("salt", "203.0.113.1", browserUA, d1.Add(time.Hour)) {
		t.Error("expected the same id within a day")
	}
	if a == VisitorID("salt", "203.0.113.1", browserUA, d2) {
		t.Error("expected a new id the next day")
	}
	if a == VisitorID("other", "203.0.113.1", browserUA, d1) {
		t.Error("expected the salt to change the id")
	}
	if len(a) != 16 {
		t.Errorf("id length = %d", len(a))
	}
}

func TestRecordReadDedupesPerDay(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	counted, err := s.RecordRead("implants", "203.0.113.1", browserUA, now)
	if err != nil || !counted {
		t.Fatalf("first read: %v, %v", counted, err)
	}
	if counted, _ := s.RecordRead("implants", "203.0.113.1", browserUA, now); counted {
		t.Error("repeat read on the same day should not count")
	}
	if counted, _ := s.RecordRead("implants", "203.0.113.2", browserUA, now); !counted {
		t.Error("a second visitor should count")
	}
	if counted, _ := s.RecordRead("implants", "203.0.113.3", "Googlebot/2.1", now); counted {
		t.Error("bots should not count")
	}
	s.RecordRead("flossing", "203.0.113.1", browserUA, now)

	top, err := s.TopArticles(now.AddDate(0, 0, -30), 10)
	if err != nil {
		t.Fatalf("TopArticles: %v", err)
	}
	if len(top) != 2 || top[0] != (ArticleReads{"implants", 2}) || top[1] != (ArticleReads{"flossing", 1}) {
		t.Errorf("top = %+v", top)
	}
}

func TestSaltPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.db")
	s1, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	salt := s1.salt
	s1.Close()

	s2, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if salt == "" || s2.salt != salt {
		t.Errorf("salt changed across opens: %q vs %q", salt, s2.salt)
	}
}

func TestCleanupOldReads(t *testing.T) {
	s := newTestStore(t)
	old := time.Now().UTC().AddDate(0, 0, -400)
	s.RecordRead("old", "203.0.113.1", browserUA, old)
	s.RecordRead("new", "203.0.113.1", browserUA, time.Now())

	if err := s.CleanupOldReads(365); err != nil {
		t.Fatalf("CleanupOldReads: %v", err)
	}
	top, _ := s.TopArticles(old.AddDate(0, 0, -1), 10)
	if len(top) != 1 || top[0].Slug != "new" {
		t.Errorf("top after cleanup = %+v", top)
	}
}
