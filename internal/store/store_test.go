package store

import (
	"strings"
	"testing"

	"newslistener/internal/core"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})
	return s
}

func TestDigestLifecycle(t *testing.T) {
	s := testStore(t)

	d, err := s.CreateDigest(1, `{"source_type":"direct_input"}`)
	if err != nil {
		t.Fatalf("CreateDigest failed: %v", err)
	}
	if d.ID == 0 {
		t.Error("Digest should receive an id")
	}
	if d.Status != core.StatusPendingScript {
		t.Errorf("New digest should be PENDING_SCRIPT, got %s", d.Status)
	}

	if err := s.SetDigestScript(d.ID, "the script", core.StatusPendingAudio); err != nil {
		t.Fatalf("SetDigestScript failed: %v", err)
	}
	if err := s.UpdateDigestStatus(d.ID, core.StatusProcessingAudio); err != nil {
		t.Fatalf("UpdateDigestStatus failed: %v", err)
	}

	got, err := s.GetDigest(d.ID)
	if err != nil {
		t.Fatalf("GetDigest failed: %v", err)
	}
	if got.Status != core.StatusProcessingAudio {
		t.Errorf("Expected PROCESSING_AUDIO, got %s", got.Status)
	}
	if got.ScriptText != "the script" {
		t.Errorf("Script not persisted, got %q", got.ScriptText)
	}
}

func TestGetDigest_NotFound(t *testing.T) {
	s := testStore(t)
	got, err := s.GetDigest(999)
	if err != nil {
		t.Fatalf("GetDigest failed: %v", err)
	}
	if got != nil {
		t.Error("Expected nil for a missing digest")
	}
}

func TestFailDigest_TruncatesMessage(t *testing.T) {
	s := testStore(t)
	d, _ := s.CreateDigest(1, "{}")

	if err := s.FailDigest(d.ID, strings.Repeat("e", 1000)); err != nil {
		t.Fatalf("FailDigest failed: %v", err)
	}
	got, _ := s.GetDigest(d.ID)
	if got.Status != core.StatusFailed {
		t.Errorf("Expected FAILED, got %s", got.Status)
	}
	if len(got.ErrorMessage) != 255 {
		t.Errorf("Expected 255-char message, got %d", len(got.ErrorMessage))
	}
}

func TestFindCachedDigest(t *testing.T) {
	s := testStore(t)
	criteria := `{"source_type":"direct_input","language":"en"}`

	d, _ := s.CreateDigest(1, criteria)

	// Not cached yet: not completed and no episode.
	if got, _ := s.FindCachedDigest(1, criteria, "en", "standard"); got != nil {
		t.Error("Incomplete digest should not be a cache hit")
	}

	_ = s.SetDigestScript(d.ID, "script", core.StatusPendingAudio)
	_ = s.UpdateDigestStatus(d.ID, core.StatusCompleted)
	ep := &core.Episode{DigestID: d.ID, AudioURL: "/static/audio/x.mp3", StoragePath: "static/audio/x.mp3", Language: "en", AudioStyle: "standard"}
	if err := s.SaveEpisode(ep); err != nil {
		t.Fatalf("SaveEpisode failed: %v", err)
	}

	got, err := s.FindCachedDigest(1, criteria, "en", "standard")
	if err != nil {
		t.Fatalf("FindCachedDigest failed: %v", err)
	}
	if got == nil || got.ID != d.ID {
		t.Fatal("Expected a cache hit for the completed digest")
	}

	// A different language for the same digest is not cached.
	if got, _ := s.FindCachedDigest(1, criteria, "fr", "standard"); got != nil {
		t.Error("Different language should miss the cache")
	}
	// Another user never hits this cache entry.
	if got, _ := s.FindCachedDigest(2, criteria, "en", "standard"); got != nil {
		t.Error("Different user should miss the cache")
	}
	// Different criteria text misses.
	if got, _ := s.FindCachedDigest(1, `{"source_type":"specific_urls"}`, "en", "standard"); got != nil {
		t.Error("Different criteria should miss the cache")
	}
}

func TestSaveEpisode_UpsertsPerTuple(t *testing.T) {
	s := testStore(t)
	d, _ := s.CreateDigest(1, "{}")

	first := &core.Episode{DigestID: d.ID, AudioURL: "/static/audio/a.mp3", Language: "en", AudioStyle: "standard", DurationSeconds: 60}
	if err := s.SaveEpisode(first); err != nil {
		t.Fatalf("SaveEpisode failed: %v", err)
	}

	second := &core.Episode{DigestID: d.ID, AudioURL: "/static/audio/b.mp3", Language: "en", AudioStyle: "standard", DurationSeconds: 90}
	if err := s.SaveEpisode(second); err != nil {
		t.Fatalf("SaveEpisode upsert failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Upsert should reuse the row, got ids %d and %d", first.ID, second.ID)
	}

	got, _ := s.GetEpisode(d.ID, "en", "standard")
	if got.AudioURL != "/static/audio/b.mp3" || got.DurationSeconds != 90 {
		t.Errorf("Upsert did not update fields: %+v", got)
	}

	// A different style is a separate row.
	other := &core.Episode{DigestID: d.ID, AudioURL: "/static/audio/c.mp3", Language: "en", AudioStyle: "quick_brief"}
	if err := s.SaveEpisode(other); err != nil {
		t.Fatalf("SaveEpisode failed: %v", err)
	}
	if other.ID == first.ID {
		t.Error("Different style should create a new row")
	}
}

func TestRenameEpisode(t *testing.T) {
	s := testStore(t)
	d, _ := s.CreateDigest(1, "{}")
	ep := &core.Episode{DigestID: d.ID, AudioURL: "/static/audio/a.mp3", StoragePath: "static/audio/a.mp3", Language: "en", AudioStyle: "standard"}
	_ = s.SaveEpisode(ep)

	if err := s.RenameEpisode(ep.ID, "Morning commute"); err != nil {
		t.Fatalf("RenameEpisode failed: %v", err)
	}

	got, _ := s.GetEpisodeByID(ep.ID)
	if got.UserGivenName != "Morning commute" {
		t.Errorf("Expected renamed episode, got %q", got.UserGivenName)
	}
	if got.AudioURL != ep.AudioURL || got.StoragePath != ep.StoragePath {
		t.Error("Rename must not touch the audio location")
	}
}

func TestRenameEpisode_NotFound(t *testing.T) {
	s := testStore(t)
	if err := s.RenameEpisode(12345, "ghost"); err == nil {
		t.Error("Expected error renaming a missing episode")
	}
}

func TestListEpisodes_ScopedToUser(t *testing.T) {
	s := testStore(t)
	mine, _ := s.CreateDigest(1, "{}")
	theirs, _ := s.CreateDigest(2, "{}")

	_ = s.SaveEpisode(&core.Episode{DigestID: mine.ID, AudioURL: "/static/audio/m.mp3", Language: "en", AudioStyle: "standard"})
	_ = s.SaveEpisode(&core.Episode{DigestID: theirs.ID, AudioURL: "/static/audio/t.mp3", Language: "en", AudioStyle: "standard"})

	episodes, err := s.ListEpisodes(1)
	if err != nil {
		t.Fatalf("ListEpisodes failed: %v", err)
	}
	if len(episodes) != 1 {
		t.Fatalf("Expected 1 episode for user 1, got %d", len(episodes))
	}
	if episodes[0].DigestID != mine.ID {
		t.Error("Listed episode belongs to the wrong user")
	}
}

func TestDeleteEpisode(t *testing.T) {
	s := testStore(t)
	d, _ := s.CreateDigest(1, "{}")
	ep := &core.Episode{DigestID: d.ID, AudioURL: "/static/audio/a.mp3", Language: "en", AudioStyle: "standard"}
	_ = s.SaveEpisode(ep)

	if err := s.DeleteEpisode(ep.ID); err != nil {
		t.Fatalf("DeleteEpisode failed: %v", err)
	}
	got, _ := s.GetEpisode(d.ID, "en", "standard")
	if got != nil {
		t.Error("Episode should be gone after delete")
	}
}

func TestUserPreferenceRoundTrip(t *testing.T) {
	s := testStore(t)

	if got, _ := s.GetUserPreference(1); got != nil {
		t.Error("Expected nil before any preferences are stored")
	}

	prefs := &core.UserPreference{
		UserID:               1,
		PreferredTopics:      []string{"technology", "science"},
		CustomKeywords:       []string{"ai"},
		IncludeSourceRSSURLs: []string{"https://feeds.example.com/rss"},
		ExcludeKeywords:      []string{"sponsored"},
		ExcludeSourceDomains: []string{"tabloid.example.net"},
		DefaultLanguage:      "es",
		DefaultAudioStyle:    "calm_neutral_reporter",
	}
	if err := s.SaveUserPreference(prefs); err != nil {
		t.Fatalf("SaveUserPreference failed: %v", err)
	}

	got, err := s.GetUserPreference(1)
	if err != nil {
		t.Fatalf("GetUserPreference failed: %v", err)
	}
	if len(got.PreferredTopics) != 2 || got.PreferredTopics[0] != "technology" {
		t.Errorf("Topics not round-tripped: %v", got.PreferredTopics)
	}
	if got.DefaultLanguage != "es" {
		t.Errorf("Language not round-tripped: %q", got.DefaultLanguage)
	}

	// Saving again replaces the stored preferences in place.
	prefs.PreferredTopics = []string{"economy"}
	if err := s.SaveUserPreference(prefs); err != nil {
		t.Fatalf("SaveUserPreference update failed: %v", err)
	}
	got, _ = s.GetUserPreference(1)
	if len(got.PreferredTopics) != 1 || got.PreferredTopics[0] != "economy" {
		t.Errorf("Update not applied: %v", got.PreferredTopics)
	}
}

func TestPredefinedCategoriesSeeded(t *testing.T) {
	s := testStore(t)

	cats, err := s.ListPredefinedCategories(true)
	if err != nil {
		t.Fatalf("ListPredefinedCategories failed: %v", err)
	}
	if len(cats) == 0 {
		t.Fatal("Expected seeded categories on first run")
	}

	var found *core.PredefinedCategory
	for i := range cats {
		if strings.Contains(cats[i].Name, "El País") {
			found = &cats[i]
			break
		}
	}
	if found == nil {
		t.Fatal("Expected an El País seed category")
	}
	if found.Language != "es" {
		t.Errorf("Seed category should be Spanish, got %q", found.Language)
	}
	if len(found.RSSURLs) == 0 {
		t.Error("Seed category should carry feed URLs")
	}

	byID, err := s.GetPredefinedCategory(found.ID)
	if err != nil {
		t.Fatalf("GetPredefinedCategory failed: %v", err)
	}
	if byID == nil || byID.Name != found.Name {
		t.Error("Category lookup by id should match the listing")
	}
}

func TestSeedRunsOnce(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	first, _ := s1.ListPredefinedCategories(false)
	_ = s1.Close()

	s2, err := NewStore(dir)
	if err != nil {
		t.Fatalf("Reopening store failed: %v", err)
	}
	defer s2.Close()
	second, _ := s2.ListPredefinedCategories(false)

	if len(first) != len(second) {
		t.Errorf("Reopening the store must not reseed: %d then %d", len(first), len(second))
	}
}
