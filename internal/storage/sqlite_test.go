package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/bloom/internal/merge"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := store.SaveHighScore("highScore", 420); err != nil {
		t.Fatalf("SaveHighScore() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	best, err := store.LoadHighScore("highScore")
	if err != nil {
		t.Fatalf("LoadHighScore() failed: %v", err)
	}
	if best != 420 {
		t.Errorf("LoadHighScore() = %d, expected 420", best)
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	for _, score := range []int{100, 50, 200} {
		if _, err := store.SaveScore("classic", score); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SaveScore("speed", 500); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	scores, err := store.TopScores("classic", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}

	expected := []int{200, 100, 50}
	for i, want := range expected {
		if scores[i].Score != want {
			t.Errorf("scores[%d] = %d, expected %d", i, scores[i].Score, want)
		}
		if scores[i].ModeID != "classic" {
			t.Errorf("scores[%d].ModeID = %q, expected classic", i, scores[i].ModeID)
		}
	}

	speed, err := store.TopScores("speed", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(speed) != 1 {
		t.Errorf("Expected 1 speed score, got %d", len(speed))
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.SaveScore("classic", (i+1)*100)
	}

	scores, err := store.TopScores("classic", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores with limit, got %d", len(scores))
	}
	if scores[0].Score != 500 || scores[1].Score != 400 || scores[2].Score != 300 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore("classic")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for empty mode, got %d", high)
	}

	store.SaveScore("classic", 100)
	store.SaveScore("classic", 300)
	store.SaveScore("classic", 200)

	high, err = store.HighScore("classic")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 300 {
		t.Errorf("Expected high score of 300, got %d", high)
	}
}

func TestStoreBestScorePerMode(t *testing.T) {
	store := openTestStore(t)

	best, err := store.LoadHighScore("speedModeHighScore")
	if err != nil {
		t.Fatalf("LoadHighScore() failed: %v", err)
	}
	if best != 0 {
		t.Errorf("LoadHighScore() on empty store = %d, expected 0", best)
	}

	steps := []struct {
		key   string
		score int
		want  int
	}{
		{"highScore", 120, 120},
		{"highScore", 80, 120},
		{"highScore", 300, 300},
		{"speedModeHighScore", 40, 40},
	}
	for _, step := range steps {
		if err := store.SaveHighScore(step.key, step.score); err != nil {
			t.Fatalf("SaveHighScore(%q, %d) failed: %v", step.key, step.score, err)
		}
		got, err := store.LoadHighScore(step.key)
		if err != nil {
			t.Fatalf("LoadHighScore(%q) failed: %v", step.key, err)
		}
		if got != step.want {
			t.Errorf("after SaveHighScore(%q, %d): best = %d, expected %d", step.key, step.score, got, step.want)
		}
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("classic", 100)
	store.SaveScore("classic", 200)
	store.SaveScore("speed", 300)
	store.SaveHighScore("highScore", 200)
	store.SaveHighScore("speedModeHighScore", 300)

	if err := store.ClearScores("classic", "highScore"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	classic, _ := store.TopScores("classic", 10)
	if len(classic) != 0 {
		t.Errorf("Expected 0 classic scores after clear, got %d", len(classic))
	}
	if best, _ := store.LoadHighScore("highScore"); best != 0 {
		t.Errorf("classic best after clear = %d, expected 0", best)
	}

	speed, _ := store.TopScores("speed", 10)
	if len(speed) != 1 {
		t.Errorf("Speed scores should not be affected by clearing classic")
	}
	if best, _ := store.LoadHighScore("speedModeHighScore"); best != 300 {
		t.Errorf("speed best after clear = %d, expected 300", best)
	}
}

func TestStoreAllScores(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 20; i++ {
		store.SaveScore("classic", i*10)
	}

	scores, err := store.AllScores("classic")
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}
	if len(scores) != 20 {
		t.Errorf("Expected 20 scores, got %d", len(scores))
	}
}

func TestStoreModeStats(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.GetModeStats("classic")
	if err != nil {
		t.Fatalf("GetModeStats() failed: %v", err)
	}
	if stats.GamesCount != 0 || !stats.LastPlayed.IsZero() {
		t.Errorf("empty stats = %+v, expected zero", stats)
	}

	store.SaveScore("classic", 100)
	store.SaveScore("classic", 300)

	stats, err = store.GetModeStats("classic")
	if err != nil {
		t.Fatalf("GetModeStats() failed: %v", err)
	}
	if stats.GamesCount != 2 {
		t.Errorf("GamesCount = %d, expected 2", stats.GamesCount)
	}
	if stats.HighScore != 300 {
		t.Errorf("HighScore = %d, expected 300", stats.HighScore)
	}
	if stats.AvgScore != 200 {
		t.Errorf("AvgScore = %v, expected 200", stats.AvgScore)
	}
	if stats.TotalScore != 400 {
		t.Errorf("TotalScore = %d, expected 400", stats.TotalScore)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestAchievementLogCounters(t *testing.T) {
	store := openTestStore(t)
	sink := NewAchievementLog(store, nil)

	sink.OnSessionStart()
	sink.OnSuccessfulMerge()
	sink.OnSuccessfulMerge()
	sink.OnFailedMerge()
	sink.OnLargeCombo()
	sink.OnQuickMerge(3 * time.Second)
	sink.OnQuickMerge(800 * time.Millisecond)
	sink.OnMultiMerge(3)
	sink.OnMultiMerge(5)
	sink.OnMultiMerge(4)
	sink.OnTopTierCreated(4 * time.Minute)
	sink.OnTopTierCreated(150 * time.Second)
	sink.OnSessionPause()
	sink.OnSessionEnd()

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}

	expected := map[string]int64{
		StatSessionsStarted: 1,
		StatMerges:          2,
		StatFailedMerges:    1,
		StatLargeCombos:     1,
		StatQuickMerges:     1,
		StatFastestMergeMs:  800,
		StatMultiMerges:     3,
		StatLargestChain:    5,
		StatTopTiers:        2,
		StatFastestTopMs:    150000,
		StatSessionsPaused:  1,
		StatSessionsEnded:   1,
	}
	for name, want := range expected {
		if got := stats[name]; got != want {
			t.Errorf("stat %s = %d, expected %d", name, got, want)
		}
	}

	if _, ok, _ := store.Stat("never_recorded"); ok {
		t.Error("Stat() reported an unrecorded statistic")
	}
}

func TestAchievementLogSurvivesClosedStore(t *testing.T) {
	store := openTestStore(t)
	sink := NewAchievementLog(store, nil)
	store.Close()

	// Errors are logged, never surfaced.
	sink.OnSuccessfulMerge()
	sink.OnSessionEnd()
}

func TestSkins(t *testing.T) {
	store := openTestStore(t)

	asset, err := store.Skin(3)
	if err != nil {
		t.Fatalf("Skin() failed: %v", err)
	}
	if asset != "medium" {
		t.Errorf("default Skin(3) = %q, expected medium", asset)
	}

	if err := store.EquipSkin(3, "sunflower"); err != nil {
		t.Fatalf("EquipSkin() failed: %v", err)
	}
	if err := store.EquipSkin(3, "tulip"); err != nil {
		t.Fatalf("EquipSkin() failed: %v", err)
	}
	if asset, _ := store.Skin(3); asset != "tulip" {
		t.Errorf("Skin(3) = %q, expected tulip", asset)
	}

	set, err := store.LoadSkins()
	if err != nil {
		t.Fatalf("LoadSkins() failed: %v", err)
	}
	if got := set.EquippedSkin(3); got != "tulip" {
		t.Errorf("EquippedSkin(3) = %q, expected tulip", got)
	}
	if got := set.EquippedSkin(merge.TopTier); got != "largest" {
		t.Errorf("EquippedSkin(top) = %q, expected largest", got)
	}

	if err := store.ResetSkin(3); err != nil {
		t.Fatalf("ResetSkin() failed: %v", err)
	}
	if asset, _ := store.Skin(3); asset != "medium" {
		t.Errorf("Skin(3) after reset = %q, expected medium", asset)
	}
}

func TestEquipSkinRejectsBadInput(t *testing.T) {
	store := openTestStore(t)

	tests := []struct {
		name  string
		tier  merge.Tier
		asset string
	}{
		{"tier too high", merge.TierCount, "rose"},
		{"negative tier", -1, "rose"},
		{"empty asset", 2, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := store.EquipSkin(tc.tier, tc.asset); err == nil {
				t.Error("EquipSkin() should fail")
			}
		})
	}
}
