package sqlite

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
)

func newTestRepo(t *testing.T, name string) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to init db: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testLink(id string) *domain.Link {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Link{
		ID:          id,
		OriginalURL: "https://example.com/" + id,
		CreatedAt:   now,
		UpdatedAt:   now,
		DeepLinkConfig: domain.DeepLinkConfig{
			IOS:     &domain.IOSConfig{UniversalLink: "https://app.example.com/" + id},
			Android: &domain.AndroidConfig{PackageName: "com.example.app"},
		},
		RedirectRules: []domain.RedirectRule{
			{Priority: 2, Condition: domain.RuleCondition{Platform: domain.PlatformAndroid}, TargetURL: "https://android.example.com"},
		},
	}
}

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, "setget")

	if err := repo.Set(ctx, testLink("abc123")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := repo.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for stored link")
	}
	if got.OriginalURL != "https://example.com/abc123" {
		t.Errorf("OriginalURL = %q", got.OriginalURL)
	}
	if got.DeepLinkConfig.IOS == nil || got.DeepLinkConfig.IOS.UniversalLink != "https://app.example.com/abc123" {
		t.Errorf("ios config not round-tripped: %+v", got.DeepLinkConfig.IOS)
	}
	if len(got.RedirectRules) != 1 || got.RedirectRules[0].Condition.Platform != domain.PlatformAndroid {
		t.Errorf("rules not round-tripped: %+v", got.RedirectRules)
	}
	// defaults for fields the record left empty
	if got.Status != domain.StatusActive || got.Platform != domain.PlatformWeb || got.PlanType != domain.PlanFree {
		t.Errorf("defaults not applied: status=%q platform=%q plan=%q", got.Status, got.Platform, got.PlanType)
	}
	if got.Analytics.Regions == nil {
		t.Error("analytics maps should be allocated")
	}

	missing, err := repo.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("Get(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestClicksAndVisits(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, "clicks")
	if err := repo.Set(ctx, testLink("hit")); err != nil {
		t.Fatal(err)
	}

	visits := []domain.Visit{
		{ID: "v1", LinkID: "hit", Platform: domain.PlatformIOS, Device: domain.DeviceMobile, Browser: domain.BrowserSafari, Region: "TH", Referer: "https://news.example.com"},
		{ID: "v2", LinkID: "hit", Platform: domain.PlatformIOS, Device: domain.DeviceTablet, Browser: domain.BrowserSafari},
		{ID: "v3", LinkID: "hit", Platform: domain.PlatformWeb, Device: domain.DeviceDesktop, Browser: domain.BrowserChrome},
	}
	for i := range visits {
		visits[i].CreatedAt = time.Now()
		if err := repo.IncrementClicks(ctx, "hit"); err != nil {
			t.Fatalf("IncrementClicks: %v", err)
		}
		if err := repo.RecordVisit(ctx, &visits[i]); err != nil {
			t.Fatalf("RecordVisit: %v", err)
		}
	}

	link, err := repo.Get(ctx, "hit")
	if err != nil {
		t.Fatal(err)
	}
	if link.Clicks != 3 {
		t.Errorf("Clicks = %d, want 3", link.Clicks)
	}
	a := link.Analytics
	if a.Platforms["ios"] != 2 || a.Platforms["web"] != 1 {
		t.Errorf("platforms = %v", a.Platforms)
	}
	if a.Browsers["safari"] != 2 || a.Devices["desktop"] != 1 {
		t.Errorf("browsers = %v devices = %v", a.Browsers, a.Devices)
	}
	if len(a.Regions) != 1 || a.Regions["TH"] != 1 {
		t.Errorf("regions = %v, want only TH", a.Regions)
	}

	// a later Set must not reset counters
	link.OriginalURL = "https://example.com/updated"
	link.Clicks = 0
	if err := repo.Set(ctx, link); err != nil {
		t.Fatal(err)
	}
	link, _ = repo.Get(ctx, "hit")
	if link.Clicks != 3 || link.Analytics.Platforms["ios"] != 2 {
		t.Errorf("Set lowered counters: clicks=%d platforms=%v", link.Clicks, link.Analytics.Platforms)
	}

	stats, err := repo.GetLinkStats(ctx, "hit")
	if err != nil {
		t.Fatalf("GetLinkStats: %v", err)
	}
	if stats.TotalClicks != 3 {
		t.Errorf("TotalClicks = %d, want 3", stats.TotalClicks)
	}
	if stats.Referrers["Direct"] != 2 || stats.Referrers["https://news.example.com"] != 1 {
		t.Errorf("referrers = %v", stats.Referrers)
	}
	if len(stats.DailyClicks) != 1 || stats.DailyClicks[0].Count != 3 {
		t.Errorf("daily = %+v", stats.DailyClicks)
	}

	if err := repo.IncrementClicks(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("IncrementClicks(ghost) = %v, want ErrNotFound", err)
	}
}

func TestDeleteKeepsIDReserved(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, "delete")
	if err := repo.Set(ctx, testLink("gone")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "gone"); err != nil {
		t.Fatal(err)
	}

	link, err := repo.Get(ctx, "gone")
	if err != nil || link != nil {
		t.Errorf("Get after delete = %v, %v", link, err)
	}
	exists, err := repo.Exists(ctx, "gone")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("deleted id should stay reserved")
	}
}

func TestListCountAndDashboard(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, "list")
	for i, id := range []string{"one", "two", "three"} {
		l := testLink(id)
		l.CreatedAt = l.CreatedAt.Add(time.Duration(i) * time.Minute)
		if err := repo.Set(ctx, l); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := repo.IncrementClicks(ctx, "two"); err != nil {
			t.Fatal(err)
		}
	}

	links, err := repo.List(ctx, 2, 0, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(links) != 2 || links[0].ID != "three" {
		t.Errorf("List = %v, want newest first", ids(links))
	}

	count, err := repo.Count(ctx, map[string]interface{}{"search": "tw"})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Count(search=tw) = %d, want 1", count)
	}

	top, total, err := repo.GetDashboardStats(ctx, 1, nil)
	if err != nil {
		t.Fatalf("GetDashboardStats: %v", err)
	}
	if total != 2 || len(top) != 1 || top[0].ID != "two" {
		t.Errorf("dashboard = %v total=%d", ids(top), total)
	}

	dump, err := repo.Dump(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(dump) != 3 || dump[0].ID != "one" {
		t.Errorf("Dump = %v", ids(dump))
	}
}

func ids(links []domain.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.ID
	}
	return out
}

func TestGetCorruptRules(t *testing.T) {
	repo := newTestRepo(t, "corrupt")
	ctx := context.Background()

	if err := repo.Set(ctx, testLink("broken")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := repo.db.ExecContext(ctx, `UPDATE links SET redirect_rules = '[{"priority":"x"' WHERE id = ?`, "broken"); err != nil {
		t.Fatalf("corrupt rules: %v", err)
	}

	link, err := repo.Get(ctx, "broken")
	if err == nil {
		t.Fatalf("expected decode error, got link with %d rules", len(link.RedirectRules))
	}
	if !strings.Contains(err.Error(), "redirect_rules for broken") {
		t.Errorf("error = %v, want it to name the column and link", err)
	}

	if _, err := repo.List(ctx, 10, 0, nil); err == nil {
		t.Error("List should surface the decode error")
	}
}
