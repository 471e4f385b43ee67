package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
)

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	if err := repo.Set(ctx, &domain.Link{ID: "a", OriginalURL: "https://example.com",
		RedirectRules: []domain.RedirectRule{{Priority: 1, TargetURL: "x"}}}); err != nil {
		t.Fatal(err)
	}

	got, _ := repo.Get(ctx, "a")
	got.RedirectRules[0].TargetURL = "mutated"
	got.Analytics.Platforms["ios"] = 99

	again, _ := repo.Get(ctx, "a")
	if again.RedirectRules[0].TargetURL != "x" || again.Analytics.Platforms["ios"] != 0 {
		t.Errorf("stored link was mutated through Get: %+v", again)
	}
}

func TestConcurrentTracking(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	if err := repo.Set(ctx, &domain.Link{ID: "hot", OriginalURL: "https://example.com"}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.IncrementClicks(ctx, "hot")
			_ = repo.RecordVisit(ctx, &domain.Visit{LinkID: "hot", Platform: domain.PlatformAndroid,
				Device: domain.DeviceMobile, Browser: domain.BrowserChrome, CreatedAt: time.Now()})
		}()
	}
	wg.Wait()

	link, _ := repo.Get(ctx, "hot")
	if link.Clicks != 50 || link.Analytics.Platforms["android"] != 50 {
		t.Errorf("clicks=%d android=%d, want 50", link.Clicks, link.Analytics.Platforms["android"])
	}
	if len(link.Analytics.Regions) != 0 {
		t.Errorf("unknown region was counted: %v", link.Analytics.Regions)
	}
}

func TestSetKeepsClickCount(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	link := &domain.Link{ID: "c", OriginalURL: "https://example.com"}
	_ = repo.Set(ctx, link)
	_ = repo.IncrementClicks(ctx, "c")

	link.OriginalURL = "https://example.org"
	_ = repo.Set(ctx, link)

	got, _ := repo.Get(ctx, "c")
	if got.Clicks != 1 || got.OriginalURL != "https://example.org" {
		t.Errorf("got clicks=%d url=%q", got.Clicks, got.OriginalURL)
	}
}

func TestDeleteKeepsIDReserved(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	_ = repo.Set(ctx, &domain.Link{ID: "d", OriginalURL: "https://example.com"})
	_ = repo.Delete(ctx, "d")

	if got, _ := repo.Get(ctx, "d"); got != nil {
		t.Errorf("Get after delete = %+v", got)
	}
	if ok, _ := repo.Exists(ctx, "d"); !ok {
		t.Error("deleted id should stay reserved")
	}
	if _, err := repo.GetLinkStats(ctx, "d"); err != ErrNotFound {
		t.Errorf("GetLinkStats = %v, want ErrNotFound", err)
	}
}
