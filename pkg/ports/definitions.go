package ports

import (
	"context"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
)

// LinkRepository defines storage operations for links.
// Get returns (nil, nil) when no link has the given id.
type LinkRepository interface {
	Get(ctx context.Context, id string) (*domain.Link, error)
	Set(ctx context.Context, link *domain.Link) error // Insert or replace
	IncrementClicks(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int, filters map[string]interface{}) ([]domain.Link, error)
	Count(ctx context.Context, filters map[string]interface{}) (int64, error)
	Dump(ctx context.Context) ([]domain.Link, error) // For migration

	// Stats
	RecordVisit(ctx context.Context, visit *domain.Visit) error
	GetLinkStats(ctx context.Context, id string) (*domain.LinkStats, error)
	GetDashboardStats(ctx context.Context, limit int, filters map[string]interface{}) ([]domain.Link, int64, error)
}

// CodeProvider hands out candidate short codes. Codes are expected to be
// statistically unique; callers still check them against the repository.
type CodeProvider interface {
	Next() (string, error)
}

// LinkService defines the business logic operations
type LinkService interface {
	Shorten(ctx context.Context, req domain.CreateLinkRequest) (*domain.Link, error)
	GetLink(ctx context.Context, id string) (*domain.Link, error)
	UpdateLink(ctx context.Context, id string, req domain.UpdateLinkRequest) (*domain.Link, error)
	DeleteLink(ctx context.Context, id string) error
	ListLinks(ctx context.Context, page, limit int, search string) ([]domain.Link, int64, error)

	// Stats
	GetLinkStats(ctx context.Context, id string) (*domain.LinkStats, error)
	GetDashboard(ctx context.Context, limit int, search, domainFilter string) ([]domain.Link, int64, error)
}

// RedirectService resolves short codes to destinations for a requesting device
type RedirectService interface {
	ResolveShortCode(ctx context.Context, code string, visit domain.VisitContext) (domain.Resolution, error)
	Preview(ctx context.Context, code string, device domain.DeviceInfo) (domain.Resolution, error)
}
