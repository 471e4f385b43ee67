package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/ports"
)

// maxCodeAttempts bounds the collision retry loop. With 54^6 codes it is only
// reached when the provider is broken.
const maxCodeAttempts = 100

var customPathPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// reservedPaths are first path segments served by routes other than the redirect
var reservedPaths = []string{"healthz", "open", "api", "auth"}

type LinkService struct {
	repo  ports.LinkRepository
	codes ports.CodeProvider
	now   func() time.Time
}

func NewLinkService(repo ports.LinkRepository, codes ports.CodeProvider) *LinkService {
	return &LinkService{repo: repo, codes: codes, now: time.Now}
}

func isReservedPath(p string) bool {
	return slices.ContainsFunc(reservedPaths, func(r string) bool {
		return strings.EqualFold(r, p)
	})
}

func (s *LinkService) Shorten(ctx context.Context, req domain.CreateLinkRequest) (*domain.Link, error) {
	originalURL, err := NormalizeURL(req.OriginalURL)
	if err != nil {
		return nil, err
	}
	if err := validateRules(req.RedirectRules); err != nil {
		return nil, err
	}

	var id string
	if req.CustomPath != "" {
		if !customPathPattern.MatchString(req.CustomPath) || isReservedPath(req.CustomPath) {
			return nil, ErrInvalidCustomPath
		}
		exists, err := s.repo.Exists(ctx, req.CustomPath)
		if err != nil {
			return nil, fmt.Errorf("check custom path: %w", err)
		}
		if exists {
			return nil, ErrCustomPathTaken
		}
		id = req.CustomPath
	} else {
		id, err = s.uniqueCode(ctx)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	link := &domain.Link{
		ID:             id,
		OriginalURL:    originalURL,
		CustomPath:     req.CustomPath,
		CreatedAt:      now,
		UpdatedAt:      now,
		Platform:       req.Platform,
		DeepLinkConfig: req.DeepLinkConfig,
		RedirectRules:  req.RedirectRules,
		Status:         domain.StatusActive,
		PlanType:       req.PlanType,
	}
	link.ApplyDefaults()

	if err := s.repo.Set(ctx, link); err != nil {
		return nil, fmt.Errorf("store link: %w", err)
	}
	return link, nil
}

func (s *LinkService) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := s.codes.Next()
		if err != nil {
			return "", fmt.Errorf("generate short code: %w", err)
		}
		exists, err := s.repo.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check short code: %w", err)
		}
		if !exists {
			return code, nil
		}
		log.Printf("Short code %q already exists, retrying (%d/%d)", code, i+1, maxCodeAttempts)
	}
	return "", ErrCodeGenerationFailed
}

func (s *LinkService) GetLink(ctx context.Context, id string) (*domain.Link, error) {
	link, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

func (s *LinkService) UpdateLink(ctx context.Context, id string, req domain.UpdateLinkRequest) (*domain.Link, error) {
	link, err := s.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.OriginalURL != nil {
		u, err := NormalizeURL(*req.OriginalURL)
		if err != nil {
			return nil, err
		}
		link.OriginalURL = u
	}
	if req.Platform != nil {
		link.Platform = *req.Platform
	}
	if req.DeepLinkConfig != nil {
		link.DeepLinkConfig = *req.DeepLinkConfig
	}
	if req.RedirectRules != nil {
		if err := validateRules(*req.RedirectRules); err != nil {
			return nil, err
		}
		link.RedirectRules = *req.RedirectRules
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.StatusActive, domain.StatusInactive, domain.StatusExpired:
			link.Status = *req.Status
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
		}
	}
	if req.PlanType != nil {
		link.PlanType = *req.PlanType
	}
	link.UpdatedAt = s.now()
	link.ApplyDefaults()

	if err := s.repo.Set(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *LinkService) DeleteLink(ctx context.Context, id string) error {
	if _, err := s.GetLink(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *LinkService) ListLinks(ctx context.Context, page, limit int, search string) ([]domain.Link, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	filters := map[string]interface{}{
		"search": search,
	}

	links, err := s.repo.List(ctx, limit, offset, filters)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.repo.Count(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	return links, count, nil
}

func (s *LinkService) GetLinkStats(ctx context.Context, id string) (*domain.LinkStats, error) {
	if _, err := s.GetLink(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetLinkStats(ctx, id)
}

func (s *LinkService) GetDashboard(ctx context.Context, limit int, search, domainFilter string) ([]domain.Link, int64, error) {
	if limit < 1 {
		limit = 10
	}
	filters := map[string]interface{}{
		"search": search,
		"domain": domainFilter,
	}
	return s.repo.GetDashboardStats(ctx, limit, filters)
}

// NormalizeURL prepends https:// to scheme-less input and checks the result
// is an absolute URL with a host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	return raw, nil
}

func validateRules(rules []domain.RedirectRule) error {
	for i, rule := range rules {
		if strings.TrimSpace(rule.TargetURL) == "" {
			return fmt.Errorf("%w: rule %d has no target url", ErrInvalidRule, i)
		}
		if _, err := url.Parse(rule.TargetURL); err != nil {
			return fmt.Errorf("%w: rule %d: %v", ErrInvalidRule, i, err)
		}
	}
	return nil
}

var _ ports.LinkService = (*LinkService)(nil)
