package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/deeplink"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/core/domain"
	"github.com/wadjakorntonsri/go-dynamic-link/pkg/ports"
)

const DefaultTrackTimeout = 5 * time.Second

type RedirectService struct {
	repo      ports.LinkRepository
	generator *deeplink.Generator

	trackTimeout time.Duration
	syncTracking bool
	ipSalt       string
	now          func() time.Time

	wg sync.WaitGroup
}

type RedirectOption func(*RedirectService)

// WithTrackTimeout bounds each background tracking call.
func WithTrackTimeout(d time.Duration) RedirectOption {
	return func(s *RedirectService) {
		if d > 0 {
			s.trackTimeout = d
		}
	}
}

// WithSyncTracking records visits before Resolve returns, for processes that
// may exit or be frozen right after responding.
func WithSyncTracking() RedirectOption {
	return func(s *RedirectService) { s.syncTracking = true }
}

// WithIPSalt sets the salt mixed into stored visitor IP hashes.
func WithIPSalt(salt string) RedirectOption {
	return func(s *RedirectService) { s.ipSalt = salt }
}

func WithClock(now func() time.Time) RedirectOption {
	return func(s *RedirectService) { s.now = now }
}

func NewRedirectService(repo ports.LinkRepository, generator *deeplink.Generator, opts ...RedirectOption) *RedirectService {
	if generator == nil {
		generator = deeplink.NewGenerator("")
	}
	s := &RedirectService{
		repo:         repo,
		generator:    generator,
		trackTimeout: DefaultTrackTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select picks the destination for device without touching storage.
// Rules are tried in descending priority, ties in their stored order. With no
// matching rule the platform deep link is used, and a panic anywhere in the
// evaluation degrades to the link's original URL.
func (s *RedirectService) Select(link *domain.Link, device domain.DeviceInfo) (res domain.Resolution) {
	if link == nil {
		target := deeplink.DefaultDownloadURL
		if s.generator != nil {
			target = s.generator.DownloadURL()
		}
		return domain.Resolution{TargetURL: target, Device: device, Source: domain.SourceDownload}
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error resolving link %s: %v", link.ID, r)
			res = domain.Resolution{
				LinkID:    link.ID,
				TargetURL: link.OriginalURL,
				Source:    domain.SourceOriginal,
				Device:    device,
			}
		}
	}()

	res = domain.Resolution{LinkID: link.ID, Device: device}

	rules := make([]domain.RedirectRule, len(link.RedirectRules))
	copy(rules, link.RedirectRules)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})

	for i := range rules {
		// rules without a target come from hand-edited imports; skip them
		if rules[i].TargetURL == "" {
			continue
		}
		if rules[i].Condition.Matches(device) {
			rule := rules[i]
			res.TargetURL = rule.TargetURL
			res.Source = domain.SourceRule
			res.Rule = &rule
			return res
		}
	}

	target := s.generator.DeepLink(device.Platform, link.DeepLinkConfig)
	res.TargetURL = target.URL
	res.Source = domain.SourceDeepLink
	if target.Fallback {
		res.Source = domain.SourceDownload
	}
	return res
}

// Resolve selects the destination and records the click. Tracking failures
// are logged and never affect the returned resolution.
func (s *RedirectService) Resolve(ctx context.Context, link *domain.Link, device domain.DeviceInfo) domain.Resolution {
	return s.resolve(ctx, link, domain.VisitContext{Device: device})
}

func (s *RedirectService) resolve(ctx context.Context, link *domain.Link, visit domain.VisitContext) domain.Resolution {
	res := s.Select(link, visit.Device)
	if link != nil {
		s.track(ctx, link.ID, visit)
	}
	return res
}

func (s *RedirectService) ResolveShortCode(ctx context.Context, code string, visit domain.VisitContext) (domain.Resolution, error) {
	link, err := s.load(ctx, code)
	if err != nil {
		return domain.Resolution{}, err
	}
	return s.resolve(ctx, link, visit), nil
}

// Preview resolves like ResolveShortCode but records nothing.
func (s *RedirectService) Preview(ctx context.Context, code string, device domain.DeviceInfo) (domain.Resolution, error) {
	link, err := s.load(ctx, code)
	if err != nil {
		return domain.Resolution{}, err
	}
	return s.Select(link, device), nil
}

func (s *RedirectService) load(ctx context.Context, code string) (*domain.Link, error) {
	link, err := s.repo.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	if !link.IsActive() {
		return nil, ErrLinkInactive
	}
	return link, nil
}

// Wait blocks until background tracking started so far has finished.
func (s *RedirectService) Wait() {
	s.wg.Wait()
}

func (s *RedirectService) track(ctx context.Context, linkID string, visit domain.VisitContext) {
	if s.syncTracking {
		ctx, cancel := context.WithTimeout(ctx, s.trackTimeout)
		defer cancel()
		s.Track(ctx, linkID, visit)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// the request context is cancelled once the redirect is written
		ctx, cancel := context.WithTimeout(context.Background(), s.trackTimeout)
		defer cancel()
		s.Track(ctx, linkID, visit)
	}()
}

// Track increments the click counter and stores the visit. Both steps are
// attempted independently; errors are only logged.
func (s *RedirectService) Track(ctx context.Context, linkID string, visit domain.VisitContext) {
	if err := s.repo.IncrementClicks(ctx, linkID); err != nil {
		log.Printf("Failed to increment clicks for %s: %v", linkID, err)
	}

	v := &domain.Visit{
		ID:        uuid.NewString(),
		LinkID:    linkID,
		Platform:  visit.Device.Platform,
		Device:    visit.Device.Device,
		Browser:   visit.Device.Browser,
		Region:    visit.Device.Region,
		Referer:   visit.Referer,
		IPHash:    s.hashIP(visit.IP),
		CreatedAt: s.now(),
	}
	if err := s.repo.RecordVisit(ctx, v); err != nil {
		log.Printf("Failed to record visit for %s: %v", linkID, err)
	}
}

func (s *RedirectService) hashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s.ipSalt + ip))
	return hex.EncodeToString(sum[:])
}

var _ ports.RedirectService = (*RedirectService)(nil)
