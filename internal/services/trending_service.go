package services

import "sync"

// defaultTrendingIdeas seeds the ticker until the first successful
// background refresh.
var defaultTrendingIdeas = []string{
	"AI-powered personal shopping",
	"Sustainable packaging solutions",
	"Remote team wellness platforms",
	"Plant-based meal delivery",
	"Micro-mobility services",
	"Home energy auditing",
	"Pet care subscriptions",
	"Upcycled furniture marketplaces",
}

// TrendingServiceProvider defines the interface for the trending-ideas
// ticker.
type TrendingServiceProvider interface {
	Current() []string
	Replace(ideas []string)
}

// TrendingService holds the cached list of trending business ideas.
// Reads vastly outnumber writes: clients poll every minute while the
// refresher replaces the list on its cron schedule.
type TrendingService struct {
	mu    sync.RWMutex
	ideas []string
}

// NewTrendingService creates a TrendingService seeded with defaults.
func NewTrendingService() *TrendingService {
	return &TrendingService{ideas: defaultTrendingIdeas}
}

// Current returns the cached ideas in order.
func (s *TrendingService) Current() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.ideas))
	copy(out, s.ideas)
	return out
}

// Replace swaps in a new idea list. Empty lists are ignored so a bad
// refresh can never blank the ticker.
func (s *TrendingService) Replace(ideas []string) {
	if len(ideas) == 0 {
		return
	}
	s.mu.Lock()
	s.ideas = ideas
	s.mu.Unlock()
}
