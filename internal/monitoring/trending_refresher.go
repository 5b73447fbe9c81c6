package monitoring

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/isdelr/planforge-be/internal/completion"
	"github.com/isdelr/planforge-be/internal/services"
	"github.com/robfig/cron/v3"
)

// TrendingRefresher periodically asks the completion backend for a
// fresh trending-ideas list and swaps it into the TrendingService. A
// failed refresh keeps the previous list.
type TrendingRefresher struct {
	trendingSvc services.TrendingServiceProvider
	provider    completion.Provider
	schedule    cron.Schedule
	ticker      *time.Ticker
	done        chan bool
	nextRun     time.Time
}

// NewTrendingRefresher creates a refresher running on the given cron
// expression (e.g. "@hourly").
func NewTrendingRefresher(trendingSvc services.TrendingServiceProvider, provider completion.Provider, cronExpr string) (*TrendingRefresher, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &TrendingRefresher{
		trendingSvc: trendingSvc,
		provider:    provider,
		schedule:    schedule,
		done:        make(chan bool),
	}, nil
}

// Run starts the refresher's ticking loop.
func (r *TrendingRefresher) Run() {
	log.Println("Starting trending-ideas refresher...")
	r.ticker = time.NewTicker(1 * time.Minute)
	defer r.ticker.Stop()

	// Refresh once immediately on start
	r.refresh()
	r.nextRun = r.schedule.Next(time.Now())

	for {
		select {
		case <-r.done:
			log.Println("Stopping trending-ideas refresher.")
			return
		case <-r.ticker.C:
			now := time.Now()
			if now.After(r.nextRun) {
				r.refresh()
				r.nextRun = r.schedule.Next(now)
			}
		}
	}
}

// Stop halts the refresher.
func (r *TrendingRefresher) Stop() {
	r.done <- true
}

// refresh fetches and parses a new idea list.
func (r *TrendingRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	text, err := r.provider.TrendingIdeas(ctx)
	if err != nil {
		log.Printf("Refresher: failed to fetch trending ideas, keeping previous list: %v", err)
		return
	}

	ideas := ParseIdeas(text)
	if len(ideas) == 0 {
		log.Printf("Refresher: trending response contained no ideas, keeping previous list")
		return
	}
	r.trendingSvc.Replace(ideas)
}

// ideaPrefixRE strips the bullets or numbering the model adds despite
// being told not to.
var ideaPrefixRE = regexp.MustCompile(`^(?:[-*•]+|\d+\.)\s*`)

// ParseIdeas extracts one idea per line.
func ParseIdeas(text string) []string {
	var ideas []string
	for _, line := range strings.Split(text, "\n") {
		idea := strings.TrimSpace(line)
		idea = ideaPrefixRE.ReplaceAllString(idea, "")
		if idea != "" {
			ideas = append(ideas, idea)
		}
	}
	return ideas
}
