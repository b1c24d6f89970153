package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jmorgan84/golf-draft-backend/internal/engine"
)

const requestTimeout = 8 * time.Second

// Fetcher builds the draftable pool by joining the world-rankings
// feed with the current tournament field. It fails open: any upstream
// problem is logged and the built-in fallback pool is returned, so a
// draft can always start.
type Fetcher struct {
	rankingsURL string
	fieldURL    string
	httpClient  *http.Client
	log         *zap.Logger
}

func NewFetcher(rankingsURL, fieldURL string, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		rankingsURL: rankingsURL,
		fieldURL:    fieldURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		log: log,
	}
}

type rankingEntry struct {
	ID        json.Number `json:"id"`
	Name      string      `json:"name"`
	Rank      int         `json:"rank"`
	AvgPoints float64     `json:"avgPoints"`
}

type rankingsResponse struct {
	Rankings []rankingEntry `json:"rankings"`
}

type fieldEntry struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

type fieldResponse struct {
	Field []fieldEntry `json:"field"`
}

// FetchPlayers never returns an error: the draft engine only needs a
// non-empty pool, and a stale-but-usable fallback beats a blocked
// draft start.
func (f *Fetcher) FetchPlayers(ctx context.Context) []engine.Player {
	if f.rankingsURL == "" || f.fieldURL == "" {
		return FallbackPlayers()
	}

	var (
		rankings rankingsResponse
		field    fieldResponse
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return f.getJSON(ctx, f.rankingsURL, &rankings) })
	g.Go(func() error { return f.getJSON(ctx, f.fieldURL, &field) })
	if err := g.Wait(); err != nil {
		f.log.Warn("player feed fetch failed, seeding fallback pool", zap.Error(err))
		return FallbackPlayers()
	}

	players := joinFeeds(rankings.Rankings, field.Field)
	if len(players) == 0 {
		f.log.Warn("player feeds joined to an empty pool, seeding fallback pool")
		return FallbackPlayers()
	}
	return players
}

// joinFeeds keeps every player in this week's field, decorated with
// rank data where the rankings feed knows them. Unranked field
// players sort after the ranked ones.
func joinFeeds(rankings []rankingEntry, field []fieldEntry) []engine.Player {
	ranked := make(map[string]rankingEntry, len(rankings))
	for _, entry := range rankings {
		ranked[engine.CanonicalID(entry.ID)] = entry
	}

	unrankedAfter := len(rankings) + 1
	players := make([]engine.Player, 0, len(field))
	for _, entry := range field {
		id := engine.CanonicalID(entry.ID)
		if id == "" {
			continue
		}
		p := engine.Player{ID: id, Name: entry.Name, WorldRank: unrankedAfter}
		if r, ok := ranked[id]; ok {
			p.WorldRank = r.Rank
			p.AvgPoints = r.AvgPoints
			if p.Name == "" {
				p.Name = r.Name
			}
		}
		players = append(players, p)
	}
	return players
}

func (f *Fetcher) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// FallbackPlayers is the built-in pool used when the upstream feeds
// are unavailable. Large enough for a full six-round draft of a
// four-team league.
func FallbackPlayers() []engine.Player {
	names := []string{
		"Alex Fairway", "Ben Links", "Casey Bogey", "Drew Albatross",
		"Evan Mulligan", "Frank Divot", "Gary Eagle", "Hank Birdie",
		"Ian Rough", "Jamie Fringe", "Kyle Tempo", "Lee Hazard",
		"Morgan Pin", "Nick Draw", "Owen Fade", "Pat Scramble",
		"Quinn Loft", "Reese Carry", "Sam Stinger", "Toby Chip",
		"Umar Green", "Vic Wedge", "Will Caddie", "Zane Putter",
	}
	players := make([]engine.Player, len(names))
	for i, name := range names {
		players[i] = engine.Player{
			ID:        engine.CanonicalID(i + 1),
			Name:      name,
			WorldRank: i + 1,
			AvgPoints: float64(len(names)-i) * 1.5,
		}
	}
	return players
}
