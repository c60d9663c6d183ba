package search

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/service/cache"
	"github.com/kapu/ai-demo-hub/internal/service/httpapi"
	"github.com/kapu/ai-demo-hub/internal/util"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"go.uber.org/zap"
)

// StructureChangedError is returned when the results page parses but holds no results
// while also lacking the "no results" marker.
type StructureChangedError struct {
	Message string
}

func (e *StructureChangedError) Error() string {
	return e.Message
}

// Service runs web searches against the DuckDuckGo HTML endpoint.
type Service struct {
	api        httpapi.Requester
	maxResults int
	cache      cache.Store
	logger     *zap.Logger
}

func NewService(api httpapi.Requester, maxResults int, store cache.Store, logger *zap.Logger) *Service {
	if maxResults <= 0 {
		maxResults = constants.SearchConfig.MaxResults
	}
	if store == nil {
		store = cache.Noop{}
	}
	return &Service{
		api:        api,
		maxResults: maxResults,
		cache:      store,
		logger:     logger,
	}
}

func (s *Service) Search(ctx context.Context, query string) (*domain.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewValidationError("Please enter a place or travel destination.", "query", query)
	}
	if len([]rune(query)) > constants.AIInputLimits.MaxQueryLength {
		return nil, errors.NewValidationError(
			fmt.Sprintf("Search queries are limited to %d characters.", constants.AIInputLimits.MaxQueryLength), "query", len(query))
	}

	return cache.Remember(ctx, s.cache, s.logger, "search", util.Normalize(query), constants.CacheTTL.SearchResult,
		func(ctx context.Context) (*domain.SearchResponse, error) {
			return s.fetch(ctx, query)
		})
}

func (s *Service) fetch(ctx context.Context, query string) (*domain.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)

	body, err := s.api.Get(ctx, "", params)
	if err != nil {
		return nil, errors.NewServiceError("web search failed", "search", "query", err)
	}

	results, err := ParseResults(body, s.maxResults)
	if err != nil {
		s.logger.Warn("Search page not understood", zap.String("query", query), zap.Error(err))
		return nil, errors.NewServiceError("web search failed", "search", "parse", err)
	}

	s.logger.Info("Search completed", zap.String("query", query), zap.Int("results", len(results)))

	return &domain.SearchResponse{
		Query:   query,
		Results: results,
		Summary: Summarize(results),
	}, nil
}

// ParseResults extracts up to limit results from a DuckDuckGo HTML results page.
func ParseResults(body []byte, limit int) ([]domain.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("HTML parse failed: %w", err)
	}

	results := make([]domain.SearchResult, 0, limit)
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.HasClass("result--ad") {
			return true
		}

		link := sel.Find("a.result__a").First()
		title := util.CollapseWhitespace(link.Text())
		if title == "" {
			return true
		}

		href, _ := link.Attr("href")
		results = append(results, domain.SearchResult{
			Title:   title,
			URL:     resolveLink(href, strings.TrimSpace(sel.Find(".result__url").Text())),
			Snippet: util.CollapseWhitespace(sel.Find(".result__snippet").Text()),
		})
		return len(results) < limit
	})

	if len(results) == 0 && doc.Find(".no-results").Length() == 0 && doc.Find(".result").Length() == 0 {
		return nil, &StructureChangedError{Message: "No results found - HTML structure may have changed"}
	}

	return results, nil
}

// resolveLink unwraps DuckDuckGo redirect links (/l/?uddg=...) into the target URL.
func resolveLink(href, displayed string) string {
	if href == "" {
		if displayed != "" && !strings.HasPrefix(displayed, "http") {
			return "https://" + displayed
		}
		return displayed
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// Summarize flattens results into the single text block the travel demo displays.
func Summarize(results []domain.SearchResult) string {
	if len(results) == 0 {
		return "No good search results found."
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Snippet != "" {
			parts = append(parts, r.Snippet)
		} else {
			parts = append(parts, r.Title)
		}
	}
	return strings.Join(parts, " ")
}
