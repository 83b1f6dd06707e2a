package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/sosodev/duration"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// CatalogResult is one search hit from the external video catalog.
type CatalogResult struct {
	VideoID  string `json:"videoId"`
	Title    string `json:"title"`
	Channel  string `json:"channel"`
	Duration int64  `json:"duration"` // seconds
}

// CatalogService proxies text search against the YouTube Data API so
// clients never need their own API key.
type CatalogService struct {
	youtube    *youtube.Service
	maxResults int64
	logger     *zap.Logger
}

func NewCatalogService(ctx context.Context, apiKey string, maxResults int64, logger *zap.Logger) (*CatalogService, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &CatalogService{
		youtube:    svc,
		maxResults: maxResults,
		logger:     logger,
	}, nil
}

// Search returns up to maxResults videos matching query, with durations
// resolved through a second batched lookup.
func (s *CatalogService) Search(ctx context.Context, query string) ([]CatalogResult, error) {
	searchCall := s.youtube.Search.List([]string{"id", "snippet"}).
		Q(query).
		Type("video").
		MaxResults(s.maxResults).
		Context(ctx)

	resp, err := searchCall.Do()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		ids = append(ids, item.Id.VideoId)
	}

	durations := make(map[string]int64, len(ids))
	if len(ids) > 0 {
		videoCall := s.youtube.Videos.List([]string{"contentDetails"}).
			Id(strings.Join(ids, ",")).
			Context(ctx)

		videoResp, err := videoCall.Do()
		if err != nil {
			return nil, err
		}
		for _, item := range videoResp.Items {
			d, err := duration.Parse(item.ContentDetails.Duration)
			if err != nil {
				s.logger.Warn("Unparseable video duration",
					zap.String("video_id", item.Id),
					zap.String("duration", item.ContentDetails.Duration),
				)
				continue
			}
			durations[item.Id] = durationSeconds(d)
		}
	}

	results := make([]CatalogResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, CatalogResult{
			VideoID:  item.Id.VideoId,
			Title:    item.Snippet.Title,
			Channel:  item.Snippet.ChannelTitle,
			Duration: durations[item.Id.VideoId],
		})
	}
	return results, nil
}

// Lookup resolves a single known video identifier to catalog metadata.
// An unknown identifier yields an empty result set, not an error.
func (s *CatalogService) Lookup(ctx context.Context, videoID string) ([]CatalogResult, error) {
	call := s.youtube.Videos.List([]string{"snippet", "contentDetails"}).
		Id(videoID).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return nil, err
	}

	results := make([]CatalogResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		var seconds int64
		if d, err := duration.Parse(item.ContentDetails.Duration); err == nil {
			seconds = durationSeconds(d)
		}
		results = append(results, CatalogResult{
			VideoID:  item.Id,
			Title:    item.Snippet.Title,
			Channel:  item.Snippet.ChannelTitle,
			Duration: seconds,
		})
	}
	return results, nil
}

func durationSeconds(d *duration.Duration) int64 {
	return int64(d.Seconds) + int64(d.Minutes)*60 + int64(d.Hours)*3600
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`),
}

// ExtractVideoID pulls the 11-character video identifier out of a watch,
// share, embed or shorts URL, or accepts a bare identifier.
func ExtractVideoID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(input); m != nil {
			return m[1], true
		}
	}
	return "", false
}
