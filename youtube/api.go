package youtube

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"ytvault/retry"
)

const pageSize = 50

// APIClient wraps the YouTube Data API v3 calls the subscription run needs:
// listing subscriptions, listing recent uploads, and batch-reading durations.
type APIClient struct {
	service *ytapi.Service
	limiter *rate.Limiter
	retry   retry.Config
	logger  *slog.Logger
}

// NewAPIClient builds a Data API client authenticated by the token source.
func NewAPIClient(ctx context.Context, ts oauth2.TokenSource, logger *slog.Logger) (*APIClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	service, err := ytapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, &APIError{Op: "create service", Err: err}
	}
	return &APIClient{
		service: service,
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		retry:   retry.DefaultConfig(),
		logger:  logger,
	}, nil
}

// SubscribedChannels lists every channel the authenticated account is
// subscribed to, following pagination to the end.
func (c *APIClient) SubscribedChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	pageToken := ""

	for {
		var resp *ytapi.SubscriptionListResponse
		err := c.do(ctx, func(ctx context.Context) error {
			var err error
			resp, err = c.service.Subscriptions.List([]string{"snippet"}).
				Mine(true).
				MaxResults(pageSize).
				PageToken(pageToken).
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return nil, &APIError{Op: "subscriptions", Err: err}
		}

		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.ResourceId == nil {
				continue
			}
			channels = append(channels, Channel{
				ID:    item.Snippet.ResourceId.ChannelId,
				Title: item.Snippet.Title,
			})
		}

		if resp.NextPageToken == "" {
			return channels, nil
		}
		pageToken = resp.NextPageToken
	}
}

// RecentVideos lists a channel's uploads published at or after since, newest
// first. It reads the channel's uploads playlist, which costs one quota unit
// per page instead of the hundred a search would.
func (c *APIClient) RecentVideos(ctx context.Context, channelID string, since time.Time) ([]Video, error) {
	playlistID, ok := uploadsPlaylistID(channelID)
	if !ok {
		// Channels without the UC prefix have no derivable uploads playlist.
		c.logger.Warn("skipping channel with unexpected id", "channel_id", channelID)
		return nil, nil
	}

	var videos []Video
	pageToken := ""

	for {
		var resp *ytapi.PlaylistItemListResponse
		err := c.do(ctx, func(ctx context.Context) error {
			var err error
			resp, err = c.service.PlaylistItems.List([]string{"snippet"}).
				PlaylistId(playlistID).
				MaxResults(pageSize).
				PageToken(pageToken).
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return nil, &APIError{Op: "recent videos", Err: err}
		}

		for _, item := range resp.Items {
			s := item.Snippet
			if s == nil || s.ResourceId == nil {
				continue
			}
			published, err := time.Parse(time.RFC3339, s.PublishedAt)
			if err != nil {
				continue
			}
			// Uploads playlists are ordered newest first, so the first
			// video older than the window ends the listing.
			if published.Before(since) {
				return videos, nil
			}
			videos = append(videos, Video{
				ID:          s.ResourceId.VideoId,
				Title:       s.Title,
				Description: s.Description,
				Published:   published,
				Channel:     s.ChannelTitle,
				ChannelID:   channelID,
			})
		}

		if resp.NextPageToken == "" {
			return videos, nil
		}
		pageToken = resp.NextPageToken
	}
}

// VideoDurations batch-fetches durations for the given video ids. Ids the
// API does not return (deleted videos) are absent from the result.
func (c *APIClient) VideoDurations(ctx context.Context, videoIDs []string) (map[string]time.Duration, error) {
	durations := make(map[string]time.Duration, len(videoIDs))

	for start := 0; start < len(videoIDs); start += pageSize {
		end := min(start+pageSize, len(videoIDs))
		batch := videoIDs[start:end]

		var resp *ytapi.VideoListResponse
		err := c.do(ctx, func(ctx context.Context) error {
			var err error
			resp, err = c.service.Videos.List([]string{"contentDetails"}).
				Id(batch...).
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return nil, &APIError{Op: "durations", Err: err}
		}

		for _, item := range resp.Items {
			if item.ContentDetails == nil || item.ContentDetails.Duration == "" {
				continue
			}
			d, err := ParseISO8601Duration(item.ContentDetails.Duration)
			if err != nil {
				continue
			}
			durations[item.Id] = d
		}
	}

	return durations, nil
}

// do runs an API call under the rate limiter with retries.
func (c *APIClient) do(ctx context.Context, fn func(context.Context) error) error {
	return retry.Do(ctx, c.retry, apiErrorClassifier, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return fn(ctx)
	})
}

// apiErrorClassifier decides which Data API failures are worth retrying.
// Rate limiting and server errors resolve with backoff; other HTTP client
// errors (bad request, forbidden, not found) never will.
func apiErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429 || apiErr.Code >= 500:
			return true
		case apiErr.Code == 403:
			for _, e := range apiErr.Errors {
				if e.Reason == "quotaExceeded" || e.Reason == "rateLimitExceeded" ||
					e.Reason == "userRateLimitExceeded" {
					return true
				}
			}
			return false
		case apiErr.Code >= 400:
			return false
		}
	}

	// Transport wraps some throttling responses without a googleapi.Error.
	msg := err.Error()
	if strings.Contains(msg, "quotaExceeded") || strings.Contains(msg, "rateLimitExceeded") {
		return true
	}
	return retry.IsRetryable(err)
}

// uploadsPlaylistID derives a channel's uploads playlist id from its
// channel id (UCxxxx becomes UUxxxx).
func uploadsPlaylistID(channelID string) (string, bool) {
	if !strings.HasPrefix(channelID, "UC") {
		return "", false
	}
	return "UU" + channelID[2:], true
}
