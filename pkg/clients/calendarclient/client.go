package calendarclient

import (
	"context"
	"fmt"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/avwhitney/stagehand/internal/config"
	"github.com/avwhitney/stagehand/pkg/utils"
)

// Client wraps the Google Calendar API client
type Client struct {
	service    *calendar.Service
	calendarID string
}

// NewClient creates a new Calendar client using OAuth credentials,
// performing the authorization flow if no persisted token is usable
func NewClient(ctx context.Context, oauthCfg *config.OAuthClientConfig, calendarID string) (*Client, error) {
	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}

	token, err := utils.GetTokenWithFlow(ctx, oauthConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth token: %w", err)
	}

	httpClient := oauthConfig.Client(ctx, token)

	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{
		service:    service,
		calendarID: calendarID,
	}, nil
}
