package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/stargraph/pkg/integrations"
)

// DefaultClientID is the OAuth App client id used by the device flow.
// Client ids are public; the device flow needs no secret. Override it with
// GITHUB_CLIENT_ID.
const DefaultClientID = "Ov23liyPM58WU6hMeP7E"

// DefaultLoginURL is the root of GitHub's OAuth endpoints.
const DefaultLoginURL = "https://github.com"

// deviceScope is enough to read public profiles and stars.
const deviceScope = "read:user"

// Device flow polling outcomes that are not failures.
var (
	errAuthorizationPending = errors.New("authorization_pending")
	errSlowDown             = errors.New("slow_down")
)

// OAuthClient runs GitHub's OAuth device authorization flow.
type OAuthClient struct {
	config     OAuthConfig
	loginURL   string
	httpClient *http.Client
}

// NewOAuthClient creates a new OAuth client.
func NewOAuthClient(config OAuthConfig) *OAuthClient {
	if config.ClientID == "" {
		config.ClientID = DefaultClientID
	}
	return &OAuthClient{
		config:     config,
		loginURL:   DefaultLoginURL,
		httpClient: integrations.NewHTTPClient(),
	}
}

// DeviceCodeResponse contains the response from requesting a device code.
type DeviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

// RequestDeviceCode initiates the device authorization flow.
// The user must visit the VerificationURI and enter the UserCode.
func (c *OAuthClient) RequestDeviceCode(ctx context.Context) (*DeviceCodeResponse, error) {
	var result DeviceCodeResponse
	err := c.postForm(ctx, "/login/device/code", url.Values{
		"client_id": {c.config.ClientID},
		"scope":     {deviceScope},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PollForToken polls GitHub until the user authorizes the device, the code
// expires or ctx is done. interval is in seconds; GitHub's minimum of 5 is
// enforced and raised on slow_down.
func (c *OAuthClient) PollForToken(ctx context.Context, deviceCode string, interval int) (*OAuthToken, error) {
	return c.poll(ctx, deviceCode, time.Duration(max(interval, 5))*time.Second)
}

func (c *OAuthClient) poll(ctx context.Context, deviceCode string, every time.Duration) (*OAuthToken, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			token, err := c.checkDeviceToken(ctx, deviceCode)
			switch {
			case errors.Is(err, errAuthorizationPending):
				continue
			case errors.Is(err, errSlowDown):
				every += 5 * time.Second
				ticker.Reset(every)
				continue
			case err != nil:
				return nil, err
			}
			return token, nil
		}
	}
}

func (c *OAuthClient) checkDeviceToken(ctx context.Context, deviceCode string) (*OAuthToken, error) {
	var result struct {
		OAuthToken
		Error     string `json:"error"`
		ErrorDesc string `json:"error_description"`
	}
	err := c.postForm(ctx, "/login/oauth/access_token", url.Values{
		"client_id":   {c.config.ClientID},
		"device_code": {deviceCode},
		"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
	}, &result)
	if err != nil {
		return nil, err
	}
	switch result.Error {
	case "":
		return &result.OAuthToken, nil
	case errAuthorizationPending.Error():
		return nil, errAuthorizationPending
	case errSlowDown.Error():
		return nil, errSlowDown
	default:
		return nil, fmt.Errorf("%w: %s: %s", integrations.ErrUnauthorized, result.Error, result.ErrorDesc)
	}
}

func (c *OAuthClient) postForm(ctx context.Context, path string, data url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL+path, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", integrations.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", integrations.ErrNetwork, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
