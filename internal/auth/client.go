package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/neacloud/internal/infrastructure/config"
)

// Logger defines the logging interface used by the Client.
// This allows dependency injection without coupling to a specific logger.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}

// The login endpoint only answers the mobile app's user agent.
const loginUserAgent = "Mozilla/5.0 (Linux; Android 11; sdk_gphone_x86 Build/RSR1.201013.001; wv) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/83.0.4103.106 Mobile Safari/537.36"

const defaultHTTPTimeout = 30 * time.Second

// Client runs the PKCE login handshake, token refresh and
// bearer-authenticated profile fetches against the vendor cloud.
//
// The handshake rides on HTTP redirects that must be captured, not
// followed, so the embedded http.Client never follows a redirect.
type Client struct {
	cfg    config.CloudConfig
	http   *http.Client
	logger Logger

	// At most one refresh in flight; concurrent attempts serialize.
	refreshMu sync.Mutex
}

// NewClient creates an auth client for the configured cloud endpoints.
func NewClient(cfg config.CloudConfig) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// UserProfile is the account bootstrap document: the default
// installation and the raw installation data used to seed the state
// model.
type UserProfile struct {
	DefaultInstall string
	Installs       []map[string]any
}

// InstallIDs returns the _id of every installation in the profile.
func (p UserProfile) InstallIDs() []string {
	ids := make([]string, 0, len(p.Installs))
	for _, install := range p.Installs {
		if id, ok := install["_id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Install returns the raw installation document with the given unique
// identifier.
func (p UserProfile) Install(unique string) (map[string]any, bool) {
	for _, install := range p.Installs {
		if u, ok := install["unique"].(string); ok && u == unique {
			return install, true
		}
	}
	return nil, false
}

// =============================================================================
// Login
// =============================================================================

// Login runs the full PKCE flow and fetches the user profile.
func (c *Client) Login(ctx context.Context, email, password string) (Token, UserProfile, error) {
	token, err := c.authorize(ctx, email, password)
	if err != nil {
		return Token{}, UserProfile{}, err
	}

	profile, err := c.FetchUserData(ctx, email, token.AccessToken)
	if err != nil {
		return Token{}, UserProfile{}, err
	}
	return token, profile, nil
}

// CheckCredentials runs the login handshake in boolean mode, used for
// credential validation at setup time. A rejection returns (false, nil)
// rather than an error; transport and protocol failures still surface.
func (c *Client) CheckCredentials(ctx context.Context, email, password string) (bool, error) {
	_, err := c.authorize(ctx, email, password)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrAuthentication) {
		return false, nil
	}
	return false, err
}

// authorize performs the three-hop handshake: authorization URL GET
// (capture requestId), credential POST (capture code), code exchange
// POST (receive token).
func (c *Client) authorize(ctx context.Context, email, password string) (Token, error) {
	verifier, err := newVerifier()
	if err != nil {
		return Token{}, err
	}
	nonce, err := newNonce()
	if err != nil {
		return Token{}, err
	}

	authzURL := c.authorizationURL(verifier, nonce)
	c.logger.Debug("requesting authorization redirect")

	resp, err := c.get(ctx, authzURL, nil)
	if err != nil {
		return Token{}, err
	}
	requestID, err := redirectQueryParam(resp, "requestId")
	if err != nil {
		return Token{}, fmt.Errorf("%w: no request id in authorization redirect", ErrProtocol)
	}

	c.logger.Debug("posting credentials", "request_id", requestID)
	form := url.Values{
		"username":      {email},
		"username_type": {"email"},
		"password":      {password},
		"requestId":     {requestID},
		"rememberMe":    {"true"},
	}
	headers := http.Header{
		"Origin":     {c.cfg.AccountsBaseURL},
		"Referer":    {c.cfg.AccountsBaseURL + "/rehau-ui/login?requestId=" + requestID + "&view_type=login"},
		"User-Agent": {loginUserAgent},
	}
	resp, err = c.postForm(ctx, c.cfg.AccountsBaseURL+"/login-srv/login", form, headers)
	if err != nil {
		return Token{}, err
	}
	if resp.StatusCode != http.StatusFound {
		drain(resp)
		return Token{}, fmt.Errorf("%w: login did not redirect (status %d)", ErrAuthentication, resp.StatusCode)
	}
	code, err := redirectQueryParam(resp, "code")
	if err != nil {
		return Token{}, fmt.Errorf("%w: no code in login redirect", ErrAuthentication)
	}

	c.logger.Debug("exchanging authorization code")
	return c.exchangeToken(ctx, url.Values{
		"client_id":     {c.cfg.ClientID},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {c.cfg.RedirectURI},
		"code_verifier": {verifier},
	})
}

// authorizationURL builds the authz endpoint URL. The query is
// assembled by hand: the server expects spaces in the scope list as
// %20, which url.Values would encode as "+".
func (c *Client) authorizationURL(verifier, nonce string) string {
	scope := strings.ReplaceAll(c.cfg.Scopes, " ", "%20")
	redirect := strings.ReplaceAll(c.cfg.RedirectURI, "#", "%23")
	return c.cfg.AccountsBaseURL + "/authz-srv/authz?" +
		"client_id=" + c.cfg.ClientID +
		"&scope=" + scope +
		"&response_type=code" +
		"&redirect_uri=" + redirect +
		"&nonce=" + nonce +
		"&code_challenge_method=S256" +
		"&code_challenge=" + codeChallenge(verifier)
}

// =============================================================================
// Refresh
// =============================================================================

// Refresh exchanges a refresh token for a fresh Token. Concurrent
// callers serialize; at most one refresh is in flight at a time.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Token, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.logger.Debug("refreshing token")
	return c.exchangeToken(ctx, url.Values{
		"client_id":     {c.cfg.ClientID},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
		"client_secret": {c.cfg.ClientSecret},
	})
}

func (c *Client) exchangeToken(ctx context.Context, form url.Values) (Token, error) {
	resp, err := c.postForm(ctx, c.cfg.AccountsBaseURL+"/token-srv/token", form, nil)
	if err != nil {
		return Token{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, fmt.Errorf("%w: reading token response: %v", ErrCommunication, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Token{}, fmt.Errorf("%w: token endpoint status %d: %s",
			ErrAuthentication, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return Token{}, fmt.Errorf("%w: unparseable token response: %v", ErrProtocol, err)
	}
	token.IssuedAt = time.Now()
	return token, nil
}

// =============================================================================
// Profile reads
// =============================================================================

// FetchUserData fetches the account bootstrap document with the access
// token as a bearer credential.
func (c *Client) FetchUserData(ctx context.Context, email, accessToken string) (UserProfile, error) {
	endpoint := c.cfg.APIBaseURL + "/v1/users/" + url.PathEscape(email) + "/getUserData"
	headers := http.Header{"Authorization": {"Bearer " + accessToken}}

	resp, err := c.get(ctx, endpoint, headers)
	if err != nil {
		return UserProfile{}, err
	}
	return parseProfile(resp)
}

// ReadUserRequest addresses a periodic state fetch.
type ReadUserRequest struct {
	Username    string
	Demand      string
	InstallIDs  []string
	InstallHash string
	AccessToken string
}

// ReadUserState pulls a fresh full state snapshot for the account's
// installations, driven by the periodic resync job. The content hash
// lets the server answer cheaply when nothing changed.
func (c *Client) ReadUserState(ctx context.Context, req ReadUserRequest) (UserProfile, error) {
	endpoint := c.cfg.APIBaseURL + "/v1/users/" + url.PathEscape(req.Username) +
		"/getDataofInstall?demand=" + url.QueryEscape(req.Demand) +
		"&installsList=" + url.QueryEscape(strings.Join(req.InstallIDs, ",")) +
		"&hash=" + url.QueryEscape(req.InstallHash)
	headers := http.Header{"Authorization": {req.AccessToken}}

	resp, err := c.get(ctx, endpoint, headers)
	if err != nil {
		return UserProfile{}, err
	}
	return parseProfile(resp)
}

func parseProfile(resp *http.Response) (UserProfile, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return UserProfile{}, fmt.Errorf("%w: reading profile response: %v", ErrCommunication, err)
	}
	if resp.StatusCode != http.StatusOK {
		return UserProfile{}, fmt.Errorf("%w: profile endpoint status %d: %s",
			ErrAuthentication, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope struct {
		Data struct {
			User struct {
				DefaultInstall string           `json:"defaultInstall"`
				Installs       []map[string]any `json:"installs"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return UserProfile{}, fmt.Errorf("%w: unparseable profile response: %v", ErrProtocol, err)
	}
	return UserProfile{
		DefaultInstall: envelope.Data.User.DefaultInstall,
		Installs:       envelope.Data.User.Installs,
	}, nil
}

// =============================================================================
// HTTP helpers
// =============================================================================

func (c *Client) get(ctx context.Context, endpoint string, headers http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrProtocol, err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	return c.do(req)
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, headers http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrProtocol, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header[k] = v
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrCommunication, req.Method, req.URL.Path, err)
	}
	return resp, nil
}

// redirectQueryParam pulls one query parameter out of a response's
// Location header.
func redirectQueryParam(resp *http.Response, key string) (string, error) {
	defer drain(resp)

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("no location header")
	}
	parsed, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	value := parsed.Query().Get(key)
	if value == "" {
		return "", fmt.Errorf("no %s parameter", key)
	}
	return value, nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
