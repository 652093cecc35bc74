package retroachievements

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/sirupsen/logrus"
)

const (
	APIPath = "/API/"

	// InvalidAuthBody is the plain-text body the service sends instead of
	// JSON when the user name or the API key is wrong
	InvalidAuthBody = "Invalid API Key"

	TopTenUsersEndpoint             = "API_GetTopTenUsers.php"
	GameEndpoint                    = "API_GetGame.php"
	GameExtendedEndpoint            = "API_GetGameExtended.php"
	ConsoleIDsEndpoint              = "API_GetConsoleIDs.php"
	GameListEndpoint                = "API_GetGameList.php"
	UserRankAndScoreEndpoint        = "API_GetUserRankAndScore.php"
	UserProgressEndpoint            = "API_GetUserProgress.php"
	UserRecentlyPlayedGamesEndpoint = "API_GetUserRecentlyPlayedGames.php"
	UserSummaryEndpoint             = "API_GetUserSummary.php"
	UserCompletedGamesEndpoint      = "API_GetUserCompletedGames.php"
	GameInfoAndUserProgressEndpoint = "API_GetGameInfoAndUserProgress.php"
	AchievementsEarnedOnDayEndpoint = "API_GetAchievementsEarnedOnDay.php"
)

const (
	credentialUserParam = "z"
	credentialKeyParam  = "y"
	bodyPreviewLength   = 200
)

// Client talks to the RetroAchievements web API for one set of credentials.
// It holds no mutable state, so one Client may serve concurrent calls.
type Client struct {
	baseURL    string
	username   string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

// WithBaseURL points the client at another origin, mostly for tests
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(username, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:  BaseOrigin,
		username: username,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Username returns the identity the client authenticates as
func (c *Client) Username() string {
	return c.username
}

// request performs one authenticated GET and returns the decoded JSON body
func (c *Client) request(ctx context.Context, endpoint string, params url.Values) (any, error) {
	reqURL := c.baseURL + APIPath + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set(credentialUserParam, c.username)
	q.Set(credentialKeyParam, c.apiKey)
	req.URL.RawQuery = q.Encode()

	// Log the request without the API key
	debugParams := url.Values{}
	for k, v := range q {
		debugParams[k] = v
	}
	debugParams.Set(credentialKeyParam, "[HIDDEN]")
	logger.Log.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"params":   debugParams.Encode(),
	}).Debug("Making RetroAchievements API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Log.WithError(err).WithField("endpoint", endpoint).Error("RetroAchievements API request failed")
		return nil, fmt.Errorf("request %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to read RetroAchievements API response body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"endpoint":    endpoint,
		"status_code": resp.StatusCode,
		"body_length": len(body),
	}).Debug("RetroAchievements API response received")

	// The sentinel is checked as plain text before anything else and
	// regardless of the status code
	if string(body) == InvalidAuthBody {
		logger.Log.WithField("endpoint", endpoint).Error("RetroAchievements rejected the credentials")
		return nil, ErrInvalidAuth
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		logger.Log.WithField("endpoint", endpoint).Warn("RetroAchievements API rate limit hit")
		return nil, fmt.Errorf("%w: 429 from %s", ErrRateLimited, endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Log.WithFields(logrus.Fields{
			"endpoint":     endpoint,
			"status_code":  resp.StatusCode,
			"body_preview": preview(body),
		}).Error("Unexpected RetroAchievements API response")
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, endpoint)
	}

	decoded, err := decodeJSON(body)
	if err != nil {
		logger.Log.WithError(err).WithField("body_preview", preview(body)).Error("Failed to decode RetroAchievements API JSON response")
		return nil, err
	}
	return decoded, nil
}

func (c *Client) requestRecord(ctx context.Context, endpoint string, params url.Values) (Record, error) {
	v, err := c.request(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	rec, ok := asRecord(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %T, expected an object", ErrMalformedResponse, endpoint, v)
	}
	return rec, nil
}

func (c *Client) requestList(ctx context.Context, endpoint string, params url.Values) ([]Record, error) {
	v, err := c.request(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	records, ok := asRecordList(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %T, expected a list", ErrMalformedResponse, endpoint, v)
	}
	return records, nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > bodyPreviewLength {
		s = s[:bodyPreviewLength] + "..."
	}
	return s
}

// GetTopTenUsers retrieves the global top ten leaderboard
func (c *Client) GetTopTenUsers(ctx context.Context) ([]User, error) {
	records, err := c.requestList(ctx, TopTenUsersEndpoint, nil)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(records))
	for _, rec := range records {
		users = append(users, NewUser(rec))
	}
	return users, nil
}

// GetGame retrieves basic game information. It returns nil without an
// error when the game does not exist.
func (c *Client) GetGame(ctx context.Context, gameID int64) (*Game, error) {
	return c.getGame(ctx, GameEndpoint, gameID)
}

// GetGameExtended retrieves game information including its achievements.
// It returns nil without an error when the game does not exist.
func (c *Client) GetGameExtended(ctx context.Context, gameID int64) (*Game, error) {
	return c.getGame(ctx, GameExtendedEndpoint, gameID)
}

func (c *Client) getGame(ctx context.Context, endpoint string, gameID int64) (*Game, error) {
	rec, err := c.requestRecord(ctx, endpoint, url.Values{
		"i": {strconv.FormatInt(gameID, 10)},
	})
	if err != nil {
		return nil, err
	}

	// Unknown ids come back as a record whose Title is null
	if title, ok := rec.Lookup("Title"); (ok && title == nil) || len(rec) == 0 {
		logger.Log.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"game_id":  gameID,
		}).Info("RetroAchievements game not found")
		return nil, nil
	}

	g := NewGame(rec, &gameID)
	return &g, nil
}

// GetConsoleIDs retrieves the console catalogue as returned by the service
func (c *Client) GetConsoleIDs(ctx context.Context) ([]Record, error) {
	return c.requestList(ctx, ConsoleIDsEndpoint, nil)
}

// GetGameList retrieves the games of one console
func (c *Client) GetGameList(ctx context.Context, consoleID int64, onlyWithAchievements bool) ([]Game, error) {
	params := url.Values{
		"i": {strconv.FormatInt(consoleID, 10)},
	}
	if onlyWithAchievements {
		params.Set("f", "1")
	}
	records, err := c.requestList(ctx, GameListEndpoint, params)
	if err != nil {
		return nil, err
	}
	return gameList(records), nil
}

// GetUserRankAndScore retrieves a user's score and rank. The record is passed
// through except for TotalRanked, which the service sends as a string.
func (c *Client) GetUserRankAndScore(ctx context.Context, username string) (Record, error) {
	rec, err := c.requestRecord(ctx, UserRankAndScoreEndpoint, url.Values{
		"u": {username},
	})
	if err != nil {
		return nil, err
	}

	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	for _, k := range rankFields.TotalRanked {
		if v, ok := rec.Lookup(k); ok {
			if n, ok := toInt64(v); ok {
				out[k] = n
			}
		}
	}
	return out, nil
}

// GetUserProgress retrieves a user's progress for a batch of games. Games
// are returned in the order requested; ids the service omits are skipped.
func (c *Client) GetUserProgress(ctx context.Context, username string, gameIDs []int64) ([]Game, error) {
	ids := make([]string, 0, len(gameIDs))
	for _, id := range gameIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}

	rec, err := c.requestRecord(ctx, UserProgressEndpoint, url.Values{
		"u": {username},
		"i": {strings.Join(ids, ",")},
	})
	if err != nil {
		return nil, err
	}

	games := make([]Game, 0, len(gameIDs))
	for i, key := range ids {
		sub, ok := rec.getRecord(keys{key})
		if !ok {
			continue
		}
		id := gameIDs[i]
		games = append(games, NewGame(sub, &id))
	}
	return games, nil
}

// GetUserRecentlyPlayedGames retrieves the games a user played most
// recently. A zero count or offset leaves the service default in place.
func (c *Client) GetUserRecentlyPlayedGames(ctx context.Context, username string, count, offset int) ([]Game, error) {
	params := url.Values{
		"u": {username},
	}
	if count > 0 {
		params.Set("c", strconv.Itoa(count))
	}
	if offset > 0 {
		params.Set("o", strconv.Itoa(offset))
	}

	records, err := c.requestList(ctx, UserRecentlyPlayedGamesEndpoint, params)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"username":   username,
		"game_count": len(records),
	}).Debug("Fetched recently played games")

	return gameList(records), nil
}

// GetUserSummary retrieves a user's profile summary including the given
// number of recent games and achievements
func (c *Client) GetUserSummary(ctx context.Context, username string, recentGames, recentAchievements int) (UserSummary, error) {
	params := url.Values{
		"u": {username},
	}
	if recentGames > 0 {
		params.Set("g", strconv.Itoa(recentGames))
	}
	if recentAchievements > 0 {
		params.Set("a", strconv.Itoa(recentAchievements))
	}

	rec, err := c.requestRecord(ctx, UserSummaryEndpoint, params)
	if err != nil {
		return UserSummary{}, err
	}
	return NewUserSummary(rec, username), nil
}

// GetUserCompletedGames retrieves the games a user has progress in, with
// normal and hardcore rows merged into one Game per id
func (c *Client) GetUserCompletedGames(ctx context.Context, username string) ([]Game, error) {
	records, err := c.requestList(ctx, UserCompletedGamesEndpoint, url.Values{
		"u": {username},
	})
	if err != nil {
		return nil, err
	}
	return mergeCompletedGames(records), nil
}

// GetGameInfoAndUserProgress retrieves one game with its achievements and the
// user's progress on it
func (c *Client) GetGameInfoAndUserProgress(ctx context.Context, username string, gameID int64) (Game, error) {
	rec, err := c.requestRecord(ctx, GameInfoAndUserProgressEndpoint, url.Values{
		"u": {username},
		"g": {strconv.FormatInt(gameID, 10)},
	})
	if err != nil {
		return Game{}, err
	}
	return NewGame(rec, &gameID), nil
}

// GetAchievementsEarnedOnDay retrieves the achievements a user earned on the
// calendar day of day
func (c *Client) GetAchievementsEarnedOnDay(ctx context.Context, username string, day time.Time) ([]Achievement, error) {
	records, err := c.requestList(ctx, AchievementsEarnedOnDayEndpoint, url.Values{
		"u": {username},
		"d": {day.Format(time.DateOnly)},
	})
	if err != nil {
		return nil, err
	}
	achievements := make([]Achievement, 0, len(records))
	for _, rec := range records {
		achievements = append(achievements, NewAchievement(rec, nil))
	}
	return achievements, nil
}
