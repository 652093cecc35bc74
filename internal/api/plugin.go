package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/retroachievements"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/session"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/transfer"
	"github.com/sirupsen/logrus"
)

var errUpstream = errors.New("RetroAchievements request failed")

type methodFunc func(ctx context.Context, args pluginArgs) (any, error)

type pluginResponse struct {
	Success bool `json:"success"`
	Result  any  `json:"result"`
}

// HandlePluginCall handles POST /plugin/{method}
func (h *Handlers) HandlePluginCall(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	method := chi.URLParam(r, "method")

	log := logger.Log.WithFields(logrus.Fields{
		"path":   r.URL.Path,
		"method": method,
		"ip":     r.RemoteAddr,
	})
	log.Debug("Plugin call received")

	call, ok := h.methods[method]
	if !ok {
		writePluginResponse(w, http.StatusNotFound, pluginResponse{Result: fmt.Sprintf("unknown method %q", method)})
		return
	}

	args, err := decodeArgs(r.Body)
	if err != nil {
		writePluginResponse(w, http.StatusBadRequest, pluginResponse{Result: err.Error()})
		return
	}

	result, err := call(r.Context(), args)
	if err != nil {
		status := statusFor(err)
		entry := log.WithError(err).WithField("status", status)
		if status >= http.StatusInternalServerError {
			entry.Error("Plugin call failed")
		} else {
			entry.Warn("Plugin call rejected")
		}
		writePluginResponse(w, status, pluginResponse{Result: err.Error()})
		return
	}

	log.WithField("duration", time.Since(start)).Debug("Plugin call completed")
	writePluginResponse(w, http.StatusOK, pluginResponse{Success: true, Result: result})
}

func writePluginResponse(w http.ResponseWriter, status int, resp pluginResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Log.WithError(err).Error("Failed to write plugin response")
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, retroachievements.ErrInvalidAuth), errors.Is(err, session.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.Is(err, errBadArguments),
		errors.Is(err, transfer.ErrProtocolMisuse),
		errors.Is(err, transfer.ErrMalformedDocument),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusBadRequest
	case errors.Is(err, retroachievements.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func upstream(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", errUpstream, err)
}

func (h *Handlers) pluginMethods() map[string]methodFunc {
	return map[string]methodFunc{
		"Login":     h.login,
		"isLogin":   h.isLogin,
		"setHidden": h.setHidden,

		"GetUserRecentlyPlayedGames": h.getUserRecentlyPlayedGames,
		"GetGameInfoAndUserProgress": h.getGameInfoAndUserProgress,
		"GetGame":                    h.getGame,
		"GetUserSummary":             h.getUserSummary,
		"GetUserCompletedGames":      h.getUserCompletedGames,
		"GetUserProgress":            h.getUserProgress,
		"GetAchievementsEarnedOnDay": h.getAchievementsEarnedOnDay,
		"GetTopTenUsers":             h.getTopTenUsers,
		"GetConsoleIDs":              h.getConsoleIDs,
		"GetGameList":                h.getGameList,
		"GetUserRankAndScore":        h.getUserRankAndScore,

		"start_write_config": h.startWriteConfig,
		"write_config":       h.writeConfig,
		"start_read_config":  h.startReadConfig,
		"read_config":        h.readConfig,
		"reset":              h.resetConfig,

		"hash": h.hash,
	}
}

func (h *Handlers) login(_ context.Context, args pluginArgs) (any, error) {
	username, err := args.string("username")
	if err != nil {
		return nil, err
	}
	apiKey, err := args.string("api_key")
	if err != nil {
		return nil, err
	}
	return nil, h.session.Login(username, apiKey)
}

func (h *Handlers) isLogin(context.Context, pluginArgs) (any, error) {
	return h.session.IsLoggedIn(), nil
}

func (h *Handlers) setHidden(_ context.Context, args pluginArgs) (any, error) {
	v, ok := args.present("hidden")
	if !ok {
		return nil, fmt.Errorf("%w: %q is required", errBadArguments, "hidden")
	}
	hidden, ok := v.(bool)
	if !ok {
		return nil, badArg("hidden", "a boolean")
	}
	return nil, h.session.SetHidden(hidden)
}

// clientFor returns the session client and the username to query, which
// defaults to the logged-in user
func (h *Handlers) clientFor(args pluginArgs) (*retroachievements.Client, string, error) {
	client, err := h.session.Client()
	if err != nil {
		return nil, "", err
	}
	username, err := args.optString("username", client.Username())
	if err != nil {
		return nil, "", err
	}
	return client, username, nil
}

func (h *Handlers) getUserRecentlyPlayedGames(ctx context.Context, args pluginArgs) (any, error) {
	count, err := args.optInt("count", 0)
	if err != nil {
		return nil, err
	}
	offset, err := args.optInt("offset", 0)
	if err != nil {
		return nil, err
	}
	if _, err := h.session.Client(); err != nil {
		return nil, err
	}
	games, err := h.session.RecentlyPlayedGames(ctx, int(count), int(offset))
	return games, upstream(err)
}

func (h *Handlers) getGameInfoAndUserProgress(ctx context.Context, args pluginArgs) (any, error) {
	gameID, err := args.int("game_id")
	if err != nil {
		return nil, err
	}
	if _, err := h.session.Client(); err != nil {
		return nil, err
	}
	game, err := h.session.GameInfoAndUserProgress(ctx, gameID)
	return game, upstream(err)
}

func (h *Handlers) getGame(ctx context.Context, args pluginArgs) (any, error) {
	gameID, err := args.int("game_id")
	if err != nil {
		return nil, err
	}
	extended, err := args.optBool("extended", false)
	if err != nil {
		return nil, err
	}
	client, err := h.session.Client()
	if err != nil {
		return nil, err
	}

	var game *retroachievements.Game
	if extended {
		game, err = client.GetGameExtended(ctx, gameID)
	} else {
		game, err = client.GetGame(ctx, gameID)
	}
	return game, upstream(err)
}

func (h *Handlers) getUserSummary(ctx context.Context, args pluginArgs) (any, error) {
	client, username, err := h.clientFor(args)
	if err != nil {
		return nil, err
	}
	recentGames, err := args.optInt("recent_games", 0)
	if err != nil {
		return nil, err
	}
	recentAchievements, err := args.optInt("recent_achievements", 0)
	if err != nil {
		return nil, err
	}
	summary, err := client.GetUserSummary(ctx, username, int(recentGames), int(recentAchievements))
	return summary, upstream(err)
}

func (h *Handlers) getUserCompletedGames(ctx context.Context, args pluginArgs) (any, error) {
	client, username, err := h.clientFor(args)
	if err != nil {
		return nil, err
	}
	games, err := client.GetUserCompletedGames(ctx, username)
	return games, upstream(err)
}

func (h *Handlers) getUserProgress(ctx context.Context, args pluginArgs) (any, error) {
	client, username, err := h.clientFor(args)
	if err != nil {
		return nil, err
	}
	gameIDs, err := args.intList("game_ids")
	if err != nil {
		return nil, err
	}
	games, err := client.GetUserProgress(ctx, username, gameIDs)
	return games, upstream(err)
}

func (h *Handlers) getAchievementsEarnedOnDay(ctx context.Context, args pluginArgs) (any, error) {
	client, username, err := h.clientFor(args)
	if err != nil {
		return nil, err
	}
	date, err := args.string("date")
	if err != nil {
		return nil, err
	}
	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, badArg("date", "a YYYY-MM-DD date")
	}
	achievements, err := client.GetAchievementsEarnedOnDay(ctx, username, day)
	return achievements, upstream(err)
}

func (h *Handlers) getTopTenUsers(ctx context.Context, _ pluginArgs) (any, error) {
	client, err := h.session.Client()
	if err != nil {
		return nil, err
	}
	users, err := client.GetTopTenUsers(ctx)
	return users, upstream(err)
}

func (h *Handlers) getConsoleIDs(ctx context.Context, _ pluginArgs) (any, error) {
	client, err := h.session.Client()
	if err != nil {
		return nil, err
	}
	consoles, err := client.GetConsoleIDs(ctx)
	return consoles, upstream(err)
}

func (h *Handlers) getGameList(ctx context.Context, args pluginArgs) (any, error) {
	consoleID, err := args.int("console_id")
	if err != nil {
		return nil, err
	}
	onlyWithAchievements, err := args.optBool("only_with_achievements", false)
	if err != nil {
		return nil, err
	}
	client, err := h.session.Client()
	if err != nil {
		return nil, err
	}
	games, err := client.GetGameList(ctx, consoleID, onlyWithAchievements)
	return games, upstream(err)
}

func (h *Handlers) getUserRankAndScore(ctx context.Context, args pluginArgs) (any, error) {
	client, username, err := h.clientFor(args)
	if err != nil {
		return nil, err
	}
	rank, err := client.GetUserRankAndScore(ctx, username)
	return rank, upstream(err)
}

func (h *Handlers) startWriteConfig(_ context.Context, args pluginArgs) (any, error) {
	length, err := args.int("length")
	if err != nil {
		return nil, err
	}
	packetSize, err := args.optInt("packet_size", 0)
	if err != nil {
		return nil, err
	}

	h.transferMu.Lock()
	defer h.transferMu.Unlock()
	return nil, h.transfer.StartReceive(int(length), int(packetSize))
}

func (h *Handlers) writeConfig(_ context.Context, args pluginArgs) (any, error) {
	index, err := args.int("index")
	if err != nil {
		return nil, err
	}
	data, err := args.string("data")
	if err != nil {
		return nil, err
	}

	h.transferMu.Lock()
	defer h.transferMu.Unlock()
	done, err := h.transfer.ReceiveChunk(int(index), data)
	if err != nil {
		return nil, err
	}
	return done, nil
}

func (h *Handlers) startReadConfig(_ context.Context, args pluginArgs) (any, error) {
	packetSize, err := args.optInt("packet_size", 0)
	if err != nil {
		return nil, err
	}

	h.transferMu.Lock()
	defer h.transferMu.Unlock()
	count, err := h.transfer.StartSend(int(packetSize))
	if err != nil {
		return nil, err
	}
	return count, nil
}

func (h *Handlers) readConfig(_ context.Context, args pluginArgs) (any, error) {
	index, err := args.int("index")
	if err != nil {
		return nil, err
	}

	h.transferMu.Lock()
	defer h.transferMu.Unlock()
	chunk, err := h.transfer.SendChunk(int(index))
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

func (h *Handlers) resetConfig(context.Context, pluginArgs) (any, error) {
	h.transferMu.Lock()
	defer h.transferMu.Unlock()
	h.transfer.Reset()
	return nil, nil
}

func (h *Handlers) hash(ctx context.Context, args pluginArgs) (any, error) {
	path, err := args.string("path")
	if err != nil {
		return nil, err
	}
	digest, err := h.hasher.Hash(ctx, path)
	if err != nil {
		return nil, err
	}
	return digest, nil
}
