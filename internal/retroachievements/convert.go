package retroachievements

import (
	"strconv"
)

// NewAchievement builds an Achievement from one achievement record. id is
// used when the record does not embed its own identifier, as in the
// id-keyed achievement maps of the game endpoints.
func NewAchievement(raw Record, id *int64) Achievement {
	f := achievementFields
	a := Achievement{
		ID:                  raw.getInt(f.ID),
		GameID:              raw.getInt(f.GameID),
		GameTitle:           raw.getString(f.GameTitle),
		GameIcon:            raw.getImageURL(f.GameIcon),
		NumAwarded:          raw.getInt(f.NumAwarded),
		NumAwardedHardcore:  raw.getInt(f.NumAwardedHardcore),
		Title:               raw.getString(f.Title),
		Description:         raw.getString(f.Description),
		Points:              raw.getInt(f.Points),
		TrueRatio:           raw.getInt(f.TrueRatio),
		Author:              raw.getString(f.Author),
		DateModified:        raw.getString(f.DateModified),
		DateCreated:         raw.getString(f.DateCreated),
		BadgeName:           raw.getString(f.BadgeName),
		DisplayOrder:        raw.getInt(f.DisplayOrder),
		MemAddr:             raw.getString(f.MemAddr),
		IsAwarded:           raw.getTriBool(f.IsAwarded),
		DateAwarded:         raw.getString(f.DateAwarded),
		DateAwardedHardcore: raw.getString(f.DateAwardedHardcore),
		HardcoreAchieved:    raw.getTriBool(f.HardcoreAchieved),
		ConsoleName:         raw.getString(f.ConsoleName),
		Raw:                 raw,
	}
	if a.ID == nil {
		a.ID = id
	}
	return a
}

// NewGame builds a Game from any of the game-shaped records the service
// returns. id is used when the record carries no game id of its own.
func NewGame(raw Record, id *int64) Game {
	f := gameFields
	g := Game{
		GameID:                       raw.getInt(f.ID),
		Title:                        raw.getString(f.Title),
		ConsoleID:                    raw.getInt(f.ConsoleID),
		ConsoleName:                  raw.getString(f.ConsoleName),
		ForumTopicID:                 raw.getInt(f.ForumTopicID),
		Flags:                        raw.getInt(f.Flags),
		ImageIcon:                    raw.getImageURL(f.ImageIcon),
		ImageTitle:                   raw.getImageURL(f.ImageTitle),
		ImageInGame:                  raw.getImageURL(f.ImageInGame),
		ImageBoxArt:                  raw.getImageURL(f.ImageBoxArt),
		Publisher:                    raw.getString(f.Publisher),
		Developer:                    raw.getString(f.Developer),
		Genre:                        raw.getString(f.Genre),
		ReleaseDate:                  raw.getString(f.ReleaseDate),
		IsFinal:                      raw.getTriBool(f.IsFinal),
		NumAchievements:              raw.getInt(f.NumAchievements),
		NumDistinctPlayersCasual:     raw.getInt(f.NumDistinctPlayersCasual),
		NumDistinctPlayersHardcore:   raw.getInt(f.NumDistinctPlayersHardcore),
		RichPresencePatch:            raw.getString(f.RichPresencePatch),
		PossibleScore:                raw.getInt(f.PossibleScore),
		NumAchieved:                  raw.getInt(f.NumAchieved),
		ScoreAchieved:                raw.getInt(f.ScoreAchieved),
		NumAchievedHardcore:          raw.getInt(f.NumAchievedHardcore),
		ScoreAchievedHardcore:        raw.getInt(f.ScoreAchievedHardcore),
		LastPlayed:                   raw.getString(f.LastPlayed),
		MyVote:                       raw.getString(f.MyVote),
		CompletionPercentage:         raw.getPercentage(f.CompletionPercentage),
		CompletionPercentageHardcore: raw.getPercentage(f.CompletionPercentageHardcore),
		Raw:                          raw,
	}
	if g.GameID == nil {
		g.GameID = id
	}
	if v, ok := raw.first(f.Achievements); ok {
		g.Achievements = achievementList(v)
	}
	return g
}

// achievementList converts an achievement collection sent either as an
// id-keyed object or as a plain list. It returns nil for any other shape.
func achievementList(v any) []Achievement {
	switch x := v.(type) {
	case []any:
		out := make([]Achievement, 0, len(x))
		for _, item := range x {
			if rec, ok := asRecord(item); ok {
				out = append(out, NewAchievement(rec, nil))
			}
		}
		return out
	case map[string]any:
		return keyedAchievements(Record(x))
	case Record:
		return keyedAchievements(x)
	}
	return nil
}

func keyedAchievements(r Record) []Achievement {
	out := make([]Achievement, 0, len(r))
	for _, k := range sortedKeys(r) {
		rec, ok := asRecord(r[k])
		if !ok {
			continue
		}
		out = append(out, NewAchievement(rec, parseID(k)))
	}
	return out
}

// flattenAchievements turns a game id -> achievement id -> record mapping
// into one list ordered by game then achievement id. The outer key fills in
// the game id when the inner record does not carry one.
func flattenAchievements(v any) []Achievement {
	outer, ok := asRecord(v)
	if !ok {
		return nil
	}
	out := []Achievement{}
	for _, gameKey := range sortedKeys(outer) {
		inner, ok := asRecord(outer[gameKey])
		if !ok {
			continue
		}
		gameID := parseID(gameKey)
		for _, a := range keyedAchievements(inner) {
			if a.GameID == nil {
				a.GameID = gameID
			}
			out = append(out, a)
		}
	}
	return out
}

// keyedGames builds one Game per entry of a game id keyed object
func keyedGames(r Record) []Game {
	out := make([]Game, 0, len(r))
	for _, k := range sortedKeys(r) {
		rec, ok := asRecord(r[k])
		if !ok {
			continue
		}
		out = append(out, NewGame(rec, parseID(k)))
	}
	return out
}

func gameList(records []Record) []Game {
	out := make([]Game, 0, len(records))
	for _, rec := range records {
		out = append(out, NewGame(rec, nil))
	}
	return out
}

func NewActivity(raw Record) Activity {
	f := activityFields
	return Activity{
		ID:           raw.getInt(f.ID),
		Username:     raw.getString(f.Username),
		ActivityType: raw.getInt(f.ActivityType),
		Data:         raw.getInt(f.Data),
		Data2:        raw.getInt(f.Data2),
		LastUpdate:   raw.getString(f.LastUpdate),
		Timestamp:    raw.getString(f.Timestamp),
		Raw:          raw,
	}
}

func NewUser(raw Record) User {
	f := userFields
	return User{
		Username:    raw.getString(f.Username),
		Points:      raw.getInt(f.Points),
		RetroPoints: raw.getInt(f.RetroPoints),
		Raw:         raw,
	}
}

// NewUserSummary assembles the summary and its nested games, activity and
// achievements. username is used when the payload does not name the user.
func NewUserSummary(raw Record, username string) UserSummary {
	f := summaryFields
	s := UserSummary{
		Username:        raw.getString(f.Username),
		ID:              raw.getInt(f.ID),
		RichPresenceMsg: raw.getString(f.RichPresenceMsg),
		MemberSince:     raw.getString(f.MemberSince),
		ContribCount:    raw.getInt(f.ContribCount),
		ContribYield:    raw.getInt(f.ContribYield),
		TotalPoints:     raw.getInt(f.TotalPoints),
		TotalTruePoints: raw.getInt(f.TotalTruePoints),
		Permissions:     raw.getInt(f.Permissions),
		Untracked:       raw.getTriBool(f.Untracked),
		Motto:           raw.getString(f.Motto),
		Rank:            raw.getInt(f.Rank),
		TotalRanked:     raw.getInt(f.TotalRanked),
		UserPic:         raw.getImageURL(f.UserPic),
		Status:          raw.getString(f.Status),
		Raw:             raw,
	}
	if s.Username == nil && username != "" {
		s.Username = &username
	}
	if awarded, ok := raw.getRecord(f.Awarded); ok {
		s.Awarded = keyedGames(awarded)
	}
	if activity, ok := raw.getRecord(f.LastActivity); ok && len(activity) > 0 {
		a := NewActivity(activity)
		s.LastActivity = &a
	}
	if v, ok := raw.first(f.RecentlyPlayed); ok {
		if records, ok := asRecordList(v); ok {
			s.RecentlyPlayed = gameList(records)
		}
	}
	if lastGame, ok := raw.getRecord(f.LastGame); ok && len(lastGame) > 0 {
		g := NewGame(lastGame, nil)
		s.LastGame = &g
	}
	if v, ok := raw.first(f.RecentAchievements); ok {
		s.RecentAchievements = flattenAchievements(v)
	}
	return s
}

// mergeCompletedGames folds the per-mode rows of the completed games list
// into one Game per game id, keeping the order in which ids first appear.
// The normal row supplies the game; hardcore progress sits next to it and
// is zero rather than absent when the game has no hardcore row.
func mergeCompletedGames(rows []Record) []Game {
	type modes struct {
		normal, hardcore Record
	}
	var order []int64
	byID := make(map[int64]*modes)

	for _, row := range rows {
		id := row.getInt(gameFields.ID)
		if id == nil {
			continue
		}
		m, seen := byID[*id]
		if !seen {
			m = &modes{}
			byID[*id] = m
			order = append(order, *id)
		}
		if hc := row.getTriBool(completedGameFields.HardcoreMode); hc != nil && *hc {
			if m.hardcore == nil {
				m.hardcore = row
			}
		} else if m.normal == nil {
			m.normal = row
		}
	}

	games := make([]Game, 0, len(order))
	for _, id := range order {
		m := byID[id]
		base := m.normal
		if base == nil {
			base = m.hardcore
		}
		gameID := id
		g := NewGame(base, &gameID)

		pct := 0.0
		awarded := int64(0)
		if m.hardcore != nil {
			if v := m.hardcore.getPercentage(completedGameFields.Completion); v != nil {
				pct = *v
			}
			if v := m.hardcore.getInt(completedGameFields.Awarded); v != nil {
				awarded = *v
			}
		}
		g.CompletionPercentageHardcore = &pct
		g.NumAchievedHardcore = &awarded
		games = append(games, g)
	}
	return games
}

func parseID(s string) *int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
