package retroachievements

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRecord(t *testing.T, body string) Record {
	t.Helper()
	v, err := decodeJSON([]byte(body))
	require.NoError(t, err)
	rec, ok := asRecord(v)
	require.True(t, ok, "fixture is not an object")
	return rec
}

func mustRecords(t *testing.T, body string) []Record {
	t.Helper()
	v, err := decodeJSON([]byte(body))
	require.NoError(t, err)
	recs, ok := asRecordList(v)
	require.True(t, ok, "fixture is not a list")
	return recs
}

const gameInfoAndProgressFixture = `{
	"ID": 1,
	"Title": "Sonic the Hedgehog",
	"ConsoleID": 1,
	"ConsoleName": "Mega Drive",
	"ForumTopicID": 112,
	"Flags": 0,
	"ImageIcon": "/Images/067895.png",
	"ImageTitle": "/Images/054993.png",
	"ImageIngame": "/Images/000010.png",
	"ImageBoxArt": "/Images/051872.png",
	"Publisher": "Sega",
	"Developer": "Sonic Team",
	"Genre": "Platforming",
	"Released": "1991-06-23",
	"IsFinal": 0,
	"RichPresencePatch": "cce60593880d25c97797446ed33eaffb",
	"NumAchievements": 2,
	"NumDistinctPlayersCasual": 27080,
	"NumDistinctPlayersHardcore": 27080,
	"Achievements": {
		"9": {
			"ID": 9,
			"NumAwarded": 24273,
			"NumAwardedHardcore": 10502,
			"Title": "That Was Easy",
			"Description": "Complete the first act in Green Hill Zone",
			"Points": 3,
			"TrueRatio": 3,
			"Author": "Scott",
			"DateModified": "2021-08-08 00:40:44",
			"DateCreated": "2012-11-02 00:03:12",
			"BadgeName": "250336",
			"DisplayOrder": 1,
			"MemAddr": "0xfe20=0",
			"DateEarned": "2022-08-23 22:56:38",
			"DateEarnedHardcore": "2022-08-23 22:56:38"
		},
		"2": {
			"NumAwarded": "100",
			"Title": "Banked Rings",
			"Points": 5,
			"DisplayOrder": 2
		}
	},
	"NumAwardedToUser": 1,
	"NumAwardedToUserHardcore": 1,
	"UserCompletion": "50.00%",
	"UserCompletionHardcore": "50.00%"
}`

func TestNewGameFromGameInfoAndUserProgress(t *testing.T) {
	raw := mustRecord(t, gameInfoAndProgressFixture)
	g := NewGame(raw, nil)

	require.NotNil(t, g.GameID)
	assert.Equal(t, int64(1), *g.GameID)
	assert.Equal(t, "Sonic the Hedgehog", *g.Title)
	assert.Equal(t, int64(1), *g.ConsoleID)
	assert.Equal(t, "Mega Drive", *g.ConsoleName)
	assert.Equal(t, int64(112), *g.ForumTopicID)
	assert.Equal(t, int64(0), *g.Flags)
	assert.Equal(t, BaseOrigin+"/Images/067895.png", *g.ImageIcon)
	assert.Equal(t, BaseOrigin+"/Images/054993.png", *g.ImageTitle)
	assert.Equal(t, BaseOrigin+"/Images/000010.png", *g.ImageInGame)
	assert.Equal(t, BaseOrigin+"/Images/051872.png", *g.ImageBoxArt)
	assert.Equal(t, "Sega", *g.Publisher)
	assert.Equal(t, "Sonic Team", *g.Developer)
	assert.Equal(t, "Platforming", *g.Genre)
	assert.Equal(t, "1991-06-23", *g.ReleaseDate)
	assert.False(t, *g.IsFinal)
	assert.Equal(t, int64(2), *g.NumAchievements)
	assert.Equal(t, int64(27080), *g.NumDistinctPlayersCasual)
	assert.Equal(t, int64(27080), *g.NumDistinctPlayersHardcore)
	assert.Equal(t, int64(1), *g.NumAchieved)
	assert.Equal(t, int64(1), *g.NumAchievedHardcore)
	assert.Equal(t, 50.0, *g.CompletionPercentage)
	assert.Equal(t, 50.0, *g.CompletionPercentageHardcore)
	assert.Nil(t, g.LastPlayed)
	assert.Nil(t, g.PossibleScore)

	require.Len(t, g.Achievements, 2)
	second, first := g.Achievements[0], g.Achievements[1]
	assert.Equal(t, int64(2), *second.ID, "id comes from the map key when the record has none")
	assert.Equal(t, int64(100), *second.NumAwarded)
	assert.Nil(t, second.DateAwarded)

	assert.Equal(t, int64(9), *first.ID)
	assert.Equal(t, "That Was Easy", *first.Title)
	assert.Equal(t, int64(24273), *first.NumAwarded)
	assert.Equal(t, int64(10502), *first.NumAwardedHardcore)
	assert.Equal(t, "0xfe20=0", *first.MemAddr)
	assert.Equal(t, "250336", *first.BadgeName)
	assert.Equal(t, "2022-08-23 22:56:38", *first.DateAwarded)
	assert.Equal(t, "2022-08-23 22:56:38", *first.DateAwardedHardcore)
	assert.Nil(t, first.IsAwarded)
}

func TestNewGameKeepsRawRecord(t *testing.T) {
	raw := mustRecord(t, gameInfoAndProgressFixture)
	g := NewGame(raw, nil)

	assert.Equal(t, raw, g.Raw)

	// every field read without normalization survives a trip back out
	encoded, err := json.Marshal(g)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(encoded, &out))

	assert.Equal(t, "Sonic the Hedgehog", out["title"])
	assert.Equal(t, "Mega Drive", out["console_name"])
	assert.Equal(t, "1991-06-23", out["release_date"])
	assert.Equal(t, "cce60593880d25c97797446ed33eaffb", out["rich_presence_patch"])
	assert.EqualValues(t, 27080, out["num_distinct_players_casual"])
	assert.EqualValues(t, 112, out["forum_topic_id"])
	assert.Contains(t, out, "raw")
}

func TestNewGameWithoutAchievementsLeavesThemAbsent(t *testing.T) {
	g := NewGame(Record{"Title": "Tetris"}, nil)
	assert.Nil(t, g.Achievements)

	g = NewGame(mustRecord(t, `{"Title": "Tetris", "Achievements": []}`), nil)
	assert.NotNil(t, g.Achievements)
	assert.Empty(t, g.Achievements)

	g = NewGame(mustRecord(t, `{"Title": "Tetris", "Achievements": null}`), nil)
	assert.Nil(t, g.Achievements)
}

func TestNewGameUsesExternalID(t *testing.T) {
	id := int64(42)
	g := NewGame(Record{"Title": "Tetris"}, &id)
	require.NotNil(t, g.GameID)
	assert.Equal(t, int64(42), *g.GameID)

	g = NewGame(Record{"GameID": json.Number("7")}, &id)
	assert.Equal(t, int64(7), *g.GameID)
}

func TestNewGameRecentlyPlayedShape(t *testing.T) {
	raw := mustRecord(t, `{
		"GameID": 11332,
		"ConsoleID": 5,
		"ConsoleName": "Game Boy Advance",
		"Title": "Final Fantasy Origins",
		"ImageIcon": "/Images/060860.png",
		"LastPlayed": "2022-10-24 22:05:12",
		"MyVote": null,
		"NumPossibleAchievements": 120,
		"PossibleScore": 1245,
		"NumAchieved": 14,
		"ScoreAchieved": 114,
		"NumAchievedHardcore": 14,
		"ScoreAchievedHardcore": 114
	}`)
	g := NewGame(raw, nil)

	assert.Equal(t, int64(11332), *g.GameID)
	assert.Equal(t, int64(120), *g.NumAchievements)
	assert.Equal(t, int64(1245), *g.PossibleScore)
	assert.Equal(t, int64(14), *g.NumAchieved)
	assert.Equal(t, int64(114), *g.ScoreAchieved)
	assert.Equal(t, int64(14), *g.NumAchievedHardcore)
	assert.Equal(t, int64(114), *g.ScoreAchievedHardcore)
	assert.Equal(t, "2022-10-24 22:05:12", *g.LastPlayed)
	assert.Nil(t, g.MyVote)
	assert.Nil(t, g.CompletionPercentage)
	assert.Nil(t, g.Achievements)
}

func TestMergeCompletedGames(t *testing.T) {
	rows := mustRecords(t, `[
		{"GameID": 5, "Title": "Pokemon", "ConsoleName": "Game Boy", "ImageIcon": "/Images/1.png", "MaxPossible": 10, "NumAwarded": 8, "PctWon": "0.8000", "HardcoreMode": "1"},
		{"GameID": 5, "Title": "Pokemon", "ConsoleName": "Game Boy", "ImageIcon": "/Images/1.png", "MaxPossible": 10, "NumAwarded": 6, "PctWon": "0.6000", "HardcoreMode": "0"},
		{"GameID": 9, "Title": "Zelda", "MaxPossible": 20, "NumAwarded": 5, "PctWon": "0.2500", "HardcoreMode": "0"}
	]`)

	games := mergeCompletedGames(rows)
	require.Len(t, games, 2)

	pokemon := games[0]
	assert.Equal(t, int64(5), *pokemon.GameID)
	assert.Equal(t, 60.0, *pokemon.CompletionPercentage)
	assert.Equal(t, 80.0, *pokemon.CompletionPercentageHardcore)
	assert.Equal(t, int64(6), *pokemon.NumAchieved)
	assert.Equal(t, int64(8), *pokemon.NumAchievedHardcore)
	assert.Equal(t, int64(10), *pokemon.NumAchievements)
	assert.Equal(t, BaseOrigin+"/Images/1.png", *pokemon.ImageIcon)

	zelda := games[1]
	assert.Equal(t, int64(9), *zelda.GameID)
	assert.Equal(t, 25.0, *zelda.CompletionPercentage)
	require.NotNil(t, zelda.CompletionPercentageHardcore, "missing hardcore row defaults to zero")
	assert.Equal(t, 0.0, *zelda.CompletionPercentageHardcore)
	require.NotNil(t, zelda.NumAchievedHardcore)
	assert.Equal(t, int64(0), *zelda.NumAchievedHardcore)
}

func TestMergeCompletedGamesIntegerPercentages(t *testing.T) {
	rows := []Record{
		{"GameID": json.Number("5"), "HardcoreMode": json.Number("1"), "PctWon": json.Number("80")},
		{"GameID": json.Number("5"), "HardcoreMode": json.Number("0"), "PctWon": json.Number("60")},
	}
	games := mergeCompletedGames(rows)
	require.Len(t, games, 1)
	assert.Equal(t, 60.0, *games[0].CompletionPercentage)
	assert.Equal(t, 80.0, *games[0].CompletionPercentageHardcore)
}

func TestMergeCompletedGamesHardcoreOnly(t *testing.T) {
	rows := []Record{
		{"GameID": json.Number("3"), "HardcoreMode": "1", "PctWon": "1.0000", "NumAwarded": json.Number("4")},
	}
	games := mergeCompletedGames(rows)
	require.Len(t, games, 1)
	assert.Equal(t, 100.0, *games[0].CompletionPercentage)
	assert.Equal(t, 100.0, *games[0].CompletionPercentageHardcore)
	assert.Equal(t, int64(4), *games[0].NumAchievedHardcore)
}

func TestNewUserSummary(t *testing.T) {
	raw := mustRecord(t, `{
		"RecentlyPlayedCount": 1,
		"RecentlyPlayed": [
			{"GameID": "1", "ConsoleID": "1", "ConsoleName": "Mega Drive", "Title": "Sonic", "ImageIcon": "/Images/1.png", "LastPlayed": "2022-10-24 22:05:12", "MyVote": null}
		],
		"MemberSince": "2013-10-21 12:32:56",
		"LastActivity": {"ID": "1", "timestamp": "2022-10-24 22:05:12", "lastupdate": "2022-10-24 22:05:12", "activitytype": "3", "User": "Scott", "data": "11332", "data2": "0"},
		"RichPresenceMsg": "Playing Sonic",
		"LastGameID": 1,
		"LastGame": {"ID": 1, "Title": "Sonic", "ConsoleID": 1, "ImageIcon": "/Images/1.png", "IsFinal": 0},
		"ContribCount": 1000,
		"ContribYield": 5000,
		"TotalPoints": 2000,
		"TotalTruePoints": 4000,
		"Permissions": 1,
		"Untracked": 0,
		"ID": 16,
		"Motto": "hello",
		"Rank": 14,
		"Awarded": {
			"1": {"NumPossibleAchievements": 20, "PossibleScore": 200, "NumAchieved": "10", "ScoreAchieved": "100", "NumAchievedHardcore": "5", "ScoreAchievedHardcore": "50"}
		},
		"RecentAchievements": {
			"1": {
				"12": {"ID": "12", "GameID": "1", "GameTitle": "Sonic", "Title": "B", "Points": "5", "BadgeName": "1", "IsAwarded": "1", "DateAwarded": "2022-10-24", "HardcoreAchieved": "0"},
				"3": {"ID": "3", "GameID": "1", "GameTitle": "Sonic", "Title": "A", "Points": "1", "BadgeName": "2", "IsAwarded": "1", "DateAwarded": "2022-10-23", "HardcoreAchieved": "1"}
			},
			"7": {
				"4": {"Title": "C", "IsAwarded": "0", "HardcoreAchieved": ""}
			}
		},
		"UserPic": "/UserPic/Scott.png",
		"TotalRanked": "50000",
		"Status": "Online"
	}`)

	s := NewUserSummary(raw, "Scott")

	assert.Equal(t, "Scott", *s.Username)
	assert.Equal(t, int64(16), *s.ID)
	assert.Equal(t, "2013-10-21 12:32:56", *s.MemberSince)
	assert.Equal(t, "Playing Sonic", *s.RichPresenceMsg)
	assert.Equal(t, int64(1000), *s.ContribCount)
	assert.Equal(t, int64(5000), *s.ContribYield)
	assert.Equal(t, int64(2000), *s.TotalPoints)
	assert.Equal(t, int64(4000), *s.TotalTruePoints)
	assert.Equal(t, int64(1), *s.Permissions)
	assert.False(t, *s.Untracked)
	assert.Equal(t, "hello", *s.Motto)
	assert.Equal(t, int64(14), *s.Rank)
	assert.Equal(t, int64(50000), *s.TotalRanked)
	assert.Equal(t, BaseOrigin+"/UserPic/Scott.png", *s.UserPic)
	assert.Equal(t, "Online", *s.Status)

	require.NotNil(t, s.LastActivity)
	assert.Equal(t, int64(1), *s.LastActivity.ID)
	assert.Equal(t, "Scott", *s.LastActivity.Username)
	assert.Equal(t, int64(3), *s.LastActivity.ActivityType)
	assert.Equal(t, int64(11332), *s.LastActivity.Data)
	assert.Equal(t, int64(0), *s.LastActivity.Data2)
	assert.Equal(t, "2022-10-24 22:05:12", *s.LastActivity.Timestamp)

	require.Len(t, s.RecentlyPlayed, 1)
	assert.Equal(t, int64(1), *s.RecentlyPlayed[0].GameID)
	assert.Equal(t, BaseOrigin+"/Images/1.png", *s.RecentlyPlayed[0].ImageIcon)

	require.NotNil(t, s.LastGame)
	assert.Equal(t, "Sonic", *s.LastGame.Title)
	assert.False(t, *s.LastGame.IsFinal)

	require.Len(t, s.Awarded, 1)
	assert.Equal(t, int64(1), *s.Awarded[0].GameID)
	assert.Equal(t, int64(10), *s.Awarded[0].NumAchieved)
	assert.Equal(t, int64(50), *s.Awarded[0].ScoreAchievedHardcore)

	require.Len(t, s.RecentAchievements, 3)
	assert.Equal(t, "A", *s.RecentAchievements[0].Title)
	assert.True(t, *s.RecentAchievements[0].IsAwarded)
	assert.True(t, *s.RecentAchievements[0].HardcoreAchieved)
	assert.Equal(t, "2022-10-23", *s.RecentAchievements[0].DateAwarded)
	assert.Equal(t, "B", *s.RecentAchievements[1].Title)
	assert.False(t, *s.RecentAchievements[1].HardcoreAchieved)
	assert.Equal(t, "C", *s.RecentAchievements[2].Title)
	assert.Equal(t, int64(7), *s.RecentAchievements[2].GameID, "game id comes from the outer key")
	assert.Equal(t, int64(4), *s.RecentAchievements[2].ID)
	assert.False(t, *s.RecentAchievements[2].IsAwarded)
	assert.False(t, *s.RecentAchievements[2].HardcoreAchieved)
}

func TestNewUserSummaryUsesRequestedUsername(t *testing.T) {
	s := NewUserSummary(Record{}, "Scott")
	require.NotNil(t, s.Username)
	assert.Equal(t, "Scott", *s.Username)
	assert.Nil(t, s.LastActivity)
	assert.Nil(t, s.LastGame)
	assert.Nil(t, s.RecentAchievements)
}

func TestNewUser(t *testing.T) {
	u := NewUser(mustRecord(t, `{"1": "MaxMilyin", "2": 346289, "3": 995092}`))
	assert.Equal(t, "MaxMilyin", *u.Username)
	assert.Equal(t, int64(346289), *u.Points)
	assert.Equal(t, int64(995092), *u.RetroPoints)
}

func TestNewAchievementEarnedOnDayShape(t *testing.T) {
	a := NewAchievement(mustRecord(t, `{
		"Date": "2022-10-12 07:58:05",
		"HardcoreMode": "1",
		"AchievementID": "173315",
		"Title": "Your Puny Human Weapons",
		"Description": "Collect the Laser Rifle",
		"BadgeName": "193756",
		"Points": "5",
		"Author": "Scott",
		"GameTitle": "Mega Man",
		"GameIcon": "/Images/024519.png",
		"GameID": "1",
		"ConsoleName": "NES"
	}`), nil)

	assert.Equal(t, int64(173315), *a.ID)
	assert.Equal(t, "2022-10-12 07:58:05", *a.DateAwarded)
	assert.True(t, *a.HardcoreAchieved)
	assert.Equal(t, int64(5), *a.Points)
	assert.Equal(t, int64(1), *a.GameID)
	assert.Equal(t, BaseOrigin+"/Images/024519.png", *a.GameIcon)
	assert.Equal(t, "NES", *a.ConsoleName)
}
