package retroachievements

// Each table lists, per logical field, the response keys that may carry it
// in priority order. Supporting a new endpoint shape means adding a key here.

var achievementFields = struct {
	ID, GameID, GameTitle, GameIcon               keys
	NumAwarded, NumAwardedHardcore                keys
	Title, Description, Points, TrueRatio, Author keys
	DateModified, DateCreated, BadgeName          keys
	DisplayOrder, MemAddr, IsAwarded              keys
	DateAwarded, DateAwardedHardcore              keys
	HardcoreAchieved, ConsoleName                 keys
}{
	ID:                  keys{"ID", "AchievementID"},
	GameID:              keys{"GameID"},
	GameTitle:           keys{"GameTitle"},
	GameIcon:            keys{"GameIcon"},
	NumAwarded:          keys{"NumAwarded"},
	NumAwardedHardcore:  keys{"NumAwardedHardcore"},
	Title:               keys{"Title"},
	Description:         keys{"Description"},
	Points:              keys{"Points"},
	TrueRatio:           keys{"TrueRatio"},
	Author:              keys{"Author"},
	DateModified:        keys{"DateModified"},
	DateCreated:         keys{"DateCreated"},
	BadgeName:           keys{"BadgeName"},
	DisplayOrder:        keys{"DisplayOrder"},
	MemAddr:             keys{"MemAddr"},
	IsAwarded:           keys{"IsAwarded"},
	DateAwarded:         keys{"DateEarned", "DateAwarded", "Date"},
	DateAwardedHardcore: keys{"DateEarnedHardcore"},
	HardcoreAchieved:    keys{"HardcoreAchieved", "HardcoreMode"},
	ConsoleName:         keys{"ConsoleName"},
}

var gameFields = struct {
	ID, Title, ConsoleID, ConsoleName, ForumTopicID, Flags keys
	ImageIcon, ImageTitle, ImageInGame, ImageBoxArt        keys
	Publisher, Developer, Genre, ReleaseDate               keys
	Achievements                                           keys
	IsFinal, NumAchievements                               keys
	NumDistinctPlayersCasual, NumDistinctPlayersHardcore   keys
	RichPresencePatch                                      keys
	PossibleScore, NumAchieved, ScoreAchieved              keys
	NumAchievedHardcore, ScoreAchievedHardcore             keys
	LastPlayed, MyVote                                     keys
	CompletionPercentage, CompletionPercentageHardcore     keys
}{
	ID:                           keys{"GameID", "ID"},
	Title:                        keys{"Title", "GameTitle"},
	ConsoleID:                    keys{"ConsoleID"},
	ConsoleName:                  keys{"ConsoleName"},
	ForumTopicID:                 keys{"ForumTopicID"},
	Flags:                        keys{"Flags"},
	ImageIcon:                    keys{"ImageIcon", "GameIcon"},
	ImageTitle:                   keys{"ImageTitle"},
	ImageInGame:                  keys{"ImageIngame", "ImageInGame"},
	ImageBoxArt:                  keys{"ImageBoxArt"},
	Publisher:                    keys{"Publisher"},
	Developer:                    keys{"Developer"},
	Genre:                        keys{"Genre"},
	ReleaseDate:                  keys{"Released"},
	Achievements:                 keys{"Achievements"},
	IsFinal:                      keys{"IsFinal"},
	NumAchievements:              keys{"NumAchievements", "NumPossibleAchievements", "MaxPossible"},
	NumDistinctPlayersCasual:     keys{"NumDistinctPlayersCasual"},
	NumDistinctPlayersHardcore:   keys{"NumDistinctPlayersHardcore"},
	RichPresencePatch:            keys{"RichPresencePatch"},
	PossibleScore:                keys{"PossibleScore"},
	NumAchieved:                  keys{"NumAchieved", "NumAwardedToUser", "NumAwarded"},
	ScoreAchieved:                keys{"ScoreAchieved"},
	NumAchievedHardcore:          keys{"NumAchievedHardcore", "NumAwardedToUserHardcore", "NumAwardedHardcore"},
	ScoreAchievedHardcore:        keys{"ScoreAchievedHardcore"},
	LastPlayed:                   keys{"LastPlayed"},
	MyVote:                       keys{"MyVote"},
	CompletionPercentage:         keys{"UserCompletion", "PctWon"},
	CompletionPercentageHardcore: keys{"UserCompletionHardcore"},
}

// completedGameFields covers the per-mode rows of the completed games list
var completedGameFields = struct {
	HardcoreMode, Completion, Awarded keys
}{
	HardcoreMode: keys{"HardcoreMode"},
	Completion:   keys{"PctWon"},
	Awarded:      keys{"NumAwarded"},
}

var activityFields = struct {
	ID, Username, ActivityType, Data, Data2, LastUpdate, Timestamp keys
}{
	ID:           keys{"ID"},
	Username:     keys{"User"},
	ActivityType: keys{"activitytype", "ActivityType"},
	Data:         keys{"data", "Data"},
	Data2:        keys{"data2", "Data2"},
	LastUpdate:   keys{"lastupdate", "LastUpdate"},
	Timestamp:    keys{"timestamp", "Timestamp"},
}

var userFields = struct {
	Username, Points, RetroPoints keys
}{
	Username:    keys{"1", "User"},
	Points:      keys{"2", "TotalPoints", "Score"},
	RetroPoints: keys{"3", "TotalTruePoints", "RetroPoints"},
}

var summaryFields = struct {
	Username, ID, Awarded, LastActivity, RecentlyPlayed      keys
	RichPresenceMsg, MemberSince, LastGame                   keys
	ContribCount, ContribYield, TotalPoints, TotalTruePoints keys
	Permissions, Untracked, Motto, Rank, TotalRanked         keys
	RecentAchievements, UserPic, Status                      keys
}{
	Username:           keys{"User", "Username"},
	ID:                 keys{"ID"},
	Awarded:            keys{"Awarded"},
	LastActivity:       keys{"LastActivity"},
	RecentlyPlayed:     keys{"RecentlyPlayed"},
	RichPresenceMsg:    keys{"RichPresenceMsg"},
	MemberSince:        keys{"MemberSince"},
	LastGame:           keys{"LastGame"},
	ContribCount:       keys{"ContribCount"},
	ContribYield:       keys{"ContribYield"},
	TotalPoints:        keys{"TotalPoints"},
	TotalTruePoints:    keys{"TotalTruePoints"},
	Permissions:        keys{"Permissions"},
	Untracked:          keys{"Untracked"},
	Motto:              keys{"Motto"},
	Rank:               keys{"Rank"},
	TotalRanked:        keys{"TotalRanked"},
	RecentAchievements: keys{"RecentAchievements"},
	UserPic:            keys{"UserPic"},
	Status:             keys{"Status"},
}

// rankFields covers the rank and score record. TotalRanked arrives as a
// numeric string.
var rankFields = struct {
	Score, Rank, TotalRanked keys
}{
	Score:       keys{"Score", "TotalPoints"},
	Rank:        keys{"Rank"},
	TotalRanked: keys{"TotalRanked"},
}
