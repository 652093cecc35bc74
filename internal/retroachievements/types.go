package retroachievements

// Entities are built once from a single response record and never modified
// afterwards. Optional fields are pointers: nil means the service did not
// send the field. Raw keeps the record the entity was built from.

type Achievement struct {
	ID                  *int64  `json:"id,omitempty"`
	GameID              *int64  `json:"game_id,omitempty"`
	GameTitle           *string `json:"game_title,omitempty"`
	GameIcon            *string `json:"game_icon,omitempty"`
	NumAwarded          *int64  `json:"num_awarded,omitempty"`
	NumAwardedHardcore  *int64  `json:"num_awarded_hardcore,omitempty"`
	Title               *string `json:"title,omitempty"`
	Description         *string `json:"description,omitempty"`
	Points              *int64  `json:"points,omitempty"`
	TrueRatio           *int64  `json:"true_ratio,omitempty"`
	Author              *string `json:"author,omitempty"`
	DateModified        *string `json:"date_modified,omitempty"`
	DateCreated         *string `json:"date_created,omitempty"`
	BadgeName           *string `json:"badge_name,omitempty"`
	DisplayOrder        *int64  `json:"display_order,omitempty"`
	MemAddr             *string `json:"mem_addr,omitempty"`
	IsAwarded           *bool   `json:"is_awarded,omitempty"`
	DateAwarded         *string `json:"date_awarded,omitempty"`
	DateAwardedHardcore *string `json:"date_awarded_hardcore,omitempty"`
	HardcoreAchieved    *bool   `json:"hardcore_achieved,omitempty"`
	ConsoleName         *string `json:"console_name,omitempty"`
	Raw                 Record  `json:"raw"`
}

type Game struct {
	GameID       *int64  `json:"game_id,omitempty"`
	Title        *string `json:"title,omitempty"`
	ConsoleID    *int64  `json:"console_id,omitempty"`
	ConsoleName  *string `json:"console_name,omitempty"`
	ForumTopicID *int64  `json:"forum_topic_id,omitempty"`
	Flags        *int64  `json:"flags,omitempty"`
	ImageIcon    *string `json:"image_icon,omitempty"`
	ImageTitle   *string `json:"image_title,omitempty"`
	ImageInGame  *string `json:"image_in_game,omitempty"`
	ImageBoxArt  *string `json:"image_box_art,omitempty"`
	Publisher    *string `json:"publisher,omitempty"`
	Developer    *string `json:"developer,omitempty"`
	Genre        *string `json:"genre,omitempty"`
	ReleaseDate  *string `json:"release_date,omitempty"`

	// Achievements is nil unless the payload carried achievement records.
	// A non-nil empty slice means the game has none.
	Achievements []Achievement `json:"achievements"`

	IsFinal                    *bool   `json:"is_final,omitempty"`
	NumAchievements            *int64  `json:"num_achievements,omitempty"`
	NumDistinctPlayersCasual   *int64  `json:"num_distinct_players_casual,omitempty"`
	NumDistinctPlayersHardcore *int64  `json:"num_distinct_players_hardcore,omitempty"`
	RichPresencePatch          *string `json:"rich_presence_patch,omitempty"`

	PossibleScore                *int64   `json:"possible_score,omitempty"`
	NumAchieved                  *int64   `json:"num_achieved,omitempty"`
	ScoreAchieved                *int64   `json:"score_achieved,omitempty"`
	NumAchievedHardcore          *int64   `json:"num_achieved_hardcore,omitempty"`
	ScoreAchievedHardcore        *int64   `json:"score_achieved_hardcore,omitempty"`
	LastPlayed                   *string  `json:"last_played,omitempty"`
	MyVote                       *string  `json:"my_vote,omitempty"`
	CompletionPercentage         *float64 `json:"completion_percentage,omitempty"`
	CompletionPercentageHardcore *float64 `json:"completion_percentage_hardcore,omitempty"`

	Raw Record `json:"raw"`
}

type Activity struct {
	ID           *int64  `json:"id,omitempty"`
	Username     *string `json:"username,omitempty"`
	ActivityType *int64  `json:"activity_type,omitempty"`
	Data         *int64  `json:"data,omitempty"`
	Data2        *int64  `json:"data2,omitempty"`
	LastUpdate   *string `json:"last_update,omitempty"`
	Timestamp    *string `json:"timestamp,omitempty"`
	Raw          Record  `json:"raw"`
}

type User struct {
	Username    *string `json:"username,omitempty"`
	Points      *int64  `json:"points,omitempty"`
	RetroPoints *int64  `json:"retro_points,omitempty"`
	Raw         Record  `json:"raw"`
}

type UserSummary struct {
	Username           *string       `json:"username,omitempty"`
	ID                 *int64        `json:"id,omitempty"`
	Awarded            []Game        `json:"awarded,omitempty"`
	LastActivity       *Activity     `json:"last_activity,omitempty"`
	RecentlyPlayed     []Game        `json:"recently_played,omitempty"`
	RichPresenceMsg    *string       `json:"rich_presence_msg,omitempty"`
	MemberSince        *string       `json:"member_since,omitempty"`
	LastGame           *Game         `json:"last_game,omitempty"`
	ContribCount       *int64        `json:"contrib_count,omitempty"`
	ContribYield       *int64        `json:"contrib_yield,omitempty"`
	TotalPoints        *int64        `json:"total_points,omitempty"`
	TotalTruePoints    *int64        `json:"total_true_points,omitempty"`
	Permissions        *int64        `json:"permissions,omitempty"`
	Untracked          *bool         `json:"untracked,omitempty"`
	Motto              *string       `json:"motto,omitempty"`
	Rank               *int64        `json:"rank,omitempty"`
	TotalRanked        *int64        `json:"total_ranked,omitempty"`
	RecentAchievements []Achievement `json:"recent_achievements,omitempty"`
	UserPic            *string       `json:"user_pic,omitempty"`
	Status             *string       `json:"status,omitempty"`
	Raw                Record        `json:"raw"`
}
