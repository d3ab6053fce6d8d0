package main

// Achievement definitions
type AchievementDef struct {
	ID          string
	Name        string
	Description string
}

var Achievements = []AchievementDef{
	{"first_capture", "Homesteader", "Capture territory for the first time"},
	{"land_grab", "Land Grab", "Capture 100 cells in a single match"},
	{"land_baron", "Land Baron", "Capture 1000 cells in total"},
	{"first_blood", "First Blood", "Cut another player's trail"},
	{"headhunter", "Headhunter", "Eliminate 5 players in a single match"},
	{"flawless", "Flawless Victory", "Win a match without dying"},
	{"conqueror", "Conqueror", "Win 10 matches"},
	{"veteran", "Veteran", "Reach level 10"},
	{"legend", "Legend", "Reach level 50"},
	{"survivor", "Survivor", "Play for 1 hour total"},
}

// CheckAchievements unlocks whatever the player's totals and the match
// just played now qualify for. Returns only the newly unlocked ones.
func CheckAchievements(db *DB, playerID int64, o MatchOutcome) []AchievementDef {
	if db == nil {
		return nil
	}

	stats, err := db.GetStats(playerID)
	if err != nil || stats == nil {
		return nil
	}

	existing, err := db.GetAchievements(playerID)
	if err != nil {
		return nil
	}
	has := make(map[string]bool, len(existing))
	for _, a := range existing {
		has[a] = true
	}

	var unlocked []AchievementDef

	check := func(id string) bool {
		if has[id] {
			return false
		}
		switch id {
		case "first_capture":
			return stats.Captures >= 1
		case "land_grab":
			return o.Cells >= 100
		case "land_baron":
			return stats.Cells >= 1000
		case "first_blood":
			return stats.Kills >= 1
		case "headhunter":
			return o.Kills >= 5
		case "flawless":
			return o.Won && o.Deaths == 0
		case "conqueror":
			return stats.Wins >= 10
		case "veteran":
			return stats.Level >= 10
		case "legend":
			return stats.Level >= 50
		case "survivor":
			return stats.Playtime >= 3600
		}
		return false
	}

	for _, def := range Achievements {
		if check(def.ID) {
			if newlyUnlocked, err := db.UnlockAchievement(playerID, def.ID); err == nil && newlyUnlocked {
				unlocked = append(unlocked, def)
			}
		}
	}

	return unlocked
}
