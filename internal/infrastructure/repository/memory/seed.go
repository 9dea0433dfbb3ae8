package memory

import (
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/league"
	"github.com/rosterlink/rosterlink/internal/domain/leaguemaster"
	"github.com/rosterlink/rosterlink/internal/domain/platform"
	"github.com/rosterlink/rosterlink/internal/domain/team"
	"github.com/rosterlink/rosterlink/internal/domain/userteam"
)

const (
	LeagueMasterIDGridiron = "master-gridiron-dynasty"

	LeagueIDGridiron2025 = "lg-gridiron-2025"
	LeagueIDGridiron2024 = "lg-gridiron-2024"
	LeagueIDHarborLegacy = "lg-harbor-legacy"
)

func seedTime(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 12, 0, 0, 0, time.UTC)
}

func SeedLeagueMasters() []leaguemaster.LeagueMaster {
	return []leaguemaster.LeagueMaster{
		{
			ID:               LeagueMasterIDGridiron,
			Name:             "Gridiron Dynasty",
			Platform:         platform.Sleeper,
			ExternalLeagueID: "998877001122334455",
			CreatedBy:        "user-amos",
			CreatedAt:        seedTime(time.August, 1),
			LastModified:     seedTime(time.August, 1),
		},
	}
}

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:               LeagueIDGridiron2025,
			Name:             "Gridiron Dynasty",
			Platform:         platform.Sleeper,
			ExternalLeagueID: "998877001122334455",
			LeagueMasterID:   LeagueMasterIDGridiron,
			Season:           2025,
			Version:          1,
			LastModified:     seedTime(time.August, 20),
		},
		{
			ID:               LeagueIDGridiron2024,
			Name:             "Gridiron Dynasty",
			Platform:         platform.Sleeper,
			ExternalLeagueID: "998877001122334455",
			LeagueMasterID:   LeagueMasterIDGridiron,
			Season:           2024,
			Version:          1,
			LastModified:     seedTime(time.January, 10),
		},
		// A legacy row that predates identity migration: no master, no season.
		{
			ID:               LeagueIDHarborLegacy,
			Name:             "Harbor City Keepers",
			Platform:         platform.Fleaflicker,
			ExternalLeagueID: "43210",
			Version:          1,
			LastModified:     seedTime(time.February, 2),
		},
	}
}

func SeedTeams() []team.Team {
	fetched := seedTime(time.August, 25)
	return []team.Team{
		{
			ID:             "tm-gridiron-2025-01",
			LeagueID:       LeagueIDGridiron2025,
			LeagueMasterID: LeagueMasterIDGridiron,
			Season:         2025,
			ExternalTeamID: "1",
			ExternalUserID: "sleeper-user-amos",
			Username:       "amos",
			Players:        []string{"4046", "6794", "8138"},
			Wins:           2,
			Losses:         1,
			PointsFor:      341.5,
			PointsAgainst:  298.2,
			Version:        3,
			LastFetched:    &fetched,
		},
		{
			ID:             "tm-gridiron-2025-02",
			LeagueID:       LeagueIDGridiron2025,
			LeagueMasterID: LeagueMasterIDGridiron,
			Season:         2025,
			ExternalTeamID: "2",
			ExternalUserID: "sleeper-user-bea",
			Username:       "bea",
			Players:        []string{"4881", "7547"},
			Wins:           1,
			Losses:         2,
			PointsFor:      301.0,
			PointsAgainst:  322.8,
			Version:        3,
			LastFetched:    &fetched,
		},
		{
			ID:             "tm-harbor-legacy-01",
			LeagueID:       LeagueIDHarborLegacy,
			ExternalTeamID: "1543",
			Username:       "cole",
			Version:        1,
		},
	}
}

func SeedUserTeams() []userteam.UserTeam {
	return []userteam.UserTeam{
		{
			ID:             "ut-amos-gridiron",
			UserID:         "user-amos",
			TeamID:         "tm-gridiron-2025-01",
			LeagueMasterID: LeagueMasterIDGridiron,
			CurrentSeason:  2025,
			CreatedAt:      seedTime(time.August, 20),
		},
		{
			ID:        "ut-cole-harbor",
			UserID:    "user-cole",
			TeamID:    "tm-harbor-legacy-01",
			CreatedAt: seedTime(time.February, 2),
		},
	}
}
