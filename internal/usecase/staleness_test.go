package usecase

import (
	"testing"
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/team"
)

func fetchedAt(t time.Time) *time.Time { return &t }

func TestStalenessPolicy_MostRecentKeyTime(t *testing.T) {
	policy := DefaultStalenessPolicy(2025)

	// Wednesday afternoon: the latest marker behind it is Tuesday 00:15,
	// the close of Monday night football.
	now := time.Date(2025, 9, 10, 15, 0, 0, 0, time.UTC)
	got := policy.MostRecentKeyTime(now)
	want := time.Date(2025, 9, 9, 0, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected key time %v, got %v", want, got)
	}

	// Sunday evening between the slates: the 17:00 marker has passed, the
	// 20:05 one has not.
	now = time.Date(2025, 9, 7, 19, 0, 0, 0, time.UTC)
	got = policy.MostRecentKeyTime(now)
	want = time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected key time %v, got %v", want, got)
	}
}

func TestStalenessPolicy_MostRecentKeyTime_Monotonic(t *testing.T) {
	policy := DefaultStalenessPolicy(2025)

	start := time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC)
	previous := policy.MostRecentKeyTime(start)
	for hour := 1; hour <= 7*24; hour++ {
		now := start.Add(time.Duration(hour) * time.Hour)
		current := policy.MostRecentKeyTime(now)
		if current.Before(previous) {
			t.Fatalf("key time went backwards at %v: %v < %v", now, current, previous)
		}
		if current.After(now) {
			t.Fatalf("key time %v is in the future of %v", current, now)
		}
		previous = current
	}
}

func TestStalenessPolicy_ComputeNeedsUpdate(t *testing.T) {
	policy := DefaultStalenessPolicy(2025)
	// Sunday evening, after the 17:00 slate opened.
	now := time.Date(2025, 9, 7, 19, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		team team.Team
		want bool
	}{
		{
			name: "never fetched",
			team: team.Team{Season: 2025},
			want: true,
		},
		{
			name: "fetched before the slate",
			team: team.Team{Season: 2025, LastFetched: fetchedAt(time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC))},
			want: true,
		},
		{
			name: "fetched after the slate",
			team: team.Team{Season: 2025, LastFetched: fetchedAt(time.Date(2025, 9, 7, 18, 30, 0, 0, time.UTC))},
			want: false,
		},
		{
			name: "previous season never refetches",
			team: team.Team{Season: 2024},
			want: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.ComputeNeedsUpdate(tc.team, now); got != tc.want {
				t.Fatalf("expected needs_update=%v, got %v", tc.want, got)
			}
		})
	}
}

func TestStalenessPolicy_ComputeNeedsUpdate_MaxAge(t *testing.T) {
	policy := DefaultStalenessPolicy(2025)
	// Saturday midday: quietest stretch of the football week.
	now := time.Date(2025, 9, 6, 12, 0, 0, 0, time.UTC)

	fresh := team.Team{Season: 2025, LastFetched: fetchedAt(now.Add(-2 * time.Hour))}
	if policy.ComputeNeedsUpdate(fresh, now) {
		t.Fatalf("expected fresh data inside max age to hold")
	}

	old := team.Team{Season: 2025, LastFetched: fetchedAt(now.Add(-30 * time.Hour))}
	if !policy.ComputeNeedsUpdate(old, now) {
		t.Fatalf("expected data past max age to be stale")
	}
}

func TestStalenessPolicy_NeedsTouch(t *testing.T) {
	policy := DefaultStalenessPolicy(2025)
	now := time.Date(2025, 9, 6, 12, 0, 0, 0, time.UTC)

	recent := team.Team{LastFetched: fetchedAt(now.Add(-5 * time.Minute))}
	if policy.NeedsTouch(recent, now) {
		t.Fatalf("expected no touch inside threshold")
	}

	aged := team.Team{LastFetched: fetchedAt(now.Add(-15 * time.Minute))}
	if !policy.NeedsTouch(aged, now) {
		t.Fatalf("expected touch past threshold")
	}

	if !policy.NeedsTouch(team.Team{}, now) {
		t.Fatalf("expected touch when never fetched")
	}
}

func TestComputeNeedsMigrate(t *testing.T) {
	if !ComputeNeedsMigrate(team.Team{Season: 0, LeagueMasterID: "m-1"}) {
		t.Fatalf("expected missing season to need migration")
	}
	if !ComputeNeedsMigrate(team.Team{Season: 2025}) {
		t.Fatalf("expected missing master to need migration")
	}
	if ComputeNeedsMigrate(team.Team{Season: 2025, LeagueMasterID: "m-1"}) {
		t.Fatalf("expected fully stamped team to not need migration")
	}
}
