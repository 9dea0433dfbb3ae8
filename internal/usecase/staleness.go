package usecase

import (
	"time"

	"github.com/rosterlink/rosterlink/internal/domain/team"
)

// KeyTime is one weekly broadcast window marker in UTC. Cached roster data
// is presumed stale once "now" crosses a key time that the data was fetched
// before.
type KeyTime struct {
	Day    time.Weekday
	Hour   int
	Minute int
}

// defaultKeyTimes are the NFL broadcast windows in UTC: Thursday night,
// the two Sunday slates, Sunday night and Monday night football.
var defaultKeyTimes = []KeyTime{
	{Day: time.Friday, Hour: 0, Minute: 20},
	{Day: time.Sunday, Hour: 17, Minute: 0},
	{Day: time.Sunday, Hour: 20, Minute: 5},
	{Day: time.Monday, Hour: 0, Minute: 20},
	{Day: time.Tuesday, Hour: 0, Minute: 15},
}

// StalenessPolicy decides when cached team data must be refetched from the
// external platform. All methods are pure; callers supply "now".
type StalenessPolicy struct {
	KeyTimes []KeyTime
	// MaxAge is the hard ceiling: data older than this is stale even if no
	// key time has passed since the fetch.
	MaxAge time.Duration
	// TouchThreshold is how old lastFetched may get before a batched read
	// bumps it opportunistically.
	TouchThreshold time.Duration
	CurrentSeason  int
}

func DefaultStalenessPolicy(currentSeason int) StalenessPolicy {
	return StalenessPolicy{
		KeyTimes:       defaultKeyTimes,
		MaxAge:         24 * time.Hour,
		TouchThreshold: 10 * time.Minute,
		CurrentSeason:  currentSeason,
	}
}

// MostRecentKeyTime returns the latest key time at or before now.
func (p StalenessPolicy) MostRecentKeyTime(now time.Time) time.Time {
	keyTimes := p.KeyTimes
	if len(keyTimes) == 0 {
		keyTimes = defaultKeyTimes
	}

	now = now.UTC()
	var best time.Time
	for _, kt := range keyTimes {
		occurrence := mostRecentWeekday(now, kt)
		if occurrence.After(best) {
			best = occurrence
		}
	}
	return best
}

// ComputeNeedsUpdate reports whether the team's cached data must be
// refetched: the team is in the current season and its lastFetched is
// missing, predates the most recent key time, or exceeds the max age.
func (p StalenessPolicy) ComputeNeedsUpdate(t team.Team, now time.Time) bool {
	if t.Season != p.CurrentSeason {
		return false
	}
	if t.LastFetched == nil {
		return true
	}

	fetched := t.LastFetched.UTC()
	if fetched.Before(p.MostRecentKeyTime(now)) {
		return true
	}

	maxAge := p.MaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return now.UTC().Sub(fetched) > maxAge
}

// NeedsTouch reports whether a batched read should bump lastFetched.
func (p StalenessPolicy) NeedsTouch(t team.Team, now time.Time) bool {
	threshold := p.TouchThreshold
	if threshold <= 0 {
		threshold = 10 * time.Minute
	}
	if t.LastFetched == nil {
		return true
	}
	return now.UTC().Sub(t.LastFetched.UTC()) > threshold
}

// ComputeNeedsMigrate reports whether the team predates the league master
// migration: season or master reference is absent.
func ComputeNeedsMigrate(t team.Team) bool {
	return t.Season == 0 || t.LeagueMasterID == ""
}

// mostRecentWeekday finds the latest occurrence of the weekly key time at
// or before now.
func mostRecentWeekday(now time.Time, kt KeyTime) time.Time {
	dayDelta := int(now.Weekday()) - int(kt.Day)
	if dayDelta < 0 {
		dayDelta += 7
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), kt.Hour, kt.Minute, 0, 0, time.UTC)
	candidate = candidate.AddDate(0, 0, -dayDelta)
	if candidate.After(now) {
		candidate = candidate.AddDate(0, 0, -7)
	}
	return candidate
}
