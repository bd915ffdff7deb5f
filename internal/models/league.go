package models

import (
	"time"
)

// League identifies a supported league
type League string

const (
	LeagueNBA   League = "NBA"
	LeagueNFL   League = "NFL"
	LeagueMLB   League = "MLB"
	LeagueNHL   League = "NHL"
	LeagueNCAAB League = "NCAAB"
)

// KnownLeagues lists every league the engine can address
var KnownLeagues = []League{LeagueNBA, LeagueNFL, LeagueMLB, LeagueNHL, LeagueNCAAB}

// IsKnown reports whether the league is supported
func (l League) IsKnown() bool {
	for _, known := range KnownLeagues {
		if l == known {
			return true
		}
	}
	return false
}

// SeasonPhase represents a league-specific date-range bucket within a season
type SeasonPhase string

const (
	PhaseAny              SeasonPhase = ""
	PhaseOutOfConference  SeasonPhase = "out_of_conference"
	PhaseConference       SeasonPhase = "conference"
	PhasePostseason       SeasonPhase = "postseason"
)

// PhaseWindow maps a phase to month/day boundaries within a season year
type PhaseWindow struct {
	Phase      SeasonPhase
	StartMonth time.Month
	StartDay   int
	EndMonth   time.Month
	EndDay     int
}

// ncaabPhases are the NCAAB season buckets. Phases are ignored for other leagues.
var ncaabPhases = []PhaseWindow{
	{Phase: PhaseOutOfConference, StartMonth: time.November, StartDay: 1, EndMonth: time.December, EndDay: 31},
	{Phase: PhaseConference, StartMonth: time.January, StartDay: 1, EndMonth: time.March, EndDay: 10},
	{Phase: PhasePostseason, StartMonth: time.March, StartDay: 11, EndMonth: time.April, EndDay: 15},
}

// PhaseWindows returns the phase buckets for a league, or nil when the league
// has no phase semantics.
func PhaseWindows(league League) []PhaseWindow {
	if league == LeagueNCAAB {
		return ncaabPhases
	}
	return nil
}

// MatchesPhase reports whether a game date falls inside the named phase for
// the league. Leagues without phase buckets always match.
func MatchesPhase(league League, phase SeasonPhase, date time.Time) bool {
	if phase == PhaseAny {
		return true
	}
	windows := PhaseWindows(league)
	if windows == nil {
		return true
	}
	for _, w := range windows {
		if w.Phase != phase {
			continue
		}
		start := monthDayOrdinal(w.StartMonth, w.StartDay)
		end := monthDayOrdinal(w.EndMonth, w.EndDay)
		cur := monthDayOrdinal(date.Month(), date.Day())
		if start <= end {
			return cur >= start && cur <= end
		}
		// Window wraps the calendar year boundary
		return cur >= start || cur <= end
	}
	return false
}

func monthDayOrdinal(m time.Month, d int) int {
	return int(m)*100 + d
}
