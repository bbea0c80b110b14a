package core

import (
	"strings"
	"time"

	"cinemacore/pkg/domain"
)

// SeanceInfo pairs a seance with the film it screens.
type SeanceInfo struct {
	Seance Seance
	Film   Film
}

// End returns when the seance frees the hall.
func (i SeanceInfo) End() time.Time { return i.Seance.End(i.Film) }

func seanceInfo(v TransactionView, id int) (SeanceInfo, error) {
	s, ok := v.FindSeance(id)
	if !ok {
		return SeanceInfo{}, domain.DeletedReference(EntitySeance, id)
	}
	f, ok := v.FindFilm(s.FilmID)
	if !ok {
		return SeanceInfo{}, domain.DeletedReference(EntityFilm, s.FilmID)
	}
	return SeanceInfo{Seance: s, Film: f}, nil
}

// SeanceFilter selects seances. Filters are pure and may be evaluated repeatedly.
type SeanceFilter func(SeanceInfo) bool

// AllSeances admits every seance.
func AllSeances() SeanceFilter {
	return func(SeanceInfo) bool { return true }
}

// PastSeances admits seances that started before now.
func PastSeances(now time.Time) SeanceFilter {
	return func(i SeanceInfo) bool { return i.Seance.StartTime.Before(now) }
}

// TodaySeances admits seances starting on now's calendar day in loc.
func TodaySeances(now time.Time, loc *time.Location) SeanceFilter {
	return daysAhead(now, loc, 0, 0)
}

// WeekSeances admits seances starting between today and seven calendar days ahead.
func WeekSeances(now time.Time, loc *time.Location) SeanceFilter {
	return daysAhead(now, loc, 0, 7)
}

// MonthSeances admits seances starting between today and thirty calendar days ahead.
func MonthSeances(now time.Time, loc *time.Location) SeanceFilter {
	return daysAhead(now, loc, 0, 30)
}

// FilmSeances admits seances of the given film.
func FilmSeances(filmID int) SeanceFilter {
	return func(i SeanceInfo) bool { return i.Seance.FilmID == filmID }
}

// And admits seances accepted by every filter.
func And(filters ...SeanceFilter) SeanceFilter {
	return func(i SeanceInfo) bool {
		for _, f := range filters {
			if f != nil && !f(i) {
				return false
			}
		}
		return true
	}
}

func daysAhead(now time.Time, loc *time.Location, lo, hi int) SeanceFilter {
	if loc == nil {
		loc = time.Local
	}
	today := civilDay(now.In(loc))
	return func(i SeanceInfo) bool {
		diff := civilDay(i.Seance.StartTime.In(loc)) - today
		return diff >= lo && diff <= hi
	}
}

// civilDay numbers calendar days independent of zone offsets and DST.
func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// ParseSeanceFilter resolves a filter by name: all, past, today, week or month.
func ParseSeanceFilter(name string, now time.Time, loc *time.Location) (SeanceFilter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "all":
		return AllSeances(), nil
	case "past":
		return PastSeances(now), nil
	case "today":
		return TodaySeances(now, loc), nil
	case "week":
		return WeekSeances(now, loc), nil
	case "month":
		return MonthSeances(now, loc), nil
	default:
		return nil, domain.NewError(domain.ErrInvalid, "", 0, "unknown seance filter %q", name)
	}
}
