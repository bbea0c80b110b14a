package core

import (
	"cinemacore/pkg/domain"
	"time"
)

// ScheduleValidator admits seances into the single shared hall. Only seances
// whose end is after now take part in the checks.
type ScheduleValidator struct{}

// overlaps reports whether the candidate [t, t+d) and the seance [sStart, sEnd)
// conflict: either start point lies strictly inside the other span. Abutting
// spans do not conflict, and neither does a span that swallows another without
// containing its start point.
func overlaps(t time.Time, d time.Duration, sStart, sEnd time.Time) bool {
	return (sStart.Before(t.Add(d)) && sStart.After(t)) || (t.Before(sEnd) && t.After(sStart))
}

type seanceSpan struct {
	id     int
	filmID int
	start  time.Time
	end    time.Time
}

func activeSpans(view domain.TransactionView, now time.Time) []seanceSpan {
	var spans []seanceSpan
	for s := range view.Seances() {
		film, ok := view.FindFilm(s.FilmID)
		if !ok {
			continue
		}
		end := s.End(film)
		if !end.After(now) {
			continue
		}
		spans = append(spans, seanceSpan{id: s.ID, filmID: s.FilmID, start: s.StartTime, end: end})
	}
	return spans
}

func conflict(id int, format string, args ...any) error {
	return domain.NewError(domain.ErrSchedulingConflict, domain.EntitySeance, id, format, args...)
}

// ValidateNewSeance admits a seance of film starting at start.
func (v ScheduleValidator) ValidateNewSeance(view domain.TransactionView, film Film, start, now time.Time) error {
	return v.validateStart(view, 0, film, start, now)
}

// ValidateStartTimeChange admits moving seance to start, ignoring the seance itself.
func (v ScheduleValidator) ValidateStartTimeChange(view domain.TransactionView, seance Seance, film Film, start, now time.Time) error {
	return v.validateStart(view, seance.ID, film, start, now)
}

func (ScheduleValidator) validateStart(view domain.TransactionView, exclude int, film Film, start, now time.Time) error {
	if start.Before(now) {
		return conflict(exclude, "cannot schedule a seance in the past (%s)", domain.FormatDateTime(start))
	}
	for _, s := range activeSpans(view, now) {
		if s.id == exclude {
			continue
		}
		if overlaps(start, film.Length(), s.start, s.end) {
			return conflict(exclude, "hall is busy with seance %d from %s to %s", s.id, domain.FormatDateTime(s.start), domain.FormatDateTime(s.end))
		}
	}
	return nil
}

// ValidateDurationChange admits changing film to newDuration minutes. Shrinking
// is always admitted; otherwise every active seance of the film is re-checked
// against every other active seance using the new duration.
func (ScheduleValidator) ValidateDurationChange(view domain.TransactionView, film Film, newDuration int, now time.Time) error {
	if newDuration <= 0 {
		return domain.NewError(domain.ErrSchedulingConflict, domain.EntityFilm, film.ID, "duration must be positive, got %d", newDuration)
	}
	if newDuration < film.Duration {
		return nil
	}
	length := time.Duration(newDuration) * time.Minute
	spans := activeSpans(view, now)
	for _, s1 := range spans {
		if s1.filmID != film.ID {
			continue
		}
		for _, s2 := range spans {
			if s2.id == s1.id {
				continue
			}
			end := s2.end
			if s2.filmID == film.ID {
				end = s2.start.Add(length)
			}
			if overlaps(s1.start, length, s2.start, end) {
				return domain.NewError(domain.ErrSchedulingConflict, domain.EntityFilm, film.ID,
					"duration %d would make seance %d overlap seance %d", newDuration, s1.id, s2.id)
			}
		}
	}
	return nil
}
