package core

import (
	"context"
	"errors"
	"slices"
	"testing"

	"cinemacore/pkg/domain"
)

func TestHandlesObserveEachOthersWrites(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustFilm(t, svc, "A", 90)
	b, ok := svc.Film(a.ID())
	if !ok {
		t.Fatal("expected film to be found")
	}
	if a != b {
		t.Fatal("handles to the same id must be equal")
	}
	if err := a.SetDescription(context.Background(), "updated"); err != nil {
		t.Fatalf("set description: %v", err)
	}
	if got, _ := b.Description(); got != "updated" {
		t.Fatalf("expected second handle to observe write, got %q", got)
	}
}

func TestDeletedHandlesFailDeterministically(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	film := mustFilm(t, svc, "A", 90)
	seance := mustSeance(t, svc, film, "10:00|01.01.2030")
	ticket := mustTicket(t, svc, seance, 1, 1)
	user, err := svc.NewUser(ctx, "bob", "pw", false)
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	if err := film.Delete(ctx); err != nil {
		t.Fatalf("delete film: %v", err)
	}
	if err := user.Delete(ctx); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	checks := map[string]error{}
	_, checks["film name"] = film.Name()
	checks["film rename"] = film.SetName(ctx, "B")
	checks["film empty rename"] = film.SetName(ctx, "")
	checks["film duration"] = film.SetDuration(ctx, 10)
	_, checks["seance start"] = seance.StartTime()
	_, checks["seance end"] = seance.EndTime()
	checks["seance move"] = seance.SetStartTime(ctx, at(t, "18:00|01.01.2030"))
	checks["seance delete"] = seance.Delete(ctx)
	_, checks["ticket row"] = ticket.Row()
	checks["ticket delete"] = ticket.Delete(ctx)
	checks["ticket use"] = svc.CheckTicketToUse(ticket)
	_, checks["user login"] = user.Login()
	checks["user password"] = user.SetPassword(ctx, "x")
	checks["user empty login"] = user.SetLogin(ctx, "")
	checks["user delete"] = user.Delete(ctx)
	for name, err := range checks {
		if !errors.Is(err, domain.ErrDeletedReference) {
			t.Errorf("%s: expected deleted reference, got %v", name, err)
		}
	}
	if !film.IsDeleted() || !seance.IsDeleted() || !ticket.IsDeleted() || !user.IsDeleted() {
		t.Fatal("expected every handle to report deletion")
	}
}

func TestSeanceHandleEdits(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustFilm(t, svc, "A", 60)
	long := mustFilm(t, svc, "Long", 180)
	first := mustSeance(t, svc, a, "10:00|01.01.2030")
	second := mustSeance(t, svc, a, "12:00|01.01.2030")

	if err := first.SetStartTime(ctx, at(t, "10:30|01.01.2030")); err != nil {
		t.Fatalf("moving within free time must succeed: %v", err)
	}
	if err := first.SetStartTime(ctx, at(t, "12:30|01.01.2030")); !errors.Is(err, domain.ErrSchedulingConflict) {
		t.Fatalf("expected move into second seance to fail, got %v", err)
	}
	if start, _ := first.StartTime(); !start.Equal(at(t, "10:30|01.01.2030")) {
		t.Fatalf("failed move must not change start, got %s", start)
	}
	if err := first.SetFilm(ctx, long); !errors.Is(err, domain.ErrSchedulingConflict) {
		t.Fatalf("expected longer film to collide with second seance, got %v", err)
	}
	if err := second.SetFilm(ctx, long); err != nil {
		t.Fatalf("longer film in the last slot must fit: %v", err)
	}
	end, err := second.EndTime()
	if err != nil {
		t.Fatalf("end time: %v", err)
	}
	if !end.Equal(at(t, "15:00|01.01.2030")) {
		t.Fatalf("expected end at 15:00, got %s", end)
	}
	f, _ := second.Film()
	if f != long {
		t.Fatalf("expected seance to screen %d, got %d", long.ID(), f.ID())
	}
	if got := slices.Collect(long.Seances()); len(got) != 1 || got[0] != second {
		t.Fatalf("unexpected seances of long film: %v", got)
	}
}

func TestUserHandleEdits(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	bob, _ := svc.NewUser(ctx, "bob", "pw", false)
	if _, err := svc.NewUser(ctx, "alice", "pw", false); err != nil {
		t.Fatalf("new user: %v", err)
	}
	if err := bob.SetLogin(ctx, "alice"); !errors.Is(err, domain.ErrUniqueConstraint) {
		t.Fatalf("expected login clash, got %v", err)
	}
	if err := bob.SetLogin(ctx, ""); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected empty login to be invalid, got %v", err)
	}
	if err := bob.SetLogin(ctx, "robert"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := bob.SetAdmin(ctx, true); err != nil {
		t.Fatalf("set admin: %v", err)
	}
	h, err := svc.UserByLogin("robert")
	if err != nil || h != bob {
		t.Fatalf("expected renamed user, got %v %v", h, err)
	}
	if admin, _ := h.IsAdmin(); !admin {
		t.Fatal("expected admin flag")
	}
}

func TestSequencesToleratesMutationDuringIteration(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		mustFilm(t, svc, name, 10)
	}
	for h := range svc.Films() {
		if err := h.Delete(ctx); err != nil {
			t.Fatalf("delete during iteration: %v", err)
		}
	}
	if n := len(slices.Collect(svc.Films())); n != 0 {
		t.Fatalf("expected no films, got %d", n)
	}
}

func TestSequencesReevaluateOnEachRange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustFilm(t, svc, "A", 60)
	seance := mustSeance(t, svc, a, "10:00|01.01.2030")
	first := mustTicket(t, svc, seance, 1, 1)

	films := svc.Films()
	seances := svc.Seances(nil)
	tickets := svc.Tickets()
	users := svc.Users()

	b := mustFilm(t, svc, "B", 60)
	later := mustSeance(t, svc, b, "12:00|01.01.2030")
	second := mustTicket(t, svc, later, 2, 2)
	bob, err := svc.NewUser(ctx, "bob", "pw", false)
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	if err := a.Delete(ctx); err != nil {
		t.Fatalf("delete film: %v", err)
	}

	if got := slices.Collect(films); len(got) != 1 || got[0] != b {
		t.Fatalf("films: expected only %d, got %v", b.ID(), got)
	}
	if got := slices.Collect(seances); len(got) != 1 || got[0] != later {
		t.Fatalf("seances: expected only %d, got %v", later.ID(), got)
	}
	if got := slices.Collect(tickets); len(got) != 1 || got[0] != second || got[0] == first {
		t.Fatalf("tickets: expected only %d, got %v", second.ID(), got)
	}
	if got := slices.Collect(users); !slices.Contains(got, bob) {
		t.Fatalf("users: expected %d to appear, got %v", bob.ID(), got)
	}

	if err := b.Delete(ctx); err != nil {
		t.Fatalf("delete film: %v", err)
	}
	if n := len(slices.Collect(films)); n != 0 {
		t.Fatalf("expected third range to see no films, got %d", n)
	}
}
