package core

import (
	"context"
	"iter"
	"slices"

	"cinemacore/internal/hall"
	"cinemacore/pkg/domain"
)

// NewTicket sells seat (row, seat) of seance. The seat must lie inside the
// hall and must not already be sold for the seance.
func (s *Service) NewTicket(ctx context.Context, seance SeanceHandle, row, seat int) (TicketHandle, error) {
	if !s.hall.Contains(row, seat) {
		return TicketHandle{}, s.outOfHall(row, seat)
	}
	var created Ticket
	_, err := s.run(ctx, "create_ticket", 0, func(tx Transaction) (int, error) {
		if _, ok := tx.FindSeance(seance.id); !ok {
			return 0, domain.DeletedReference(EntitySeance, seance.id)
		}
		var err error
		created, err = tx.CreateTicket(Ticket{SeanceID: seance.id, Row: row, Seat: seat})
		return created.ID, err
	})
	if err != nil {
		return TicketHandle{}, err
	}
	s.publish(ctx, s.event(EventTicketSold, created))
	return TicketHandle{svc: s, id: created.ID}, nil
}

// SellTicket sells a seat for a seance that has not ended yet and, when take
// is set, marks the seat as taken straight away.
func (s *Service) SellTicket(ctx context.Context, seanceID, row, seat int, take bool) (TicketHandle, error) {
	if !s.hall.Contains(row, seat) {
		return TicketHandle{}, s.outOfHall(row, seat)
	}
	var created Ticket
	_, err := s.run(ctx, "create_ticket", 0, func(tx Transaction) (int, error) {
		info, err := seanceInfo(tx, seanceID)
		if err != nil {
			return 0, domain.NewError(domain.ErrNotFound, EntitySeance, seanceID, "no such seance")
		}
		if !info.End().After(s.now()) {
			return 0, domain.NewError(domain.ErrInvalid, EntitySeance, seanceID, "seance is over")
		}
		created, err = tx.CreateTicket(Ticket{SeanceID: seanceID, Row: row, Seat: seat, SeatTaken: take})
		return created.ID, err
	})
	if err != nil {
		return TicketHandle{}, err
	}
	events := []BookingEvent{s.event(EventTicketSold, created)}
	if take {
		events = append(events, s.event(EventSeatTaken, created))
	}
	s.publish(ctx, events...)
	return TicketHandle{svc: s, id: created.ID}, nil
}

func (s *Service) outOfHall(row, seat int) error {
	return domain.NewError(domain.ErrInvalid, EntityTicket, 0, "row %d seat %d is outside the %dx%d hall", row, seat, s.hall.Rows, s.hall.Seats)
}

// Ticket returns a handle to ticket id if it exists.
func (s *Service) Ticket(id int) (TicketHandle, bool) {
	if _, ok := s.store.GetTicket(id); !ok {
		return TicketHandle{}, false
	}
	return TicketHandle{svc: s, id: id}, true
}

// TicketByID is Ticket reporting a missing id as ErrNotFound.
func (s *Service) TicketByID(id int) (TicketHandle, error) {
	h, ok := s.Ticket(id)
	if !ok {
		return TicketHandle{}, domain.NewError(domain.ErrNotFound, EntityTicket, id, "no such ticket")
	}
	return h, nil
}

// Tickets yields a handle per current ticket in unspecified order.
func (s *Service) Tickets() iter.Seq[TicketHandle] {
	return s.ticketHandles(func(Ticket) bool { return true })
}

// FreeSeats lists the unsold seats of seance in row-major order.
func (s *Service) FreeSeats(seance SeanceHandle) ([]hall.Seat, error) {
	sold, err := s.soldSeats(seance, func(Ticket) bool { return true })
	if err != nil {
		return nil, err
	}
	taken := make(map[hall.Seat]struct{}, len(sold))
	for _, seat := range sold {
		taken[seat] = struct{}{}
	}
	return slices.Collect(s.hall.Except(taken)), nil
}

// TakenSeats lists the sold seats of seance whose holders have arrived.
func (s *Service) TakenSeats(seance SeanceHandle) ([]hall.Seat, error) {
	return s.soldSeats(seance, func(t Ticket) bool { return t.SeatTaken })
}

// LeftSeats lists the sold seats of seance whose holders have not arrived yet.
func (s *Service) LeftSeats(seance SeanceHandle) ([]hall.Seat, error) {
	return s.soldSeats(seance, func(t Ticket) bool { return !t.SeatTaken })
}

func (s *Service) soldSeats(seance SeanceHandle, keep func(Ticket) bool) ([]hall.Seat, error) {
	var out []hall.Seat
	err := s.view(context.Background(), func(v TransactionView) error {
		if _, ok := v.FindSeance(seance.id); !ok {
			return domain.DeletedReference(EntitySeance, seance.id)
		}
		for t := range v.Tickets() {
			if t.SeanceID == seance.id && keep(t) {
				out = append(out, hall.Seat{Row: t.Row, Seat: t.Seat})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b hall.Seat) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Seat - b.Seat
	})
	return out, nil
}

// CheckRefundable reports why ticket cannot be refunded: only tickets for
// seances that have not started are.
func (s *Service) CheckRefundable(ticket TicketHandle) error {
	return s.view(context.Background(), func(v TransactionView) error {
		return s.checkRefundable(v, ticket.id)
	})
}

func (s *Service) checkRefundable(v TransactionView, ticketID int) error {
	t, ok := v.FindTicket(ticketID)
	if !ok {
		return domain.DeletedReference(EntityTicket, ticketID)
	}
	info, err := seanceInfo(v, t.SeanceID)
	if err != nil {
		return err
	}
	if !info.Seance.StartTime.After(s.now()) {
		return domain.NewError(domain.ErrInvalid, EntityTicket, ticketID, "seance %d has already started", t.SeanceID)
	}
	return nil
}

// Refund deletes a refundable ticket.
func (s *Service) Refund(ctx context.Context, ticket TicketHandle) error {
	var refunded Ticket
	_, err := s.run(ctx, "refund_ticket", ticket.id, func(tx Transaction) (int, error) {
		if err := s.checkRefundable(tx, ticket.id); err != nil {
			return ticket.id, err
		}
		refunded, _ = tx.FindTicket(ticket.id)
		return ticket.id, tx.DeleteTicket(ticket.id)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, s.event(EventTicketRefunded, refunded))
	return nil
}

// CheckTicketToUse reports why ticket cannot be used to take its seat: the
// seat must be free and the seance must not be over.
func (s *Service) CheckTicketToUse(ticket TicketHandle) error {
	return s.view(context.Background(), func(v TransactionView) error {
		return s.checkTicketToUse(v, ticket.id)
	})
}

func (s *Service) checkTicketToUse(v TransactionView, ticketID int) error {
	t, ok := v.FindTicket(ticketID)
	if !ok {
		return domain.DeletedReference(EntityTicket, ticketID)
	}
	if t.SeatTaken {
		return domain.NewError(domain.ErrInvalid, EntityTicket, ticketID, "seat is already taken")
	}
	info, err := seanceInfo(v, t.SeanceID)
	if err != nil {
		return err
	}
	if !info.End().After(s.now()) {
		return domain.NewError(domain.ErrInvalid, EntityTicket, ticketID, "seance %d is over", t.SeanceID)
	}
	return nil
}

// TakeSeat marks a usable ticket's seat as taken.
func (s *Service) TakeSeat(ctx context.Context, ticket TicketHandle) error {
	var updated Ticket
	_, err := s.run(ctx, "take_seat", ticket.id, func(tx Transaction) (int, error) {
		if err := s.checkTicketToUse(tx, ticket.id); err != nil {
			return ticket.id, err
		}
		var err error
		updated, err = tx.UpdateTicket(ticket.id, func(t *Ticket) error {
			t.SeatTaken = true
			return nil
		})
		return ticket.id, err
	})
	if err != nil {
		return err
	}
	s.publish(ctx, s.event(EventSeatTaken, updated))
	return nil
}
