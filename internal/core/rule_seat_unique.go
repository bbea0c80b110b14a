package core

import (
	"cinemacore/pkg/domain"
	"context"
	"fmt"
)

// NewSeatUniqueRule rejects a second ticket for the same seat of a seance.
func NewSeatUniqueRule() domain.Rule {
	return seatUniqueRule{}
}

type seatUniqueRule struct{}

func (seatUniqueRule) Name() string { return "seat_unique" }

func (seatUniqueRule) Evaluate(_ context.Context, view domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	seen := make(map[int]struct{})
	for _, ticket := range changed[domain.Ticket](changes, domain.EntityTicket) {
		if _, dup := seen[ticket.ID]; dup {
			continue
		}
		seen[ticket.ID] = struct{}{}
		current, ok := view.FindTicket(ticket.ID)
		if !ok {
			continue
		}
		for other := range view.Tickets() {
			if other.ID == current.ID || other.SeanceID != current.SeanceID {
				continue
			}
			if other.Row == current.Row && other.Seat == current.Seat {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "seat_unique",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("row %d seat %d of seance %d is already sold", current.Row, current.Seat, current.SeanceID),
					Entity:   domain.EntityTicket,
					EntityID: current.ID,
					Err:      domain.ErrUniqueConstraint,
				})
				break
			}
		}
	}
	return res, nil
}
