package domain

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"testing"
)

func TestResultMergeAndBlocking(t *testing.T) {
	var result Result
	result.Merge(Result{Violations: []Violation{{Rule: "warn", Severity: SeverityWarn}}})
	if result.HasBlocking() {
		t.Fatalf("expected no blocking violations")
	}
	result.Merge(Result{Violations: []Violation{{Rule: "block", Severity: SeverityBlock, Message: "dup", Err: ErrUniqueConstraint}}})
	if !result.HasBlocking() {
		t.Fatalf("expected blocking violation")
	}
	err := RuleViolationError{Result: result}
	if !strings.Contains(err.Error(), "dup") {
		t.Fatalf("expected blocking message in %q", err.Error())
	}
	if !errors.Is(err, ErrUniqueConstraint) {
		t.Fatalf("expected rule violation to unwrap to ErrUniqueConstraint")
	}
	if errors.Is(err, ErrSchedulingConflict) {
		t.Fatalf("unexpected scheduling conflict classification")
	}
}

func TestResultMergeEmptyInput(t *testing.T) {
	original := Result{Violations: []Violation{{Rule: "existing", Severity: SeverityWarn}}}
	original.Merge(Result{})
	if len(original.Violations) != 1 || original.Violations[0].Rule != "existing" {
		t.Fatalf("expected original violations to remain, got %+v", original.Violations)
	}
}

func TestRuleViolationErrorWithoutBlocking(t *testing.T) {
	err := RuleViolationError{}
	if err.Error() != "transaction blocked by rules" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if len(err.Unwrap()) != 0 {
		t.Fatalf("expected no wrapped errors")
	}
}

func TestRulesEngineEvaluate(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(staticRule{"warn"})
	res, err := engine.Evaluate(context.Background(), emptyView{}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 1 {
		t.Fatalf("expected violation")
	}
	if got := engine.Rules(); len(got) != 1 || got[0].Name() != "warn" {
		t.Fatalf("unexpected rules %+v", got)
	}
}

type staticRule struct{ name string }

func (r staticRule) Name() string { return r.name }

func (r staticRule) Evaluate(context.Context, TransactionView, []Change) (Result, error) {
	return Result{Violations: []Violation{{Rule: r.name, Severity: SeverityWarn}}}, nil
}

type emptyView struct{}

func (emptyView) Films() iter.Seq[Film]         { return func(func(Film) bool) {} }
func (emptyView) Seances() iter.Seq[Seance]     { return func(func(Seance) bool) {} }
func (emptyView) Tickets() iter.Seq[Ticket]     { return func(func(Ticket) bool) {} }
func (emptyView) Users() iter.Seq[User]         { return func(func(User) bool) {} }
func (emptyView) FindFilm(int) (Film, bool)     { return Film{}, false }
func (emptyView) FindSeance(int) (Seance, bool) { return Seance{}, false }
func (emptyView) FindTicket(int) (Ticket, bool) { return Ticket{}, false }
func (emptyView) FindUser(int) (User, bool)     { return User{}, false }

func TestRulesEngineEvaluateError(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(errorRule{})
	if _, err := engine.Evaluate(context.Background(), emptyView{}, nil); err == nil {
		t.Fatalf("expected evaluation error")
	}
}

type errorRule struct{}

func (errorRule) Name() string { return "error" }

func (errorRule) Evaluate(context.Context, TransactionView, []Change) (Result, error) {
	return Result{}, fmt.Errorf("boom")
}
