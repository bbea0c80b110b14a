package core

import "cinemacore/pkg/domain"

type (
	// Rule aliases domain.Rule.
	Rule = domain.Rule
	// RulesEngine aliases domain.RulesEngine.
	RulesEngine = domain.RulesEngine
)

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in integrity rules.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewFilmNameUniqueRule())
	engine.Register(NewLoginUniqueRule())
	engine.Register(NewSeatUniqueRule())
	return engine
}

// changed returns the post-change records of kind entity touched by creates and updates.
func changed[R any](changes []Change, entity EntityType) []R {
	var out []R
	for _, ch := range changes {
		if ch.Entity != entity || ch.Action == ActionDelete {
			continue
		}
		if r, ok := ch.After.(R); ok {
			out = append(out, r)
		}
	}
	return out
}
