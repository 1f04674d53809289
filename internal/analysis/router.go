package analysis

import "github.com/ahrav/go-gaucho/internal/domain"

// Route selects the destination log for an outcome. Only a parsed outcome
// naming a known category by its exact key leaves the catch-all.
func Route(o Outcome) domain.Category {
	p, ok := o.(Parsed)
	if !ok {
		return domain.CatchAll
	}
	return domain.MatchCategory(p.Category)
}
