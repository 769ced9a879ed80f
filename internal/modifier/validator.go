// Package modifier checks a customer's option choices against the modifier
// groups of a catalog item.
package modifier

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/fjod/food_cart/internal/domain"
	"github.com/fjod/food_cart/internal/pricing"
)

// Violation is a group whose selection count falls outside its allowed range.
type Violation struct {
	GroupID   string
	GroupName string
	Min       int
	Max       int
	Selected  int
}

func (v Violation) Message() string {
	if v.Min == v.Max {
		return fmt.Sprintf("%s requires exactly %d selection(s)", v.GroupName, v.Min)
	}
	return fmt.Sprintf("%s allows between %d and %d selection(s)", v.GroupName, v.Min, v.Max)
}

// Selection is the normalized outcome of evaluating option ids against an item.
type Selection struct {
	OptionIDs     []string
	Modifiers     []domain.SelectedModifier
	ModifierTotal float64
	Violations    []Violation
}

// Issues renders the violations as customer-facing text.
func (s Selection) Issues() []string {
	issues := make([]string, 0, len(s.Violations))
	for _, v := range s.Violations {
		issues = append(issues, v.Message())
	}
	return issues
}

type resolvedOption struct {
	groupIdx int
	optIdx   int
}

// Strict evaluates a selection for a write path. Unknown or inactive options
// and group range violations are errors.
func Strict(item *domain.CatalogItem, optionIDs []string) (Selection, error) {
	sel, unknown := evaluate(item, optionIDs)
	if len(unknown) > 0 {
		return Selection{}, domain.NewError(domain.CodeInvalidModifierSelection, http.StatusBadRequest,
			"option %q is not available for %s", unknown[0], item.Name)
	}
	if len(sel.Violations) > 0 {
		return Selection{}, domain.NewError(domain.CodeModifierRuleViolation, http.StatusBadRequest,
			"%s", sel.Violations[0].Message())
	}
	return sel, nil
}

// Lenient evaluates a selection for display. Unknown or inactive options are
// dropped and violations are reported on the result instead of failing.
func Lenient(item *domain.CatalogItem, optionIDs []string) Selection {
	sel, _ := evaluate(item, optionIDs)
	return sel
}

// Normalize deduplicates option ids (exact match) and sorts them.
func Normalize(optionIDs []string) []string {
	seen := make(map[string]struct{}, len(optionIDs))
	out := make([]string, 0, len(optionIDs))
	for _, id := range optionIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func evaluate(item *domain.CatalogItem, optionIDs []string) (Selection, []string) {
	index := make(map[string]resolvedOption)
	for gi, group := range item.ModifierGroups {
		for oi, opt := range group.Options {
			if !opt.IsActive {
				continue
			}
			if _, dup := index[opt.ID]; !dup {
				index[opt.ID] = resolvedOption{groupIdx: gi, optIdx: oi}
			}
		}
	}

	var unknown []string
	chosen := make(map[string]struct{})
	kept := make([]string, 0, len(optionIDs))
	for _, id := range Normalize(optionIDs) {
		if _, ok := index[id]; !ok {
			unknown = append(unknown, id)
			continue
		}
		chosen[id] = struct{}{}
		kept = append(kept, id)
	}

	sel := Selection{OptionIDs: kept, Modifiers: []domain.SelectedModifier{}}
	deltas := make([]float64, 0, len(kept))
	for gi, group := range item.ModifierGroups {
		count := 0
		for oi, opt := range group.Options {
			if _, ok := chosen[opt.ID]; !ok {
				continue
			}
			// an id shared by several options counts once, for the first active one
			if ref := index[opt.ID]; ref.groupIdx != gi || ref.optIdx != oi {
				continue
			}
			count++
			deltas = append(deltas, opt.PriceDelta)
			sel.Modifiers = append(sel.Modifiers, domain.SelectedModifier{
				GroupID:    group.ID,
				GroupName:  group.Name,
				OptionID:   opt.ID,
				OptionName: opt.Name,
				PriceDelta: opt.PriceDelta,
			})
		}
		minSel := group.EffectiveMin()
		if count < minSel || count > group.MaxSelect {
			sel.Violations = append(sel.Violations, Violation{
				GroupID:   group.ID,
				GroupName: group.Name,
				Min:       minSel,
				Max:       group.MaxSelect,
				Selected:  count,
			})
		}
	}
	sel.ModifierTotal = pricing.Sum(deltas...)
	return sel, unknown
}
