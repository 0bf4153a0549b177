package reconcile

import (
	"strings"

	"github.com/agentstation/rmarecon/pkg/errors"
)

// Rule flags a matched pair when the SA status contains any trigger and the
// GSX status contains none of the exclusions. Matching is case-sensitive
// substring containment on trimmed statuses.
type Rule struct {
	Name          string   `yaml:"name" json:"name"`
	SATriggers    []string `yaml:"sa_triggers" json:"sa_triggers" mapstructure:"sa_triggers"`
	GSXExclusions []string `yaml:"gsx_exclusions" json:"gsx_exclusions" mapstructure:"gsx_exclusions"`
}

// ClosureRule returns rule A: the customer has collected the device but the
// manufacturer ticket was never closed.
func ClosureRule() Rule {
	return Rule{
		Name:          "closure",
		SATriggers:    []string{"顧客領回", "Customer Picked Up"},
		GSXExclusions: []string{"已由系統關閉", "Closed"},
	}
}

// PickupRule returns rule B: the device is ready at the store but the
// manufacturer ticket is not in a pickup state. Only the system-closed
// phrase counts as closed here; the English "Closed" does not.
func PickupRule() Rule {
	return Rule{
		Name:          "pickup",
		SATriggers:    []string{"抵達門市", "工程師完成", "寄送到門市"},
		GSXExclusions: []string{"待取件", "Pickup", "已由系統關閉"},
	}
}

// Fires reports whether the rule flags the given status pair.
func (r Rule) Fires(saStatus, gsxStatus string) bool {
	return containsAny(saStatus, r.SATriggers) && !containsAny(gsxStatus, r.GSXExclusions)
}

func (r Rule) validate(field string) error {
	for _, t := range r.SATriggers {
		if strings.TrimSpace(t) != "" {
			return nil
		}
	}
	return &errors.ValidationError{
		Field:   field,
		Value:   r.SATriggers,
		Message: "rule needs at least one non-empty SA trigger",
	}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(s, t) {
			return true
		}
	}
	return false
}
