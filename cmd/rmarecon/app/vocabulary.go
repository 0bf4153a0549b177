package app

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/fields"
	"github.com/agentstation/rmarecon/pkg/reconcile"
	"github.com/agentstation/rmarecon/pkg/table"
)

// Vocabulary overrides the words the pipeline matches on. Every section is
// optional; whatever is left out keeps its built-in default.
//
//	header_keywords: [採購, Order]
//	rules:
//	  closure:
//	    sa_triggers: [顧客領回]
//	    gsx_exclusions: [已由系統關閉, Closed]
//	columns:
//	  gsx:
//	    ticket_status:
//	      - equals: [維修狀態]
//	      - contains: [Status]
type Vocabulary struct {
	HeaderKeywords []string `yaml:"header_keywords"`
	Rules          struct {
		Closure *reconcile.Rule `yaml:"closure"`
		Pickup  *reconcile.Rule `yaml:"pickup"`
	} `yaml:"rules"`
	Columns struct {
		GSX fields.CandidateTable `yaml:"gsx"`
		SA  fields.CandidateTable `yaml:"sa"`
	} `yaml:"columns"`
}

// LoadVocabulary reads a vocabulary YAML file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return ParseVocabulary(path, data)
}

// ParseVocabulary decodes a vocabulary document. Unknown keys are rejected
// so that a misspelled section does not silently fall back to defaults.
func ParseVocabulary(name string, data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.UnmarshalWithOptions(data, &v, yaml.Strict()); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	for role := range v.Columns.GSX {
		if err := validateRole(role); err != nil {
			return nil, err
		}
	}
	for role := range v.Columns.SA {
		if err := validateRole(role); err != nil {
			return nil, err
		}
	}
	return &v, nil
}

func validateRole(role fields.Role) error {
	for _, r := range fields.Roles() {
		if r == role {
			return nil
		}
	}
	return errors.NewValidationError("columns", string(role), "unknown column role")
}

// ReconcileOptions returns engine options for the overrides in config and
// vocabulary. Vocabulary entries win over config entries.
func ReconcileOptions(config *Config, vocab *Vocabulary) []reconcile.Option {
	var opts []reconcile.Option
	if config != nil {
		if config.ClosureRule != nil {
			opts = append(opts, reconcile.WithClosureRule(*config.ClosureRule))
		}
		if config.PickupRule != nil {
			opts = append(opts, reconcile.WithPickupRule(*config.PickupRule))
		}
	}
	if vocab == nil {
		return opts
	}
	if vocab.Rules.Closure != nil {
		rule := mergeRule(reconcile.ClosureRule(), *vocab.Rules.Closure)
		opts = append(opts, reconcile.WithClosureRule(rule))
	}
	if vocab.Rules.Pickup != nil {
		rule := mergeRule(reconcile.PickupRule(), *vocab.Rules.Pickup)
		opts = append(opts, reconcile.WithPickupRule(rule))
	}
	if len(vocab.Columns.GSX) > 0 {
		opts = append(opts, reconcile.WithGSXCandidates(vocab.Columns.GSX))
	}
	if len(vocab.Columns.SA) > 0 {
		opts = append(opts, reconcile.WithSACandidates(vocab.Columns.SA))
	}
	return opts
}

// TableOptions returns extractor options for the header keywords in config
// and vocabulary. Vocabulary keywords win over config keywords.
func TableOptions(config *Config, vocab *Vocabulary) []table.Option {
	keywords := []string(nil)
	if config != nil && len(config.HeaderKeywords) > 0 {
		keywords = config.HeaderKeywords
	}
	if vocab != nil && len(vocab.HeaderKeywords) > 0 {
		keywords = vocab.HeaderKeywords
	}
	if keywords == nil {
		return nil
	}
	return []table.Option{table.WithHeaderKeywords(keywords...)}
}

func mergeRule(base, override reconcile.Rule) reconcile.Rule {
	if override.Name != "" {
		base.Name = override.Name
	}
	if override.SATriggers != nil {
		base.SATriggers = override.SATriggers
	}
	if override.GSXExclusions != nil {
		base.GSXExclusions = override.GSXExclusions
	}
	return base
}
