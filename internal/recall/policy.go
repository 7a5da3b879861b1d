// ABOUTME: Retrieval policy: which canonical sources each intent may read
// ABOUTME: Built-in defaults, optionally overridden by a small YAML file
package recall

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Canonical source names an intent allowlist can reference.
const (
	SourceDecisions    = "decisions"
	SourceInbox        = "inbox"
	SourceUploadNotes  = "upload_notes"
	SourceProjectState = "project_state"
	SourceProjectMap   = "project_map"
	SourceWorkingDoc   = "working_doc"
)

var knownSources = map[string]bool{
	SourceDecisions:    true,
	SourceInbox:        true,
	SourceUploadNotes:  true,
	SourceProjectState: true,
	SourceProjectMap:   true,
	SourceWorkingDoc:   true,
}

// Policy bounds retrieval: per-intent source allowlists plus budgets.
type Policy struct {
	// Budget is the global character budget for one BuildSnippets call.
	Budget int `yaml:"budget"`
	// LogTail is how many trailing log lines are considered per log source.
	LogTail int `yaml:"log_tail"`
	// KeepPerSource is the top-N chunks or lines kept per source.
	KeepPerSource int `yaml:"keep_per_source"`
	// Intents maps an intent name to its ordered source allowlist.
	Intents map[string][]string `yaml:"intents"`
}

// DefaultPolicy returns the built-in allowlists. The plan and execute
// intents exclude upload_notes so ingestion trivia does not bias
// planning; status keeps only the decision-and-question surfaces.
func DefaultPolicy() Policy {
	return Policy{
		Budget:        6000,
		LogTail:       200,
		KeepPerSource: 3,
		Intents: map[string][]string{
			"recall":  {SourceDecisions, SourceInbox, SourceUploadNotes, SourceProjectState, SourceProjectMap, SourceWorkingDoc},
			"plan":    {SourceDecisions, SourceInbox, SourceProjectState, SourceProjectMap, SourceWorkingDoc},
			"execute": {SourceDecisions, SourceProjectState, SourceWorkingDoc},
			"status":  {SourceDecisions, SourceInbox, SourceProjectState},
		},
	}
}

// LoadPolicy reads a YAML override file and merges it over the defaults.
// Only the fields present in the file replace their defaults; an intent
// listed in the file replaces that intent's allowlist wholesale.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	var override Policy
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}

	if override.Budget > 0 {
		p.Budget = override.Budget
	}
	if override.LogTail > 0 {
		p.LogTail = override.LogTail
	}
	if override.KeepPerSource > 0 {
		p.KeepPerSource = override.KeepPerSource
	}
	for intent, sources := range override.Intents {
		for _, s := range sources {
			if !knownSources[s] {
				return Policy{}, fmt.Errorf("policy intent %q references unknown source %q", intent, s)
			}
		}
		p.Intents[intent] = sources
	}
	return p, nil
}

// Allowlist returns the ordered sources permitted for intent.
func (p Policy) Allowlist(intent string) ([]string, error) {
	sources, ok := p.Intents[intent]
	if !ok {
		return nil, fmt.Errorf("unknown intent %q", intent)
	}
	return sources, nil
}
