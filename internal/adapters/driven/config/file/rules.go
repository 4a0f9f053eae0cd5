package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
)

// Ensure RuleStore implements the interface.
var _ driven.RuleStore = (*RuleStore)(nil)

// authorityFile is the on-disk shape of authority.yaml.
type authorityFile struct {
	Rules []domain.AuthorityRule `yaml:"rules"`
}

// RuleStore loads the authority and context rule tables from
// user-editable YAML files, falling back to the built-in tables.
//
// The store uses lazy initialisation: the rules directory and default
// files are only created on first access, not in the constructor.
type RuleStore struct {
	mu       sync.RWMutex
	ruleDir  string
	cache    map[string]any
	initOnce sync.Once
	initErr  error
}

// NewRuleStore creates a file-based rule store.
// If ruleDir is empty, defaults to rules/ in the Stryda home directory.
func NewRuleStore(ruleDir string) (*RuleStore, error) {
	if ruleDir == "" {
		home, err := HomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		ruleDir = filepath.Join(home, "rules")
	}

	return &RuleStore{
		ruleDir: ruleDir,
		cache:   make(map[string]any),
	}, nil
}

// AuthorityRules returns the authority table.
func (s *RuleStore) AuthorityRules() ([]domain.AuthorityRule, error) {
	v, err := s.load(driven.RulesAuthority, func(data []byte) (any, error) {
		var f authorityFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		for i, r := range f.Rules {
			if strings.TrimSpace(r.Pattern) == "" {
				return nil, fmt.Errorf("rule %d: empty pattern", i+1)
			}
		}
		return f.Rules, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.AuthorityRule(nil), v.([]domain.AuthorityRule)...), nil
}

// GateConfig returns the missing-context gate configuration.
func (s *RuleStore) GateConfig() (domain.GateConfig, error) {
	v, err := s.load(driven.RulesContext, func(data []byte) (any, error) {
		var cfg domain.GateConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	})
	if err != nil {
		return domain.GateConfig{}, err
	}
	return v.(domain.GateConfig), nil
}

// Reload clears the rule cache, forcing fresh loads from disk.
func (s *RuleStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]any)
	s.mu.Unlock()
}

// Dir returns the rules directory path.
func (s *RuleStore) Dir() string {
	return s.ruleDir
}

// load returns the cached table or parses it from disk. A missing file or
// an unusable directory yields the built-in table; a malformed file is an
// error wrapping ErrInvalidRule.
func (s *RuleStore) load(name string, parse func([]byte) (any, error)) (any, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	if v, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	var v any
	data, err := os.ReadFile(s.path(name))
	switch {
	case err == nil:
		v, err = parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidRule, s.path(name), err)
		}
	case errors.Is(err, os.ErrNotExist) || s.initErr != nil:
		v = defaultRules(name)
	default:
		return nil, fmt.Errorf("read rules %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		v = cached
	} else {
		s.cache[name] = v
	}
	s.mu.Unlock()
	return v, nil
}

func (s *RuleStore) path(name string) string {
	return filepath.Join(s.ruleDir, name+".yaml")
}

// initialise creates the rules directory and writes default files that do
// not exist yet. Called once via sync.Once on first access.
func (s *RuleStore) initialise() {
	if err := os.MkdirAll(s.ruleDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create rules directory: %w", err)
		return
	}

	for _, name := range []string{driven.RulesAuthority, driven.RulesContext} {
		path := s.path(name)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		var doc any = defaultRules(name)
		if name == driven.RulesAuthority {
			doc = authorityFile{Rules: domain.DefaultAuthorityRules()}
		}
		data, err := yaml.Marshal(doc)
		if err != nil {
			s.initErr = fmt.Errorf("encode default rules %q: %w", name, err)
			return
		}
		if err := os.WriteFile(path, append([]byte(ruleHeaders[name]), data...), 0600); err != nil {
			s.initErr = fmt.Errorf("create default rules %q: %w", name, err)
			return
		}
	}
}

func defaultRules(name string) any {
	switch name {
	case driven.RulesAuthority:
		return domain.DefaultAuthorityRules()
	default:
		return domain.DefaultGateConfig()
	}
}

var ruleHeaders = map[string]string{
	driven.RulesAuthority: `# Source authority weights. Patterns match source names case-insensitively
# as substrings; the highest matching weight wins. Unmatched sources get 10.
`,
	driven.RulesContext: `# Missing-context gate. gated_intents require complete context; each
# requirement's trigger selects it and every field pattern must match the query.
`,
}
