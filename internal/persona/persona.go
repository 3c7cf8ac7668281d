// Package persona manages the role-specialized agent collections consumed by
// the analysis pipeline. Personas are plain JSON files; the pipeline treats
// them as read-only.
package persona

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Agent is one role-specialized analysis step specification.
type Agent struct {
	Role        string `json:"role"`
	Perspective string `json:"perspective,omitempty"`
	Prompt      string `json:"prompt"`
}

// Persona is an ordered agent collection.
type Persona struct {
	Name   string  `json:"name"`
	Agents []Agent `json:"agents"`
}

// Info pairs a persona name with its active flag for listings.
type Info struct {
	Name   string
	Active bool
}

const defaultName = "general"

// defaultPersona is written on first run so an analysis works out of the box.
var defaultPersona = Persona{
	Name: "General Analysis",
	Agents: []Agent{
		{Role: "Rationalist", Prompt: "Analyze the query from a purely logical and rational perspective."},
		{Role: "Skeptic", Prompt: "Question the assumptions and premises of the query."},
		{Role: "Historian", Prompt: "Provide historical context and precedent for the query."},
		{Role: "Futurist", Prompt: "Extrapolate the long-term implications of the query."},
		{Role: "Artist", Prompt: "Explore the creative and aesthetic dimensions of the query."},
		{Role: "Economist", Prompt: "Analyze the financial and economic factors related to the query."},
		{Role: "Technologist", Prompt: "Examine the technological aspects and feasibility of the query."},
		{Role: "Ethicist", Prompt: "Consider the moral and ethical implications of the query."},
		{Role: "Strategist", Prompt: "Formulate a strategic approach to the query."},
		{Role: "Storyteller", Prompt: "Weave a narrative around the query to make it more compelling."},
		{Role: "Synthesizer", Prompt: "Combine the insights from all other agents into a coherent whole."},
		{Role: "Critic", Prompt: "Provide a critical review of the synthesis, pointing out weaknesses."},
	},
}

// Store holds personas under dir/personas with the active choice in
// dir/config.json.
type Store struct {
	dir string
}

// NewStore returns a persona store rooted at the sphere config dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) personasDir() string {
	return filepath.Join(s.dir, "personas")
}

func (s *Store) statePath() string {
	return filepath.Join(s.dir, "config.json")
}

type state struct {
	ActivePersona string `json:"active_persona"`
}

// Init ensures the personas directory, default persona, and active marker
// exist. Safe to call repeatedly.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.personasDir(), 0o755); err != nil {
		return fmt.Errorf("creating personas dir: %w", err)
	}

	defaultPath := filepath.Join(s.personasDir(), defaultName+".json")
	if _, err := os.Stat(defaultPath); os.IsNotExist(err) {
		if err := writeJSON(defaultPath, defaultPersona); err != nil {
			return fmt.Errorf("writing default persona: %w", err)
		}
	}

	if _, err := os.Stat(s.statePath()); os.IsNotExist(err) {
		if err := writeJSON(s.statePath(), state{ActivePersona: defaultName}); err != nil {
			return fmt.Errorf("writing persona state: %w", err)
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ActiveName returns the configured active persona name.
func (s *Store) ActiveName() string {
	data, err := os.ReadFile(s.statePath())
	if err != nil {
		return defaultName
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil || st.ActivePersona == "" {
		return defaultName
	}
	return st.ActivePersona
}

// List returns all personas with the active one flagged.
func (s *Store) List() ([]Info, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.personasDir())
	if err != nil {
		return nil, err
	}

	active := s.ActiveName()
	var infos []Info
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		infos = append(infos, Info{Name: name, Active: name == active})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Use sets the active persona.
func (s *Store) Use(name string) error {
	if err := s.Init(); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(s.personasDir(), name+".json")); err != nil {
		return fmt.Errorf("persona %q not found", name)
	}
	return writeJSON(s.statePath(), state{ActivePersona: name})
}

// Load reads a persona by name.
func (s *Store) Load(name string) (*Persona, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.personasDir(), name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("persona %q not found", name)
		}
		return nil, err
	}

	var p Persona
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing persona %s: %w", name, err)
	}
	return &p, nil
}

// Active returns the active persona, falling back to the built-in default
// when its file has gone missing.
func (s *Store) Active() *Persona {
	p, err := s.Load(s.ActiveName())
	if err != nil {
		fallback := defaultPersona
		return &fallback
	}
	return p
}
