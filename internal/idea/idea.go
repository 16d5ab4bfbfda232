// Package idea supplies experiment idea text for the orchestrator.
// Ideas are plain strings; the curated lists are the only "database".
package idea

import (
	"fmt"
	"math/rand"
	"sort"
)

// Mode selects how the next idea is produced.
type Mode int

const (
	// ModeRandom draws uniformly from the curated idea list.
	ModeRandom Mode = iota
	// ModeStructured pairs a curated idea with a framework context.
	ModeStructured
	// ModeAI returns a placeholder prompt meant to be expanded by an AI
	// call. Idea generation via the agent itself is not implemented.
	ModeAI
	// ModeStructuredAI returns a placeholder seeded with a random
	// generation direction. Also a stub, see ModeAI.
	ModeStructuredAI
)

// ParseMode converts a config string into a Mode. Unknown values are an
// error rather than a silent fallback.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "random":
		return ModeRandom, nil
	case "structured":
		return ModeStructured, nil
	case "ai":
		return ModeAI, nil
	case "structured_ai":
		return ModeStructuredAI, nil
	default:
		return 0, fmt.Errorf("unknown idea mode %q (valid: random, structured, ai, structured_ai)", s)
	}
}

// String returns the config spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeRandom:
		return "random"
	case ModeStructured:
		return "structured"
	case ModeAI:
		return "ai"
	case ModeStructuredAI:
		return "structured_ai"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// curatedIdeas is the flat pool used by ModeRandom.
var curatedIdeas = []string{
	// Developer tools
	"Git commit message generator using AI",
	"Code snippet organizer with tags",
	"Terminal dashboard for system monitoring",
	"Markdown preview server with hot reload",
	"Project scaffolding generator",

	// Data processing
	"CSV to JSON/YAML converter with schemas",
	"Log file analyzer with pattern detection",
	"Data pipeline orchestrator",
	"File deduplication tool",

	// Games
	"Conway's Game of Life with patterns",
	"ASCII art generator from images",
	"Terminal-based music player",
	"Code golf challenge runner",

	// Web
	"Personal link shortener",
	"Pastebin clone with syntax highlighting",
	"Real-time collaborative notepad",
	"Static site generator from markdown",

	// ML
	"Text sentiment analyzer",
	"Image color palette extractor",
	"Simple recommendation engine",
	"Spam classifier for emails",

	// Automation
	"Desktop notifier for various events",
	"Batch file renamer with patterns",
	"Screenshot organizer by content",
	"Automated backup tool",

	// Visualization
	"GitHub contribution graph generator",
	"Network traffic visualizer",
	"Folder size treemap generator",
	"CPU/Memory usage plotter",

	// APIs
	"Weather API aggregator",
	"Currency converter with caching",
	"URL health checker service",
	"RSS feed aggregator with filters",
}

// structuredIdeas groups ideas by the framework they should be built with.
var structuredIdeas = map[string][]string{
	"Python + FastAPI": {
		"REST API for todo management with SQLite",
		"File upload service with virus scanning",
		"URL shortener with analytics",
		"Simple authentication service",
		"Rate limiter middleware",
	},
	"Python + Click": {
		"Database migration tool",
		"Project template generator",
		"File organizer by type/date",
		"Bulk image resizer",
		"Git repository analyzer",
	},
	"Python + Streamlit": {
		"Data explorer for CSV files",
		"Image filter playground",
		"Text analysis dashboard",
		"Stock price tracker",
		"Personal finance dashboard",
	},
	"JavaScript + Node": {
		"Markdown blog engine",
		"WebSocket chat server",
		"File sharing service",
		"API mock server",
		"Task scheduler service",
	},
	"Python + SQLAlchemy": {
		"Contact management system",
		"Inventory tracker",
		"Habit tracking app",
		"Simple CRM backend",
		"Event logging system",
	},
}

// aiDirections seed the structured_ai placeholder.
var aiDirections = []string{
	"Create a tool that helps developers be more productive",
	"Build something that processes or transforms data",
	"Design a utility for organizing digital content",
	"Develop a visualization tool for complex information",
	"Create an automation tool for repetitive tasks",
	"Build a learning tool or educational game",
	"Design a communication or collaboration tool",
	"Create a monitoring or analytics tool",
	"Build a creative tool for content generation",
	"Develop a security or privacy tool",
}

// aiPlaceholder stands in for an AI-generated idea until idea generation
// through the agent is wired up.
const aiPlaceholder = "Generate a creative programming experiment idea"

// Source produces idea strings for a fixed mode.
type Source struct {
	mode Mode
	rng  *rand.Rand
}

// NewSource returns a Source for the given mode. The rng is injected so
// tests can make draws deterministic.
func NewSource(mode Mode, rng *rand.Rand) *Source {
	return &Source{mode: mode, rng: rng}
}

// Next returns one idea string. It is total: every mode always yields text.
func (s *Source) Next() string {
	switch s.mode {
	case ModeRandom:
		return curatedIdeas[s.rng.Intn(len(curatedIdeas))]
	case ModeStructured:
		framework := s.frameworks()[s.rng.Intn(len(structuredIdeas))]
		pool := structuredIdeas[framework]
		return fmt.Sprintf("%s (using %s)", pool[s.rng.Intn(len(pool))], framework)
	case ModeAI:
		return aiPlaceholder
	case ModeStructuredAI:
		return fmt.Sprintf("Generate an idea to: %s", aiDirections[s.rng.Intn(len(aiDirections))])
	default:
		// Unreachable when constructed through ParseMode.
		return aiPlaceholder
	}
}

// frameworks returns the framework keys in a stable order so seeded draws
// are reproducible across runs.
func (s *Source) frameworks() []string {
	keys := make([]string, 0, len(structuredIdeas))
	for k := range structuredIdeas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
