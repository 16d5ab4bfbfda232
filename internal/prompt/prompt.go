// Package prompt assembles the instruction text sent to the agent CLI.
package prompt

import (
	"fmt"
	"strings"
)

// Level is the ambition dial for a generated experiment.
type Level int

const (
	// LevelSimpleTest asks for a minimal proof-of-concept.
	LevelSimpleTest Level = iota
	// LevelMVP asks for core features only.
	LevelMVP
	// LevelFullScenario asks for a complete implementation with a user story.
	LevelFullScenario
)

// ParseLevel converts a config string into a Level. Unknown values are an
// error, never a default.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "simple_test":
		return LevelSimpleTest, nil
	case "mvp":
		return LevelMVP, nil
	case "full_scenario":
		return LevelFullScenario, nil
	default:
		return 0, fmt.Errorf("unknown implementation level %q (valid: simple_test, mvp, full_scenario)", s)
	}
}

// String returns the config spelling of the level.
func (l Level) String() string {
	switch l {
	case LevelSimpleTest:
		return "simple_test"
	case LevelMVP:
		return "mvp"
	case LevelFullScenario:
		return "full_scenario"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// baseRequirements is appended to every prompt. The agent must always leave
// behind a README.md and an executable run.sh.
const baseRequirements = `
Requirements:
1. Create a README.md explaining the project
2. Create a run.sh script to start the project (make it executable)
3. Include all needed code files
4. Make sure the project is self-contained and can run with bash run.sh`

// Build returns the full prompt for an idea at the given level. The idea
// text is interpolated verbatim; any string is accepted.
func Build(idea string, level Level) string {
	var b strings.Builder
	switch level {
	case LevelSimpleTest:
		fmt.Fprintf(&b, "Create a simple proof-of-concept for: %s\n\n", idea)
		b.WriteString(`Focus on:
- Minimal working implementation
- Basic functionality demonstration
- Simple command-line interface
- No external dependencies if possible
- Clear code comments explaining the approach
`)
	case LevelMVP:
		fmt.Fprintf(&b, "Create an MVP (Minimum Viable Product) for: %s\n\n", idea)
		b.WriteString(`Focus on:
- Core essential features only
- Clean, well-structured code
- Basic error handling
- Simple but functional UI (CLI or web)
- Minimal dependencies
- Clear documentation of features
`)
	case LevelFullScenario:
		fmt.Fprintf(&b, "Create a complete implementation for: %s\n\n", idea)
		b.WriteString(`Focus on:
- Full user scenario with multiple use cases
- Well-thought-out UI/UX (even if CLI-based)
- Proper error handling and edge cases
- Configuration options
- Help documentation
- Example usage scenarios

User Story:
1. User discovers the tool and reads README
2. User runs the tool for the first time
3. User explores main features
4. User customizes settings (if applicable)
5. User achieves their goal with the tool
`)
	}
	b.WriteString(baseRequirements)
	return b.String()
}

// retryHints nudge the agent toward the level-appropriate fix.
var retryHints = map[Level]string{
	LevelSimpleTest:   "Keep it extremely simple - just make it work!",
	LevelMVP:          "Focus on getting the core functionality working.",
	LevelFullScenario: "Ensure all components work together properly.",
}

// Retry returns the prompt for a second attempt, carrying the previous
// failure's error text as context.
func Retry(errContext, idea string, level Level) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Previous attempt failed with error: %s\n\n", errContext)
	fmt.Fprintf(&b, "Please fix the issue and create a working %s.\n\n", idea)
	b.WriteString(retryHints[level])
	b.WriteString(`

Make sure to:
1. Create a README.md explaining the project
2. Create a run.sh script to start the project
3. Include all needed code files
4. Test that run.sh actually works`)
	return b.String()
}
