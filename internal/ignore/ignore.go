// Package ignore parses gitignore-style files and matches paths against
// them during project discovery.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Parser reads and parses gitignore-style files.
type Parser struct {
	fs afero.Fs

	// IgnoreFiles is the list of ignore file names to look for.
	IgnoreFiles []string

	// FallbackPatterns are returned when no ignore files are found.
	FallbackPatterns []string
}

// NewParser creates an ignore file parser reading from fs.
func NewParser(fs afero.Fs, ignoreFiles, fallbackPatterns []string) *Parser {
	return &Parser{
		fs:               fs,
		IgnoreFiles:      ignoreFiles,
		FallbackPatterns: fallbackPatterns,
	}
}

// ParseRoot reads all ignore files from root and returns the combined
// patterns. If no ignore file exists, the fallback patterns are returned.
func (p *Parser) ParseRoot(root string) ([]string, error) {
	var patterns []string
	foundAny := false

	for _, ignoreFile := range p.IgnoreFiles {
		filePatterns, err := p.parseFile(filepath.Join(root, ignoreFile))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		patterns = append(patterns, filePatterns...)
		foundAny = true
	}

	if !foundAny {
		return p.FallbackPatterns, nil
	}
	return deduplicate(patterns), nil
}

// Matcher parses the ignore files under root and returns a Matcher.
func (p *Parser) Matcher(root string) (*Matcher, error) {
	patterns, err := p.ParseRoot(root)
	if err != nil {
		return nil, err
	}
	return NewMatcher(patterns), nil
}

// parseFile reads a single gitignore-style file and returns patterns.
func (p *Parser) parseFile(path string) ([]string, error) {
	file, err := p.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if pattern := parseLine(scanner.Text()); pattern != "" {
			patterns = append(patterns, pattern)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// parseLine parses a single line from a gitignore file.
// Returns empty string for comments and blank lines.
func parseLine(line string) string {
	line = strings.TrimRight(line, " \t")

	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}

	// Negation is not supported
	if strings.HasPrefix(line, "!") {
		return ""
	}

	return toGlobPattern(line)
}

// toGlobPattern converts a gitignore pattern to a doublestar pattern.
func toGlobPattern(pattern string) string {
	// Leading slash anchors to the root
	pattern = strings.TrimPrefix(pattern, "/")

	if strings.HasSuffix(pattern, "/") {
		pattern = pattern + "**"
	}

	// No slash: matches at any depth
	if !strings.Contains(pattern, "/") {
		pattern = "**/" + pattern
	}

	// Bare names without an extension are treated as directories
	if !strings.HasSuffix(pattern, "/**") && !strings.HasSuffix(pattern, "/*") && !strings.Contains(pattern, ".") && !strings.Contains(pattern, "*.") {
		pattern = pattern + "/**"
	}

	return pattern
}

// deduplicate removes duplicate patterns while preserving order.
func deduplicate(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}
	return result
}

// Matcher reports whether slash-separated relative paths are ignored.
type Matcher struct {
	patterns []string
}

// NewMatcher returns a Matcher for the valid patterns among patterns.
func NewMatcher(patterns []string) *Matcher {
	valid := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if doublestar.ValidatePattern(p) {
			valid = append(valid, p)
		}
	}
	return &Matcher{patterns: valid}
}

// Patterns returns the patterns in use.
func (m *Matcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

// Match reports whether rel is ignored. For directories, a pattern that
// ignores everything below the directory ignores the directory itself.
func (m *Matcher) Match(rel string, isDir bool) bool {
	if m == nil || rel == "" || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if isDir && strings.HasSuffix(p, "/**") {
			if ok, _ := doublestar.Match(strings.TrimSuffix(p, "/**"), rel); ok {
				return true
			}
		}
	}
	return false
}
