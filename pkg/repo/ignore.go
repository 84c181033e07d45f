package repo

import (
	"bufio"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// IgnoreFile lists patterns excluded from snapshots, one per line, using
// gitignore syntax (negation with !, trailing / for directories, ** globs).
const IgnoreFile = ".treestoreignore"

// IgnoreChecker determines if a path should be left out of a snapshot.
type IgnoreChecker struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	anchored bool // pattern contains a slash, so match against full path
	regex    *regexp.Regexp
}

// metadataDirs are ignored at any depth regardless of .treestoreignore.
var metadataDirs = []string{DirName, ".git"}

// NewIgnoreChecker creates an IgnoreChecker for the working tree fs with the
// patterns from .treestoreignore at the root, if present.
func NewIgnoreChecker(fs billy.Filesystem) *IgnoreChecker {
	ic := &IgnoreChecker{}

	f, err := fs.Open(IgnoreFile)
	if err != nil {
		return ic
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if p, ok := parseIgnoreLine(scanner.Text()); ok {
			ic.patterns = append(ic.patterns, p)
		}
	}
	return ic
}

func parseIgnoreLine(line string) (ignorePattern, bool) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return ignorePattern{}, false
	}

	var p ignorePattern
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	// A leading slash anchors the pattern to the root.
	p.anchored = strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return ignorePattern{}, false
	}
	p.anchored = p.anchored || strings.Contains(line, "/")
	p.pattern = line
	if strings.Contains(line, "**") {
		if re, err := regexp.Compile(globToRegex(line)); err == nil {
			p.regex = re
		}
	}
	return p, true
}

// IsIgnored checks whether a slash-separated path relative to the working
// tree root should be ignored. isDir tells dir-only patterns whether they
// apply. The last matching pattern wins, so negations can re-include paths.
// Metadata directories cannot be re-included.
func (ic *IgnoreChecker) IsIgnored(rel string, isDir bool) bool {
	if isDir && slices.Contains(metadataDirs, path.Base(rel)) {
		return true
	}
	ignored := false
	for _, p := range ic.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		target := rel
		if !p.anchored {
			target = path.Base(rel)
		}
		if p.match(target) {
			ignored = !p.negated
		}
	}
	return ignored
}

func (p ignorePattern) match(target string) bool {
	if p.regex != nil {
		return p.regex.MatchString(target)
	}
	matched, _ := path.Match(p.pattern, target)
	return matched
}

func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*' && strings.HasPrefix(pattern[i:], "**/"):
			// Zero or more leading directories.
			b.WriteString("(?:.*/)?")
			i += 2
		case ch == '*' && strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(".*")
			i++
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	b.WriteString("$")
	return b.String()
}
