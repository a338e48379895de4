package core

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ModInfoFile is the descriptor every mod ships in its root folder
const ModInfoFile = "mod_info.json"

// UnknownVersion is returned when no version can be recovered
const UnknownVersion = "unknown"

// mod_info.json is hand-edited JSON-ish text: '#' comments, trailing commas,
// single quotes and bare tokens are all common. Strict parsing rejects most
// real files, so values are recovered with targeted patterns instead.

// token matches a double-quoted, single-quoted or bare value
const token = `(?:"([^"\n]*)"|'([^'\n]*)'|([A-Za-z0-9_.+\-]+))`

// keyPrefix anchors a key so "version" does not match inside "gameVersion"
const keyPrefix = `(?:^|[^A-Za-z0-9_])["']?`

var (
	versionObjectPattern = regexp.MustCompile(keyPrefix + `version["']?\s*:\s*\{([^{}]*)\}`)
	versionFlatPattern   = regexp.MustCompile(keyPrefix + `version["']?\s*:\s*` + token)
	idPattern            = regexp.MustCompile(keyPrefix + `id["']?\s*:\s*` + token)

	componentPatterns = []*regexp.Regexp{
		regexp.MustCompile(keyPrefix + `major["']?\s*:\s*` + token),
		regexp.MustCompile(keyPrefix + `minor["']?\s*:\s*` + token),
		regexp.MustCompile(keyPrefix + `patch["']?\s*:\s*` + token),
	}
)

// ModInfo holds what could be recovered from a mod_info.json
type ModInfo struct {
	ID      string // Empty if absent
	Version string // UnknownVersion if absent
}

// ParseModInfo recovers the id and version from descriptor text
func ParseModInfo(text string) ModInfo {
	return ModInfo{
		ID:      ExtractID(text),
		Version: ExtractVersion(text),
	}
}

// ReadModInfo reads and parses the mod_info.json inside modDir
func ReadModInfo(modDir string) (*ModInfo, error) {
	data, err := os.ReadFile(filepath.Join(modDir, ModInfoFile))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ModInfoFile, err)
	}
	info := ParseModInfo(string(data))
	return &info, nil
}

// ExtractVersion returns the mod version from descriptor text.
// A {major, minor, patch} object is joined with dots, skipping absent parts;
// otherwise a plain "version" value is used. Returns UnknownVersion if neither
// is present. Never fails.
func ExtractVersion(text string) string {
	text = StripComments(text)

	if m := versionObjectPattern.FindStringSubmatch(text); m != nil {
		var parts []string
		for _, p := range componentPatterns {
			if v := firstToken(p.FindStringSubmatch(m[1])); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ".")
		}
		return UnknownVersion
	}

	if v := firstToken(versionFlatPattern.FindStringSubmatch(text)); v != "" {
		return v
	}

	return UnknownVersion
}

// ExtractID returns the mod id from descriptor text, or "" if absent
func ExtractID(text string) string {
	return firstToken(idPattern.FindStringSubmatch(StripComments(text)))
}

// StripComments removes '#' comments, whole-line or trailing, ignoring
// '#' characters inside quoted strings.
func StripComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	return strings.Join(lines, "\n")
}

func stripLineComment(line string) string {
	var quote rune
	escaped := false
	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != 0:
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '#':
			return line[:i]
		}
	}
	return line
}

// firstToken returns the first non-empty capture of a token match
func firstToken(m []string) string {
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g = strings.TrimSpace(g); g != "" {
			return g
		}
	}
	return ""
}
