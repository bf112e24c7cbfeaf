package igor

import (
	"fmt"
	"strings"
)

// markerKind classifies one discovered placeholder marker line.
type markerKind int

const (
	markerLine markerKind = iota
	markerBegin
	markerEnd
)

type markerLineInfo struct {
	kind markerKind
	id   string
	line int
}

// parseMarkerLine recognizes the three literal substrings from
// spec.md §4.C/§6 on a single line. Surrounding text (comment syntax
// etc.) is ignored — the engine matches the substring, not the whole
// line, so "// ==== PLACEHOLDER foo ====" also matches.
func parseMarkerLine(line string) (markerLineInfo, bool) {
	if id, ok := extractMarker(line, "==== PLACEHOLDER ", " ===="); ok {
		return markerLineInfo{kind: markerLine, id: id}, true
	}
	if id, ok := extractMarker(line, "==== BEGIN ", " ===="); ok {
		return markerLineInfo{kind: markerBegin, id: id}, true
	}
	if id, ok := extractMarker(line, "==== END ", " ===="); ok {
		return markerLineInfo{kind: markerEnd, id: id}, true
	}
	return markerLineInfo{}, false
}

func extractMarker(line, prefix, suffix string) (string, bool) {
	start := strings.Index(line, prefix)
	if start < 0 {
		return "", false
	}
	rest := line[start+len(prefix):]
	end := strings.Index(rest, suffix)
	if end < 0 {
		return "", false
	}
	id := rest[:end]
	if !IsIdentifier(id) {
		return "", false
	}
	return id, true
}

// splitLines splits content on "\n" while remembering which lines ended
// in "\r\n" so Splice can reconstruct the original line endings.
func splitLines(content string) (lines []string, crlf []bool) {
	raw := strings.Split(content, "\n")
	lines = make([]string, len(raw))
	crlf = make([]bool, len(raw))
	for i, l := range raw {
		if strings.HasSuffix(l, "\r") {
			lines[i] = strings.TrimSuffix(l, "\r")
			crlf[i] = true
		} else {
			lines[i] = l
		}
	}
	return lines, crlf
}

func joinLines(lines []string, crlf []bool) string {
	var b strings.Builder
	for i, l := range lines {
		b.WriteString(l)
		if crlf[i] {
			b.WriteString("\r\n")
		} else if i != len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// site is one discovered placeholder occurrence (line or block) for a
// given id.
type site struct {
	kind     markerKind // markerLine or markerBegin (never markerEnd alone)
	lineIdx  int        // index of the PLACEHOLDER or BEGIN line
	endIdx   int        // index of the END line, for block sites
	hasBody  bool       // markerLine only: a previously-spliced body line follows
	bodyIdx  int        // markerLine only: index of that body line
}

// findSites scans lines for every occurrence of placeholder id,
// matching PLACEHOLDER lines and BEGIN/END block pairs per spec.md
// §4.C. Returns KindUnbalancedPlaceholder if a BEGIN has no matching
// END before EOF or before another BEGIN with the same id; per spec.md
// §7 this degrades to a per-action warning at the executor layer rather
// than failing the niche.
//
// For a line-kind placeholder, the single line immediately following its
// marker (when that line is not itself a recognized marker) is recorded
// as a candidate prior body. Splice replaces it only when it already
// equals the single-line body being spliced, so re-splicing the same body
// does not append another copy (spec.md §8 P4); any other following line,
// including an earlier, different body, is left in place.
func findSites(lines []string, id string) ([]site, error) {
	var sites []site
	i := 0
	for i < len(lines) {
		info, ok := parseMarkerLine(lines[i])
		if !ok || info.id != id {
			i++
			continue
		}
		switch info.kind {
		case markerLine:
			s := site{kind: markerLine, lineIdx: i}
			if i+1 < len(lines) {
				if _, isMarker := parseMarkerLine(lines[i+1]); !isMarker {
					s.hasBody = true
					s.bodyIdx = i + 1
				}
			}
			sites = append(sites, s)
			if s.hasBody {
				i = s.bodyIdx + 1
			} else {
				i++
			}
		case markerBegin:
			end := -1
			for j := i + 1; j < len(lines); j++ {
				if jinfo, jok := parseMarkerLine(lines[j]); jok && jinfo.id == id {
					if jinfo.kind == markerEnd {
						end = j
					}
					break
				}
			}
			if end < 0 {
				return nil, newErr(KindUnbalancedPlaceholder, "", fmt.Sprintf("BEGIN %s has no matching END", id), nil)
			}
			sites = append(sites, site{kind: markerBegin, lineIdx: i, endIdx: end})
			i = end + 1
		case markerEnd:
			return nil, newErr(KindUnbalancedPlaceholder, "", fmt.Sprintf("END %s with no matching BEGIN", id), nil)
		}
	}
	return sites, nil
}

// Splice replaces every occurrence of placeholder id in content with
// body, preserving the placeholder marker(s) themselves (spec.md §4.C
// invariant I4). Returns the modified content and whether any site was
// found. Line endings (\n vs \r\n) are preserved per-line.
func Splice(content, id, body string) (string, bool, error) {
	lines, crlf := splitLines(content)
	sites, err := findSites(lines, id)
	if err != nil {
		return content, false, err
	}
	if len(sites) == 0 {
		return content, false, nil
	}

	bodyLines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	bodyCRLF := make([]bool, len(bodyLines))
	// New body lines inherit the file's dominant line ending: use the
	// marker line's own ending so a CRLF file stays CRLF after splice.

	var outLines []string
	var outCRLF []bool
	cursor := 0
	for _, s := range sites {
		outLines = append(outLines, lines[cursor:s.lineIdx]...)
		outCRLF = append(outCRLF, crlf[cursor:s.lineIdx]...)

		markerEnding := crlf[s.lineIdx]
		for i := range bodyCRLF {
			bodyCRLF[i] = markerEnding
		}

		switch s.kind {
		case markerLine:
			// The line after the marker is a prior splice's body only when it
			// already holds this exact single-line body; any other line is kept.
			owned := s.hasBody && len(bodyLines) == 1 && lines[s.bodyIdx] == bodyLines[0]
			if len(bodyLines) == 1 {
				outLines = append(outLines, lines[s.lineIdx])
				outCRLF = append(outCRLF, crlf[s.lineIdx])
				outLines = append(outLines, bodyLines[0])
				outCRLF = append(outCRLF, markerEnding)
			} else {
				id := mustMarkerID(lines[s.lineIdx])
				outLines = append(outLines, "==== BEGIN "+id+" ====")
				outCRLF = append(outCRLF, markerEnding)
				outLines = append(outLines, bodyLines...)
				outCRLF = append(outCRLF, bodyCRLF...)
				outLines = append(outLines, "==== END "+id+" ====")
				outCRLF = append(outCRLF, markerEnding)
			}
			if owned {
				cursor = s.bodyIdx + 1
			} else {
				cursor = s.lineIdx + 1
			}
		case markerBegin:
			outLines = append(outLines, lines[s.lineIdx])
			outCRLF = append(outCRLF, crlf[s.lineIdx])
			outLines = append(outLines, bodyLines...)
			outCRLF = append(outCRLF, bodyCRLF...)
			outLines = append(outLines, lines[s.endIdx])
			outCRLF = append(outCRLF, crlf[s.endIdx])
			cursor = s.endIdx + 1
		}
	}
	outLines = append(outLines, lines[cursor:]...)
	outCRLF = append(outCRLF, crlf[cursor:]...)

	return joinLines(outLines, outCRLF), true, nil
}

func mustMarkerID(line string) string {
	info, _ := parseMarkerLine(line)
	return info.id
}

// HasPlaceholder reports whether content contains at least one site for
// placeholder id, without performing a splice. The executor does not call
// it; it relies on the found flag Splice returns instead.
func HasPlaceholder(content, id string) (bool, error) {
	lines, _ := splitLines(content)
	sites, err := findSites(lines, id)
	if err != nil {
		return false, err
	}
	return len(sites) > 0, nil
}
