package igor

import (
	"fmt"
	"strings"
)

// Function classifies a parsed filename per spec.md §4.A.
type Function int

const (
	FuncOption Function = iota
	FuncExample
	FuncOverwrite
	FuncFragment
	FuncIgnore
	FuncConfig
)

func (f Function) String() string {
	switch f {
	case FuncOption:
		return "option"
	case FuncExample:
		return "example"
	case FuncOverwrite:
		return "overwrite"
	case FuncFragment:
		return "fragment"
	case FuncIgnore:
		return "ignore"
	case FuncConfig:
		return "config"
	default:
		return "unknown"
	}
}

// functionTokens maps the literal infix token to its Function, in the
// order spec.md §4.A.4 lists them.
var functionTokens = map[string]Function{
	"option":    FuncOption,
	"example":   FuncExample,
	"overwrite": FuncOverwrite,
	"fragment":  FuncFragment,
	"ignore":    FuncIgnore,
	"config":    FuncConfig,
}

// priority orders actions for the same target path within one niche,
// per spec.md §4.F: Option < Example < Overwrite < Fragment. Ignore and
// Config never reach the sort (Ignore is consumed into the suppression
// set, Config is consumed by the invar resolver).
func (f Function) priority() int {
	switch f {
	case FuncOption:
		return 0
	case FuncExample:
		return 1
	case FuncOverwrite:
		return 2
	case FuncFragment:
		return 3
	default:
		return 4
	}
}

// ParsedName is the decoded form of a thundercloud/invar filename.
type ParsedName struct {
	Base        string // unescaped basename, no extension logic applied beyond dot_/x_
	Function    Function
	Feature     string
	Placeholder string // only meaningful for FuncFragment; "" otherwise
	Ext         string // extension(s) kept with Base for output, e.g. "rs" or "toml"
	Plain       bool   // true if the file had no "+INFIX" at all (Option, feature "@")
}

// unescapeBase applies the dot_/x_ escape rules exactly once, per
// spec.md §4.A.3.
func unescapeBase(base string) string {
	if strings.HasPrefix(base, "dot_") {
		return "." + strings.TrimPrefix(base, "dot_")
	}
	if strings.HasPrefix(base, "x_") {
		return strings.TrimPrefix(base, "x_")
	}
	return base
}

// escapeBase is the inverse of unescapeBase, used by canonical
// re-encoding (spec.md §8 P1). Bases starting with "." are escaped with
// "dot_"; bases that would otherwise collide with a literal "dot_"/"x_"
// prefix are escaped with "x_" so round-tripping is unambiguous.
func escapeBase(base string) string {
	switch {
	case strings.HasPrefix(base, "."):
		return "dot_" + strings.TrimPrefix(base, ".")
	case strings.HasPrefix(base, "dot_"), strings.HasPrefix(base, "x_"):
		return "x_" + base
	default:
		return base
	}
}

// ParseName decodes a thundercloud/invar filename per spec.md §4.A.
// Files with no "+" followed by a known function token are plain files:
// Function=Option, Feature="@", Plain=true.
func ParseName(raw string) (ParsedName, error) {
	splitAt, ok := findFunctionSplit(raw)
	if !ok {
		base, ext := splitExt(raw)
		unescaped := unescapeBase(base)
		if unescaped != "" && !IsIdentifier(trimLeadingDot(unescaped)) {
			// Plain files are not required to be identifiers (they are
			// literal paths), so no validation here beyond escaping.
		}
		return ParsedName{Base: unescaped, Function: FuncOption, Feature: alwaysOnFeature, Ext: ext, Plain: true}, nil
	}

	base := raw[:splitAt]
	infix := raw[splitAt+1:]

	fnToken, rest, ext := splitInfix(infix)
	fn, known := functionTokens[fnToken]
	if !known {
		return ParsedName{}, newErr(KindBadName, raw, fmt.Sprintf("unknown function token %q", fnToken), nil)
	}

	unescaped := unescapeBase(base)

	pn := ParsedName{Base: unescaped, Function: fn, Ext: ext}

	switch fn {
	case FuncConfig:
		// Config infix carries only a feature segment: config-FEATURE.
		feature := strings.TrimPrefix(rest, "-")
		if feature == "" || !IsIdentifier(feature) {
			return ParsedName{}, newErr(KindBadName, raw, "bad feature in config name", nil)
		}
		pn.Feature = feature
		return pn, nil
	case FuncIgnore:
		feature := strings.TrimPrefix(rest, "-")
		if feature == "" || !IsIdentifier(feature) {
			return ParsedName{}, newErr(KindBadName, raw, "bad feature in ignore name", nil)
		}
		pn.Feature = feature
		return pn, nil
	default:
		if rest == "" {
			// "+option.ext" with no feature segment: treat as always-on.
			pn.Feature = alwaysOnFeature
			if fn == FuncFragment {
				pn.Placeholder = alwaysOnFeature
			}
			return pn, nil
		}
		segs := strings.SplitN(strings.TrimPrefix(rest, "-"), "-", 2)
		feature := segs[0]
		if !IsIdentifier(feature) {
			return ParsedName{}, newErr(KindBadName, raw, "bad feature segment", nil)
		}
		pn.Feature = feature
		if fn == FuncFragment {
			if len(segs) == 2 && segs[1] != "" {
				if !IsIdentifier(segs[1]) {
					return ParsedName{}, newErr(KindBadName, raw, "bad placeholder segment", nil)
				}
				pn.Placeholder = segs[1]
			} else {
				pn.Placeholder = feature
			}
		}
		return pn, nil
	}
}

// findFunctionSplit finds the first "+" in raw that is followed by a
// known function token (spec.md §4.A.1). Returns false if no such "+"
// exists, in which case the file is plain.
func findFunctionSplit(raw string) (int, bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '+' {
			continue
		}
		rest := raw[i+1:]
		for token := range functionTokens {
			if strings.HasPrefix(rest, token) {
				// The token must be followed by end-of-string, '-', or '.'
				after := rest[len(token):]
				if after == "" || after[0] == '-' || after[0] == '.' {
					return i, true
				}
			}
		}
	}
	return 0, false
}

// splitInfix splits "FUNCTION(-FEATURE(-PLACEHOLDER)?)?(.EXT)?" into the
// function token, the "-FEATURE..." remainder (without extension), and
// the extension: everything after the first ".", so a config file's
// "ext.toml" is kept whole here (ConfigSiblingExt, used by TargetPath,
// strips the wrapper "toml").
func splitInfix(infix string) (token, rest, ext string) {
	dot := strings.Index(infix, ".")
	head := infix
	if dot >= 0 {
		head = infix[:dot]
		ext = infix[dot+1:]
	}
	for t := range functionTokens {
		if head == t || strings.HasPrefix(head, t+"-") {
			return t, strings.TrimPrefix(head, t), ext
		}
	}
	return head, "", ext
}

// splitExt splits a plain filename into base and extension on the first
// '.' that is not a leading dot (so ".bashrc" has no extension under
// this split; dot_-escaped names are split after unescaping by callers
// that need the final target, not here).
func splitExt(name string) (base, ext string) {
	idx := strings.Index(name, ".")
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}

func trimLeadingDot(s string) string {
	return strings.TrimPrefix(s, ".")
}

// TargetPath computes the emitted/target path for this parsed name,
// before any `target` template override or interpolation is applied.
// For FuncConfig the target is the sibling file's path (spec.md §4.A.7):
// "BASENAME.EXT" or "BASENAME" if the config name carried no inner ext.
func (pn ParsedName) TargetPath() string {
	if pn.Function == FuncConfig {
		if siblingExt := pn.ConfigSiblingExt(); siblingExt != "" {
			return pn.Base + "." + siblingExt
		}
		return pn.Base
	}
	if pn.Ext == "" {
		return pn.Base
	}
	return pn.Base + "." + pn.Ext
}

// ConfigSiblingExt returns the extension of the file a +config-* name
// configures. "base+config-f.ext.toml" configures "base.ext" (sibling
// ext "ext"); "base+config-f.toml" configures "base" (no sibling ext,
// since pn.Ext there is only the wrapper "toml").
func (pn ParsedName) ConfigSiblingExt() string {
	if pn.Function != FuncConfig {
		return ""
	}
	dot := strings.LastIndex(pn.Ext, ".")
	if dot < 0 {
		// pn.Ext is just "toml" (the wrapper) — no sibling ext.
		return ""
	}
	return pn.Ext[:dot]
}

// Canonical re-encodes pn back into a filename, for property P1
// (round-trip modulo escape normalization).
func (pn ParsedName) Canonical() string {
	var b strings.Builder
	b.WriteString(escapeBase(pn.Base))
	if pn.Plain {
		if pn.Ext != "" {
			b.WriteByte('.')
			b.WriteString(pn.Ext)
		}
		return b.String()
	}
	b.WriteByte('+')
	b.WriteString(pn.Function.String())
	if pn.Feature != "" && pn.Feature != alwaysOnFeature {
		b.WriteByte('-')
		b.WriteString(pn.Feature)
		if pn.Function == FuncFragment && pn.Placeholder != "" && pn.Placeholder != pn.Feature {
			b.WriteByte('-')
			b.WriteString(pn.Placeholder)
		}
	}
	if pn.Ext != "" {
		b.WriteByte('.')
		b.WriteString(pn.Ext)
	}
	return b.String()
}
