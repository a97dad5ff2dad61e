package task

import (
	"regexp"
	"strconv"
	"strings"
)

// ClauseKind discriminates the filter clause variants.
type ClauseKind int

// Clause variants. A filter clause is one atomic predicate: a free-text
// phrase, a tag requirement, a tag exclusion, a project requirement, or
// an exact-id lookup.
const (
	KindText ClauseKind = iota
	KindTag
	KindNotTag
	KindProject
	KindID
)

// Clause is one atomic predicate within a filter expression.
// Value holds the text phrase, tag name, or project name; ID is set
// only for KindID clauses.
type Clause struct {
	Kind  ClauseKind
	Value string
	ID    int64
}

// Filter is an ordered, AND-combined sequence of clauses parsed from a
// command's trailing arguments. The zero value matches every task.
type Filter struct {
	Clauses []Clause
}

// Sentinel prefixes of the filter grammar.
const (
	tagPrefix     = "+"
	notTagPrefix  = "-"
	projectPrefix = "pro:"
)

// bareIntPattern matches a token that is a single (optionally signed)
// integer. The id production applies only when the entire expression is
// one such token, so "do 5" is an id lookup while "do 5 things" is a
// text filter.
var bareIntPattern = regexp.MustCompile(`^-?\d+$`)

// ParseFilter converts a raw expression string into a structured
// filter. It is total: any input is representable. Tokens that carry a
// sentinel prefix but no name degrade to text rather than erroring,
// since descriptions may legitimately contain those characters.
//
// Consecutive text tokens are merged into a single phrase clause joined
// by single spaces, so "buy milk" matches as phrase containment rather
// than a per-word conjunction.
func ParseFilter(raw string) Filter {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return Filter{}
	}

	// The bare-integer production requires the whole expression to be
	// the single integer.
	if len(tokens) == 1 && bareIntPattern.MatchString(tokens[0]) {
		id, err := strconv.ParseInt(tokens[0], 10, 64)
		if err == nil {
			return Filter{Clauses: []Clause{{Kind: KindID, Value: tokens[0], ID: id}}}
		}
	}

	var clauses []Clause

	var phrase []string

	flushPhrase := func() {
		if len(phrase) == 0 {
			return
		}

		clauses = append(clauses, Clause{Kind: KindText, Value: strings.Join(phrase, " ")})
		phrase = nil
	}

	for _, token := range tokens {
		clause, ok := classifyToken(token)
		if !ok {
			phrase = append(phrase, token)

			continue
		}

		flushPhrase()

		clauses = append(clauses, clause)
	}

	flushPhrase()

	return Filter{Clauses: clauses}
}

// classifyToken classifies a single token by its sentinel prefix.
// It returns false when the token is plain text: either it carries no
// sentinel, or the sentinel has an empty remainder.
func classifyToken(token string) (Clause, bool) {
	if name, ok := strings.CutPrefix(token, projectPrefix); ok && name != "" {
		return Clause{Kind: KindProject, Value: name}, true
	}

	if name, ok := strings.CutPrefix(token, tagPrefix); ok && name != "" {
		return Clause{Kind: KindTag, Value: name}, true
	}

	if name, ok := strings.CutPrefix(token, notTagPrefix); ok && name != "" {
		return Clause{Kind: KindNotTag, Value: name}, true
	}

	return Clause{}, false
}

// IDLookup reports whether the filter is the single bare-integer form
// and, if so, the id to look up.
func (f Filter) IDLookup() (int64, bool) {
	if len(f.Clauses) == 1 && f.Clauses[0].Kind == KindID {
		return f.Clauses[0].ID, true
	}

	return 0, false
}

// IsEmpty reports whether the filter has no clauses. An empty filter
// matches every task in scope.
func (f Filter) IsEmpty() bool {
	return len(f.Clauses) == 0
}

// Matches evaluates the filter against a candidate task. A task matches
// iff every clause is individually satisfied. Pure predicate, no side
// effects.
func (f Filter) Matches(t *Task) bool {
	for _, clause := range f.Clauses {
		if !clause.matches(t) {
			return false
		}
	}

	return true
}

func (c Clause) matches(t *Task) bool {
	switch c.Kind {
	case KindText:
		// Text matching is case-insensitive substring containment.
		return strings.Contains(strings.ToLower(t.Description), strings.ToLower(c.Value))
	case KindTag:
		return t.HasTag(c.Value)
	case KindNotTag:
		return !t.HasTag(c.Value)
	case KindProject:
		return t.HasProject(c.Value)
	case KindID:
		return t.ID == c.ID
	default:
		return false
	}
}
