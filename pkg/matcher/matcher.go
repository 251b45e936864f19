/*
Package matcher builds a single combined pattern out of a list of configuration
codes and reports which code fired for every occurrence in a chunk of text.

A code is considered used when it appears immediately followed by ".Name",
the member access the audited code base uses to read a setting:

	m, err := matcher.Build([]string{"foo", "bar"})
	if err != nil {
		return err
	}
	for _, occ := range m.FindAll([]byte("x = foo.Name;")) {
		fmt.Println(occ.Code, occ.Start, occ.End)
	}

Alternatives are tried left to right in the order the codes were given, and
the first alternative that matches at a position wins.
*/
package matcher

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ajdepersio/ConfigUsageReport/pkg/usage"
)

// MemberSuffix is the literal that must follow a code for it to count as a usage.
const MemberSuffix = ".Name"

// ErrNoCodes is returned when Build is given an empty code list
var ErrNoCodes = errors.New("no configuration codes to match")

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Occurrence is one match of the combined pattern
type Occurrence struct {
	Code  string
	Start int
	End   int
}

// Matcher is the compiled alternation of every code's sub-pattern.
// It is immutable after Build and safe for concurrent use.
type Matcher struct {
	re    *regexp.Regexp
	codes []string
	// byText maps the code part of a matched span back to its code
	byText map[string]string
}

// Build compiles the combined pattern, one named group per code in input order.
func Build(codes []string) (*Matcher, error) {
	if len(codes) == 0 {
		return nil, ErrNoCodes
	}

	seen := make(map[string]struct{}, len(codes))
	alternatives := make([]string, 0, len(codes))
	for _, code := range codes {
		if err := validate(code); err != nil {
			return nil, err
		}
		if _, dup := seen[code]; dup {
			return nil, &usage.InvalidCodeError{Code: code, Reason: "duplicate code"}
		}
		seen[code] = struct{}{}

		alternatives = append(alternatives,
			fmt.Sprintf("(?P<%s>%s)", code, regexp.QuoteMeta(code+MemberSuffix)))
	}

	re, err := regexp.Compile(strings.Join(alternatives, "|"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile combined pattern: %w", err)
	}

	byText := make(map[string]string, len(codes))
	for _, code := range codes {
		byText[code] = code
	}

	return &Matcher{
		re:     re,
		codes:  append([]string(nil), codes...),
		byText: byText,
	}, nil
}

func validate(code string) error {
	if code == "" {
		return &usage.InvalidCodeError{Code: code, Reason: "empty code"}
	}
	if !identifier.MatchString(code) {
		return &usage.InvalidCodeError{Code: code, Reason: "not a valid identifier"}
	}
	return nil
}

// FindAll returns every non-overlapping occurrence in content, in text order.
// Every alternative is a distinct literal, so the matched text names its code.
func (m *Matcher) FindAll(content []byte) []Occurrence {
	locs := m.re.FindAllIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}

	occurrences := make([]Occurrence, 0, len(locs))
	for _, loc := range locs {
		code, ok := m.byText[string(content[loc[0]:loc[1]-len(MemberSuffix)])]
		if !ok {
			continue
		}
		occurrences = append(occurrences, Occurrence{
			Code:  code,
			Start: loc[0],
			End:   loc[1],
		})
	}
	return occurrences
}

// Match returns the distinct codes found in content, in first-seen order.
func (m *Matcher) Match(content []byte) []string {
	occurrences := m.FindAll(content)
	if len(occurrences) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(occurrences))
	var found []string
	for _, occ := range occurrences {
		if _, ok := seen[occ.Code]; ok {
			continue
		}
		seen[occ.Code] = struct{}{}
		found = append(found, occ.Code)
	}
	return found
}

// Codes returns the codes in resolution order.
func (m *Matcher) Codes() []string {
	return append([]string(nil), m.codes...)
}

// Pattern returns the combined regular expression source.
func (m *Matcher) Pattern() string {
	return m.re.String()
}
