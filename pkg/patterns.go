package pkg

import (
	"regexp"
	"time"
)

// Rule recognizes one filename convention and pulls the capture date-time
// out of it.
type Rule interface {
	// Name identifies the rule in logs.
	Name() string
	// Attempt returns the date-time token encoded in filename, or ok=false
	// when the filename does not have the rule's shape.
	Attempt(filename string) (token string, ok bool)
}

// RegexRule is a Rule driven by a regular expression. Build receives the
// submatches of a successful match (index 0 is the whole match).
type RegexRule struct {
	RuleName string
	Pattern  *regexp.Regexp
	Build    func(groups []string) (string, bool)
}

func (r *RegexRule) Name() string { return r.RuleName }

func (r *RegexRule) Attempt(filename string) (string, bool) {
	groups := r.Pattern.FindStringSubmatch(filename)
	if groups == nil {
		return "", false
	}
	token, ok := r.Build(groups)
	if !ok || !IsToken(token) {
		return "", false
	}
	return token, true
}

// NewRegexRule compiles pattern into a rule. It panics on an invalid
// pattern, like regexp.MustCompile.
func NewRegexRule(name, pattern string, build func(groups []string) (string, bool)) *RegexRule {
	return &RegexRule{RuleName: name, Pattern: regexp.MustCompile(pattern), Build: build}
}

// dateTimeGroups joins a date group and a time group into a token.
func dateTimeGroups(groups []string) (string, bool) {
	return groups[1] + "_" + groups[2], true
}

func epochGroup(loc *time.Location) func(groups []string) (string, bool) {
	return func(groups []string) (string, bool) {
		token, err := NormalizeEpochMillis(groups[1], loc)
		return token, err == nil
	}
}

// DefaultRules returns the built-in conventions in priority order. Epoch
// based conventions are resolved in loc.
func DefaultRules(loc *time.Location) []Rule {
	return []Rule{
		// DJI_20240628_194800_964.jpg
		NewRegexRule("dji", `^DJI_(\d{8})_(\d{6})_`, dateTimeGroups),
		// IMG_20240803_132555.jpg, VID_20240724_191943.mp4
		NewRegexRule("phone", `^(?:IMG|VID)_(\d{8})_(\d{6})`, dateTimeGroups),
		// wx_camera_1722700184971.jpg
		NewRegexRule("wx_camera", `^wx_camera_(\d+)`, epochGroup(loc)),
		// mmexport1722689229161.jpg
		NewRegexRule("mmexport", `^mmexport(\d+)`, epochGroup(loc)),
		// 20231005080622_0057.mp4
		NewRegexRule("dashcam", `^(\d{8})(\d{6})_\d+\.\w+$`, dateTimeGroups),
		// Screenshot_2023-12-07-10-30-56-752_com.app.jpg
		NewRegexRule("screenshot", `^Screenshot_(\d{4})-(\d{2})-(\d{2})-(\d{2})-(\d{2})-(\d{2})`,
			func(g []string) (string, bool) {
				return g[1] + g[2] + g[3] + "_" + g[4] + g[5] + g[6], true
			}),
	}
}

// PatternMatcher tries its rules in order; the first rule that matches wins.
type PatternMatcher struct {
	rules []Rule
}

// NewPatternMatcher returns a matcher over DefaultRules(loc).
func NewPatternMatcher(loc *time.Location) *PatternMatcher {
	return &PatternMatcher{rules: DefaultRules(loc)}
}

// NewPatternMatcherWithRules returns a matcher over exactly the given rules.
func NewPatternMatcherWithRules(rules ...Rule) *PatternMatcher {
	return &PatternMatcher{rules: append([]Rule(nil), rules...)}
}

// Append adds rules after the existing ones.
func (m *PatternMatcher) Append(rules ...Rule) {
	m.rules = append(m.rules, rules...)
}

// Rules returns the rules in priority order.
func (m *PatternMatcher) Rules() []Rule {
	return append([]Rule(nil), m.rules...)
}

// Match returns the token encoded in a bare filename together with the
// name of the rule that produced it. ok is false when no rule matches.
func (m *PatternMatcher) Match(filename string) (token, rule string, ok bool) {
	for _, r := range m.rules {
		if token, ok := r.Attempt(filename); ok {
			return token, r.Name(), true
		}
	}
	return "", "", false
}
