package features

import (
	"regexp"
	"sort"
	"strings"
)

// Canonical seniority levels in descending rank.
const (
	SeniorityCLevel   = "c_level"
	SeniorityVP       = "vp"
	SeniorityDirector = "director"
	SeniorityManager  = "manager"
	SenioritySenior   = "senior"
	SeniorityIC       = "individual_contributor"
	SeniorityUnknown  = "unknown"
)

// Canonical departments.
const (
	DeptEngineering = "engineering"
	DeptOperations  = "operations"
	DeptSales       = "sales"
	DeptMarketing   = "marketing"
	DeptFinance     = "finance"
	DeptProduct     = "product"
	DeptHR          = "hr"
	DeptLegal       = "legal"
	DeptExecutive   = "executive"
	DeptData        = "data"
	DeptUnknown     = "unknown"
)

// Seniority patterns are checked in rank order; the first match wins so that
// "VP of Engineering" resolves to vp, not to a later catch-all.
var seniorityPatterns = []struct {
	level string
	re    *regexp.Regexp
}{
	{SeniorityCLevel, regexp.MustCompile(`(?i)\b(ceo|cfo|coo|cto|cio|ciso|cmo|cpo|cro|chro|chief)\b`)},
	{SeniorityVP, regexp.MustCompile(`(?i)\b(vp|vice\s*president|svp|evp|avp)\b`)},
	{SeniorityDirector, regexp.MustCompile(`(?i)\b(director|head\s+of)\b`)},
	{SeniorityManager, regexp.MustCompile(`(?i)\b(manager|mgr|lead|supervisor)\b`)},
	{SenioritySenior, regexp.MustCompile(`(?i)\b(senior|sr\.?|staff|principal)\b`)},
}

// defaultDepartmentKeywords is the fixed fallback keyword table.  Workspace
// overrides take precedence over every entry here.
var defaultDepartmentKeywords = map[string]string{
	"engineer":       DeptEngineering,
	"engineering":    DeptEngineering,
	"developer":      DeptEngineering,
	"software":       DeptEngineering,
	"devops":         DeptEngineering,
	"infrastructure": DeptEngineering,
	"architect":      DeptEngineering,
	"technology":     DeptEngineering,
	"technical":      DeptEngineering,
	"it":             DeptEngineering,

	"operations": DeptOperations,
	"ops":        DeptOperations,
	"supply":     DeptOperations,
	"logistics":  DeptOperations,
	"facilities": DeptOperations,

	"sales":       DeptSales,
	"account":     DeptSales,
	"revenue":     DeptSales,
	"business":    DeptSales,
	"partnership": DeptSales,

	"marketing": DeptMarketing,
	"brand":     DeptMarketing,
	"growth":    DeptMarketing,
	"demand":    DeptMarketing,
	"content":   DeptMarketing,

	"finance":    DeptFinance,
	"financial":  DeptFinance,
	"accounting": DeptFinance,
	"controller": DeptFinance,
	"treasury":   DeptFinance,
	"procurement": DeptFinance,

	"product": DeptProduct,
	"ux":      DeptProduct,
	"design":  DeptProduct,

	"hr":     DeptHR,
	"people": DeptHR,
	"talent": DeptHR,
	"recruiting": DeptHR,

	"legal":      DeptLegal,
	"counsel":    DeptLegal,
	"compliance": DeptLegal,

	"ceo":       DeptExecutive,
	"coo":       DeptExecutive,
	"president": DeptExecutive,
	"founder":   DeptExecutive,
	"owner":     DeptExecutive,

	"data":      DeptData,
	"analytics": DeptData,
	"scientist": DeptData,
	"insights":  DeptData,
	"bi":        DeptData,
}

// TitleClassifier resolves free-text contact titles into (seniority,
// department) pairs.  Workspace-specific department keyword overrides take
// precedence over the fixed default table; longer override keywords are
// matched before shorter ones so "revenue operations" beats "revenue".
type TitleClassifier struct {
	overrides    map[string]string
	overrideKeys []string // sorted longest-first
}

// NewTitleClassifier builds a classifier with optional workspace overrides
// (keyword → department, keywords lowercase).  A nil map yields the default
// behavior.
func NewTitleClassifier(overrides map[string]string) *TitleClassifier {
	c := &TitleClassifier{overrides: make(map[string]string, len(overrides))}
	for k, v := range overrides {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		c.overrides[key] = v
		c.overrideKeys = append(c.overrideKeys, key)
	}
	sort.Slice(c.overrideKeys, func(i, j int) bool {
		return len(c.overrideKeys[i]) > len(c.overrideKeys[j])
	})
	return c
}

// Seniority classifies the title's seniority level.  Titles matching none of
// the ranked patterns with at least one word resolve to individual
// contributor; empty titles resolve to unknown.
func (c *TitleClassifier) Seniority(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return SeniorityUnknown
	}
	for _, p := range seniorityPatterns {
		if p.re.MatchString(t) {
			return p.level
		}
	}
	return SeniorityIC
}

// Department classifies the title's department.  Workspace overrides win over
// the default keyword table; within each table the first keyword contained in
// the lowercased title decides.
func (c *TitleClassifier) Department(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return DeptUnknown
	}

	for _, key := range c.overrideKeys {
		if strings.Contains(t, key) {
			return c.overrides[key]
		}
	}

	// Word-boundary match against the default table: split on non-word runs
	// so "accounting" does not fire the "account" keyword spuriously via a
	// substring check, while multi-word titles still resolve per word.
	for _, word := range splitTitleWords(t) {
		if dept, ok := defaultDepartmentKeywords[word]; ok {
			return dept
		}
	}
	return DeptUnknown
}

// Classify resolves both axes at once.
func (c *TitleClassifier) Classify(title string) (seniority, department string) {
	return c.Seniority(title), c.Department(title)
}

var titleWordSplitter = regexp.MustCompile(`[^a-z0-9]+`)

func splitTitleWords(lower string) []string {
	return titleWordSplitter.Split(lower, -1)
}

//Personal.AI order the ending
