package processor

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Category is a closed set of summary sections. Declaration order is both
// tie-break priority and display order.
type Category int

const (
	CategoryKeyGoals Category = iota
	CategoryFinancing
	CategoryServiceDelivery
	CategoryHumanResources
	CategoryPrevention
	CategoryDigital
	CategoryGovernance
	CategoryOther

	categoryCount
)

var categoryNames = [categoryCount]string{
	"key_goals",
	"financing",
	"service_delivery",
	"human_resources",
	"prevention",
	"digital",
	"governance",
	"other",
}

func (c Category) String() string {
	if c < 0 || c >= categoryCount {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Title is the display title of the category, e.g. "Service Delivery".
func (c Category) Title() string {
	return cases.Title(language.English).String(strings.ReplaceAll(c.String(), "_", " "))
}

func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for c := range categoryCount {
		if categoryNames[c] == name {
			return c, nil
		}
	}
	return CategoryOther, fmt.Errorf("unknown category %q", s)
}

//go:embed taxonomy.yaml
var defaultTaxonomyYAML []byte

// Taxonomy maps categories to keyword lists. Other never has keywords.
type Taxonomy struct {
	keywords [categoryCount][]string
	patterns [categoryCount]*regexp.Regexp
}

var DefaultTaxonomy = sync.OnceValue(func() *Taxonomy {
	t, err := newTaxonomy(nil, defaultTaxonomyYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy: %v", err))
	}
	return t
})

// LoadTaxonomy reads a YAML keyword file. Categories named in the file
// replace the default keyword lists; the rest keep their defaults.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy %s: %w", path, err)
	}

	t, err := newTaxonomy(DefaultTaxonomy(), data)
	if err != nil {
		return nil, fmt.Errorf("parsing taxonomy %s: %w", path, err)
	}
	return t, nil
}

func newTaxonomy(base *Taxonomy, data []byte) (*Taxonomy, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	t := &Taxonomy{}
	if base != nil {
		t.keywords = base.keywords
	}

	for name, keywords := range raw {
		c, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}
		if c == CategoryOther {
			return nil, fmt.Errorf("category %q cannot have keywords", name)
		}

		var cleaned []string
		for _, kw := range keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				cleaned = append(cleaned, kw)
			}
		}
		t.keywords[c] = cleaned
	}

	for c := range CategoryOther {
		t.patterns[c] = keywordPattern(t.keywords[c])
	}

	return t, nil
}

// keywordPattern compiles one case-insensitive alternation anchored at a
// word start. Longer keywords come first so overlapping phrases count once.
func keywordPattern(keywords []string) *regexp.Regexp {
	if len(keywords) == 0 {
		return nil
	}

	sorted := slices.Clone(keywords)
	slices.SortFunc(sorted, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})

	quoted := make([]string, len(sorted))
	for i, kw := range sorted {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)`)
}

// Keywords returns the keyword list of c.
func (t *Taxonomy) Keywords(c Category) []string {
	if c < 0 || c >= categoryCount {
		return nil
	}
	return slices.Clone(t.keywords[c])
}

// Categorize assigns the category with the most keyword hits. Ties go to
// the earlier category and zero hits yield Other.
func (t *Taxonomy) Categorize(sentence string) Category {
	best, bestScore := CategoryOther, 0

	for c := range CategoryOther {
		if t.patterns[c] == nil {
			continue
		}

		score := len(t.patterns[c].FindAllStringIndex(sentence, -1))
		if c == CategoryKeyGoals && score > 0 && isGoalLike(sentence) {
			score++
		}

		if score > bestScore {
			best, bestScore = c, score
		}
	}

	return best
}

// Categorize uses the default taxonomy.
func Categorize(sentence string) Category {
	return DefaultTaxonomy().Categorize(sentence)
}
