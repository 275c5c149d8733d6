// Package enrich fills in repository details that upstream sources did not provide.
//
// Everything here is best-effort presentation data. Synthetic breakdowns are
// plausible, not measured, and the gateway marks them with
// Repository.LanguagesSynthetic.
package enrich

import "github.com/augustcaio/portfolio-gateway/pkg/types"

// Weights assigned to the primary language and its companions.
const (
	PrimaryWeight   = 70
	CompanionWeight = 20
	TrailingWeight  = 10
)

// Func produces a language breakdown for a repository whose real breakdown
// is unavailable. It must never return nil.
type Func func(primary *string) map[string]int

// companions lists the languages that usually ship alongside a primary one.
var companions = map[string][]string{
	"JavaScript":       {"HTML", "CSS"},
	"TypeScript":       {"JavaScript", "CSS"},
	"Vue":              {"JavaScript", "CSS"},
	"Svelte":           {"TypeScript", "CSS"},
	"HTML":             {"CSS", "JavaScript"},
	"CSS":              {"HTML"},
	"SCSS":             {"HTML", "JavaScript"},
	"Python":           {"Jupyter Notebook", "Shell"},
	"Jupyter Notebook": {"Python"},
	"Go":               {"Shell", "Dockerfile"},
	"Rust":             {"Shell"},
	"Java":             {"Kotlin", "Shell"},
	"Kotlin":           {"Java"},
	"C#":               {"HTML", "CSS"},
	"PHP":              {"Blade", "JavaScript"},
	"Ruby":             {"HTML", "JavaScript"},
	"Dart":             {"Swift", "Kotlin"},
	"C":                {"Makefile"},
	"C++":              {"CMake", "C"},
	"Shell":            {"Dockerfile"},
}

var defaultCompanions = []string{"HTML", "CSS"}

// Synthetic builds a breakdown seeded from the primary language. A nil or
// empty primary yields an empty, non-nil map.
func Synthetic(primary *string) map[string]int {
	if primary == nil || *primary == "" {
		return map[string]int{}
	}
	lang := *primary

	list, ok := companions[lang]
	if !ok {
		list = defaultCompanions
	}

	out := map[string]int{lang: PrimaryWeight}
	weights := []int{CompanionWeight, TrailingWeight}
	i := 0
	for _, c := range list {
		if i == len(weights) {
			break
		}
		if c == lang {
			continue
		}
		out[c] = weights[i]
		i++
	}

	// A single companion absorbs the trailing weight so the weights still sum to 100
	if i == 1 {
		for c := range out {
			if c != lang {
				out[c] += TrailingWeight
			}
		}
	}

	return out
}

// Disabled never invents data; it always returns an empty map.
func Disabled(*string) map[string]int {
	return map[string]int{}
}

// Apply sets r.Languages from fn when the repository has no breakdown.
// It reports whether the repository was changed.
func Apply(r *types.Repository, fn Func) bool {
	if len(r.Languages) > 0 {
		return false
	}
	if fn == nil {
		fn = Disabled
	}

	langs := fn(r.Language)
	if langs == nil {
		langs = map[string]int{}
	}
	r.Languages = langs
	r.LanguagesSynthetic = len(langs) > 0
	return r.LanguagesSynthetic
}
