package market

import (
	"regexp"
	"sort"
	"strings"
)

type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Summary struct {
	TotalJobs        int `json:"total_jobs"`
	UniqueCompanies  int `json:"unique_companies"`
	LocationMentions int `json:"location_mentions"`
}

func (d *Dataset) Summary() Summary {
	companies := make(map[string]struct{})
	s := Summary{TotalJobs: len(d.jobs)}
	for _, j := range d.jobs {
		companies[j.Company] = struct{}{}
		s.LocationMentions += len(j.Locations)
	}
	s.UniqueCompanies = len(companies)
	return s
}

func (d *Dataset) TopLocations(limit int) []Count {
	counts := make(map[string]int)
	for _, j := range d.jobs {
		for _, loc := range j.Locations {
			counts[loc]++
		}
	}
	return top(counts, limit)
}

func (d *Dataset) TopCompanies(limit int) []Count {
	counts := make(map[string]int)
	for _, j := range d.jobs {
		counts[j.Company]++
	}
	return top(counts, limit)
}

// top sorts by count descending, then name, and keeps at most limit entries.
// limit <= 0 keeps everything.
func top(counts map[string]int, limit int) []Count {
	out := make([]Count, 0, len(counts))
	for name, n := range counts {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Filter selects postings. Values within a field are alternatives; fields
// combine with AND. Empty fields match everything.
type Filter struct {
	Companies  []string
	Experience []string
}

// Find returns the postings matching f in dataset order.
func (d *Dataset) Find(f Filter) []Job {
	companies := toSet(f.Companies)
	experience := toSet(f.Experience)
	out := make([]Job, 0)
	for _, j := range d.jobs {
		if len(companies) > 0 {
			if _, ok := companies[j.Company]; !ok {
				continue
			}
		}
		if len(experience) > 0 {
			if _, ok := experience[j.Experience]; !ok {
				continue
			}
		}
		out = append(out, j)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// Options lists the distinct filter values, sorted.
type Options struct {
	Companies  []string `json:"companies"`
	Experience []string `json:"experience"`
}

func (d *Dataset) Options() Options {
	companies := make(map[string]struct{})
	experience := make(map[string]struct{})
	for _, j := range d.jobs {
		companies[j.Company] = struct{}{}
		experience[j.Experience] = struct{}{}
	}
	return Options{Companies: sortedKeys(companies), Experience: sortedKeys(experience)}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type skillPattern struct {
	name string
	re   *regexp.Regexp
}

type skillCategory struct {
	name     string
	patterns []skillPattern
}

func pattern(name, expr string) skillPattern {
	return skillPattern{name: name, re: regexp.MustCompile("(?i)" + expr)}
}

var skillCategories = []skillCategory{
	{name: "core", patterns: []skillPattern{
		pattern("Machine Learning", `machine|ml`),
		pattern("Data Mining", `mining`),
		pattern("Statistics", `stat`),
		pattern("NLP", `nlp|natural`),
		pattern("Deep Learning", `deep learning`),
		pattern("Computer Vision", `computer vision`),
	}},
	{name: "languages", patterns: []skillPattern{
		pattern("Python", `python`),
		pattern("R", `^r$`),
		pattern("SQL", `sql`),
		pattern("Java", `java$`),
		pattern("C++", `c\+\+`),
	}},
	{name: "frameworks", patterns: []skillPattern{
		pattern("TensorFlow", `tensor`),
		pattern("PyTorch", `torch`),
		pattern("Keras", `keras`),
		pattern("Tableau", `tableau`),
		pattern("Power BI", `power bi`),
	}},
	{name: "cloud", patterns: []skillPattern{
		pattern("AWS", `aws`),
		pattern("Azure", `azure`),
		pattern("GCP", `gcp`),
		pattern("Spark", `spark`),
		pattern("Hadoop", `hadoop`),
	}},
}

// CategoryBreakdown is one dashboard skill tab. Entries keep their fixed order.
type CategoryBreakdown struct {
	Category string  `json:"category"`
	Skills   []Count `json:"skills"`
}

// SkillCategories sums, for every tracked technology, the postings of all
// skills whose text matches it. One skill can count toward several entries.
func (d *Dataset) SkillCategories() []CategoryBreakdown {
	counts := make(map[string]int)
	for _, j := range d.jobs {
		for _, s := range j.Skills {
			counts[s]++
		}
	}

	out := make([]CategoryBreakdown, 0, len(skillCategories))
	for _, cat := range skillCategories {
		b := CategoryBreakdown{Category: cat.name, Skills: make([]Count, 0, len(cat.patterns))}
		for _, p := range cat.patterns {
			total := 0
			for skill, n := range counts {
				if p.re.MatchString(skill) {
					total += n
				}
			}
			b.Skills = append(b.Skills, Count{Name: p.name, Count: total})
		}
		out = append(out, b)
	}
	return out
}
