package report

import (
	"sort"

	"spantable/internal/fixture"
)

// Report summarises a fixture run.
type Report struct {
	Total    int              `json:"total"`
	Passed   []string         `json:"passed"`
	Failed   []string         `json:"failed"`
	Errored  []string         `json:"errored"`
	Skipped  []string         `json:"skipped"`
	Results  []fixture.Result `json:"results"`
	Mismatch map[string]int   `json:"mismatch_counts"`
}

func (r Report) OK() bool {
	return len(r.Failed) == 0 && len(r.Errored) == 0
}

func AnalyzeRun(results []fixture.Result, skipped []string) Report {
	rep := Report{
		Total:    len(results),
		Passed:   []string{},
		Failed:   []string{},
		Errored:  []string{},
		Skipped:  []string{},
		Results:  results,
		Mismatch: map[string]int{},
	}
	for _, res := range results {
		switch {
		case res.Error != "":
			rep.Errored = append(rep.Errored, res.Name)
		case res.Passed:
			rep.Passed = append(rep.Passed, res.Name)
		default:
			rep.Failed = append(rep.Failed, res.Name)
		}
		for _, m := range res.Mismatches {
			rep.Mismatch[m.Key]++
		}
	}
	for _, p := range skipped {
		rep.Skipped = append(rep.Skipped, fixtureName(p))
	}

	sort.Strings(rep.Passed)
	sort.Strings(rep.Failed)
	sort.Strings(rep.Errored)
	sort.Strings(rep.Skipped)
	return rep
}
