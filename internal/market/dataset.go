// Package market serves job market statistics from a static CSV of job
// postings. The dataset is loaded once and read-only afterwards.
package market

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	ColumnRoles      = "roles"
	ColumnCompanies  = "companies"
	ColumnLocations  = "locations"
	ColumnExperience = "experience"
	ColumnSkills     = "skills"
)

var requiredColumns = []string{ColumnRoles, ColumnCompanies, ColumnLocations, ColumnExperience, ColumnSkills}

// Job is one posting. All text is lower-cased.
type Job struct {
	Role       string   `json:"role"`
	Company    string   `json:"company"`
	Experience string   `json:"experience"`
	Locations  []string `json:"locations"`
	Skills     []string `json:"skills"`
}

type Dataset struct {
	jobs    []Job
	dropped int
}

func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open jobs csv: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(f)
}

// Load parses a CSV whose first column is a row index. Rows with any empty
// cell are dropped.
func Load(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("jobs csv is empty")
		}
		return nil, fmt.Errorf("read jobs csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			continue
		}
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("jobs csv is missing column %q", col)
		}
	}

	ds := &Dataset{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read jobs csv: %w", err)
		}
		job, ok := parseRecord(record, len(header), index)
		if !ok {
			ds.dropped++
			continue
		}
		ds.jobs = append(ds.jobs, job)
	}
	return ds, nil
}

func parseRecord(record []string, width int, index map[string]int) (Job, bool) {
	if len(record) < width {
		return Job{}, false
	}
	for i := 1; i < width; i++ {
		if strings.TrimSpace(record[i]) == "" {
			return Job{}, false
		}
	}
	field := func(col string) string {
		return strings.ToLower(strings.TrimSpace(record[index[col]]))
	}
	job := Job{
		Role:       field(ColumnRoles),
		Company:    field(ColumnCompanies),
		Experience: field(ColumnExperience),
		Locations:  splitList(field(ColumnLocations), ","),
		Skills:     splitList(field(ColumnSkills), "\n"),
	}
	return job, true
}

func splitList(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Jobs returns the loaded postings. Callers must not modify them.
func (d *Dataset) Jobs() []Job {
	return d.jobs
}

// Dropped counts rows skipped for empty cells.
func (d *Dataset) Dropped() int {
	return d.dropped
}
