package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type RunID string

// ScanReport is the aggregate of one full scan. Categories keep the order
// they were collected in; renderers sort on their own.
type ScanReport struct {
	RunID      RunID
	StartedAt  time.Time
	FinishedAt time.Time
	Categories []CategoryResult
}

// AllReachable is true iff no outcome in any category failed.
func (r *ScanReport) AllReachable() bool {
	for _, c := range r.Categories {
		for _, o := range c.Outcomes {
			if !o.Success {
				return false
			}
		}
	}
	return true
}

// Category returns the result for name, or nil.
func (r *ScanReport) Category(name string) *CategoryResult {
	for i := range r.Categories {
		if r.Categories[i].Category == name {
			return &r.Categories[i]
		}
	}
	return nil
}

func (r *ScanReport) Summary() Summary {
	s := Summary{
		RunID:      r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	for _, c := range r.Categories {
		s.Total += len(c.Outcomes)
		s.Failures += len(c.Failures())
	}
	s.AllReachable = s.Failures == 0
	return s
}

// Summary is the listing view of a stored report.
type Summary struct {
	RunID        RunID     `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	AllReachable bool      `json:"all_reachable"`
	Total        int       `json:"total"`
	Failures     int       `json:"failures"`
}

// MarshalJSON writes the report as an object of category name to outcome
// list, keys in collected order. Run metadata is not part of this form.
func (r ScanReport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalPlain(c.Category)
		if err != nil {
			return nil, err
		}
		outcomes := c.Outcomes
		if outcomes == nil {
			outcomes = []Outcome{}
		}
		v, err := marshalPlain(outcomes)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Category, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the form written by MarshalJSON, keeping key order.
func (r *ScanReport) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("scan report: want object, got %v", tok)
	}
	var cats []CategoryResult
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("scan report: want category name, got %v", tok)
		}
		var outcomes []Outcome
		if err := dec.Decode(&outcomes); err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		cats = append(cats, CategoryResult{Category: name, Outcomes: outcomes})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	r.Categories = cats
	return nil
}

// marshalPlain is json.Marshal without HTML escaping, so names like
// "Packages & Publishing" stay readable in the artifact.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
