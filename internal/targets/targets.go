// Package targets sizes the survey sample and turns reference counts into
// target distributions for demographic weighting.
package targets

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/stat/distuv"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

// Sampling holds the sample-size formula parameters.
type Sampling struct {
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Proportion float64 `json:"proportion" yaml:"proportion"`
	Margin     float64 `json:"margin" yaml:"margin"`
}

// DefaultSampling is 95% confidence, p=0.5 and a 5% margin of error.
func DefaultSampling() Sampling {
	return Sampling{Confidence: 0.95, Proportion: 0.5, Margin: 0.05}
}

// Validate checks parameter ranges.
func (s Sampling) Validate() error {
	if s.Confidence <= 0 || s.Confidence >= 1 {
		return fmt.Errorf("confidence level must be in (0,1), got %v", s.Confidence)
	}
	if s.Proportion < 0 || s.Proportion > 1 {
		return fmt.Errorf("proportion must be in [0,1], got %v", s.Proportion)
	}
	if s.Margin <= 0 || s.Margin >= 1 {
		return fmt.Errorf("margin of error must be in (0,1), got %v", s.Margin)
	}
	return nil
}

// SampleSize returns the required sample size, with finite population
// correction when population > 0, rounded up.
func SampleSize(s Sampling, population int) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	z := distuv.UnitNormal.Quantile(1 - (1-s.Confidence)/2)
	n := z * z * s.Proportion * (1 - s.Proportion) / (s.Margin * s.Margin)
	if population > 0 {
		N := float64(population)
		n = n * N / (n + N - 1)
	}
	// absorb float noise such as 384.00000000001
	return int(math.Ceil(n - 1e-9)), nil
}

// Category is one reference count.
type Category struct {
	Label string  `json:"label" yaml:"label"`
	Count float64 `json:"count" yaml:"count"`
}

// Share is one category's target proportion.
type Share struct {
	Label string  `json:"label"`
	Share float64 `json:"share"`
}

// Distribution is an ordered set of target shares summing to 1.
type Distribution struct {
	Shares []Share `json:"shares"`
}

// Normalize converts reference counts into shares.
func Normalize(cats []Category) (Distribution, error) {
	var total float64
	for _, c := range cats {
		if c.Count < 0 {
			return Distribution{}, fmt.Errorf("category %q has a negative count", c.Label)
		}
		total += c.Count
	}
	if total <= 0 {
		return Distribution{}, errors.New("reference counts must sum to a positive total")
	}
	d := Distribution{Shares: make([]Share, 0, len(cats))}
	for _, c := range cats {
		d.Shares = append(d.Shares, Share{Label: c.Label, Share: c.Count / total})
	}
	return d, nil
}

// Lookup returns the share of label, matched after normalisation.
func (d Distribution) Lookup(label string) (float64, bool) {
	key := survey.NormalizeLabel(label)
	for _, s := range d.Shares {
		if survey.NormalizeLabel(s.Label) == key {
			return s.Share, true
		}
	}
	return 0, false
}

// Dimension is the reference data of one demographic question.
type Dimension struct {
	Question   int        `json:"question" yaml:"question"`
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	Categories []Category `json:"categories" yaml:"categories"`
}

// Total returns the sum of category counts.
func (d Dimension) Total() float64 {
	var t float64
	for _, c := range d.Categories {
		t += c.Count
	}
	return t
}

// Reference is a set of external category counts, usually loaded from YAML.
type Reference struct {
	Name       string      `json:"name" yaml:"name"`
	Population int         `json:"population,omitempty" yaml:"population,omitempty"`
	Dimensions []Dimension `json:"dimensions" yaml:"dimensions"`
}

// LoadReference reads a reference YAML file.
func LoadReference(path string) (*Reference, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference: %w", err)
	}
	return ParseReference(b)
}

// ParseReference decodes and validates reference YAML.
func ParseReference(b []byte) (*Reference, error) {
	var r Reference
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse reference: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate requires at least two dimensions, each with categories.
func (r *Reference) Validate() error {
	if len(r.Dimensions) < 2 {
		return fmt.Errorf("reference %q needs at least 2 dimensions, got %d", r.Name, len(r.Dimensions))
	}
	for i, d := range r.Dimensions {
		if len(d.Categories) == 0 {
			return fmt.Errorf("reference dimension %d has no categories", i+1)
		}
	}
	return nil
}

// Clone returns a deep copy of r.
func (r *Reference) Clone() *Reference {
	c := *r
	c.Dimensions = make([]Dimension, len(r.Dimensions))
	for i, d := range r.Dimensions {
		d.Categories = append([]Category(nil), d.Categories...)
		c.Dimensions[i] = d
	}
	return &c
}

// WithQuestions assigns question numbers to the dimensions in order.
func (r *Reference) WithQuestions(numbers []int) error {
	if len(numbers) != len(r.Dimensions) {
		return fmt.Errorf("got %d weighting questions for %d reference dimensions", len(numbers), len(r.Dimensions))
	}
	for i, n := range numbers {
		if n <= 0 {
			return fmt.Errorf("invalid weighting question number %d", n)
		}
		r.Dimensions[i].Question = n
	}
	return nil
}

// Target is the distribution of one weighting question.
type Target struct {
	Question     int          `json:"question"`
	Name         string       `json:"name,omitempty"`
	Distribution Distribution `json:"distribution"`
}

// Plan is everything the weighting engine needs for one report run.
type Plan struct {
	SampleSize int      `json:"sample_size"`
	Population int      `json:"population"`
	Sampling   Sampling `json:"sampling"`
	Dimensions []Target `json:"dimensions"`
}

// Build sizes the sample and normalises every dimension. The population
// defaults to the first dimension's total.
func Build(ref *Reference, s Sampling) (*Plan, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	pop := ref.Population
	if pop <= 0 {
		pop = int(math.Round(ref.Dimensions[0].Total()))
	}
	n, err := SampleSize(s, pop)
	if err != nil {
		return nil, err
	}
	plan := &Plan{SampleSize: n, Population: pop, Sampling: s}
	for i, d := range ref.Dimensions {
		dist, err := Normalize(d.Categories)
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", i+1, err)
		}
		plan.Dimensions = append(plan.Dimensions, Target{Question: d.Question, Name: d.Name, Distribution: dist})
	}
	return plan, nil
}

// Target returns the dimension bound to question number n.
func (p *Plan) Target(n int) (Target, bool) {
	for _, t := range p.Dimensions {
		if t.Question == n {
			return t, true
		}
	}
	return Target{}, false
}
