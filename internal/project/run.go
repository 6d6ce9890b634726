package project

import "time"

// Run records one analysis executed inside a project.
type Run struct {
	ID          string    `json:"id"`
	ReportID    string    `json:"report_id"`
	Source      string    `json:"source"`
	Outputs     []string  `json:"outputs"`
	Respondents int       `json:"respondents"`
	Base        int       `json:"base"`
	Segmented   bool      `json:"segmented"`
	Weighted    bool      `json:"weighted"`
	Skipped     int       `json:"skipped"`
	CreatedAt   time.Time `json:"created_at"`
}
