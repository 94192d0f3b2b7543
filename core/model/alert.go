package model

import "time"

// OutageAlert is raised whenever an operator declares a forced outage.
type OutageAlert struct {
	Unit     string    `json:"unit"`
	Previous Status    `json:"previous"`
	Block    int       `json:"block"` // next block to be processed
	Time     time.Time `json:"time"`
}
