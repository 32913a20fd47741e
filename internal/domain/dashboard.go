package domain

import "time"

// TimeSeriesPoint represents a single data point in a time series
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     int64     `json:"value"`
}

// LabeledValue is a chart entry
type LabeledValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// IssueSplit is the open/closed chart
type IssueSplit struct {
	Open             int     `json:"open"`
	Closed           int     `json:"closed"`
	OpenPercentage   float64 `json:"openPercentage"`
	ClosedPercentage float64 `json:"closedPercentage"`
}

// TimelinePoint is one milestone on the qualitative timeline
type TimelinePoint struct {
	Label    string    `json:"label"`
	Date     time.Time `json:"date"`
	Activity int       `json:"activity"`
}

// Dashboard holds the chart datasets derived from an analysis
type Dashboard struct {
	LanguageShare   []LabeledValue    `json:"languageShare"`
	CommitVolume    []TimeSeriesPoint `json:"commitVolume"`
	TopContributors []LabeledValue    `json:"topContributors"`
	IssueSplit      IssueSplit        `json:"issueSplit"`
	Timeline        []TimelinePoint   `json:"timeline"`
}

// DashboardView is an analysis together with its charts
type DashboardView struct {
	Analysis  *Analysis  `json:"analysis"`
	Dashboard *Dashboard `json:"dashboard"`
}
