// Package types contains the read-model shapes shared by the service and the
// HTTP API.
package types

import (
	"sort"

	"github.com/okian/ironsys/internal/domain/model"
	"github.com/okian/ironsys/internal/domain/numeric"
)

// NameTotal is one bar of the top-totals block.
type NameTotal struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// CategoryCount is one slice of the category distribution.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TeamAverage is one bar of the team average block.
type TeamAverage struct {
	Team    string  `json:"team"`
	Average float64 `json:"average"`
}

// Dashboard holds the data blocks of a tournament dashboard.
type Dashboard struct {
	Table        string          `json:"table"`
	TopTotals    []NameTotal     `json:"top_totals"`
	Categories   []CategoryCount `json:"categories"`
	TeamAverages []TeamAverage   `json:"team_averages"`
}

// Dashboard block sizes and placeholder labels.
const (
	TopTotalsSize    = 10
	TeamAveragesSize = 8
	Unclassified     = "Unclassified"
	NoTeam           = "No Team"
)

// NewDashboard builds the dashboard blocks from scored results. Sorting is
// stable so equal values keep table order; categories appear in order of
// first occurrence.
func NewDashboard(table string, results []model.AthleteResult) Dashboard {
	d := Dashboard{Table: table}

	top := make([]NameTotal, 0, len(results))
	for _, r := range results {
		top = append(top, NameTotal{Name: r.Name, Total: r.Total})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Total > top[j].Total })
	if len(top) > TopTotalsSize {
		top = top[:TopTotalsSize]
	}
	d.TopTotals = top

	catIdx := make(map[string]int)
	for _, r := range results {
		c := r.Category
		if c == "" {
			c = Unclassified
		}
		i, ok := catIdx[c]
		if !ok {
			i = len(d.Categories)
			catIdx[c] = i
			d.Categories = append(d.Categories, CategoryCount{Category: c})
		}
		d.Categories[i].Count++
	}

	type acc struct {
		sum   float64
		count int
	}
	var teamOrder []string
	teamAcc := make(map[string]*acc)
	for _, r := range results {
		t := r.Team
		if t == "" {
			t = NoTeam
		}
		a, ok := teamAcc[t]
		if !ok {
			a = &acc{}
			teamAcc[t] = a
			teamOrder = append(teamOrder, t)
		}
		a.sum += r.Total
		a.count++
	}
	for _, t := range teamOrder {
		a := teamAcc[t]
		d.TeamAverages = append(d.TeamAverages, TeamAverage{Team: t, Average: a.sum / float64(a.count)})
	}
	sort.SliceStable(d.TeamAverages, func(i, j int) bool {
		return d.TeamAverages[i].Average > d.TeamAverages[j].Average
	})
	if len(d.TeamAverages) > TeamAveragesSize {
		d.TeamAverages = d.TeamAverages[:TeamAveragesSize]
	}
	for i := range d.TeamAverages {
		d.TeamAverages[i].Average = numeric.Round(d.TeamAverages[i].Average, 1)
	}
	return d
}
