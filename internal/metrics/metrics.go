package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	IdeasCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackboard_ideas_created_total", Help: "Total ideas created"},
	)
	VotesCast = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackboard_votes_cast_total", Help: "Total vote mutations (casts and clears)"},
	)
	TeamsRandomized = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hackboard_teams_randomized_total", Help: "Total team re-randomization runs"},
	)
)

func Register() {
	prometheus.MustRegister(IdeasCreated, VotesCast, TeamsRandomized)
}
