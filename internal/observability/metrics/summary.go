package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Summary is the dashboard snapshot of the estimator counters, summed over
// their label sets.
type Summary struct {
	EstimatesGiven    int64 `json:"estimates_given"`
	LeadsSaved        int64 `json:"leads_saved"`
	ErrorsEncountered int64 `json:"errors_encountered"`
}

// Snapshot gathers the registry and folds the estimator counter families
// into a Summary.
func Snapshot(g prometheus.Gatherer) (Summary, error) {
	families, err := g.Gather()
	if err != nil {
		return Summary{}, err
	}

	var s Summary
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		switch mf.GetName() {
		case "homequote_estimator_estimates_total":
			s.EstimatesGiven = int64(total)
		case "homequote_estimator_leads_saved_total":
			s.LeadsSaved = int64(total)
		case "homequote_estimator_errors_total":
			s.ErrorsEncountered = int64(total)
		}
	}
	return s, nil
}

// SummaryHandler serves the counter snapshot as JSON.
func SummaryHandler(g prometheus.Gatherer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := Snapshot(g)
		if err != nil {
			http.Error(w, "failed to gather metrics", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s)
	}
}
