package eval

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/braintrustdata/overlap-go/score"
)

// Summary holds corpus-level statistics derived from a set of Records.
// It is computed once from the records and holds no other state.
type Summary struct {
	// Count is the number of scored records.
	Count int `json:"count"`

	// Skipped is the number of rows excluded by validation.
	Skipped int `json:"skipped"`

	// Means are NaN when Count is 0; check Count before using them.
	MeanROUGE1 float64 `json:"mean_rouge1"`
	MeanROUGE2 float64 `json:"mean_rouge2"`
	MeanROUGEL float64 `json:"mean_rougeL"`
	MeanBLEU   float64 `json:"mean_bleu"`

	// Values holds each metric's per-record values in record order.
	Values map[score.Metric][]float64 `json:"-"`

	// Distributions summarizes each metric's Values for box plots.
	Distributions map[score.Metric]Distribution `json:"distributions"`
}

// Distribution is a five-number summary plus population standard deviation.
// All fields are NaN for an empty input.
type Distribution struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stddev"`
}

// Summarize computes the Summary of records.
func Summarize(records []Record, skipped int) Summary {
	s := Summary{
		Count:         len(records),
		Skipped:       skipped,
		Values:        make(map[score.Metric][]float64, len(score.Metrics)),
		Distributions: make(map[score.Metric]Distribution, len(score.Metrics)),
	}

	for _, m := range score.Metrics {
		values := make([]float64, len(records))
		for i, r := range records {
			values[i] = r.Scores.Get(m)
		}
		s.Values[m] = values
		s.Distributions[m] = distribution(values)
	}

	s.MeanROUGE1 = mean(s.Values[score.ROUGE1])
	s.MeanROUGE2 = mean(s.Values[score.ROUGE2])
	s.MeanROUGEL = mean(s.Values[score.ROUGEL])
	s.MeanBLEU = mean(s.Values[score.BLEU])
	return s
}

// Mean returns the mean of metric m.
func (s Summary) Mean(m score.Metric) float64 {
	switch m {
	case score.ROUGE1:
		return s.MeanROUGE1
	case score.ROUGE2:
		return s.MeanROUGE2
	case score.ROUGEL:
		return s.MeanROUGEL
	case score.BLEU:
		return s.MeanBLEU
	}
	return math.NaN()
}

func mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return math.NaN()
	}
	return m
}

func distribution(values []float64) Distribution {
	nan := math.NaN()
	switch len(values) {
	case 0:
		return Distribution{Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan, StdDev: nan}
	case 1:
		v := values[0]
		return Distribution{Min: v, Q1: v, Median: v, Q3: v, Max: v}
	}

	data := stats.Float64Data(values)
	d := Distribution{}
	d.Min, _ = data.Min()
	d.Max, _ = data.Max()
	d.Median, _ = data.Median()
	d.StdDev, _ = data.StandardDeviation()
	if q, err := data.Quartile(data); err == nil {
		d.Q1, d.Q3 = q.Q1, q.Q3
	}
	return d
}
