package output

import (
	"fmt"
	"io"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/spiffcs/prscore/internal/maturity"
)

const metricPrefix = "prscore_"

// PrometheusFormatter writes the report in the Prometheus text exposition
// format, suitable for node_exporter's textfile collector.
type PrometheusFormatter struct{}

// Format writes one gauge family per metric.
func (f *PrometheusFormatter) Format(r *maturity.Report, w io.Writer) error {
	for _, mf := range reportFamilies(r) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// reportFamilies builds the metric families of a report. Every sample carries
// the repository and pull request number.
func reportFamilies(r *maturity.Report) []*dto.MetricFamily {
	base := []*dto.LabelPair{
		label("repository", r.ChangeRequest.Repository),
		label("pr", strconv.Itoa(r.ChangeRequest.Number)),
	}

	single := func(name, help string, v float64) *dto.MetricFamily {
		return family(name, help, gauge(base, v))
	}

	cats := family("category_score", "Weighted score of a maturity category (1-5).")
	sigScores := family("signal_score", "Threshold score of a single signal (1-5).")
	sigValues := family("signal_value", "Raw value of a single signal.")
	for _, c := range r.Categories {
		cats.Metric = append(cats.Metric, gauge(base, c.Score,
			label("category", c.ID), label("label", c.Label)))
		for _, s := range c.Signals {
			sigScores.Metric = append(sigScores.Metric, gauge(base, float64(s.Score),
				label("category", c.ID), label("signal", s.Key)))
			sigValues.Metric = append(sigValues.Metric, gauge(base, s.Value,
				label("signal", s.Key)))
		}
	}

	families := []*dto.MetricFamily{
		single("maturity", "Overall maturity score after the staleness penalty.", r.Maturity),
		single("maturity_unpenalized", "Overall maturity score before the staleness penalty.", r.Unpenalized),
		single("stale_penalty", "Staleness penalty deducted from the maturity score.", r.Penalty),
		single("complexity", "Derived change complexity (1-5).", float64(r.Complexity)),
		cats,
		sigScores,
		sigValues,
		single("recommendations", "Number of recommendations emitted.", float64(len(r.Recommendations))),
	}
	if !r.GeneratedAt.IsZero() {
		families = append(families, single("generated_timestamp_seconds",
			"Unix time the report was generated.", float64(r.GeneratedAt.Unix())))
	}
	return families
}

func family(name, help string, metrics ...*dto.Metric) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   ptr(metricPrefix + name),
		Help:   ptr(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: metrics,
	}
}

func gauge(base []*dto.LabelPair, v float64, extra ...*dto.LabelPair) *dto.Metric {
	labels := make([]*dto.LabelPair, 0, len(base)+len(extra))
	labels = append(labels, base...)
	labels = append(labels, extra...)
	return &dto.Metric{
		Label: labels,
		Gauge: &dto.Gauge{Value: ptr(v)},
	}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: ptr(name), Value: ptr(value)}
}

func ptr[T any](v T) *T {
	return &v
}
