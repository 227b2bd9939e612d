package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/indexdash/internal/chart"
	"github.com/dgnsrekt/indexdash/internal/dataset"
)

// MetricEntry describes one selectable metric column.
type MetricEntry struct {
	Key             string `yaml:"key" json:"key"`
	Label           string `yaml:"label" json:"label"`
	DatasetLabel    string `yaml:"dataset_label" json:"dataset_label,omitempty"`
	Kind            string `yaml:"kind" json:"kind"`
	BeginAtZero     bool   `yaml:"begin_at_zero" json:"begin_at_zero"`
	BorderColor     string `yaml:"border_color" json:"border_color,omitempty"`
	BackgroundColor string `yaml:"background_color" json:"background_color,omitempty"`
}

// ColumnsConfig maps dataset columns and metrics to presentation.
type ColumnsConfig struct {
	SeriesColumn  string        `yaml:"series_column"`
	DateColumn    string        `yaml:"date_column"`
	DefaultMetric string        `yaml:"default_metric"`
	Metrics       []MetricEntry `yaml:"metrics"`
	XAxisTitle    string        `yaml:"x_axis_title"`
}

// DefaultColumns is used when no columns file exists.
func DefaultColumns() *ColumnsConfig {
	return &ColumnsConfig{
		SeriesColumn:  "index_name",
		DateColumn:    "index_date",
		DefaultMetric: "closing_index_value",
		Metrics: []MetricEntry{
			{
				Key:             "closing_index_value",
				Label:           "Closing Index Value",
				DatasetLabel:    "Closing Value",
				Kind:            string(chart.KindLine),
				BorderColor:     "rgba(0, 123, 255, 1)",
				BackgroundColor: "rgba(0, 123, 255, 0.1)",
			},
			{
				Key:             "volume",
				Label:           "Volume",
				DatasetLabel:    "Volume",
				Kind:            string(chart.KindBar),
				BeginAtZero:     true,
				BorderColor:     "rgba(40, 167, 69, 1)",
				BackgroundColor: "rgba(40, 167, 69, 0.5)",
			},
		},
		XAxisTitle: "Index Date",
	}
}

// LoadColumns reads a columns YAML file. A missing file yields the defaults.
func LoadColumns(path string) (*ColumnsConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultColumns(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("columns config: %w", err)
	}
	var cfg ColumnsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("columns config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and fills optional ones.
func (c *ColumnsConfig) Validate() error {
	c.SeriesColumn = strings.TrimSpace(c.SeriesColumn)
	c.DateColumn = strings.TrimSpace(c.DateColumn)
	c.DefaultMetric = strings.TrimSpace(c.DefaultMetric)
	if c.SeriesColumn == "" {
		return fmt.Errorf("columns config: series_column is required")
	}
	if c.DateColumn == "" {
		return fmt.Errorf("columns config: date_column is required")
	}
	if c.DefaultMetric == "" {
		return fmt.Errorf("columns config: default_metric is required")
	}
	seen := make(map[string]struct{}, len(c.Metrics))
	for i := range c.Metrics {
		m := &c.Metrics[i]
		m.Key = strings.TrimSpace(m.Key)
		if m.Key == "" {
			return fmt.Errorf("columns config: metrics[%d] missing key", i)
		}
		if _, dup := seen[m.Key]; dup {
			return fmt.Errorf("columns config: metrics[%d] duplicate key %q", i, m.Key)
		}
		seen[m.Key] = struct{}{}
		if m.Kind == "" {
			m.Kind = string(chart.KindLine)
		}
		if !chart.Kind(m.Kind).Valid() {
			return fmt.Errorf("columns config: metrics[%d] kind %q must be line or bar", i, m.Kind)
		}
		if m.Label == "" {
			m.Label = m.Key
		}
	}
	if c.XAxisTitle == "" {
		c.XAxisTitle = "Index Date"
	}
	return nil
}

// Columns returns the dataset column mapping.
func (c *ColumnsConfig) Columns() dataset.Columns {
	return dataset.Columns{Series: c.SeriesColumn, Date: c.DateColumn}
}

// Styles builds the metric style lookup. Unset colors fall back to the
// default line colors.
func (c *ColumnsConfig) Styles() chart.Styles {
	out := make(chart.Styles, len(c.Metrics))
	for _, m := range c.Metrics {
		st := chart.Style{
			Kind:            chart.Kind(m.Kind),
			AxisTitle:       m.Label,
			DatasetLabel:    m.DatasetLabel,
			BeginAtZero:     m.BeginAtZero,
			BorderColor:     m.BorderColor,
			BackgroundColor: m.BackgroundColor,
		}
		if st.BorderColor == "" {
			st.BorderColor = chart.DefaultStyle.BorderColor
		}
		if st.BackgroundColor == "" {
			st.BackgroundColor = chart.DefaultStyle.BackgroundColor
		}
		out[m.Key] = st
	}
	return out
}
