package models

// SeriesPoint is one (category, value) pair of a chart series.
type SeriesPoint struct {
	// Category is the category axis label paired with this value.
	Category string `json:"category,omitempty"`
	// Value is the numeric value (nil when the cached value is absent).
	Value *float64 `json:"value"`
}

// Series holds one chart data series in document order.
type Series struct {
	// Name is the series display name.
	Name string `json:"name,omitempty"`
	// NameRange is the range reference the name was read from.
	NameRange string `json:"name_range,omitempty"`
	// CategoryRange is the range reference for category labels.
	CategoryRange string `json:"category_range,omitempty"`
	// ValueRange is the range reference for values.
	ValueRange string `json:"value_range,omitempty"`
	// Points contains (category, value) pairs in document order.
	Points []SeriesPoint `json:"points,omitempty"`
}

// ChartData is the normalized model of one chart part.
type ChartData struct {
	// SourcePartPath is the package path of the chart part.
	SourcePartPath string `json:"source_part_path"`
	// Name is the chart name from the owning anchor.
	Name string `json:"name,omitempty"`
	// ChartType is the normalized chart family name, "Other" when the
	// family is unrecognized.
	ChartType string `json:"chart_type"`
	// Title is the chart title (empty when absent).
	Title string `json:"title,omitempty"`
	// XAxisTitle is the category axis title.
	XAxisTitle string `json:"x_axis_title,omitempty"`
	// YAxisTitle is the value axis title.
	YAxisTitle string `json:"y_axis_title,omitempty"`
	// YAxisRange is the value axis [min, max] when both are set.
	YAxisRange []float64 `json:"y_axis_range,omitempty"`
	// Categories contains the category labels of the first series.
	Categories []string `json:"categories,omitempty"`
	// Series contains the chart series in document order.
	Series []Series `json:"series"`
}
