package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "220px"

var sharedChartCache = NewChartCache(5 * time.Minute)

// Slice colors follow the posture palette: primary for the healthy share,
// muted grey for the remainder.
var defaultChartColors = []string{"#2a3f8b", "#7c7f8b", "#d9534f", "#f0ad4e", "#5cb85c"}

// EChartsProvider renders server-side chart HTML for posture widgets.
type EChartsProvider struct {
	chartType  string
	cache      RenderCache
	theme      string
	assetsHost string
	colors     []string
}

// EChartsProviderOption customizes provider behavior.
type EChartsProviderOption func(*EChartsProvider)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		if theme != "" {
			p.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.assetsHost = host
	}
}

// WithChartColors overrides the slice palette.
func WithChartColors(colors ...string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		if len(colors) > 0 {
			p.colors = colors
		}
	}
}

// NewEChartsProvider builds a provider for a chart type ("pie" or "bar").
func NewEChartsProvider(chartType string, opts ...EChartsProviderOption) *EChartsProvider {
	p := &EChartsProvider{
		chartType: strings.ToLower(chartType),
		cache:     sharedChartCache,
		theme:     types.ThemeWesteros,
		colors:    defaultChartColors,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ChartType returns the configured chart type.
func (p *EChartsProvider) ChartType() string {
	return p.chartType
}

// ChartPoint is one labeled value.
type ChartPoint struct {
	Label string
	Value float64
}

// Render returns chart HTML for the points, memoized under key.
func (p *EChartsProvider) Render(key, title string, points []ChartPoint) (string, error) {
	if len(points) == 0 {
		return "", fmt.Errorf("chart points are required")
	}
	renderFn := func() (string, error) {
		return p.render(title, points)
	}
	if p.cache == nil {
		return renderFn()
	}
	return p.cache.GetOrRender(fmt.Sprintf("%s:%s:%s", p.chartType, p.theme, key), renderFn)
}

func (p *EChartsProvider) render(title string, points []ChartPoint) (string, error) {
	switch p.chartType {
	case "pie":
		return p.renderPieChart(title, points)
	case "bar":
		return p.renderBarChart(title, points)
	default:
		return "", fmt.Errorf("unsupported chart type: %s", p.chartType)
	}
}

func (p *EChartsProvider) renderPieChart(title string, points []ChartPoint) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(p.globalChartOptions(title)...)
	pie.AddSeries(title, toPieData(points, p.colors)).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
			charts.WithPieChartOpts(opts.PieChart{Radius: "50%"}),
		)
	return renderChart(pie)
}

func (p *EChartsProvider) renderBarChart(title string, points []ChartPoint) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(p.globalChartOptions(title)...)
	labels := make([]string, len(points))
	for i, point := range points {
		labels[i] = point.Label
	}
	bar.SetXAxis(labels)
	bar.AddSeries(title, toBarData(points))
	return renderChart(bar)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *EChartsProvider) globalChartOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  p.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func toPieData(points []ChartPoint, colors []string) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := point.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		item := opts.PieData{
			Name:  name,
			Value: point.Value,
		}
		if len(colors) > 0 {
			item.ItemStyle = &opts.ItemStyle{Color: colors[i%len(colors)]}
		}
		data[i] = item
	}
	return data
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{
			Name:  point.Label,
			Value: point.Value,
		}
	}
	return data
}
