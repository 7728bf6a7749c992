package dashboard

import (
	"context"
	"strconv"
)

// PostureCardProvider renders the built-in payload variants: donut charts for
// CSPM counts, progress bars for registry scans and plain text otherwise.
type PostureCardProvider struct {
	pie *EChartsProvider
	bar *EChartsProvider
}

var _ CardProvider = (*PostureCardProvider)(nil)

// NewPostureCardProvider builds the default card provider. Chart options are
// shared by the pie and bar renderers.
func NewPostureCardProvider(opts ...EChartsProviderOption) *PostureCardProvider {
	return &PostureCardProvider{
		pie: NewEChartsProvider("pie", opts...),
		bar: NewEChartsProvider("bar", opts...),
	}
}

// DefaultCardProvider returns a provider with default chart settings.
func DefaultCardProvider() CardProvider {
	return NewPostureCardProvider()
}

// Card implements CardProvider.
func (p *PostureCardProvider) Card(_ context.Context, meta CardContext) (CardData, error) {
	payload := meta.Payload
	if payload == nil {
		payload = DecodePayload(meta.Category.Key, meta.Widget.Entry)
	}
	data := CardData{
		"title": meta.Widget.Name,
		"kind":  string(payload.Kind()),
	}
	cacheKey := chartKeyPrefix(meta.Category.Key, meta.Widget.Name) + payloadHash(meta.Widget.Entry)

	switch v := payload.(type) {
	case ConnectivityPayload:
		points := []ChartPoint{
			{Label: "Connected", Value: v.Connected},
			{Label: "Not Connected", Value: v.NotConnected},
		}
		html, err := p.pie.Render(cacheKey, meta.Widget.Name, points)
		if err != nil {
			return nil, err
		}
		data["chart_html"] = html
		data["total"] = formatCount(v.Connected + v.NotConnected)
		data["total_label"] = "Total"
		data["legend"] = legend(points)
	case RiskAssessmentPayload:
		points := []ChartPoint{
			{Label: "Failed", Value: v.Failed},
			{Label: "Warning", Value: v.Warning},
			{Label: "Not available", Value: v.NotAvailable},
			{Label: "Passed", Value: v.Passed},
		}
		html, err := p.pie.Render(cacheKey, meta.Widget.Name, points)
		if err != nil {
			return nil, err
		}
		data["chart_html"] = html
		data["total"] = formatCount(v.Total())
		data["total_label"] = "Total"
		data["legend"] = legend(points)
	case ImageRiskPayload:
		bars := v.Bars()
		if len(bars) == 0 {
			data["message"] = NoGraphDataMessage
			break
		}
		points := make([]ChartPoint, len(bars))
		rows := make([]map[string]any, len(bars))
		for i, bar := range bars {
			points[i] = ChartPoint{Label: bar.Name, Value: bar.Value}
			rows[i] = map[string]any{
				"name":    bar.Name,
				"value":   formatCount(bar.Value),
				"percent": bar.Percent,
			}
		}
		html, err := p.bar.Render(cacheKey, meta.Widget.Name, points)
		if err != nil {
			return nil, err
		}
		data["chart_html"] = html
		data["bars"] = rows
		data["total"] = formatCount(v.TotalImagesScanned)
		data["total_label"] = "Total Images"
	case NotePayload:
		data["description"] = v.Description
	case PlaceholderPayload:
		data["message"] = NoGraphDataMessage
		if v.Description != "" {
			data["description"] = v.Description
		}
	default:
		data["message"] = NoGraphDataMessage
	}
	return data, nil
}

func legend(points []ChartPoint) []map[string]any {
	out := make([]map[string]any, len(points))
	for i, point := range points {
		out[i] = map[string]any{
			"label": point.Label,
			"value": formatCount(point.Value),
		}
	}
	return out
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
