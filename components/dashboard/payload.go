package dashboard

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// PayloadKind tags the decoded shape of a widget payload.
type PayloadKind string

const (
	PayloadConnectivity   PayloadKind = "connectivity"
	PayloadRiskAssessment PayloadKind = "risk_assessment"
	PayloadImageRisk      PayloadKind = "image_risk"
	PayloadNote           PayloadKind = "note"
	PayloadPlaceholder    PayloadKind = "placeholder"
)

const (
	fieldDescription        = "description"
	fieldConnected          = "connected"
	fieldNotConnected       = "notConnected"
	fieldFailed             = "failed"
	fieldWarning            = "warning"
	fieldNotAvailable       = "notAvailable"
	fieldPassed             = "passed"
	fieldTotalImagesScanned = "totalImagesScanned"
)

// Payload is the tagged variant renderers switch on.
type Payload interface {
	Kind() PayloadKind
}

// ConnectivityPayload counts connected vs not connected cloud accounts.
type ConnectivityPayload struct {
	Connected    float64
	NotConnected float64
}

func (ConnectivityPayload) Kind() PayloadKind { return PayloadConnectivity }

// RiskAssessmentPayload summarizes posture checks.
type RiskAssessmentPayload struct {
	Failed       float64
	Warning      float64
	NotAvailable float64
	Passed       float64
}

func (RiskAssessmentPayload) Kind() PayloadKind { return PayloadRiskAssessment }

// Total returns the number of checks.
func (p RiskAssessmentPayload) Total() float64 {
	return p.Failed + p.Warning + p.NotAvailable + p.Passed
}

// Metric is a named numeric field.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ImageRiskPayload carries registry scan counts relative to a total.
type ImageRiskPayload struct {
	TotalImagesScanned float64
	HasTotal           bool
	Metrics            []Metric
}

func (ImageRiskPayload) Kind() PayloadKind { return PayloadImageRisk }

// ProgressBar is a metric expressed as a percentage of the scanned total.
type ProgressBar struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// Bars converts metrics into progress bars. Without a positive total there is
// nothing to measure against and no bars are produced.
func (p ImageRiskPayload) Bars() []ProgressBar {
	if !p.HasTotal || p.TotalImagesScanned <= 0 {
		return nil
	}
	bars := make([]ProgressBar, 0, len(p.Metrics))
	for _, m := range p.Metrics {
		pct := m.Value / p.TotalImagesScanned * 100
		pct = math.Max(0, math.Min(100, pct))
		bars = append(bars, ProgressBar{
			Name:    m.Name,
			Value:   m.Value,
			Percent: math.Round(pct*10) / 10,
		})
	}
	return bars
}

// NotePayload is what the add-widget form produces.
type NotePayload struct {
	Description string
}

func (NotePayload) Kind() PayloadKind { return PayloadNote }

// PlaceholderPayload renders as "no graph data".
type PlaceholderPayload struct {
	Description string
}

func (PlaceholderPayload) Kind() PayloadKind { return PayloadPlaceholder }

// DecodePayload maps an opaque entry onto the variant its category renders.
func DecodePayload(category CategoryKey, entry WidgetEntry) Payload {
	description, _ := entry[fieldDescription].(string)
	switch category {
	case CategoryCSPM:
		if hasAny(entry, fieldConnected, fieldNotConnected) {
			return ConnectivityPayload{
				Connected:    numberField(entry, fieldConnected),
				NotConnected: numberField(entry, fieldNotConnected),
			}
		}
		if hasAny(entry, fieldFailed, fieldWarning, fieldNotAvailable, fieldPassed) {
			return RiskAssessmentPayload{
				Failed:       numberField(entry, fieldFailed),
				Warning:      numberField(entry, fieldWarning),
				NotAvailable: numberField(entry, fieldNotAvailable),
				Passed:       numberField(entry, fieldPassed),
			}
		}
	case CategoryCWPP:
		return PlaceholderPayload{Description: description}
	case CategoryRegistryScan:
		if payload, ok := decodeImageRisk(entry); ok {
			return payload
		}
	}
	if description != "" {
		return NotePayload{Description: description}
	}
	return PlaceholderPayload{}
}

func decodeImageRisk(entry WidgetEntry) (ImageRiskPayload, bool) {
	payload := ImageRiskPayload{}
	if total, ok := numberValue(entry[fieldTotalImagesScanned]); ok {
		payload.TotalImagesScanned = total
		payload.HasTotal = true
	}
	keys := make([]string, 0, len(entry))
	for key := range entry {
		if key == fieldTotalImagesScanned || key == fieldDescription {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if value, ok := numberValue(entry[key]); ok {
			payload.Metrics = append(payload.Metrics, Metric{Name: key, Value: value})
		}
	}
	return payload, payload.HasTotal || len(payload.Metrics) > 0
}

func hasAny(entry WidgetEntry, keys ...string) bool {
	for _, key := range keys {
		if _, ok := numberValue(entry[key]); ok {
			return true
		}
	}
	return false
}

func numberField(entry WidgetEntry, key string) float64 {
	v, _ := numberValue(entry[key])
	return v
}

func numberValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	}
	return 0, false
}
