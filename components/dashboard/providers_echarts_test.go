package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEChartsProviderRendersPie(t *testing.T) {
	provider := NewEChartsProvider("pie", WithChartCache(NewChartCache(time.Minute)))
	html, err := provider.Render("cloud", "cloud Accounts", []ChartPoint{
		{Label: "Connected", Value: 2},
		{Label: "Not Connected", Value: 2},
	})
	require.NoError(t, err)
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Not Connected")
}

func TestEChartsProviderRendersBar(t *testing.T) {
	provider := NewEChartsProvider("BAR", WithChartCache(nil), WithChartAssetsHost("https://cdn.example.com/echarts/"))
	assert.Equal(t, "bar", provider.ChartType())
	html, err := provider.Render("images", "imageRiskManagement", []ChartPoint{
		{Label: "highRisk", Value: 30},
	})
	require.NoError(t, err)
	assert.Contains(t, html, "https://cdn.example.com/echarts/")
	assert.Contains(t, html, "highRisk")
}

func TestEChartsProviderAppliesPalette(t *testing.T) {
	provider := NewEChartsProvider("pie", WithChartCache(nil), WithChartColors("#123abc", "#def456"))
	html, err := provider.Render("palette", "cloud Accounts", []ChartPoint{
		{Label: "Connected", Value: 1},
		{Label: "Not Connected", Value: 3},
	})
	require.NoError(t, err)
	assert.Contains(t, html, "#123abc")
	assert.Contains(t, html, "#def456")
	assert.NotContains(t, html, defaultChartColors[0])

	unchanged := NewEChartsProvider("pie", WithChartColors())
	assert.Equal(t, defaultChartColors, unchanged.colors)
}

func TestEChartsProviderRejectsEmptyAndUnknown(t *testing.T) {
	_, err := NewEChartsProvider("pie").Render("k", "t", nil)
	require.Error(t, err)

	_, err = NewEChartsProvider("radar", WithChartCache(nil)).Render("k", "t", []ChartPoint{{Label: "a", Value: 1}})
	require.Error(t, err)
}

func TestEChartsProviderUsesCache(t *testing.T) {
	cache := NewChartCache(time.Minute)
	provider := NewEChartsProvider("pie", WithChartCache(cache))
	points := []ChartPoint{{Label: "a", Value: 1}}
	first, err := provider.Render("same", "t", points)
	require.NoError(t, err)
	second, err := provider.Render("same", "t", []ChartPoint{{Label: "b", Value: 9}})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestPostureCardProviderVariants(t *testing.T) {
	provider := NewPostureCardProvider(WithChartCache(NewChartCache(time.Minute)))
	ctx := context.Background()
	defs := map[CategoryKey]CategoryDefinition{}
	for _, def := range DefaultCategoryDefinitions() {
		defs[def.Key] = def
	}
	card := func(key CategoryKey, name string, entry WidgetEntry) CardData {
		t.Helper()
		data, err := provider.Card(ctx, CardContext{
			Category: defs[key],
			Widget:   WidgetItem{Name: name, Entry: entry},
		})
		require.NoError(t, err)
		return data
	}

	connectivity := card(CategoryCSPM, "cloud Accounts", WidgetEntry{"connected": 2, "notConnected": 2})
	assert.Equal(t, string(PayloadConnectivity), connectivity["kind"])
	assert.Equal(t, "4", connectivity["total"])
	assert.Contains(t, connectivity["chart_html"], "echarts")

	risk := card(CategoryCSPM, "cloud Account RiskAssessment", WidgetEntry{
		"failed": 1689, "warning": 681, "notAvailable": 36, "passed": 7253,
	})
	assert.Equal(t, string(PayloadRiskAssessment), risk["kind"])
	assert.Equal(t, "9659", risk["total"])
	assert.Len(t, risk["legend"], 4)

	images := card(CategoryRegistryScan, "imageRiskManagement", WidgetEntry{
		"totalImagesScanned": 250, "highRisk": 30, "mediumRisk": 70, "lowRisk": 150,
	})
	assert.Equal(t, string(PayloadImageRisk), images["kind"])
	bars, ok := images["bars"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, bars, 3)
	assert.Equal(t, "highRisk", bars[0]["name"])
	assert.Equal(t, 12.0, bars[0]["percent"])

	cwpp := card(CategoryCWPP, "workloadAlerts", WidgetEntry{})
	assert.Equal(t, NoGraphDataMessage, cwpp["message"])

	note := card(CategoryTicket, "open tickets", WidgetEntry{"description": "triage queue"})
	assert.Equal(t, string(PayloadNote), note["kind"])
	assert.Equal(t, "triage queue", note["description"])

	empty := card(CategoryRegistryScan, "imageSecurityIssues", WidgetEntry{})
	assert.Equal(t, NoGraphDataMessage, empty["message"])
}
