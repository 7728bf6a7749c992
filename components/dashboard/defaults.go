package dashboard

const (
	// DashboardTitle is the page heading.
	DashboardTitle = "CNAPP Dashboard"
	// DefaultRangeLabel is the time range shown next to the toolbar.
	DefaultRangeLabel = "last 2 days"
	// AddWidgetHeadline introduces the add-widget drawer.
	AddWidgetHeadline = "Personalise your dashboard by adding the following Widget"
	// NoGraphDataMessage is shown for widgets without chartable data.
	NoGraphDataMessage = "No graph data is available"
)

var defaultBreadcrumb = []string{"Home", "Dashboard"}

func countSchema(fields ...string) map[string]any {
	props := map[string]any{
		fieldDescription: map[string]any{"type": "string"},
	}
	for _, field := range fields {
		props[field] = map[string]any{"type": "number", "minimum": 0}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

var defaultCategoryDefinitions = []CategoryDefinition{
	{
		Key:    CategoryCSPM,
		Label:  "CSPM",
		Tab:    "1",
		Schema: countSchema(fieldConnected, fieldNotConnected, fieldFailed, fieldWarning, fieldNotAvailable, fieldPassed),
	},
	{
		Key:    CategoryCWPP,
		Label:  "CWPP",
		Tab:    "2",
		Schema: countSchema(),
	},
	{
		Key:    CategoryRegistryScan,
		Label:  "Image",
		Tab:    "3",
		Schema: countSchema(fieldTotalImagesScanned, "highRisk", "mediumRisk", "lowRisk"),
	},
	{
		Key:    CategoryTicket,
		Label:  "Ticket",
		Tab:    "4",
		Schema: countSchema(),
	},
}

// DefaultCategoryDefinitions returns the built-in category tabs in order.
func DefaultCategoryDefinitions() []CategoryDefinition {
	out := make([]CategoryDefinition, len(defaultCategoryDefinitions))
	copy(out, defaultCategoryDefinitions)
	return out
}

// DefaultSeeds returns the widgets every dashboard starts with.
func DefaultSeeds() []CategorySeed {
	return []CategorySeed{
		{
			Key: CategoryCSPM,
			Widgets: []WidgetItem{
				{Name: "cloud Accounts", Entry: WidgetEntry{
					fieldConnected:    2,
					fieldNotConnected: 2,
				}},
				{Name: "cloud Account RiskAssessment", Entry: WidgetEntry{
					fieldFailed:       1689,
					fieldWarning:      681,
					fieldNotAvailable: 36,
					fieldPassed:       7253,
				}},
			},
		},
		{
			Key: CategoryCWPP,
			Widgets: []WidgetItem{
				{Name: "top5NamespaceSpecificAlerts", Entry: WidgetEntry{}},
				{Name: "workloadAlerts", Entry: WidgetEntry{}},
			},
		},
		{
			Key: CategoryRegistryScan,
			Widgets: []WidgetItem{
				{Name: "imageRiskManagement", Entry: WidgetEntry{
					fieldTotalImagesScanned: 250,
					"highRisk":              30,
					"mediumRisk":            70,
					"lowRisk":               150,
				}},
				{Name: "imageSecurityIssues", Entry: WidgetEntry{}},
			},
		},
		{Key: CategoryTicket},
	}
}

// DefaultState returns revision zero seeded with DefaultSeeds.
func DefaultState() DashboardState {
	return NewState(DefaultSeeds()...)
}
