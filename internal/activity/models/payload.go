package models

// Fixed parts of the A/B activity created by this app: one mbox location,
// one option, a 50/50 Control/Variation split and a page-view metric.
const (
	DefaultMbox      = "default"
	DefaultPriority  = 5
	PageViewMetricID = 32767
)

type ABActivity struct {
	Name        string       `json:"name"`
	State       string       `json:"state"`
	Priority    int          `json:"priority"`
	Workspace   string       `json:"workspace"`
	Locations   Locations    `json:"locations"`
	Options     []Option     `json:"options"`
	Experiences []Experience `json:"experiences"`
	Metrics     []Metric     `json:"metrics"`
	PropertyIDs []any        `json:"propertyIds,omitempty"`
}

type Locations struct {
	Mboxes []MboxLocation `json:"mboxes"`
}

type MboxLocation struct {
	LocationLocalID int    `json:"locationLocalId"`
	Name            string `json:"name"`
}

type Option struct {
	OptionLocalID int `json:"optionLocalId"`
	OfferID       any `json:"offerId"`
}

type OptionLocation struct {
	LocationLocalID int `json:"locationLocalId"`
	OptionLocalID   int `json:"optionLocalId"`
}

type Experience struct {
	ExperienceLocalID int              `json:"experienceLocalId"`
	Name              string           `json:"name"`
	VisitorPercentage int              `json:"visitorPercentage"`
	OptionLocations   []OptionLocation `json:"optionLocations"`
}

type Metric struct {
	MetricLocalID int          `json:"metricLocalId"`
	Name          string       `json:"name"`
	Conversion    bool         `json:"conversion"`
	Mboxes        []MetricMbox `json:"mboxes"`
	Action        MetricAction `json:"action"`
}

type MetricMbox struct {
	Name         string `json:"name"`
	SuccessEvent string `json:"successEvent"`
}

type MetricAction struct {
	Type string `json:"type"`
}

// NewABActivity builds the payload for a two-experience A/B test serving
// offerID in the default mbox. propertyIDs is omitted when empty.
func NewABActivity(name, state, workspaceID string, offerID any, propertyIDs []any) ABActivity {
	if state == "" {
		state = StateSaved
	}
	both := []OptionLocation{{LocationLocalID: 0, OptionLocalID: 0}}
	return ABActivity{
		Name:      name,
		State:     state,
		Priority:  DefaultPriority,
		Workspace: workspaceID,
		Locations: Locations{Mboxes: []MboxLocation{{LocationLocalID: 0, Name: DefaultMbox}}},
		Options:   []Option{{OptionLocalID: 0, OfferID: offerID}},
		Experiences: []Experience{
			{ExperienceLocalID: 0, Name: "Control", VisitorPercentage: 50, OptionLocations: both},
			{ExperienceLocalID: 1, Name: "Variation 1", VisitorPercentage: 50, OptionLocations: both},
		},
		Metrics: []Metric{{
			MetricLocalID: PageViewMetricID,
			Name:          "Page Views",
			Conversion:    true,
			Mboxes:        []MetricMbox{{Name: DefaultMbox, SuccessEvent: "mbox_shown"}},
			Action:        MetricAction{Type: "count_once"},
		}},
		PropertyIDs: propertyIDs,
	}
}
