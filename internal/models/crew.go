// Package models defines the domain types for crew time report records.
package models

// Day is a single day's time entry for one crew member. Times are 4-digit
// military-time strings ("0800", "1630") or empty when not worked.
type Day struct {
	Date string `json:"date"`
	On   string `json:"on"`
	Off  string `json:"off"`
}

// CrewMember is one row of the time report table.
type CrewMember struct {
	Name           string `json:"name"`
	Classification string `json:"classification"`
	Days           []Day  `json:"days"`
}

// CheckboxStates holds the remark flags printed on the report footer.
type CheckboxStates struct {
	NoMealsLodging bool `json:"noMealsLodging"`
	NoMeals        bool `json:"noMeals"`
	Travel         bool `json:"travel"`
	NoLunch        bool `json:"noLunch"`
	Hotline        bool `json:"hotline"`
}

// CrewInfo is the free-form header/footer metadata for a report.
type CrewInfo struct {
	CrewName       string         `json:"crewName"`
	CrewNumber     string         `json:"crewNumber"`
	FireName       string         `json:"fireName"`
	FireNumber     string         `json:"fireNumber"`
	CheckboxStates CheckboxStates `json:"checkboxStates"`
	CustomEntries  []string       `json:"customEntries,omitempty"`
}
