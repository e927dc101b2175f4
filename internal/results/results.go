package results

import (
	"fmt"
	"net/url"
	"time"
)

// Snapshot is a one-shot handoff of recommendations to the results list
// view. Recommendations holds the JSON-encoded recommendation payload and
// OriginalGoal the goal text, mirroring the two values the upstream flow writes.
type Snapshot struct {
	ID              string    `json:"id"`
	Recommendations string    `json:"recommendations"`
	OriginalGoal    string    `json:"originalGoal"`
	CreatedAt       time.Time `json:"createdAt"`
}

// View is what the results list renders.
type View struct {
	Goal         string        `json:"goal"`
	VibeAnalysis string        `json:"vibe_analysis"`
	Products     []ProductCard `json:"products"`
}

type ProductCard struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
	Category  string `json:"category"`
	BrowseURL string `json:"browseUrl"`
}

// BrowseURL links a recommended product to the product browsing route.
func BrowseURL(index int, name string) string {
	return fmt.Sprintf("/suggested_products?index=%d&productName=%s", index, url.QueryEscape(name))
}
