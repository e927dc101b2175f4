package scene

import "github.com/wichananm65/shop-for-outcomes/internal/product"

// View is the JSON shape of a scene.
type View struct {
	ID            string         `json:"id"`
	Goal          string         `json:"goal"`
	VibeAnalysis  string         `json:"vibe_analysis"`
	State         string         `json:"state"`
	SelectedIndex *int           `json:"selectedIndex,omitempty"`
	Categories    []CategoryView `json:"categories"`
	Results       []ResultView   `json:"results"`
	Detail        *DetailView    `json:"detail,omitempty"`
	Loading       bool           `json:"loading"`
	Refreshing    bool           `json:"refreshing"`
	ShownCount    int            `json:"shownCount"`
}

type CategoryView struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Reason   string `json:"reason"`
	Category string `json:"category"`
	Selected bool   `json:"selected"`
}

type ResultView struct {
	product.SearchProduct
	PriceLabel string `json:"priceLabel"`
	// Placeholder marks the card whose product is open in the detail panel.
	Placeholder bool `json:"placeholder"`
}

type DetailView struct {
	product.SearchProduct
	PriceLabel string `json:"priceLabel"`
	Stars      int    `json:"stars"`
}

func (s *Scene) viewLocked() View {
	v := View{
		ID:           s.ID,
		Goal:         s.Goal,
		VibeAnalysis: s.recs.VibeAnalysis,
		State:        s.state.Name(),
		Loading:      s.loading,
		Refreshing:   s.refreshing,
		ShownCount:   s.shown.Len(),
		Categories:   []CategoryView{},
		Results:      []ResultView{},
	}

	index, selected := selectedIndex(s.state)
	if selected {
		i := index
		v.SelectedIndex = &i
	}
	for i, p := range s.recs.Categories() {
		v.Categories = append(v.Categories, CategoryView{
			Index:    i,
			Name:     p.Name,
			Reason:   p.Reason,
			Category: p.Category,
			Selected: selected && i == index,
		})
	}

	openURL := ""
	if d, ok := s.state.(Detail); ok {
		openURL = d.Product.URL
		v.Detail = &DetailView{SearchProduct: d.Product, PriceLabel: d.Product.PriceLabel(), Stars: d.Product.Stars()}
	}
	for _, p := range s.results {
		v.Results = append(v.Results, ResultView{
			SearchProduct: p,
			PriceLabel:    p.PriceLabel(),
			Placeholder:   openURL != "" && p.URL == openURL,
		})
	}
	return v
}
