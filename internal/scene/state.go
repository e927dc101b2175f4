package scene

import "github.com/wichananm65/shop-for-outcomes/internal/product"

// State is the selection state of a scene. It is exactly one of
// Unselected, Selected or Detail.
type State interface {
	Name() string
	isState()
}

// Unselected shows all recommended categories and no search results.
type Unselected struct{}

// Selected shows the search results for the category at Index.
type Selected struct {
	Index int
}

// Detail is nested inside Selected and shows one search result in full.
type Detail struct {
	Index   int
	Product product.SearchProduct
}

func (Unselected) Name() string { return "unselected" }
func (Selected) Name() string   { return "selected" }
func (Detail) Name() string     { return "detail" }

func (Unselected) isState() {}
func (Selected) isState()   {}
func (Detail) isState()     {}

// selectedIndex returns the category index for Selected and Detail states.
func selectedIndex(s State) (int, bool) {
	switch st := s.(type) {
	case Selected:
		return st.Index, true
	case Detail:
		return st.Index, true
	default:
		return 0, false
	}
}
