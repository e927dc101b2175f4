package recommended

// MaxCategories is the number of recommended products a scene presents.
const MaxCategories = 5

// Response is the recommendation service payload for one goal.
// It is never modified after it has been fetched.
type Response struct {
	VibeAnalysis string    `json:"vibe_analysis"`
	Products     []Product `json:"products"`
}

// Product is a recommended product category. Products are addressed by
// their position in Response.Products; they carry no stable id.
type Product struct {
	Name     string `json:"name"`
	Reason   string `json:"reason"`
	Category string `json:"category"`
}

// Categories returns at most MaxCategories products.
func (r Response) Categories() []Product {
	if len(r.Products) <= MaxCategories {
		return r.Products
	}
	return r.Products[:MaxCategories]
}
