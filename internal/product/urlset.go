package product

// URLSet remembers which product URLs have already been shown for one
// selected category. The zero value is not usable; call NewURLSet.
type URLSet struct {
	urls map[string]struct{}
}

func NewURLSet() URLSet {
	return URLSet{urls: make(map[string]struct{})}
}

// Add records the URLs of the given products.
func (s URLSet) Add(products ...SearchProduct) {
	for _, p := range products {
		s.urls[p.URL] = struct{}{}
	}
}

func (s URLSet) Has(url string) bool {
	_, ok := s.urls[url]
	return ok
}

func (s URLSet) Len() int {
	return len(s.urls)
}

// Clone returns an independent copy.
func (s URLSet) Clone() URLSet {
	out := URLSet{urls: make(map[string]struct{}, len(s.urls))}
	for u := range s.urls {
		out.urls[u] = struct{}{}
	}
	return out
}

// Unseen returns the products whose URL is not in the set, preserving order.
func (s URLSet) Unseen(products []SearchProduct) []SearchProduct {
	out := make([]SearchProduct, 0, len(products))
	for _, p := range products {
		if !s.Has(p.URL) {
			out = append(out, p)
		}
	}
	return out
}
