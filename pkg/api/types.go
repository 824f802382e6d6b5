package api

// Recipe is a recipe as returned by the backend's API representation.
// Only the fields the listing page shows are decoded.
type Recipe struct {
	ID              string   `json:"_id"`
	Name            string   `json:"name"`
	Cuisine         string   `json:"cuisine"`
	Difficulty      string   `json:"difficulty"`
	Tags            []string `json:"tags,omitempty"`
	ImageURL        string   `json:"image_url,omitempty"`
	PreparationTime int      `json:"preparation_time,omitempty"`
	CookingTime     int      `json:"cooking_time,omitempty"`
	UserID          string   `json:"user_id,omitempty"`
}

// TotalTime returns preparation plus cooking time in minutes.
func (r Recipe) TotalTime() int {
	return r.PreparationTime + r.CookingTime
}

// Pagination is the listing pagination metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// RecipePage is one page of the recipe listing.
type RecipePage struct {
	Recipes    []Recipe   `json:"recipes"`
	Pagination Pagination `json:"pagination"`
}

// StatusResponse is the payload of favorite mutations.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the backend reported success.
func (s StatusResponse) OK() bool {
	return s.Status == "success"
}

// IDs returns the identifiers of recipes, in order.
func IDs(recipes []Recipe) []string {
	ids := make([]string, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	return ids
}
