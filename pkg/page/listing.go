package page

import (
	"fmt"
	"strconv"

	"github.com/vango-dev/recipebox/pkg/api"
	. "github.com/vango-dev/recipebox/pkg/vdom"
)

// RootID is the id of the element the page document is rooted at.
const RootID = "app"

// Flash is a server-side message shown at the top of the page and
// dismissed automatically.
type Flash struct {
	Category string // Bootstrap alert level, e.g. "warning"
	Message  string
}

// ToggleID returns the element id of the card toggle for recipeID.
func ToggleID(recipeID string) string { return "fav-toggle-" + recipeID }

// ButtonID returns the element id of the detail button for recipeID.
func ButtonID(recipeID string) string { return "fav-btn-" + recipeID }

// Listing renders the recipe listing. Every favorite control starts
// unfavorited; the session reconciles them against the backend.
func Listing(page *api.RecipePage, flashes []Flash) *VNode {
	var recipes []api.Recipe
	var pagination api.Pagination
	if page != nil {
		recipes = page.Recipes
		pagination = page.Pagination
	}

	return Div(ID(RootID), Class("container", "py-4"),
		H1(Class("mb-4"), "Recipes"),
		Div(ID("flashes"), Range(flashes, func(f Flash, _ int) *VNode {
			return flashAlert(f)
		})),
		emptyState(len(recipes)),
		Div(ID("recipes"), Class("row"), Range(recipes, func(r api.Recipe, _ int) *VNode {
			return recipeCard(r)
		})),
		paginationNav(pagination),
	)
}

// BuildDocument builds the session document for a listing.
func BuildDocument(page *api.RecipePage, flashes []Flash) *Document {
	return NewDocument(Listing(page, flashes))
}

func flashAlert(f Flash) *VNode {
	category := f.Category
	if category == "" {
		category = "info"
	}
	return Div(
		Class("alert", "alert-"+category, "alert-dismissible", "fade", "show"),
		Role("alert"),
		Text(f.Message),
		Button(Type("button"), Class("btn-close"), Data("bs-dismiss", "alert"), AriaLabel("Close")),
	)
}

func emptyState(n int) *VNode {
	if n > 0 {
		return nil
	}
	return P(Class("text-muted"), "No recipes found.")
}

func recipeCard(r api.Recipe) *VNode {
	var image *VNode
	if r.ImageURL != "" {
		image = Img(Src(r.ImageURL), Class("card-img-top"), Alt(r.Name))
	}

	return Div(Class("col-md-4", "mb-4"),
		Div(ID("recipe-"+r.ID), Class("card", "h-100"),
			image,
			Div(Class("card-body"),
				Div(Class("d-flex", "justify-content-between", "align-items-start"),
					H5(Class("card-title"), A(Href("/recipes/"+r.ID), r.Name)),
					Button(
						ID(ToggleID(r.ID)),
						Type("button"),
						Class("btn", "btn-light", "btn-sm", "favorite-toggle"),
						Data("recipe-id", r.ID),
						AriaLabel("Toggle favorite"),
						I(Class("far", "fa-heart")),
					),
				),
				P(Class("card-text"),
					Span(Class("badge", "bg-secondary", "me-1"), r.Cuisine),
					Span(Class("badge", difficultyBadge(r.Difficulty)), r.Difficulty),
				),
				timeInfo(r),
				Button(
					ID(ButtonID(r.ID)),
					Type("button"),
					Class("btn", "btn-outline-danger", "btn-sm", "favorite-btn"),
					Data("recipe-id", r.ID),
					I(Class("far", "fa-heart")), " Save Recipe",
				),
			),
		),
	)
}

func timeInfo(r api.Recipe) *VNode {
	total := r.TotalTime()
	if total == 0 {
		return nil
	}
	return P(
		Small(
			Class("text-muted"),
			Data("bs-toggle", "tooltip"),
			TitleAttr(fmt.Sprintf("Prep: %d min, Cook: %d min", r.PreparationTime, r.CookingTime)),
			I(Class("far", "fa-clock")),
			Textf(" %d min", total),
		),
	)
}

func difficultyBadge(difficulty string) string {
	switch difficulty {
	case "Easy":
		return "bg-success"
	case "Medium":
		return "bg-warning"
	case "Hard":
		return "bg-danger"
	}
	return "bg-secondary"
}

func paginationNav(p api.Pagination) *VNode {
	if p.TotalPages <= 1 {
		return nil
	}
	items := make([]*VNode, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		class := []string{"page-item"}
		if i == p.Page {
			class = append(class, "active")
		}
		items = append(items, Li(Class(class...),
			A(Class("page-link"), Href("/?page="+strconv.Itoa(i)), strconv.Itoa(i)),
		))
	}
	return Ul(ID("pagination"), Class("pagination", "justify-content-center"), items)
}
