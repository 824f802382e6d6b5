// Package favsync keeps favorite toggle controls in step with the user's
// favorite set on the backend.
//
// A page renders two kinds of controls, both carrying the recipe id:
//
//	<button class="btn favorite-btn" data-recipe-id="42"><i class="far fa-heart"></i> Save Recipe</button>
//	<button class="btn btn-light favorite-toggle" data-recipe-id="42"><i class="far fa-heart"></i></button>
//
// Setup binds each control once and reads its initial state from that
// markup. From then on the Control's State is the only source of truth:
// every transition re-renders the control from its state.
//
// On load, CheckFavorites marks the controls whose recipes the backend
// reports as favorites. A click goes through HandleToggle, which adds or
// removes the favorite depending on the state and reports the outcome with
// a notification. While a request for a control is in flight further
// toggles of that control are rejected with ErrPending.
package favsync
