package handler

import (
	"errors"
	"net/http"

	"github.com/tanguyors/bali-pass-home/internal/domain/favorites"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
)

type FavoritesHandler struct {
	favoritesService favorites.ServiceInterface
}

func NewFavoritesHandler(favoritesService favorites.ServiceInterface) *FavoritesHandler {
	return &FavoritesHandler{favoritesService: favoritesService}
}

func (h *FavoritesHandler) PostOffersOfferIdFavorite(w http.ResponseWriter, r *http.Request, offerId string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	res, err := h.favoritesService.Toggle(r.Context(), userID, offerId)
	if err != nil {
		if errors.Is(err, favorites.ErrOfferNotFound) {
			helpers.WriteError(w, http.StatusNotFound, "Offer not found")
			return
		}
		internalError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}

func (h *FavoritesHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	list, err := h.favoritesService.List(r.Context(), userID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, list)
}
