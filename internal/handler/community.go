package handler

import (
	"errors"
	"net/http"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/community"
	"github.com/tanguyors/bali-pass-home/internal/domain/session"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
)

type CommunityHandler struct {
	communityService community.ServiceInterface
}

func NewCommunityHandler(communityService community.ServiceInterface) *CommunityHandler {
	return &CommunityHandler{communityService: communityService}
}

func (h *CommunityHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, community.ErrPostNotFound):
		helpers.WriteError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, community.ErrEmptyBody):
		helpers.WriteError(w, http.StatusBadRequest, "body is required")
	default:
		internalError(w, r, err)
	}
}

func (h *CommunityHandler) GetCommunityPosts(w http.ResponseWriter, r *http.Request, params api.GetCommunityPostsParams) {
	page := 0
	if params.Page != nil {
		page = *params.Page
	}
	posts, err := h.communityService.ListPosts(r.Context(), session.UserID(r.Context()), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, posts)
}

func (h *CommunityHandler) PostCommunityPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body api.PostCommunityPostsJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	post, err := h.communityService.CreatePost(r.Context(), userID, body.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, post)
}

func (h *CommunityHandler) PostCommunityPostsPostIdLike(w http.ResponseWriter, r *http.Request, postId string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	res, err := h.communityService.ToggleLike(r.Context(), userID, postId)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}

func (h *CommunityHandler) GetCommunityPostsPostIdComments(w http.ResponseWriter, r *http.Request, postId string) {
	comments, err := h.communityService.ListComments(r.Context(), postId)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, comments)
}

func (h *CommunityHandler) PostCommunityPostsPostIdComments(w http.ResponseWriter, r *http.Request, postId string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body api.PostCommunityPostsPostIdCommentsJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	c, err := h.communityService.AddComment(r.Context(), userID, postId, body.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, c)
}
