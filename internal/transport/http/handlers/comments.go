package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/savina-m/comments-engine/internal/models"
	"github.com/savina-m/comments-engine/internal/service"
	apierrors "github.com/savina-m/comments-engine/internal/transport/http/errors"
	"github.com/savina-m/comments-engine/internal/transport/http/middleware"
)

// CreateCommentRequest — тело POST /comments.
type CreateCommentRequest struct {
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// UpdateCommentRequest — тело PATCH /comments/{id}.
type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse — комментарий в выдаче.
type CommentResponse struct {
	ID        uuid.UUID  `json:"id"`
	Content   string     `json:"content"`
	AuthorID  uuid.UUID  `json:"author_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	IsEdited  bool       `json:"is_edited"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CommentViewResponse — комментарий в списках: плюс имя автора и число
// живых прямых ответов.
type CommentViewResponse struct {
	CommentResponse
	Author       string `json:"author"`
	RepliesCount int64  `json:"replies_count"`
}

func toCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		AuthorID:  c.AuthorID,
		ParentID:  c.ParentID,
		IsEdited:  c.IsEdited,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCommentViewResponses(views []models.CommentView) []CommentViewResponse {
	out := make([]CommentViewResponse, 0, len(views))
	for i := range views {
		v := &views[i]
		out = append(out, CommentViewResponse{
			CommentResponse: toCommentResponse(&v.Comment),
			Author:          v.AuthorName,
			RepliesCount:    v.RepliesCount,
		})
	}
	return out
}

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
		return
	}

	var in CreateCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	comment, err := h.svc.CreateComment(r.Context(), service.CreateCommentInput{
		AuthorID: userID,
		ParentID: in.ParentID,
		Content:  in.Content,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCommentResponse(comment))
}

func (h *Handlers) ListTopLevel(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.ListTopLevel(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentViewResponses(views))
}

func (h *Handlers) ListReplies(w http.ResponseWriter, r *http.Request) {
	parentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	views, err := h.svc.ListReplies(r.Context(), parentID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentViewResponses(views))
}

func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
		return
	}

	commentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	var in UpdateCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	comment, err := h.svc.EditComment(r.Context(), service.EditCommentInput{
		CommentID: commentID,
		UserID:    userID,
		Content:   in.Content,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentResponse(comment))
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
		return
	}

	commentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	if err := h.svc.DeleteComment(r.Context(), commentID, userID); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) RestoreComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
		return
	}

	commentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	comment, err := h.svc.RestoreComment(r.Context(), commentID, userID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentResponse(comment))
}
