package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meridianpress/newsdesk/internal/common"
	"github.com/meridianpress/newsdesk/internal/server/auth"
	"github.com/meridianpress/newsdesk/internal/server/signoff"
)

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	// ?q= narrows the listing to the given comma-separated author codes
	if q := r.URL.Query().Get("q"); q != "" {
		items, err := s.profiles.FindByUserIDs(r.Context(), strings.Split(q, ","))
		if err != nil {
			writeError(r.Context(), w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"_items": items})
		return
	}

	limit := queryInt(r, "max_results", 25)
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}

	items, err := s.profiles.Find(r.Context(), limit, (page-1)*limit)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"_items": items})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.FindOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// reviewRequestBody is the editor-facing request to send sign-off review
// requests for an article.
type reviewRequestBody struct {
	RequesterID string   `json:"requester_id"`
	Authors     []string `json:"authors"`
}

func (s *Server) handleRequestReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body := reviewRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(ctx, w, s.logger, common.BadRequest("invalid request body"))
		return
	}

	requesterID, err := uuid.Parse(body.RequesterID)
	if err != nil {
		writeError(ctx, w, s.logger, common.BadRequest("requester_id %q is not a valid identifier", body.RequesterID))
		return
	}

	userIDs := make([]uuid.UUID, 0, len(body.Authors))
	for _, raw := range body.Authors {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(ctx, w, s.logger, common.BadRequest("author id %q is not a valid identifier", raw))
			return
		}
		userIDs = append(userIDs, id)
	}

	if err := s.signoffs.RequestReviews(ctx, chi.URLParam(r, "item_id"), requesterID, userIDs); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "requested"})
}

// handleApprovalView serves the article to a token-bearing author: the
// current content with profile-enriched authors, asset URLs rewritten to
// token-gated ones, and the current sign-off record.
func (s *Server) handleApprovalView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := s.verifier.Verify(chi.URLParam(r, "token"), auth.ScopeAuthorApproval)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	authorID, err := claims.AuthorUUID()
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	item, err := s.signoffs.GetItem(ctx, claims.ItemID)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	view := item.Clone()
	if err := s.profiles.EnrichItemAuthors(ctx, view); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	if err := s.signoffs.TokenizeAssetURLs(view, authorID); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	record, err := s.signoffs.Record(ctx, view)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"author_id":        claims.AuthorID,
		"item":             view,
		"publish_sign_off": record,
	})
}

func (s *Server) handleSign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := s.verifier.Verify(chi.URLParam(r, "token"), auth.ScopeAuthorApproval)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	authorID, err := claims.AuthorUUID()
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	sub := signoff.Submission{}
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(ctx, w, s.logger, common.BadRequest("invalid request body"))
		return
	}
	// the token, not the body, decides who is signing
	sub.UserID = authorID

	if err := s.signoffs.RecordSignOff(ctx, claims.ItemID, sub); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "signed"})
}

func (s *Server) handleRemoveSignOff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(ctx, w, s.logger, common.BadRequest("user id is not a valid identifier"))
		return
	}

	if err := s.signoffs.RemoveSignOff(ctx, chi.URLParam(r, "item_id"), userID); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleAssetDownload redirects a valid upload-raw token to a presigned
// object store URL. Requests are rate limited per author so a leaked link
// stays contained.
func (s *Server) handleAssetDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := s.verifier.Verify(chi.URLParam(r, "token"), auth.ScopeUploadRaw)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	if !s.limiters.allow(claims.AuthorID) {
		writeJSON(w, http.StatusTooManyRequests, errorBody{
			Code:    http.StatusTooManyRequests,
			Message: "too many requests",
		})
		return
	}

	url, err := s.assets.PresignGet(ctx, claims.ItemID)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

func (s *Server) handleCrossrefExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	item, err := s.signoffs.GetItem(ctx, chi.URLParam(r, "item_id"))
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	out, err := s.formatter.Export(ctx, item)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
