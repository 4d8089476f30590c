package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/kalakriti/app/services"
	"github.com/shashiranjanraj/kalakriti/pkg/bind"
	"github.com/shashiranjanraj/kalakriti/pkg/middleware"
	"github.com/shashiranjanraj/kalakriti/pkg/rbac"
	"github.com/shashiranjanraj/kalakriti/pkg/response"
)

type DownloadController struct {
	downloads *services.DownloadService
}

func NewDownloadController(downloads *services.DownloadService) *DownloadController {
	return &DownloadController{downloads: downloads}
}

// Link issues a signed download URL for a purchased product. Holders of
// the download-any capability bypass the purchase check.
func (c *DownloadController) Link(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	grant, err := c.downloads.Grant(r.Context(), services.DownloadRequest{
		UserID:    claims.UserID,
		ProductID: chi.URLParam(r, "id"),
		Bypass:    rbac.NewSet(claims.Capabilities).Has(rbac.CapDownloadAny),
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, grant)
}

type uploadRequest struct {
	ContentType string `json:"content_type" validate:"required"`
	Public      bool   `json:"public" validate:"nullable"`
}

// Upload mints a signed PUT URL. Public keys (avatars, previews) are open
// to any account; private product assets need the upload-private capability.
func (c *DownloadController) Upload(w http.ResponseWriter, r *http.Request) {
	var body uploadRequest
	if !bind.Request(w, r, &body) {
		return
	}

	if !body.Public {
		claims, ok := middleware.ClaimsFromCtx(r.Context())
		if !ok {
			response.Unauthorized(w)
			return
		}
		if !rbac.NewSet(claims.Capabilities).Has(rbac.CapUploadPrivate) {
			response.Forbidden(w)
			return
		}
	}

	grant, err := c.downloads.IssueUpload(r.Context(), body.ContentType, body.Public)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, grant)
}

// PublicFile redirects to a signed URL for a public asset. No auth: this
// serves previews and thumbnails, and the service rejects any key outside
// the public namespace.
func (c *DownloadController) PublicFile(w http.ResponseWriter, r *http.Request) {
	key := "public/" + chi.URLParam(r, "*")
	url, err := c.downloads.PublicFileURL(r.Context(), key)
	if err != nil {
		response.FromError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
