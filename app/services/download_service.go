package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/kalakriti/app/jobs"
	"github.com/shashiranjanraj/kalakriti/config"
	"github.com/shashiranjanraj/kalakriti/pkg/apperr"
	"github.com/shashiranjanraj/kalakriti/pkg/event"
	"github.com/shashiranjanraj/kalakriti/pkg/logger"
	"github.com/shashiranjanraj/kalakriti/pkg/metrics"
	"github.com/shashiranjanraj/kalakriti/pkg/queue"
	"github.com/shashiranjanraj/kalakriti/pkg/storage"
)

// DownloadGrant is what the client receives instead of file bytes: a
// signed URL and the moment it stops working. Once issued, the URL stays
// valid for its full window even if entitlement is later revoked.
type DownloadGrant struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DownloadRequest carries request metadata for the audit trail.
type DownloadRequest struct {
	UserID    string
	ProductID string
	Bypass    bool
	IP        string
	UserAgent string
}

// DownloadService sequences entitlement, signing, and audit. The check
// always happens before the URL is minted, never after.
type DownloadService struct {
	entitlements *EntitlementService
	store        storage.Store
}

func NewDownloadService(entitlements *EntitlementService, store storage.Store) *DownloadService {
	return &DownloadService{entitlements: entitlements, store: store}
}

// Grant issues a signed download URL for the product, or a Forbidden
// error when the user never bought it. A product that no longer exists is
// reported as discontinued, never as an ownership refusal, so buyers of a
// since-removed asset get an honest answer. The audit row is queued after
// the URL exists; a logging failure never costs anyone their download.
func (s *DownloadService) Grant(ctx context.Context, req DownloadRequest) (DownloadGrant, error) {
	key, err := s.entitlements.ResolveFileKey(ctx, req.ProductID)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			metrics.DownloadsIssued.WithLabelValues("denied").Inc()
		} else {
			metrics.DownloadsIssued.WithLabelValues("error").Inc()
		}
		return DownloadGrant{}, err
	}

	ok, err := s.entitlements.CanDownload(ctx, req.UserID, req.ProductID, req.Bypass)
	if err != nil {
		metrics.DownloadsIssued.WithLabelValues("error").Inc()
		return DownloadGrant{}, err
	}
	if !ok {
		metrics.DownloadsIssued.WithLabelValues("denied").Inc()
		return DownloadGrant{}, apperr.New(apperr.Forbidden, "product not purchased")
	}

	ttl := config.DownloadTTL()
	url, err := s.store.PresignDownload(ctx, key, ttl)
	if err != nil {
		metrics.SigningFailures.Inc()
		metrics.DownloadsIssued.WithLabelValues("error").Inc()
		logger.WithCtx(ctx).Error("download: presign failed", "product_id", req.ProductID, "error", err)
		return DownloadGrant{}, apperr.New(apperr.Unavailable, "could not generate download link")
	}

	if err := queue.Dispatch(&jobs.DownloadLogJob{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		IP:        req.IP,
		UserAgent: req.UserAgent,
	}); err != nil {
		logger.WithCtx(ctx).Warn("download: audit dispatch failed", "error", err)
	}

	metrics.DownloadsIssued.WithLabelValues("granted").Inc()
	event.FireAsync(event.DownloadIssued, map[string]string{
		"user_id":    req.UserID,
		"product_id": req.ProductID,
	})

	return DownloadGrant{URL: url, ExpiresAt: time.Now().Add(ttl)}, nil
}

// UploadGrant is a signed PUT URL plus the key the object will live at.
type UploadGrant struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// IssueUpload mints a signed upload URL under the right namespace.
// Private uploads require the upload-private capability, enforced by the
// route; the service only places the key.
func (s *DownloadService) IssueUpload(ctx context.Context, contentType string, public bool) (UploadGrant, error) {
	if contentType == "" {
		return UploadGrant{}, apperr.New(apperr.Validation, "content type is required")
	}

	key := storage.NewUploadKey(contentType, public)
	url, err := s.store.PresignUpload(ctx, key, contentType, config.DownloadTTL())
	if err != nil {
		metrics.SigningFailures.Inc()
		logger.WithCtx(ctx).Error("upload: presign failed", "key", key, "error", err)
		return UploadGrant{}, apperr.New(apperr.Unavailable, "could not generate upload link")
	}
	return UploadGrant{URL: url, Key: key}, nil
}

// PublicFileURL signs a URL for a key in the public namespace. Keys
// outside public/ are rejected so this unauthenticated path can never
// reach a product file.
func (s *DownloadService) PublicFileURL(ctx context.Context, key string) (string, error) {
	if !storage.IsPublic(key) {
		return "", apperr.New(apperr.NotFound, "file not found")
	}
	url, err := s.store.PresignDownload(ctx, key, config.DownloadTTL())
	if err != nil {
		metrics.SigningFailures.Inc()
		logger.WithCtx(ctx).Error("public file: presign failed", "key", key, "error", err)
		return "", apperr.New(apperr.Unavailable, "could not generate link")
	}
	return url, nil
}
