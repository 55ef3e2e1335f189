// Package storagelocation resolves browsable URLs for documents hosted in
// an external storage provider. Two providers are supported: SharePoint,
// which requires an upstream metadata lookup, and Confluence, where the URL
// is composed deterministically.
package storagelocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/complyforge/docregistry/pkg/models"
)

// DefaultLookupTimeout bounds the SharePoint metadata call.
const DefaultLookupTimeout = 10 * time.Second

// Config holds the static configuration for URL resolution. All values are
// injected at construction; the resolver reads no ambient state.
type Config struct {
	// SharePointBaseURL is the Microsoft Graph endpoint,
	// e.g. "https://graph.microsoft.com/v1.0". Empty disables SharePoint
	// resolution.
	SharePointBaseURL string

	// DefaultSiteID and DefaultDriveID fill in for documents that omit
	// their own site/drive identifiers.
	DefaultSiteID  string
	DefaultDriveID string

	// ConfluenceBaseURL is the Confluence deployment address,
	// e.g. "https://example.atlassian.net". Empty disables Confluence
	// resolution.
	ConfluenceBaseURL string

	// LookupTimeout bounds the upstream SharePoint call. Zero means
	// DefaultLookupTimeout.
	LookupTimeout time.Duration
}

// Resolver resolves storage identifiers to browsable URLs.
type Resolver struct {
	cfg    Config
	client *http.Client
	log    hclog.Logger
}

// New creates a resolver.
func New(cfg Config, log hclog.Logger) *Resolver {
	timeout := cfg.LookupTimeout
	if timeout == 0 {
		timeout = DefaultLookupTimeout
	}

	return &Resolver{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Resolve returns the browsable URL for the given identifier set, or nil
// when the set is incomplete, required configuration or credentials are
// absent, or the upstream lookup fails. Resolution failures are logged,
// never returned; a nil URL is always a valid outcome.
func (r *Resolver) Resolve(
	ctx context.Context,
	location string,
	ids models.StorageSnapshot,
	accessToken string,
) *string {
	switch location {
	case models.StorageLocationSharePoint:
		return r.resolveSharePoint(ctx, ids, accessToken)
	case models.StorageLocationConfluence:
		return r.resolveConfluence(ids)
	default:
		r.log.Warn("unknown storage location", "storage_location", location)
		return nil
	}
}

// resolveSharePoint looks up the item's webUrl via the Graph drive-item
// endpoint. Requires site, drive and item identifiers (site/drive may come
// from configured defaults) plus a caller-supplied bearer token.
func (r *Resolver) resolveSharePoint(
	ctx context.Context,
	ids models.StorageSnapshot,
	accessToken string,
) *string {
	siteID := ids.SharePointSiteID
	if siteID == "" {
		siteID = r.cfg.DefaultSiteID
	}
	driveID := ids.SharePointDriveID
	if driveID == "" {
		driveID = r.cfg.DefaultDriveID
	}

	if siteID == "" || driveID == "" || ids.SharePointItemID == "" {
		return nil
	}
	if r.cfg.SharePointBaseURL == "" {
		r.log.Warn("SharePoint base URL not configured, skipping URL resolution")
		return nil
	}
	if accessToken == "" {
		// Absence of a credential is not an error; there is just no URL
		// to resolve on this request.
		return nil
	}

	lookupURL := fmt.Sprintf("%s/sites/%s/drives/%s/items/%s?$select=webUrl",
		strings.TrimSuffix(r.cfg.SharePointBaseURL, "/"),
		url.PathEscape(siteID),
		url.PathEscape(driveID),
		url.PathEscape(ids.SharePointItemID),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		r.log.Error("error building SharePoint lookup request",
			"error", err,
			"site_id", siteID,
			"item_id", ids.SharePointItemID,
		)
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Error("error calling SharePoint item lookup",
			"error", err,
			"site_id", siteID,
			"item_id", ids.SharePointItemID,
		)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.Error("SharePoint item lookup returned non-OK status",
			"status", resp.StatusCode,
			"site_id", siteID,
			"item_id", ids.SharePointItemID,
		)
		return nil
	}

	var item struct {
		WebURL string `json:"webUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		r.log.Error("error decoding SharePoint item response",
			"error", err,
			"item_id", ids.SharePointItemID,
		)
		return nil
	}
	if item.WebURL == "" {
		return nil
	}

	return &item.WebURL
}

// resolveConfluence composes the page URL from the configured base address.
// No network call is made.
func (r *Resolver) resolveConfluence(ids models.StorageSnapshot) *string {
	if ids.ConfluenceSpaceKey == "" || ids.ConfluencePageID == "" {
		return nil
	}
	if r.cfg.ConfluenceBaseURL == "" {
		r.log.Warn("Confluence base URL not configured, skipping URL resolution")
		return nil
	}

	u := fmt.Sprintf("%s/wiki/spaces/%s/pages/%s",
		strings.TrimSuffix(r.cfg.ConfluenceBaseURL, "/"),
		url.PathEscape(ids.ConfluenceSpaceKey),
		url.PathEscape(ids.ConfluencePageID),
	)
	return &u
}

// Complete reports whether the identifier set is sufficient for resolution
// under this resolver's defaults. An incomplete set must clear any stored
// URL.
func (r *Resolver) Complete(location string, ids models.StorageSnapshot) bool {
	switch location {
	case models.StorageLocationSharePoint:
		siteID := ids.SharePointSiteID
		if siteID == "" {
			siteID = r.cfg.DefaultSiteID
		}
		driveID := ids.SharePointDriveID
		if driveID == "" {
			driveID = r.cfg.DefaultDriveID
		}
		return siteID != "" && driveID != "" && ids.SharePointItemID != ""
	case models.StorageLocationConfluence:
		return ids.ConfluenceSpaceKey != "" && ids.ConfluencePageID != ""
	default:
		return false
	}
}
