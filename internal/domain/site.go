package domain

// Site represents one tenant's provisioned website deployment.
// The provisioning engine is the sole system of record; a Site is only ever
// materialized from engine outputs, never persisted by this service.
type Site struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SiteParams parameterizes the resource graph for a new site.
type SiteParams struct {
	DisplayName string `json:"displayName"`
}

// CreateSiteRequest is the request body for creating a site.
type CreateSiteRequest struct {
	ID     string     `json:"id"`
	Params SiteParams `json:"params"`
}

// ListSitesResponse is the response body for listing sites.
type ListSitesResponse struct {
	IDs []string `json:"ids"`
}

// DeleteSiteResponse acknowledges a completed teardown.
type DeleteSiteResponse struct {
	Message string `json:"message"`
}
