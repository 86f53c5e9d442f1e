package v1

import (
	"net/url"
	"time"

	"github.com/jdholdren/newsstand/api"
)

type CreateFeedRequest struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	SiteLink   string `json:"site_link"`
	Image      string `json:"image"`
	MailNotify bool   `json:"mail_notify"`
}

// Validate checks that the body (minus logic checks) is valid.
//
// Returns an api.Error if the request is invalid.
func (r CreateFeedRequest) Validate() error {
	errs := []api.ErrorDetail{}
	if r.ID == "" {
		errs = append(errs, api.ErrorDetail{
			Field: "id",
			Error: "id is required",
		})
	}
	errs = appendURLErr(errs, "link", r.Link)
	errs = appendURLErr(errs, "site_link", r.SiteLink)

	return api.Invalid(errs)
}

// UpdateFeedRequest changes the fields that are present.
type UpdateFeedRequest struct {
	Title      *string `json:"title"`
	Link       *string `json:"link"`
	SiteLink   *string `json:"site_link"`
	Image      *string `json:"image"`
	MailNotify *bool   `json:"mail_notify"`
}

func (r UpdateFeedRequest) Validate() error {
	errs := []api.ErrorDetail{}
	if r.Title == nil && r.Link == nil && r.SiteLink == nil && r.Image == nil && r.MailNotify == nil {
		errs = append(errs, api.ErrorDetail{
			Field: "",
			Error: "at least one field must be set",
		})
	}
	if r.Link != nil {
		errs = appendURLErr(errs, "link", *r.Link)
	}
	if r.SiteLink != nil {
		errs = appendURLErr(errs, "site_link", *r.SiteLink)
	}

	return api.Invalid(errs)
}

func appendURLErr(errs []api.ErrorDetail, field, raw string) []api.ErrorDetail {
	if raw == "" {
		return errs
	}
	if u, err := url.Parse(raw); err != nil || !u.IsAbs() {
		errs = append(errs, api.ErrorDetail{
			Field: field,
			Error: field + " must be an absolute url",
		})
	}

	return errs
}

type Feed struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	SiteLink   string    `json:"site_link"`
	Image      string    `json:"image"`
	MailNotify bool      `json:"mail_notify"`
	ErrorCount int       `json:"error_count"`
	Unread     int       `json:"unread"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ListFeedsResponse struct {
	Feeds []Feed `json:"feeds"`
}
