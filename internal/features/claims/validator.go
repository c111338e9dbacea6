package claims

import (
	"errors"
	"strings"

	"github.com/opensupplyhub/oshub/internal/pkg/validator"
)

func ValidateSubmitClaim(req *SubmitClaimRequest) error {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.JobTitle = strings.TrimSpace(req.JobTitle)
	req.Website = strings.TrimSpace(req.Website)

	if len(req.CompanyName) < 2 {
		return errors.New("company_name must be at least 2 characters")
	}

	if len(req.JobTitle) < 2 {
		return errors.New("job_title must be at least 2 characters")
	}

	if req.Website != "" && !validator.IsValidURL(req.Website) {
		return errors.New("website must be a valid http(s) URL")
	}

	return nil
}
