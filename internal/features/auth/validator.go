package auth

import (
	"errors"
	"strings"
)

// ValidateUpdateProfile checks the optional profile fields that are present
func ValidateUpdateProfile(req *UpdateProfileRequest) error {
	if req.Name != "" {
		name := strings.TrimSpace(req.Name)
		if len(name) < 2 || len(name) > 100 {
			return errors.New("name must be between 2 and 100 characters")
		}
	}

	if req.ContributorName != "" {
		contributor := strings.TrimSpace(req.ContributorName)
		if len(contributor) < 2 || len(contributor) > 200 {
			return errors.New("contributor name must be between 2 and 200 characters")
		}
	}

	return nil
}
