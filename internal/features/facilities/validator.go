package facilities

import (
	"errors"
	"strings"

	"github.com/opensupplyhub/oshub/internal/pkg/validator"
)

var validSources = map[string]bool{
	"":    true, // defaults to WEB
	"WEB": true,
	"API": true,
	"SLC": true,
}

func ValidateCreateFacility(req *CreateFacilityRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	req.CountryCode = strings.ToUpper(strings.TrimSpace(req.CountryCode))
	req.Source = strings.ToUpper(strings.TrimSpace(req.Source))

	if len(req.Name) < 3 {
		return errors.New("name must be at least 3 characters")
	}

	if !validator.IsValidCountryCode(req.CountryCode) {
		return errors.New("country_code must be a two-letter ISO code")
	}

	if !validSources[req.Source] {
		return errors.New("source must be: WEB, API, or SLC")
	}
	if req.Source == "" {
		req.Source = "WEB"
	}

	if req.Lat < -90 || req.Lat > 90 {
		return errors.New("lat must be between -90 and 90")
	}
	if req.Lng < -180 || req.Lng > 180 {
		return errors.New("lng must be between -180 and 180")
	}

	return nil
}
