package record

import "strings"

// ValidateCreateInput validates a creation request and returns the stored
// quality string and the trimmed occurrence.
func ValidateCreateInput(req CreateRequest) (string, string, error) {
	return validateFields(req.Quality, req.Occurrence)
}

// ValidateUpdateInput validates an edit request.
func ValidateUpdateInput(req UpdateRequest) (string, string, error) {
	if strings.TrimSpace(req.ID) == "" && req.Index == nil {
		return "", "", ErrInvalidInput
	}
	if req.Index != nil && *req.Index < 0 {
		return "", "", ErrRecordNotFound
	}
	return validateFields(req.Quality, req.Occurrence)
}

func validateFields(quality, occurrence string) (string, string, error) {
	occurrence = strings.TrimSpace(occurrence)
	if strings.TrimSpace(quality) == "" && occurrence == "" {
		return "", "", ErrInvalidInput
	}
	stored, err := ParseQualityInput(quality)
	if err != nil {
		return "", "", err
	}
	if occurrence == "" {
		return "", "", ErrEmptyOccurrence
	}
	return stored, occurrence, nil
}
