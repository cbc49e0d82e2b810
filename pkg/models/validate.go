package models

import "github.com/devmesh-org/taskmesh/internal/apperrors"

// ValidateTaskTitle enforces the 1-200 char boundary of spec §3/§8.
func ValidateTaskTitle(title string) error {
	if len(title) < 1 || len(title) > 200 {
		return apperrors.Validation("title", "must be between 1 and 200 characters, got %d", len(title))
	}
	return nil
}

// ValidateTaskDescription enforces the non-empty, <=2000 char boundary.
func ValidateTaskDescription(description string) error {
	if len(description) == 0 {
		return apperrors.Validation("description", "must not be empty")
	}
	if len(description) > 2000 {
		return apperrors.Validation("description", "must be at most 2000 characters, got %d", len(description))
	}
	return nil
}

// ValidateSubtaskTitle enforces the 1-200 char boundary shared with tasks.
func ValidateSubtaskTitle(title string) error {
	return ValidateTaskTitle(title)
}

// ValidateSubtaskDescription enforces the <=500 char boundary (spec §3).
func ValidateSubtaskDescription(description string) error {
	if len(description) > 500 {
		return apperrors.Validation("description", "must be at most 500 characters, got %d", len(description))
	}
	return nil
}

// ValidateProjectName enforces the non-empty constraint of spec §3.
func ValidateProjectName(name string) error {
	if name == "" {
		return apperrors.Validation("name", "must not be empty")
	}
	return nil
}

// ValidateProgressPercentage enforces the 0-100 boundary of spec §8.
func ValidateProgressPercentage(pct int) error {
	if pct < 0 || pct > 100 {
		return apperrors.Validation("progress_percentage", "must be between 0 and 100, got %d", pct)
	}
	return nil
}
