package sections

import (
	"fmt"
	"strings"
)

// Built-in section types shipped with the builder.
const (
	TypeHero    = "hero"
	TypeText    = "text"
	TypeGallery = "gallery"
)

// HeroValidator accepts hero banners. No field is required; the optional
// headline and subheadline must be strings when present.
type HeroValidator struct{}

func (HeroValidator) Type() string { return TypeHero }

func (HeroValidator) Validate(settings map[string]any) []string {
	var violations []string
	violations = appendOptionalString(violations, settings, "headline")
	violations = appendOptionalString(violations, settings, "subheadline")
	return violations
}

// TextValidator requires a non-empty string text field.
type TextValidator struct{}

func (TextValidator) Type() string { return TypeText }

func (TextValidator) Validate(settings map[string]any) []string {
	var violations []string
	value, ok := settings["text"]
	if !ok {
		return append(violations, "text is required")
	}
	text, ok := value.(string)
	if !ok {
		return append(violations, "text must be a string")
	}
	if strings.TrimSpace(text) == "" {
		violations = append(violations, "text must not be empty")
	}
	return violations
}

// GalleryValidator requires an images array with at least one entry; each
// entry is an object carrying a non-empty string url and an optional string
// alt.
type GalleryValidator struct{}

func (GalleryValidator) Type() string { return TypeGallery }

func (GalleryValidator) Validate(settings map[string]any) []string {
	var violations []string

	value, ok := settings["images"]
	if !ok {
		return append(violations, "images is required")
	}
	images, ok := value.([]any)
	if !ok {
		return append(violations, "images must be an array")
	}
	if len(images) == 0 {
		return append(violations, "images must contain at least one entry")
	}

	for i, entry := range images {
		image, ok := entry.(map[string]any)
		if !ok {
			violations = append(violations, fmt.Sprintf("images[%d] must be an object", i))
			continue
		}

		url, ok := image["url"]
		if !ok {
			violations = append(violations, fmt.Sprintf("images[%d].url is required", i))
		} else if urlStr, isString := url.(string); !isString {
			violations = append(violations, fmt.Sprintf("images[%d].url must be a string", i))
		} else if strings.TrimSpace(urlStr) == "" {
			violations = append(violations, fmt.Sprintf("images[%d].url must not be empty", i))
		}

		if alt, present := image["alt"]; present {
			if _, isString := alt.(string); !isString {
				violations = append(violations, fmt.Sprintf("images[%d].alt must be a string", i))
			}
		}
	}

	return violations
}

func appendOptionalString(violations []string, settings map[string]any, field string) []string {
	value, ok := settings[field]
	if !ok {
		return violations
	}
	if _, isString := value.(string); !isString {
		violations = append(violations, fmt.Sprintf("%s must be a string", field))
	}
	return violations
}
