package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation"
)

// Validate checks pages and navigation overrides. Depth/output consistency is
// deliberately not checked: an explicit depth is taken as given.
func Validate(cfg *Config) error {
	var vr foundation.ValidationResult
	validateNavigation(cfg.Navigation, &vr)
	validatePages(cfg.Pages, &vr)
	return vr.ToError()
}

func validateNavigation(items []NavItem, vr *foundation.ValidationResult) {
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		field := fmt.Sprintf("navigation[%d]", i)
		if strings.TrimSpace(item.ID) == "" {
			vr.Add(field+".id", "required", "navigation id is required")
		} else if seen[item.ID] {
			vr.Add(field+".id", "duplicate", "duplicate navigation id %q", item.ID)
		}
		seen[item.ID] = true
		if strings.TrimSpace(item.Path) == "" {
			vr.Add(field+".path", "required", "navigation path is required")
		}
	}
}

func validatePages(pages []PageConfig, vr *foundation.ValidationResult) {
	outputs := make(map[string]int, len(pages))
	for i, page := range pages {
		field := fmt.Sprintf("pages[%d]", i)
		if strings.TrimSpace(page.Output) == "" {
			vr.Add(field+".output", "required", "output path is required")
		} else {
			clean := filepath.ToSlash(filepath.Clean(page.Output))
			if prev, dup := outputs[clean]; dup {
				vr.Add(field+".output", "duplicate", "output %q already produced by pages[%d]", page.Output, prev)
			}
			outputs[clean] = i
		}
		if page.Content != "" && page.ContentFile != "" {
			vr.Add(field, "exclusive", "content and content_file are mutually exclusive")
		}
		if page.Depth != nil && *page.Depth < 0 {
			vr.Add(field+".depth", "range", "depth must not be negative (got %d)", *page.Depth)
		}
	}
}
