package pagegen

import "strings"

const (
	// ParentDir is the relative path segment prepended once per level of depth.
	ParentDir = "../"
	// ActiveAttribute marks the navigation entry of the page being rendered.
	ActiveAttribute = `class="active"`
	// AssetsPathKey holds the depth prefix for asset references.
	AssetsPathKey = "ASSETS_PATH"
)

// NavEntry is one navigation destination. Path is relative to the site root.
type NavEntry struct {
	ID     string
	Path   string
	Active bool // entry exposes a {{<KEY>_ACTIVE}} marker
}

// Key returns the placeholder stem for the entry: "position-papers" -> "POSITION_PAPERS".
func (e NavEntry) Key() string {
	return strings.ToUpper(strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(e.ID))
}

// LinkKey returns the placeholder holding the entry's link.
func (e NavEntry) LinkKey() string { return e.Key() + "_LINK" }

// ActiveKey returns the placeholder holding the entry's active marker.
func (e NavEntry) ActiveKey() string { return e.Key() + "_ACTIVE" }

// NavTable is the ordered, closed set of navigation destinations.
type NavTable []NavEntry

// DefaultNavigation is the site's navigation table.
var DefaultNavigation = NavTable{
	{ID: "home", Path: "index.html", Active: true},
	{ID: "leadership", Path: "pages/about/leadership.html", Active: true},
	{ID: "calendar", Path: "pages/events/calendar.html", Active: true},
	{ID: "techmun", Path: "pages/conferences/techmun/index.html"},
	{ID: "invitation", Path: "pages/conferences/techmun/invitation.html"},
	{ID: "registration", Path: "pages/conferences/techmun/registration.html"},
	{ID: "directors", Path: "pages/conferences/techmun/directors.html"},
	{ID: "committees", Path: "pages/conferences/techmun/committees.html"},
	{ID: "schedule", Path: "pages/conferences/techmun/schedule.html"},
	{ID: "position-papers", Path: "pages/conferences/techmun/position-papers.html"},
	{ID: "conference-policies", Path: "pages/conferences/techmun/conference-policies.html"},
	{ID: "guest-speakers", Path: "pages/conferences/techmun/guest-speakers.html"},
	{ID: "forms", Path: "pages/events/forms.html", Active: true},
	{ID: "awards", Path: "pages/about/awards.html", Active: true},
}

// Lookup returns the entry with the given identifier.
func (t NavTable) Lookup(id string) (NavEntry, bool) {
	for _, e := range t {
		if e.ID == id {
			return e, true
		}
	}
	return NavEntry{}, false
}

// AssetsPath returns ParentDir repeated depth times. Negative depth counts as 0.
func AssetsPath(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(ParentDir, depth)
}

// NavigationContext holds the navigation values for one page.
type NavigationContext struct {
	Depth      int
	ActivePage string
	AssetsPath string
	table      NavTable
}

// NavigationFor computes the navigation context for a page at depth with activePage current.
// An empty or unknown activePage marks no entry active.
func (t NavTable) NavigationFor(depth int, activePage string) NavigationContext {
	if depth < 0 {
		depth = 0
	}
	return NavigationContext{
		Depth:      depth,
		ActivePage: activePage,
		AssetsPath: AssetsPath(depth),
		table:      t,
	}
}

// NavigationFor uses DefaultNavigation.
func NavigationFor(depth int, activePage string) NavigationContext {
	return DefaultNavigation.NavigationFor(depth, activePage)
}

// Link returns the depth-relative link for id.
func (n NavigationContext) Link(id string) (string, bool) {
	e, ok := n.table.Lookup(id)
	if !ok {
		return "", false
	}
	return n.AssetsPath + e.Path, true
}

// IsActive reports whether the entry id carries the active marker.
func (n NavigationContext) IsActive(id string) bool {
	e, ok := n.table.Lookup(id)
	return ok && e.Active && n.ActivePage != "" && e.ID == n.ActivePage
}

// Variables returns links in table order, then ASSETS_PATH, then active markers.
func (n NavigationContext) Variables() *Variables {
	vars := NewVariables()
	for _, e := range n.table {
		vars.Set(e.LinkKey(), n.AssetsPath+e.Path)
	}
	vars.Set(AssetsPathKey, n.AssetsPath)
	for _, e := range n.table {
		if !e.Active {
			continue
		}
		marker := ""
		if n.IsActive(e.ID) {
			marker = ActiveAttribute
		}
		vars.Set(e.ActiveKey(), marker)
	}
	return vars
}
