// Package pagegen assembles static HTML pages from four fragment templates.
//
// A page is built by substituting literal {{KEY}} placeholders: the navigation
// fragment is filled with depth-relative links, the header receives the rendered
// navigation, and the base fragment receives the header, footer, page content and
// page-specific extras. Substitution is plain text replacement with no escaping;
// placeholders that have no variable are left in place.
//
// Example:
//
//	gen, err := pagegen.NewGenerator("templates", "site")
//	if err != nil {
//	    return err
//	}
//	page, err := gen.GeneratePage(ctx, pagegen.PageRequest{
//	    Title:       "Leadership",
//	    MainContent: "<h1>Leadership</h1>",
//	    OutputPath:  "pages/about/leadership.html",
//	    Depth:       2,
//	    ActivePage:  "leadership",
//	})
package pagegen
