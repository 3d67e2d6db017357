// Package sanitizer holds the string cleaning helpers used at trust
// boundaries: escaping untrusted text before it is rendered as markup,
// normalizing emails before they are stored, and flattening remote response
// bodies before they reach logs or messages.
//
//	clean := sanitizer.Compose(sanitizer.Trim, sanitizer.NormalizeEmail)
//	email := clean(input)
package sanitizer
