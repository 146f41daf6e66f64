package plugin

import (
	"net/mail"
	"strings"
)

// ParseAuthors merges the author field and the display names of the
// author_email field of a release into an ordered, de-duplicated list.
// author_email usually looks like "Jane Doe <jane@example.org>, Bob <bob@x>".
func ParseAuthors(author, authorEmail string) []string {
	var authors []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		authors = append(authors, name)
	}

	for _, part := range splitAuthors(author) {
		add(part)
	}

	if authorEmail != "" {
		if addrs, err := mail.ParseAddressList(authorEmail); err == nil {
			for _, addr := range addrs {
				add(addr.Name)
			}
		} else {
			for _, part := range strings.Split(authorEmail, ",") {
				if i := strings.Index(part, "<"); i > 0 {
					add(part[:i])
				}
			}
		}
	}

	return authors
}

func splitAuthors(s string) []string {
	s = strings.ReplaceAll(s, " and ", ",")
	return strings.Split(s, ",")
}

// DropTitle removes the first two lines of a long description, which
// conventionally hold the project title and its underline or a blank line.
func DropTitle(description string) string {
	lines := strings.Split(description, "\n")
	if len(lines) <= 2 {
		return ""
	}
	return strings.Join(lines[2:], "\n")
}
