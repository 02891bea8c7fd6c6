package bot

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseAddArgs splits "/add <link> <title...>" arguments. The title may
// contain spaces; everything after the link belongs to it.
func ParseAddArgs(args string) (link, title string, err error) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("usage: /add <link> <title>, the title must be unique")
	}

	link = parts[0]
	u, err := url.ParseRequestURI(link)
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("invalid link %q", link)
	}

	return link, strings.Join(parts[1:], " "), nil
}

// ParseTitleArg extracts a product title from a command argument string.
func ParseTitleArg(args string) (string, error) {
	title := strings.TrimSpace(args)
	if title == "" {
		return "", fmt.Errorf("product title is required")
	}
	return title, nil
}
