package transcript

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/kapu/ai-demo-hub/pkg/errors"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID accepts a watch URL, a youtu.be / shorts link or a bare id.
func ExtractVideoID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", errors.NewValidationError("Please enter a YouTube link.", "link", link)
	}

	var id string
	switch {
	case strings.Contains(link, "v="):
		id = strings.SplitN(strings.SplitN(link, "v=", 2)[1], "&", 2)[0]
	case strings.Contains(link, "youtu.be/"), strings.Contains(link, "/shorts/"), strings.Contains(link, "/embed/"):
		if u, err := url.Parse(link); err == nil {
			segments := strings.Split(strings.Trim(u.Path, "/"), "/")
			id = segments[len(segments)-1]
		}
	default:
		id = link
	}

	id = strings.TrimSpace(strings.SplitN(id, "#", 2)[0])
	if !videoIDPattern.MatchString(id) {
		return "", errors.NewValidationError("That does not look like a YouTube link.", "link", link)
	}
	return id, nil
}
