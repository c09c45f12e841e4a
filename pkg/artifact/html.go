package artifact

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// HTML renders the artifact's markdown form as sanitized HTML, suitable
// for embedding in a preview page.
func HTML(a *Artifact) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(a)), &buf); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return string(bluemonday.UGCPolicy().SanitizeBytes(buf.Bytes())), nil
}
