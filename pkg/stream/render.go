package stream

import "fmt"

// RenderMedia turns a media item into the markdown appended to the reply:
// an inline image reference for images, a download sentence for videos,
// and the bare URL for anything else.
func RenderMedia(kind, url string) string {
	switch kind {
	case MediaKindImage:
		return fmt.Sprintf("\n\n![Generated Image](%s)\n\n", url)
	case MediaKindVideo:
		return fmt.Sprintf("\n\nVideo generation complete.\n[Download video](%s)\n\n", url)
	default:
		return fmt.Sprintf("\n\n%s\n\n", url)
	}
}
