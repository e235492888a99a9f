package storage

import (
	"mime"
	"net/http"
	"path"
	"strings"
)

const MIMEOctetStream = "application/octet-stream"

// fragmentTypes covers the extensions a fragment bucket usually holds,
// so results do not depend on the host mime tables.
var fragmentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".htm":  "text/html; charset=utf-8",
	".txt":  "text/plain; charset=utf-8",
	".md":   "text/markdown; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json",
	".svg":  "image/svg+xml",
}

// ContentType picks the media type of an object: the declared one unless it
// is empty or generic, then the key extension, then a sniff of head.
func ContentType(key, declared string, head []byte) string {
	if declared != "" && normalizeMIME(declared) != MIMEOctetStream {
		return declared
	}
	ext := strings.ToLower(path.Ext(key))
	if ct, ok := fragmentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	if len(head) > 0 {
		return http.DetectContentType(head)
	}
	return MIMEOctetStream
}

func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}
