// Package logger provides log output helpers, including a secret-masking writer.
package logger

import (
	"io"
	"regexp"
)

var redactPatterns = []struct {
	re          *regexp.Regexp
	replacement []byte
}{
	// Credentials embedded in URLs, e.g. a remote-write endpoint with basic auth.
	{regexp.MustCompile(`(?i)([a-z][a-z0-9+.\-]*://)[^/\s:@"]+:[^/\s@"]+@`), []byte("${1}[REDACTED]@")},
	// Bearer tokens in Authorization headers or log fields.
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`), []byte("bearer [REDACTED]")},
}

// RedactWriter masks secrets in every write before passing it on.
type RedactWriter struct{ w io.Writer }

func NewRedactWriter(w io.Writer) *RedactWriter { return &RedactWriter{w: w} }

func (r *RedactWriter) Write(p []byte) (int, error) {
	out := p
	for _, pat := range redactPatterns {
		out = pat.re.ReplaceAll(out, pat.replacement)
	}
	_, err := r.w.Write(out)
	return len(p), err
}
