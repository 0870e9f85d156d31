package middleware

import (
	"net"
	"net/http"

	"github.com/mssola/useragent"

	"geoattend/pkg/requestcontext"
)

// Metadata records the client IP and a parsed device description in the
// request context. The attendance log stores the device string alongside
// each attempt for audit purposes.
func Metadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientIP(r.Context(), clientIP(r))
		if rawUA := r.UserAgent(); rawUA != "" {
			ua := useragent.New(rawUA)
			name, version := ua.Browser()
			device := name + " " + version + " / " + ua.OS()
			ctx = requestcontext.WithDevice(ctx, device)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
