package server

import (
	"fmt"
	"image/jpeg"
	"net/http"
	"time"

	"github.com/ayusman/handpong/internal/app"
)

// StreamHandler serves the camera preview as an MJPEG stream. It reads
// the pipeline's published preview frames rather than the camera itself;
// the pipeline goroutine is the camera's only reader.
type StreamHandler struct {
	app *app.App
}

// NewStreamHandler creates a new StreamHandler backed by the pipeline.
func NewStreamHandler(a *app.App) *StreamHandler {
	return &StreamHandler{app: a}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var lastSent time.Time
	ticker := time.NewTicker(66 * time.Millisecond) // ~15 FPS
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		preview := h.app.Preview()
		if preview == nil || !preview.At.After(lastSent) {
			continue
		}
		lastSent = preview.At

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n\r\n")
		if err := jpeg.Encode(w, preview.Img, &jpeg.Options{Quality: 80}); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
