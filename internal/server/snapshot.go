package server

import (
	"image/jpeg"
	"net/http"
	"strconv"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/ayusman/drishti/internal/app"
)

const snapshotQuality = 85

// SnapshotHandler serves a single frame from the camera, optionally
// resized and re-encoded. Query parameters: format=jpeg|webp (default
// jpeg) and width=N for proportional downscaling.
type SnapshotHandler struct {
	app *app.App
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(a *app.App) *SnapshotHandler {
	return &SnapshotHandler{app: a}
}

// ServeHTTP captures and encodes one frame.
func (h *SnapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "jpeg"
	}
	if format != "jpeg" && format != "webp" {
		http.Error(w, "Unsupported format", http.StatusBadRequest)
		return
	}

	width := 0
	if q := r.URL.Query().Get("width"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid width", http.StatusBadRequest)
			return
		}
		width = parsed
	}

	camera := h.app.Camera()
	if camera == nil {
		http.Error(w, "Camera not available", http.StatusServiceUnavailable)
		return
	}

	frame, err := camera.ReadFrame()
	if err != nil {
		http.Error(w, "Frame read failed", http.StatusServiceUnavailable)
		return
	}
	defer frame.Close()

	// Fast path: raw JPEG straight out of OpenCV
	if format == "jpeg" && width == 0 {
		buf, err := gocv.IMEncode(".jpg", *frame)
		if err != nil {
			http.Error(w, "Encode failed", http.StatusInternalServerError)
			return
		}
		defer buf.Close()

		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(buf.GetBytes())
		return
	}

	img, err := frame.ToImage()
	if err != nil {
		http.Error(w, "Frame conversion failed", http.StatusInternalServerError)
		return
	}

	if width > 0 && width < frame.Cols() {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	switch format {
	case "webp":
		w.Header().Set("Content-Type", "image/webp")
		if err := webp.Encode(w, img, &webp.Options{Quality: snapshotQuality}); err != nil {
			http.Error(w, "Encode failed", http.StatusInternalServerError)
		}
	default:
		w.Header().Set("Content-Type", "image/jpeg")
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: snapshotQuality}); err != nil {
			http.Error(w, "Encode failed", http.StatusInternalServerError)
		}
	}
}
