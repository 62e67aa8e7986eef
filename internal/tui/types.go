package tui

import "time"

// Overlay names the view currently owning the screen.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayCapture
	OverlaySearch
	OverlayPreview
)

func (o Overlay) String() string {
	switch o {
	case OverlayCapture:
		return "capture"
	case OverlaySearch:
		return "search"
	case OverlayPreview:
		return "preview"
	default:
		return "none"
	}
}

// ParseOverlay maps a --start flag value to an overlay.
func ParseOverlay(name string) (Overlay, bool) {
	switch name {
	case "", "none":
		return OverlayNone, true
	case "capture":
		return OverlayCapture, true
	case "search":
		return OverlaySearch, true
	default:
		return OverlayNone, false
	}
}

const heroTagline = "Catch the thought before it flies."

const (
	defaultSearchDebounce   = 150 * time.Millisecond
	defaultMaxAttachment    = 64 << 20
	pastedIndicatorDuration = 2 * time.Second
	copiedFeedbackDuration  = 2 * time.Second
	savedFlashDuration      = 2 * time.Second
	errorBannerDuration     = 3 * time.Second
	previewEnterGuard       = 100 * time.Millisecond
	shakeFrameInterval      = 40 * time.Millisecond
	searchTimeout           = 10 * time.Second
	saveTimeout             = 30 * time.Second
)

const (
	minCaptureHeight = 3
	captureMargin    = 3
	maxCaptureHeight = 12
	minContentWidth  = 40
	pagePadding      = 4
)

// shakeOffsets are the left-margin deltas played back on submit.
var shakeOffsets = []int{3, -3, 2, -2, 1, -1, 0}

const (
	capturePlaceholder = "What's on your mind? Ctrl+S saves, Ctrl+V pastes files."
	searchPlaceholder  = "Search notes…"
)

// expireTarget identifies which transient message an expireMsg clears.
type expireTarget int

const (
	expirePasted expireTarget = iota
	expireSaved
	expireCaptureBanner
	expireCopied
	expirePreviewBanner
)

type expireMsg struct {
	target expireTarget
	token  int
}
