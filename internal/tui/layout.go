package tui

type pageLayout struct {
	windowWidth   int
	windowHeight  int
	contentWidth  int
	resultsHeight int
	previewHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{
		contentWidth:  76,
		resultsHeight: 8,
		previewHeight: 12,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	inner := width - pagePadding
	if inner < minContentWidth {
		inner = minContentWidth
	}
	l.contentWidth = inner
	// header, input, footer, notices and help each take a line plus spacing.
	const chrome = 10
	usable := height - chrome
	if usable < 4 {
		usable = 4
	}
	l.resultsHeight = usable
	l.previewHeight = usable - 2
	if l.previewHeight < 4 {
		l.previewHeight = 4
	}
}
