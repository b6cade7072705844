package main

// handleNavigation routes movement keys either to the viewport pan (pan mode)
// or to the cursor.
func (m *model) handleNavigation(key string, speed float64) {
	if m.zPanMode {
		m.handlePan(key, speed)
		return
	}
	m.handleCursorMove(key, speed)
}

func (m *model) handlePan(key string, speed float64) {
	switch key {
	case "h", "left", "H", "shift+left":
		m.viewport.View.OffsetX += speed
	case "l", "right", "L", "shift+right":
		m.viewport.View.OffsetX -= speed
	case "k", "up", "K", "shift+up":
		m.viewport.View.OffsetY += speed
	case "j", "down", "J", "shift+down":
		m.viewport.View.OffsetY -= speed
	}
}

func (m *model) handleCursorMove(key string, speed float64) {
	switch key {
	case "h", "left", "H", "shift+left":
		m.cursorX -= int(speed)
	case "l", "right", "L", "shift+right":
		m.cursorX += int(speed)
	case "k", "up", "K", "shift+up":
		m.cursorY -= int(speed)
	case "j", "down", "J", "shift+down":
		m.cursorY += int(speed)
	}
	m.ensureCursorInBounds()
	m.editor.PointerMove(m.cursorCanvas())
}

func (m *model) getMoveSpeed(key string) float64 {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 5
	default:
		return 1
	}
}

func (m *model) ensureCursorInBounds() {
	if m.cursorX < 0 {
		m.cursorX = 0
	}
	if m.cursorY < 0 {
		m.cursorY = 0
	}
	if m.width > 0 && m.cursorX >= m.width {
		m.cursorX = m.width - 1
	}
	maxY := m.height - 2 // status bar
	if maxY >= 0 && m.cursorY > maxY {
		m.cursorY = maxY
	}
}
