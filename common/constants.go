package common

const (
	BaseWidth  = 1280
	BaseHeight = 720

	// TileSize is the on-screen size of one grid tile in pixels.
	TileSize = 32
)
