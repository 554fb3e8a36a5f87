package app

// Key binding constants used in handleKey.
const (
	KeyPause   = " "
	KeyPauseP  = "p"
	KeyResume  = "r"
	KeyPreview = "o"
	KeyMerge   = "m"
	KeyQuit    = "q"
	KeyCtrlC   = "ctrl+c"
)
