package colours

import "github.com/fatih/color"

// Color scheme for the CLI
var (
	Heading = color.New(color.FgCyan, color.Bold)
	Scene   = color.New(color.FgCyan)
	Keyword = color.New(color.FgMagenta, color.Bold) // words the player can type
	Prompt  = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Success = color.New(color.FgGreen)
	Info    = color.New(color.FgBlue)
	Warning = color.New(color.FgYellow)
)
