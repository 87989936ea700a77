package installer

import _ "embed"

// ScriptName is the filename the widget script is installed under.
const ScriptName = "zsh-llm-suggestions.zsh"

//go:embed data/zsh-llm-suggestions.zsh
var widgetScript string
