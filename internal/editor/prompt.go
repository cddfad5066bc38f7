package editor

// Prompter asks the user for a value. ok is false when the prompt was
// cancelled.
type Prompter interface {
	Prompt(message string) (value string, ok bool)
}

// NoPrompter cancels every prompt.
type NoPrompter struct{}

func (NoPrompter) Prompt(string) (string, bool) { return "", false }

// Answers replays answers collected by the browser, one per prompt in
// order. Prompts past the last answer count as cancelled.
type Answers struct {
	Values []string
	asked  int
}

func NewAnswers(values ...string) *Answers {
	return &Answers{Values: values}
}

func (a *Answers) Prompt(message string) (string, bool) {
	if a.asked >= len(a.Values) {
		editorLogger.Debug().Str("prompt", message).Msg("Prompt cancelled")
		return "", false
	}
	v := a.Values[a.asked]
	a.asked++
	return v, true
}

// PrompterFunc adapts a func to Prompter.
type PrompterFunc func(message string) (string, bool)

func (f PrompterFunc) Prompt(message string) (string, bool) { return f(message) }
