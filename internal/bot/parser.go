package bot

import "strings"

// Command is a parsed prefix command.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a message into a command name and arguments. The
// second return value is false when the message is not addressed to the
// bot at all.
func ParseCommand(content, prefix string) (Command, bool) {
	if !strings.HasPrefix(content, prefix) {
		return Command{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{
		Name: strings.ToLower(fields[0]),
		Args: fields[1:],
	}, true
}
