package project

import "fmt"

// CommandState reports whether a command is currently enabled.
type CommandState struct {
	Name    string `json:"name" yaml:"name"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// Info is a serializable snapshot of a project and its capabilities.
type Info struct {
	Path         string         `json:"path" yaml:"path"`
	Name         string         `json:"name" yaml:"name"`
	DisplayName  string         `json:"display_name" yaml:"display_name"`
	Capabilities []string       `json:"capabilities" yaml:"capabilities"`
	Commands     []CommandState `json:"commands" yaml:"commands"`

	// Classification maps each operation capability to the files it
	// would cover if started now.
	Classification map[string]FileSet `json:"classification" yaml:"classification"`
}

// Describe takes a snapshot of p. It fails when any operation cannot
// classify the project's files.
func Describe(p *Project) (Info, error) {
	if p == nil {
		return Info{}, fmt.Errorf("describe: nil project")
	}
	info := p.Information()
	actions := p.Actions()

	out := Info{
		Path:           p.Path(),
		Name:           info.Name(),
		DisplayName:    info.DisplayName(),
		Classification: make(map[string]FileSet, 3),
	}

	for _, c := range p.Capabilities() {
		out.Capabilities = append(out.Capabilities, c.Kind().String())

		op, ok := c.(Operation)
		if !ok {
			continue
		}
		files, err := op.Classify()
		if err != nil {
			return Info{}, fmt.Errorf("classifying for %s: %w", c.Kind(), err)
		}
		out.Classification[c.Kind().String()] = files
	}

	for _, cmd := range actions.SupportedCommands() {
		out.Commands = append(out.Commands, CommandState{Name: cmd, Enabled: actions.IsEnabled(cmd)})
	}
	return out, nil
}
