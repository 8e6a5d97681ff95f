package cli

import "io"

// MockCommand is a recorded command that returns canned output or errors.
type MockCommand struct {
	Name       string
	Args       []string
	OutputData []byte
	Err        error
	RunFunc    func() error

	StdinR  io.Reader
	StdoutW io.Writer
	StderrW io.Writer
}

func (c *MockCommand) Output() ([]byte, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if c.RunFunc != nil {
		if err := c.RunFunc(); err != nil {
			return nil, err
		}
	}
	return c.OutputData, nil
}

func (c *MockCommand) CombinedOutput() ([]byte, error) {
	return c.Output()
}

func (c *MockCommand) Run() error {
	if c.Err != nil {
		return c.Err
	}
	if c.RunFunc != nil {
		return c.RunFunc()
	}
	if c.StdoutW != nil && len(c.OutputData) > 0 {
		_, _ = c.StdoutW.Write(c.OutputData)
	}
	return nil
}

func (c *MockCommand) SetStdout(w io.Writer) { c.StdoutW = w }
func (c *MockCommand) SetStderr(w io.Writer) { c.StderrW = w }
func (c *MockCommand) SetStdin(r io.Reader)  { c.StdinR = r }

// MockExecutor records every command built through it. CommandFunc, when
// set, decides the canned behavior per spec; otherwise DefaultOutput and
// DefaultErr apply.
type MockExecutor struct {
	Commands      []*MockCommand
	CommandFunc   func(spec ExecSpec) *MockCommand
	DefaultOutput []byte
	DefaultErr    error
}

func (e *MockExecutor) Command(name string, args []string, validators ...ExecValidator) (Command, error) {
	spec := ExecSpec{Name: name, Args: args}
	for _, validate := range validators {
		if err := validate(spec); err != nil {
			return nil, err
		}
	}
	var cmd *MockCommand
	if e.CommandFunc != nil {
		cmd = e.CommandFunc(spec)
	}
	if cmd == nil {
		cmd = &MockCommand{OutputData: e.DefaultOutput, Err: e.DefaultErr}
	}
	cmd.Name = name
	cmd.Args = args
	e.Commands = append(e.Commands, cmd)
	return cmd, nil
}

// HasCommand reports whether any recorded command used the binary name.
func (e *MockExecutor) HasCommand(name string) bool {
	for _, cmd := range e.Commands {
		if cmd.Name == name {
			return true
		}
	}
	return false
}

// LastCommand returns the most recently built command, or nil.
func (e *MockExecutor) LastCommand() *MockCommand {
	if len(e.Commands) == 0 {
		return nil
	}
	return e.Commands[len(e.Commands)-1]
}

func contains(args []string, want string) bool {
	for _, arg := range args {
		if arg == want {
			return true
		}
	}
	return false
}
