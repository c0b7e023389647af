package main

import (
	"os"

	"github.com/mitchellh/cli"
)

// lalVersion is the version string the CLI reports; it is a plain constant.
const lalVersion = "1.0.0"

func main() {
	gf, args := parseGlobalFlags(os.Args[1:])
	a := newApp(gf.verbosity, gf.home)

	c := cli.NewCLI("lal", lalVersion)
	c.Args = args
	c.HelpWriter = os.Stdout
	c.ErrorWriter = os.Stderr
	c.HiddenCommands = []string{"list-dependencies", "list-components", "list-environments"}
	c.Commands = map[string]cli.CommandFactory{
		"init":        func() (cli.Command, error) { return &InitCommand{app: a}, nil },
		"configure":   func() (cli.Command, error) { return &ConfigureCommand{app: a}, nil },
		"fetch":       func() (cli.Command, error) { return &FetchCommand{app: a}, nil },
		"update":      func() (cli.Command, error) { return &UpdateCommand{app: a}, nil },
		"update-all":  func() (cli.Command, error) { return &UpdateAllCommand{app: a}, nil },
		"remove":      func() (cli.Command, error) { return &RemoveCommand{app: a}, nil },
		"verify":      func() (cli.Command, error) { return &VerifyCommand{app: a}, nil },
		"status":      func() (cli.Command, error) { return &StatusCommand{app: a}, nil },
		"build":       func() (cli.Command, error) { return &BuildCommand{app: a}, nil },
		"stash":       func() (cli.Command, error) { return &StashCommand{app: a}, nil },
		"shell":       func() (cli.Command, error) { return &ShellCommand{app: a}, nil },
		"run":         func() (cli.Command, error) { return &RunCommand{app: a}, nil },
		"export":      func() (cli.Command, error) { return &ExportCommand{app: a}, nil },
		"query":       func() (cli.Command, error) { return &QueryCommand{app: a}, nil },
		"propagate":   func() (cli.Command, error) { return &PropagateCommand{app: a}, nil },
		"env":         func() (cli.Command, error) { return &EnvCommand{app: a}, nil },
		"clean":       func() (cli.Command, error) { return &CleanCommand{app: a}, nil },
		"publish":     func() (cli.Command, error) { return &PublishCommand{app: a}, nil },

		"list-dependencies":  func() (cli.Command, error) { return &ListDependenciesCommand{app: a}, nil },
		"list-components":    func() (cli.Command, error) { return &ListComponentsCommand{app: a}, nil },
		"list-environments":  func() (cli.Command, error) { return &ListEnvironmentsCommand{app: a}, nil },
	}

	exit, err := c.Run()
	if err != nil {
		a.ui.Error(err.Error())
	}
	os.Exit(exit)
}
