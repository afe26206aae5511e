// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/invowk/envscout/internal/pyenv"

	"github.com/charmbracelet/glamour"
)

const (
	ProcessLaunchFailedId Id = iota + 1
	NonZeroExitId
	UnparsableVersionId
	UnparsableSearchPathId
	NotAnEnvironmentId
	ExecutableNotFoundId
	NoWorkerFactoryId
	ConfigInvalidId
	ProbeFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a catalog entry explaining one failure class in Markdown.
	Issue struct {
		id          Id
		name        string      // stable snake_case name, shared with discovery diagnostic codes
		mdMsg       MarkdownMsg // rendered by Render
		suggestions []string    // short hints attached to ActionableErrors
		extLinks    []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

// Name returns the stable snake_case name used on the command line.
func (i *Issue) Name() string {
	return i.name
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Suggestions returns a copy of the one-line hints for this failure class.
func (i *Issue) Suggestions() []string {
	return slices.Clone(i.suggestions)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue's Markdown with the glamour style at stylePath
// ("auto", "dark", "light", "notty", or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.extLinks) > 0 {
		var sb strings.Builder
		sb.WriteString(md)
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
		md = sb.String()
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	processLaunchFailedIssue = &Issue{
		id:   ProcessLaunchFailedId,
		name: "process_launch_failed",
		mdMsg: `
# The interpreter could not be started

envscout tried to run the interpreter executable but the operating system
refused to start it. The file may be missing, not executable, or built for a
different architecture.

## Things you can try
- Check the file exists and is executable:
~~~
$ ls -l /path/to/venv/bin/python
~~~
- Recreate the virtualenv if its interpreter symlink points at a removed installation.`,
		suggestions: []string{
			"Check that the interpreter file exists and is executable",
			"Recreate the virtualenv if its base installation was removed",
		},
	}

	nonZeroExitIssue = &Issue{
		id:   NonZeroExitId,
		name: "non_zero_exit",
		mdMsg: `
# The interpreter exited with an error

The interpreter started but returned a non-zero exit status while reporting
its version or search path. A broken site customisation or a damaged
installation are the usual causes.

## Things you can try
- Run the same query by hand and read its error output:
~~~
$ /path/to/venv/bin/python --version
$ /path/to/venv/bin/python -S -c "import sys; print(sys.path)"
~~~`,
		suggestions: []string{
			"Run the interpreter with --version by hand to see its error output",
		},
	}

	unparsableVersionIssue = &Issue{
		id:   UnparsableVersionId,
		name: "unparsable_version",
		mdMsg: `
# The interpreter's version could not be read

The executable ran, but its output did not start with
` + "`Python <major>.<minor>.<micro>`" + `. It may be a wrapper script or a
different program that happens to be named ` + "`python`" + `.

## Things you can try
- Compare the output of ` + "`--version`" + ` with the expected form ` + "`Python 3.12.4`" + `.
- Point envscout at the real interpreter instead of a shim.`,
		suggestions: []string{
			"Check that the executable is a real Python interpreter and not a wrapper script",
		},
	}

	unparsableSearchPathIssue = &Issue{
		id:   UnparsableSearchPathId,
		name: "unparsable_search_path",
		mdMsg: `
# The interpreter's search path could not be read

envscout asks the interpreter to print ` + "`sys.path`" + ` as JSON. The output could not
be decoded, usually because something else wrote to standard output first.

## Things you can try
- Check for start-up hooks that print, such as ` + "`PYTHONSTARTUP`" + ` or a noisy ` + "`sitecustomize`" + `.`,
		suggestions: []string{
			"Check for start-up hooks that write to standard output",
		},
	}

	notAnEnvironmentIssue = &Issue{
		id:   NotAnEnvironmentId,
		name: "not_an_environment",
		mdMsg: `
# Not a virtual environment

A directory counts as an environment only when it contains both an activation
script and an interpreter:

| Platform | Activation script | Interpreter |
|---|---|---|
| POSIX | ` + "`bin/activate`" + ` | ` + "`bin/python`" + ` |
| Windows | ` + "`Scripts\\activate.bat`" + ` | ` + "`Scripts\\python.exe`" + ` |

## Things you can try
- Create one:
~~~
$ python3 -m venv /path/to/venv
~~~
- Pass the environment root, not its ` + "`bin`" + ` directory.`,
		suggestions: []string{
			"Pass the environment root directory, not its bin directory",
			"Create an environment with 'python3 -m venv <dir>'",
		},
	}

	executableNotFoundIssue = &Issue{
		id:   ExecutableNotFoundId,
		name: "executable_not_found",
		mdMsg: `
# Interpreter not found on PATH

A name such as ` + "`python3.6`" + ` was looked up on ` + "`PATH`" + ` and no executable matched.

## Things you can try
- Install that version, or remove its tag from ` + "`supported_versions`" + ` in your config.
- Check ` + "`PATH`" + ` in the shell that runs envscout.`,
		suggestions: []string{
			"Install the interpreter or adjust PATH",
			"Remove the version from supported_versions in your config",
		},
	}

	noWorkerFactoryIssue = &Issue{
		id:   NoWorkerFactoryId,
		name: "no_worker_factory",
		mdMsg: `
# No worker available for this environment

Work for an environment other than the host runs in a separate worker process,
and none could be obtained.`,
		suggestions: []string{
			"Run against the host interpreter, or check that the environment's interpreter starts",
		},
	}

	configInvalidIssue = &Issue{
		id:   ConfigInvalidId,
		name: "config_invalid",
		mdMsg: `
# Invalid configuration

The configuration file did not match the schema. Every field is optional:

~~~cue
scan_dirs: ["/opt/venvs"]
supported_versions: ["3.11", "3.12"]
host: {
	executable:  "/usr/bin/python3"
	version:     "3.12.4"
	search_path: ["/usr/lib/python312.zip", "/usr/lib/python3.12"]
}
probe: parallelism: 4
log_level: "info"
output: format: "table"
~~~

## Things you can try
~~~
$ envscout config show
~~~`,
		suggestions: []string{
			"Run 'envscout config show' to inspect the effective configuration",
		},
	}

	probeFailedIssue = &Issue{
		id:   ProbeFailedId,
		name: "probe_failed",
		mdMsg: `
# Environment dropped during discovery

` + "`envscout list`" + ` runs each candidate's interpreter once to read its version
before printing. A candidate whose interpreter failed that check is left out of
the listing and reported with this code. The message next to the code names
the underlying failure, e.g. a non-zero exit or unrecognized version output.
An error severity means the check was cut short, e.g. by an interrupt.

## Things you can try
~~~
$ envscout probe <path> --verbose
~~~`,
		suggestions: []string{
			"Run 'envscout probe <path> --verbose' to see the underlying failure",
		},
	}

	issues = map[Id]*Issue{
		processLaunchFailedIssue.Id():  processLaunchFailedIssue,
		nonZeroExitIssue.Id():          nonZeroExitIssue,
		unparsableVersionIssue.Id():    unparsableVersionIssue,
		unparsableSearchPathIssue.Id(): unparsableSearchPathIssue,
		notAnEnvironmentIssue.Id():     notAnEnvironmentIssue,
		executableNotFoundIssue.Id():   executableNotFoundIssue,
		noWorkerFactoryIssue.Id():      noWorkerFactoryIssue,
		configInvalidIssue.Id():        configInvalidIssue,
		probeFailedIssue.Id():          probeFailedIssue,
	}

	// classifiers are checked in order; the most specific sentinel wins.
	classifiers = []struct {
		target error
		id     Id
	}{
		{pyenv.ErrProcessLaunchFailure, ProcessLaunchFailedId},
		{pyenv.ErrNonZeroExit, NonZeroExitId},
		{pyenv.ErrUnparsableVersion, UnparsableVersionId},
		{pyenv.ErrUnparsableSearchPath, UnparsableSearchPathId},
		{pyenv.ErrNotAnEnvironment, NotAnEnvironmentId},
		{pyenv.ErrExecutableNotFound, ExecutableNotFoundId},
		{pyenv.ErrNoWorkerFactory, NoWorkerFactoryId},
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, len(ids))
	for i, id := range ids {
		out[i] = issues[id]
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// Lookup returns the entry with the given name, accepting dashes for underscores.
func Lookup(name string) *Issue {
	name = strings.ReplaceAll(strings.ToLower(name), "-", "_")
	for _, i := range issues {
		if i.name == name {
			return i
		}
	}
	return nil
}

// Classify returns the catalog entry matching err's failure class, or nil.
func Classify(err error) *Issue {
	for _, c := range classifiers {
		if errors.Is(err, c.target) {
			return issues[c.id]
		}
	}
	return nil
}
