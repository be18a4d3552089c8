package interactor

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/fitlayout/flcurl/features"
	"github.com/fitlayout/flcurl/flclient"
	"github.com/fitlayout/flcurl/llm"
	"github.com/fitlayout/flcurl/parser"
	"github.com/fitlayout/flcurl/transport"
	"github.com/fitlayout/flcurl/version"
	"github.com/google/shlex"
)

var (
	ErrInvalidPipe = errors.New("invalid pipe command")
)

// Interactor is the interactive session entered after the startup ping. It
// keeps the repository client the operator can rebind with `repo use`.
type Interactor struct {
	Args   parser.Arguments
	Client *flclient.Client
	LLM    *llm.LLM

	completer *flcurlCompleter
}

func (i *Interactor) Run(ctx context.Context) error {
	i.completer = &flcurlCompleter{ctx: ctx, s: &features.ServerFeatures{Client: i.Client}}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mflcurl>\033[0m ",
		AutoComplete:    i.completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistoryFile:         i.Args.HistoryFile,
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return fmt.Errorf("create readline: %w", err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	for {
		line, err := l.Readline()
		if err == io.EOF {
			break
		}
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		}
		command := strings.TrimSpace(line)
		if command == "" {
			continue
		}
		if err := i.executeCommand(ctx, command); err != nil {
			if errors.Is(err, parser.ErrInvalidUsage) {
				printUsage()
				continue
			}
			fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		}
	}
	return nil
}

func (ia *Interactor) executeCommand(ctx context.Context, command string) (err error) {
	// io redirect
	redirAppendParts := strings.Split(command, ">>")
	redirCreateParts := strings.Split(redirAppendParts[0], ">")
	var redirPart, redirMode string
	if len(redirAppendParts) > 1 {
		redirPart = strings.TrimSpace(redirAppendParts[len(redirAppendParts)-1])
		redirMode = "append"
	} else if len(redirCreateParts) > 1 {
		redirPart = strings.TrimSpace(redirCreateParts[len(redirCreateParts)-1])
		redirMode = "create"
	}
	stdout := os.Stdout
	switch redirMode {
	case "append":
		stdout, err = os.OpenFile(redirPart, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open file for append: %w", err)
		}
	case "create":
		stdout, err = os.Create(redirPart)
		if err != nil {
			return fmt.Errorf("create file: %w", err)
		}
	}

	// pipeline
	pipeParts := strings.Split(redirCreateParts[0], "|")

	var nextIn, out *os.File
	if len(pipeParts) > 1 {
		nextIn, out, err = os.Pipe()
		if err != nil {
			return fmt.Errorf("create pipe: %w", err)
		}
	}

	errChan := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ia.executeMain(ctx, strings.TrimSpace(pipeParts[0]), cmp.Or(out, stdout)); err != nil {
			errChan <- err
		}
	}()
	for i, part := range pipeParts[1:] {
		thisIn := nextIn
		thisOut := stdout
		if i < len(pipeParts)-2 {
			nextIn, thisOut, err = os.Pipe()
			if err != nil {
				errChan <- fmt.Errorf("create pipe for part %d: %w", i+1, err)
				return
			}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ia.executePipe(ctx, strings.TrimSpace(part), thisIn, thisOut); err != nil {
				errChan <- fmt.Errorf("execute pipe %d: %w", i+1, err)
			}
		}()
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
		close(errChan)
	}()
	select {
	case err = <-errChan:
		return err
	case <-done:
		return nil
	}
}

func (i *Interactor) executeMain(ctx context.Context, command string, out *os.File) error {
	args, err := shlex.Split(command)
	if err != nil {
		return fmt.Errorf("split command: %w", err)
	}
	if len(args) == 0 {
		return parser.ErrInvalidUsage
	}
	f := features.ServerFeatures{Client: i.Client}
	if out.Fd() != os.Stdout.Fd() {
		defer out.Close()
		f.Out = out
	}
	switch args[0] {
	case "ping":
		return f.PrintPing(ctx)
	case "A", "artifacts":
		return i.listArtifacts(ctx, f, args)
	case "a", "artifact":
		if len(args) < 2 {
			return parser.ErrInvalidUsage
		}
		return f.PrintArtifact(ctx, args[1])
	case "rm":
		if len(args) < 2 {
			return parser.ErrInvalidUsage
		}
		return f.DeleteArtifact(ctx, args[1])
	case "q", "query":
		return i.runQuery(ctx, f, args)
	case "prefixes":
		return f.PrintPrefixes()
	case "S", "services":
		return f.PrintServices(ctx)
	case "i", "invoke":
		return i.invokeService(ctx, f, args)
	case "repos":
		return f.PrintRepositories(ctx)
	case "repo":
		return i.repo(ctx, f, out, args)
	case "m", "msg":
		return i.msg(ctx, f, out, args)
	case "ctx":
		return i.modelContext(out, args)
	case "s", "status":
		return i.showStatus(ctx, out)
	case "cat":
		return i.readFile(out, args)
	case "cd":
		return i.chdir(args)
	case "clear", "cls":
		fmt.Print("\033[H\033[2J")
		return nil
	case "env":
		return i.showEnv(out, args)
	case "exit", "quit":
		os.Exit(0)
		return nil
	case "export":
		return i.exportEnv(out, args)
	case "h", "help":
		printUsage()
		return nil
	case "ls":
		return i.listDir(out, args)
	case "pwd":
		return i.printPwd(out)
	case "v", "version":
		fmt.Fprintln(out, version.Short())
		return nil
	default:
		return parser.ErrInvalidUsage
	}
}

func (i *Interactor) executePipe(ctx context.Context, pipePart string, in *os.File, out *os.File) error {
	defer in.Close()
	if out.Fd() != os.Stdout.Fd() {
		defer out.Close()
	}
	pipeArgs, err := shlex.Split(pipePart)
	if err != nil {
		return fmt.Errorf("split pipe command: %w", err)
	}
	if len(pipeArgs) == 0 {
		return ErrInvalidPipe
	}
	command := exec.CommandContext(ctx, pipeArgs[0], pipeArgs[1:]...)
	command.Stdin = in
	command.Stdout = out
	command.Stderr = os.Stderr
	return command.Run()
}

func (i *Interactor) listArtifacts(ctx context.Context, f features.ServerFeatures, args []string) error {
	flags := flag.NewFlagSet("artifacts", flag.ContinueOnError)
	artifactType := flags.String("t", "", "artifact type (prefixed name or full IRI)")
	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse flags: %w", err)
	}
	return f.PrintArtifacts(ctx, *artifactType)
}

func (i *Interactor) runQuery(ctx context.Context, f features.ServerFeatures, args []string) error {
	if len(args) < 2 {
		return parser.ErrInvalidUsage
	}
	sparql := strings.Join(args[1:], " ")
	if strings.HasPrefix(sparql, "@") {
		var err error
		if sparql, err = parser.Data(sparql); err != nil {
			return err
		}
	}
	if !strings.Contains(strings.ToUpper(sparql), "PREFIX") {
		sparql = flclient.DefaultPrefixString() + sparql
	}
	return f.RunQuery(ctx, sparql)
}

// invokeService builds a flag set from the service's parameter descriptors,
// so `invoke <service> -h` documents exactly what the server accepts.
func (i *Interactor) invokeService(ctx context.Context, f features.ServerFeatures, args []string) error {
	if len(args) < 2 {
		return parser.ErrInvalidUsage
	}

	flags := flag.NewFlagSet(args[1], flag.ContinueOnError)
	parent := flags.String("parent", "", "input artifact IRI (optional)")
	values := map[string]*string{}
	types := map[string]string{}
	services, err := f.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("list services: %w", err)
	}
	for _, service := range services {
		if service.ID != args[1] {
			continue
		}
		flags.Usage = func() {
			fmt.Fprintf(os.Stderr, "Usage: invoke %s [options]\n\n", service.ID)
			fmt.Fprintf(os.Stderr, "%s\n\n", cmp.Or(service.Description, service.Name))
			fmt.Fprintln(os.Stderr, "Options:")
			flags.PrintDefaults()
		}
		for _, param := range service.Params {
			p := new(string)
			values[param.Name] = p
			types[param.Name] = param.Type
			description := cmp.Or(param.Description, param.Type)
			if param.Required {
				description = fmt.Sprintf("%s (required)", description)
			} else {
				description = fmt.Sprintf("%s (optional)", description)
			}
			flags.StringVar(p, param.Name, "", description)
		}
	}
	if err := flags.Parse(args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse flags: %w", err)
	}
	params := map[string]any{}
	for name, value := range values {
		if *value == "" {
			continue
		}
		params[name] = convertParam(types[name], *value)
	}
	return f.InvokeService1(ctx, args[1], *parent, params)
}

// convertParam coerces a flag value to the type the service declares,
// falling back to the raw string.
func convertParam(paramType, value string) any {
	switch paramType {
	case "int":
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	case "float":
		if x, err := strconv.ParseFloat(value, 64); err == nil {
			return x
		}
	case "boolean":
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return value
}

func (i *Interactor) repo(ctx context.Context, f features.ServerFeatures, out *os.File, args []string) error {
	if len(args) < 2 {
		return parser.ErrInvalidUsage
	}
	switch args[1] {
	case "info":
		return f.PrintRepositoryInfo(ctx)
	case "create":
		var name, description string
		if len(args) > 2 {
			name = args[2]
		}
		if len(args) > 3 {
			description = args[3]
		}
		return f.CreateRepository(ctx, name, description)
	case "delete":
		if len(args) < 3 {
			return parser.ErrInvalidUsage
		}
		return f.DeleteRepository(ctx, args[2])
	case "use":
		if len(args) < 3 {
			return parser.ErrInvalidUsage
		}
		i.Client = flclient.New(i.Args.ServerURL(), args[2], transport.Client(i.Args.Headers))
		if i.completer != nil {
			i.completer.s.Client = i.Client
		}
		return i.showStatus(ctx, out)
	}
	return parser.ErrInvalidUsage
}

func (i *Interactor) msg(ctx context.Context, f features.ServerFeatures, out *os.File, args []string) error {
	if len(args) < 2 {
		return parser.ErrInvalidUsage
	}
	if i.LLM == nil {
		return llm.ErrDisabled
	}
	if err := i.LLM.Msg(ctx, f, strings.Join(args[1:], " "), out); err != nil {
		return err
	}
	return i.saveContexts()
}

func (i *Interactor) modelContext(out *os.File, args []string) error {
	if i.LLM == nil {
		return llm.ErrDisabled
	}
	if len(args) < 2 {
		return parser.ErrInvalidUsage
	}
	switch args[1] {
	case "new":
		i.LLM.ContextManager.New()
	case "clear":
		i.LLM.ContextManager.Clear()
	case "list":
		for _, info := range i.LLM.ContextManager.List() {
			json.NewEncoder(out).Encode(info)
		}
		return nil
	case "switch", "delete":
		if len(args) < 3 {
			return parser.ErrInvalidUsage
		}
		index, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("parse context index: %w", err)
		}
		if args[1] == "switch" {
			if err := i.LLM.ContextManager.SwitchTo(index); err != nil {
				return err
			}
		} else if err := i.LLM.ContextManager.Delete(index); err != nil {
			return err
		}
	default:
		return parser.ErrInvalidUsage
	}
	return i.saveContexts()
}

func (i *Interactor) saveContexts() error {
	if i.LLM == nil || i.Args.LLMContextFile == "" {
		return nil
	}
	return i.LLM.ContextManager.Save(i.Args.LLMContextFile)
}

func (i *Interactor) showStatus(ctx context.Context, out *os.File) error {
	status := features.ErrNoSession.Error()
	var server, repository string
	if i.Client != nil {
		server, repository = i.Client.BaseURL, i.Client.Repository
		status = "connected"
		if _, err := i.Client.Ping(ctx); err != nil {
			status = "unreachable"
		}
	}
	return json.NewEncoder(out).Encode(struct {
		Server     string `json:"server,omitzero"`
		Repository string `json:"repository,omitzero"`
		Status     string `json:"status,omitzero"`
	}{server, repository, status})
}

func (i *Interactor) chdir(args []string) error {
	dir := "."
	if len(args) > 1 {
		dir = args[1]
	}
	return os.Chdir(dir)
}

func (i *Interactor) showEnv(out *os.File, _ []string) error {
	for _, env := range os.Environ() {
		fmt.Fprintln(out, env)
	}
	return nil
}

func (i *Interactor) exportEnv(out *os.File, args []string) error {
	if len(args) < 2 {
		return i.showEnv(out, args)
	}

	for _, arg := range args[1:] {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 {
			continue
		}
		os.Setenv(parts[0], parts[1])
	}
	return nil
}

func (i *Interactor) listDir(out *os.File, args []string) error {
	dir := "."
	for _, arg := range args[1:] {
		if !strings.HasPrefix(arg, "-") {
			dir = arg
			break
		}
	}
	items, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}
	for _, item := range items {
		if item.IsDir() {
			fmt.Fprintf(out, "%s/\n", item.Name())
			continue
		}
		fmt.Fprintf(out, "%s\n", item.Name())
	}
	return nil
}

func (i *Interactor) printPwd(out *os.File) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get current directory: %w", err)
	}
	fmt.Fprintln(out, dir)
	return nil
}

func (i *Interactor) readFile(out *os.File, args []string) error {
	if len(args) < 2 {
		return parser.ErrInvalidUsage
	}
	file, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("open file %s: %w", args[1], err)
	}
	defer file.Close()
	if _, err := io.Copy(out, file); err != nil {
		return fmt.Errorf("read file %s: %w", args[1], err)
	}
	return nil
}

func printUsage() {
	fmt.Println(`Available Commands:
  ping                            Ping the server
  artifacts [-t type]             List artifacts, optionally by type
  artifact <iri>                  Show artifact metadata
  rm <iri>                        Delete artifact
  query <sparql|@file>            Run a SPARQL query
  prefixes                        Print the default SPARQL prefixes
  services                        List artifact services
  invoke <service> [options]      Invoke a service (-h lists its options)
  repos                           List repositories on the server
  repo info                       Show current repository metadata
  repo create [name] [desc]       Create a repository
  repo delete <id>                Delete a repository
  repo use <id>                   Switch to another repository
  ctx <subcmd>                    LLM context operations
  msg <message>                   Talk to LLM
  status                          Show connection info

System Commands:
  cat <file>                      Read file
  cd [dir]                        Change working directory
  clear                           Clear the screen
  export [name=value ...]         Set/get environment variables
  exit                            Exit the session
  help                            Show this help message
  ls [dir]                        List files in directory
  pwd                             Print working directory
  version                         Show version information

Supports command pipelining and stdout redirection:
  artifacts | jq .iri > artifacts.txt`)
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}
