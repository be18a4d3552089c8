package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fitlayout/flcurl/features"
	"github.com/fitlayout/flcurl/flclient"
	"github.com/fitlayout/flcurl/interactor"
	"github.com/fitlayout/flcurl/llm"
	"github.com/fitlayout/flcurl/parser"
	"github.com/fitlayout/flcurl/transport"
	"github.com/fitlayout/flcurl/version"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"hermannm.dev/devlog"
)

func main() {
	p := parser.Parser{}
	runE(func() error {
		return p.Parse(os.Args[1:])
	})
	args := p.Arguments()
	if args.Help {
		printUsage()
		return
	}
	if args.Version {
		fmt.Println(version.Long())
		return
	}
	slog.SetDefault(slog.New(devlog.NewHandler(os.Stderr, &devlog.Options{Level: args.LogLevel})))
	runE(func() error {
		return runMain(args)
	})
}

func runE(run func() error) {
	err := run()
	if errors.Is(err, parser.ErrInvalidUsage) {
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		os.Exit(1)
	}
}

func runMain(args parser.Arguments) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client := flclient.New(args.ServerURL(), args.RepositoryID(), transport.Client(args.Headers))
	f := features.ServerFeatures{Client: client}

	switch {
	case args.Artifacts:
		return f.PrintArtifacts(ctx, args.Type)
	case args.Artifact != "":
		return f.PrintArtifact(ctx, args.Artifact)
	case args.Services:
		return f.PrintServices(ctx)
	case args.Invoke != "":
		return f.InvokeService(ctx, args.Invoke, args.Data)
	case args.Query != "":
		return f.RunQuery(ctx, args.Query)
	}

	// Interactive session. A failing startup ping is reported but does not
	// abort; the operator keeps the session to investigate.
	if err := f.PrintPing(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
	}
	fmt.Println("Use `help` to list available commands.")
	i := interactor.Interactor{
		Args:   args,
		Client: client,
		LLM:    newLLM(args),
	}
	return i.Run(ctx)
}

func newLLM(args parser.Arguments) *llm.LLM {
	if args.LLMBaseURL == "" || args.LLMName == "" {
		return nil
	}
	client := openai.NewClient(
		option.WithBaseURL(args.LLMBaseURL),
		option.WithAPIKey(args.LLMApiKey),
	)
	l := &llm.LLM{Client: &client, Model: args.LLMName}
	if args.LLMContextFile != "" {
		if err := l.ContextManager.LoadOnce(args.LLMContextFile); err != nil {
			slog.Warn("Restoring LLM contexts failed", "error", err)
		}
	}
	return l
}

func printUsage() {
	fmt.Println(`Usage: flcurl <server_url> <repository_id>

Starts an interactive FitLayout session bound to the given repository, or
runs a single operation when one of the action options is present.

Accepted options:
  -A, --artifacts         list artifacts, then exit
  -a, --artifact <iri>    show one artifact, then exit
  -S, --services          list artifact services, then exit
  -i, --invoke <string>   invoke a service, then exit
  -q, --query <string>    run a SPARQL query, then exit (@file to read a file)
  -t, --type <string>     artifact type filter for --artifacts
  -d, --data <string>     JSON parameters for --invoke (@file to read a file)
  -H, --header <string>   extra HTTP header, repeatable (@file, one per line)
  -l, --log-level <level> log level (debug, info, warn, error)

  -K, --llm-api-key <string>   LLM api key
  -L, --llm-base-url <string>  LLM base url (enables the msg command)
  -M, --llm-name <string>      LLM model name

  -h, --help              show this usage
  -v, --version           show version information`)
}
