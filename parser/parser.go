package parser

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidUsage = errors.New("invalid usage")
)

type Arguments struct {
	// Data
	Data           string
	Headers        []string
	LogLevel       slog.Level
	LLMBaseURL     string
	LLMApiKey      string
	LLMName        string
	Type           string
	ConnectionArgs []string

	// Actions
	Artifact  string
	Artifacts bool
	Help      bool
	Invoke    string
	Query     string
	Services  bool
	Version   bool

	HistoryFile    string
	LLMContextFile string
}

// ServerURL returns the first positional argument. Valid only after the
// arity check passed.
func (a Arguments) ServerURL() string {
	return a.ConnectionArgs[0]
}

// RepositoryID returns the second positional argument. Valid only after the
// arity check passed.
func (a Arguments) RepositoryID() string {
	return a.ConnectionArgs[1]
}

type Parser struct {
	args Arguments
}

func (p *Parser) Parse(args []string) error {
	if err := p.applyFromEnv(); err != nil {
		return fmt.Errorf("apply from env: %w", err)
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-A", "--artifacts":
			p.args.Artifacts = true
		case "-S", "--services":
			p.args.Services = true
		case "-h", "--help":
			p.args.Help = true
			return nil
		case "-v", "--version":
			p.args.Version = true
			return nil
		default:
			switch arg {
			case "-a", "--artifact", "-i", "--invoke", "-q", "--query", "-t", "--type", "-d", "--data",
				"-H", "--header", "-l", "--log-level",
				"-K", "--llm-api-key", "-L", "--llm-base-url", "-M", "--llm-name":
				if len(args) < i+2 {
					return ErrInvalidUsage
				}
				switch arg {
				case "-a", "--artifact":
					p.args.Artifact = args[i+1]
				case "-i", "--invoke":
					p.args.Invoke = args[i+1]
				case "-q", "--query":
					query, err := Data(args[i+1])
					if err != nil {
						return fmt.Errorf("parse query: %w", err)
					}
					p.args.Query = query
				case "-t", "--type":
					p.args.Type = args[i+1]
				case "-d", "--data":
					data, err := Data(args[i+1])
					if err != nil {
						return fmt.Errorf("parse data: %w", err)
					}
					p.args.Data = data
				case "-H", "--header":
					headers, err := Headers(args[i+1])
					if err != nil {
						return fmt.Errorf("parse header: %w", err)
					}
					p.args.Headers = append(p.args.Headers, headers...)
				case "-l", "--log-level":
					if err := p.args.LogLevel.UnmarshalText([]byte(args[i+1])); err != nil {
						return fmt.Errorf("parse log level: %w", err)
					}
				case "-K", "--llm-api-key":
					p.args.LLMApiKey = args[i+1]
				case "-L", "--llm-base-url":
					p.args.LLMBaseURL = args[i+1]
				case "-M", "--llm-name":
					p.args.LLMName = args[i+1]
				}
				i++
			default:
				p.args.ConnectionArgs = append(p.args.ConnectionArgs, arg)
			}
		}
	}

	if err := p.checkArgs(); err != nil {
		return err
	}
	return nil
}

func (p *Parser) Arguments() Arguments {
	return p.args
}

// Data resolves a value argument. Arguments starting with @ name a file
// whose trimmed contents are used instead.
func Data(arg string) (string, error) {
	after, ok := strings.CutPrefix(arg, "@")
	if !ok {
		return after, nil
	}
	d, err := os.ReadFile(after)
	if err != nil {
		return "", fmt.Errorf("read data file: %w", err)
	}
	return strings.TrimSpace(string(d)), nil
}

// Headers resolves a header argument. Arguments starting with @ name a file
// read line by line, one header per non-empty line.
func Headers(header string) ([]string, error) {
	var ret []string
	after, ok := strings.CutPrefix(header, "@")
	if !ok {
		ret = append(ret, after)
		return ret, nil
	}
	file, err := os.Open(after)
	if err != nil {
		return nil, fmt.Errorf("read header file: %w", err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if h := strings.TrimSpace(scanner.Text()); h != "" {
			ret = append(ret, h)
		}
	}
	return ret, nil
}

func (p *Parser) applyFromEnv() error {
	if v := os.Getenv("FLCURL_LLM_API_KEY"); v != "" {
		p.args.LLMApiKey = v
	}
	if v := os.Getenv("FLCURL_LLM_BASE_URL"); v != "" {
		p.args.LLMBaseURL = v
	}
	if v := os.Getenv("FLCURL_LLM_NAME"); v != "" {
		p.args.LLMName = v
	}
	if v := os.Getenv("FLCURL_LOG_LEVEL"); v != "" {
		if err := p.args.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("parse log level: %w", err)
		}
	}
	if v := os.Getenv("FLCURL_HISTORY_FILE"); v != "" {
		p.args.HistoryFile = v
	} else {
		p.args.HistoryFile = historyFile()
	}
	if v := os.Getenv("FLCURL_LLM_CONTEXT_FILE"); v != "" {
		p.args.LLMContextFile = v
	} else {
		p.args.LLMContextFile = llmContextFile()
	}
	return nil
}

func (p Parser) checkArgs() error {
	// The gate is arity-only: exactly a server URL and a repository id,
	// with no content checks on either.
	if len(p.args.ConnectionArgs) != 2 {
		return ErrInvalidUsage
	}
	if p.args.LLMBaseURL != "" && p.args.LLMName == "" {
		return fmt.Errorf("model name is required when LLM base url is set")
	}
	return nil
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flcurl_history")
}

func llmContextFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flcurl_llm_contexts")
}
