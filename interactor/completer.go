package interactor

import (
	"context"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/fitlayout/flcurl/features"
	"github.com/google/shlex"
)

var (
	_ readline.AutoCompleter = (*flcurlCompleter)(nil)
)

type flcurlCompleter struct {
	ctx context.Context
	s   *features.ServerFeatures

	once      sync.Once
	completer *readline.PrefixCompleter
}

func (c *flcurlCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	c.once.Do(func() {
		c.completer = readline.NewPrefixCompleter(
			readline.PcItem("ping"),
			readline.PcItem("artifacts",
				readline.PcItem("-t")),
			readline.PcItem("artifact", readline.PcItemDynamic(c.listArtifacts)),
			readline.PcItem("rm", readline.PcItemDynamic(c.listArtifacts)),
			readline.PcItem("query"),
			readline.PcItem("prefixes"),
			readline.PcItem("services"),
			readline.PcItem("invoke", readline.PcItemDynamic(c.listServices)),
			readline.PcItem("repos"),
			readline.PcItem("repo",
				readline.PcItem("info"),
				readline.PcItem("create"),
				readline.PcItem("delete"),
				readline.PcItem("use"),
			),
			readline.PcItem("msg"),
			readline.PcItem("ctx",
				readline.PcItem("new"),
				readline.PcItem("list"),
				readline.PcItem("switch"),
				readline.PcItem("delete"),
				readline.PcItem("clear"),
			),
			readline.PcItem("cat"),
			readline.PcItem("cd"),
			readline.PcItem("clear"),
			readline.PcItem("env"),
			readline.PcItem("exit"),
			readline.PcItem("export"),
			readline.PcItem("help"),
			readline.PcItem("ls"),
			readline.PcItem("pwd"),
			readline.PcItem("status"),
			readline.PcItem("version"),
		)
	})
	return c.completer.Do(line, pos)
}

func (c *flcurlCompleter) listArtifacts(prefix string) (ret []string) {
	args, _ := shlex.Split(prefix)
	artifacts, err := c.s.ListArtifacts(c.ctx, "")
	if err != nil {
		return nil
	}
	for _, artifact := range artifacts {
		if len(args) > 1 && !strings.HasPrefix(artifact.IRI, args[1]) {
			continue
		}
		ret = append(ret, artifact.IRI)
	}
	return
}

func (c *flcurlCompleter) listServices(prefix string) (ret []string) {
	args, _ := shlex.Split(prefix)
	services, err := c.s.ListServices(c.ctx)
	if err != nil {
		return nil
	}
	for _, service := range services {
		if len(args) > 1 && !strings.HasPrefix(service.ID, args[1]) {
			continue
		}
		ret = append(ret, service.ID)
	}
	return
}
