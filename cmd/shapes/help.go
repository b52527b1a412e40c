package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dmitrycvs/C-DSL/pkg/help"
	"github.com/dmitrycvs/C-DSL/pkg/stdlib"
)

func cmdHelp(args []string) int {
	f, err := parseFlags(args)
	if err != nil {
		usage(err, "usage: shapes help [topic] [--index]")
		return exitUsage
	}
	topic := f.file

	if f.index {
		if topic != "builtins" {
			fmt.Fprintln(os.Stderr, "error: --index is only supported for the builtins topic (shapes help builtins --index)")
			return exitUsage
		}
		reg := stdlib.NewRegistry()
		stdlib.RegisterDefaults(reg)
		fmt.Print(help.BuiltinsIndex(reg))
		return exitOK
	}

	if topic == "" {
		fmt.Print(help.QUICKREF)
		return exitOK
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return exitUsage
	}
	fmt.Print(content)
	return exitOK
}
