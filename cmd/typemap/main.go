package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/suparena/docrepo"
	"github.com/suparena/docrepo/registry"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	configFlag  = flag.String("config", "", "Path to a type-map YAML file")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := docrepo.GetVersionInfo()
		fmt.Printf("docrepo typemap version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if *configFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: typemap -config <file.yaml>")
		os.Exit(2)
	}

	cfg, err := registry.LoadConfigFile(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *configFlag, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%s is not a valid type map: %v\n", *configFlag, err)
		os.Exit(1)
	}

	names := make([]string, 0, len(cfg.Types))
	for name := range cfg.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%s: %d type(s)\n", *configFlag, len(names))
	for _, name := range names {
		tc := cfg.Types[name]
		fmt.Printf("  %s", name)
		if tc.Model != "" {
			fmt.Printf(" (model %s)", tc.Model)
		}
		fmt.Println()
		keys := make([]string, 0, len(tc.IndexMap))
		for k := range tc.IndexMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("    %-8s %s\n", k, tc.IndexMap[k])
		}
		if len(tc.Required) > 0 {
			fmt.Printf("    required: %v\n", tc.Required)
		}
		if len(tc.Unique) > 0 {
			fmt.Printf("    unique:   %v\n", tc.Unique)
		}
	}
}
