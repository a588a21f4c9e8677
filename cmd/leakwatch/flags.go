package main

import (
	"flag"
	"io"
)

type AppFlags struct {
	GlobalConfigFile string
	Mode             string
	TargetURL        string
	ContentFile      string
	TargetsFile      string
}

// ParseFlags parses args (without the program name). Long flags win over
// their short aliases when both are given.
func ParseFlags(args []string, output io.Writer) (AppFlags, error) {
	fs := flag.NewFlagSet("leakwatch", flag.ContinueOnError)
	fs.SetOutput(output)

	globalConfigFile := fs.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := fs.String("c", "", "Alias for -config")

	modeFlag := fs.String("mode", "", "Mode to run: scan, revalidate, list or automated (overrides config file if set)")
	modeFlagAlias := fs.String("m", "", "Alias for -mode")

	targetURL := fs.String("url", "", "Page or script URL to scan")
	targetURLAlias := fs.String("u", "", "Alias for -url")

	contentFile := fs.String("file", "", "Local JavaScript file to scan")
	contentFileAlias := fs.String("f", "", "Alias for -file")

	targetsFile := fs.String("input", "", "Text file with one URL per line to scan")
	targetsFileAlias := fs.String("i", "", "Alias for -input")

	if err := fs.Parse(args); err != nil {
		return AppFlags{}, err
	}

	return AppFlags{
		GlobalConfigFile: firstNonEmpty(*globalConfigFile, *globalConfigFileAlias),
		Mode:             firstNonEmpty(*modeFlag, *modeFlagAlias),
		TargetURL:        firstNonEmpty(*targetURL, *targetURLAlias),
		ContentFile:      firstNonEmpty(*contentFile, *contentFileAlias),
		TargetsFile:      firstNonEmpty(*targetsFile, *targetsFileAlias),
	}, nil
}

// HasTargets reports whether any scan input was given
func (f AppFlags) HasTargets() bool {
	return f.TargetURL != "" || f.ContentFile != "" || f.TargetsFile != ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
