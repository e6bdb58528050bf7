package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault/fmsg"
	"github.com/spf13/pflag"
	"github.com/vsariola/noteroll/strict"
	"github.com/vsariola/noteroll/version"
)

func main() {
	validate := pflag.BoolP("validate", "V", false, "Only validate the files; print nothing for valid files.")
	convert := pflag.StringP("convert", "t", "", "Convert every file to this format: mid, yml or json.")
	directory := pflag.StringP("output", "o", "", "Directory for converted files. By default, next to the original file.")
	templatePath := pflag.String("template", "", "Text template for the summary of a file. By default, a short built-in summary.")
	lang := pflag.String("lang", "en", "Language tag used for formatting numbers.")
	versionFlag := pflag.BoolP("version", "v", false, "Print version.")
	pflag.Usage = printUsage
	pflag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(0)
	}
	tmpl, err := newTemplate(*templatePath, *lang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not parse template: %v\n", err)
		os.Exit(1)
	}
	process := func(path string) error {
		payload, err := strict.ReadFile(path)
		if err != nil {
			return err
		}
		state, err := strict.FromStrict(payload)
		if err != nil {
			return err
		}
		if *convert != "" {
			ext := "." + strings.TrimPrefix(*convert, ".")
			dir := *directory
			if dir == "" {
				dir = filepath.Dir(path)
			}
			out := filepath.Join(dir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+ext)
			if out == path {
				return fmt.Errorf("%s is already in the %s format", path, *convert)
			}
			if err := strict.Save(out, state); err != nil {
				return err
			}
		}
		if *validate {
			return nil
		}
		return tmpl.Execute(os.Stdout, summarize(path, payload, state))
	}
	retval := 0
	for _, path := range pflag.Args() {
		if err := process(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, describe(err))
			retval = 1
		}
	}
	os.Exit(retval)
}

// describe prefers the location of a validation failure, then the
// user-facing description of a file failure.
func describe(err error) string {
	var verr *strict.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue + " (" + err.Error() + ")"
	}
	return err.Error()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "noteroll-info validates, summarizes and converts single-track MIDI files (.mid, .yml, .json).\nUsage: %s [flags] path...\n", os.Args[0])
	pflag.PrintDefaults()
}
