package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/jamesbehr/shortcut/filesystem"
	"github.com/jamesbehr/shortcut/scan"
	"github.com/jamesbehr/shortcut/shellink"
	"github.com/spf13/cobra"
)

var dirOnly bool
var fileOnly bool
var interactive bool

func targetKind() shellink.TargetKind {
	if dirOnly && fileOnly {
		log.Fatal("--dir and --file are mutually exclusive")
	}

	if dirOnly {
		return shellink.Directory
	}

	if fileOnly {
		return shellink.File
	}

	return shellink.Any
}

func interactivePick(dir filesystem.Path) ([]filesystem.Path, error) {
	entries, err := dir.ReadDir()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && scan.IsShortcut(entry.Name()) {
			names = append(names, entry.Name())
		}
	}

	var selected []string
	prompt := &survey.MultiSelect{
		Message: "Choose shortcuts to resolve",
		Options: names,
	}

	if err := survey.AskOne(prompt, &selected, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}

	paths := make([]filesystem.Path, len(selected))
	for i, name := range selected {
		paths[i] = dir.Join(name)
	}

	return paths, nil
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [file.lnk...]",
	Short: "Print the target path of each shortcut",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			log.Fatal("provide at least one shortcut path")
		}

		kind := targetKind()

		var paths []filesystem.Path
		for _, arg := range args {
			abs, err := filepath.Abs(arg)
			if err != nil {
				log.Fatal(err)
			}

			path := filesystem.MakePath(abs)

			isDir, err := path.IsDir()
			if err != nil {
				log.Fatal(err)
			}

			if isDir && interactive {
				picked, err := interactivePick(path)
				if err != nil {
					log.Fatal(err)
				}

				paths = append(paths, picked...)
				continue
			}

			paths = append(paths, path)
		}

		for _, path := range paths {
			target, err := shellink.ResolveFile(path, kind)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println(target)
		}
	},
}

func init() {
	resolveCmd.Flags().BoolVarP(&dirOnly, "dir", "d", false, "fail unless the shortcut points at a directory")
	resolveCmd.Flags().BoolVarP(&fileOnly, "file", "f", false, "fail unless the shortcut points at a file")
	resolveCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick shortcuts to resolve from a directory argument")
}
