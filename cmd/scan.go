package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jamesbehr/shortcut/filesystem"
	"github.com/jamesbehr/shortcut/scan"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "List a directory tree, resolving shortcuts to their targets",
	Run: func(cmd *cobra.Command, args []string) {
		root, err := os.Getwd()
		if err != nil {
			log.Fatal(err)
		}

		if len(args) > 0 {
			root, err = filepath.Abs(args[0])
			if err != nil {
				log.Fatal(err)
			}
		}

		path := filesystem.MakePath(root)

		exists, err := path.Exists()
		if err != nil {
			log.Fatal(err)
		}

		if !exists {
			log.Fatalf("no such directory: %s", path)
		}

		scanner := scan.New(afero.NewOsFs())

		if err := scanner.LoadManifest(path.String()); err != nil {
			log.Fatal(err)
		}

		err = scanner.Scan(path.String(), func(entry scan.Entry) error {
			if entry.Target != "" {
				fmt.Printf("%s -> %s\n", entry.Path, entry.Target)
				return nil
			}

			fmt.Println(entry.Path)
			return nil
		})
		if err != nil {
			log.Fatal(err)
		}
	},
}
