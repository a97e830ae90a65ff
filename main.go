package main

import "github.com/jamesbehr/shortcut/cmd"

func main() {
	cmd.Execute()
}
