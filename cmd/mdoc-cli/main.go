package main

import "mdoc/cmd/mdoc-cli/cmd"

func main() {
	cmd.Execute()
}
