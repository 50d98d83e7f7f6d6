package main

import "github.com/pfrederiksen/odpc-checker/internal/cli"

func main() {
	cli.Execute()
}
