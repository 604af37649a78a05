package main

import "github.com/pfrederiksen/devconf-schedule/internal/cli"

func main() {
	cli.Execute()
}
