package main

import "github.com/encodeous/loom/cmd"

func main() {
	cmd.Execute()
}
