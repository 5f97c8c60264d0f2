package main

import "github.com/Rorical/OmniMind/cmd"

func main() {
	cmd.Execute()
}
