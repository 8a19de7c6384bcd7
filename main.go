package main

import "github.com/KaramelBytes/socialpulse-cli/cmd"

func main() {
	cmd.Execute()
}
