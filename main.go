package main

import "github.com/timvw/zellij-autolock/cmd"

func main() {
	cmd.Execute()
}
