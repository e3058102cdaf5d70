package main

import "onlymemes/cmd/onlymemes/commands"

func main() {
	commands.Execute()
}
