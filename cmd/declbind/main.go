package main

import "martianoff/declbind/cmd/declbind/commands"

func main() {
	commands.Execute()
}
